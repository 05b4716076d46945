package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectFile struct {
	gorm.Model

	ProjectID         uint   `gorm:"not null;index"`
	StoredPath        string `gorm:"not null"`
	FileType          string `gorm:"not null;default:other"`
	OriginalFilename  string `gorm:"not null"`
	ExtractedMetadata datatypes.JSONMap

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
