package models

import "gorm.io/gorm"

type Project struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string
	Type        string `gorm:"not null;default:other"`
	Department  string
	Year        *int
	OwnerID     uint `gorm:"not null;index"`

	// Relationships
	Owner         User                  `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Collaborators []ProjectCollaborator `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Files         []ProjectFile         `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
