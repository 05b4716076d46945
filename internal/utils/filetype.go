package utils

import (
	"path/filepath"
	"strings"

	"github.com/codenest-dev/codenest/internal/types"
)

var extensionFileTypes = map[string]string{
	".py":   types.FileTypeCode,
	".js":   types.FileTypeCode,
	".c":    types.FileTypeCode,
	".cpp":  types.FileTypeCode,
	".java": types.FileTypeCode,
	".cs":   types.FileTypeCode,
	".html": types.FileTypeCode,
	".css":  types.FileTypeCode,
	".dwg":  types.FileTypeAutocad,
	".dxf":  types.FileTypeAutocad,
	".pdf":  types.FileTypePDF,
	".jpg":  types.FileTypeImage,
	".jpeg": types.FileTypeImage,
	".png":  types.FileTypeImage,
	".gif":  types.FileTypeImage,
	".svg":  types.FileTypeImage,
}

// InferFileType maps a filename to a coarse file-type tag by extension.
// Unknown extensions fall back to "other".
func InferFileType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	if fileType, ok := extensionFileTypes[ext]; ok {
		return fileType
	}

	return types.FileTypeOther
}
