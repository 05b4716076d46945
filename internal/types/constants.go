package types

import (
	"os"
	"regexp"
	"strings"
)

const ContextUserKey = "user"

// User roles
const (
	RoleStudent  = "student"
	RoleLecturer = "lecturer"
	RoleAdvisor  = "advisor"
	RoleAdmin    = "admin"
)

// Project types
const (
	ProjectTypeCode    = "code"
	ProjectTypeAutocad = "autocad"
	ProjectTypeBook    = "book"
	ProjectTypePaper   = "paper"
	ProjectTypeOther   = "other"
)

// File types
const (
	FileTypeCode    = "code"
	FileTypeAutocad = "autocad"
	FileTypePDF     = "pdf"
	FileTypeImage   = "image"
	FileTypeOther   = "other"
)

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()

	// Registration is restricted to the university's email domain.
	UniversityEmailPattern = initEmailPattern()
)

func IsValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleLecturer, RoleAdvisor, RoleAdmin:
		return true
	}
	return false
}

func IsValidProjectType(projectType string) bool {
	switch projectType {
	case ProjectTypeCode, ProjectTypeAutocad, ProjectTypeBook, ProjectTypePaper, ProjectTypeOther:
		return true
	}
	return false
}

func IsValidFileType(fileType string) bool {
	switch fileType {
	case FileTypeCode, FileTypeAutocad, FileTypePDF, FileTypeImage, FileTypeOther:
		return true
	}
	return false
}

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}

func initEmailPattern() *regexp.Regexp {
	domain := os.Getenv("UNIVERSITY_EMAIL_DOMAIN")
	if domain == "" {
		domain = "rdu.edu.tr"
	}

	return regexp.MustCompile(`(?i)^[a-zA-Z0-9._%+-]+@` + regexp.QuoteMeta(domain) + `$`)
}
