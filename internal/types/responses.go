package types

import "time"

type UserResponse struct {
	ID         uint      `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Role       string    `json:"role"`
	DateJoined time.Time `json:"date_joined"`
}

type ProjectFileResponse struct {
	ID                uint                   `json:"id"`
	FileType          string                 `json:"file_type"`
	OriginalFilename  string                 `json:"original_filename"`
	ExtractedMetadata map[string]interface{} `json:"extracted_metadata"`
	UploadedAt        time.Time              `json:"uploaded_at"`
	FileURL           string                 `json:"file_url"`
}

type ProjectResponse struct {
	ID            uint                  `json:"id"`
	Owner         UserResponse          `json:"owner"`
	Collaborators []UserResponse        `json:"collaborators"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Type          string                `json:"type"`
	Department    string                `json:"department"`
	Year          *int                  `json:"year"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	Files         []ProjectFileResponse `json:"files"`
}
