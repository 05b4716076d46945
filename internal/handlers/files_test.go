package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/codenest-dev/codenest/db"
	"github.com/codenest-dev/codenest/internal/models"
)

func TestUploadFileNonOwnerForbidden(t *testing.T) {
	r, _ := setupTest(t)

	owner := createTestUser(t, "owner@rdu.edu.tr", "Owner", "One")
	intruder := createTestUser(t, "intruder@rdu.edu.tr", "In", "Truder")
	project := createTestProject(t, owner, "Guarded")

	w := doUpload(t, r, fmt.Sprintf("/api/projects/%d/upload_file", project.ID), "a.pdf", "content", nil, accessToken(t, intruder))

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for non-owner upload, got %d", w.Code)
	}
}

func TestUploadFileMissingPayload(t *testing.T) {
	r, _ := setupTest(t)

	owner := createTestUser(t, "owner@rdu.edu.tr", "Owner", "One")
	project := createTestProject(t, owner, "Empty Upload")

	w := doUpload(t, r, fmt.Sprintf("/api/projects/%d/upload_file", project.ID), "", "", nil, accessToken(t, owner))

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 when no file part is sent, got %d", w.Code)
	}
}

func TestUploadFileInfersType(t *testing.T) {
	r, _ := setupTest(t)

	owner := createTestUser(t, "owner@rdu.edu.tr", "Owner", "One")
	project := createTestProject(t, owner, "Typed")
	token := accessToken(t, owner)
	path := fmt.Sprintf("/api/projects/%d/upload_file", project.ID)

	cases := []struct {
		filename string
		expected string
	}{
		{"report.PDF", "pdf"},
		{"main.cpp", "code"},
		{"drawing.dxf", "autocad"},
		{"photo.PNG", "image"},
		{"data.bin", "other"},
	}

	for _, tc := range cases {
		w := doUpload(t, r, path, tc.filename, "content", nil, token)

		if w.Code != http.StatusCreated {
			t.Fatalf("Upload of %q failed with %d: %s", tc.filename, w.Code, w.Body.String())
		}

		result := decodeJSON(t, w)

		if result["file_type"] != tc.expected {
			t.Errorf("Upload of %q: expected type %q, got %v", tc.filename, tc.expected, result["file_type"])
		}

		if result["original_filename"] != tc.filename {
			t.Errorf("Expected original filename %q preserved, got %v", tc.filename, result["original_filename"])
		}
	}
}

func TestUploadFileExplicitTypeSkipsInference(t *testing.T) {
	r, _ := setupTest(t)

	owner := createTestUser(t, "owner@rdu.edu.tr", "Owner", "One")
	project := createTestProject(t, owner, "Pinned Type")

	w := doUpload(t, r, fmt.Sprintf("/api/projects/%d/upload_file", project.ID), "listing.pdf", "content",
		map[string]string{"file_type": "book"}, accessToken(t, owner))

	if w.Code != http.StatusCreated {
		t.Fatalf("Upload failed with %d: %s", w.Code, w.Body.String())
	}

	// "book" is not a valid file type, so inference still runs.
	if result := decodeJSON(t, w); result["file_type"] != "pdf" {
		t.Errorf("Expected inference for invalid explicit type, got %v", result["file_type"])
	}

	w = doUpload(t, r, fmt.Sprintf("/api/projects/%d/upload_file", project.ID), "notes.pdf", "content",
		map[string]string{"file_type": "image"}, accessToken(t, owner))

	if result := decodeJSON(t, w); result["file_type"] != "image" {
		t.Errorf("Expected explicit non-default type to stick, got %v", result["file_type"])
	}
}

func TestUploadStoresBlobUnderOwnerAndSlug(t *testing.T) {
	r, media := setupTest(t)

	owner := createTestUser(t, "owner@rdu.edu.tr", "Owner", "One")
	project := createTestProject(t, owner, "My Great Project")

	w := doUpload(t, r, fmt.Sprintf("/api/projects/%d/upload_file", project.ID), "report.pdf", "pdf-bytes", nil, accessToken(t, owner))

	if w.Code != http.StatusCreated {
		t.Fatalf("Upload failed with %d: %s", w.Code, w.Body.String())
	}

	expected := filepath.Join(media.Root, "projects", fmt.Sprint(owner.ID), "my-great-project", "report.pdf")

	data, err := os.ReadFile(expected)
	if err != nil {
		t.Fatalf("Expected blob at %q: %v", expected, err)
	}

	if string(data) != "pdf-bytes" {
		t.Errorf("Blob content mismatch: %q", data)
	}
}

func TestListFiles(t *testing.T) {
	r, _ := setupTest(t)

	owner := createTestUser(t, "owner@rdu.edu.tr", "Owner", "One")
	project := createTestProject(t, owner, "Listing")
	token := accessToken(t, owner)

	for _, name := range []string{"a.pdf", "b.py"} {
		if w := doUpload(t, r, fmt.Sprintf("/api/projects/%d/upload_file", project.ID), name, "x", nil, token); w.Code != http.StatusCreated {
			t.Fatalf("Upload failed with %d", w.Code)
		}
	}

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/projects/%d/list_files", project.ID), nil, "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var results []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 files, got %d", len(results))
	}

	for _, file := range results {
		if file["file_url"] == "" {
			t.Errorf("Expected resolvable file_url, got %v", file)
		}
	}
}

func TestListFilesUnknownProject(t *testing.T) {
	r, _ := setupTest(t)

	w := doJSON(t, r, http.MethodGet, "/api/projects/424242/list_files", nil, "")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown project, got %d", w.Code)
	}
}

func TestDeleteFileRemovesRecordThenBlob(t *testing.T) {
	r, media := setupTest(t)

	owner := createTestUser(t, "owner@rdu.edu.tr", "Owner", "One")
	project := createTestProject(t, owner, "Cleanup")
	token := accessToken(t, owner)

	w := doUpload(t, r, fmt.Sprintf("/api/projects/%d/upload_file", project.ID), "a.pdf", "content", nil, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Upload failed with %d", w.Code)
	}

	var file models.ProjectFile
	if err := db.DB.Where("project_id = ?", project.ID).First(&file).Error; err != nil {
		t.Fatalf("Failed to load file record: %v", err)
	}

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/projects/%d/files/%d", project.ID, file.ID), nil, token)

	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	db.DB.Model(&models.ProjectFile{}).Where("id = ?", file.ID).Count(&count)
	if count != 0 {
		t.Error("Expected file record to be deleted")
	}

	if _, err := os.Stat(filepath.Join(media.Root, file.StoredPath)); !os.IsNotExist(err) {
		t.Error("Expected stored blob to be deleted")
	}
}

func TestDeleteFileNonOwnerForbidden(t *testing.T) {
	r, _ := setupTest(t)

	owner := createTestUser(t, "owner@rdu.edu.tr", "Owner", "One")
	intruder := createTestUser(t, "intruder@rdu.edu.tr", "In", "Truder")
	project := createTestProject(t, owner, "Guarded")
	token := accessToken(t, owner)

	w := doUpload(t, r, fmt.Sprintf("/api/projects/%d/upload_file", project.ID), "a.pdf", "content", nil, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Upload failed with %d", w.Code)
	}

	var file models.ProjectFile
	if err := db.DB.Where("project_id = ?", project.ID).First(&file).Error; err != nil {
		t.Fatalf("Failed to load file record: %v", err)
	}

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/projects/%d/files/%d", project.ID, file.ID), nil, accessToken(t, intruder))

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for non-owner delete, got %d", w.Code)
	}
}
