package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Store persists uploaded blobs under a media root on disk and resolves the
// absolute URLs they are served from.
type Store struct {
	Root    string
	BaseURL string
}

func New(root string, baseURL string) *Store {
	return &Store{
		Root:    root,
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

// ProjectPath returns the relative storage path for a project upload:
// projects/<owner id>/<project slug>/<filename>. When the target already
// exists a short unique suffix is inserted before the extension.
func (s *Store) ProjectPath(ownerID uint, projectTitle string, filename string) string {
	base := filepath.Base(filename)
	relPath := filepath.Join("projects", fmt.Sprint(ownerID), slug.Make(projectTitle), base)

	if _, err := os.Stat(filepath.Join(s.Root, relPath)); err == nil {
		ext := filepath.Ext(base)
		name := strings.TrimSuffix(base, ext)
		base = fmt.Sprintf("%s_%s%s", name, uuid.New().String()[:8], ext)
		relPath = filepath.Join("projects", fmt.Sprint(ownerID), slug.Make(projectTitle), base)
	}

	return relPath
}

func (s *Store) Save(relPath string, src io.Reader) (int64, error) {
	dst := filepath.Join(s.Root, relPath)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create media directory: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create media file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, src)
	if err != nil {
		return 0, fmt.Errorf("failed to write media file: %w", err)
	}

	return written, nil
}

func (s *Store) Delete(relPath string) error {
	if relPath == "" {
		return nil
	}

	err := os.Remove(filepath.Join(s.Root, relPath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete media file: %w", err)
	}

	return nil
}

// URL resolves a stored path to the absolute URL it is served from.
func (s *Store) URL(relPath string) string {
	return s.BaseURL + "/media/" + filepath.ToSlash(relPath)
}
