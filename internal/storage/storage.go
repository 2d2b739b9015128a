package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Storage accepts an uploaded blob and returns a publicly addressable URL.
type Storage interface {
	Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// ErrUnsupportedType is returned for uploads that are not images.
var ErrUnsupportedType = fmt.Errorf("unsupported content type")

// Local stores uploads on disk under dir; files are served at
// baseURL + "/uploads/".
type Local struct {
	dir     string
	baseURL string
}

func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *Local) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrUnsupportedType
	}

	name := uuid.NewString() + "-" + sanitizeFilename(filename)
	path := filepath.Join(l.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	return l.baseURL + "/uploads/" + name, nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = unsafeChars.ReplaceAllString(name, "-")
	if name == "" || name == "." {
		name = "upload"
	}
	return name
}
