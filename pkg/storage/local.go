package storage

import (
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Kind selects the directory an uploaded file is stored under.
type Kind string

const (
	KindCourse  Kind = "courses"
	KindContent Kind = "content"
)

// Client stores uploaded files on the local filesystem and serves them
// back under the /uploads static prefix.
type Client struct {
	baseDir string
}

// NewClient prepares the upload directory tree under baseDir.
func NewClient(baseDir string) (*Client, error) {
	for _, kind := range []Kind{KindCourse, KindContent} {
		dir := filepath.Join(baseDir, string(kind))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
		}
	}

	return &Client{baseDir: baseDir}, nil
}

// Save writes the uploaded file to disk under the given kind with a
// collision-resistant name and returns the public URL path.
func (c *Client) Save(file *multipart.FileHeader, field string, kind Kind) (string, error) {
	name := uniqueName(field, file.Filename)
	dst := filepath.Join(c.baseDir, string(kind), name)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", fmt.Errorf("write %s: %w", dst, err)
	}

	return fmt.Sprintf("/uploads/%s/%s", kind, name), nil
}

// Remove deletes a previously stored file identified by its public URL
// path. Paths outside the upload tree are rejected.
func (c *Client) Remove(urlPath string) error {
	rel, ok := strings.CutPrefix(urlPath, "/uploads/")
	if !ok {
		return fmt.Errorf("not an upload path: %s", urlPath)
	}

	rel = filepath.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("invalid upload path: %s", urlPath)
	}

	return os.Remove(filepath.Join(c.baseDir, rel))
}

// BaseDir returns the root of the upload tree, for static file serving.
func (c *Client) BaseDir() string {
	return c.baseDir
}

// uniqueName mirrors the naming scheme of the legacy upload middleware:
// field-<unix ms>-<random>.<ext>.
func uniqueName(field, original string) string {
	ext := filepath.Ext(original)
	return fmt.Sprintf("%s-%d-%d%s", field, time.Now().UnixMilli(), rand.Int63n(1e9), ext)
}
