package storage_test

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillora/skillora-server/pkg/storage"
)

func uploadHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	return req.MultipartForm.File["file"][0]
}

func TestSaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	client, err := storage.NewClient(dir)
	require.NoError(t, err)

	file := uploadHeader(t, "thumb.png", "png-bytes")
	url, err := client.Save(file, "thumbnail", storage.KindCourse)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "/uploads/courses/thumbnail-"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	onDisk := filepath.Join(dir, strings.TrimPrefix(url, "/uploads/"))
	content, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))

	require.NoError(t, client.Remove(url))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveRejectsOutsidePaths(t *testing.T) {
	client, err := storage.NewClient(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, client.Remove("/etc/passwd"))
	assert.Error(t, client.Remove("/uploads/../../etc/passwd"))
	assert.Error(t, client.Remove("/uploads/"))
}

func TestUniqueNames(t *testing.T) {
	client, err := storage.NewClient(t.TempDir())
	require.NoError(t, err)

	file := uploadHeader(t, "same.txt", "x")
	first, err := client.Save(file, "file", storage.KindContent)
	require.NoError(t, err)
	second, err := client.Save(file, "file", storage.KindContent)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
