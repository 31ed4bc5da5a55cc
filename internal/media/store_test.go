// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package media

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataaqu/weforward/internal/model"
)

// memFile adapts a bytes.Reader to multipart.File for tests.
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func uploadRequest(data []byte, filename, contentType string) (multipart.File, *multipart.FileHeader) {
	header := &multipart.FileHeader{
		Filename: filename,
		Size:     int64(len(data)),
		Header:   textproto.MIMEHeader{},
	}
	if contentType != "" {
		header.Header.Set("Content-Type", contentType)
	}
	return memFile{bytes.NewReader(data)}, header
}

func TestUploadStoresImageAndReturnsLocator(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, "http://localhost:8080")

	file, header := uploadRequest(pngBytes(t, 4, 3), "hero image.png", MimeTypePNG)
	result, err := store.Upload(file, header)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.URL, "http://localhost:8080/uploads/blog/"), result.URL)
	assert.True(t, strings.HasSuffix(result.URL, "hero-image.png"), result.URL)
	assert.Equal(t, 4, result.Width)
	assert.Equal(t, 3, result.Height)
	assert.Greater(t, result.Size, int64(0))

	entries, err := os.ReadDir(filepath.Join(dir, "blog"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestUploadRejectsOversizedBeforeWriting(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, "http://localhost:8080")

	file, header := uploadRequest(pngBytes(t, 2, 2), "big.png", MimeTypePNG)
	header.Size = MaxUploadSize + 1

	_, err := store.Upload(file, header)
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "file")

	// Nothing may be written when validation fails.
	_, err = os.Stat(filepath.Join(dir, "blog"))
	assert.True(t, os.IsNotExist(err))
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	store := NewStore(t.TempDir(), "http://localhost:8080")

	tests := []struct {
		name        string
		filename    string
		contentType string
	}{
		{"bmp by content type", "image.bmp", "image/bmp"},
		{"pdf", "doc.pdf", "application/pdf"},
		{"unknown extension fallback", "image.bmp", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, header := uploadRequest([]byte("not an image"), tt.filename, tt.contentType)
			_, err := store.Upload(file, header)
			var verr *model.ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestUploadRejectsUndecodablePayload(t *testing.T) {
	store := NewStore(t.TempDir(), "http://localhost:8080")

	file, header := uploadRequest([]byte("definitely not a png"), "fake.png", MimeTypePNG)
	_, err := store.Upload(file, header)

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["file"], "decodable")
}

func TestDeleteRemovesStoredFile(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, "http://localhost:8080")

	file, header := uploadRequest(pngBytes(t, 2, 2), "gone.png", MimeTypePNG)
	result, err := store.Upload(file, header)
	require.NoError(t, err)

	store.Delete(result.URL)

	entries, err := os.ReadDir(filepath.Join(dir, "blog"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteIsBestEffort(t *testing.T) {
	store := NewStore(t.TempDir(), "http://localhost:8080")

	// None of these may panic or surface an error.
	store.Delete("http://localhost:8080/uploads/blog/never-existed.png")
	store.Delete("http://localhost:8080/etc/passwd")
	store.Delete("http://localhost:8080/uploads/../../../etc/passwd")
	store.Delete("::not a url::")
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple.jpg", "simple.jpg"},
		{"with spaces.png", "with-spaces.png"},
		{"../../escape.png", "escape.png"},
		{`quo"te<s>.gif`, "quotes.gif"},
		{"noextension", "noextension.bin"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := sanitizeFilename(tt.input); got != tt.want {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMimeTypeFromExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"a.jpg", MimeTypeJPEG},
		{"a.JPEG", MimeTypeJPEG},
		{"a.png", MimeTypePNG},
		{"a.webp", MimeTypeWebP},
		{"a.gif", MimeTypeGIF},
		{"a.bmp", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := mimeTypeFromExtension(tt.filename); got != tt.want {
				t.Errorf("mimeTypeFromExtension(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}
