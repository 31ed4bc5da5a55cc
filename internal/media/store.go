// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package media persists uploaded blog images on disk and hands back
// stable, publicly resolvable locator URLs. There is no read or listing
// surface: the store is write-and-fetch-by-URL only.
package media

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/dataaqu/weforward/internal/model"
)

// Upload limits
const (
	MaxUploadSize = 10 * 1024 * 1024 // 10 MiB
	uploadSubdir  = "blog"
)

// Supported MIME types
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// allowedMimeTypes defines the image types that can be uploaded.
var allowedMimeTypes = map[string]bool{
	MimeTypeJPEG: true,
	MimeTypePNG:  true,
	MimeTypeGIF:  true,
	MimeTypeWebP: true,
}

// UploadResult describes a stored image.
type UploadResult struct {
	// URL is the locator: usable directly as an <img> source.
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"`
}

// Store writes images below an uploads directory and serves locators
// under baseURL. Both come from config.
type Store struct {
	uploadsDir string
	baseURL    string
}

// NewStore creates a media store rooted at uploadsDir.
func NewStore(uploadsDir, baseURL string) *Store {
	return &Store{
		uploadsDir: uploadsDir,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// Upload validates and persists one image, returning its locator.
// Validation (size, MIME type, decodability) happens before anything is
// written; storage rejections are wrapped as StorageError with a cause.
func (s *Store) Upload(file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	if header.Size > MaxUploadSize {
		return nil, model.NewValidationError("file",
			fmt.Sprintf("file size %d exceeds the maximum of %d bytes", header.Size, MaxUploadSize))
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mimeTypeFromExtension(header.Filename)
	}
	if !allowedMimeTypes[mimeType] {
		return nil, model.NewValidationError("file",
			fmt.Sprintf("file type %q is not allowed; use JPEG, PNG, WebP or GIF", mimeType))
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		return nil, &model.StorageError{Cause: model.StorageCauseUnavailable, Err: err}
	}
	if int64(len(data)) > MaxUploadSize {
		// Content-Length lied; re-check against the actual bytes.
		return nil, model.NewValidationError("file",
			fmt.Sprintf("file size exceeds the maximum of %d bytes", MaxUploadSize))
	}

	data, cfg, err := normalize(data, mimeType)
	if err != nil {
		return nil, model.NewValidationError("file", "file is not a decodable image")
	}

	name := storedName(header.Filename)
	dir := filepath.Join(s.uploadsDir, uploadSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storageError(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return nil, storageError(err)
	}

	return &UploadResult{
		URL:    s.baseURL + "/uploads/" + uploadSubdir + "/" + name,
		Width:  cfg.Width,
		Height: cfg.Height,
		Size:   int64(len(data)),
	}, nil
}

// Delete removes the file behind a locator. Best-effort by contract:
// failures are logged and swallowed so an orphaned image can never block
// or fail a post mutation.
func (s *Store) Delete(locator string) {
	rel, ok := s.relativePath(locator)
	if !ok {
		slog.Warn("media delete skipped: locator not owned by this store", "locator", locator)
		return
	}

	if err := os.Remove(filepath.Join(s.uploadsDir, filepath.FromSlash(rel))); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("media delete failed", "locator", locator, "error", err)
		}
	}
}

// relativePath maps a locator back to a path below the uploads dir,
// refusing anything that escapes it.
func (s *Store) relativePath(locator string) (string, bool) {
	u, err := url.Parse(locator)
	if err != nil {
		return "", false
	}
	p := path.Clean(u.Path)
	if !strings.HasPrefix(p, "/uploads/") {
		return "", false
	}
	rel := strings.TrimPrefix(p, "/uploads/")
	if rel == "" || strings.Contains(rel, "..") {
		return "", false
	}
	return rel, true
}

// storedName builds the on-disk filename: sanitized and
// timestamp-prefixed so concurrent uploads of the same file never collide.
func storedName(original string) string {
	name := sanitizeFilename(original)
	if strings.TrimSuffix(name, filepath.Ext(name)) == "" {
		// Nothing printable survived sanitizing; fall back to a UUID.
		name = uuid.New().String() + filepath.Ext(original)
	}
	return fmt.Sprintf("%d_%s", time.Now().UnixMilli(), name)
}

func sanitizeFilename(filename string) string {
	// Remove path separators
	filename = filepath.Base(filename)

	replacer := strings.NewReplacer(
		" ", "-",
		"'", "",
		"\"", "",
		"<", "",
		">", "",
		"&", "",
		"#", "",
		"?", "",
		"%", "",
	)
	filename = replacer.Replace(filename)

	if filepath.Ext(filename) == "" {
		filename += ".bin"
	}

	return filename
}

func mimeTypeFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return MimeTypeJPEG
	case ".png":
		return MimeTypePNG
	case ".gif":
		return MimeTypeGIF
	case ".webp":
		return MimeTypeWebP
	default:
		return "application/octet-stream"
	}
}

// storageError classifies a filesystem failure for message clarity only;
// nothing retries on it.
func storageError(err error) error {
	cause := model.StorageCauseUnavailable
	switch {
	case errors.Is(err, fs.ErrPermission):
		cause = model.StorageCausePermission
	case errors.Is(err, syscall.ENOSPC), errors.Is(err, syscall.EDQUOT):
		cause = model.StorageCauseQuota
	}
	return &model.StorageError{Cause: cause, Err: err}
}
