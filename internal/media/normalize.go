// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package media

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"

	_ "image/gif"  // GIF decoder
	_ "image/png"  // PNG decoder

	_ "golang.org/x/image/webp" // WebP decoder
)

// jpegQuality for re-encoded JPEGs. Only rotated uploads are re-encoded.
const jpegQuality = 90

// normalize verifies the payload decodes as an image and returns it with
// EXIF orientation applied. Uploads without a rotation tag pass through
// byte-identical so nothing is re-encoded needlessly.
func normalize(data []byte, mimeType string) ([]byte, image.Config, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, image.Config{}, err
	}

	if mimeType != MimeTypeJPEG || exifOrientation(data) <= 1 {
		return data, cfg, nil
	}

	// Camera uploads carry rotation in EXIF rather than in pixels.
	// Bake the orientation in so the locator renders upright everywhere.
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, image.Config{}, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, image.Config{}, err
	}

	bounds := img.Bounds()
	cfg.Width = bounds.Dx()
	cfg.Height = bounds.Dy()
	return buf.Bytes(), cfg, nil
}

// exifOrientation returns the EXIF orientation tag value, or 1 (upright)
// when the tag is absent or unreadable.
func exifOrientation(data []byte) int {
	meta, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := meta.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}
