// Package qrcode renders strings as QR codes, either raw PNG bytes or a
// base64 data URI ready for an <img> tag. Thin wrapper over
// github.com/skip2/go-qrcode with input validation and a sane default size.
package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned for empty or whitespace-only content.
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrFailedToGenerate wraps failures from the underlying library.
	ErrFailedToGenerate = errors.New("failed to generate QR code")
)

const defaultSize = 256

// Generate returns a PNG QR code for content. Non-positive sizes fall back
// to the default.
func Generate(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = defaultSize
	}

	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerate, err)
	}
	return png, nil
}

// GenerateBase64Image returns the QR code as a PNG data URI.
func GenerateBase64Image(content string, size int) (string, error) {
	png, err := Generate(content, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
