package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/trendly/backend/internal/domain"
)

// ImageFile is an uploaded image with its declared MIME type
type ImageFile struct {
	Reader   io.Reader
	MIMEType string // Detected from content when empty
	Name     string
}

// EncodedImage is an image ready to be sent to a vision model
type EncodedImage struct {
	Base64   string
	MIMEType string
	Digest   string // Hex SHA-256 of the raw image bytes
}

// EncodeImage reads the whole image and returns its base64 payload.
// Read failures and empty images are returned to the caller.
func EncodeImage(ctx context.Context, file ImageFile) (*EncodedImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if file.Reader == nil {
		return nil, fmt.Errorf("%w: no image provided", domain.ErrInvalidRequest)
	}

	data, err := io.ReadAll(file.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrImageRead, err)
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyImage
	}

	mimeType := strings.TrimSpace(file.MIMEType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimetype.Detect(data).String()
	}
	// Drop parameters such as charset
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%w: unsupported content type %q", domain.ErrInvalidRequest, mimeType)
	}

	sum := sha256.Sum256(data)
	return &EncodedImage{
		Base64:   base64.StdEncoding.EncodeToString(data),
		MIMEType: mimeType,
		Digest:   hex.EncodeToString(sum[:]),
	}, nil
}

// StripDataURLPrefix returns the payload of a data URL such as
// "data:image/png;base64,AAAA". Other strings are returned unchanged.
func StripDataURLPrefix(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[i+1:]
	}
	return s
}
