package client

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/diogo/nexus-go/pkg/models"
)

// MaxVisualSize is the largest image accepted as inline data.
const MaxVisualSize = 20 << 20

// LoadVisualInput reads an image file and returns it as a visual input.
func LoadVisualInput(filePath string) (*models.VisualInput, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return ReadVisualInput(f, filepath.Base(filePath))
}

// ReadVisualInput reads image bytes from r. The MIME type comes from the
// filename extension, falling back to content sniffing.
func ReadVisualInput(r io.Reader, filename string) (*models.VisualInput, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxVisualSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image %q is empty", filename)
	}
	if len(data) > MaxVisualSize {
		return nil, fmt.Errorf("image %q exceeds %d bytes", filename, MaxVisualSize)
	}

	contentType := detectContentType(filename)
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("unsupported image type %q for %s", contentType, filename)
	}

	return &models.VisualInput{
		Data:     base64.StdEncoding.EncodeToString(data),
		MIMEType: contentType,
	}, nil
}

// ParseDataURL builds a visual input from a "data:image/...;base64," URL.
func ParseDataURL(uri string) (*models.VisualInput, error) {
	mimeType, data, err := models.DecodeDataURI(uri)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("unsupported image type %q", mimeType)
	}
	return &models.VisualInput{
		Data:     base64.StdEncoding.EncodeToString(data),
		MIMEType: mimeType,
	}, nil
}

// detectContentType detects MIME type from filename.
func detectContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	case ".bmp":
		return "image/bmp"
	default:
		return "application/octet-stream"
	}
}

// IsImageFile reports whether the filename has a supported image extension.
func IsImageFile(filename string) bool {
	return strings.HasPrefix(detectContentType(filename), "image/")
}
