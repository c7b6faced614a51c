package ui

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/diogo/nexus-go/pkg/models"
)

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// SaveImages decodes data URI images into dir as <prefix>-<n><ext> and
// returns the written paths.
func SaveImages(images []string, dir, prefix string) ([]string, error) {
	if len(images) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create images directory: %w", err)
	}

	paths := make([]string, 0, len(images))
	for i, uri := range images {
		mimeType, data, err := models.DecodeDataURI(uri)
		if err != nil {
			return paths, fmt.Errorf("failed to decode image %d: %w", i+1, err)
		}

		ext, ok := imageExtensions[mimeType]
		if !ok {
			ext = ".bin"
		}

		path := filepath.Join(dir, fmt.Sprintf("%s-%d%s", prefix, i+1, ext))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return paths, fmt.Errorf("failed to write image: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
