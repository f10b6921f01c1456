package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/BerylCAtieno/document-chat/internal/models"
)

// readFiles loads paths in the given order.
func readFiles(paths []string) ([]models.FileHandle, error) {
	files := make([]models.FileHandle, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, models.FileHandle{
			Name:     filepath.Base(path),
			Data:     data,
			MIMEType: mime.TypeByExtension(filepath.Ext(path)),
		})
	}
	return files, nil
}
