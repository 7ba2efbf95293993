package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// UploadDir is where registration file artifacts land; it is served
// statically under /uploads. Tests point it at a temp directory.
var UploadDir = "uploads"

// EnsureUploadDir creates the uploads directory if it doesn't exist.
func EnsureUploadDir() error {
	return os.MkdirAll(UploadDir, os.ModePerm)
}

// GetUploadPath returns the on-disk path for a file inside the uploads directory.
func GetUploadPath(filename string) string {
	return filepath.Join(UploadDir, filename)
}

// UploadFilename builds a unique storage name for an uploaded file:
// a millisecond timestamp joined to the original name with whitespace
// replaced by underscores. The same rule produces the public /uploads path
// recorded in registration customData.
func UploadFilename(original string) string {
	sanitized := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, filepath.Base(original))
	return fmt.Sprintf("%d_%s", time.Now().UnixMilli(), sanitized)
}

// SaveFile writes the uploaded file to the given destination path, creating
// parent directories as needed.
func SaveFile(fileHeader *multipart.FileHeader, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), os.ModePerm); err != nil {
		return err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, file)
	return err
}
