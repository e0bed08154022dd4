package utils

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteZipFromDirectory writes every markdown file under dirPath to w as a
// zip archive, keeping paths relative to dirPath
func WriteZipFromDirectory(dirPath string, w io.Writer) error {
	zipWriter := zip.NewWriter(w)

	err := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".md" {
			return nil
		}

		relPath, err := filepath.Rel(dirPath, path)
		if err != nil {
			return err
		}

		fileWriter, err := zipWriter.Create(filepath.ToSlash(relPath))
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(fileWriter, f)
		return err
	})
	if err != nil {
		_ = zipWriter.Close()
		return fmt.Errorf("zip %s: %w", dirPath, err)
	}

	return zipWriter.Close()
}
