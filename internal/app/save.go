package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// saveDocument writes body unmodified to dir/name, creating dir as needed.
// The file appears atomically: readers never see a partial PDF.
func saveDocument(dir, name string, body []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("rename: %w", err)
	}
	return path, nil
}

// writeNotice prints the GitHub Actions annotation for the saved file and a
// plain confirmation line.
func writeNotice(w io.Writer, path, name string) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, "::notice file=%s::Successfully saved as %s\n", path, name)
	fmt.Fprintf(w, "File saved successfully as %s\n", path)
}
