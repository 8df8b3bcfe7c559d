package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
)

// Writer persists documents to a single file, replacing it on each write.
type Writer struct {
	path string
}

// NewWriter creates a writer for path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the target file path.
func (w *Writer) Path() string {
	return w.path
}

// Write encodes doc and replaces the target file. The content goes to a
// temporary file in the same directory first, so readers never see a
// partially written snapshot.
func (w *Writer) Write(doc *Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(w.path), "."+filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, w.path); err != nil {
		return fmt.Errorf("replace snapshot file: %w", err)
	}

	return nil
}
