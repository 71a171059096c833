package database

import (
	"io"
	"os"
	"path/filepath"

	"github.com/ds124wfegd/captioner/internal/pkg/codec"
	"github.com/ds124wfegd/captioner/internal/pkg/storage"
)

func (f jobFiles) SaveOriginal(id string, file io.Reader) error {
	return f.storage.Save(f.originalPath(id), file)
}

func (f jobFiles) OpenOriginal(id string) (io.ReadCloser, error) {
	return f.storage.Get(f.originalPath(id))
}

func (f jobFiles) SaveResult(id string, format string, file io.Reader) (string, error) {
	path := f.resultPath(id, format)
	if err := f.storage.Save(path, file); err != nil {
		return "", err
	}
	return path, nil
}

func (f jobFiles) OpenResult(path string) (io.ReadCloser, error) {
	return f.storage.Get(path)
}

// ListIDs returns the ids of every stored original.
func (f jobFiles) ListIDs() ([]string, error) {
	return f.storage.List(storage.OriginalDir)
}

func (f jobFiles) deleteFiles(id string) error {
	paths := []string{
		f.originalPath(id),
		f.resultPath(id, codec.FormatPNG),
		f.resultPath(id, codec.FormatJPEG),
	}
	for _, p := range paths {
		if err := f.storage.Delete(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (f jobFiles) originalPath(id string) string {
	return filepath.Join(storage.OriginalDir, id)
}

func (f jobFiles) resultPath(id string, format string) string {
	return filepath.Join(storage.RenderedDir, id+codec.Extension(format))
}
