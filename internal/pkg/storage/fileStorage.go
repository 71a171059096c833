package storage

import (
	"io"
	"os"
	"path/filepath"
)

const (
	OriginalDir = "original"
	RenderedDir = "rendered"
	MetadataDir = "metadata"
)

type FileStorage interface {
	Save(path string, data io.Reader) error
	Get(path string) (io.ReadCloser, error)
	Delete(path string) error
	FullPath(path string) string
	List(dir string) ([]string, error)
}

type fileStorage struct {
	basePath string
}

func NewFileStorage(basePath string) FileStorage {
	return &fileStorage{basePath: basePath}
}

func (s *fileStorage) Save(path string, data io.Reader) error {
	fullPath := s.FullPath(path)

	// Создаем директорию если нужно
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	// пишем во временный файл, чтобы читатели не увидели половину изображения
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), fullPath)
}

func (s *fileStorage) Get(path string) (io.ReadCloser, error) {
	return os.Open(s.FullPath(path))
}

func (s *fileStorage) Delete(path string) error {
	return os.Remove(s.FullPath(path))
}

func (s *fileStorage) FullPath(path string) string {
	return filepath.Join(s.basePath, filepath.Clean("/"+path))
}

// List returns the file names directly inside dir.
func (s *fileStorage) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(s.FullPath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
