package database

import (
	"io"

	"github.com/ds124wfegd/captioner/internal/entity"
	"github.com/ds124wfegd/captioner/internal/pkg/storage"
)

type JobRepository interface {
	Save(job *entity.RenderJob) error
	FindByID(id string) (*entity.RenderJob, error)
	Delete(id string) error
	ListIDs() ([]string, error)
	SaveOriginal(id string, file io.Reader) error
	OpenOriginal(id string) (io.ReadCloser, error)
	SaveResult(id string, format string, file io.Reader) (string, error)
	OpenResult(path string) (io.ReadCloser, error)
}

type fileJobRepository struct {
	jobFiles
}

type jobFiles struct {
	storage storage.FileStorage
}
