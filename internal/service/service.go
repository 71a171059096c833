package service

import (
	"context"
	"io"
	"time"

	"github.com/ds124wfegd/captioner/internal/database"
	"github.com/ds124wfegd/captioner/internal/entity"
	"github.com/ds124wfegd/captioner/internal/pkg/caption"
	"github.com/ds124wfegd/captioner/internal/pkg/kafka"
	"github.com/ds124wfegd/captioner/internal/pkg/renderer"
)

type CaptionService interface {
	Fonts() []entity.FontInfo
	Render(file io.Reader, captions []entity.CaptionSpec, format string) (*renderer.Output, error)
	SubmitJob(ctx context.Context, id string, file io.Reader, captions []entity.CaptionSpec, format string) (*entity.RenderJob, error)
	GetJob(id string) (*entity.RenderJob, error)
	OpenResult(id string) (io.ReadCloser, *entity.RenderJob, error)
	DeleteJob(id string) error
	CleanupExpired(before time.Time) (int, error)
}

type Options struct {
	MaxCaptions int
	MaxPixels   int
}

type captionService struct {
	repo       database.JobRepository
	producer   kafka.Producer
	fonts      *caption.FontResolver
	compositor caption.Compositor
	opts       Options
}

func NewCaptionService(repo database.JobRepository, producer kafka.Producer, fonts *caption.FontResolver, compositor caption.Compositor, opts Options) CaptionService {
	return &captionService{
		repo:       repo,
		producer:   producer,
		fonts:      fonts,
		compositor: compositor,
		opts:       opts,
	}
}
