package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ds124wfegd/captioner/internal/entity"
	"github.com/ds124wfegd/captioner/internal/pkg/codec"
	"github.com/ds124wfegd/captioner/internal/pkg/renderer"
	"github.com/sirupsen/logrus"
)

func (s *captionService) Fonts() []entity.FontInfo {
	return s.fonts.Fonts()
}

func (s *captionService) Render(file io.Reader, captions []entity.CaptionSpec, format string) (*renderer.Output, error) {
	if err := entity.ValidateCaptions(captions, s.opts.MaxCaptions); err != nil {
		return nil, err
	}

	decoded, err := codec.Decode(file, s.opts.MaxPixels)
	if err != nil {
		return nil, err
	}

	return renderer.RenderImage(s.compositor, decoded.Image, captions, format)
}

func (s *captionService) SubmitJob(ctx context.Context, id string, file io.Reader, captions []entity.CaptionSpec, format string) (*entity.RenderJob, error) {
	if err := entity.ValidateCaptions(captions, s.opts.MaxCaptions); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	// отклоняем битые файлы сразу, а не в воркере
	if _, err := codec.Decode(bytes.NewReader(data), s.opts.MaxPixels); err != nil {
		return nil, err
	}

	// Сохраняем файл до записи, чтобы не оставить задачу без оригинала
	if err := s.repo.SaveOriginal(id, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to save original: %w", err)
	}

	// Создаем запись в репозитории
	job := &entity.RenderJob{
		ID:        id,
		Status:    entity.StatusProcessing,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Save(job); err != nil {
		if delErr := s.repo.Delete(id); delErr != nil {
			logrus.WithError(delErr).WithField("job_id", id).Error("Failed to remove original of unsaved job")
		}
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	// Отправляем в Kafka для обработки
	task := entity.RenderTask{
		JobID:    id,
		Format:   format,
		Captions: captions,
	}
	if err := s.producer.SendMessage(ctx, id, task); err != nil {
		job.Status = entity.StatusFailed
		job.Error = "failed to enqueue render task"
		if saveErr := s.repo.Save(job); saveErr != nil {
			logrus.WithError(saveErr).WithField("job_id", id).Error("Failed to mark job as failed")
		}
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	return job, nil
}

func (s *captionService) GetJob(id string) (*entity.RenderJob, error) {
	return s.repo.FindByID(id)
}

func (s *captionService) OpenResult(id string) (io.ReadCloser, *entity.RenderJob, error) {
	job, err := s.repo.FindByID(id)
	if err != nil {
		return nil, nil, err
	}

	switch job.Status {
	case entity.StatusCompleted:
	case entity.StatusFailed:
		return nil, job, fmt.Errorf("%w: %s", entity.ErrJobFailed, job.Error)
	default:
		return nil, job, entity.ErrJobNotReady
	}

	rc, err := s.repo.OpenResult(job.ResultPath)
	if err != nil {
		return nil, job, fmt.Errorf("failed to open result: %w", err)
	}
	return rc, job, nil
}

func (s *captionService) DeleteJob(id string) error {
	if _, err := s.repo.FindByID(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

// CleanupExpired deletes jobs created before the cutoff, and files whose job
// metadata is already gone. In file mode ListIDs also returns records without
// an original, so those expire as well.
func (s *captionService) CleanupExpired(before time.Time) (int, error) {
	ids, err := s.repo.ListIDs()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, id := range ids {
		job, err := s.repo.FindByID(id)
		switch {
		case errors.Is(err, entity.ErrJobNotFound):
		case err != nil:
			logrus.WithError(err).WithField("job_id", id).Warn("Failed to load job during cleanup")
			continue
		case job.CreatedAt.After(before):
			continue
		}

		if err := s.repo.Delete(id); err != nil {
			return removed, fmt.Errorf("failed to delete job %s: %w", id, err)
		}
		removed++
	}
	return removed, nil
}
