package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"time"

	"github.com/ds124wfegd/captioner/internal/database"
	"github.com/ds124wfegd/captioner/internal/entity"
	"github.com/ds124wfegd/captioner/internal/pkg/caption"
	"github.com/ds124wfegd/captioner/internal/pkg/codec"
	"github.com/sirupsen/logrus"
)

// Output is an encoded, captioned image ready for download.
type Output struct {
	Data      []byte
	Format    string
	HasAlpha  bool
	Fallbacks []string
}

func (o *Output) ContentType() string {
	return codec.ContentType(o.Format)
}

func (o *Output) Filename() string {
	return "image_with_captions" + codec.Extension(o.Format)
}

// RenderImage composes captions onto img and encodes the result.
func RenderImage(c caption.Compositor, img image.Image, captions []entity.CaptionSpec, format string) (*Output, error) {
	res, err := c.Compose(img, captions)
	if err != nil {
		return nil, err
	}

	out := &Output{
		Format:   codec.ChooseFormat(format, res.HasAlpha),
		HasAlpha: res.HasAlpha,
	}
	for _, fb := range res.Fallbacks {
		out.Fallbacks = append(out.Fallbacks, fb.String())
	}

	out.Data, err = codec.EncodeBytes(res.Image, out.Format)
	if err != nil {
		return nil, err
	}
	return out, nil
}

type Renderer interface {
	Render(task entity.RenderTask) error
	HandleMessage(value []byte) error
}

type renderer struct {
	repo       database.JobRepository
	compositor caption.Compositor
	maxPixels  int
}

func NewRenderer(repo database.JobRepository, compositor caption.Compositor, maxPixels int) Renderer {
	return &renderer{repo: repo, compositor: compositor, maxPixels: maxPixels}
}

func (r *renderer) HandleMessage(value []byte) error {
	var task entity.RenderTask
	if err := json.Unmarshal(value, &task); err != nil {
		return fmt.Errorf("failed to parse task: %w", err)
	}
	return r.Render(task)
}

// Render runs one job. Rendering failures are recorded on the job; the returned
// error is only non-nil when the job itself could not be loaded or saved.
func (r *renderer) Render(task entity.RenderTask) error {
	log := logrus.WithField("job_id", task.JobID)
	log.Info("Rendering captions")

	job, err := r.repo.FindByID(task.JobID)
	if err != nil {
		return fmt.Errorf("failed to load job %s: %w", task.JobID, err)
	}

	out, err := r.render(task)
	if err != nil {
		log.WithError(err).Error("Rendering failed")
		job.Status = entity.StatusFailed
		job.Error = err.Error()
	} else {
		path, err := r.repo.SaveResult(task.JobID, out.Format, bytes.NewReader(out.Data))
		if err != nil {
			return fmt.Errorf("failed to save result: %w", err)
		}
		job.Status = entity.StatusCompleted
		job.Format = out.Format
		job.ResultPath = path
		job.Fallbacks = out.Fallbacks
	}
	job.CompletedAt = time.Now().UTC()

	if err := r.repo.Save(job); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	log.WithField("status", job.Status).Info("Completed rendering")
	return nil
}

func (r *renderer) render(task entity.RenderTask) (*Output, error) {
	src, err := r.repo.OpenOriginal(task.JobID)
	if err != nil {
		return nil, fmt.Errorf("failed to open original: %w", err)
	}
	defer src.Close()

	decoded, err := codec.Decode(src, r.maxPixels)
	if err != nil {
		return nil, err
	}
	return RenderImage(r.compositor, decoded.Image, task.Captions, task.Format)
}

// Run blocks until ctx is done, feeding messages from next to the renderer.
// next is usually a Kafka reader; see StartConsumer.
func Run(ctx context.Context, r Renderer, next func(ctx context.Context) ([]byte, error)) {
	for {
		value, err := next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logrus.Info("Renderer stopped")
				return
			}
			logrus.WithError(err).Error("Error reading message")
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		if err := r.HandleMessage(value); err != nil {
			logrus.WithError(err).Error("Processing failed")
		}
	}
}
