package worker

import (
	"context"
	"time"

	"github.com/ds124wfegd/captioner/internal/service"

	"github.com/sirupsen/logrus"
)

// DefaultCleanupInterval replaces a non-positive interval.
const DefaultCleanupInterval = 5 * time.Minute

type ResultCleanupWorker struct {
	captionService service.CaptionService
	interval       time.Duration
	ttl            time.Duration
	now            func() time.Time
}

func NewResultCleanupWorker(captionService service.CaptionService, interval, ttl time.Duration) *ResultCleanupWorker {
	if interval <= 0 {
		logrus.WithField("interval", interval).Warnf("Invalid cleanup interval, using %s", DefaultCleanupInterval)
		interval = DefaultCleanupInterval
	}
	return &ResultCleanupWorker{
		captionService: captionService,
		interval:       interval,
		ttl:            ttl,
		now:            time.Now,
	}
}

func (w *ResultCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("Result cleanup worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Result cleanup worker stopped")
			return
		case <-ticker.C:
			w.cleanupExpiredResults()
		}
	}
}

func (w *ResultCleanupWorker) cleanupExpiredResults() int {
	removed, err := w.captionService.CleanupExpired(w.now().Add(-w.ttl))
	if err != nil {
		logrus.WithError(err).Error("Failed to cleanup expired results")
	}
	if removed > 0 {
		logrus.WithField("removed", removed).Info("Expired results cleaned up")
	}
	return removed
}
