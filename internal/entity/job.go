package entity

import "time"

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type RenderJob struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	Format      string    `json:"format,omitempty"`
	ResultPath  string    `json:"result_path,omitempty"`
	Error       string    `json:"error,omitempty"`
	Fallbacks   []string  `json:"fallbacks,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// RenderTask is the queue message consumed by the renderer.
type RenderTask struct {
	JobID    string        `json:"job_id"`
	Format   string        `json:"format"`
	Captions []CaptionSpec `json:"captions"`
}

type JobResponse struct {
	ID          string   `json:"id"`
	Status      string   `json:"status"`
	DownloadURL string   `json:"download_url,omitempty"`
	Error       string   `json:"error,omitempty"`
	Fallbacks   []string `json:"fallbacks,omitempty"`
}

type FontInfo struct {
	Name    string `json:"name"`
	BuiltIn bool   `json:"built_in"`
}
