package transport

import (
	"strings"

	"github.com/ds124wfegd/captioner/internal/service"
)

type CaptionHandler struct {
	service       service.CaptionService
	maxUploadSize int64
	baseURL       string
}

// NewCaptionHandler builds the handlers. baseURL prefixes download links; an
// empty baseURL gives links relative to the host.
func NewCaptionHandler(service service.CaptionService, maxUploadSize int64, baseURL string) *CaptionHandler {
	return &CaptionHandler{
		service:       service,
		maxUploadSize: maxUploadSize,
		baseURL:       strings.TrimSuffix(baseURL, "/"),
	}
}
