package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ds124wfegd/captioner/internal/database"
	"github.com/ds124wfegd/captioner/internal/entity"
	"github.com/ds124wfegd/captioner/internal/pkg/caption"
	"github.com/ds124wfegd/captioner/internal/pkg/kafka"
	"github.com/ds124wfegd/captioner/internal/pkg/renderer"
	"github.com/ds124wfegd/captioner/internal/pkg/storage"
	"github.com/ds124wfegd/captioner/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	logrus.SetLevel(logrus.PanicLevel)
}

// newTestRouter wires the real service with a producer that renders in-process.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	logger, _ := test.NewNullLogger()
	repo := database.NewJobRepository(storage.NewFileStorage(t.TempDir()))
	fonts := caption.NewFontResolver(t.TempDir(), nil)
	compositor := caption.NewCompositor(fonts, logger)
	r := renderer.NewRenderer(repo, compositor, 0)

	producer := kafka.NewMockProducer(func(key string, value []byte) {
		require.NoError(t, r.HandleMessage(value))
	})
	svc := service.NewCaptionService(repo, producer, fonts, compositor, service.Options{MaxCaptions: 5})
	return InitRoutes(NewCaptionHandler(svc, 1<<20, ""), time.Second)
}

func multipartBody(t *testing.T, filename string, img []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	if img != nil {
		part, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(img)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func whitePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 120, 60))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func do(router *gin.Engine, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = new(bytes.Buffer)
	}
	req := httptest.NewRequest(method, path, body).WithContext(context.Background())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRenderCaptions(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name        string
		filename    string
		image       []byte
		fields      map[string]string
		status      int
		contentType string
		disposition string
	}{
		{
			name:        "png download",
			filename:    "photo.png",
			image:       whitePNG(t),
			fields:      map[string]string{"captions": `[{"text":"Hi\nthere","font":"GoRegular","size":20,"color":"#ff0000","position":{"x":5,"y":5}}]`},
			status:      http.StatusOK,
			contentType: "image/png",
			disposition: `attachment; filename="image_with_captions.png"`,
		},
		{
			name:        "opaque jpeg requested",
			filename:    "photo.png",
			image:       whitePNG(t),
			fields:      map[string]string{"captions": `[{"text":"Hi","size":20,"color":"#000"}]`, "format": "jpeg"},
			status:      http.StatusOK,
			contentType: "image/jpeg",
			disposition: `attachment; filename="image_with_captions.jpg"`,
		},
		{
			name:        "translucent jpeg falls back to png",
			filename:    "photo.png",
			image:       whitePNG(t),
			fields:      map[string]string{"captions": `[{"text":"Hi","size":20,"color":"#000000","alpha":128,"mode":"centered"}]`, "format": "jpeg"},
			status:      http.StatusOK,
			contentType: "image/png",
			disposition: `attachment; filename="image_with_captions.png"`,
		},
		{
			name:     "missing image",
			filename: "photo.png",
			fields:   map[string]string{"captions": `[]`},
			status:   http.StatusBadRequest,
		},
		{
			name:     "wrong extension",
			filename: "photo.gif",
			image:    whitePNG(t),
			status:   http.StatusBadRequest,
		},
		{
			name:     "bad color",
			filename: "photo.png",
			image:    whitePNG(t),
			fields:   map[string]string{"captions": `[{"text":"Hi","size":20,"color":"#zzzzzz"}]`},
			status:   http.StatusBadRequest,
		},
		{
			name:     "bad mode",
			filename: "photo.png",
			image:    whitePNG(t),
			fields:   map[string]string{"captions": `[{"text":"Hi","size":20,"color":"#000","mode":"diagonal"}]`},
			status:   http.StatusBadRequest,
		},
		{
			name:     "corrupt upload",
			filename: "photo.png",
			image:    []byte("nope"),
			status:   http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, tt.filename, tt.image, tt.fields)
			rec := do(router, http.MethodPost, "/api/captions", body, ct)

			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status != http.StatusOK {
				return
			}
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.disposition, rec.Header().Get("Content-Disposition"))
			assert.Equal(t, "0", rec.Header().Get("X-Font-Fallbacks"))

			cfg, _, err := image.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, 120, cfg.Width)
			assert.Equal(t, 60, cfg.Height)
		})
	}
}

func TestRenderCaptionsReportsFallbacks(t *testing.T) {
	router := newTestRouter(t)

	body, ct := multipartBody(t, "photo.png", whitePNG(t), map[string]string{
		"captions": `[{"text":"Hi","font":"Lumanosimo-Regular.ttf","size":30,"color":"#000"}]`,
	})
	rec := do(router, http.MethodPost, "/api/captions", body, ct)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Font-Fallbacks"))
}

func TestJobLifecycle(t *testing.T) {
	router := newTestRouter(t)

	body, ct := multipartBody(t, "photo.png", whitePNG(t), map[string]string{
		"captions": `[{"text":"queued","font":"GoMono","size":14,"color":"#00ff00"}]`,
	})
	rec := do(router, http.MethodPost, "/api/jobs", body, ct)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var submitted entity.JobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))
	require.NotEmpty(t, submitted.ID)

	rec = do(router, http.MethodGet, "/api/jobs/"+submitted.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var status entity.JobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, entity.StatusCompleted, status.Status)
	assert.Equal(t, "/api/jobs/"+submitted.ID+"/download", status.DownloadURL)

	rec = do(router, http.MethodGet, status.DownloadURL, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	_, format, err := image.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	rec = do(router, http.MethodDelete, "/api/jobs/"+submitted.ID, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodGet, "/api/jobs/"+submitted.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(router, http.MethodGet, "/api/jobs/"+submitted.ID+"/download", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFontsAndHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/fonts", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Fonts []entity.FontInfo `json:"fonts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, caption.DefaultFont, resp.Fonts[0].Name)

	rec = do(router, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodOptions, "/api/captions", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: entity.ErrInvalidCaption, want: http.StatusBadRequest},
		{err: entity.ErrImageTooLarge, want: http.StatusRequestEntityTooLarge},
		{err: entity.ErrJobNotFound, want: http.StatusNotFound},
		{err: entity.ErrJobNotReady, want: http.StatusConflict},
		{err: &caption.Error{Index: 0, Step: caption.StepDraw, Err: assert.AnError}, want: http.StatusUnprocessableEntity},
		{err: assert.AnError, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, errorStatus(tt.err), tt.err.Error())
	}
}

func TestJobResponseDownloadURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		status  string
		want    string
	}{
		{name: "relative", baseURL: "", status: entity.StatusCompleted, want: "/api/jobs/42/download"},
		{name: "absolute", baseURL: "https://captions.example.com/", status: entity.StatusCompleted, want: "https://captions.example.com/api/jobs/42/download"},
		{name: "not ready", baseURL: "https://captions.example.com", status: entity.StatusProcessing, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCaptionHandler(nil, 0, tt.baseURL)
			resp := h.toJobResponse(&entity.RenderJob{ID: "42", Status: tt.status})
			assert.Equal(t, tt.want, resp.DownloadURL)
		})
	}
}
