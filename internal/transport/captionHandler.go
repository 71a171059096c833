package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/ds124wfegd/captioner/internal/entity"
	"github.com/ds124wfegd/captioner/internal/pkg/caption"
	"github.com/ds124wfegd/captioner/internal/pkg/codec"
	"github.com/ds124wfegd/captioner/internal/transport/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type captionRequest struct {
	file     *multipart.FileHeader
	captions []entity.CaptionSpec
	format   string
}

func (h *CaptionHandler) GetFonts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fonts": h.service.Fonts()})
}

// RenderCaptions draws the captions and answers with the image as a download.
func (h *CaptionHandler) RenderCaptions(c *gin.Context) {
	req, ok := h.parseRequest(c)
	if !ok {
		return
	}

	src, err := req.file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	out, err := h.service.Render(src, req.captions, req.format)
	if err != nil {
		_ = c.Error(err)
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename()))
	c.Header(middleware.FallbacksHeader, strconv.Itoa(len(out.Fallbacks)))
	c.Data(http.StatusOK, out.ContentType(), out.Data)
}

func (h *CaptionHandler) SubmitJob(c *gin.Context) {
	req, ok := h.parseRequest(c)
	if !ok {
		return
	}

	src, err := req.file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	// Генерация ID
	id := uuid.New().String()

	job, err := h.service.SubmitJob(c.Request.Context(), id, src, req.captions, req.format)
	if err != nil {
		_ = c.Error(err)
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, h.toJobResponse(job))
}

func (h *CaptionHandler) GetJob(c *gin.Context) {
	id := c.Param("id")

	job, err := h.service.GetJob(id)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.toJobResponse(job))
}

func (h *CaptionHandler) DownloadJob(c *gin.Context) {
	id := c.Param("id")

	rc, job, err := h.service.OpenResult(id)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	defer rc.Close()

	filename := "image_with_captions" + codec.Extension(job.Format)
	c.DataFromReader(http.StatusOK, -1, codec.ContentType(job.Format), rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", filename),
	})
}

func (h *CaptionHandler) DeleteJob(c *gin.Context) {
	id := c.Param("id")

	if err := h.service.DeleteJob(id); err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "job deleted successfully"})
}

func (h *CaptionHandler) parseRequest(c *gin.Context) (*captionRequest, bool) {
	if h.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)
	}

	file, err := c.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image file is too large"})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return nil, false
	}

	// Проверка типа файла
	if !codec.IsValidExtension(filepath.Ext(file.Filename)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image type. Supported: jpg, jpeg, png"})
		return nil, false
	}

	var captions []entity.CaptionSpec
	if raw := c.PostForm("captions"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &captions); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid captions: " + err.Error()})
			return nil, false
		}
	}

	return &captionRequest{
		file:     file,
		captions: captions,
		format:   c.PostForm("format"),
	}, true
}

func (h *CaptionHandler) toJobResponse(job *entity.RenderJob) entity.JobResponse {
	resp := entity.JobResponse{
		ID:        job.ID,
		Status:    job.Status,
		Error:     job.Error,
		Fallbacks: job.Fallbacks,
	}
	if job.Status == entity.StatusCompleted {
		resp.DownloadURL = h.baseURL + "/api/jobs/" + job.ID + "/download"
	}
	return resp
}

func errorStatus(err error) int {
	var captionErr *caption.Error
	switch {
	case errors.Is(err, entity.ErrInvalidCaption),
		errors.Is(err, entity.ErrInvalidColor),
		errors.Is(err, entity.ErrTooManyCaptions),
		errors.Is(err, entity.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, entity.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrJobNotReady):
		return http.StatusConflict
	case errors.Is(err, entity.ErrJobFailed), errors.As(err, &captionErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
