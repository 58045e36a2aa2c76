package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"blog-server/internal/apperr"
	"blog-server/internal/domain"
	"blog-server/internal/storage"
)

// multipartOverhead leaves room for text fields next to the file part.
const multipartOverhead = 1 << 20

const msgInvalidCategories = "Invalid categories format. Must be a valid JSON array."

// parseForm reads a multipart body capped at the upload limit. Requests that
// are not multipart are left alone.
func (h *Handler) parseForm(c *gin.Context) error {
	if c.Request.MultipartForm != nil {
		return nil
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes+multipartOverhead)
	err := c.Request.ParseMultipartForm(h.opts.MaxUploadBytes)
	switch {
	case err == nil, errors.Is(err, http.ErrNotMultipart):
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.TooLarge("File too large")
	}
	return apperr.Validation("Invalid form data")
}

// formImage returns the file in field, or nil when the field is absent. done
// is never nil and must run once the request is handled: it closes the file
// and removes any parts the form spilled to disk. The server only cleans up
// the form of the request it created, not the copy carrying the session.
func (h *Handler) formImage(c *gin.Context, field string) (*domain.Upload, func(), error) {
	if err := h.parseForm(c); err != nil {
		return nil, func() {}, err
	}
	form := c.Request.MultipartForm
	if form == nil {
		return nil, func() {}, nil
	}
	removeForm := func() {
		if err := form.RemoveAll(); err != nil {
			h.log.WithError(err).Warn("multipart temp files not removed")
		}
	}

	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, removeForm, nil
		}
		return nil, removeForm, apperr.Validation("Invalid form data")
	}
	file, err := header.Open()
	if err != nil {
		return nil, removeForm, apperr.Internal(err, "open upload")
	}

	upload := &domain.Upload{Filename: header.Filename, Size: header.Size, Content: file}
	return upload, func() {
		file.Close()
		removeForm()
	}, nil
}

// parseCategories accepts either a JSON array in a single field or the field
// repeated once per category.
func parseCategories(values []string) ([]string, error) {
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var parsed []string
		if err := json.Unmarshal([]byte(values[0]), &parsed); err != nil {
			return nil, apperr.Validation(msgInvalidCategories)
		}
		return parsed, nil
	}
	return values, nil
}

func (h *Handler) serveUpload(c *gin.Context) {
	key, ok := storage.CleanKey(c.Param("key"))
	if !ok {
		h.respondError(c, apperr.NotFound("File not found"))
		return
	}

	body, info, err := h.images.Open(c.Request.Context(), key)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer body.Close()

	headers := map[string]string{"Cache-Control": "public, max-age=86400"}
	if info.LastModified != nil {
		headers["Last-Modified"] = info.LastModified.UTC().Format(http.TimeFormat)
	}
	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	size := info.Size
	if size <= 0 {
		size = -1
	}
	headers["X-Content-Type-Options"] = "nosniff"
	c.DataFromReader(http.StatusOK, size, contentType, body, headers)
}
