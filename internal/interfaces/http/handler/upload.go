package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/sisl/eshop/internal/application/catalog"
	"github.com/sisl/eshop/internal/interfaces/http/dto"
)

// imageFormField is the multipart field carrying an uploaded image
const imageFormField = "image"

// DefaultMaxImageSize bounds an uploaded image when no limit is configured
const DefaultMaxImageSize int64 = 10 << 20

// readImage reads the uploaded image from the multipart form. The content type is
// sniffed from the bytes; the client-declared type is ignored.
func (h *BaseHandler) readImage(c *gin.Context, maxBytes int64) (catalogapp.ImageUpload, bool) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageSize
	}

	fileHeader, err := c.FormFile(imageFormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Uploaded file is too large")
			return catalogapp.ImageUpload{}, false
		}
		h.BadRequest(c, fmt.Sprintf("Missing %q file in multipart form", imageFormField))
		return catalogapp.ImageUpload{}, false
	}
	if fileHeader.Size > maxBytes {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Uploaded file is too large")
		return catalogapp.ImageUpload{}, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Uploaded file could not be read")
		return catalogapp.ImageUpload{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		h.BadRequest(c, "Uploaded file could not be read")
		return catalogapp.ImageUpload{}, false
	}
	if int64(len(data)) > maxBytes {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Uploaded file is too large")
		return catalogapp.ImageUpload{}, false
	}

	return catalogapp.ImageUpload{
		Filename:    fileHeader.Filename,
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, true
}
