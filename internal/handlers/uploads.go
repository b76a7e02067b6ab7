package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/P3chys/classroom-api/internal/apperr"
	"github.com/P3chys/classroom-api/internal/services"
	"github.com/gin-gonic/gin"
)

// formFile opens the optional multipart "file" field. It returns a nil
// upload when the field is absent. The caller closes the returned closer.
func formFile(c *gin.Context, maxSize int64) (*services.FileUpload, func(), error) {
	header, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, apperr.Validation("Invalid file upload")
	}
	if maxSize > 0 && header.Size > maxSize {
		return nil, func() {}, apperr.Validation(fmt.Sprintf("File exceeds %s limit", services.FormatSize(maxSize)))
	}

	file, err := header.Open()
	if err != nil {
		return nil, func() {}, apperr.Internal("failed to open uploaded file", err)
	}
	return uploadFrom(header, file), func() { _ = file.Close() }, nil
}

func uploadFrom(header *multipart.FileHeader, file multipart.File) *services.FileUpload {
	return &services.FileUpload{
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	}
}
