package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/P3chys/classroom-api/internal/config"
)

// TextExtractor turns an uploaded file into plain text for indexing.
type TextExtractor interface {
	ExtractText(ctx context.Context, file io.ReadSeeker) (string, error)
}

type TextExtractionService struct {
	tikaURL string
	client  *http.Client
}

func NewTextExtractionService(cfg *config.Config) *TextExtractionService {
	return &TextExtractionService{
		tikaURL: cfg.TikaURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *TextExtractionService) ExtractText(ctx context.Context, file io.ReadSeeker) (string, error) {
	// The storage upload has already consumed the reader
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.tikaURL+"/tika", file)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tika returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(bytes.TrimSpace(body)), nil
}

func IsTextExtractable(mimeType string) bool {
	return mimeType == "application/pdf" ||
		mimeType == "application/vnd.openxmlformats-officedocument.wordprocessingml.document" ||
		mimeType == "application/vnd.openxmlformats-officedocument.presentationml.presentation" ||
		strings.HasPrefix(mimeType, "text/")
}
