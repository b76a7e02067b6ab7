package services

import (
	"context"
	"fmt"
	"io"
	"math"
	"path"
	"strconv"
	"strings"

	"github.com/P3chys/classroom-api/internal/models"
	"github.com/google/uuid"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FileUpload is an incoming attachment. Reader is rewound before reuse, so
// it must support seeking.
type FileUpload struct {
	Filename    string
	Size        int64
	ContentType string
	Reader      io.ReadSeeker
}

// FormatSize renders a byte count with 1024-based units rounded to two
// decimals, e.g. 1536000 -> "1.46 MB".
func FormatSize(bytes int64) string {
	value := float64(bytes)
	i := 0
	for value >= 1024 && i < len(sizeUnits)-1 {
		value /= 1024
		i++
	}
	value = math.Round(value*100) / 100
	return fmt.Sprintf("%s %s", strconv.FormatFloat(value, 'f', -1, 64), sizeUnits[i])
}

// FileExtension returns the text after the last dot, or "" when there is none.
func FileExtension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return ""
	}
	return filename[i+1:]
}

// FilenameFromURL extracts the display filename from a retrieval URL.
func FilenameFromURL(rawURL string) string {
	parts := strings.Split(rawURL, "/")
	name := parts[len(parts)-1]
	if i := strings.Index(name, "?"); i >= 0 {
		name = name[:i]
	}
	return strings.ReplaceAll(name, "%20", " ")
}

func objectKey(kind string, id uuid.UUID, filename string) string {
	return fmt.Sprintf("%s/%s/%s", kind, id, cleanFilename(filename))
}

func objectPrefix(kind string, id uuid.UUID) string {
	return fmt.Sprintf("%s/%s/", kind, id)
}

func cleanFilename(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return "file"
	}
	return name
}

// storeAttachment uploads file under <kind>/<id>/<filename> and returns its
// retrieval URL together with its display attributes.
func storeAttachment(ctx context.Context, store ObjectStore, kind string, id uuid.UUID, file *FileUpload) (string, models.FileAttribute, error) {
	name := cleanFilename(file.Filename)
	key := objectKey(kind, id, name)

	if _, err := file.Reader.Seek(0, io.SeekStart); err != nil {
		return "", models.FileAttribute{}, fmt.Errorf("rewind upload: %w", err)
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := store.Upload(ctx, key, file.Reader, file.Size, contentType); err != nil {
		return "", models.FileAttribute{}, fmt.Errorf("upload %s: %w", key, err)
	}
	url, err := store.SignedURL(ctx, key)
	if err != nil {
		return "", models.FileAttribute{}, fmt.Errorf("sign %s: %w", key, err)
	}
	return url, models.FileAttribute{
		Name:      name,
		Size:      FormatSize(file.Size),
		Extension: FileExtension(name),
	}, nil
}
