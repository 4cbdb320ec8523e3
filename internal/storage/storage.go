// Package storage keeps uploaded images either on local disk or in S3.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Kind is the folder an image belongs to.
type Kind string

const (
	KindVehicle Kind = "vehicles"
	KindDriver  Kind = "drivers"
)

var (
	ErrTooLarge    = errors.New("file exceeds the upload size limit")
	ErrNotImage    = errors.New("only image uploads are allowed")
	ErrInvalidPath = errors.New("invalid file path")
)

// ImageStore saves an uploaded image and returns the URL clients use to
// fetch it.
type ImageStore interface {
	Save(ctx context.Context, kind Kind, file *multipart.FileHeader) (string, error)
}

type upload struct {
	body        []byte
	contentType string
	name        string
}

// readImage loads the upload into memory, enforcing the size limit and an
// image/* content type sniffed from the bytes.
func readImage(kind Kind, file *multipart.FileHeader, maxBytes int64) (*upload, error) {
	if file.Size > maxBytes {
		return nil, ErrTooLarge
	}
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(src, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if n > maxBytes {
		return nil, ErrTooLarge
	}

	contentType := http.DetectContentType(buf.Bytes())
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrNotImage
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	return &upload{
		body:        buf.Bytes(),
		contentType: contentType,
		name:        fmt.Sprintf("%s-%s%s", strings.TrimSuffix(string(kind), "s"), uuid.NewString(), ext),
	}, nil
}
