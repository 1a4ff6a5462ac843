// Package storage uploads user images (group pictures, avatars) to object
// storage and returns their public URLs.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	storage_go "github.com/supabase-community/storage-go"
)

// MaxImageSize caps uploaded images
const MaxImageSize = 5 << 20

var (
	ErrTooLarge = errors.New("image is too large")
	ErrNotImage = errors.New("file is not an image")
)

// Uploader stores an object and returns a URL it can be fetched from
type Uploader interface {
	Upload(path, contentType string, r io.Reader) (string, error)
}

// Supabase stores objects in a Supabase storage bucket
type Supabase struct {
	client *storage_go.Client
	bucket string
}

// NewSupabase creates an uploader for bucket on the project at baseURL
func NewSupabase(baseURL, key, bucket string) *Supabase {
	client := storage_go.NewClient(strings.TrimRight(baseURL, "/")+"/storage/v1", key, nil)
	return &Supabase{client: client, bucket: bucket}
}

// Upload writes r to path, replacing any existing object
func (s *Supabase) Upload(path, contentType string, r io.Reader) (string, error) {
	upsert := true
	options := storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}
	if _, err := s.client.UploadFile(s.bucket, path, r, options); err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	return s.client.GetPublicUrl(s.bucket, path).SignedURL, nil
}

// UploadImage validates an uploaded image and stores it under folder with a
// random name, keeping the original extension.
func UploadImage(up Uploader, folder string, fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxImageSize {
		return "", ErrTooLarge
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotImage
	}

	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	path := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), strings.ToLower(filepath.Ext(fh.Filename)))
	return up.Upload(path, contentType, f)
}
