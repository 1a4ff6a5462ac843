package storage

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
)

type recorder struct {
	path, contentType string
	body              []byte
}

func (r *recorder) Upload(path, contentType string, body io.Reader) (string, error) {
	r.path = path
	r.contentType = contentType
	r.body, _ = io.ReadAll(body)
	return "https://cdn.example.com/" + path, nil
}

func fileHeader(t *testing.T, name, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, _ := w.CreatePart(h)
	part.Write(data)
	w.Close()

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(MaxImageSize); err != nil {
		t.Fatalf("Failed to parse form: %v", err)
	}
	return req.MultipartForm.File["file"][0]
}

func TestUploadImage(t *testing.T) {
	rec := &recorder{}
	url, err := UploadImage(rec, "groups/7", fileHeader(t, "Party.PNG", "image/png", []byte("png-bytes")))
	if err != nil {
		t.Fatalf("UploadImage failed: %v", err)
	}
	if !strings.HasPrefix(rec.path, "groups/7/") || !strings.HasSuffix(rec.path, ".png") {
		t.Errorf("Unexpected object path %q", rec.path)
	}
	if rec.contentType != "image/png" || string(rec.body) != "png-bytes" {
		t.Errorf("Unexpected upload: %q %q", rec.contentType, rec.body)
	}
	if url != "https://cdn.example.com/"+rec.path {
		t.Errorf("Unexpected url %q", url)
	}
}

func TestUploadImageRejectsNonImages(t *testing.T) {
	_, err := UploadImage(&recorder{}, "avatars", fileHeader(t, "notes.txt", "text/plain", []byte("hi")))
	if !errors.Is(err, ErrNotImage) {
		t.Errorf("Expected ErrNotImage, got %v", err)
	}
}
