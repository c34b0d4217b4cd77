package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// MaxUploadBytes bounds an uploaded image.
const MaxUploadBytes = 10 << 20

// File is an uploaded file read fully into memory.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// IsMultipart reports whether r carries a multipart/form-data body.
func IsMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// DecodeMultipart reads the JSON document in form field field into v and
// validates it. The optional image part is returned when present.
func DecodeMultipart(w http.ResponseWriter, r *http.Request, field string, v any) (*File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	doc := r.FormValue(field)
	if doc == "" {
		return nil, fmt.Errorf("invalid multipart form: missing %q field", field)
	}
	if err := json.Unmarshal([]byte(doc), v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := Validate(v); err != nil {
		return nil, err
	}

	f, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid image: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", MaxUploadBytes)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("image must be an image, got %s", contentType)
	}

	return &File{Filename: header.Filename, ContentType: contentType, Data: data}, nil
}
