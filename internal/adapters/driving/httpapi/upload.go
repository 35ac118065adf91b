package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Upload limits.
const (
	UploadField     = "files"
	MaxUploadMemory = 32 << 20
)

// readUpload collects every file under the "files" field as a document.
// Files must be UTF-8 text.
func readUpload(r *http.Request) ([]domain.Document, error) {
	if err := r.ParseMultipartForm(MaxUploadMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, domain.ValidationError("no files provided")
		}
		return nil, domain.ValidationError("invalid multipart body: %v", err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File[UploadField]
	if len(headers) == 0 {
		return nil, domain.ValidationError("no files provided")
	}

	docs := make([]domain.Document, 0, len(headers))
	for _, fh := range headers {
		content, err := readPart(fh)
		if err != nil {
			return nil, err
		}
		docs = append(docs, domain.Document{
			ID:      uuid.NewString(),
			Name:    fh.Filename,
			Content: content,
		})
	}
	return docs, nil
}

func readPart(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	if !utf8.Valid(data) {
		return "", domain.ValidationError("%s is not UTF-8 text", fh.Filename)
	}
	return string(data), nil
}
