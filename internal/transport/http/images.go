package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	inframinio "livequiz-service/internal/infra/minio"
)

// ImageUploader is the slice of object storage the upload endpoint needs.
type ImageUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (string, error)
}

// ImageHandler accepts multipart choice-image uploads and returns the stored
// URL for the host to attach to a choice.
type ImageHandler struct {
	store ImageUploader
	log   *zap.Logger
}

func NewImageHandler(store ImageUploader, log *zap.Logger) *ImageHandler {
	return &ImageHandler{store: store, log: log}
}

func (h *ImageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.store == nil {
		http.Error(w, "image storage not configured", http.StatusServiceUnavailable)
		return
	}

	if err := r.ParseMultipartForm(inframinio.MaxImageSize); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "missing image field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > inframinio.MaxImageSize {
		http.Error(w, "image exceeds 2MB limit", http.StatusRequestEntityTooLarge)
		return
	}

	name := fmt.Sprintf("%d%s", time.Now().UnixNano(), filepath.Ext(header.Filename))
	url, err := h.store.Upload(r.Context(), name, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		h.log.Error("image upload failed", zap.Error(err))
		http.Error(w, "upload failed, please retry", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"url":%q}`, url)
}
