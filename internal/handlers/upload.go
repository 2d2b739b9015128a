package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/soleracask/solera-cask-sub000/internal/storage"
)

// maxUploadBytes bounds multipart parsing memory for image uploads.
const maxUploadBytes = 10 << 20

type UploadHandler struct {
	store storage.Storage
}

func NewUploadHandler(store storage.Storage) *UploadHandler {
	return &UploadHandler{store: store}
}

// Upload serves POST /api/upload and /api/images: a multipart image under the
// "image" field (legacy clients send "file"), answered with the stored URL.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		file, header, err = r.FormFile("file")
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing image file")
		return
	}
	defer file.Close()

	url, err := h.store.Save(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			respondError(w, http.StatusBadRequest, "only image uploads are accepted")
			return
		}
		log.Printf("store upload: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to store image")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"url": url})
}
