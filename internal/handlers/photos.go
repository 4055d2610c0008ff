package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/office-duty-card/internal/photostore"
)

// PhotoSource serves stored photo bytes.
type PhotoSource interface {
	Open(ctx context.Context, id string) ([]byte, string, error)
}

// PhotoHandler serves photos kept in the database bucket.
type PhotoHandler struct {
	source PhotoSource
}

func NewPhotoHandler(source PhotoSource) *PhotoHandler {
	return &PhotoHandler{source: source}
}

// Get handles GET /photos/{id}
func (h *PhotoHandler) Get(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.source.Open(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, photostore.ErrPhotoNotFound) {
		http.Error(w, "Photo not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.WithError(err).Error("Failed to read photo")
		http.Error(w, "Failed to read photo", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
