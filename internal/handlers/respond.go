package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/office-duty-card/internal/cards"
	"github.com/ukydev/office-duty-card/internal/db"
	"github.com/ukydev/office-duty-card/internal/export"
	"github.com/ukydev/office-duty-card/internal/photostore"
)

// maxBodyBytes bounds request bodies; an inline photo is the largest part.
const maxBodyBytes = 16 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// readJSON decodes the request body into v.
func readJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}

// writeServiceError maps record-service and export errors to responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *cards.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, verr.Result)
	case errors.Is(err, db.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "Invalid card id")
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "Card not found")
	case errors.Is(err, photostore.ErrInvalidImage):
		writeError(w, http.StatusBadRequest, "Invalid photo")
	case errors.Is(err, photostore.ErrUpload):
		log.WithError(err).Error("Photo upload failed")
		writeError(w, http.StatusBadGateway, "Photo upload failed")
	case errors.Is(err, export.ErrAssetLoad):
		log.WithError(err).Error("Card export failed")
		writeError(w, http.StatusBadGateway, "Export failed")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "Request timed out")
	default:
		log.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
