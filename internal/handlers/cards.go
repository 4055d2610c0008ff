package handlers

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/office-duty-card/internal/cache"
	"github.com/ukydev/office-duty-card/internal/cards"
	"github.com/ukydev/office-duty-card/internal/export"
	"github.com/ukydev/office-duty-card/internal/middleware"
	"github.com/ukydev/office-duty-card/internal/models"
	"github.com/ukydev/office-duty-card/internal/render"
	"github.com/ukydev/office-duty-card/internal/sheet"
)

// CardHandler serves the card list, the create/edit forms and exports.
type CardHandler struct {
	cards    *cards.Service
	exporter *export.Exporter
	drafts   *cache.DraftStore
}

// NewCardHandler creates a card handler. drafts may be nil.
func NewCardHandler(service *cards.Service, exporter *export.Exporter, drafts *cache.DraftStore) *CardHandler {
	return &CardHandler{cards: service, exporter: exporter, drafts: drafts}
}

type createResponse struct {
	ID string `json:"id"`
}

// List handles GET /api/cards?search=&page=&page_size=
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	q := cards.Query{
		Search:   r.URL.Query().Get("search"),
		Page:     queryInt(r, "page"),
		PageSize: queryInt(r, "page_size"),
	}
	page, err := h.cards.Query(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}

// Get handles GET /api/cards/{id}
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	card, err := h.cards.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// Create handles POST /api/cards. A saved card clears the caller's draft.
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CardRequest
	if !readJSON(w, r, &req) {
		return
	}

	id, err := h.cards.Create(r.Context(), req.Employee, req.Vehicle)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if claims, ok := middleware.GetUserFromContext(r.Context()); ok && h.drafts != nil {
		if err := h.drafts.Clear(r.Context(), claims.UserID); err != nil {
			log.WithError(err).WithField("user_id", claims.UserID).Warn("Failed to clear draft")
		}
	}
	writeJSON(w, http.StatusCreated, createResponse{ID: id})
}

// Update handles PUT /api/cards/{id}
func (h *CardHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.CardRequest
	if !readJSON(w, r, &req) {
		return
	}

	if err := h.cards.Update(r.Context(), chi.URLParam(r, "id"), req.Employee, req.Vehicle); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/cards/{id}
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.cards.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Validate handles POST /api/cards/validate?editing={id}. It is the gate in
// front of the preview: a valid form answers with the card as it would be
// stored.
func (h *CardHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req models.CardRequest
	if !readJSON(w, r, &req) {
		return
	}

	card, err := h.cards.Check(r.Context(), req.Employee, req.Vehicle, r.URL.Query().Get("editing"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// PreviewPDF handles POST /api/cards/preview.pdf: unsaved form data is
// validated and exported without being stored.
func (h *CardHandler) PreviewPDF(w http.ResponseWriter, r *http.Request) {
	var req models.CardRequest
	if !readJSON(w, r, &req) {
		return
	}

	card, err := h.cards.Check(r.Context(), req.Employee, req.Vehicle, r.URL.Query().Get("editing"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writePDF(w, r, card)
}

// PDF handles GET /api/cards/{id}/pdf
func (h *CardHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	card, err := h.cards.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if h.writePDF(w, r, *card) {
		h.cards.RecordExport(r.Context(), id)
	}
}

func (h *CardHandler) writePDF(w http.ResponseWriter, r *http.Request, card models.Card) bool {
	pdf, err := h.exporter.Export(r.Context(), card)
	if err != nil {
		writeServiceError(w, r, err)
		return false
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		log.WithError(err).Warn("Failed to write PDF")
	}
	return true
}

// PreviewPNG handles GET /api/cards/{id}/preview/{side}.png?orientation=
func (h *CardHandler) PreviewPNG(w http.ResponseWriter, r *http.Request) {
	side := render.Side(chi.URLParam(r, "side"))
	if side != render.SideFront && side != render.SideBack {
		writeError(w, http.StatusBadRequest, "Side must be front or back")
		return
	}
	orientation, err := render.ParseOrientation(r.URL.Query().Get("orientation"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	card, err := h.cards.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	png, err := h.exporter.PreviewPNG(r.Context(), *card, side, orientation)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// ExportXLSX handles GET /api/cards/export.xlsx
func (h *CardHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	all, err := h.cards.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := sheet.WriteCards(&buf, all); err != nil {
		log.WithError(err).Error("Failed to build spreadsheet")
		writeError(w, http.StatusInternalServerError, "Export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+sheet.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
