package handlers

import (
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/office-duty-card/internal/cache"
	"github.com/ukydev/office-duty-card/internal/middleware"
)

// DraftHandler persists the caller's unsaved create form.
type DraftHandler struct {
	drafts *cache.DraftStore
}

func NewDraftHandler(drafts *cache.DraftStore) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

func (h *DraftHandler) user(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return "", false
	}
	return claims.UserID, true
}

// Get returns the saved draft; absent halves are omitted.
func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	draft, err := h.drafts.Load(r.Context(), user)
	if err != nil {
		log.WithError(err).Error("Failed to load draft")
		writeError(w, http.StatusServiceUnavailable, "Draft store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// Put saves whichever halves of the draft are present.
func (h *DraftHandler) Put(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	var draft cache.Draft
	if !readJSON(w, r, &draft) {
		return
	}
	if err := h.drafts.Save(r.Context(), user, draft); err != nil {
		log.WithError(err).Error("Failed to save draft")
		writeError(w, http.StatusServiceUnavailable, "Draft store unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete discards the draft, giving a blank create form.
func (h *DraftHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	if err := h.drafts.Clear(r.Context(), user); err != nil {
		log.WithError(err).Error("Failed to clear draft")
		writeError(w, http.StatusServiceUnavailable, "Draft store unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
