package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/luminaphoto/lumina/internal/infrastructure/auth"
	pkgerrors "github.com/luminaphoto/lumina/pkg/errors"
)

// ListEvents is the public listing; private events are only reachable
// through the admin listing or by id.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.catalog.ListEvents(r.Context(), true)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

func (h *Handler) ListAllEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.catalog.ListEvents(r.Context(), false)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["id"]

	event, err := h.catalog.GetEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrEventNotFound) {
			h.writeError(w, http.StatusNotFound, err)
		} else {
			h.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, event)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Date        string `json:"date"`
		IsPublic    bool   `json:"is_public"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	event, err := h.catalog.CreateEvent(r.Context(), req.Name, req.Description, req.Date, req.IsPublic, auth.UserID(r.Context()))
	if err != nil {
		if errors.Is(err, pkgerrors.ErrInvalidInput) {
			h.writeError(w, http.StatusBadRequest, err)
		} else {
			h.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, event)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["id"]

	event, err := h.catalog.GetEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrEventNotFound) {
			h.writeError(w, http.StatusNotFound, err)
		} else {
			h.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Date        *string `json:"date"`
		IsPublic    *bool   `json:"is_public"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Name != nil {
		event.Name = *req.Name
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Date != nil {
		event.Date = *req.Date
	}
	if req.IsPublic != nil {
		event.IsPublic = *req.IsPublic
	}

	if err := h.catalog.UpdateEvent(r.Context(), event); err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.writeJSON(w, http.StatusOK, event)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["id"]

	if err := h.catalog.DeleteEvent(r.Context(), eventID); err != nil {
		if errors.Is(err, pkgerrors.ErrEventNotFound) {
			h.writeError(w, http.StatusNotFound, err)
		} else {
			h.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EventID  string  `json:"event_id"`
		Filename string  `json:"filename"`
		Price    float64 `json:"price"`
		Width    int32   `json:"width"`
		Height   int32   `json:"height"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	photo, err := h.catalog.AddPhoto(r.Context(), req.EventID, req.Filename, req.Price, req.Width, req.Height)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrEventNotFound) {
			h.writeError(w, http.StatusNotFound, err)
		} else if errors.Is(err, pkgerrors.ErrInvalidInput) {
			h.writeError(w, http.StatusBadRequest, err)
		} else {
			h.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, photo)
}

func (h *Handler) ListEventPhotos(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["id"]

	photos, err := h.catalog.ListEventPhotos(r.Context(), eventID, auth.UserID(r.Context()))
	if err != nil {
		if errors.Is(err, pkgerrors.ErrEventNotFound) {
			h.writeError(w, http.StatusNotFound, err)
		} else {
			h.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"photos": photos})
}

func (h *Handler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	photoID := mux.Vars(r)["id"]

	photo, err := h.catalog.GetPhoto(r.Context(), photoID, auth.UserID(r.Context()))
	if err != nil {
		if errors.Is(err, pkgerrors.ErrPhotoNotFound) {
			h.writeError(w, http.StatusNotFound, err)
		} else {
			h.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, photo)
}

func (h *Handler) PhotoURL(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	photoID := vars["id"]
	resolution := vars["resolution"]

	url, err := h.catalog.ResolvePhotoURL(r.Context(), photoID, auth.UserID(r.Context()), resolution)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrPhotoNotFound) {
			h.writeError(w, http.StatusNotFound, err)
		} else if errors.Is(err, pkgerrors.ErrNotPurchased) {
			h.writeError(w, http.StatusForbidden, err)
		} else if errors.Is(err, pkgerrors.ErrInvalidResolution) {
			h.writeError(w, http.StatusBadRequest, err)
		} else {
			h.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"url": url, "resolution": resolution})
}

func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.AdminStats(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.writeJSON(w, http.StatusOK, stats)
}
