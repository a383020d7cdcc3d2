package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/luminaphoto/lumina/internal/infrastructure/auth"
	pkgerrors "github.com/luminaphoto/lumina/pkg/errors"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.View(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhotoID string `json:"photo_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.PhotoID == "" {
		h.writeError(w, http.StatusBadRequest, errors.New("photo_id is required"))
		return
	}

	err := h.cart.Add(r.Context(), auth.UserID(r.Context()), req.PhotoID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrPhotoNotFound) {
			h.writeError(w, http.StatusNotFound, err)
		} else if errors.Is(err, pkgerrors.ErrAlreadyPurchased) {
			h.writeError(w, http.StatusBadRequest, err)
		} else {
			h.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	photoID := mux.Vars(r)["photo_id"]

	if err := h.cart.Remove(r.Context(), auth.UserID(r.Context()), photoID); err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
