package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/luminaphoto/lumina/internal/infrastructure/auth"
	pkgerrors "github.com/luminaphoto/lumina/pkg/errors"
)

// originURL reconstructs the frontend origin the provider should redirect
// back to after payment.
func originURL(r *http.Request) string {
	if origin := r.Header.Get("Origin"); origin != "" {
		return origin
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	redirect, err := h.checkout.StartCheckout(r.Context(), auth.UserID(r.Context()), originURL(r))
	if err != nil {
		if errors.Is(err, pkgerrors.ErrEmptyCart) {
			h.writeError(w, http.StatusBadRequest, err)
		} else {
			h.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, redirect)
}

func (h *Handler) CheckoutStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	status, err := h.checkout.ReconcileByPoll(r.Context(), auth.UserID(r.Context()), sessionID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrUnknownSession) {
			h.writeError(w, http.StatusNotFound, err)
		} else {
			h.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, status)
}

// StripeWebhook handles provider callbacks. An unknown session is
// acknowledged with 200 so the provider stops redelivering it; a failed
// signature check is a 400 and changes nothing.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	err = h.checkout.ReconcileByCallback(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, pkgerrors.ErrCallbackAuthenticity) {
			slog.Warn("rejected webhook with bad signature", "error", err)
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		if errors.Is(err, pkgerrors.ErrUnknownSession) {
			slog.Warn("webhook for unknown session", "error", err)
			h.writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
			return
		}
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.checkout.ListPurchases(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"purchases": purchases})
}
