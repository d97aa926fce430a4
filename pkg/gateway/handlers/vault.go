package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/vault"
)

// VaultHandler exposes the simulated document vault.
type VaultHandler struct {
	Vault  *vault.Vault
	Logger *slog.Logger
}

func (h VaultHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Vault.List(r.Context()))
}

func (h VaultHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Vault.Fetch(r.Context(), r.PathValue("id"))
	if errors.Is(err, vault.ErrUnknownDocument) {
		writeError(w, http.StatusNotFound, "not_found", "no such document")
		return
	}
	if err != nil {
		h.Logger.Error("vault fetch", "error", err)
		writeError(w, http.StatusInternalServerError, "vault_error", "could not fetch document")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
