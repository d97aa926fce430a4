package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/core/types"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/i18n"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/store"
)

// SessionsHandler implements the chat session CRUD endpoints.
type SessionsHandler struct {
	Repo            store.Repository
	DefaultLanguage string
	Logger          *slog.Logger
}

func (h SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.Repo.List(r.Context())
	if err != nil {
		h.Logger.Error("list sessions", "error", err)
		writeError(w, http.StatusInternalServerError, "store_error", "could not list sessions")
		return
	}
	if sessions == nil {
		sessions = []types.ChatSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title    string `json:"title"`
		Language string `json:"language"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	lang := strings.TrimSpace(body.Language)
	if lang == "" {
		lang = h.DefaultLanguage
	}
	if !i18n.Supported(lang) {
		writeError(w, http.StatusBadRequest, "invalid_request", "unsupported language: "+lang)
		return
	}

	session := &types.ChatSession{
		ID:       uuid.NewString(),
		Title:    strings.TrimSpace(body.Title),
		Language: lang,
	}
	if err := h.Repo.Put(r.Context(), session); err != nil {
		h.Logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "store_error", "could not create session")
		return
	}
	created, err := h.Repo.Get(r.Context(), session.ID)
	if err != nil {
		h.Logger.Error("read back session", "error", err)
		writeError(w, http.StatusInternalServerError, "store_error", "could not create session")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.Repo.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "no such session")
		return
	}
	if err != nil {
		h.Logger.Error("get session", "error", err)
		writeError(w, http.StatusInternalServerError, "store_error", "could not load session")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h SessionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body types.ChatSession
	if !decodeBody(w, r, &body) {
		return
	}
	body.ID = r.PathValue("id")
	if body.Language != "" && !i18n.Supported(body.Language) {
		writeError(w, http.StatusBadRequest, "invalid_request", "unsupported language: "+body.Language)
		return
	}

	if _, err := h.Repo.Get(r.Context(), body.ID); errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "no such session")
		return
	}
	if err := h.Repo.Put(r.Context(), &body); err != nil {
		h.Logger.Error("update session", "error", err)
		writeError(w, http.StatusInternalServerError, "store_error", "could not update session")
		return
	}
	updated, err := h.Repo.Get(r.Context(), body.ID)
	if err != nil {
		h.Logger.Error("read back session", "error", err)
		writeError(w, http.StatusInternalServerError, "store_error", "could not update session")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.Repo.Delete(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "no such session")
		return
	}
	if err != nil {
		h.Logger.Error("delete session", "error", err)
		writeError(w, http.StatusInternalServerError, "store_error", "could not delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// appendTurns merges newly reconciled turns into a stored session. Turns
// already present (by id) keep their stored content replaced by the newer
// reconciled content.
func appendTurns(session *types.ChatSession, turns []types.ConversationTurn) {
	byID := make(map[string]int, len(session.Turns))
	for i, t := range session.Turns {
		byID[t.ID] = i
	}
	for _, t := range turns {
		if i, ok := byID[t.ID]; ok {
			session.Turns[i] = t
			continue
		}
		session.Turns = append(session.Turns, t)
	}
	session.UpdatedAt = time.Now().UTC()
}
