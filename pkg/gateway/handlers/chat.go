package handlers

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/assistant"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/core/types"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/gateway/sse"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/i18n"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/store"
)

// ReplyStreamer is the slice of the orchestrator the chat endpoint uses.
type ReplyStreamer interface {
	StreamReply(ctx context.Context, req assistant.ReplyRequest) <-chan assistant.ReplyUpdate
}

// ChatHandler streams a conversational reply over SSE and persists the
// exchanged turns.
type ChatHandler struct {
	Orchestrator    ReplyStreamer
	Repo            store.Repository
	DefaultLanguage string
	PingInterval    time.Duration
	Logger          *slog.Logger
}

type chatRequest struct {
	SessionID string               `json:"session_id,omitempty"`
	Language  string               `json:"language,omitempty"`
	Message   string               `json:"message"`
	ImageB64  string               `json:"image_b64,omitempty"`
	MIMEType  string               `json:"mime_type,omitempty"`
	UseSearch bool                 `json:"use_search,omitempty"`
	Form      *types.FormFillState `json:"form,omitempty"`
}

type chatEvent struct {
	Text      string               `json:"text"`
	Citations []types.Citation     `json:"citations"`
	Form      *types.FormFillState `json:"form,omitempty"`
	Failed    bool                 `json:"failed,omitempty"`
}

func (h ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "message is required")
		return
	}

	var session *types.ChatSession
	if req.SessionID != "" {
		var err error
		session, err = h.Repo.Get(r.Context(), req.SessionID)
		if err != nil {
			writeError(w, http.StatusNotFound, "not_found", "no such session")
			return
		}
	}

	lang := req.Language
	if lang == "" && session != nil {
		lang = session.Language
	}
	if lang == "" {
		lang = h.DefaultLanguage
	}
	if !i18n.Supported(lang) {
		writeError(w, http.StatusBadRequest, "invalid_request", "unsupported language: "+lang)
		return
	}

	var attachment *types.Attachment
	if req.ImageB64 != "" {
		data, err := base64.StdEncoding.DecodeString(req.ImageB64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "image_b64 is not valid base64")
			return
		}
		mime := req.MIMEType
		if mime == "" {
			mime = "image/jpeg"
		}
		attachment = &types.Attachment{MIMEType: mime, Data: data}
	}

	var form *assistant.FormState
	if req.Form != nil {
		form = assistant.NewFormState()
		form.Replace(*req.Form)
	}

	var history []types.ConversationTurn
	if session != nil {
		history = session.Turns
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	sw, err := sse.New(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "streaming is not supported")
		return
	}

	updates := h.Orchestrator.StreamReply(r.Context(), assistant.ReplyRequest{
		Language:   lang,
		History:    history,
		Message:    req.Message,
		Attachment: attachment,
		Form:       form,
		UseSearch:  req.UseSearch,
	})

	pingInterval := h.PingInterval
	if pingInterval <= 0 {
		pingInterval = 15 * time.Second
	}
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	var last assistant.ReplyUpdate
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				h.finish(r.Context(), sw, session, req, lang, form, last)
				return
			}
			last = update
			if err := sw.Send("update", chatEvent{
				Text:      update.Text,
				Citations: citationsOrEmpty(update.Citations),
				Failed:    update.Failed,
			}); err != nil {
				return
			}
		case <-ping.C:
			if err := sw.Send("ping", struct{}{}); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

func (h ChatHandler) finish(ctx context.Context, sw *sse.Writer, session *types.ChatSession, req chatRequest, lang string, form *assistant.FormState, last assistant.ReplyUpdate) {
	event := chatEvent{
		Text:      last.Text,
		Citations: citationsOrEmpty(last.Citations),
		Failed:    last.Failed,
	}
	if form != nil {
		snap := form.Snapshot()
		event.Form = &snap
	}
	_ = sw.Send("done", event)

	if session == nil {
		return
	}
	userTurn := types.ConversationTurn{ID: uuid.NewString(), Role: types.RoleUser, Content: req.Message}
	assistantTurn := types.ConversationTurn{ID: uuid.NewString(), Role: types.RoleAssistant, Content: last.Text}
	appendTurns(session, []types.ConversationTurn{userTurn, assistantTurn})
	session.Language = lang
	if err := h.Repo.Put(ctx, session); err != nil {
		h.Logger.Error("persist chat turns", "error", err)
	}
}

func citationsOrEmpty(citations []types.Citation) []types.Citation {
	if citations == nil {
		return []types.Citation{}
	}
	return citations
}
