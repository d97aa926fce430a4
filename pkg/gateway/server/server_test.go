package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/assistant"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/core/types"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/gateway/config"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/gateway/gemini"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/store"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/vault"
)

type fakeGateway struct {
	generateText string
	streamChunks []gemini.StreamChunk
}

func (f *fakeGateway) Generate(ctx context.Context, req gemini.GenerateRequest) (*gemini.GenerateResult, error) {
	return &gemini.GenerateResult{Text: f.generateText}, nil
}

func (f *fakeGateway) GenerateStream(ctx context.Context, req gemini.GenerateRequest) (*gemini.Stream, error) {
	return gemini.NewReplayStream(f.streamChunks, nil), nil
}

func testServer(t *testing.T, gw *fakeGateway) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		DefaultLanguage:       "en",
		SSEPingInterval:       15 * time.Second,
		LivePlaybackLookahead: 50 * time.Millisecond,
		LiveFrameInterval:     time.Second,
		LiveReconnectDelay:    250 * time.Millisecond,
	}
	return New(cfg, logger, Deps{
		Repo:         store.NewMemory(),
		Orchestrator: assistant.New(gw, logger),
		Vault:        vault.New(),
	})
}

func TestHealthz(t *testing.T) {
	s := testServer(t, &fakeGateway{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-Request-ID"); got == "" {
		t.Fatal("no request id header")
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := testServer(t, &fakeGateway{})
	h := s.Handler()

	// Create.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sessions",
		strings.NewReader(`{"title":"Passport help","language":"hi"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var created types.ChatSession
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" || created.Language != "hi" {
		t.Fatalf("created = %+v", created)
	}

	// Get.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sessions/"+created.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	// Update.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/sessions/"+created.ID,
		strings.NewReader(`{"title":"Renamed","language":"hi"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}

	// List.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sessions", nil))
	var listed []types.ChatSession
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].Title != "Renamed" {
		t.Fatalf("listed = %+v", listed)
	}

	// Delete.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+created.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sessions/"+created.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", rec.Code)
	}
}

func TestCreateSessionRejectsUnknownLanguage(t *testing.T) {
	s := testServer(t, &fakeGateway{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sessions",
		strings.NewReader(`{"language":"fr"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAnalyzeForm(t *testing.T) {
	gw := &fakeGateway{generateText: `{"formType":"Passport Application","requiredFields":["Full Name"],"suggestedDocs":["Aadhaar Card"]}`}
	s := testServer(t, gw)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyze/form",
		strings.NewReader(`{"image_b64":"AAAA","mime_type":"image/jpeg"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var analysis types.FormAnalysis
	if err := json.Unmarshal(rec.Body.Bytes(), &analysis); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if analysis.FormType != "Passport Application" {
		t.Fatalf("analysis = %+v", analysis)
	}
}

func TestAnalyzeFormRequiresImage(t *testing.T) {
	s := testServer(t, &fakeGateway{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyze/form",
		strings.NewReader(`{}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestChatStreamsSSE(t *testing.T) {
	gw := &fakeGateway{streamChunks: []gemini.StreamChunk{
		{TextDelta: "Namaste! "},
		{TextDelta: "How can I help?"},
	}}
	s := testServer(t, gw)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/chat",
		strings.NewReader(`{"message":"hello"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "event: update") || !strings.Contains(body, "event: done") {
		t.Fatalf("sse body = %q", body)
	}
	if !strings.Contains(body, "How can I help?") {
		t.Fatalf("sse body missing reply text: %q", body)
	}
}

func TestChatPersistsTurns(t *testing.T) {
	gw := &fakeGateway{streamChunks: []gemini.StreamChunk{{TextDelta: "Sure."}}}
	s := testServer(t, gw)
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(`{}`)))
	var created types.ChatSession
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/chat",
		strings.NewReader(`{"session_id":"`+created.ID+`","message":"help me"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("chat status = %d", rec.Code)
	}

	stored, err := s.deps.Repo.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get stored: %v", err)
	}
	if len(stored.Turns) != 2 {
		t.Fatalf("turns = %+v", stored.Turns)
	}
	if stored.Turns[0].Role != types.RoleUser || stored.Turns[1].Content != "Sure." {
		t.Fatalf("turns = %+v", stored.Turns)
	}
}

func TestVaultFetch(t *testing.T) {
	s := testServer(t, &fakeGateway{})
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/vault/aadhaar/fetch", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var doc types.VaultDocument
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Status != types.StatusFetched || doc.Data["Full Name"] == "" {
		t.Fatalf("doc = %+v", doc)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/vault/passport/fetch", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestOfficesValidation(t *testing.T) {
	s := testServer(t, &fakeGateway{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/offices?q=passport", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDrainLiveSessionsEmpty(t *testing.T) {
	s := testServer(t, &fakeGateway{})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.DrainLiveSessions(ctx)
}
