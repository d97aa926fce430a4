package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/core/types"
)

// Config configures the gateway client. The credential is passed in
// explicitly; there is no ambient environment lookup here.
type Config struct {
	APIKey    string
	ChatModel string
	LiveModel string
}

// Client wraps the generative-model service behind the three call shapes the
// application needs: one-shot, streaming, and live duplex.
type Client struct {
	cfg    Config
	api    *genai.Client
	logger *slog.Logger
}

// New builds a gateway client. A missing API key is logged as a warning and
// requests are attempted anyway; they fail upstream with an auth error.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.ChatModel) == "" {
		return nil, fmt.Errorf("gemini: chat model must not be empty")
	}
	if strings.TrimSpace(cfg.LiveModel) == "" {
		return nil, fmt.Errorf("gemini: live model must not be empty")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		logger.Warn("gateway API key is not configured; upstream requests will be rejected")
	}

	api, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{cfg: cfg, api: api, logger: logger}, nil
}

// Part is one content part of a request: text, or an inline image when Data
// is set.
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

// GenerateRequest configures a one-shot or streaming call.
type GenerateRequest struct {
	System string
	Parts  []Part

	// Schema constrains the response to JSON matching the given shape.
	// Mutually exclusive with the grounding tools below.
	Schema *genai.Schema

	UseSearch bool
	UseMaps   bool
}

// GenerateResult is the one-shot response.
type GenerateResult struct {
	Text      string
	Citations []types.Citation
}

// Generate issues a one-shot request and returns the text plus any grounding
// citations.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	contents, cfg, err := buildRequest(req)
	if err != nil {
		return nil, err
	}
	resp, err := c.api.Models.GenerateContent(ctx, c.cfg.ChatModel, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return &GenerateResult{Text: resp.Text(), Citations: citationsFrom(resp)}, nil
}

// StreamChunk is one incremental piece of a streamed response.
type StreamChunk struct {
	TextDelta string
	Citations []types.Citation
}

// Stream delivers a streamed response as an ordered sequence of chunks.
type Stream struct {
	chunks chan StreamChunk
	done   chan struct{}

	errMu sync.Mutex
	err   error
}

// Chunks yields response chunks in arrival order. The channel is closed when
// the stream ends.
func (s *Stream) Chunks() <-chan StreamChunk {
	if s == nil {
		return nil
	}
	return s.chunks
}

// Err returns the terminal stream error, if any. It blocks until the stream
// has finished.
func (s *Stream) Err() error {
	if s == nil {
		return nil
	}
	<-s.done
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *Stream) setErr(err error) {
	if err == nil {
		return
	}
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// NewReplayStream returns a Stream that replays the given chunks in order and
// then terminates with err. Fakes use it in place of a network stream.
func NewReplayStream(chunks []StreamChunk, err error) *Stream {
	stream := &Stream{
		chunks: make(chan StreamChunk, len(chunks)+1),
		done:   make(chan struct{}),
	}
	for _, chunk := range chunks {
		stream.chunks <- chunk
	}
	stream.setErr(err)
	close(stream.chunks)
	close(stream.done)
	return stream
}

// GenerateStream issues a streaming request. Chunks are delivered in arrival
// order; there is no client-side reordering.
func (c *Client) GenerateStream(ctx context.Context, req GenerateRequest) (*Stream, error) {
	contents, cfg, err := buildRequest(req)
	if err != nil {
		return nil, err
	}

	stream := &Stream{
		chunks: make(chan StreamChunk, 16),
		done:   make(chan struct{}),
	}
	go func() {
		defer close(stream.done)
		defer close(stream.chunks)
		for resp, err := range c.api.Models.GenerateContentStream(ctx, c.cfg.ChatModel, contents, cfg) {
			if err != nil {
				stream.setErr(fmt.Errorf("stream: %w", err))
				return
			}
			chunk := StreamChunk{TextDelta: resp.Text(), Citations: citationsFrom(resp)}
			if chunk.TextDelta == "" && len(chunk.Citations) == 0 {
				continue
			}
			select {
			case stream.chunks <- chunk:
			case <-ctx.Done():
				stream.setErr(ctx.Err())
				return
			}
		}
	}()
	return stream, nil
}

func buildRequest(req GenerateRequest) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	if len(req.Parts) == 0 {
		return nil, nil, fmt.Errorf("request must contain at least one part")
	}

	parts := make([]*genai.Part, 0, len(req.Parts))
	for _, p := range req.Parts {
		if len(p.Data) > 0 {
			mime := p.MIMEType
			if mime == "" {
				mime = "image/jpeg"
			}
			parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: mime, Data: p.Data}})
			continue
		}
		if p.Text == "" {
			continue
		}
		parts = append(parts, &genai.Part{Text: p.Text})
	}
	if len(parts) == 0 {
		return nil, nil, fmt.Errorf("request must contain at least one non-empty part")
	}
	contents := []*genai.Content{{Role: genai.RoleUser, Parts: parts}}

	cfg := &genai.GenerateContentConfig{}
	if strings.TrimSpace(req.System) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = req.Schema
	}
	if req.UseSearch {
		cfg.Tools = append(cfg.Tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
	}
	if req.UseMaps {
		cfg.Tools = append(cfg.Tools, &genai.Tool{GoogleMaps: &genai.GoogleMaps{}})
	}
	return contents, cfg, nil
}

func citationsFrom(resp *genai.GenerateContentResponse) []types.Citation {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	md := resp.Candidates[0].GroundingMetadata
	if md == nil {
		return nil
	}
	var out []types.Citation
	for _, chunk := range md.GroundingChunks {
		if chunk == nil {
			continue
		}
		if chunk.Web != nil && chunk.Web.URI != "" {
			out = append(out, types.Citation{Title: chunk.Web.Title, URI: chunk.Web.URI, Source: types.CitationWeb})
		}
		if chunk.Maps != nil && chunk.Maps.URI != "" {
			out = append(out, types.Citation{Title: chunk.Maps.Title, URI: chunk.Maps.URI, Source: types.CitationMaps})
		}
	}
	return out
}
