// Package assistant implements the chat orchestrator: one-shot structured
// extraction from photos, streamed conversational replies with inline
// form-update tags, and search- or maps-grounded lookups.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/core/types"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/gateway/gemini"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/i18n"
)

// Gateway is the slice of the AI gateway the orchestrator needs. *gemini.Client
// satisfies it.
type Gateway interface {
	Generate(ctx context.Context, req gemini.GenerateRequest) (*gemini.GenerateResult, error)
	GenerateStream(ctx context.Context, req gemini.GenerateRequest) (*gemini.Stream, error)
}

// Orchestrator issues one-shot and streaming requests to the AI gateway.
// It is stateless per call; form-fill state lives in the caller's FormState.
type Orchestrator struct {
	gateway Gateway
	logger  *slog.Logger
}

func New(gateway Gateway, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{gateway: gateway, logger: logger}
}

var formAnalysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"formType":       {Type: genai.TypeString},
		"requiredFields": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"suggestedDocs":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"formType", "requiredFields", "suggestedDocs"},
}

var problemReportSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"category": {Type: genai.TypeString},
		"severity": {
			Type: genai.TypeString,
			Enum: []string{"Low", "Medium", "High", "Critical"},
		},
		"description": {Type: genai.TypeString},
		"department":  {Type: genai.TypeString},
	},
	Required: []string{"category", "severity", "description", "department"},
}

// AnalyzeForm extracts the form type, required fields, and suggested
// supporting documents from a photographed government form. A response the
// gateway fails to shape as valid JSON degrades to an empty result rather
// than an error.
func (o *Orchestrator) AnalyzeForm(ctx context.Context, image types.Attachment) (*types.FormAnalysis, error) {
	res, err := o.gateway.Generate(ctx, gemini.GenerateRequest{
		System: "You are an assistant for Indian government services. Analyze the photographed form.",
		Parts: []gemini.Part{
			{MIMEType: image.MIMEType, Data: image.Data},
			{Text: "Identify this government form. List every field a citizen must fill in and the documents usually needed to submit it."},
		},
		Schema: formAnalysisSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("analyze form: %w", err)
	}

	analysis := &types.FormAnalysis{}
	if err := json.Unmarshal([]byte(gemini.ExtractJSON(res.Text)), analysis); err != nil {
		o.logger.Warn("form analysis response was not valid JSON", "error", err)
		return &types.FormAnalysis{}, nil
	}
	return analysis, nil
}

// ClassifyProblem categorizes a photographed civic problem (pothole, broken
// street light, garbage) and assigns a severity and responsible department.
func (o *Orchestrator) ClassifyProblem(ctx context.Context, image types.Attachment, note string) (*types.ProblemReport, error) {
	prompt := "Classify the civic problem shown in this photo for a municipal complaint."
	if strings.TrimSpace(note) != "" {
		prompt += " Citizen's note: " + note
	}
	res, err := o.gateway.Generate(ctx, gemini.GenerateRequest{
		System: "You triage civic complaints for Indian municipal departments.",
		Parts: []gemini.Part{
			{MIMEType: image.MIMEType, Data: image.Data},
			{Text: prompt},
		},
		Schema: problemReportSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("classify problem: %w", err)
	}

	report := &types.ProblemReport{}
	if err := json.Unmarshal([]byte(gemini.ExtractJSON(res.Text)), report); err != nil {
		o.logger.Warn("problem report response was not valid JSON", "error", err)
		return &types.ProblemReport{}, nil
	}
	return report, nil
}

// FindOffices performs a maps-grounded lookup of nearby government offices.
func (o *Orchestrator) FindOffices(ctx context.Context, query string, lat, lng float64) (*gemini.GenerateResult, error) {
	if strings.TrimSpace(query) == "" {
		query = "government offices"
	}
	res, err := o.gateway.Generate(ctx, gemini.GenerateRequest{
		System: "You help citizens locate government offices. Prefer official sources and include addresses and opening hours when known.",
		Parts: []gemini.Part{
			{Text: fmt.Sprintf("Find %s near latitude %.5f, longitude %.5f.", query, lat, lng)},
		},
		UseMaps: true,
	})
	if err != nil {
		return nil, fmt.Errorf("find offices: %w", err)
	}
	return res, nil
}

// ReplyRequest configures one streamed conversational reply.
type ReplyRequest struct {
	Language   string
	History    []types.ConversationTurn
	Message    string
	Attachment *types.Attachment

	// Form, when set, receives field patches parsed from inline update tags.
	Form *FormState

	UseSearch bool
}

// ReplyUpdate republishes the full cleaned text plus accumulated citations
// after every chunk. Failed marks the single localized error turn emitted
// when the call fails.
type ReplyUpdate struct {
	Text      string
	Citations []types.Citation
	Updates   []FieldUpdate
	Failed    bool
}

// StreamReply issues a streaming chat request. Each update carries the full
// accumulated text with update tags stripped; tags are applied to req.Form
// exactly once each. The returned channel closes when the reply is complete.
func (o *Orchestrator) StreamReply(ctx context.Context, req ReplyRequest) <-chan ReplyUpdate {
	out := make(chan ReplyUpdate, 16)
	go func() {
		defer close(out)

		stream, err := o.gateway.GenerateStream(ctx, o.buildChatRequest(req))
		if err != nil {
			o.logger.Warn("chat request failed", "error", err)
			out <- ReplyUpdate{Text: i18n.T(req.Language, "chat.error"), Failed: true}
			return
		}

		var raw strings.Builder
		var citations []types.Citation
		seen := make(map[string]struct{})
		for chunk := range stream.Chunks() {
			raw.WriteString(chunk.TextDelta)
			// Citations accumulate by appending; a citation repeated across
			// chunks appears repeatedly. Rendering truncates downstream.
			citations = append(citations, chunk.Citations...)

			// Scan the full accumulated text: a tag can straddle a chunk
			// boundary and only become recognizable on a later chunk.
			updates := scanUpdates(raw.String(), seen)
			for _, u := range updates {
				if req.Form == nil {
					continue
				}
				if !req.Form.Patch(u.Field, u.Value) {
					o.logger.Debug("update tag matched no form field", "field", u.Field)
				}
			}

			out <- ReplyUpdate{
				Text:      stripTags(raw.String()),
				Citations: append([]types.Citation(nil), citations...),
				Updates:   updates,
			}
		}
		if err := stream.Err(); err != nil {
			o.logger.Warn("chat stream failed", "error", err)
			out <- ReplyUpdate{Text: i18n.T(req.Language, "chat.error"), Failed: true}
		}
	}()
	return out
}

func (o *Orchestrator) buildChatRequest(req ReplyRequest) gemini.GenerateRequest {
	system := "You are CivicEase, an assistant helping Indian citizens with government services, forms, and civic issues."
	if req.Language != "" && req.Language != "en" {
		system += " Reply in the language with code " + req.Language + "."
	}
	if req.Form != nil {
		form := req.Form.Snapshot()
		if len(form.Fields) > 0 {
			names := make([]string, 0, len(form.Fields))
			for _, f := range form.Fields {
				names = append(names, f.Name)
			}
			system += " The citizen is filling a form titled " + form.Title +
				" with fields: " + strings.Join(names, ", ") +
				". When the citizen provides a value for a field, emit [[UPDATE:<field>:<value>]] inline."
		}
	}

	var parts []gemini.Part
	if transcript := flattenHistory(req.History); transcript != "" {
		parts = append(parts, gemini.Part{Text: "Conversation so far:\n" + transcript})
	}
	if req.Attachment != nil && len(req.Attachment.Data) > 0 {
		parts = append(parts, gemini.Part{MIMEType: req.Attachment.MIMEType, Data: req.Attachment.Data})
	}
	parts = append(parts, gemini.Part{Text: req.Message})

	return gemini.GenerateRequest{
		System:    system,
		Parts:     parts,
		UseSearch: req.UseSearch,
	}
}

func flattenHistory(turns []types.ConversationTurn) string {
	if len(turns) == 0 {
		return ""
	}
	var b strings.Builder
	for _, turn := range turns {
		switch turn.Role {
		case types.RoleUser:
			b.WriteString("User: ")
		case types.RoleAssistant:
			b.WriteString("Assistant: ")
		}
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	return b.String()
}
