package handlers

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/core/types"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/gateway/gemini"
)

// Analyzer is the slice of the orchestrator the one-shot endpoints use.
type Analyzer interface {
	AnalyzeForm(ctx context.Context, image types.Attachment) (*types.FormAnalysis, error)
	ClassifyProblem(ctx context.Context, image types.Attachment, note string) (*types.ProblemReport, error)
	FindOffices(ctx context.Context, query string, lat, lng float64) (*gemini.GenerateResult, error)
}

type imageRequest struct {
	ImageB64 string `json:"image_b64"`
	MIMEType string `json:"mime_type"`
	Note     string `json:"note,omitempty"`
}

func (req imageRequest) attachment(w http.ResponseWriter) (types.Attachment, bool) {
	if req.ImageB64 == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "image_b64 is required")
		return types.Attachment{}, false
	}
	data, err := base64.StdEncoding.DecodeString(req.ImageB64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "image_b64 is not valid base64")
		return types.Attachment{}, false
	}
	mime := req.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return types.Attachment{MIMEType: mime, Data: data}, true
}

// AnalyzeFormHandler extracts form structure from a photographed form.
type AnalyzeFormHandler struct {
	Analyzer Analyzer
	Logger   *slog.Logger
}

func (h AnalyzeFormHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	image, ok := req.attachment(w)
	if !ok {
		return
	}

	analysis, err := h.Analyzer.AnalyzeForm(r.Context(), image)
	if err != nil {
		h.Logger.Warn("form analysis failed", "error", err)
		writeError(w, http.StatusBadGateway, "upstream_error", "form analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// AnalyzeProblemHandler classifies a photographed civic problem.
type AnalyzeProblemHandler struct {
	Analyzer Analyzer
	Logger   *slog.Logger
}

func (h AnalyzeProblemHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	image, ok := req.attachment(w)
	if !ok {
		return
	}

	report, err := h.Analyzer.ClassifyProblem(r.Context(), image, req.Note)
	if err != nil {
		h.Logger.Warn("problem classification failed", "error", err)
		writeError(w, http.StatusBadGateway, "upstream_error", "problem classification failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
