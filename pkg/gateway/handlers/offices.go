package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/core/types"
)

// OfficesHandler answers maps-grounded office lookups.
type OfficesHandler struct {
	Analyzer Analyzer
	Logger   *slog.Logger
}

type officesResponse struct {
	Text      string           `json:"text"`
	Citations []types.Citation `json:"citations"`
}

func (h OfficesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "lat must be a number")
		return
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "lng must be a number")
		return
	}

	res, err := h.Analyzer.FindOffices(r.Context(), q.Get("q"), lat, lng)
	if err != nil {
		h.Logger.Warn("office lookup failed", "error", err)
		writeError(w, http.StatusBadGateway, "upstream_error", "office lookup failed")
		return
	}

	citations := res.Citations
	if citations == nil {
		citations = []types.Citation{}
	}
	writeJSON(w, http.StatusOK, officesResponse{Text: res.Text, Citations: citations})
}
