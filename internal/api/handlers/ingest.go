package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/resolvd-ai/resolvd/internal/api"
	"github.com/resolvd-ai/resolvd/internal/domain"
	"github.com/resolvd-ai/resolvd/internal/ingest"
)

// IngestionService rebuilds knowledge partitions from rows.
type IngestionService interface {
	Ingest(ctx context.Context, category string, rows []ingest.Row) (*domain.IngestionReport, error)
}

type IngestHandler struct {
	svc IngestionService
}

func NewIngestHandler(svc IngestionService) *IngestHandler {
	return &IngestHandler{svc: svc}
}

type IngestRowRequest struct {
	StatusKey    string `json:"status_key"`
	SourceText   string `json:"source_text"`
	ResponseText string `json:"response_text"`
}

type IngestRequest struct {
	Rows []IngestRowRequest `json:"rows"`
}

// Ingest handles POST /ingest/{category}
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if strings.TrimSpace(category) == "" {
		api.Error(w, http.StatusBadRequest, "category is required")
		return
	}

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Rows) == 0 {
		api.Error(w, http.StatusBadRequest, "rows are required")
		return
	}

	rows := make([]ingest.Row, 0, len(req.Rows))
	for _, row := range req.Rows {
		rows = append(rows, ingest.Row{
			StatusKey:    domain.StatusKey(row.StatusKey),
			SourceText:   row.SourceText,
			ResponseText: row.ResponseText,
		})
	}

	report, err := h.svc.Ingest(r.Context(), category, rows)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, report)
}
