package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/resolvd-ai/resolvd/internal/api"
	"github.com/resolvd-ai/resolvd/internal/domain"
)

// ResolutionService answers single ticket queries.
type ResolutionService interface {
	GetResponse(ctx context.Context, ticketID, categoryName, queryText string) (*domain.ResolutionResult, error)
}

type ResolveHandler struct {
	svc ResolutionService
}

func NewResolveHandler(svc ResolutionService) *ResolveHandler {
	return &ResolveHandler{svc: svc}
}

type ResolveRequest struct {
	TicketID     string `json:"ticket_id"`
	CategoryName string `json:"category_name"`
	QueryText    string `json:"query_text"`
}

type ResolveResponse struct {
	TicketID       string  `json:"ticket_id"`
	StatusKey      string  `json:"status_key"`
	MatchedEntryID string  `json:"matched_entry_id,omitempty"`
	Response       string  `json:"response"`
	Score          float64 `json:"score"`
	ConfidenceTier string  `json:"confidence_tier"`
}

// Resolve handles POST /resolve
func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.TicketID) == "" {
		api.Error(w, http.StatusBadRequest, "ticket_id is required")
		return
	}
	if strings.TrimSpace(req.CategoryName) == "" {
		api.Error(w, http.StatusBadRequest, "category_name is required")
		return
	}

	result, err := h.svc.GetResponse(r.Context(), req.TicketID, req.CategoryName, req.QueryText)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, &ResolveResponse{
		TicketID:       result.TicketID,
		StatusKey:      string(result.StatusKey),
		MatchedEntryID: result.MatchedEntryID,
		Response:       result.ResponseText,
		Score:          result.Score,
		ConfidenceTier: string(result.ConfidenceTier),
	})
}
