package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tcg-collection-api/internal/model"
	"tcg-collection-api/internal/service"
	"tcg-collection-api/pkg/apierror"
	"tcg-collection-api/pkg/response"
)

// SyncHandler triggers catalog syncs against the card-data provider.
type SyncHandler struct {
	sync *service.SyncService
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(sync *service.SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

// syncResponse is returned by the bulk sync triggers.
type syncResponse struct {
	Message string            `json:"message"`
	Report  *model.SyncReport `json:"report,omitempty"`
}

// UpdateExpansions handles POST {prefix}/expansions/update/
func (h *SyncHandler) UpdateExpansions(w http.ResponseWriter, r *http.Request) {
	report, err := h.sync.RefreshExpansions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, syncResponse{Message: "Expansions updated successfully.", Report: report})
}

// UpdateExpansionCards handles POST {prefix}/expansion/{setId}/cards/update
func (h *SyncHandler) UpdateExpansionCards(w http.ResponseWriter, r *http.Request) {
	result := h.sync.SyncCardsForExpansion(r.Context(), chi.URLParam(r, "setId"))
	if !result.Success {
		message := result.Error
		if message == "" {
			message = "Failed to fetch cards."
		}
		response.Error(w, apierror.BadRequest(message))
		return
	}
	response.OK(w, result)
}

// Backfill handles POST {prefix}/cards/backfill
func (h *SyncHandler) Backfill(w http.ResponseWriter, r *http.Request) {
	report, err := h.sync.BackfillMissingCardSets(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, syncResponse{Message: "Missing card sets backfilled.", Report: report})
}

// Status handles GET {prefix}/sync/status
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	runs, err := h.sync.LatestRuns(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, map[string]interface{}{"runs": runs})
}
