package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"tcg-collection-api/internal/model"
	"tcg-collection-api/internal/service"
	"tcg-collection-api/pkg/apierror"
	"tcg-collection-api/pkg/response"
)

// CollectionHandler handles collection and widget requests.
type CollectionHandler struct {
	collection *service.CollectionService
}

// NewCollectionHandler creates a new collection handler.
func NewCollectionHandler(collection *service.CollectionService) *CollectionHandler {
	return &CollectionHandler{collection: collection}
}

// ListCollection handles GET {prefix}/collection/
func (h *CollectionHandler) ListCollection(w http.ResponseWriter, r *http.Request) {
	entries, err := h.collection.ListCollection(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, map[string]interface{}{"collection": entries})
}

// CollectionForExpansion handles GET {prefix}/collection/{expansionId}/
func (h *CollectionHandler) CollectionForExpansion(w http.ResponseWriter, r *http.Request) {
	summary, err := h.collection.CollectionSummaryForExpansion(r.Context(), chi.URLParam(r, "expansionId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, summary)
}

// UpdateQuantity handles POST {prefix}/collection/update/?card_id=&change=
func (h *CollectionHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var fieldErrs []apierror.FieldError
	cardID := strings.TrimSpace(query.Get("card_id"))
	if cardID == "" {
		fieldErrs = append(fieldErrs, apierror.FieldError{Field: "card_id", Message: "field required"})
	}

	change, err := strconv.Atoi(strings.TrimSpace(query.Get("change")))
	switch {
	case err != nil:
		fieldErrs = append(fieldErrs, apierror.FieldError{Field: "change", Message: "must be an integer"})
	case change > model.MaxQuantity || change < -model.MaxQuantity:
		fieldErrs = append(fieldErrs, apierror.FieldError{
			Field:   "change",
			Message: fmt.Sprintf("must be between %d and %d", -model.MaxQuantity, model.MaxQuantity),
		})
	}

	if len(fieldErrs) > 0 {
		response.Error(w, apierror.ValidationError("invalid query parameters", fieldErrs...))
		return
	}

	if _, err := h.collection.AdjustQuantity(r.Context(), cardID, change); err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, response.Message{Message: "Quantity updated"})
}
