package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tcg-collection-api/internal/model"
	"tcg-collection-api/internal/service"
	"tcg-collection-api/pkg/apierror"
	"tcg-collection-api/pkg/response"
)

// CatalogHandler handles expansion and card read requests.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListExpansions handles GET {prefix}/expansions/
func (h *CatalogHandler) ListExpansions(w http.ResponseWriter, r *http.Request) {
	groups, err := h.catalog.ListExpansionsGrouped(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, map[string]interface{}{"expansions": groups})
}

// ListCards handles GET {prefix}/expansion/{setId}/cards
func (h *CatalogHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.catalog.ListCardsInExpansion(r.Context(), chi.URLParam(r, "setId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, map[string]interface{}{"cards": cards})
}

// SearchCards handles GET {prefix}/search/cards/?q=&rarity=&type_=
func (h *CatalogHandler) SearchCards(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if query.Get("q") == "" {
		response.Error(w, apierror.ValidationError("query parameter q is required",
			apierror.FieldError{Field: "q", Message: "must be at least 1 character"}))
		return
	}

	cardType := query.Get("type_")
	if cardType == "" {
		cardType = query.Get("type")
	}

	cards, err := h.catalog.SearchCards(r.Context(), model.SearchFilter{
		Query:  query.Get("q"),
		Rarity: query.Get("rarity"),
		Type:   cardType,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, map[string]interface{}{"cards": cards})
}
