package handler

import (
	"net/http"

	"tcg-collection-api/pkg/response"
)

// TotalCards handles GET {prefix}/widgets/totalCards
func (h *CollectionHandler) TotalCards(w http.ResponseWriter, r *http.Request) {
	total, err := h.collection.TotalCards(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, map[string]int64{"totalCards": total})
}

// TotalExpansions handles GET {prefix}/widgets/totalExpansions
func (h *CollectionHandler) TotalExpansions(w http.ResponseWriter, r *http.Request) {
	total, err := h.collection.TotalExpansions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, map[string]int64{"totalExpansions": total})
}

// CardsByExpansion handles GET {prefix}/widgets/cardsByExpansion
func (h *CollectionHandler) CardsByExpansion(w http.ResponseWriter, r *http.Request) {
	counts, err := h.collection.CardsByExpansion(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, counts)
}
