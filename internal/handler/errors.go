package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"tcg-collection-api/internal/model"
	"tcg-collection-api/internal/service"
	"tcg-collection-api/pkg/apierror"
	"tcg-collection-api/pkg/response"
)

// writeError maps service errors to API errors. Anything unrecognized is
// logged and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apierror.Error
	switch {
	case errors.As(err, &apiErr):
	case errors.Is(err, service.ErrExpansionNotFound):
		apiErr = apierror.NotFound("Expansion not found or no cards available")
	case errors.Is(err, service.ErrCardNotFound):
		apiErr = apierror.BadRequest("Failed to update quantity: card not found")
	case errors.Is(err, service.ErrQuantityOutOfRange):
		apiErr = apierror.ValidationError("quantity change out of range",
			apierror.FieldError{Field: "change", Message: fmt.Sprintf("resulting quantity must not exceed %d", model.MaxQuantity)})
	case errors.Is(err, service.ErrEmptyQuery):
		apiErr = apierror.ValidationError("query parameter q is required",
			apierror.FieldError{Field: "q", Message: "must not be empty"})
	case errors.Is(err, service.ErrUpstream):
		log.Printf("[Handler] %s %s upstream failure: %v", r.Method, r.URL.Path, err)
		apiErr = apierror.UpstreamError(err.Error())
	default:
		log.Printf("[Handler] %s %s failed: %v", r.Method, r.URL.Path, err)
		apiErr = apierror.InternalError("")
	}
	response.Error(w, apiErr)
}
