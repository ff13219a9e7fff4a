package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"tcg-collection-api/pkg/apierror"
)

func TestError_APIError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, fmt.Errorf("wrapped: %w", apierror.NotFound("Expansion not found or no cards available")))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"code":"NOT_FOUND","detail":"Expansion not found or no cards available"}`, rec.Body.String())
}

func TestError_ValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, apierror.ValidationError("invalid query parameters",
		apierror.FieldError{Field: "change", Message: "must be an integer"}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"code":"VALIDATION_ERROR","detail":"invalid query parameters",
		"details":[{"field":"change","message":"must be an integer"}]}`, rec.Body.String())
}

func TestError_PlainErrorIsInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, errors.New("database is locked"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "database is locked")
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, Message{Message: "Quantity updated"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Quantity updated"}`, rec.Body.String())
}
