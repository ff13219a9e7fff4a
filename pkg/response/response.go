package response

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"tcg-collection-api/pkg/apierror"
)

// Message is the body returned by mutation endpoints.
type Message struct {
	Message string `json:"message"`
}

// JSON sends data as a JSON response with the given status code.
// Payloads are written as-is; endpoints define their own top-level keys.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[response] failed to encode body: %v", err)
	}
}

// Error sends an error response.
func Error(w http.ResponseWriter, err error) {
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) {
		log.Printf("[response] unhandled error: %v", err)
		apiErr = apierror.InternalError("an unexpected error occurred")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.StatusCode)
	w.Write(apiErr.ToJSON())
}

// OK sends a 200 OK response.
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}
