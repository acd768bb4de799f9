package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mycustomai/wizard/internal/models"
)

// fallbackErrorBody is marshaled once at startup so a handler can always emit
// a well-formed error envelope even when its own payload fails to encode.
var fallbackErrorBody []byte

func init() {
	var err error
	fallbackErrorBody, err = json.Marshal(models.Error("Something went wrong. Please try again."))
	if err != nil {
		panic(fmt.Sprintf("cannot marshal fallback error body: %v", err))
	}
}

// writeJSONResponse marshals response before touching the writer, so an
// encoding failure downgrades the reply to the fallback body rather than a
// half-written one.
func writeJSONResponse(w http.ResponseWriter, statusCode int, response interface{}) {
	body, err := json.Marshal(response)
	if err != nil {
		slog.Error("Server.writeJSONResponse: failed to marshal response", "error", err, "status", statusCode)
		body = fallbackErrorBody
		statusCode = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		slog.Error("Server.writeJSONResponse: failed to write response", "error", err)
	}
}
