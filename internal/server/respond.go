package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// apiError is the body of every failed response.
type apiError struct {
	Error string `json:"error"`
}

func errorResponse(msg string) apiError {
	return apiError{Error: msg}
}

// jsonCT is assigned directly into the header map, skipping the slice
// allocation Header.Set makes.
var jsonCT = []string{"application/json"}

var internalErrorBody = []byte(`{"error":"internal server error"}`)

// writeJSON encodes v before touching the response so an encoding failure
// still yields a JSON error body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
		status, body = http.StatusInternalServerError, internalErrorBody
	}
	w.Header()["Content-Type"] = jsonCT
	w.WriteHeader(status)
	w.Write(body)
}
