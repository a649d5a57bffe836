package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// errResponse is the uniform error payload: every non-2xx response from
// the API carries exactly one "error" string.
type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeJSON sends v as the response body with the given status. The status
// line is already committed when encoding runs, so a marshalling failure
// can only be logged.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", slog.String("error", err.Error()))
	}
}
