package rest

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string       `json:"detail"`
	Fields []FieldError `json:"fields,omitempty"`
}

// FieldError names a rejected request field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}
