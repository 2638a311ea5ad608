// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// errorBody is the JSON shape of every error response. Message is a string,
// or a list of strings for validation failures.
type errorBody struct {
	Success    bool   `json:"success"`
	Status     bool   `json:"status"`
	StatusCode int    `json:"statusCode"`
	Message    any    `json:"message"`
	Error      string `json:"error"`
}

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json response", "error", err)
	}
}

// writeError sends an error response. message may be a string or []string.
func writeError(w http.ResponseWriter, status int, message any) {
	writeJSON(w, status, errorBody{
		Success:    false,
		Status:     false,
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
	})
}
