// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/fieldwise/internal/logging"
)

// APIResponse is the envelope for all JSON responses.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response observability fields.
type Metadata struct {
	// Timestamp is the server time when the response was generated.
	Timestamp time.Time `json:"timestamp"`
}

// APIError describes a request failure.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error codes returned by the API.
const (
	CodeInvalidJSON       = "INVALID_JSON"
	CodeValidationError   = "VALIDATION_ERROR"
	CodeInvalidWeights    = "INVALID_WEIGHTS"
	CodeTooFewCandidates  = "TOO_FEW_CANDIDATES"
	CodeNoFactors         = "NO_FACTORS_INCLUDED"
	CodeSolveTimeout      = "SOLVE_TIMEOUT"
	CodeServiceClosed     = "SERVICE_CLOSED"
	CodeInternalError     = "INTERNAL_ERROR"
	CodePayloadTooLarge   = "PAYLOAD_TOO_LARGE"
	CodeTooManyCandidates = "TOO_MANY_CANDIDATES"
)

// sanitizeLogValue strips control characters from strings so request data
// cannot forge log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers.
func respondJSON(w http.ResponseWriter, status int, response *APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondData sends a success envelope around data.
func respondData(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, &APIResponse{
		Status:   "ok",
		Data:     data,
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// respondError sends an error envelope.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().
			Str("code", sanitizeLogValue(code)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}

	respondJSON(w, status, &APIResponse{
		Status:   "error",
		Data:     nil,
		Metadata: Metadata{Timestamp: time.Now()},
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	})
}
