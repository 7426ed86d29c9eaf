// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/correlator/internal/logging"
	"github.com/tomtom215/correlator/internal/models"
	"github.com/tomtom215/correlator/internal/validation"
)

// Envelope status values.
const (
	statusSuccess = "success"
	statusReady   = "ready"
	statusError   = "error"
)

func isControl(r rune) bool { return r < 0x20 || r == 0x7f }

// sanitizeLogValue escapes control characters as \xNN so request-derived
// strings cannot start a new log line.
func sanitizeLogValue(s string) string {
	if strings.IndexFunc(s, isControl) < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if !isControl(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteString(`\x`)
		if r < 0x10 {
			b.WriteByte('0')
		}
		b.WriteString(strconv.FormatInt(int64(r), 16))
	}
	return b.String()
}

// writeEnvelope encodes env with go-json. A zero timestamp is stamped with
// the current time. Responses are never cached.
func writeEnvelope(w http.ResponseWriter, status int, env *models.APIResponse) {
	if env.Metadata.Timestamp.IsZero() {
		env.Metadata.Timestamp = time.Now().UTC()
	}
	body, err := json.Marshal(env)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to encode API response")
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Debug().Err(err).Msg("Client went away before the response was written")
	}
}

// respondData writes a 200 envelope. A non-zero started sets duration_ms.
func respondData(w http.ResponseWriter, status string, data any, started time.Time) {
	env := &models.APIResponse{Status: status, Data: data}
	if !started.IsZero() {
		env.Metadata.DurationMS = time.Since(started).Milliseconds()
	}
	writeEnvelope(w, http.StatusOK, env)
}

// respondAPIError writes an error envelope carrying apiErr.
func respondAPIError(w http.ResponseWriter, status int, apiErr *models.APIError) {
	writeEnvelope(w, status, &models.APIResponse{Status: statusError, Error: apiErr})
}

// respondError writes an error envelope. cause, when set, is logged and never
// sent to the client.
func respondError(w http.ResponseWriter, status int, code, message string, cause error) {
	if cause != nil {
		logging.Error().
			Int("status", status).
			Str("code", code).
			Str("error", sanitizeLogValue(cause.Error())).
			Msg("API request failed")
	}
	respondAPIError(w, status, &models.APIError{Code: code, Message: message})
}

// validateRequest runs the struct-tag rules on a decoded request body.
func validateRequest(v any) *models.APIError {
	if verr := validation.ValidateStruct(v); verr != nil {
		return verr.ToAPIError()
	}
	return nil
}
