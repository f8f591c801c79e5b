package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/holdings/internal/common"
	"github.com/bobmcallan/holdings/internal/models"
)

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteData writes the {"status":"ok","data":...} envelope.
func WriteData(w http.ResponseWriter, statusCode int, data interface{}) {
	WriteJSON(w, statusCode, map[string]interface{}{
		"status": "ok",
		"data":   data,
	})
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithCode writes a JSON error response with an error code.
func WriteErrorWithCode(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// writeServiceError maps a service error onto an HTTP status.
// Validation errors carry the offending field as the code.
func (s *Server) writeServiceError(w http.ResponseWriter, err error, action string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteErrorWithCode(w, http.StatusBadRequest, verr.Error(), verr.Field)
	case errors.Is(err, models.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInsufficientBalance):
		WriteErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), "insufficient_balance")
	case errors.Is(err, models.ErrConflict):
		WriteErrorWithCode(w, http.StatusConflict, err.Error(), "conflict")
	default:
		s.logger.Error().Err(err).Str("action", action).Msg("Request failed")
		WriteError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// DecodeJSON reads and decodes JSON from the request body into v.
// Returns false and writes a 400 error if decoding fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

// amountField is a monetary value that may arrive as a JSON number or as a
// formatted string such as "R$ 1.234,56". JSON numbers are read exactly;
// strings go through common.ParseAmount.
type amountField struct {
	text   string
	number bool
}

func (a *amountField) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountField{text: s}
		return nil
	}
	if string(b) == "null" {
		*a = amountField{}
		return nil
	}
	*a = amountField{text: string(b), number: true}
	return nil
}

// parseAmount converts a request amount. Empty input yields zero unless required.
func parseAmount(field string, a amountField, required bool) (decimal.Decimal, error) {
	if strings.TrimSpace(a.text) == "" {
		if required {
			return decimal.Zero, models.NewValidationError(field, "is required")
		}
		return decimal.Zero, nil
	}
	if a.number {
		d, err := decimal.NewFromString(a.text)
		if err != nil {
			return decimal.Zero, models.NewValidationError(field, "malformed monetary value "+a.text)
		}
		return d, nil
	}
	d, err := common.ParseAmount(a.text)
	if err != nil {
		return decimal.Zero, models.NewValidationError(field, "malformed monetary value "+a.text)
	}
	return d, nil
}

// parseDate parses a request date, reporting failures against field.
func parseDate(field, s string) (time.Time, error) {
	t, err := common.ParseDate(s)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return time.Time{}, models.NewValidationError(field, verr.Message)
		}
		return time.Time{}, err
	}
	return t, nil
}

// parseOptionalDate returns nil for an empty string.
func parseOptionalDate(field, s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := parseDate(field, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// PathParam extracts a path parameter from the URL path.
// For a pattern like /api/wallets/{id}/bonds, calling PathParam(r, "/api/wallets/", "/bonds")
// extracts the {id} part.
func PathParam(r *http.Request, prefix, suffix string) string {
	path := r.URL.Path
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	rest := path[len(prefix):]
	if suffix != "" {
		idx := strings.Index(rest, suffix)
		if idx < 0 {
			return rest
		}
		return rest[:idx]
	}
	if idx := strings.Index(rest, "/"); idx >= 0 {
		return rest[:idx]
	}
	return rest
}

// splitPath returns the first segment after prefix and the remaining sub-path.
func splitPath(r *http.Request, prefix string) (string, string) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	parts := strings.SplitN(path, "/", 2)
	sub := ""
	if len(parts) > 1 {
		sub = parts[1]
	}
	return parts[0], sub
}
