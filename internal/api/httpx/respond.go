// Package httpx holds the JSON response helpers shared by the API handlers.
package httpx

import (
	"net/http"

	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"

	apperrors "github.com/Vasu1712/soundboard-backend/pkg/errors"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error   apperrors.Code `json:"error"`
	Message string         `json:"message"`
}

// WriteJSON sets the content type and status and encodes v.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError maps err to its HTTP status. Internal causes are logged and
// never shown to the client.
func WriteError(w http.ResponseWriter, logger *zap.Logger, err error) {
	code := apperrors.CodeOf(err)
	status := apperrors.StatusFor(code)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("error_code", string(code)), zap.Error(err))
	}
	WriteJSON(w, status, ErrorBody{Error: code, Message: apperrors.MessageOf(err)})
}

// DecodeJSON decodes the request body into v.
func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidArgument, "invalid request body", err)
	}
	return nil
}
