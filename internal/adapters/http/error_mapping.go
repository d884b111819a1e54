package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/kirillkom/medreport-assistant/internal/core/domain"
)

const (
	msgUnauthorized = "Unauthorized - Invalid API key"
	msgNoFile       = "No file uploaded!"
	msgInvalidInput = "Invalid upload request"
	msgTooLarge     = "Upload is too large"
	msgUnavailable  = "Service temporarily unavailable"
	msgInternal     = "Internal server error"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrNoFile), domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage is the client-facing text for err. Internal details stay in the logs.
func errorMessage(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrUnauthorized):
		return msgUnauthorized
	case domain.IsKind(err, domain.ErrNoFile):
		return msgNoFile
	case domain.IsKind(err, domain.ErrInvalidInput):
		return msgInvalidInput
	case domain.IsKind(err, domain.ErrPayloadTooLarge):
		return msgTooLarge
	case domain.IsKind(err, domain.ErrTemporary):
		return msgUnavailable
	default:
		return msgInternal
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	slog.Warn("request_rejected",
		"request_id", domain.RequestIDFromContext(r.Context()),
		"status", status,
		"error", err,
	)
	writeJSON(w, status, map[string]string{"error": errorMessage(err)})
}
