package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"wotmaps-api/internal/auth"
	"wotmaps-api/internal/models"
	"wotmaps-api/internal/request"
	"wotmaps-api/pkg/errors"

	"go.uber.org/zap"
)

// RequireIdentity adapts a handler that needs the caller's identity. Requests
// that reached it without a verified bearer token are rejected.
func RequireIdentity(fn func(w http.ResponseWriter, r *http.Request, claims auth.TokenClaims)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			sendError(w, errors.ErrAuthRequired)
			return
		}
		fn(w, r, claims)
	}
}

// sendDecodeError maps extraction failures to client errors. Anything that is
// neither a schema nor a validation error is logged and reported as internal.
func sendDecodeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var schemaErr *request.SchemaError
	if stderrors.As(err, &schemaErr) {
		var details any
		if len(schemaErr.Fields) > 0 {
			details = map[string][]string{"fields": schemaErr.Fields}
		}
		sendError(w, errors.WithDetails(errors.ErrIncorrectType, details))
		return
	}

	var validationErr *request.ValidationError
	if stderrors.As(err, &validationErr) {
		sendError(w, errors.WithDetails(errors.ErrValidation, map[string][]request.Violation{
			"violations": validationErr.Violations,
		}))
		return
	}

	logger.Error("Failed to decode request", zap.Error(err))
	sendError(w, errors.ErrInternalServer)
}

func sendError(w http.ResponseWriter, err *errors.ServiceError) {
	sendJSON(w, err.Status, models.ErrorResponse{
		Error:            err.Code,
		ErrorDescription: err.Message,
		Detail:           err.Details,
	})
}

func sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
