package middleware

import (
	"encoding/json"
	"net/http"

	"wotmaps-api/internal/models"
	"wotmaps-api/pkg/errors"
)

func writeError(w http.ResponseWriter, serviceErr *errors.ServiceError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(serviceErr.Status)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error:            serviceErr.Code,
		ErrorDescription: serviceErr.Message,
		Detail:           serviceErr.Details,
	})
}
