package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/resellerhub-backend/api/middleware"
	pkgerrors "github.com/angelmondragon/resellerhub-backend/pkg/errors"
)

func accountIDFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.AccountIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid account id")
	}
	return id, nil
}

func parseUUIDs(values []string, field string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, value := range values {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id").WithDetails(map[string]any{"field": field, "value": value})
		}
		ids = append(ids, id)
	}
	return ids, nil
}
