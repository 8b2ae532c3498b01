package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/resellerhub-backend/api/middleware"
	"github.com/angelmondragon/resellerhub-backend/api/responses"
	"github.com/angelmondragon/resellerhub-backend/api/validators"
	"github.com/angelmondragon/resellerhub-backend/internal/commissions"
	"github.com/angelmondragon/resellerhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/resellerhub-backend/pkg/errors"
	"github.com/angelmondragon/resellerhub-backend/pkg/logger"
	"github.com/angelmondragon/resellerhub-backend/pkg/pagination"
)

type payCommissionsRequest struct {
	CommissionIDs []string `json:"commission_ids" validate:"required,min=1,max=500,dive,uuid"`
}

type payCommissionsResponse struct {
	Processed int `json:"processed"`
}

// ListCommissions pages the caller's commissions, newest first.
func ListCommissions(svc commissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "commissions service unavailable"))
			return
		}
		resellerID, err := accountIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListByReseller(r.Context(), commissions.ListParams{
			ResellerID: resellerID,
			Status:     enums.CommissionStatus(strings.TrimSpace(r.URL.Query().Get("status"))),
			Params: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CommissionStats(svc commissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "commissions service unavailable"))
			return
		}
		resellerID, err := accountIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		stats, err := svc.ResellerStats(r.Context(), resellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// AdminPayCommissions marks pending commissions paid. Unknown or already
// settled ids are skipped and excluded from the count.
func AdminPayCommissions(svc commissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "commissions service unavailable"))
			return
		}

		var payload payCommissionsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ids, err := parseUUIDs(payload.CommissionIDs, "commission_ids")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.ProcessPayments(r.Context(), middleware.ActorFromContext(r.Context()), ids)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payCommissionsResponse{Processed: count})
	}
}
