package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/resellerhub-backend/api/middleware"
	"github.com/angelmondragon/resellerhub-backend/api/responses"
	"github.com/angelmondragon/resellerhub-backend/api/validators"
	"github.com/angelmondragon/resellerhub-backend/internal/accounts"
	"github.com/angelmondragon/resellerhub-backend/pkg/db/models"
	"github.com/angelmondragon/resellerhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/resellerhub-backend/pkg/errors"
	"github.com/angelmondragon/resellerhub-backend/pkg/logger"
)

type assignSponsorRequest struct {
	SponsorID uuid.UUID `json:"sponsor_id" validate:"required"`
}

type accountResponse struct {
	ID                    uuid.UUID         `json:"id"`
	Name                  string            `json:"name"`
	Role                  enums.AccountRole `json:"role"`
	ResellerLevel         *int              `json:"reseller_level,omitempty"`
	SponsorID             *uuid.UUID        `json:"sponsor_id,omitempty"`
	IsAffiliate           bool              `json:"is_affiliate"`
	AffiliateCode         *string           `json:"affiliate_code,omitempty"`
	TotalSales            decimal.Decimal   `json:"total_sales"`
	TotalCommissionEarned decimal.Decimal   `json:"total_commission_earned"`
}

func newAccountResponse(a *models.Account) accountResponse {
	resp := accountResponse{
		ID:                    a.ID,
		Name:                  a.Name,
		Role:                  a.Role,
		SponsorID:             a.SponsorID,
		IsAffiliate:           a.IsAffiliate,
		AffiliateCode:         a.AffiliateCode,
		TotalSales:            a.TotalSales,
		TotalCommissionEarned: a.TotalCommissionEarned,
	}
	if a.ResellerLevel != nil {
		level := a.ResellerLevel.Level
		resp.ResellerLevel = &level
	}
	return resp
}

// EnableAffiliate turns the caller into an affiliate and returns the referral code.
func EnableAffiliate(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}
		accountID, err := accountIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		account, err := svc.EnableAffiliate(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAccountResponse(account))
	}
}

func AdminAssignSponsor(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}
		accountID, err := validators.ParseUUIDParam(r, "accountId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload assignSponsorRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.AssignSponsor(r.Context(), middleware.ActorFromContext(r.Context()), accountID, payload.SponsorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAccountResponse(account))
	}
}
