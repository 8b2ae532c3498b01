package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/resellerhub-backend/api/responses"
	"github.com/angelmondragon/resellerhub-backend/api/validators"
	"github.com/angelmondragon/resellerhub-backend/internal/orders"
	"github.com/angelmondragon/resellerhub-backend/internal/pos"
	"github.com/angelmondragon/resellerhub-backend/pkg/db/models"
	"github.com/angelmondragon/resellerhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/resellerhub-backend/pkg/errors"
	"github.com/angelmondragon/resellerhub-backend/pkg/logger"
)

type openSessionRequest struct {
	OpeningCash decimal.Decimal `json:"opening_cash"`
}

type closeSessionRequest struct {
	ClosingCash decimal.Decimal `json:"closing_cash"`
	Notes       *string         `json:"notes,omitempty"`
}

type posItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type posOrderRequest struct {
	CustomerID       uuid.UUID        `json:"customer_id" validate:"required"`
	SessionID        *uuid.UUID       `json:"pos_session_id,omitempty"`
	Items            []posItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod    string           `json:"payment_method" validate:"required,oneof=cash bank_transfer midtrans xendit pay_later"`
	PaymentReference *string          `json:"payment_reference,omitempty" validate:"omitempty,max=255"`
	TaxAmount        decimal.Decimal  `json:"tax_amount"`
	DiscountAmount   decimal.Decimal  `json:"discount_amount"`
	Notes            *string          `json:"notes,omitempty"`
}

type posSessionResponse struct {
	ID                uuid.UUID              `json:"id"`
	CashierID         uuid.UUID              `json:"cashier_id"`
	Status            enums.PosSessionStatus `json:"status"`
	OpeningCash       decimal.Decimal        `json:"opening_cash"`
	ClosingCash       *decimal.Decimal       `json:"closing_cash,omitempty"`
	TotalSales        decimal.Decimal        `json:"total_sales"`
	TotalTransactions int                    `json:"total_transactions"`
	OpenedAt          time.Time              `json:"opened_at"`
	ClosedAt          *time.Time             `json:"closed_at,omitempty"`
	Notes             *string                `json:"notes,omitempty"`
}

func newPosSessionResponse(s *models.PosSession) posSessionResponse {
	resp := posSessionResponse{
		ID:                s.ID,
		CashierID:         s.CashierID,
		Status:            s.Status,
		OpeningCash:       s.OpeningCash,
		TotalSales:        s.TotalSales,
		TotalTransactions: s.TotalTransactions,
		OpenedAt:          s.OpenedAt,
		ClosedAt:          s.ClosedAt,
		Notes:             s.Notes,
	}
	if s.ClosingCash.Valid {
		closing := s.ClosingCash.Decimal
		resp.ClosingCash = &closing
	}
	return resp
}

func OpenPosSession(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}
		cashierID, err := accountIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload openSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Open(r.Context(), cashierID, payload.OpeningCash)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newPosSessionResponse(session))
	}
}

func CurrentPosSession(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}
		cashierID, err := accountIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		session, err := svc.Current(r.Context(), cashierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPosSessionResponse(session))
	}
}

func ClosePosSession(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}
		cashierID, err := accountIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sessionID, err := validators.ParseUUIDParam(r, "sessionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload closeSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Close(r.Context(), cashierID, sessionID, pos.CloseInput{
			ClosingCash: payload.ClosingCash,
			Notes:       sanitizeNotes(payload.Notes),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPosSessionResponse(session))
	}
}

// CreatePosOrder records a counter sale for the calling cashier.
func CreatePosOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		cashierID, err := accountIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload posOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]orders.PosItemInput, len(payload.Items))
		for i, item := range payload.Items {
			items[i] = orders.PosItemInput{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			}
		}

		order, err := svc.CreatePosOrder(r.Context(), cashierID, orders.PosOrderInput{
			CustomerID:       payload.CustomerID,
			SessionID:        payload.SessionID,
			Items:            items,
			PaymentMethod:    enums.PaymentMethod(payload.PaymentMethod),
			PaymentReference: payload.PaymentReference,
			TaxAmount:        payload.TaxAmount,
			DiscountAmount:   payload.DiscountAmount,
			Notes:            sanitizeNotes(payload.Notes),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, orders.ToDTO(*order))
	}
}
