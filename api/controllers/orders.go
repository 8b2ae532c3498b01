package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/resellerhub-backend/api/middleware"
	"github.com/angelmondragon/resellerhub-backend/api/responses"
	"github.com/angelmondragon/resellerhub-backend/api/validators"
	"github.com/angelmondragon/resellerhub-backend/internal/orders"
	"github.com/angelmondragon/resellerhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/resellerhub-backend/pkg/errors"
	"github.com/angelmondragon/resellerhub-backend/pkg/logger"
	"github.com/angelmondragon/resellerhub-backend/pkg/types"
)

const maxNotesLength = 1000

type checkoutRequest struct {
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	PaymentMethod   string          `json:"payment_method" validate:"required,oneof=cash bank_transfer midtrans xendit pay_later"`
	ShippingAddress *types.Address  `json:"shipping_address,omitempty"`
	BillingAddress  *types.Address  `json:"billing_address,omitempty"`
	ShippingService *string         `json:"shipping_service,omitempty" validate:"omitempty,max=100"`
	ShippingType    *string         `json:"shipping_service_type,omitempty" validate:"omitempty,max=50"`
	Notes           *string         `json:"notes,omitempty"`
}

type paymentRequest struct {
	PaymentMethod string         `json:"payment_method" validate:"required,oneof=cash bank_transfer midtrans xendit pay_later"`
	Reference     *string        `json:"reference,omitempty" validate:"omitempty,max=255"`
	PaymentData   map[string]any `json:"payment_data,omitempty"`
}

type paymentResponse struct {
	Processed bool `json:"processed"`
}

// Checkout turns the caller's cart into a pending online order.
func Checkout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		buyerID, err := accountIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateFromCart(r.Context(), buyerID, orders.CheckoutInput{
			ShippingCost:    payload.ShippingCost,
			TaxAmount:       payload.TaxAmount,
			DiscountAmount:  payload.DiscountAmount,
			PaymentMethod:   enums.PaymentMethod(payload.PaymentMethod),
			ShippingAddress: payload.ShippingAddress,
			BillingAddress:  payload.BillingAddress,
			ShippingService: payload.ShippingService,
			ShippingType:    payload.ShippingType,
			Notes:           sanitizeNotes(payload.Notes),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, orders.ToDTO(*order))
	}
}

// GetOrder returns an order with its items. Buyers only see their own orders.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		callerID, err := accountIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		switch enums.AccountRole(middleware.RoleFromContext(r.Context())) {
		case enums.AccountRoleAdmin, enums.AccountRoleCashier:
		default:
			if order.BuyerID != callerID {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
				return
			}
		}
		responses.WriteSuccess(w, orders.ToDTO(*order))
	}
}

// ProcessPayment records a confirmed payment. An unknown order is reported as
// processed=false rather than an error.
func ProcessPayment(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithOrderID(ctx, orderID.String())
		}
		processed, err := svc.ProcessPayment(ctx, middleware.ActorFromContext(ctx), orderID, orders.PaymentInput{
			Method:    enums.PaymentMethod(payload.PaymentMethod),
			Reference: payload.Reference,
			Data:      payload.PaymentData,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, paymentResponse{Processed: processed})
	}
}

func sanitizeNotes(notes *string) *string {
	return validators.SanitizeNotes(notes, maxNotesLength)
}
