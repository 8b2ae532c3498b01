package controllers

import (
	"net/http"

	"github.com/angelmondragon/resellerhub-backend/api/middleware"
	"github.com/angelmondragon/resellerhub-backend/api/responses"
	"github.com/angelmondragon/resellerhub-backend/api/validators"
	"github.com/angelmondragon/resellerhub-backend/internal/orders"
	"github.com/angelmondragon/resellerhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/resellerhub-backend/pkg/errors"
	"github.com/angelmondragon/resellerhub-backend/pkg/logger"
)

type orderStatusRequest struct {
	Status         string  `json:"status" validate:"required,oneof=pending confirmed processing shipped delivered cancelled refunded"`
	TrackingNumber *string `json:"tracking_number,omitempty" validate:"omitempty,max=100"`
}

// AdminUpdateOrderStatus moves an order through its lifecycle. Cancelling
// restores stock and voids pending commissions.
func AdminUpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload orderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithOrderID(ctx, orderID.String())
		}
		order, err := svc.UpdateStatus(ctx, middleware.ActorFromContext(ctx), orderID, orders.StatusUpdate{
			Status:         enums.OrderStatus(payload.Status),
			TrackingNumber: payload.TrackingNumber,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders.ToDTO(*order))
	}
}
