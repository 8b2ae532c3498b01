package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/resellerhub-backend/internal/accounts"
	"github.com/angelmondragon/resellerhub-backend/internal/cart"
	"github.com/angelmondragon/resellerhub-backend/internal/products"
	"github.com/angelmondragon/resellerhub-backend/pkg/db/models"
	"github.com/angelmondragon/resellerhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/resellerhub-backend/pkg/errors"
	"github.com/angelmondragon/resellerhub-backend/pkg/logger"
	"github.com/angelmondragon/resellerhub-backend/pkg/metrics"
	"github.com/angelmondragon/resellerhub-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CommissionEngine is the part of the commission service settlement drives.
type CommissionEngine interface {
	Calculate(ctx context.Context, tx *gorm.DB, order *models.Order) ([]models.Commission, error)
	RecordCreated(created []models.Commission)
	ExistsForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (bool, error)
	CancelPendingForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]models.Commission, error)
}

// SessionRecorder rolls POS sales into the cashier's open session.
type SessionRecorder interface {
	RecordSale(ctx context.Context, tx *gorm.DB, sessionID, cashierID uuid.UUID, amount decimal.Decimal) error
}

// Service settles orders: creation, lifecycle transitions and payment capture.
// Every mutating call runs in one transaction.
type Service interface {
	CreateFromCart(ctx context.Context, buyerID uuid.UUID, input CheckoutInput) (*models.Order, error)
	CreatePosOrder(ctx context.Context, cashierID uuid.UUID, input PosOrderInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, actor *outbox.ActorRef, orderID uuid.UUID, input StatusUpdate) (*models.Order, error)
	ProcessPayment(ctx context.Context, actor *outbox.ActorRef, orderID uuid.UUID, input PaymentInput) (bool, error)
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
}

// Dependencies groups the collaborators of the settlement service.
type Dependencies struct {
	Tx          txRunner
	Repo        Repository
	Cart        cart.CartRepository
	Products    *products.Repository
	Accounts    accounts.Repository
	Commissions CommissionEngine
	Sessions    SessionRecorder
	Outbox      outbox.Emitter
	Metrics     *metrics.SettlementMetrics
	Logger      *logger.Logger
}

type service struct {
	tx          txRunner
	repo        Repository
	cart        cart.CartRepository
	products    *products.Repository
	accounts    accounts.Repository
	commissions CommissionEngine
	sessions    SessionRecorder
	outbox      outbox.Emitter
	metrics     *metrics.SettlementMetrics
	logg        *logger.Logger
	now         func() time.Time
}

func NewService(deps Dependencies) (Service, error) {
	if deps.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if deps.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if deps.Cart == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if deps.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if deps.Accounts == nil {
		return nil, fmt.Errorf("account repository required")
	}
	if deps.Commissions == nil {
		return nil, fmt.Errorf("commission engine required")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session recorder required")
	}
	if deps.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		tx:          deps.Tx,
		repo:        deps.Repo,
		cart:        deps.Cart,
		products:    deps.Products,
		accounts:    deps.Accounts,
		commissions: deps.Commissions,
		sessions:    deps.Sessions,
		outbox:      deps.Outbox,
		metrics:     deps.Metrics,
		logg:        deps.Logger,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) CreateFromCart(ctx context.Context, buyerID uuid.UUID, input CheckoutInput) (*models.Order, error) {
	if err := validateCharges(input.ShippingCost, input.TaxAmount, input.DiscountAmount); err != nil {
		return nil, err
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = enums.PaymentMethodBankTransfer
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	status, paymentStatus, err := initialState(input.Status, input.PaymentStatus)
	if err != nil {
		return nil, err
	}

	var (
		orderID     uuid.UUID
		commissions []models.Commission
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cartRepo := s.cart.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		items, err := cartRepo.ListByAccount(ctx, buyerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		if len(items) == 0 {
			return emptyCart(buyerID)
		}

		subtotal := decimal.Zero
		for _, item := range items {
			subtotal = subtotal.Add(item.LineTotal())
		}
		total := subtotal.Add(input.ShippingCost).Add(input.TaxAmount).Sub(input.DiscountAmount)
		if total.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "discount exceeds order value")
		}

		now := s.now()
		order := &models.Order{
			OrderNumber:     GenerateOrderNumber(now),
			BuyerID:         buyerID,
			OrderType:       enums.OrderTypeOnline,
			Subtotal:        subtotal.Round(2),
			ShippingCost:    input.ShippingCost.Round(2),
			TaxAmount:       input.TaxAmount.Round(2),
			DiscountAmount:  input.DiscountAmount.Round(2),
			TotalAmount:     total.Round(2),
			Status:          status,
			PaymentStatus:   paymentStatus,
			PaymentMethod:   input.PaymentMethod,
			ShippingAddress: input.ShippingAddress,
			BillingAddress:  input.BillingAddress,
			ShippingService: input.ShippingService,
			ShippingType:    input.ShippingType,
			Notes:           input.Notes,
		}
		if paymentStatus == enums.PaymentStatusPaid {
			order.PaidAt = &now
		}
		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}

		for _, item := range items {
			product, err := productRepo.FindByID(ctx, item.ProductID)
			if err != nil {
				if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
					return productNotFound(item.ProductID)
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
			}
			if err := s.writeLine(ctx, repo, productRepo, order.ID, product, item.Quantity, item.UnitPrice, item.Options); err != nil {
				return err
			}
		}

		if err := cartRepo.Clear(ctx, buyerID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}

		if order.IsCommissionEligible() {
			if commissions, err = s.commissions.Calculate(ctx, tx, order); err != nil {
				return err
			}
		}

		orderID = order.ID
		return s.emitCreated(ctx, tx, &outbox.ActorRef{AccountID: buyerID}, order)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderCreated(enums.OrderTypeOnline.String())
	s.commissions.RecordCreated(commissions)
	s.logInfo(ctx, orderID, "order created from cart")
	return s.Get(ctx, orderID)
}

func (s *service) CreatePosOrder(ctx context.Context, cashierID uuid.UUID, input PosOrderInput) (*models.Order, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if err := validateCharges(decimal.Zero, input.TaxAmount, input.DiscountAmount); err != nil {
		return nil, err
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		if item.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
		}
	}

	var (
		orderID     uuid.UUID
		commissions []models.Commission
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		productRepo := s.products.WithTx(tx)
		accountRepo := s.accounts.WithTx(tx)

		if _, err := accountRepo.FindByID(ctx, input.CustomerID); err != nil {
			return err
		}

		lines := make([]*models.Product, len(input.Items))
		subtotal := decimal.Zero
		for i, item := range input.Items {
			product, err := productRepo.FindByID(ctx, item.ProductID)
			if err != nil {
				if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
					return productNotFound(item.ProductID)
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
			}
			if product.StockQuantity < item.Quantity {
				return insufficientStock(product.ID, product.Name, item.Quantity, product.StockQuantity)
			}
			lines[i] = product
			subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		total := subtotal.Add(input.TaxAmount).Sub(input.DiscountAmount)
		if total.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "discount exceeds order value")
		}

		now := s.now()
		reseller := cashierID
		order := &models.Order{
			OrderNumber:    GenerateOrderNumber(now),
			BuyerID:        input.CustomerID,
			ResellerID:     &reseller,
			PosSessionID:   input.SessionID,
			OrderType:      enums.OrderTypePOS,
			Subtotal:       subtotal.Round(2),
			ShippingCost:   decimal.Zero,
			TaxAmount:      input.TaxAmount.Round(2),
			DiscountAmount: input.DiscountAmount.Round(2),
			TotalAmount:    total.Round(2),
			Status:         enums.OrderStatusConfirmed,
			PaymentStatus:  enums.PaymentStatusPaid,
			PaymentMethod:  input.PaymentMethod,
			PaymentRef:     input.PaymentReference,
			Notes:          input.Notes,
		}
		if input.PaymentMethod.IsDeferred() {
			order.PaymentStatus = enums.PaymentStatusDeferred
		} else {
			order.PaidAt = &now
		}
		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}

		for i, item := range input.Items {
			if err := s.writeLine(ctx, repo, productRepo, order.ID, lines[i], item.Quantity, item.UnitPrice, nil); err != nil {
				return err
			}
		}

		var err error
		if commissions, err = s.commissions.Calculate(ctx, tx, order); err != nil {
			return err
		}
		if err := accountRepo.IncrementTotalSales(ctx, input.CustomerID, order.TotalAmount); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment buyer sales")
		}
		if input.SessionID != nil {
			if err := s.sessions.RecordSale(ctx, tx, *input.SessionID, cashierID, order.TotalAmount); err != nil {
				return err
			}
		}

		orderID = order.ID
		actor := &outbox.ActorRef{AccountID: cashierID, Role: enums.AccountRoleCashier.String()}
		return s.emitCreated(ctx, tx, actor, order)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderCreated(enums.OrderTypePOS.String())
	s.commissions.RecordCreated(commissions)
	s.logInfo(ctx, orderID, "pos order created")
	return s.Get(ctx, orderID)
}

// writeLine snapshots the product onto an order item, then takes the stock.
// The item is written before the decrement, so a shortfall leaves a partial
// order that the enclosing transaction rolls back.
func (s *service) writeLine(ctx context.Context, repo Repository, productRepo *products.Repository, orderID uuid.UUID, product *models.Product, qty int, unitPrice decimal.Decimal, options map[string]any) error {
	item := &models.OrderItem{
		OrderID:        orderID,
		ProductID:      product.ID,
		ProductName:    product.Name,
		ProductSKU:     product.SKU,
		ProductOptions: options,
		Quantity:       qty,
		UnitPrice:      unitPrice.Round(2),
		TotalPrice:     unitPrice.Mul(decimal.NewFromInt(int64(qty))).Round(2),
	}
	if err := repo.CreateItem(ctx, item); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order item")
	}
	if err := productRepo.DecrementStock(ctx, product.ID, qty); err != nil {
		if errors.Is(err, products.ErrInsufficientStock) {
			available := product.StockQuantity
			if current, ferr := productRepo.FindByID(ctx, product.ID); ferr == nil {
				available = current.StockQuantity
			}
			return insufficientStock(product.ID, product.Name, qty, available)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
	}
	return nil
}

func (s *service) UpdateStatus(ctx context.Context, actor *outbox.ActorRef, orderID uuid.UUID, input StatusUpdate) (*models.Order, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	changed := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if order.Status == input.Status {
			return nil
		}
		if !order.Status.CanTransitionTo(input.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status transition not allowed").
				WithDetails(map[string]any{"from": order.Status, "to": input.Status})
		}

		now := s.now()
		updates := map[string]any{"status": input.Status}
		switch input.Status {
		case enums.OrderStatusShipped:
			updates["shipped_at"] = now
			if input.TrackingNumber != nil {
				updates["tracking_number"] = *input.TrackingNumber
			}
		case enums.OrderStatusDelivered:
			updates["delivered_at"] = now
		case enums.OrderStatusCancelled:
			updates["cancelled_at"] = now
		}
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
		}

		if input.Status == enums.OrderStatusCancelled {
			if err := s.cancel(ctx, tx, actor, order, now); err != nil {
				return err
			}
		}

		changed = true
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor,
			OccurredAt:    now,
			Data: outbox.OrderStatusChangedEvent{
				OrderID:        order.ID,
				From:           order.Status.String(),
				To:             input.Status.String(),
				TrackingNumber: input.TrackingNumber,
				ChangedAt:      now,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.logInfo(ctx, orderID, "order status updated to "+input.Status.String())
		if input.Status == enums.OrderStatusCancelled {
			s.metrics.OrderCancelled()
		}
	}
	return s.Get(ctx, orderID)
}

// cancel returns every line to stock and withdraws the order's pending
// commissions. Paid commissions are left alone.
func (s *service) cancel(ctx context.Context, tx *gorm.DB, actor *outbox.ActorRef, order *models.Order, now time.Time) error {
	items, err := s.repo.WithTx(tx).ListItems(ctx, order.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order items")
	}
	productRepo := s.products.WithTx(tx)
	for _, item := range items {
		if err := productRepo.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restore stock")
		}
	}

	cancelled, err := s.commissions.CancelPendingForOrder(ctx, tx, order.ID)
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, len(cancelled))
	for i, c := range cancelled {
		ids[i] = c.ID
	}

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderCancelled,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor,
		OccurredAt:    now,
		Data: outbox.OrderCancelledEvent{
			OrderID:              order.ID,
			RestoredItems:        len(items),
			CancelledCommissions: ids,
			CancelledAt:          now,
		},
	})
}

// ProcessPayment records a captured payment and adds the order total to the
// buyer's sales. It is best effort: unknown, cancelled or refunded orders are
// skipped and report false. An order that is already paid is settled, so a
// repeated call reports true and changes nothing.
func (s *service) ProcessPayment(ctx context.Context, actor *outbox.ActorRef, orderID uuid.UUID, input PaymentInput) (bool, error) {
	if !input.Method.IsValid() {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	var (
		processed   bool
		commissions []models.Commission
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		switch {
		case order.Status == enums.OrderStatusCancelled, order.Status == enums.OrderStatusRefunded:
			return nil
		case order.PaymentStatus == enums.PaymentStatusPaid:
			processed = true
			return nil
		}

		paymentData, err := encodePaymentData(input.Data)
		if err != nil {
			return err
		}
		now := s.now()
		updates := map[string]any{
			"payment_status":    enums.PaymentStatusPaid,
			"payment_method":    input.Method,
			"payment_reference": input.Reference,
			"payment_data":      paymentData,
			"paid_at":           now,
		}
		order.PaymentStatus = enums.PaymentStatusPaid
		order.PaymentMethod = input.Method
		order.PaidAt = &now
		if order.Status == enums.OrderStatusPending {
			updates["status"] = enums.OrderStatusConfirmed
			order.Status = enums.OrderStatusConfirmed
		}
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record payment")
		}

		exists, err := s.commissions.ExistsForOrder(ctx, tx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check commissions")
		}
		if !exists {
			if commissions, err = s.commissions.Calculate(ctx, tx, order); err != nil {
				return err
			}
		}

		// Deferred POS orders were already counted when rung up; settling the
		// tab counts them again.
		if err := s.accounts.WithTx(tx).IncrementTotalSales(ctx, order.BuyerID, order.TotalAmount); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment buyer sales")
		}

		processed = true
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor,
			OccurredAt:    now,
			Data: outbox.OrderPaidEvent{
				OrderID:       order.ID,
				PaymentMethod: input.Method.String(),
				TotalAmount:   order.TotalAmount,
				PaidAt:        now,
			},
		})
	})
	if err != nil {
		return false, err
	}
	if processed {
		s.metrics.PaymentProcessed()
	}
	s.commissions.RecordCreated(commissions)
	return processed, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}

func (s *service) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	return s.repo.ListStalePending(ctx, cutoff, limit)
}

func (s *service) emitCreated(ctx context.Context, tx *gorm.DB, actor *outbox.ActorRef, order *models.Order) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor,
		Data: outbox.OrderCreatedEvent{
			OrderID:       order.ID,
			OrderNumber:   order.OrderNumber,
			BuyerID:       order.BuyerID,
			OrderType:     order.OrderType.String(),
			Status:        order.Status.String(),
			PaymentStatus: order.PaymentStatus.String(),
			TotalAmount:   order.TotalAmount,
		},
	})
}

func (s *service) logInfo(ctx context.Context, orderID uuid.UUID, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Info(s.logg.WithOrderID(ctx, orderID.String()), msg)
}

// encodePaymentData stores the raw gateway payload as JSON text.
func encodePaymentData(data map[string]any) (any, error) {
	if data == nil {
		return nil, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "payment data must be JSON")
	}
	return string(raw), nil
}

func validateCharges(values ...decimal.Decimal) error {
	for _, v := range values {
		if v.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "charges cannot be negative")
		}
	}
	return nil
}

func initialState(status enums.OrderStatus, payment enums.PaymentStatus) (enums.OrderStatus, enums.PaymentStatus, error) {
	if status == "" {
		status = enums.OrderStatusPending
	}
	if payment == "" {
		payment = enums.PaymentStatusPending
	}
	if status != enums.OrderStatusPending && status != enums.OrderStatusConfirmed {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "orders start pending or confirmed")
	}
	if payment != enums.PaymentStatusPending && payment != enums.PaymentStatusPaid {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "orders start unpaid or paid")
	}
	return status, payment, nil
}
