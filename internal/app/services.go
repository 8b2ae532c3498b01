package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/resellerhub-backend/internal/accounts"
	"github.com/angelmondragon/resellerhub-backend/internal/cart"
	"github.com/angelmondragon/resellerhub-backend/internal/commissions"
	"github.com/angelmondragon/resellerhub-backend/internal/levels"
	"github.com/angelmondragon/resellerhub-backend/internal/orders"
	"github.com/angelmondragon/resellerhub-backend/internal/pos"
	"github.com/angelmondragon/resellerhub-backend/internal/products"
	"github.com/angelmondragon/resellerhub-backend/pkg/db"
	"github.com/angelmondragon/resellerhub-backend/pkg/logger"
	"github.com/angelmondragon/resellerhub-backend/pkg/metrics"
	"github.com/angelmondragon/resellerhub-backend/pkg/outbox"
)

// Services holds the domain services shared by the api and the workers.
type Services struct {
	Levels      levels.Service
	Accounts    accounts.Service
	Cart        cart.Service
	Commissions commissions.Service
	POS         pos.Service
	Orders      orders.Service
	Outbox      *outbox.Service
}

// Build wires every repository and service against one database client.
// reg may be nil, in which case settlement metrics are not exported.
func Build(dbClient *db.Client, logg *logger.Logger, reg prometheus.Registerer) (*Services, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	conn := dbClient.DB()
	settlementMetrics := metrics.NewSettlementMetrics(reg)

	outboxSvc := outbox.NewService(outbox.NewRepository(conn), logg)

	levelsSvc, err := levels.NewService(levels.NewRepository(conn))
	if err != nil {
		return nil, fmt.Errorf("levels service: %w", err)
	}

	accountRepo := accounts.NewRepository(conn)
	accountsSvc, err := accounts.NewService(dbClient, accountRepo, outboxSvc)
	if err != nil {
		return nil, fmt.Errorf("accounts service: %w", err)
	}

	productRepo := products.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	cartSvc, err := cart.NewService(cartRepo, dbClient, accountRepo, productRepo)
	if err != nil {
		return nil, fmt.Errorf("cart service: %w", err)
	}

	commissionsSvc, err := commissions.NewService(
		dbClient,
		commissions.NewRepository(conn),
		accountRepo,
		outboxSvc,
		settlementMetrics,
		logg,
	)
	if err != nil {
		return nil, fmt.Errorf("commissions service: %w", err)
	}

	posSvc, err := pos.NewService(dbClient, pos.NewRepository(conn), outboxSvc)
	if err != nil {
		return nil, fmt.Errorf("pos service: %w", err)
	}

	ordersSvc, err := orders.NewService(orders.Dependencies{
		Tx:          dbClient,
		Repo:        orders.NewRepository(conn),
		Cart:        cartRepo,
		Products:    productRepo,
		Accounts:    accountRepo,
		Commissions: commissionsSvc,
		Sessions:    posSvc,
		Outbox:      outboxSvc,
		Metrics:     settlementMetrics,
		Logger:      logg,
	})
	if err != nil {
		return nil, fmt.Errorf("orders service: %w", err)
	}

	return &Services{
		Levels:      levelsSvc,
		Accounts:    accountsSvc,
		Cart:        cartSvc,
		Commissions: commissionsSvc,
		POS:         posSvc,
		Orders:      ordersSvc,
		Outbox:      outboxSvc,
	}, nil
}
