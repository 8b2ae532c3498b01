package routes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/resellerhub-backend/internal/app"
	pkgAuth "github.com/angelmondragon/resellerhub-backend/pkg/auth"
	"github.com/angelmondragon/resellerhub-backend/pkg/config"
	"github.com/angelmondragon/resellerhub-backend/pkg/db/dbtest"
	"github.com/angelmondragon/resellerhub-backend/pkg/db/models"
	"github.com/angelmondragon/resellerhub-backend/pkg/enums"
	"github.com/angelmondragon/resellerhub-backend/pkg/logger"
	"github.com/angelmondragon/resellerhub-backend/pkg/metrics"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type memoryIdempotency struct {
	data map[string]string
}

func newMemoryIdempotency() *memoryIdempotency {
	return &memoryIdempotency{data: map[string]string{}}
}

func (m *memoryIdempotency) Get(_ context.Context, key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryIdempotency) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryIdempotency) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryIdempotency) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryIdempotency) IdempotencyKey(scope, id string) string {
	return "test:" + scope + ":" + id
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type harness struct {
	t      *testing.T
	cfg    *config.Config
	conn   *gorm.DB
	router http.Handler
}

func newHarness(t *testing.T, dbPing error) *harness {
	t.Helper()
	client, conn := dbtest.OpenClient(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	reg := prometheus.NewRegistry()

	services, err := app.Build(client, logg, reg)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{Secret: "secret", Issuer: "resellerhub", ExpirationMinutes: 30}
	cfg.Commerce.IdempotencyTTL = time.Hour

	router := NewRouter(RouterParams{
		Config:      cfg,
		Logger:      logg,
		DB:          stubPinger{err: dbPing},
		Redis:       stubPinger{},
		Idempotency: newMemoryIdempotency(),
		Gatherer:    reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		Levels:      services.Levels,
		Accounts:    services.Accounts,
		Cart:        services.Cart,
		Commissions: services.Commissions,
		POS:         services.POS,
		Orders:      services.Orders,
	})
	return &harness{t: t, cfg: cfg, conn: conn, router: router}
}

func (h *harness) token(accountID uuid.UUID, role enums.AccountRole) string {
	h.t.Helper()
	token, err := pkgAuth.MintAccessToken(h.cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{AccountID: accountID, Role: role})
	require.NoError(h.t, err)
	return token
}

func (h *harness) do(method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
	h.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if method != http.MethodGet {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}
	resp := httptest.NewRecorder()
	h.router.ServeHTTP(resp, req)

	var env envelope
	if resp.Body.Len() > 0 && strings.HasPrefix(resp.Header().Get("Content-Type"), "application/json") {
		require.NoError(h.t, json.Unmarshal(resp.Body.Bytes(), &env))
	}
	return resp, env
}

func TestHealthEndpoints(t *testing.T) {
	h := newHarness(t, nil)

	resp, _ := h.do(http.MethodGet, "/health/live", "", "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "test", resp.Header().Get("X-ResellerHub-Env"))

	resp, _ = h.do(http.MethodGet, "/health/ready", "", "")
	require.Equal(t, http.StatusOK, resp.Code)

	down := newHarness(t, errors.New("connection refused"))
	resp, env := down.do(http.MethodGet, "/health/ready", "", "")
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	require.Equal(t, "DEPENDENCY_ERROR", env.Error.Code)
}

func TestMetricsEndpointExposesHTTPCounters(t *testing.T) {
	h := newHarness(t, nil)
	h.do(http.MethodGet, "/health/live", "", "")

	resp, _ := h.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "http_requests_total")
}

func TestResellerLevelsArePublic(t *testing.T) {
	h := newHarness(t, nil)
	dbtest.SeedLevels(t, h.conn)

	resp, env := h.do(http.MethodGet, "/api/v1/reseller-levels", "", "")
	require.Equal(t, http.StatusOK, resp.Code)

	var levels []struct {
		Level int    `json:"level"`
		Name  string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &levels))
	require.Len(t, levels, 10)
	require.Equal(t, "Bronze", levels[0].Name)
}

func TestRoleGuards(t *testing.T) {
	h := newHarness(t, nil)
	buyer := dbtest.CreateAccount(t, h.conn, "buyer", nil, nil)
	token := h.token(buyer.ID, enums.AccountRoleBuyer)

	resp, _ := h.do(http.MethodGet, "/api/v1/cart", "", "")
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	resp, env := h.do(http.MethodPost, "/api/v1/admin/commissions/pay", token, `{"commission_ids":["`+uuid.NewString()+`"]}`)
	require.Equal(t, http.StatusForbidden, resp.Code)
	require.Equal(t, "FORBIDDEN", env.Error.Code)

	resp, _ = h.do(http.MethodPost, "/api/v1/pos/sessions", token, `{"opening_cash":"0"}`)
	require.Equal(t, http.StatusForbidden, resp.Code)
}

func TestCheckoutPaymentAndCancellationFlow(t *testing.T) {
	h := newHarness(t, nil)
	levels := dbtest.SeedLevels(t, h.conn)
	tier3 := levels[3]
	sponsor := dbtest.CreateAccount(t, h.conn, "sponsor", &tier3, nil)
	buyer := dbtest.CreateAccount(t, h.conn, "buyer", nil, &sponsor)
	cashier := dbtest.CreateAccount(t, h.conn, "cashier", nil, nil)
	admin := dbtest.CreateAccount(t, h.conn, "admin", nil, nil)
	product := dbtest.CreateProduct(t, h.conn, "SKU-100", 100000, 5)

	buyerToken := h.token(buyer.ID, enums.AccountRoleBuyer)

	resp, env := h.do(http.MethodPost, "/api/v1/cart", buyerToken, `{"product_id":"`+product.ID.String()+`","quantity":2}`)
	require.Equal(t, http.StatusCreated, resp.Code, string(env.Data))

	resp, env = h.do(http.MethodPost, "/api/v1/checkout", buyerToken, `{"payment_method":"bank_transfer"}`)
	require.Equal(t, http.StatusCreated, resp.Code)
	var order struct {
		ID            uuid.UUID       `json:"id"`
		Status        string          `json:"status"`
		PaymentStatus string          `json:"payment_status"`
		TotalAmount   decimal.Decimal `json:"total_amount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &order))
	require.Equal(t, "pending", order.Status)
	require.True(t, order.TotalAmount.Equal(decimal.NewFromInt(200000)))

	var stored models.Product
	require.NoError(t, h.conn.First(&stored, "id = ?", product.ID).Error)
	require.Equal(t, 3, stored.StockQuantity)

	// buyers cannot confirm their own payments
	resp, _ = h.do(http.MethodPost, "/api/v1/orders/"+order.ID.String()+"/payment", buyerToken, `{"payment_method":"bank_transfer"}`)
	require.Equal(t, http.StatusForbidden, resp.Code)

	cashierToken := h.token(cashier.ID, enums.AccountRoleCashier)
	resp, env = h.do(http.MethodPost, "/api/v1/orders/"+order.ID.String()+"/payment", cashierToken, `{"payment_method":"bank_transfer","reference":"TRX-1"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	require.JSONEq(t, `{"processed":true}`, string(env.Data))

	var commission models.Commission
	require.NoError(t, h.conn.First(&commission, "order_id = ?", order.ID).Error)
	require.Equal(t, sponsor.ID, commission.ResellerID)
	require.True(t, commission.CommissionAmount.Equal(decimal.NewFromInt(8000)), commission.CommissionAmount.String())

	sponsorToken := h.token(sponsor.ID, enums.AccountRoleReseller)
	resp, env = h.do(http.MethodGet, "/api/v1/commissions/stats", sponsorToken, "")
	require.Equal(t, http.StatusOK, resp.Code)
	var stats struct {
		TotalPending decimal.Decimal `json:"total_pending"`
		TotalCount   int64           `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	require.True(t, stats.TotalPending.Equal(decimal.NewFromInt(8000)))
	require.EqualValues(t, 1, stats.TotalCount)

	adminToken := h.token(admin.ID, enums.AccountRoleAdmin)
	resp, env = h.do(http.MethodPost, "/api/v1/admin/orders/"+order.ID.String()+"/status", adminToken, `{"status":"cancelled"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, string(env.Data), `"status":"cancelled"`)

	require.NoError(t, h.conn.First(&stored, "id = ?", product.ID).Error)
	require.Equal(t, 5, stored.StockQuantity)
	require.NoError(t, h.conn.First(&commission, "id = ?", commission.ID).Error)
	require.Equal(t, enums.CommissionStatusCancelled, commission.Status)

	resp, env = h.do(http.MethodPost, "/api/v1/admin/orders/"+order.ID.String()+"/status", adminToken, `{"status":"shipped"}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	require.Equal(t, "STATE_CONFLICT", env.Error.Code)
}

func TestOrdersAreHiddenFromOtherBuyers(t *testing.T) {
	h := newHarness(t, nil)
	owner := dbtest.CreateAccount(t, h.conn, "owner", nil, nil)
	other := dbtest.CreateAccount(t, h.conn, "other", nil, nil)
	product := dbtest.CreateProduct(t, h.conn, "SKU-7", 5000, 3)

	ownerToken := h.token(owner.ID, enums.AccountRoleBuyer)
	resp, _ := h.do(http.MethodPost, "/api/v1/cart", ownerToken, `{"product_id":"`+product.ID.String()+`","quantity":1}`)
	require.Equal(t, http.StatusCreated, resp.Code)
	resp, env := h.do(http.MethodPost, "/api/v1/checkout", ownerToken, `{"payment_method":"cash"}`)
	require.Equal(t, http.StatusCreated, resp.Code)

	var order struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &order))

	resp, _ = h.do(http.MethodGet, "/api/v1/orders/"+order.ID.String(), ownerToken, "")
	require.Equal(t, http.StatusOK, resp.Code)

	resp, _ = h.do(http.MethodGet, "/api/v1/orders/"+order.ID.String(), h.token(other.ID, enums.AccountRoleBuyer), "")
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestEmptyCartCheckoutIsRejected(t *testing.T) {
	h := newHarness(t, nil)
	buyer := dbtest.CreateAccount(t, h.conn, "buyer", nil, nil)

	resp, env := h.do(http.MethodPost, "/api/v1/checkout", h.token(buyer.ID, enums.AccountRoleBuyer), `{"payment_method":"cash"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestPosSessionAndOrderFlow(t *testing.T) {
	h := newHarness(t, nil)
	cashier := dbtest.CreateAccount(t, h.conn, "cashier", nil, nil)
	customer := dbtest.CreateAccount(t, h.conn, "walkin", nil, nil)
	product := dbtest.CreateProduct(t, h.conn, "SKU-POS", 20000, 10)
	token := h.token(cashier.ID, enums.AccountRoleCashier)

	resp, env := h.do(http.MethodPost, "/api/v1/pos/sessions", token, `{"opening_cash":"50000"}`)
	require.Equal(t, http.StatusCreated, resp.Code)
	var session struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))

	resp, _ = h.do(http.MethodPost, "/api/v1/pos/sessions", token, `{"opening_cash":"0"}`)
	require.Equal(t, http.StatusConflict, resp.Code)

	body := fmt.Sprintf(`{"customer_id":"%s","pos_session_id":"%s","payment_method":"cash","items":[{"product_id":"%s","quantity":3,"unit_price":"18000"}]}`,
		customer.ID, session.ID, product.ID)
	resp, env = h.do(http.MethodPost, "/api/v1/pos/orders", token, body)
	require.Equal(t, http.StatusCreated, resp.Code)
	require.Contains(t, string(env.Data), `"payment_status":"paid"`)

	resp, env = h.do(http.MethodGet, "/api/v1/pos/sessions/current", token, "")
	require.Equal(t, http.StatusOK, resp.Code)
	var current struct {
		TotalSales        decimal.Decimal `json:"total_sales"`
		TotalTransactions int             `json:"total_transactions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &current))
	require.True(t, current.TotalSales.Equal(decimal.NewFromInt(54000)), current.TotalSales.String())
	require.Equal(t, 1, current.TotalTransactions)

	resp, env = h.do(http.MethodPost, "/api/v1/pos/sessions/"+session.ID.String()+"/close", token, `{"closing_cash":"104000","notes":" end of shift "}`)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, string(env.Data), `"status":"closed"`)
	require.Contains(t, string(env.Data), `"notes":"end of shift"`)
}
