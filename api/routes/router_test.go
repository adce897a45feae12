package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorline/backoffice/internal/orders"
	"github.com/floorline/backoffice/internal/pricing"
	"github.com/floorline/backoffice/internal/quotes"
	"github.com/floorline/backoffice/pkg/config"
	"github.com/floorline/backoffice/pkg/db/models"
	pkgerrors "github.com/floorline/backoffice/pkg/errors"
	"github.com/floorline/backoffice/pkg/logger"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type stubOrdersService struct {
	order *models.MaterialOrder
}

func (s stubOrdersService) CreateOrder(ctx context.Context, input orders.CreateOrderInput) (*models.MaterialOrder, error) {
	return nil, errors.New("not implemented")
}

func (s stubOrdersService) ReceiveOrder(ctx context.Context, input orders.ReceiveOrderInput) (*orders.ReceiveResult, error) {
	return nil, errors.New("not implemented")
}

func (s stubOrdersService) ReportDamage(ctx context.Context, input orders.ReportDamageInput) (*orders.DamageResult, error) {
	return nil, errors.New("not implemented")
}

func (s stubOrdersService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	return nil
}

func (s stubOrdersService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.MaterialOrder, error) {
	if s.order == nil || s.order.ID != orderID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.order, nil
}

func (s stubOrdersService) ListProjectOrders(ctx context.Context, params orders.ListParams) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (s stubOrdersService) FindOverdue(ctx context.Context, asOf time.Time, limit int) ([]models.MaterialOrder, error) {
	return nil, nil
}

func (s stubOrdersService) FlagOverdue(ctx context.Context, asOf time.Time, limit int) (int, error) {
	return 0, nil
}

type stubQuotesService struct{}

func (stubQuotesService) Policy(ctx context.Context, input quotes.PolicyInput) (pricing.Policy, error) {
	return pricing.Policy{}, nil
}

func (stubQuotesService) QuoteLine(ctx context.Context, input quotes.LineInput) (*quotes.LineQuote, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
	}
}

func newTestRouter(deps Dependencies) http.Handler {
	if deps.Config == nil {
		deps.Config = testConfig()
	}
	deps.Logger = logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	if deps.Orders == nil {
		deps.Orders = stubOrdersService{}
	}
	if deps.Quotes == nil {
		deps.Quotes = stubQuotesService{}
	}
	return NewRouter(deps)
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(Dependencies{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "test", resp.Header().Get("X-Floorline-Env"))
}

func TestHealthReadyReportsFailingDependency(t *testing.T) {
	router := newTestRouter(Dependencies{
		DB:    stubPinger{},
		Redis: stubPinger{err: errors.New("connection refused")},
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestHealthReadySkipsUnconfiguredDependencies(t *testing.T) {
	router := newTestRouter(Dependencies{DB: stubPinger{}})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	data := decodeBody(t, resp)["data"].(map[string]any)
	assert.Equal(t, "ready", data["status"])
}

func TestPingEchoesStaffID(t *testing.T) {
	router := newTestRouter(Dependencies{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("X-Staff-Id", "staff-42")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("X-Request-Id"))
	data := decodeBody(t, resp)["data"].(map[string]any)
	assert.Equal(t, "staff-42", data["staff_id"])
}

func TestOrderDetailRoutes(t *testing.T) {
	order := &models.MaterialOrder{
		ID:        uuid.New(),
		ProjectID: uuid.New(),
		OrderDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	router := newTestRouter(Dependencies{Orders: stubOrdersService{order: order}})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+order.ID.String(), nil))
	require.Equal(t, http.StatusOK, resp.Code)
	data := decodeBody(t, resp)["data"].(map[string]any)
	assert.Equal(t, order.ID.String(), data["id"])
	assert.Equal(t, "2026-03-02", data["order_date"])

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/orders/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestPricingCalculateRoute(t *testing.T) {
	router := newTestRouter(Dependencies{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/calculate",
		strings.NewReader(`{"cost":"10","percentage":"50","method":"margin"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	data := decodeBody(t, resp)["data"].(map[string]any)
	assert.Equal(t, "20", data["price"])
	assert.Equal(t, true, data["priceable"])
}

func TestLineQuoteRouteMapsNotFound(t *testing.T) {
	router := newTestRouter(Dependencies{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/line-quote",
		strings.NewReader(`{"purchaser_type":"customer","variant_id":"`+uuid.NewString()+`"}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusNotFound, resp.Code)
	errBody := decodeBody(t, resp)["error"].(map[string]any)
	assert.Equal(t, string(pkgerrors.CodeNotFound), errBody["code"])
}

func TestMetricsRouteUsesInjectedHandler(t *testing.T) {
	router := newTestRouter(Dependencies{
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		}),
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "# metrics", resp.Body.String())
}
