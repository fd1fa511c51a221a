package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	cartsvc "github.com/arjunmehta/desikart-backend/internal/cart"
	"github.com/arjunmehta/desikart-backend/internal/catalog"
	checkoutsvc "github.com/arjunmehta/desikart-backend/internal/checkout"
	"github.com/arjunmehta/desikart-backend/internal/pricing"
	"github.com/arjunmehta/desikart-backend/pkg/config"
	"github.com/arjunmehta/desikart-backend/pkg/db/models"
	"github.com/arjunmehta/desikart-backend/pkg/logger"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubSessionManager struct{}

func (stubSessionManager) Mint(context.Context) (string, error)   { return "router-test-token", nil }
func (stubSessionManager) Validate(context.Context, string) error { return nil }

type stubCatalogService struct {
	views []catalog.ProductView
}

func (s *stubCatalogService) GetProduct(ctx context.Context, ref string) (*catalog.ProductView, error) {
	if len(s.views) == 0 {
		return nil, nil
	}
	return &s.views[0], nil
}

func (s *stubCatalogService) ListProducts(ctx context.Context, filter catalog.ProductFilter) ([]catalog.ProductView, error) {
	return s.views, nil
}

func (s *stubCatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return nil, nil
}

func (s *stubCatalogService) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return &models.Category{Slug: slug}, nil
}

type stubRouterCartService struct{}

func (stubRouterCartService) GetCart(ctx context.Context, owner cartsvc.Owner) (*cartsvc.View, error) {
	return &cartsvc.View{Cart: &models.Cart{}, Quote: pricing.Quote{}}, nil
}

func (stubRouterCartService) AddItem(ctx context.Context, owner cartsvc.Owner, productID uuid.UUID, quantity int) (*cartsvc.View, error) {
	return &cartsvc.View{Cart: &models.Cart{}, Quote: pricing.Quote{}}, nil
}

func (stubRouterCartService) UpdateQuantity(ctx context.Context, owner cartsvc.Owner, productID uuid.UUID, quantity int) (*cartsvc.View, error) {
	return &cartsvc.View{Cart: &models.Cart{}, Quote: pricing.Quote{}}, nil
}

func (stubRouterCartService) RemoveItem(ctx context.Context, owner cartsvc.Owner, productID uuid.UUID) (*cartsvc.View, error) {
	return &cartsvc.View{Cart: &models.Cart{}, Quote: pricing.Quote{}}, nil
}

func (stubRouterCartService) Clear(ctx context.Context, owner cartsvc.Owner) error { return nil }

type stubRouterCheckoutService struct{}

func (stubRouterCheckoutService) PlaceWithGateway(ctx context.Context, owner cartsvc.Owner, details checkoutsvc.CustomerDetails) (*checkoutsvc.GatewayCheckout, error) {
	return nil, nil
}

func (stubRouterCheckoutService) PlaceDirect(ctx context.Context, owner cartsvc.Owner, details checkoutsvc.CustomerDetails) (*models.Order, error) {
	return nil, nil
}

func (stubRouterCheckoutService) ReopenGateway(ctx context.Context, owner cartsvc.Owner, orderID string) (*checkoutsvc.GatewayCheckout, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Env: "test"},
		Session: config.SessionConfig{TTLHours: 1, CookieName: "desikart_session"},
	}
}

func testRouter() http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewRouter(
		testConfig(),
		logg,
		stubPinger{},
		stubPinger{},
		stubSessionManager{},
		&stubCatalogService{},
		stubRouterCartService{},
		stubRouterCheckoutService{},
		nil,
		nil,
		nil,
	)
}

func TestRouterHealthLive(t *testing.T) {
	resp := httptest.NewRecorder()
	testRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("X-DesiKart-Env"); got != "test" {
		t.Fatalf("unexpected env header %q", got)
	}
}

func TestRouterHealthReady(t *testing.T) {
	resp := httptest.NewRecorder()
	testRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRouterProductListReachable(t *testing.T) {
	resp := httptest.NewRecorder()
	testRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestRouterCartMintsGuestSession(t *testing.T) {
	resp := httptest.NewRecorder()
	testRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	cookies := resp.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != "router-test-token" {
		t.Fatalf("expected minted session cookie, got %v", cookies)
	}
}

func TestRouterRequestIDHeader(t *testing.T) {
	resp := httptest.NewRecorder()
	testRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header on every response")
	}
}

func TestRouterMetricsExposed(t *testing.T) {
	resp := httptest.NewRecorder()
	testRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
