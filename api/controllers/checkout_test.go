package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	cartsvc "github.com/arjunmehta/desikart-backend/internal/cart"
	checkoutsvc "github.com/arjunmehta/desikart-backend/internal/checkout"
	"github.com/arjunmehta/desikart-backend/pkg/db/models"
	"github.com/arjunmehta/desikart-backend/pkg/enums"
	pkgerrors "github.com/arjunmehta/desikart-backend/pkg/errors"
)

type stubCheckoutService struct {
	gateway     *checkoutsvc.GatewayCheckout
	order       *models.Order
	err         error
	lastDetails checkoutsvc.CustomerDetails
	lastOrderID string
}

func (s *stubCheckoutService) PlaceWithGateway(ctx context.Context, owner cartsvc.Owner, details checkoutsvc.CustomerDetails) (*checkoutsvc.GatewayCheckout, error) {
	s.lastDetails = details
	return s.gateway, s.err
}

func (s *stubCheckoutService) PlaceDirect(ctx context.Context, owner cartsvc.Owner, details checkoutsvc.CustomerDetails) (*models.Order, error) {
	s.lastDetails = details
	return s.order, s.err
}

func (s *stubCheckoutService) ReopenGateway(ctx context.Context, owner cartsvc.Owner, orderID string) (*checkoutsvc.GatewayCheckout, error) {
	s.lastOrderID = orderID
	return s.gateway, s.err
}

func settledOrder() *models.Order {
	return &models.Order{
		OrderID:       "ORDAB12CD34EF",
		Status:        enums.OrderStatusProcessing,
		PaymentMethod: enums.PaymentMethodDirect,
		PaymentStatus: true,
		Subtotal:      decimal.RequireFromString("200.00"),
		GSTAmount:     decimal.RequireFromString("36.00"),
		TotalAmount:   decimal.RequireFromString("236.00"),
	}
}

const validCheckoutBody = `{
	"full_name": "Asha Nair",
	"email": "asha@example.in",
	"phone": "9876543210",
	"address": "12 MG Road",
	"city": "Kochi",
	"state": "Kerala",
	"pincode": "682001"
}`

func TestCheckoutDirectCreatesSettledOrder(t *testing.T) {
	svc := &stubCheckoutService{order: settledOrder()}
	handler := CheckoutDirect(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/checkout/direct", validCheckoutBody))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}

	var envelope struct {
		Data checkoutResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Order.OrderID != "ORDAB12CD34EF" {
		t.Fatalf("unexpected order id %s", envelope.Data.Order.OrderID)
	}
	if !envelope.Data.Order.PaymentStatus {
		t.Fatalf("direct checkout must return a settled order")
	}
	if envelope.Data.Razorpay != nil {
		t.Fatalf("direct checkout must not expose gateway fields")
	}
	if svc.lastDetails.City != "Kochi" {
		t.Fatalf("customer details not forwarded: %+v", svc.lastDetails)
	}
}

func TestCheckoutReturnsGatewayFields(t *testing.T) {
	order := settledOrder()
	order.PaymentMethod = enums.PaymentMethodRazorpay
	order.PaymentStatus = false
	svc := &stubCheckoutService{gateway: &checkoutsvc.GatewayCheckout{
		Order:           order,
		RazorpayOrderID: "order_RZP123",
		RazorpayKeyID:   "rzp_test_key",
		AmountPaise:     23600,
		Currency:        "INR",
	}}
	handler := Checkout(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/checkout", validCheckoutBody))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}

	var envelope struct {
		Data checkoutResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Razorpay == nil {
		t.Fatalf("gateway fields missing from response")
	}
	if envelope.Data.Razorpay.OrderID != "order_RZP123" || envelope.Data.Razorpay.AmountPaise != 23600 {
		t.Fatalf("unexpected gateway fields %+v", envelope.Data.Razorpay)
	}
}

func TestCheckoutReopenReturnsGatewayFields(t *testing.T) {
	order := settledOrder()
	order.PaymentMethod = enums.PaymentMethodRazorpay
	order.PaymentStatus = false
	svc := &stubCheckoutService{gateway: &checkoutsvc.GatewayCheckout{
		Order:           order,
		RazorpayOrderID: "order_RZP456",
		RazorpayKeyID:   "rzp_test_key",
		AmountPaise:     23600,
		Currency:        "INR",
	}}

	r := chi.NewRouter()
	r.Post("/orders/{orderId}/pay", CheckoutReopen(svc, nil))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, sessionRequest(http.MethodPost, "/orders/ORDAB12CD34EF/pay", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastOrderID != "ORDAB12CD34EF" {
		t.Fatalf("order id not forwarded: %q", svc.lastOrderID)
	}

	var envelope struct {
		Data checkoutResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Razorpay == nil || envelope.Data.Razorpay.OrderID != "order_RZP456" {
		t.Fatalf("unexpected gateway fields %+v", envelope.Data.Razorpay)
	}
}

func TestCheckoutReopenMapsAlreadyPaid(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "order already paid")}

	r := chi.NewRouter()
	r.Post("/orders/{orderId}/pay", CheckoutReopen(svc, nil))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, sessionRequest(http.MethodPost, "/orders/ORDAB12CD34EF/pay", ""))

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestCheckoutRejectsBadPincode(t *testing.T) {
	handler := Checkout(&stubCheckoutService{}, nil)

	body := `{
		"full_name": "Asha Nair",
		"email": "asha@example.in",
		"phone": "9876543210",
		"address": "12 MG Road",
		"city": "Kochi",
		"state": "Kerala",
		"pincode": "68200"
	}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/checkout", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutMapsEmptyCart(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")}
	handler := Checkout(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/checkout", validCheckoutBody))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
