package checkout

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/arjunmehta/desikart-backend/internal/cart"
	"github.com/arjunmehta/desikart-backend/internal/orders"
	"github.com/arjunmehta/desikart-backend/internal/pricing"
	"github.com/arjunmehta/desikart-backend/pkg/db/models"
	"github.com/arjunmehta/desikart-backend/pkg/enums"
	pkgerrors "github.com/arjunmehta/desikart-backend/pkg/errors"
	"github.com/arjunmehta/desikart-backend/pkg/logger"
	"github.com/arjunmehta/desikart-backend/pkg/metrics"
	"github.com/arjunmehta/desikart-backend/pkg/razorpay"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Settler applies the idempotent payment settlement transition. The payments
// service provides it; direct checkouts settle immediately through it.
type Settler interface {
	SettleDirect(ctx context.Context, orderID string) (*models.Order, error)
}

type gatewayClient interface {
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error)
	KeyID() string
}

// CustomerDetails is the shipping and billing snapshot frozen onto the order.
type CustomerDetails struct {
	FullName string
	Email    string
	Phone    string
	Address  string
	City     string
	State    string
	Pincode  string
}

// GatewayCheckout is returned when a Razorpay order was opened; the client
// completes payment with these fields and the webhook settles the order.
type GatewayCheckout struct {
	Order           *models.Order
	RazorpayOrderID string
	RazorpayKeyID   string
	AmountPaise     int64
	Currency        string
}

// Service converts carts into orders.
type Service interface {
	PlaceWithGateway(ctx context.Context, owner cart.Owner, details CustomerDetails) (*GatewayCheckout, error)
	PlaceDirect(ctx context.Context, owner cart.Owner, details CustomerDetails) (*models.Order, error)
	ReopenGateway(ctx context.Context, owner cart.Owner, orderID string) (*GatewayCheckout, error)
}

type service struct {
	cartRepo  cart.Repository
	orderRepo orders.Repository
	tx        txRunner
	gateway   gatewayClient
	settler   Settler
	metrics   *metrics.CheckoutMetrics
	logger    *logger.Logger
}

// NewService builds a checkout service with the required dependencies.
func NewService(cartRepo cart.Repository, orderRepo orders.Repository, tx txRunner, gateway gatewayClient, settler Settler, m *metrics.CheckoutMetrics, logg *logger.Logger) (Service, error) {
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if settler == nil {
		return nil, fmt.Errorf("payment settler required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
		tx:        tx,
		gateway:   gateway,
		settler:   settler,
		metrics:   m,
		logger:    logg,
	}, nil
}

// PlaceWithGateway freezes the cart into a pending order and opens a Razorpay
// order for it. Stock is validated here but only decremented at settlement.
func (s *service) PlaceWithGateway(ctx context.Context, owner cart.Owner, details CustomerDetails) (*GatewayCheckout, error) {
	order, err := s.place(ctx, owner, details, enums.PaymentMethodRazorpay)
	if err != nil {
		return nil, err
	}

	amountPaise := order.TotalAmount.Mul(decimal.NewFromInt(100)).IntPart()
	gatewayOrder, err := s.gateway.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   amountPaise,
		Currency: "INR",
		Receipt:  order.OrderID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Update(ctx, order.ID, map[string]any{
		"razorpay_order_id": gatewayOrder.ID,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store gateway order id")
	}
	order.RazorpayOrderID = &gatewayOrder.ID

	s.metrics.IncOrderPlaced(string(enums.PaymentMethodRazorpay))
	ctx = s.logger.WithOrderID(ctx, order.OrderID)
	s.logger.Info(ctx, "gateway checkout opened")

	return &GatewayCheckout{
		Order:           order,
		RazorpayOrderID: gatewayOrder.ID,
		RazorpayKeyID:   s.gateway.KeyID(),
		AmountPaise:     amountPaise,
		Currency:        "INR",
	}, nil
}

// ReopenGateway returns checkout fields for an unpaid gateway order. The cart
// is cleared when the order is created, so a failed Razorpay call would
// otherwise strand the shopper with a pending order and no way to pay it. An
// existing gateway order is reused; one is opened only when the first attempt
// never got that far.
func (s *service) ReopenGateway(ctx context.Context, owner cart.Owner, orderID string) (*GatewayCheckout, error) {
	if !owner.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout owner required")
	}

	order, err := s.orderRepo.FindByOrderIDForOwner(ctx, orderID, owner)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.PaymentMethod != enums.PaymentMethodRazorpay {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order does not use the payment gateway")
	}
	if order.PaymentStatus {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already paid")
	}

	amountPaise := order.TotalAmount.Mul(decimal.NewFromInt(100)).IntPart()

	if order.RazorpayOrderID == nil || *order.RazorpayOrderID == "" {
		gatewayOrder, err := s.gateway.CreateOrder(ctx, razorpay.OrderRequest{
			Amount:   amountPaise,
			Currency: "INR",
			Receipt:  order.OrderID,
		})
		if err != nil {
			return nil, err
		}
		if err := s.orderRepo.Update(ctx, order.ID, map[string]any{
			"razorpay_order_id": gatewayOrder.ID,
		}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store gateway order id")
		}
		order.RazorpayOrderID = &gatewayOrder.ID
	}

	ctx = s.logger.WithOrderID(ctx, order.OrderID)
	s.logger.Info(ctx, "gateway checkout reopened")

	return &GatewayCheckout{
		Order:           order,
		RazorpayOrderID: *order.RazorpayOrderID,
		RazorpayKeyID:   s.gateway.KeyID(),
		AmountPaise:     amountPaise,
		Currency:        "INR",
	}, nil
}

// PlaceDirect freezes the cart into an order and settles it immediately. The
// settlement runs through the same transition the gateway webhook uses, so
// stock is decremented exactly once either way.
func (s *service) PlaceDirect(ctx context.Context, owner cart.Owner, details CustomerDetails) (*models.Order, error) {
	order, err := s.place(ctx, owner, details, enums.PaymentMethodDirect)
	if err != nil {
		return nil, err
	}

	settled, err := s.settler.SettleDirect(ctx, order.OrderID)
	if err != nil {
		return nil, err
	}

	s.metrics.IncOrderPlaced(string(enums.PaymentMethodDirect))
	ctx = s.logger.WithOrderID(ctx, order.OrderID)
	s.logger.Info(ctx, "direct checkout settled")
	return settled, nil
}

// place runs the shared cart-to-order transaction: validate, price, freeze,
// clear. Stock is checked against current levels but left untouched.
func (s *service) place(ctx context.Context, owner cart.Owner, details CustomerDetails, method enums.PaymentMethod) (*models.Order, error) {
	if !owner.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout owner required")
	}
	if err := validateDetails(details); err != nil {
		return nil, err
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		shopperCart, err := cartRepo.FindByOwner(ctx, owner)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(shopperCart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		for _, item := range shopperCart.Items {
			if !item.Product.IsActive {
				return pkgerrors.New(pkgerrors.CodeValidation, "product no longer available").
					WithDetails(map[string]any{"product_id": item.ProductID})
			}
			if item.Quantity > item.Product.Stock {
				return pkgerrors.New(pkgerrors.CodeOutOfStock, "requested quantity exceeds stock").
					WithDetails(map[string]any{"product_id": item.ProductID, "available": item.Product.Stock})
			}
		}

		quote := pricing.QuoteCartItems(shopperCart.Items)

		orderID, err := newOrderID()
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order id")
		}

		order := &models.Order{
			OrderID:       orderID,
			UserID:        owner.UserID,
			SessionKey:    owner.SessionKey,
			FullName:      details.FullName,
			Email:         details.Email,
			Phone:         details.Phone,
			Address:       details.Address,
			City:          details.City,
			State:         details.State,
			Pincode:       details.Pincode,
			Subtotal:      quote.Subtotal,
			GSTAmount:     quote.GSTAmount,
			TotalAmount:   quote.Total,
			PaymentMethod: method,
			Status:        enums.OrderStatusPending,
			Items:         freezeItems(shopperCart.Items),
		}
		if _, err := orderRepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		if err := cartRepo.ClearItems(ctx, shopperCart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func freezeItems(items []models.CartItem) []models.OrderItem {
	frozen := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		product := item.Product
		frozen = append(frozen, models.OrderItem{
			ProductID: item.ProductID,
			Name:      product.Name,
			HSNCode:   product.HSNCode,
			GSTRate:   product.GSTRate,
			UnitPrice: pricing.EffectivePrice(&product),
			Quantity:  item.Quantity,
		})
	}
	return frozen
}

func validateDetails(details CustomerDetails) error {
	missing := []string{}
	for field, value := range map[string]string{
		"full_name": details.FullName,
		"email":     details.Email,
		"phone":     details.Phone,
		"address":   details.Address,
		"city":      details.City,
		"state":     details.State,
		"pincode":   details.Pincode,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer details incomplete").
			WithDetails(map[string]any{"missing": missing})
	}
	return nil
}

// newOrderID returns "ORD" plus ten uppercase hex characters.
func newOrderID() (string, error) {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "ORD" + strings.ToUpper(hex.EncodeToString(buf)), nil
}
