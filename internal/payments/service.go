// Package payments owns the settlement transition: the single place where an
// order flips to paid and stock is decremented. Both the Razorpay webhook and
// direct checkout converge here, so the transition runs at most once per order.
package payments

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/arjunmehta/desikart-backend/internal/catalog"
	"github.com/arjunmehta/desikart-backend/internal/orders"
	"github.com/arjunmehta/desikart-backend/pkg/db/models"
	"github.com/arjunmehta/desikart-backend/pkg/enums"
	pkgerrors "github.com/arjunmehta/desikart-backend/pkg/errors"
	"github.com/arjunmehta/desikart-backend/pkg/logger"
	"github.com/arjunmehta/desikart-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type signatureVerifier interface {
	VerifySignature(orderID, paymentID, signature string) bool
}

// InvoiceGenerator renders and stores the invoice for a settled order.
type InvoiceGenerator interface {
	Generate(ctx context.Context, orderID string) error
}

// ConfirmInput carries the gateway callback fields.
type ConfirmInput struct {
	RazorpayOrderID   string
	RazorpayPaymentID string
	RazorpaySignature string
}

// Service applies payment settlements.
type Service interface {
	ConfirmGateway(ctx context.Context, input ConfirmInput) (*models.Order, error)
	SettleDirect(ctx context.Context, orderID string) (*models.Order, error)
}

type service struct {
	orderRepo   orders.Repository
	catalogRepo catalog.Repository
	tx          txRunner
	verifier    signatureVerifier
	invoices    InvoiceGenerator
	metrics     *metrics.CheckoutMetrics
	logger      *logger.Logger
}

// NewService builds a payments service with the required dependencies.
func NewService(orderRepo orders.Repository, catalogRepo catalog.Repository, tx txRunner, verifier signatureVerifier, invoices InvoiceGenerator, m *metrics.CheckoutMetrics, logg *logger.Logger) (Service, error) {
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if verifier == nil {
		return nil, fmt.Errorf("signature verifier required")
	}
	if invoices == nil {
		return nil, fmt.Errorf("invoice generator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
		tx:          tx,
		verifier:    verifier,
		invoices:    invoices,
		metrics:     m,
		logger:      logg,
	}, nil
}

// ConfirmGateway settles an order from a verified Razorpay callback. The
// signature is checked before any database work; an order already settled is
// left untouched and returned as-is.
func (s *service) ConfirmGateway(ctx context.Context, input ConfirmInput) (*models.Order, error) {
	if input.RazorpayOrderID == "" || input.RazorpayPaymentID == "" || input.RazorpaySignature == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment confirmation fields required")
	}
	if !s.verifier.VerifySignature(input.RazorpayOrderID, input.RazorpayPaymentID, input.RazorpaySignature) {
		return nil, pkgerrors.New(pkgerrors.CodePaymentVerification, "payment signature mismatch")
	}

	var (
		settled  *models.Order
		replayed bool
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)

		order, err := orderRepo.FindByRazorpayOrderIDForUpdate(ctx, input.RazorpayOrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found for gateway reference")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if order.PaymentStatus {
			settled = order
			replayed = true
			return nil
		}

		updates := map[string]any{
			"razorpay_payment_id": input.RazorpayPaymentID,
			"razorpay_signature":  input.RazorpaySignature,
		}
		if err := s.settle(ctx, tx, order, updates); err != nil {
			return err
		}
		order.RazorpayPaymentID = &input.RazorpayPaymentID
		order.RazorpaySignature = &input.RazorpaySignature
		settled = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logger.WithOrderID(ctx, settled.OrderID)
	if replayed {
		s.metrics.IncPaymentReplayed()
		s.logger.Warn(ctx, "payment confirmation replayed")
		return settled, nil
	}

	s.metrics.IncPaymentConfirmed()
	s.logger.Info(ctx, "payment confirmed")
	s.generateInvoice(ctx, settled.OrderID)
	return settled, nil
}

// SettleDirect settles an order placed without a gateway. It shares the
// idempotency gate with ConfirmGateway so a retry can never decrement twice.
func (s *service) SettleDirect(ctx context.Context, orderID string) (*models.Order, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var (
		settled  *models.Order
		replayed bool
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)

		order, err := orderRepo.FindByOrderIDForUpdate(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if order.PaymentStatus {
			settled = order
			replayed = true
			return nil
		}

		if err := s.settle(ctx, tx, order, nil); err != nil {
			return err
		}
		settled = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logger.WithOrderID(ctx, settled.OrderID)
	if replayed {
		s.metrics.IncPaymentReplayed()
		return settled, nil
	}

	s.metrics.IncPaymentConfirmed()
	s.logger.Info(ctx, "direct payment settled")
	s.generateInvoice(ctx, settled.OrderID)
	return settled, nil
}

// settle marks the order paid and decrements stock for every frozen line.
// Any shortfall rolls the whole transaction back.
func (s *service) settle(ctx context.Context, tx *gorm.DB, order *models.Order, extraUpdates map[string]any) error {
	orderRepo := s.orderRepo.WithTx(tx)
	catalogRepo := s.catalogRepo.WithTx(tx)

	for _, item := range order.Items {
		affected, err := catalogRepo.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeOutOfStock, "stock exhausted before settlement").
				WithDetails(map[string]any{"product_id": item.ProductID, "requested": item.Quantity})
		}
	}

	updates := map[string]any{
		"payment_status": true,
		"status":         enums.OrderStatusProcessing,
	}
	for k, v := range extraUpdates {
		updates[k] = v
	}
	if err := orderRepo.Update(ctx, order.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
	}

	order.PaymentStatus = true
	order.Status = enums.OrderStatusProcessing
	return nil
}

// generateInvoice runs after the settlement commits. A failure is logged and
// counted but never unsettles the order; the invoice endpoint regenerates on
// demand.
func (s *service) generateInvoice(ctx context.Context, orderID string) {
	if err := s.invoices.Generate(ctx, orderID); err != nil {
		s.metrics.IncInvoiceFailure()
		s.logger.Error(ctx, "invoice generation failed", err)
	}
}
