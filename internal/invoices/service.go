// Package invoices renders GST invoices from frozen order lines and stores
// them as document artifacts.
package invoices

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/arjunmehta/desikart-backend/internal/cart"
	"github.com/arjunmehta/desikart-backend/internal/orders"
	"github.com/arjunmehta/desikart-backend/internal/pricing"
	"github.com/arjunmehta/desikart-backend/pkg/config"
	"github.com/arjunmehta/desikart-backend/pkg/db/models"
	pkgerrors "github.com/arjunmehta/desikart-backend/pkg/errors"
	"github.com/arjunmehta/desikart-backend/pkg/logger"
	s3store "github.com/arjunmehta/desikart-backend/pkg/storage/s3"
)

//go:embed template.html
var templateHTML string

const ContentType = "text/html; charset=utf-8"

var invoiceTemplate = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"add":   func(a, b int) int { return a + b },
	"money": func(d decimal.Decimal) string { return "₹" + d.StringFixed(2) },
	"rate":  func(d decimal.Decimal) string { return d.StringFixed(0) + "%" },
}).Parse(templateHTML))

// DocumentStore persists rendered invoices.
type DocumentStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// Service renders and serves invoices for settled orders.
type Service interface {
	Generate(ctx context.Context, orderID string) error
	GetDocument(ctx context.Context, owner cart.Owner, orderID string) ([]byte, error)
}

type service struct {
	orderRepo orders.Repository
	store     DocumentStore
	seller    config.InvoiceConfig
	logger    *logger.Logger
	now       func() time.Time
}

// NewService builds an invoice service with the required dependencies.
func NewService(orderRepo orders.Repository, store DocumentStore, seller config.InvoiceConfig, logg *logger.Logger) (Service, error) {
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("document store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		orderRepo: orderRepo,
		store:     store,
		seller:    seller,
		logger:    logg,
		now:       time.Now,
	}, nil
}

// ObjectKey returns where an order's invoice lives in the document store.
func ObjectKey(orderID string) string {
	return fmt.Sprintf("invoices/invoice_%s.html", orderID)
}

// Generate renders the invoice strictly from the order's frozen lines and
// uploads it. Regenerating overwrites the stored document, so retries after a
// partial failure are safe.
func (s *service) Generate(ctx context.Context, orderID string) error {
	if orderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.orderRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !order.PaymentStatus {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "invoice requires a settled order")
	}

	document, err := s.render(order)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render invoice")
	}

	key := ObjectKey(order.OrderID)
	if err := s.store.Put(ctx, key, document, ContentType); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store invoice")
	}

	if err := s.orderRepo.Update(ctx, order.ID, map[string]any{
		"invoice_generated":  true,
		"invoice_object_key": key,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark invoice generated")
	}

	ctx = s.logger.WithOrderID(ctx, order.OrderID)
	s.logger.Info(ctx, "invoice generated")
	return nil
}

// GetDocument returns the stored invoice, generating it first when the
// settlement-time attempt failed or never ran.
func (s *service) GetDocument(ctx context.Context, owner cart.Owner, orderID string) ([]byte, error) {
	if !owner.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order owner required")
	}

	order, err := s.orderRepo.FindByOrderIDForOwner(ctx, orderID, owner)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if !order.InvoiceGenerated {
		if err := s.Generate(ctx, order.OrderID); err != nil {
			return nil, err
		}
	}

	data, err := s.store.Get(ctx, ObjectKey(order.OrderID))
	if err != nil {
		// The flag says an artifact exists but the bucket disagrees (lost or
		// deleted object). Regenerate rather than fail the request.
		if !errors.Is(err, s3store.ErrObjectNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch invoice document")
		}
		s.logger.Warn(s.logger.WithOrderID(ctx, order.OrderID), "stored invoice missing, regenerating")
		if err := s.Generate(ctx, order.OrderID); err != nil {
			return nil, err
		}
		data, err = s.store.Get(ctx, ObjectKey(order.OrderID))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch invoice document")
		}
	}
	return data, nil
}

type templateData struct {
	Order    *models.Order
	Seller   config.InvoiceConfig
	Lines    []pricing.Line
	Quote    pricing.Quote
	IssuedAt time.Time
}

func (s *service) render(order *models.Order) ([]byte, error) {
	quote := pricing.QuoteOrderItems(order.Items)

	var buf bytes.Buffer
	err := invoiceTemplate.Execute(&buf, templateData{
		Order:    order,
		Seller:   s.seller,
		Lines:    quote.Lines,
		Quote:    quote,
		IssuedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
