package orders

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/arjunmehta/desikart-backend/internal/cart"
	"github.com/arjunmehta/desikart-backend/pkg/db/models"
	pkgerrors "github.com/arjunmehta/desikart-backend/pkg/errors"
	"github.com/arjunmehta/desikart-backend/pkg/logger"
)

// Service exposes order history reads for storefront owners.
type Service interface {
	GetOrder(ctx context.Context, owner cart.Owner, orderID string) (*models.Order, error)
	ListOrders(ctx context.Context, owner cart.Owner) ([]models.Order, error)
}

type service struct {
	repo   Repository
	logger *logger.Logger
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logger: logg}, nil
}

// GetOrder loads a single order, scoped to its owner so one shopper can never
// read another's order.
func (s *service) GetOrder(ctx context.Context, owner cart.Owner, orderID string) (*models.Order, error) {
	if !owner.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order owner required")
	}
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindByOrderIDForOwner(ctx, orderID, owner)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, owner cart.Owner) ([]models.Order, error) {
	if !owner.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order owner required")
	}
	orders, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}
