package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arjunmehta/desikart-backend/internal/catalog"
	"github.com/arjunmehta/desikart-backend/internal/pricing"
	"github.com/arjunmehta/desikart-backend/pkg/db/models"
	pkgerrors "github.com/arjunmehta/desikart-backend/pkg/errors"
	"github.com/arjunmehta/desikart-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines cart operations for a single owner.
type Service interface {
	GetCart(ctx context.Context, owner Owner) (*View, error)
	AddItem(ctx context.Context, owner Owner, productID uuid.UUID, quantity int) (*View, error)
	UpdateQuantity(ctx context.Context, owner Owner, productID uuid.UUID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, owner Owner, productID uuid.UUID) (*View, error)
	Clear(ctx context.Context, owner Owner) error
}

// View is the priced cart returned to callers.
type View struct {
	Cart  *models.Cart
	Quote pricing.Quote
}

// ItemCount sums item quantities across the cart.
func (v *View) ItemCount() int {
	count := 0
	for _, item := range v.Cart.Items {
		count += item.Quantity
	}
	return count
}

type service struct {
	repo    Repository
	catalog catalog.Repository
	tx      txRunner
	logger  *logger.Logger
}

// NewService builds a cart service with the required dependencies.
func NewService(repo Repository, catalogRepo catalog.Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, catalog: catalogRepo, tx: tx, logger: logg}, nil
}

func (s *service) GetCart(ctx context.Context, owner Owner) (*View, error) {
	if !owner.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner required")
	}
	cart, err := s.repo.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return buildViewFromCart(cart), nil
}

// AddItem adds a product to the cart or bumps its quantity. The combined
// quantity is validated against current stock under a product row lock.
func (s *service) AddItem(ctx context.Context, owner Owner, productID uuid.UUID, quantity int) (*View, error) {
	if !owner.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner required")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		catalogRepo := s.catalog.WithTx(tx)

		cart, err := repo.GetOrCreate(ctx, owner)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}

		product, err := catalogRepo.FindProductForUpdate(ctx, productID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if !product.IsActive {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}

		requested := quantity
		existing, err := repo.FindItem(ctx, cart.ID, productID)
		if err != nil && err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}
		if existing != nil {
			requested += existing.Quantity
		}
		if requested > product.Stock {
			return pkgerrors.New(pkgerrors.CodeOutOfStock, "requested quantity exceeds stock").
				WithDetails(map[string]any{"product_id": productID, "available": product.Stock})
		}

		if existing != nil {
			return repo.UpdateItemQuantity(ctx, existing.ID, requested)
		}
		return repo.CreateItem(ctx, &models.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, owner)
}

// UpdateQuantity sets the quantity of an existing line, clamping to stock.
func (s *service) UpdateQuantity(ctx context.Context, owner Owner, productID uuid.UUID, quantity int) (*View, error) {
	if !owner.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		catalogRepo := s.catalog.WithTx(tx)

		cart, err := repo.FindByOwner(ctx, owner)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}

		item, err := repo.FindItem(ctx, cart.ID, productID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}

		product, err := catalogRepo.FindProductForUpdate(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		target := quantity
		if target > product.Stock {
			target = product.Stock
		}
		if target < 1 {
			return pkgerrors.New(pkgerrors.CodeOutOfStock, "product out of stock").
				WithDetails(map[string]any{"product_id": productID})
		}
		return repo.UpdateItemQuantity(ctx, item.ID, target)
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, owner)
}

func (s *service) RemoveItem(ctx context.Context, owner Owner, productID uuid.UUID) (*View, error) {
	if !owner.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner required")
	}

	cart, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	item, err := s.repo.FindItem(ctx, cart.ID, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return s.GetCart(ctx, owner)
}

// Clear drops every line from the owner's cart. Clearing an absent cart is a
// no-op so callers can clear after checkout without caring about ordering.
func (s *service) Clear(ctx context.Context, owner Owner) error {
	if !owner.Valid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart owner required")
	}
	cart, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if err := s.repo.ClearItems(ctx, cart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func buildViewFromCart(cart *models.Cart) *View {
	return &View{Cart: cart, Quote: pricing.QuoteCartItems(cart.Items)}
}
