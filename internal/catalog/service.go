package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arjunmehta/desikart-backend/internal/pricing"
	"github.com/arjunmehta/desikart-backend/pkg/db/models"
	pkgerrors "github.com/arjunmehta/desikart-backend/pkg/errors"
	"github.com/arjunmehta/desikart-backend/pkg/logger"
)

// Service defines storefront catalog reads.
type Service interface {
	GetProduct(ctx context.Context, ref string) (*ProductView, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]ProductView, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
}

// ProductView is a product joined with its derived pricing fields.
type ProductView struct {
	Product            models.Product
	EffectivePrice     string
	DiscountPercentage int
	InStock            bool
}

type service struct {
	repo   Repository
	logger *logger.Logger
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logger: logg}, nil
}

// GetProduct resolves a product by UUID or slug.
func (s *service) GetProduct(ctx context.Context, ref string) (*ProductView, error) {
	if ref == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product reference required")
	}

	var (
		product *models.Product
		err     error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		product, err = s.repo.FindProductByID(ctx, id)
	} else {
		product, err = s.repo.FindProductBySlug(ctx, ref)
	}
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	view := buildView(product)
	return &view, nil
}

func (s *service) ListProducts(ctx context.Context, filter ProductFilter) ([]ProductView, error) {
	filter.ActiveOnly = true
	products, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	views := make([]ProductView, 0, len(products))
	for i := range products {
		views = append(views, buildView(&products[i]))
	}
	return views, nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

func (s *service) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category slug required")
	}
	category, err := s.repo.FindCategoryBySlug(ctx, slug)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return category, nil
}

func buildView(product *models.Product) ProductView {
	return ProductView{
		Product:            *product,
		EffectivePrice:     pricing.EffectivePrice(product).StringFixed(2),
		DiscountPercentage: pricing.DiscountPercentage(product),
		InStock:            product.Stock > 0,
	}
}
