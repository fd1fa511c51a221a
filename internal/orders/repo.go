package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arjunmehta/desikart-backend/internal/cart"
	"github.com/arjunmehta/desikart-backend/pkg/db/models"
)

// Repository exposes order persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	FindByOrderIDForUpdate(ctx context.Context, orderID string) (*models.Order, error)
	FindByOrderIDForOwner(ctx context.Context, orderID string, owner cart.Owner) (*models.Order, error)
	FindByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (*models.Order, error)
	FindByRazorpayOrderIDForUpdate(ctx context.Context, razorpayOrderID string) (*models.Order, error)
	ListByOwner(ctx context.Context, owner cart.Owner) ([]models.Order, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create persists the order together with its frozen line items.
func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByOrderIDForUpdate locks the order row so concurrent settlements
// serialize. Callers must run inside WithTx.
func (r *repository) FindByOrderIDForUpdate(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := lockForUpdate(r.db.WithContext(ctx)).
		Preload("Items").
		Where("order_id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByOrderIDForOwner(ctx context.Context, orderID string, owner cart.Owner) (*models.Order, error) {
	query := r.db.WithContext(ctx).Preload("Items").Where("order_id = ?", orderID)
	if owner.UserID != nil {
		query = query.Where("user_id = ?", *owner.UserID)
	} else if owner.SessionKey != nil {
		query = query.Where("session_key = ?", *owner.SessionKey)
	}

	var order models.Order
	if err := query.First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("razorpay_order_id = ?", razorpayOrderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByRazorpayOrderIDForUpdate locks the order row so concurrent payment
// confirmations serialize. Callers must run inside WithTx.
func (r *repository) FindByRazorpayOrderIDForUpdate(ctx context.Context, razorpayOrderID string) (*models.Order, error) {
	var order models.Order
	err := lockForUpdate(r.db.WithContext(ctx)).
		Preload("Items").
		Where("razorpay_order_id = ?", razorpayOrderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByOwner(ctx context.Context, owner cart.Owner) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Preload("Items")
	if owner.UserID != nil {
		query = query.Where("user_id = ?", *owner.UserID)
	} else if owner.SessionKey != nil {
		query = query.Where("session_key = ?", *owner.SessionKey)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
