package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arjunmehta/desikart-backend/pkg/db/models"
)

// Owner identifies who a cart belongs to. Exactly one field is set.
type Owner struct {
	UserID     *uuid.UUID
	SessionKey *string
}

// Valid reports whether exactly one identity is present.
func (o Owner) Valid() bool {
	return (o.UserID != nil) != (o.SessionKey != nil)
}

// String renders the owner for log fields.
func (o Owner) String() string {
	if o.UserID != nil {
		return "user:" + o.UserID.String()
	}
	if o.SessionKey != nil {
		return "session:" + *o.SessionKey
	}
	return "unknown"
}

// Repository exposes cart persistence scoped by owner.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetOrCreate(ctx context.Context, owner Owner) (*models.Cart, error)
	FindByOwner(ctx context.Context, owner Owner) (*models.Cart, error)
	FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func ownerScope(query *gorm.DB, owner Owner) *gorm.DB {
	if owner.UserID != nil {
		return query.Where("user_id = ?", *owner.UserID)
	}
	return query.Where("session_key = ?", *owner.SessionKey)
}

// GetOrCreate returns the owner's cart, creating one on first use. Concurrent
// first requests race on the partial unique index; the insert ignores the
// conflict instead of erroring, which keeps an enclosing transaction usable
// on postgres, and the follow-up fetch returns whichever row survived.
func (r *repository) GetOrCreate(ctx context.Context, owner Owner) (*models.Cart, error) {
	fresh := &models.Cart{UserID: owner.UserID, SessionKey: owner.SessionKey}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(fresh).Error
	if err != nil {
		return nil, err
	}
	return r.FindByOwner(ctx, owner)
}

func (r *repository) FindByOwner(ctx context.Context, owner Owner) (*models.Cart, error) {
	var cart models.Cart
	err := ownerScope(r.db.WithContext(ctx), owner).
		Preload("Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("added_at ASC")
		}).
		Preload("Items.Product").
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *repository) FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) CreateItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

func (r *repository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&models.CartItem{}).Error
}

func (r *repository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}
