package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItem is a frozen snapshot of one product line at checkout time.
// Name, HSN code, GST rate and unit price are copied from the product so
// later catalog edits never change what was billed.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid"`
	Name      string          `gorm:"column:name"`
	HSNCode   string          `gorm:"column:hsn_code"`
	GSTRate   decimal.Decimal `gorm:"column:gst_rate;type:numeric(5,2)"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2)"`
	Quantity  int             `gorm:"column:quantity"`
}

func (oi *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if oi.ID == uuid.Nil {
		oi.ID = uuid.New()
	}
	return nil
}
