package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the canonical catalog listing. Price columns are fixed-point
// numeric(10,2); GST rate is the percentage applied to the line subtotal.
type Product struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID      uuid.UUID        `gorm:"column:category_id;type:uuid;not null"`
	Name            string           `gorm:"column:name;not null"`
	Slug            string           `gorm:"column:slug;not null;uniqueIndex"`
	Description     string           `gorm:"column:description;not null;default:''"`
	Price           decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	DiscountedPrice *decimal.Decimal `gorm:"column:discounted_price;type:numeric(10,2)"`
	Stock           int              `gorm:"column:stock;not null;default:0"`
	HSNCode         string           `gorm:"column:hsn_code;not null;default:'00000000'"`
	GSTRate         decimal.Decimal  `gorm:"column:gst_rate;type:numeric(5,2);not null;default:18.00"`
	IsActive        bool             `gorm:"column:is_active;not null;default:true"`
	Featured        bool             `gorm:"column:featured;not null;default:false"`
	Category        *Category        `gorm:"foreignKey:CategoryID"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
