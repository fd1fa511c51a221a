package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/arjunmehta/desikart-backend/pkg/enums"
)

// Order is the immutable record of a placed checkout. Monetary totals and the
// customer snapshot are frozen at creation; only payment and fulfilment state
// move afterwards.
type Order struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID string    `gorm:"column:order_id;uniqueIndex"`

	// Owner echo: whichever identity placed the order.
	UserID     *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	SessionKey *string    `gorm:"column:session_key;index"`

	FullName string `gorm:"column:full_name"`
	Email    string `gorm:"column:email"`
	Phone    string `gorm:"column:phone"`
	Address  string `gorm:"column:address"`
	City     string `gorm:"column:city"`
	State    string `gorm:"column:state"`
	Pincode  string `gorm:"column:pincode"`

	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:numeric(10,2)"`
	GSTAmount   decimal.Decimal `gorm:"column:gst_amount;type:numeric(10,2)"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:numeric(10,2)"`

	PaymentMethod     enums.PaymentMethod `gorm:"column:payment_method"`
	RazorpayOrderID   *string             `gorm:"column:razorpay_order_id;index"`
	RazorpayPaymentID *string             `gorm:"column:razorpay_payment_id"`
	RazorpaySignature *string             `gorm:"column:razorpay_signature"`
	PaymentStatus     bool                `gorm:"column:payment_status;default:false"`

	Status enums.OrderStatus `gorm:"column:status;default:pending"`

	InvoiceGenerated bool    `gorm:"column:invoice_generated;default:false"`
	InvoiceObjectKey *string `gorm:"column:invoice_object_key"`

	Items []OrderItem `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
