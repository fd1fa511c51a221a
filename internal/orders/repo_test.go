package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/arjunmehta/desikart-backend/internal/cart"
	"github.com/arjunmehta/desikart-backend/pkg/db/models"
	"github.com/arjunmehta/desikart-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  user_id TEXT,
  session_key TEXT,
  full_name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT NOT NULL,
  address TEXT NOT NULL,
  city TEXT NOT NULL,
  state TEXT NOT NULL,
  pincode TEXT NOT NULL,
  subtotal TEXT NOT NULL,
  gst_amount TEXT NOT NULL,
  total_amount TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  razorpay_order_id TEXT,
  razorpay_payment_id TEXT,
  razorpay_signature TEXT,
  payment_status INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'pending',
  invoice_generated INTEGER NOT NULL DEFAULT 0,
  invoice_object_key TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  hsn_code TEXT NOT NULL,
  gst_rate TEXT NOT NULL,
  unit_price TEXT NOT NULL,
  quantity INTEGER NOT NULL
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func buildOrder(orderID string, owner cart.Owner, created time.Time) *models.Order {
	return &models.Order{
		OrderID:       orderID,
		UserID:        owner.UserID,
		SessionKey:    owner.SessionKey,
		FullName:      "Asha Rao",
		Email:         "asha@example.com",
		Phone:         "9876543210",
		Address:       "12 MG Road",
		City:          "Bengaluru",
		State:         "Karnataka",
		Pincode:       "560001",
		Subtotal:      decimal.RequireFromString("200.00"),
		GSTAmount:     decimal.RequireFromString("36.00"),
		TotalAmount:   decimal.RequireFromString("236.00"),
		PaymentMethod: enums.PaymentMethodRazorpay,
		Status:        enums.OrderStatusPending,
		CreatedAt:     created,
		Items: []models.OrderItem{
			{
				ProductID: uuid.New(),
				Name:      "Steel Bottle",
				HSNCode:   "73239390",
				GSTRate:   decimal.RequireFromString("18.00"),
				UnitPrice: decimal.RequireFromString("100.00"),
				Quantity:  2,
			},
		},
	}
}

func sessionOwner(key string) cart.Owner {
	return cart.Owner{SessionKey: &key}
}

func TestRepositoryCreatePersistsItems(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, buildOrder("ORDAAAA111111", sessionOwner("sess-1"), time.Now()))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	loaded, err := repo.FindByOrderID(ctx, "ORDAAAA111111")
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	require.Equal(t, "Steel Bottle", loaded.Items[0].Name)
	require.Equal(t, "236.00", loaded.TotalAmount.StringFixed(2))
	require.False(t, loaded.PaymentStatus)
}

func TestRepositoryFindScopedToOwner(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, buildOrder("ORDAAAA111111", sessionOwner("sess-1"), time.Now()))
	require.NoError(t, err)

	found, err := repo.FindByOrderIDForOwner(ctx, "ORDAAAA111111", sessionOwner("sess-1"))
	require.NoError(t, err)
	require.Equal(t, "ORDAAAA111111", found.OrderID)

	_, err = repo.FindByOrderIDForOwner(ctx, "ORDAAAA111111", sessionOwner("sess-other"))
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryFindByRazorpayOrderID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := buildOrder("ORDAAAA111111", sessionOwner("sess-1"), time.Now())
	rzpID := "order_RZP123"
	order.RazorpayOrderID = &rzpID
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	found, err := repo.FindByRazorpayOrderIDForUpdate(ctx, "order_RZP123")
	require.NoError(t, err)
	require.Equal(t, order.OrderID, found.OrderID)
	require.Len(t, found.Items, 1)

	_, err = repo.FindByRazorpayOrderIDForUpdate(ctx, "order_unknown")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListNewestFirst(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	_, err := repo.Create(ctx, buildOrder("ORDAAAA111111", sessionOwner("sess-1"), base))
	require.NoError(t, err)
	_, err = repo.Create(ctx, buildOrder("ORDBBBB222222", sessionOwner("sess-1"), base.Add(time.Minute)))
	require.NoError(t, err)
	_, err = repo.Create(ctx, buildOrder("ORDCCCC333333", sessionOwner("sess-2"), base.Add(2*time.Minute)))
	require.NoError(t, err)

	listed, err := repo.ListByOwner(ctx, sessionOwner("sess-1"))
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, "ORDBBBB222222", listed[0].OrderID)
	require.Equal(t, "ORDAAAA111111", listed[1].OrderID)
}

func TestRepositoryUpdate(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, buildOrder("ORDAAAA111111", sessionOwner("sess-1"), time.Now()))
	require.NoError(t, err)

	err = repo.Update(ctx, created.ID, map[string]any{
		"payment_status": true,
		"status":         enums.OrderStatusProcessing,
	})
	require.NoError(t, err)

	loaded, err := repo.FindByOrderID(ctx, "ORDAAAA111111")
	require.NoError(t, err)
	require.True(t, loaded.PaymentStatus)
	require.Equal(t, enums.OrderStatusProcessing, loaded.Status)
}
