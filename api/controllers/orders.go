package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arjunmehta/desikart-backend/api/responses"
	"github.com/arjunmehta/desikart-backend/internal/invoices"
	ordersvc "github.com/arjunmehta/desikart-backend/internal/orders"
	"github.com/arjunmehta/desikart-backend/pkg/db/models"
	"github.com/arjunmehta/desikart-backend/pkg/enums"
	pkgerrors "github.com/arjunmehta/desikart-backend/pkg/errors"
	"github.com/arjunmehta/desikart-backend/pkg/logger"
)

type orderItemResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	HSNCode   string    `json:"hsn_code"`
	GSTRate   string    `json:"gst_rate"`
	UnitPrice string    `json:"unit_price"`
	Quantity  int       `json:"quantity"`
}

type orderCustomerResponse struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
}

type orderResponse struct {
	OrderID          string                `json:"order_id"`
	Status           enums.OrderStatus     `json:"status"`
	PaymentMethod    enums.PaymentMethod   `json:"payment_method"`
	PaymentStatus    bool                  `json:"payment_status"`
	RazorpayOrderID  *string               `json:"razorpay_order_id,omitempty"`
	Subtotal         string                `json:"subtotal"`
	GSTAmount        string                `json:"gst_amount"`
	TotalAmount      string                `json:"total_amount"`
	Customer         orderCustomerResponse `json:"customer"`
	Items            []orderItemResponse   `json:"items"`
	InvoiceAvailable bool                  `json:"invoice_available"`
	CreatedAt        time.Time             `json:"created_at"`
}

func newOrderResponse(order *models.Order) orderResponse {
	resp := orderResponse{
		OrderID:         order.OrderID,
		Status:          order.Status,
		PaymentMethod:   order.PaymentMethod,
		PaymentStatus:   order.PaymentStatus,
		RazorpayOrderID: order.RazorpayOrderID,
		Subtotal:        order.Subtotal.StringFixed(2),
		GSTAmount:       order.GSTAmount.StringFixed(2),
		TotalAmount:     order.TotalAmount.StringFixed(2),
		Customer: orderCustomerResponse{
			FullName: order.FullName,
			Email:    order.Email,
			Phone:    order.Phone,
			Address:  order.Address,
			City:     order.City,
			State:    order.State,
			Pincode:  order.Pincode,
		},
		Items:            make([]orderItemResponse, 0, len(order.Items)),
		InvoiceAvailable: order.PaymentStatus,
		CreatedAt:        order.CreatedAt,
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			HSNCode:   item.HSNCode,
			GSTRate:   item.GSTRate.StringFixed(2),
			UnitPrice: item.UnitPrice.StringFixed(2),
			Quantity:  item.Quantity,
		})
	}
	return resp
}

// OrderList returns the owner's orders, newest first.
func OrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		owner, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.ListOrders(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]orderResponse, 0, len(records))
		for i := range records {
			items = append(items, newOrderResponse(&records[i]))
		}
		responses.WriteSuccess(w, items)
	}
}

// OrderDetail returns a single order scoped to the requesting owner.
func OrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		owner, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), owner, chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrderInvoice streams the GST invoice document for a settled order,
// generating it on demand when the stored copy is missing.
func OrderInvoice(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		owner, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		document, err := svc.GetDocument(r.Context(), owner, chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", invoices.ContentType)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(document); err != nil && logg != nil {
			logg.Error(r.Context(), "failed to stream invoice document", err)
		}
	}
}
