package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arjunmehta/desikart-backend/api/responses"
	"github.com/arjunmehta/desikart-backend/api/validators"
	checkoutsvc "github.com/arjunmehta/desikart-backend/internal/checkout"
	pkgerrors "github.com/arjunmehta/desikart-backend/pkg/errors"
	"github.com/arjunmehta/desikart-backend/pkg/logger"
)

type checkoutRequest struct {
	FullName string `json:"full_name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,min=10,max=15"`
	Address  string `json:"address" validate:"required,max=500"`
	City     string `json:"city" validate:"required,max=80"`
	State    string `json:"state" validate:"required,max=80"`
	Pincode  string `json:"pincode" validate:"required,len=6,numeric"`
}

func (p checkoutRequest) details() checkoutsvc.CustomerDetails {
	return checkoutsvc.CustomerDetails{
		FullName: p.FullName,
		Email:    p.Email,
		Phone:    p.Phone,
		Address:  p.Address,
		City:     p.City,
		State:    p.State,
		Pincode:  p.Pincode,
	}
}

type razorpayCheckoutResponse struct {
	OrderID     string `json:"order_id"`
	KeyID       string `json:"key_id"`
	AmountPaise int64  `json:"amount_paise"`
	Currency    string `json:"currency"`
}

type checkoutResponse struct {
	Order    orderResponse             `json:"order"`
	Razorpay *razorpayCheckoutResponse `json:"razorpay,omitempty"`
}

// Checkout converts the owner's cart into a pending order and opens a
// Razorpay order for it. The client completes payment with the returned
// gateway fields; the confirmation callback settles the order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		owner, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PlaceWithGateway(r.Context(), owner, payload.details())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			Order: newOrderResponse(result.Order),
			Razorpay: &razorpayCheckoutResponse{
				OrderID:     result.RazorpayOrderID,
				KeyID:       result.RazorpayKeyID,
				AmountPaise: result.AmountPaise,
				Currency:    result.Currency,
			},
		})
	}
}

// CheckoutReopen returns fresh gateway fields for an unpaid Razorpay order,
// so a shopper whose first payment attempt failed can complete it.
func CheckoutReopen(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		owner, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ReopenGateway(r.Context(), owner, chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, checkoutResponse{
			Order: newOrderResponse(result.Order),
			Razorpay: &razorpayCheckoutResponse{
				OrderID:     result.RazorpayOrderID,
				KeyID:       result.RazorpayKeyID,
				AmountPaise: result.AmountPaise,
				Currency:    result.Currency,
			},
		})
	}
}

// CheckoutDirect is the offline/cash flow: the order is created and settled
// in the same request through the shared settlement transition.
func CheckoutDirect(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		owner, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceDirect(r.Context(), owner, payload.details())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{Order: newOrderResponse(order)})
	}
}
