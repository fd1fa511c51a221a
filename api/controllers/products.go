package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arjunmehta/desikart-backend/api/responses"
	"github.com/arjunmehta/desikart-backend/api/validators"
	"github.com/arjunmehta/desikart-backend/internal/catalog"
	pkgerrors "github.com/arjunmehta/desikart-backend/pkg/errors"
	"github.com/arjunmehta/desikart-backend/pkg/logger"
)

type categoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
}

type productResponse struct {
	ID                 uuid.UUID         `json:"id"`
	Name               string            `json:"name"`
	Slug               string            `json:"slug"`
	Description        string            `json:"description,omitempty"`
	Price              string            `json:"price"`
	DiscountedPrice    *string           `json:"discounted_price,omitempty"`
	EffectivePrice     string            `json:"effective_price"`
	DiscountPercentage int               `json:"discount_percentage"`
	InStock            bool              `json:"in_stock"`
	HSNCode            string            `json:"hsn_code"`
	GSTRate            string            `json:"gst_rate"`
	Featured           bool              `json:"featured"`
	Category           *categoryResponse `json:"category,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
}

func newProductResponse(view catalog.ProductView) productResponse {
	p := view.Product
	resp := productResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Slug:               p.Slug,
		Description:        p.Description,
		Price:              p.Price.StringFixed(2),
		EffectivePrice:     view.EffectivePrice,
		DiscountPercentage: view.DiscountPercentage,
		InStock:            view.InStock,
		HSNCode:            p.HSNCode,
		GSTRate:            p.GSTRate.StringFixed(2),
		Featured:           p.Featured,
		CreatedAt:          p.CreatedAt,
	}
	if p.DiscountedPrice != nil {
		formatted := p.DiscountedPrice.StringFixed(2)
		resp.DiscountedPrice = &formatted
	}
	if p.Category != nil {
		resp.Category = &categoryResponse{
			ID:          p.Category.ID,
			Name:        p.Category.Name,
			Slug:        p.Category.Slug,
			Description: p.Category.Description,
		}
	}
	return resp
}

// ProductList serves the storefront catalog with optional category, featured
// and search filters.
func ProductList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		filter := catalog.ProductFilter{
			Search: strings.TrimSpace(r.URL.Query().Get("q")),
		}

		// The category filter takes a slug (the storefront's URLs use slugs)
		// but a raw id works too.
		if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
			if categoryID, err := uuid.Parse(raw); err == nil {
				filter.CategoryID = &categoryID
			} else {
				category, err := svc.GetCategoryBySlug(r.Context(), raw)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
				filter.CategoryID = &category.ID
			}
		}

		featured, err := validators.ParseQueryBool(r, "featured")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.Featured = featured

		views, err := svc.ListProducts(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]productResponse, 0, len(views))
		for _, view := range views {
			items = append(items, newProductResponse(view))
		}
		responses.WriteSuccess(w, items)
	}
}

// ProductDetail resolves a product by id or slug.
func ProductDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		ref := chi.URLParam(r, "productRef")
		view, err := svc.GetProduct(r.Context(), ref)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(*view))
	}
}

func CategoryList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]categoryResponse, 0, len(categories))
		for _, category := range categories {
			items = append(items, categoryResponse{
				ID:          category.ID,
				Name:        category.Name,
				Slug:        category.Slug,
				Description: category.Description,
			})
		}
		responses.WriteSuccess(w, items)
	}
}

func CategoryDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		category, err := svc.GetCategoryBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, categoryResponse{
			ID:          category.ID,
			Name:        category.Name,
			Slug:        category.Slug,
			Description: category.Description,
		})
	}
}
