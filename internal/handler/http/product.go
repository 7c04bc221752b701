package http

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/utafrali/OnlineStore/internal/repository"
	"github.com/utafrali/OnlineStore/internal/service"
	"github.com/utafrali/OnlineStore/pkg/httputil"
	"github.com/utafrali/OnlineStore/pkg/pagination"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// ProductRequest is the JSON body for creating or replacing a product.
type ProductRequest struct {
	ID          int64           `json:"id" validate:"gte=0"`
	Article     string          `json:"article" validate:"required,max=11"`
	Name        string          `json:"name" validate:"required,max=64"`
	Description string          `json:"description" validate:"max=256"`
	Price       decimal.Decimal `json:"price"`
	MediaURLs   []string        `json:"media_urls" validate:"omitempty,dive,url"`
	CategoryIDs []int64         `json:"category_ids" validate:"omitempty,dive,gt=0"`
}

func (req ProductRequest) input() service.ProductInput {
	return service.ProductInput{
		Article:     req.Article,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		MediaURLs:   req.MediaURLs,
		CategoryIDs: req.CategoryIDs,
	}
}

// SetCategoriesRequest replaces the category set of a product.
type SetCategoriesRequest struct {
	CategoryIDs []int64 `json:"category_ids" validate:"dive,gt=0"`
}

// --- Handlers ---

// ListProducts handles GET /api/v1/products
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page (max 100)" default(20)
// @Param category_id query int false "Only products in this category"
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := queryID(w, r, "category_id")
	if !ok {
		return
	}
	p := pagination.FromRequest(r)

	products, total, err := h.service.ListProducts(r.Context(), repository.ProductFilter{
		CategoryID: categoryID,
		Page:       p.Page,
		PerPage:    p.PerPage,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(products, total, p.Page, p.PerPage))
}

// GetProduct handles GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}

// GetProductDetails handles GET /api/v1/products/{id}/details
// Returns the product with its categories, reviews and average rating.
func (h *ProductHandler) GetProductDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	details, err := h.service.GetProductDetails(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, details)
}

// CreateProduct handles POST /api/v1/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	product, err := h.service.CreateProduct(r.Context(), req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/v1/products/{id}
// Omitting category_ids leaves the memberships alone.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req ProductRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	found, err := h.service.UpdateProduct(r.Context(), id, bodyID(id, req.ID), req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	writeFound(w, r, found, "product", id, h.logger)
}

// SetProductCategories handles PUT /api/v1/products/{id}/categories
func (h *ProductHandler) SetProductCategories(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req SetCategoriesRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	found, err := h.service.SetProductCategories(r.Context(), id, req.CategoryIDs)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	writeFound(w, r, found, "product", id, h.logger)
}

// DeleteProduct handles DELETE /api/v1/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.service.DeleteProduct(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	writeFound(w, r, found, "product", id, h.logger)
}
