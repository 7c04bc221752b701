package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/OnlineStore/internal/domain"
	"github.com/utafrali/OnlineStore/internal/repository"
	"github.com/utafrali/OnlineStore/internal/service"
	apperrors "github.com/utafrali/OnlineStore/pkg/errors"
	"github.com/utafrali/OnlineStore/pkg/health"
	"github.com/utafrali/OnlineStore/pkg/httputil"
)

// =============================================================================
// Mock repositories. Embedding the interface satisfies it; only the methods
// the tests reach are overridden.
// =============================================================================

type mockProductRepo struct {
	mock.Mock
	repository.ProductRepository
}

func (m *mockProductRepo) Create(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepo) Update(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockCartRepo struct {
	mock.Mock
	repository.CartRepository
}

func (m *mockCartRepo) GetByID(ctx context.Context, id int64) (*domain.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

type mockOrderRepo struct {
	mock.Mock
	repository.OrderRepository
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepo) DeleteItem(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockUserRepo struct {
	mock.Mock
	repository.UserRepository
}

func (m *mockUserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Bool(1), args.Error(2)
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) (*domain.UserProfile, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProfile), args.Error(1)
}

type mockReviewRepo struct {
	mock.Mock
	repository.ReviewRepository
}

type nopPublisher struct{}

func (nopPublisher) PublishUserRegistered(context.Context, *domain.UserProfile) error { return nil }
func (nopPublisher) PublishProductUpdated(context.Context, *domain.Product) error     { return nil }
func (nopPublisher) PublishOrderCreated(context.Context, *domain.Order) error         { return nil }
func (nopPublisher) PublishOrderUpdated(context.Context, *domain.Order, string) error { return nil }
func (nopPublisher) PublishDeliveryAttached(context.Context, *domain.Delivery) error  { return nil }
func (nopPublisher) PublishReviewCreated(context.Context, *domain.Review) error       { return nil }

// =============================================================================
// Test helpers
// =============================================================================

type testEnv struct {
	products *mockProductRepo
	carts    *mockCartRepo
	orders   *mockOrderRepo
	users    *mockUserRepo
	reviews  *mockReviewRepo
	router   http.Handler
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestEnv() *testEnv {
	logger := testLogger()
	env := &testEnv{
		products: new(mockProductRepo),
		carts:    new(mockCartRepo),
		orders:   new(mockOrderRepo),
		users:    new(mockUserRepo),
		reviews:  new(mockReviewRepo),
	}
	pub := nopPublisher{}

	svcs := Services{
		Catalog:    service.NewCatalogService(env.products, nil, env.reviews, pub, logger),
		Users:      service.NewUserService(env.users, pub, logger),
		Carts:      service.NewCartService(env.carts, env.products, logger),
		Wishlists:  service.NewWishlistService(nil, logger),
		Orders:     service.NewOrderService(env.orders, env.users, env.products, nil, pub, logger),
		Deliveries: service.NewDeliveryService(nil, env.orders, logger),
		Reviews:    service.NewReviewService(env.reviews, pub, logger),
	}
	env.router = NewRouter(svcs, health.NewHandler(), logger, Options{})
	return env
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func productBody(id int64) map[string]any {
	return map[string]any{
		"id":           id,
		"article":      "ART-1",
		"name":         "Kettle",
		"price":        "24.50",
		"category_ids": []int64{1},
	}
}

// =============================================================================
// Operational endpoints
// =============================================================================

func TestRouter_Ping(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestRouter_HealthLive(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RejectsNonJSONBody(t *testing.T) {
	env := newTestEnv()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewBufferString("article=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_BadPathID(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodGet, "/api/v1/carts/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PARAMETER", decodeResponse(t, rec).Error.Code)
}

// =============================================================================
// Products
// =============================================================================

func TestCreateProduct_Created(t *testing.T) {
	env := newTestEnv()
	env.products.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Price.Equal(decimal.RequireFromString("24.5"))
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Product).ID = 3
	}).Return(nil)

	rec := env.do(http.MethodPost, "/api/v1/products", productBody(0))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data domain.Product `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(3), resp.Data.ID)
}

func TestCreateProduct_ValidationError(t *testing.T) {
	env := newTestEnv()
	body := productBody(0)
	delete(body, "article")

	rec := env.do(http.MethodPost, "/api/v1/products", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "article")
}

func TestCreateProduct_DuplicateArticle(t *testing.T) {
	env := newTestEnv()
	env.products.On("Create", mock.Anything, mock.Anything).
		Return(apperrors.AlreadyExists("product", "article", "ART-1"))

	rec := env.do(http.MethodPost, "/api/v1/products", productBody(0))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateProduct_IDMismatch(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodPut, "/api/v1/products/5", productBody(6))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeResponse(t, rec).Error.Message, "product ID mismatch")
	env.products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateProduct_Statuses(t *testing.T) {
	env := newTestEnv()
	env.products.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool { return p.ID == 5 })).Return(nil)
	env.products.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool { return p.ID == 9 })).
		Return(apperrors.NotFound("product", int64(9)))

	rec := env.do(http.MethodPut, "/api/v1/products/5", productBody(5))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodPut, "/api/v1/products/9", productBody(0))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProduct_SilentMissingIs404(t *testing.T) {
	env := newTestEnv()
	env.products.On("Delete", mock.Anything, int64(4)).Return(apperrors.NotFound("product", int64(4)))

	rec := env.do(http.MethodDelete, "/api/v1/products/4", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeResponse(t, rec).Error.Code)
}

// =============================================================================
// Users and carts
// =============================================================================

func TestCreateUser_ReturnsOwnedIDs(t *testing.T) {
	env := newTestEnv()
	env.users.On("ExistsByUsernameOrEmail", mock.Anything, "ada", "ada@example.com").Return(false, false, nil)
	env.users.On("Create", mock.Anything, mock.Anything).Return(&domain.UserProfile{
		User:       domain.User{ID: 1, Username: "ada", Role: domain.RoleGuest},
		CartID:     11,
		WishlistID: 12,
	}, nil)

	rec := env.do(http.MethodPost, "/api/v1/users", map[string]any{
		"username": "ada",
		"password": "pw",
		"email":    "ada@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.EqualValues(t, 11, resp.Data["cart_id"])
	assert.EqualValues(t, 12, resp.Data["wishlist_id"])
	assert.NotContains(t, resp.Data, "password_hash")
}

func TestCreateUser_MultibytePasswordIs400(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodPost, "/api/v1/users", map[string]any{
		"username": "ada",
		"password": strings.Repeat("é", 64),
		"email":    "ada@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "72 bytes")
	env.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetUserCart_AbsentIs404(t *testing.T) {
	env := newTestEnv()
	env.carts.On("GetByUserID", mock.Anything, int64(8)).Return(nil, apperrors.NotFound("cart", int64(8)))

	rec := env.do(http.MethodGet, "/api/v1/users/8/cart", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCart_PricedView(t *testing.T) {
	env := newTestEnv()
	env.carts.On("GetByID", mock.Anything, int64(1)).Return(&domain.Cart{ID: 1, UserID: 2, Items: []domain.CartItem{
		{ID: 1, ProductID: 100, Quantity: 2},
		{ID: 2, ProductID: 200, Quantity: 3},
	}}, nil)
	env.products.On("GetByIDs", mock.Anything, []int64{100, 200}).Return([]domain.Product{
		{ID: 100, Name: "A", Price: decimal.RequireFromString("7")},
		{ID: 200, Name: "B", Price: decimal.RequireFromString("5")},
	}, nil)

	rec := env.do(http.MethodGet, "/api/v1/carts/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.CartView `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Data.TotalPrice.Equal(decimal.NewFromInt(29)), resp.Data.TotalPrice.String())
	assert.Len(t, resp.Data.Items, 2)
}

// =============================================================================
// Orders and reviews
// =============================================================================

func TestGetOrder_MissingIs404(t *testing.T) {
	env := newTestEnv()
	env.orders.On("GetByID", mock.Anything, int64(3)).Return(nil, apperrors.NotFound("order", int64(3)))

	rec := env.do(http.MethodGet, "/api/v1/orders/3", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "order with id 3 not found", decodeResponse(t, rec).Error.Message)
}

func TestDeleteOrderItem_MissingIs404(t *testing.T) {
	env := newTestEnv()
	env.orders.On("DeleteItem", mock.Anything, int64(5)).Return(apperrors.NotFound("order item", int64(5)))

	rec := env.do(http.MethodDelete, "/api/v1/order-items/5", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAttachDelivery_OrderMismatch(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodPost, "/api/v1/orders/1/delivery", map[string]any{
		"address":  "1 Main St",
		"order_id": 2,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCategory_FieldTooLong(t *testing.T) {
	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"name", map[string]any{"name": strings.Repeat("n", 100)}, "name"},
		{"description", map[string]any{"name": "Garden", "description": strings.Repeat("d", 300)}, "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			rec := env.do(http.MethodPost, "/api/v1/categories", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeResponse(t, rec).Error.Fields, tt.field)
		})
	}
}

func TestCreateDelivery_AddressTooLong(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodPost, "/api/v1/deliveries", map[string]any{
		"address":  strings.Repeat("a", 300),
		"order_id": 1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeResponse(t, rec).Error.Fields, "address")
}

func TestCreateReview_RatingOutOfRange(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodPost, "/api/v1/reviews", map[string]any{
		"author_id":  1,
		"product_id": 2,
		"rating":     6,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeResponse(t, rec).Error.Fields, "rating")
	env.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
