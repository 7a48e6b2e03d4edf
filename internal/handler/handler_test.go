package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Shreyr69/indiport/internal/domain/model"
	"github.com/Shreyr69/indiport/internal/domain/pricing"
	"github.com/Shreyr69/indiport/internal/handler"
	"github.com/Shreyr69/indiport/internal/middleware"
	"github.com/Shreyr69/indiport/internal/repository"
	"github.com/Shreyr69/indiport/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const buyerID = "0d4c1a52-7a0e-4d0c-8f43-6c2a1f3b9e10"

// =====================
// helper
// =====================

type errorBody struct {
	Error string `json:"error"`
}

// AuthJWT + ProfileLoader の代わり
func fakeAuth(role model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.CtxUserIDKey, buyerID)
			c.Set(middleware.CtxUserRoleKey, role)
			c.Set(middleware.CtxProfileKey, model.Profile{ID: buyerID, Role: role})
			return next(c)
		}
	}
}

func denyAll(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
}

func doRequest(t *testing.T, e *echo.Echo, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var b errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b), rec.Body.String())
	return b
}

// =====================
// repository mocks
// =====================

type productRepoMock struct{ mock.Mock }

func (m *productRepoMock) ListPublic(ctx context.Context, q repository.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	list, _ := args.Get(0).([]model.Product)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *productRepoMock) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *productRepoMock) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	list, _ := args.Get(0).([]model.Product)
	return list, args.Error(1)
}

func (m *productRepoMock) ListBySellerID(ctx context.Context, sellerID string) ([]model.Product, error) {
	args := m.Called(ctx, sellerID)
	list, _ := args.Get(0).([]model.Product)
	return list, args.Error(1)
}

func (m *productRepoMock) ListByStatus(ctx context.Context, status model.ProductStatus) ([]model.Product, error) {
	args := m.Called(ctx, status)
	list, _ := args.Get(0).([]model.Product)
	return list, args.Error(1)
}

func (m *productRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

func (m *productRepoMock) DeleteBySeller(ctx context.Context, id, sellerID string) error {
	return m.Called(ctx, id, sellerID).Error(0)
}

func (m *productRepoMock) UpdateStatus(ctx context.Context, id string, status model.ProductStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

type savedProductRepoMock struct{ mock.Mock }

func (m *savedProductRepoMock) ListByBuyerID(ctx context.Context, buyerID string) ([]model.SavedProduct, error) {
	args := m.Called(ctx, buyerID)
	list, _ := args.Get(0).([]model.SavedProduct)
	return list, args.Error(1)
}

func (m *savedProductRepoMock) Create(ctx context.Context, sp model.SavedProduct) (model.SavedProduct, error) {
	args := m.Called(ctx, sp)
	out, _ := args.Get(0).(model.SavedProduct)
	return out, args.Error(1)
}

func (m *savedProductRepoMock) DeleteByBuyer(ctx context.Context, id, buyerID string) error {
	return m.Called(ctx, id, buyerID).Error(0)
}

type categoryRepoMock struct{ mock.Mock }

func (m *categoryRepoMock) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Category)
	return list, args.Error(1)
}

type reviewRepoMock struct{ mock.Mock }

func (m *reviewRepoMock) Create(ctx context.Context, r model.Review) (model.Review, error) {
	args := m.Called(ctx, r)
	out, _ := args.Get(0).(model.Review)
	return out, args.Error(1)
}

func (m *reviewRepoMock) ListByProductID(ctx context.Context, productID string) ([]model.Review, error) {
	args := m.Called(ctx, productID)
	list, _ := args.Get(0).([]model.Review)
	return list, args.Error(1)
}

func (m *reviewRepoMock) Summary(ctx context.Context, productID string) (repository.RatingSummary, error) {
	args := m.Called(ctx, productID)
	s, _ := args.Get(0).(repository.RatingSummary)
	return s, args.Error(1)
}

type deliveryRepoStub struct {
	list []model.DeliveryMethod
	err  error
}

func (s deliveryRepoStub) ListActive(ctx context.Context) ([]model.DeliveryMethod, error) {
	return s.list, s.err
}

func (s deliveryRepoStub) FindByID(ctx context.Context, id string) (model.DeliveryMethod, error) {
	for _, m := range s.list {
		if m.ID == id {
			return m, nil
		}
	}
	return model.DeliveryMethod{}, repository.ErrNotFound
}

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }

// =====================
// products
// =====================

func TestProductHandler_List_OK(t *testing.T) {
	products := new(productRepoMock)
	e := echo.New()
	handler.NewProductHandler(usecase.NewProductUsecase(products, new(reviewRepoMock), nil, fixedClock{})).RegisterRoutes(e)

	products.On("ListPublic", mock.Anything, repository.ProductListQuery{
		Page: 2, Limit: 10, Q: "rice", Sort: "price_asc",
	}).Return([]model.Product{{ID: "p1", Title: "Basmati rice"}}, int64(11), nil)

	rec := doRequest(t, e, http.MethodGet, "/products?page=2&limit=10&q=rice&sort=price_asc", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out usecase.ProductListOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, int64(11), out.Total)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "p1", out.Items[0].ID)

	products.AssertExpectations(t)
}

func TestProductHandler_List_InvalidQuery(t *testing.T) {
	products := new(productRepoMock)
	e := echo.New()
	handler.NewProductHandler(usecase.NewProductUsecase(products, new(reviewRepoMock), nil, fixedClock{})).RegisterRoutes(e)

	rec := doRequest(t, e, http.MethodGet, "/products?page=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid page", decodeError(t, rec).Error)

	rec = doRequest(t, e, http.MethodGet, "/products?sort=cheapest", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid sort", decodeError(t, rec).Error)

	products.AssertNotCalled(t, "ListPublic", mock.Anything, mock.Anything)
}

func TestProductHandler_Detail_InactiveIsNotFound(t *testing.T) {
	products := new(productRepoMock)
	e := echo.New()
	handler.NewProductHandler(usecase.NewProductUsecase(products, new(reviewRepoMock), nil, fixedClock{})).RegisterRoutes(e)

	products.On("FindByID", mock.Anything, "p9").
		Return(model.Product{ID: "p9", Status: model.ProductStatusInactive}, nil)

	rec := doRequest(t, e, http.MethodGet, "/products/p9", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", decodeError(t, rec).Error)
}

func newAdminProductServer(role model.Role, products *productRepoMock) *echo.Echo {
	e := echo.New()
	uc := usecase.NewProductUsecase(products, new(reviewRepoMock), nil, fixedClock{})
	handler.NewAdminProductHandler(uc).RegisterRoutes(e,
		[]echo.MiddlewareFunc{fakeAuth(role)},
		middleware.RoleGuard(model.RoleSeller),
		middleware.RoleGuard(model.RoleAdmin),
	)
	return e
}

func TestAdminProductHandler_SellerCreates_Pending(t *testing.T) {
	products := new(productRepoMock)
	e := newAdminProductServer(model.RoleSeller, products)
	products.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.SellerID == buyerID && p.Status == model.ProductStatusPending && p.MinOrder == 20
	})).Return(model.Product{ID: "p-new", SellerID: buyerID, Status: model.ProductStatusPending}, nil)

	rec := doRequest(t, e, http.MethodPost, "/seller/products", map[string]any{
		"title":          "Turmeric powder",
		"category":       "Agriculture",
		"price":          "240.00",
		"unit":           "kg",
		"min_order":      20,
		"stock_quantity": 500,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out model.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "p-new", out.ID)
	assert.Equal(t, model.ProductStatusPending, out.Status)
}

func TestAdminProductHandler_SellerDeletesOwn(t *testing.T) {
	products := new(productRepoMock)
	e := newAdminProductServer(model.RoleSeller, products)
	products.On("DeleteBySeller", mock.Anything, "p1", buyerID).Return(nil)
	products.On("DeleteBySeller", mock.Anything, "p2", buyerID).Return(repository.ErrNotFound)

	rec := doRequest(t, e, http.MethodDelete, "/seller/products/p1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, e, http.MethodDelete, "/seller/products/p2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminProductHandler_BuyerForbidden(t *testing.T) {
	products := new(productRepoMock)
	e := newAdminProductServer(model.RoleBuyer, products)

	rec := doRequest(t, e, http.MethodPost, "/seller/products", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = doRequest(t, e, http.MethodPut, "/admin/products/p1/status", map[string]string{"status": "active"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminProductHandler_AdminStatus_Invalid(t *testing.T) {
	products := new(productRepoMock)
	e := newAdminProductServer(model.RoleAdmin, products)

	rec := doRequest(t, e, http.MethodPut, "/admin/products/p1/status", map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid status", decodeError(t, rec).Error)
}

func TestAdminProductHandler_AdminListPending(t *testing.T) {
	products := new(productRepoMock)
	e := newAdminProductServer(model.RoleAdmin, products)
	products.On("ListByStatus", mock.Anything, model.ProductStatusPending).
		Return([]model.Product{{ID: "p1", Status: model.ProductStatusPending}}, nil)

	rec := doRequest(t, e, http.MethodGet, "/admin/products?status=pending", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out []model.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "p1", out[0].ID)
}

// =====================
// saved products / categories
// =====================

func TestSavedProductHandler_SaveAndRemove(t *testing.T) {
	saved := new(savedProductRepoMock)
	products := new(productRepoMock)
	e := echo.New()
	handler.NewSavedProductHandler(usecase.NewSavedProductUsecase(saved, products, fixedClock{})).
		RegisterRoutes(e, fakeAuth(model.RoleBuyer))

	products.On("FindByID", mock.Anything, "p1").Return(model.Product{ID: "p1", Title: "Jute bags", Status: model.ProductStatusActive}, nil)
	saved.On("Create", mock.Anything, mock.Anything).Return(model.SavedProduct{ID: "sp-1", BuyerID: buyerID, ProductID: "p1"}, nil).Once()
	saved.On("Create", mock.Anything, mock.Anything).Return(model.SavedProduct{}, repository.ErrDuplicate)
	saved.On("DeleteByBuyer", mock.Anything, "sp-1", buyerID).Return(nil)

	rec := doRequest(t, e, http.MethodPost, "/saved-products", map[string]string{"product_id": "p1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doRequest(t, e, http.MethodPost, "/saved-products", map[string]string{"product_id": "p1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "product already saved", decodeError(t, rec).Error)

	rec = doRequest(t, e, http.MethodDelete, "/saved-products/sp-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSavedProductHandler_RequiresAuth(t *testing.T) {
	e := echo.New()
	handler.NewSavedProductHandler(nil).RegisterRoutes(e, denyAll)

	rec := doRequest(t, e, http.MethodGet, "/saved-products", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCategoryHandler_List_Public(t *testing.T) {
	categories := new(categoryRepoMock)
	e := echo.New()
	handler.NewCategoryHandler(usecase.NewCategoryUsecase(categories)).RegisterRoutes(e)
	categories.On("List", mock.Anything).Return([]model.Category{{ID: "c1", Name: "Textiles"}}, nil)

	rec := doRequest(t, e, http.MethodGet, "/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out []model.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "Textiles", out[0].Name)
}

// =====================
// delivery methods
// =====================

func TestDeliveryHandler_List_FreeShippingFlag(t *testing.T) {
	e := echo.New()
	repo := deliveryRepoStub{list: []model.DeliveryMethod{
		{ID: "std", Name: "Standard", BaseCost: decimal.NewFromInt(50), IsActive: true},
		{ID: "exp", Name: "Express", BaseCost: decimal.NewFromInt(150), IsActive: true},
	}}
	handler.NewDeliveryHandler(usecase.NewDeliveryUsecase(repo, pricing.DefaultPolicy())).RegisterRoutes(e)

	rec := doRequest(t, e, http.MethodGet, "/delivery-methods?subtotal=1000", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out []usecase.DeliveryOption
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 2)

	assert.True(t, out[0].FreeShippingEligible)
	assert.True(t, out[0].EffectiveCost.IsZero())
	assert.False(t, out[1].FreeShippingEligible)
	assert.True(t, out[1].EffectiveCost.Equal(decimal.NewFromInt(150)))
}

func TestDeliveryHandler_List_BelowThreshold(t *testing.T) {
	e := echo.New()
	repo := deliveryRepoStub{list: []model.DeliveryMethod{
		{ID: "std", BaseCost: decimal.NewFromInt(50), IsActive: true},
	}}
	handler.NewDeliveryHandler(usecase.NewDeliveryUsecase(repo, pricing.DefaultPolicy())).RegisterRoutes(e)

	rec := doRequest(t, e, http.MethodGet, "/delivery-methods?subtotal=998.99", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out []usecase.DeliveryOption
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.False(t, out[0].FreeShippingEligible)
}

func TestDeliveryHandler_List_InvalidSubtotal(t *testing.T) {
	e := echo.New()
	handler.NewDeliveryHandler(usecase.NewDeliveryUsecase(deliveryRepoStub{}, pricing.DefaultPolicy())).RegisterRoutes(e)

	rec := doRequest(t, e, http.MethodGet, "/delivery-methods?subtotal=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid subtotal", decodeError(t, rec).Error)
}

// 取得失敗は再試行できる 503
func TestDeliveryHandler_List_FetchFailure(t *testing.T) {
	e := echo.New()
	repo := deliveryRepoStub{err: errors.New("connection refused")}
	handler.NewDeliveryHandler(usecase.NewDeliveryUsecase(repo, pricing.DefaultPolicy())).RegisterRoutes(e)

	rec := doRequest(t, e, http.MethodGet, "/delivery-methods", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "could not load checkout data, please retry", decodeError(t, rec).Error)
}

// =====================
// reviews
// =====================

func TestReviewHandler_List_Public(t *testing.T) {
	reviews := new(reviewRepoMock)
	e := echo.New()
	handler.NewReviewHandler(usecase.NewReviewUsecase(reviews, new(productRepoMock), fixedClock{})).RegisterRoutes(e, denyAll)

	reviews.On("ListByProductID", mock.Anything, "p1").
		Return([]model.Review{{ID: "r1", ProductID: "p1", Rating: 4}, {ID: "r2", ProductID: "p1", Rating: 5}}, nil)
	reviews.On("Summary", mock.Anything, "p1").
		Return(repository.NewRatingSummary(9, 2), nil)

	rec := doRequest(t, e, http.MethodGet, "/products/p1/reviews", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out usecase.ReviewListOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Items, 2)
	assert.Equal(t, "4.5", out.Rating.Average.String())
	assert.Equal(t, int64(2), out.Rating.Count)
}

func TestReviewHandler_Create_RequiresAuth(t *testing.T) {
	reviews := new(reviewRepoMock)
	e := echo.New()
	handler.NewReviewHandler(usecase.NewReviewUsecase(reviews, new(productRepoMock), fixedClock{})).RegisterRoutes(e, denyAll)

	rec := doRequest(t, e, http.MethodPost, "/products/p1/reviews", usecase.CreateReviewInput{Rating: 5})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// =====================
// checkout（usecaseに届く前に弾くケース）
// =====================

func TestCheckoutHandler_Unauthorized_WithoutUser(t *testing.T) {
	e := echo.New()
	handler.NewCheckoutHandler(nil).RegisterRoutes(e)

	rec := doRequest(t, e, http.MethodPost, "/checkout", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeError(t, rec).Error)
}

func TestCheckoutHandler_Confirm_MissingFields(t *testing.T) {
	e := echo.New()
	handler.NewCheckoutHandler(nil).RegisterRoutes(e, fakeAuth(model.RoleBuyer))

	rec := doRequest(t, e, http.MethodPost, "/checkout/chk-1/pay/confirm", map[string]string{
		"razorpay_order_id": "order_1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing payment confirmation", decodeError(t, rec).Error)
}

// =====================
// orders / admin
// =====================

func TestOrderHandler_List_InvalidLimit(t *testing.T) {
	e := echo.New()
	auth := []echo.MiddlewareFunc{fakeAuth(model.RoleBuyer)}
	handler.NewOrderHandler(nil).RegisterRoutes(e, auth, middleware.RoleGuard(model.RoleSeller))

	rec := doRequest(t, e, http.MethodGet, "/orders?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid limit", decodeError(t, rec).Error)
}

func TestOrderHandler_SellerOrders_ForbiddenForBuyer(t *testing.T) {
	e := echo.New()
	auth := []echo.MiddlewareFunc{fakeAuth(model.RoleBuyer)}
	handler.NewOrderHandler(nil).RegisterRoutes(e, auth, middleware.RoleGuard(model.RoleSeller))

	rec := doRequest(t, e, http.MethodGet, "/seller/orders", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminOrderHandler_Guards(t *testing.T) {
	e := echo.New()
	auth := []echo.MiddlewareFunc{fakeAuth(model.RoleSeller)}
	handler.NewAdminOrderHandler(nil).RegisterRoutes(e, auth,
		middleware.RoleGuard(model.RoleSeller, model.RoleAdmin),
		middleware.RoleGuard(model.RoleAdmin),
	)

	//sellerは /admin に入れない
	rec := doRequest(t, e, http.MethodGet, "/admin/orders", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, e, http.MethodGet, "/admin/audit-logs", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminOrderHandler_AuditLogs_InvalidFrom(t *testing.T) {
	e := echo.New()
	auth := []echo.MiddlewareFunc{fakeAuth(model.RoleAdmin)}
	handler.NewAdminOrderHandler(nil).RegisterRoutes(e, auth,
		middleware.RoleGuard(model.RoleSeller, model.RoleAdmin),
		middleware.RoleGuard(model.RoleAdmin),
	)

	rec := doRequest(t, e, http.MethodGet, "/admin/audit-logs?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid from", decodeError(t, rec).Error)

	rec = doRequest(t, e, http.MethodGet, "/admin/orders?to=2025-13-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid to", decodeError(t, rec).Error)
}
