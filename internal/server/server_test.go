package server_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Shreyr69/indiport/internal/config"
	"github.com/Shreyr69/indiport/internal/domain/model"
	"github.com/Shreyr69/indiport/internal/handler"
	"github.com/Shreyr69/indiport/internal/repository"
	"github.com/Shreyr69/indiport/internal/server"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	buyerID    = "9f1e2d3c-4b5a-4678-9abc-def012345678"
	sellerID   = "1a2b3c4d-5e6f-4a1b-8c2d-3e4f5a6b7c8d"
)

type profileRepoMock struct{ mock.Mock }

func (m *profileRepoMock) FindByID(ctx context.Context, userID string) (model.Profile, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(model.Profile)
	return p, args.Error(1)
}

func token(t *testing.T, sub string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": 9999999999,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

// usecaseまで届かないリクエストだけを流すので nil で組む
func newTestServer(profiles repository.ProfileRepository) (*bytes.Buffer, http.Handler) {
	var buf bytes.Buffer
	e := server.New(config.Config{JWTSecret: testSecret}, zerolog.New(&buf), profiles, server.Handlers{
		Product:      handler.NewProductHandler(nil),
		Category:     handler.NewCategoryHandler(nil),
		Review:       handler.NewReviewHandler(nil),
		Delivery:     handler.NewDeliveryHandler(nil),
		Cart:         handler.NewCartHandler(nil),
		SavedProduct: handler.NewSavedProductHandler(nil),
		Address:      handler.NewAddressHandler(nil),
		Checkout:     handler.NewCheckoutHandler(nil),
		Order:        handler.NewOrderHandler(nil),
		AdminOrder:   handler.NewAdminOrderHandler(nil),
		AdminProduct: handler.NewAdminProductHandler(nil),
		RFQ:          handler.NewRFQHandler(nil),
	})
	return &buf, e
}

func serve(h http.Handler, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Healthz(t *testing.T) {
	logs, h := newTestServer(new(profileRepoMock))

	rec := serve(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Contains(t, logs.String(), `"path":"/healthz"`)
}

func TestServer_ProtectedRoutes_RequireToken(t *testing.T) {
	_, h := newTestServer(new(profileRepoMock))

	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/cart"},
		{http.MethodGet, "/addresses"},
		{http.MethodPost, "/checkout"},
		{http.MethodPost, "/checkout/abc/pay/confirm"},
		{http.MethodGet, "/orders"},
		{http.MethodGet, "/rfqs"},
		{http.MethodPost, "/products/p1/reviews"},
		{http.MethodGet, "/seller/orders"},
		{http.MethodPut, "/orders/o1/status"},
		{http.MethodGet, "/admin/audit-logs"},
		{http.MethodGet, "/saved-products"},
		{http.MethodDelete, "/saved-products/s1"},
		{http.MethodPost, "/seller/products"},
		{http.MethodPut, "/admin/products/p1/status"},
	} {
		rec := serve(h, r.method, r.path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", r.method, r.path)
	}
}

// プロフィールが無いユーザーは購入者なので seller/admin のルートは 403
func TestServer_BuyerCannotReachSellerOrAdmin(t *testing.T) {
	profiles := new(profileRepoMock)
	profiles.On("FindByID", mock.Anything, buyerID).Return(model.Profile{}, repository.ErrNotFound)
	_, h := newTestServer(profiles)

	tok := token(t, buyerID)
	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/seller/orders"},
		{http.MethodGet, "/seller/rfqs"},
		{http.MethodPost, "/seller/rfqs/r1/respond"},
		{http.MethodPut, "/orders/o1/status"},
		{http.MethodGet, "/admin/orders"},
		{http.MethodGet, "/seller/products"},
		{http.MethodPost, "/seller/products"},
		{http.MethodDelete, "/seller/products/p1"},
		{http.MethodGet, "/admin/products"},
		{http.MethodPut, "/admin/products/p1/status"},
	} {
		rec := serve(h, r.method, r.path, tok)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", r.method, r.path)
	}
}

func TestServer_SellerCannotReachAdmin(t *testing.T) {
	profiles := new(profileRepoMock)
	profiles.On("FindByID", mock.Anything, sellerID).Return(model.Profile{ID: sellerID, Role: model.RoleSeller}, nil)
	_, h := newTestServer(profiles)

	rec := serve(h, http.MethodGet, "/admin/audit-logs", token(t, sellerID))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(h, http.MethodPut, "/admin/products/p1/status", token(t, sellerID))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
