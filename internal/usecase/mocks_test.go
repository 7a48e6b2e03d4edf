package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Shreyr69/indiport/internal/domain/checkout"
	"github.com/Shreyr69/indiport/internal/domain/model"
	repo "github.com/Shreyr69/indiport/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	cartItems  repo.CartItemRepository
	products   repo.ProductRepository
	auditLogs  repo.AuditLogRepository
	rfqs       repo.RFQRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *TxReposMock) CartItems() repo.CartItemRepository   { return r.cartItems }
func (r *TxReposMock) Products() repo.ProductRepository     { return r.products }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository   { return r.auditLogs }
func (r *TxReposMock) RFQs() repo.RFQRepository             { return r.rfqs }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByBuyerID(ctx context.Context, buyerID string, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, buyerID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) ListBySellerID(ctx context.Context, sellerID string, f repo.OrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, sellerID, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (string, error) {
	args := m.Called(ctx, order)
	return args.String(0), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) FindByIdempotencyKey(ctx context.Context, buyerID string, key string) (model.Order, bool, error) {
	args := m.Called(ctx, buyerID, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByBuyerID(ctx context.Context, buyerID string) ([]model.CartItem, error) {
	args := m.Called(ctx, buyerID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) UpsertByBuyerAndProduct(ctx context.Context, buyerID string, productID string, addQty int64) error {
	args := m.Called(ctx, buyerID, productID, addQty)
	return args.Error(0)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID string, qty int64) error {
	args := m.Called(ctx, cartItemID, qty)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, cartItemID string) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *CartItemRepoMock) FindByID(ctx context.Context, cartItemID string) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID)
	ci, _ := args.Get(0).(model.CartItem)
	return ci, args.Error(1)
}

func (m *CartItemRepoMock) IsOwnedByUser(ctx context.Context, cartItemID string, buyerID string) (bool, error) {
	args := m.Called(ctx, cartItemID, buyerID)
	return args.Bool(0), args.Error(1)
}

func (m *CartItemRepoMock) ClearByBuyerID(ctx context.Context, buyerID string) error {
	args := m.Called(ctx, buyerID)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) ListBySellerID(ctx context.Context, sellerID string) ([]model.Product, error) {
	args := m.Called(ctx, sellerID)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) ListByStatus(ctx context.Context, status model.ProductStatus) ([]model.Product, error) {
	args := m.Called(ctx, status)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

func (m *ProductRepoMock) DeleteBySeller(ctx context.Context, id, sellerID string) error {
	args := m.Called(ctx, id, sellerID)
	return args.Error(0)
}

func (m *ProductRepoMock) UpdateStatus(ctx context.Context, id string, status model.ProductStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type SavedProductRepoMock struct{ mock.Mock }

func (m *SavedProductRepoMock) ListByBuyerID(ctx context.Context, buyerID string) ([]model.SavedProduct, error) {
	args := m.Called(ctx, buyerID)
	list, _ := args.Get(0).([]model.SavedProduct)
	return list, args.Error(1)
}

func (m *SavedProductRepoMock) Create(ctx context.Context, sp model.SavedProduct) (model.SavedProduct, error) {
	args := m.Called(ctx, sp)
	out, _ := args.Get(0).(model.SavedProduct)
	return out, args.Error(1)
}

func (m *SavedProductRepoMock) DeleteByBuyer(ctx context.Context, id, buyerID string) error {
	args := m.Called(ctx, id, buyerID)
	return args.Error(0)
}

type CategoryRepoMock struct{ mock.Mock }

func (m *CategoryRepoMock) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Category)
	return list, args.Error(1)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type DeliveryRepoMock struct{ mock.Mock }

func (m *DeliveryRepoMock) ListActive(ctx context.Context) ([]model.DeliveryMethod, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.DeliveryMethod)
	return list, args.Error(1)
}

func (m *DeliveryRepoMock) FindByID(ctx context.Context, id string) (model.DeliveryMethod, error) {
	args := m.Called(ctx, id)
	dm, _ := args.Get(0).(model.DeliveryMethod)
	return dm, args.Error(1)
}

type AddressRepoMock struct{ mock.Mock }

func (m *AddressRepoMock) Create(ctx context.Context, address model.UserAddress) (model.UserAddress, error) {
	args := m.Called(ctx, address)
	a, _ := args.Get(0).(model.UserAddress)
	return a, args.Error(1)
}

func (m *AddressRepoMock) ListByUserID(ctx context.Context, userID string) ([]model.UserAddress, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]model.UserAddress)
	return list, args.Error(1)
}

func (m *AddressRepoMock) FindByID(ctx context.Context, addressID string) (model.UserAddress, error) {
	args := m.Called(ctx, addressID)
	a, _ := args.Get(0).(model.UserAddress)
	return a, args.Error(1)
}

func (m *AddressRepoMock) IsOwnedByUser(ctx context.Context, addressID, userID string) (bool, error) {
	args := m.Called(ctx, addressID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *AddressRepoMock) SetDefault(ctx context.Context, userID, addressID string) error {
	args := m.Called(ctx, userID, addressID)
	return args.Error(0)
}

type RFQRepoMock struct{ mock.Mock }

func (m *RFQRepoMock) Create(ctx context.Context, rfq model.RFQ) (model.RFQ, error) {
	args := m.Called(ctx, rfq)
	r, _ := args.Get(0).(model.RFQ)
	return r, args.Error(1)
}

func (m *RFQRepoMock) FindByID(ctx context.Context, id string) (model.RFQ, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(model.RFQ)
	return r, args.Error(1)
}

func (m *RFQRepoMock) ListByBuyerID(ctx context.Context, buyerID string) ([]model.RFQ, error) {
	args := m.Called(ctx, buyerID)
	list, _ := args.Get(0).([]model.RFQ)
	return list, args.Error(1)
}

func (m *RFQRepoMock) ListBySellerID(ctx context.Context, sellerID string) ([]model.RFQ, error) {
	args := m.Called(ctx, sellerID)
	list, _ := args.Get(0).([]model.RFQ)
	return list, args.Error(1)
}

func (m *RFQRepoMock) Update(ctx context.Context, rfq model.RFQ, from model.RFQStatus) (bool, error) {
	args := m.Called(ctx, rfq, from)
	return args.Bool(0), args.Error(1)
}

type ReviewRepoMock struct{ mock.Mock }

func (m *ReviewRepoMock) Create(ctx context.Context, review model.Review) (model.Review, error) {
	args := m.Called(ctx, review)
	r, _ := args.Get(0).(model.Review)
	return r, args.Error(1)
}

func (m *ReviewRepoMock) ListByProductID(ctx context.Context, productID string) ([]model.Review, error) {
	args := m.Called(ctx, productID)
	list, _ := args.Get(0).([]model.Review)
	return list, args.Error(1)
}

func (m *ReviewRepoMock) Summary(ctx context.Context, productID string) (repo.RatingSummary, error) {
	args := m.Called(ctx, productID)
	s, _ := args.Get(0).(repo.RatingSummary)
	return s, args.Error(1)
}

var (
	_ repo.OrderRepository          = (*OrderRepoMock)(nil)
	_ repo.OrderItemRepository      = (*OrderItemRepoMock)(nil)
	_ repo.CartItemRepository       = (*CartItemRepoMock)(nil)
	_ repo.ProductRepository        = (*ProductRepoMock)(nil)
	_ repo.SavedProductRepository   = (*SavedProductRepoMock)(nil)
	_ repo.CategoryRepository       = (*CategoryRepoMock)(nil)
	_ repo.AuditLogRepository       = (*AuditRepoMock)(nil)
	_ repo.DeliveryMethodRepository = (*DeliveryRepoMock)(nil)
	_ repo.AddressRepository        = (*AddressRepoMock)(nil)
	_ repo.RFQRepository            = (*RFQRepoMock)(nil)
	_ repo.ReviewRepository         = (*ReviewRepoMock)(nil)
)

// =====================
// ports
// =====================

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type seqIDs struct{ n int }

func (g *seqIDs) NewID() string {
	g.n++
	return "chk-" + string(rune('0'+g.n))
}

type fixedNumbers struct{ v string }

func (g fixedNumbers) Next(time.Time) string { return g.v }

type verifierFunc func(gatewayOrderID, paymentID, signature string) bool

func (f verifierFunc) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return f(gatewayOrderID, paymentID, signature)
}

// 決済ゲートウェイのスタブ
type gatewayStub struct {
	loadErr   error
	createErr error
	created   []int64
	valid     bool
}

func (g *gatewayStub) Load(ctx context.Context) error { return g.loadErr }
func (g *gatewayStub) KeyID() string                  { return "rzp_test_key" }

func (g *gatewayStub) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (checkout.GatewayOrder, error) {
	if g.createErr != nil {
		return checkout.GatewayOrder{}, g.createErr
	}
	g.created = append(g.created, amountMinor)
	return checkout.GatewayOrder{ID: "order_GW1", Amount: amountMinor, Currency: currency, Receipt: receipt}, nil
}

func (g *gatewayStub) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return g.valid
}

// =====================
// helper
// =====================

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}
