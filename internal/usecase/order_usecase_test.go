package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Shreyr69/indiport/internal/domain/checkout"
	"github.com/Shreyr69/indiport/internal/domain/model"
	"github.com/Shreyr69/indiport/internal/domain/pricing"
	repo "github.com/Shreyr69/indiport/internal/repository"
	"github.com/Shreyr69/indiport/internal/usecase"
	"github.com/Shreyr69/indiport/internal/validator"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const buyerID = "buyer-1"

func testAddress() model.UserAddress {
	return model.UserAddress{
		ID:           "addr-1",
		UserID:       buyerID,
		FullName:     "Asha Rao",
		Phone:        "98765 43210",
		AddressLine1: "12 MG Road",
		City:         "Bengaluru",
		State:        "Karnataka",
		PostalCode:   "560001",
		Country:      "India",
	}
}

func standardDelivery() model.DeliveryMethod {
	return model.DeliveryMethod{ID: "dm-std", Name: "Standard", BaseCost: decimal.NewFromInt(50), EstimatedDays: 5, IsActive: true}
}

// Review まで進めて規約にも同意した状態
func readyState(t *testing.T, id string) *checkout.State {
	t.Helper()
	m := checkout.NewMachine(validator.NewCheckoutValidator())
	st, err := m.Begin(id, buyerID, 2, testNow)
	require.NoError(t, err)
	require.NoError(t, m.CompleteAddress(st, testAddress(), nil))
	require.NoError(t, m.CompleteDelivery(st, standardDelivery(), "call before delivery"))
	require.NoError(t, m.CompletePayment(context.Background(), st, checkout.UPIDetails{UPIID: "asha@okbank"}, &gatewayStub{}))
	require.NoError(t, m.AcceptTerms(st, true))
	st.GatewayOrderID = "order_GW1"
	return st
}

func testProduct(price string) model.Product {
	return model.Product{
		ID:       "prod-1",
		SellerID: "seller-1",
		Title:    "Cotton Yarn 40s",
		Price:    decimal.RequireFromString(price),
		Unit:     "kg",
		MinOrder: 1,
		Status:   model.ProductStatusActive,
	}
}

var testConf = checkout.PaymentConfirmation{GatewayOrderID: "order_GW1", PaymentID: "pay_1", Signature: "sig"}

type placeOrderFixture struct {
	tx         *TxManagerMock
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	cartItems  *CartItemRepoMock
	products   *ProductRepoMock
	audit      *AuditRepoMock
}

func newPlaceOrderFixture() placeOrderFixture {
	f := placeOrderFixture{
		tx:         new(TxManagerMock),
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		cartItems:  new(CartItemRepoMock),
		products:   new(ProductRepoMock),
		audit:      new(AuditRepoMock),
	}
	f.tx.Repos = &TxReposMock{
		orders:     f.orders,
		orderItems: f.orderItems,
		cartItems:  f.cartItems,
		products:   f.products,
		auditLogs:  f.audit,
	}
	return f
}

func (f placeOrderFixture) usecase(valid bool) *usecase.OrderUsecase {
	return usecase.NewOrderUsecase(
		f.tx,
		verifierFunc(func(string, string, string) bool { return valid }),
		pricing.DefaultPolicy(),
		fixedNumbers{v: "ORD-1"},
		fixedClock{t: testNow},
		zerolog.Nop(),
	)
}

func (f placeOrderFixture) withCart(price string, qty int64) {
	f.cartItems.On("ListByBuyerID", mock.Anything, buyerID).Return([]model.CartItem{
		{ID: "ci-1", BuyerID: buyerID, ProductID: "prod-1", Quantity: qty},
	}, nil)
	f.products.On("FindByIDs", mock.Anything, []string{"prod-1"}).Return([]model.Product{testProduct(price)}, nil)
}

func TestOrderUsecase_PlaceOrder_InvalidSignature_WritesNothing(t *testing.T) {
	f := newPlaceOrderFixture()
	uc := f.usecase(false)

	_, err := uc.PlaceOrder(context.Background(), buyerID, readyState(t, "chk-1"), testConf)

	assert.ErrorIs(t, err, checkout.ErrPaymentVerification)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)

	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderUsecase_PlaceOrder_Success(t *testing.T) {
	ctx := context.Background()
	f := newPlaceOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.withCart("500", 2)

	var created model.Order
	f.orders.On("FindByIdempotencyKey", mock.Anything, buyerID, "chk-1").Return(model.Order{}, false, nil)
	f.orders.On("Create", mock.Anything, mock.AnythingOfType("model.Order")).
		Run(func(args mock.Arguments) { created = args.Get(1).(model.Order) }).
		Return("order-1", nil)
	f.orderItems.On("CreateBulk", mock.Anything, "order-1", mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 1 && items[0].UnitPrice.Equal(decimal.NewFromInt(500)) && items[0].Quantity == 2
	})).Return(nil)
	f.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionPaymentVerified && l.ResourceID == "order-1" && l.ActorUserID == buyerID
	})).Return(nil)
	f.cartItems.On("ClearByBuyerID", mock.Anything, buyerID).Return(nil)

	out, err := f.usecase(true).PlaceOrder(ctx, buyerID, readyState(t, "chk-1"), testConf)
	require.NoError(t, err)

	assert.Equal(t, "order-1", out.ID)
	assert.Equal(t, "ORD-1", out.OrderNumber)
	assert.Equal(t, model.OrderStatusPaid, out.Status)
	assert.Equal(t, "1000", out.Subtotal.String())
	assert.Equal(t, "0", out.ShippingCost.String())
	assert.Equal(t, "180", out.TaxAmount.String())
	assert.Equal(t, "1180", out.TotalAmount.String())
	assert.Len(t, out.Items, 1)

	//冪等キー・決済情報・請求先（= 配送先）
	assert.Equal(t, "chk-1", created.IdempotencyKey)
	assert.Equal(t, "pay_1", created.RazorpayPaymentID)
	assert.Equal(t, "sig", created.RazorpaySignature)
	assert.Equal(t, model.PaymentMethodUPI, created.PaymentMethod)
	assert.Equal(t, created.ShippingAddress, created.BillingAddress)
	assert.Equal(t, "call before delivery", created.SpecialInstructions)

	f.orders.AssertExpectations(t)
	f.orderItems.AssertExpectations(t)
	f.audit.AssertExpectations(t)
	f.cartItems.AssertExpectations(t)
}

func TestOrderUsecase_PlaceOrder_SameCheckoutTwice_ReturnsExistingOrder(t *testing.T) {
	f := newPlaceOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)

	existing := model.Order{ID: "order-1", OrderNumber: "ORD-1", BuyerID: buyerID, Status: model.OrderStatusPaid, IdempotencyKey: "chk-1"}
	f.orders.On("FindByIdempotencyKey", mock.Anything, buyerID, "chk-1").Return(existing, true, nil)
	f.orderItems.On("ListByOrderID", mock.Anything, "order-1").Return([]model.OrderItem{}, nil)

	out, err := f.usecase(true).PlaceOrder(context.Background(), buyerID, readyState(t, "chk-1"), testConf)
	require.NoError(t, err)
	assert.Equal(t, "order-1", out.ID)

	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.cartItems.AssertNotCalled(t, "ClearByBuyerID", mock.Anything, mock.Anything)
}

func TestOrderUsecase_PlaceOrder_ConcurrentDuplicate_ReturnsWinner(t *testing.T) {
	f := newPlaceOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.withCart("500", 2)

	winner := model.Order{ID: "order-9", OrderNumber: "ORD-9", BuyerID: buyerID, Status: model.OrderStatusPaid}
	f.orders.On("FindByIdempotencyKey", mock.Anything, buyerID, "chk-1").Return(model.Order{}, false, nil).Once()
	f.orders.On("Create", mock.Anything, mock.Anything).Return("", repo.ErrDuplicate)
	f.orders.On("FindByIdempotencyKey", mock.Anything, buyerID, "chk-1").Return(winner, true, nil).Once()
	f.orderItems.On("ListByOrderID", mock.Anything, "order-9").Return([]model.OrderItem{}, nil)

	out, err := f.usecase(true).PlaceOrder(context.Background(), buyerID, readyState(t, "chk-1"), testConf)
	require.NoError(t, err)
	assert.Equal(t, "order-9", out.ID)
}

func TestOrderUsecase_PlaceOrder_ItemsFail_IsOrderPersistence(t *testing.T) {
	f := newPlaceOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.withCart("500", 2)

	f.orders.On("FindByIdempotencyKey", mock.Anything, buyerID, "chk-1").Return(model.Order{}, false, nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return("order-1", nil)
	f.orderItems.On("CreateBulk", mock.Anything, "order-1", mock.Anything).Return(errors.New("connection reset"))

	_, err := f.usecase(true).PlaceOrder(context.Background(), buyerID, readyState(t, "chk-1"), testConf)

	assert.ErrorIs(t, err, checkout.ErrOrderPersistence)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, he.Status)
	assert.Contains(t, he.Message, "contact support")

	//カートは残る
	f.cartItems.AssertNotCalled(t, "ClearByBuyerID", mock.Anything, mock.Anything)
}

func TestOrderUsecase_PlaceOrder_EmptyCart(t *testing.T) {
	f := newPlaceOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByIdempotencyKey", mock.Anything, buyerID, "chk-1").Return(model.Order{}, false, nil)
	f.cartItems.On("ListByBuyerID", mock.Anything, buyerID).Return([]model.CartItem{}, nil)
	f.products.On("FindByIDs", mock.Anything, mock.Anything).Return([]model.Product{}, nil)

	_, err := f.usecase(true).PlaceOrder(context.Background(), buyerID, readyState(t, "chk-1"), testConf)
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
}

func TestOrderUsecase_PlaceOrder_TermsNotAccepted(t *testing.T) {
	f := newPlaceOrderFixture()
	st := readyState(t, "chk-1")
	st.TermsAccepted = false

	_, err := f.usecase(true).PlaceOrder(context.Background(), buyerID, st, testConf)
	assert.ErrorIs(t, err, checkout.ErrTermsNotAccepted)
	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestOrderUsecase_PlaceOrder_OtherBuyersCheckout(t *testing.T) {
	f := newPlaceOrderFixture()

	_, err := f.usecase(true).PlaceOrder(context.Background(), "buyer-2", readyState(t, "chk-1"), testConf)
	assert.ErrorIs(t, err, checkout.ErrSessionNotFound)
}

func TestOrderUsecase_GetMyOrderDetail_OtherBuyer_NotFound(t *testing.T) {
	f := newPlaceOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByID", mock.Anything, "order-1").Return(model.Order{ID: "order-1", BuyerID: "buyer-2"}, nil)

	_, err := f.usecase(true).GetMyOrderDetail(context.Background(), buyerID, "order-1")
	assertErrContains(t, err, "not found")
}

func TestOrderUsecase_ListSellerOrders_OnlyOwnItems(t *testing.T) {
	f := newPlaceOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)

	filter := repo.OrderListFilter{Page: 1, Limit: 20}
	f.orders.On("ListBySellerID", mock.Anything, "seller-1", filter).Return([]model.Order{{ID: "order-1"}}, int64(1), nil)
	f.orderItems.On("ListByOrderID", mock.Anything, "order-1").Return([]model.OrderItem{
		{ProductID: "prod-1", SellerID: "seller-1"},
		{ProductID: "prod-2", SellerID: "seller-2"},
	}, nil)

	outs, err := f.usecase(true).ListSellerOrders(context.Background(), "seller-1", filter)
	require.NoError(t, err)
	require.Len(t, outs, 1)
	require.Len(t, outs[0].Items, 1)
	assert.Equal(t, "prod-1", outs[0].Items[0].ProductID)
}
