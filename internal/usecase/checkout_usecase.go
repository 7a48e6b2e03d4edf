package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Shreyr69/indiport/internal/domain/checkout"
	"github.com/Shreyr69/indiport/internal/domain/model"
	"github.com/Shreyr69/indiport/internal/domain/pricing"
	repo "github.com/Shreyr69/indiport/internal/repository"

	"github.com/rs/zerolog"
)

// CheckoutUsecase は /checkout の業務ロジック。
// 途中状態はセッションストアに置き、注文確定まではDBに書かない。
type CheckoutUsecase struct {
	machine    *checkout.Machine
	sessions   CheckoutSessionStore
	lock       PlaceOrderLock
	gateway    PaymentGateway
	placer     *OrderUsecase
	cartItems  repo.CartItemRepository
	products   repo.ProductRepository
	addresses  repo.AddressRepository
	deliveries repo.DeliveryMethodRepository
	policy     pricing.Policy
	currency   string
	ids        IDGenerator
	clock      Clock
	log        zerolog.Logger
}

type CheckoutDeps struct {
	Machine    *checkout.Machine
	Sessions   CheckoutSessionStore
	Lock       PlaceOrderLock
	Gateway    PaymentGateway
	Placer     *OrderUsecase
	CartItems  repo.CartItemRepository
	Products   repo.ProductRepository
	Addresses  repo.AddressRepository
	Deliveries repo.DeliveryMethodRepository
	Policy     pricing.Policy
	Currency   string
	IDs        IDGenerator
	Clock      Clock
	Log        zerolog.Logger
}

func NewCheckoutUsecase(d CheckoutDeps) *CheckoutUsecase {
	return &CheckoutUsecase{
		machine:    d.Machine,
		sessions:   d.Sessions,
		lock:       d.Lock,
		gateway:    d.Gateway,
		placer:     d.Placer,
		cartItems:  d.CartItems,
		products:   d.Products,
		addresses:  d.Addresses,
		deliveries: d.Deliveries,
		policy:     d.Policy,
		currency:   d.Currency,
		ids:        d.IDs,
		clock:      d.Clock,
		log:        d.Log,
	}
}

// 画面に返す現在の状態＋見積もり
type CheckoutView struct {
	State *checkout.State `json:"checkout"`
	Cart  CartOutput      `json:"cart"`
	//配送方法が決まるまでは nil
	Totals         *pricing.Totals `json:"totals,omitempty"`
	PaymentSummary string          `json:"payment_summary,omitempty"`
	//Address から戻った（カートへ）
	Exited bool `json:"exited,omitempty"`
}

// 保存済み住所IDか、その場で入力した住所のどちらか
type AddressChoice struct {
	AddressID string                `json:"address_id"`
	Address   *AddressCreateRequest `json:"address"`
}

type AddressStepInput struct {
	Shipping AddressChoice `json:"shipping"`
	//nil なら配送先と同じ
	Billing *AddressChoice `json:"billing"`
}

type DeliveryStepInput struct {
	DeliveryMethodID    string `json:"delivery_method_id"`
	SpecialInstructions string `json:"special_instructions"`
}

type PaymentStepInput struct {
	Method  model.PaymentMethod `json:"method"`
	Details json.RawMessage     `json:"details"`
}

// ウィジェットを開くのに必要な情報
type PaymentIntent struct {
	KeyID          string          `json:"key_id"`
	GatewayOrderID string          `json:"razorpay_order_id"`
	Amount         int64           `json:"amount"`
	Currency       string          `json:"currency"`
	Receipt        string          `json:"receipt"`
	Totals         pricing.Totals  `json:"totals"`
	Prefill        PaymentPrefill  `json:"prefill"`
	Description    string          `json:"description"`
	Payment        json.RawMessage `json:"payment"`
}

type PaymentPrefill struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// Begin はカートが空でなければ新しいチェックアウトを始める
func (u *CheckoutUsecase) Begin(ctx context.Context, buyerID string) (CheckoutView, error) {
	if buyerID == "" {
		return CheckoutView{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := loadCart(ctx, u.cartItems, u.products, buyerID)
	if err != nil {
		return CheckoutView{}, checkoutError(fmt.Errorf("%w: %v", checkout.ErrRemoteFetch, err))
	}

	st, err := u.machine.Begin(u.ids.NewID(), buyerID, cart.ItemCount, u.clock.Now())
	if err != nil {
		return CheckoutView{}, checkoutError(err)
	}
	if err := u.sessions.Save(ctx, st); err != nil {
		return CheckoutView{}, u.storeError(err)
	}
	return u.view(st, cart), nil
}

func (u *CheckoutUsecase) Get(ctx context.Context, buyerID, checkoutID string) (CheckoutView, error) {
	st, err := u.load(ctx, buyerID, checkoutID)
	if err != nil {
		return CheckoutView{}, err
	}
	return u.viewWithCart(ctx, st)
}

func (u *CheckoutUsecase) SubmitAddress(ctx context.Context, buyerID, checkoutID string, in AddressStepInput) (CheckoutView, error) {
	return u.step(ctx, buyerID, checkoutID, func(st *checkout.State) error {
		shipping, err := u.resolveAddress(ctx, buyerID, in.Shipping)
		if err != nil {
			return err
		}
		var billing *model.UserAddress
		if in.Billing != nil {
			b, err := u.resolveAddress(ctx, buyerID, *in.Billing)
			if err != nil {
				return err
			}
			billing = &b
		}
		return u.machine.CompleteAddress(st, shipping, billing)
	})
}

func (u *CheckoutUsecase) SubmitDelivery(ctx context.Context, buyerID, checkoutID string, in DeliveryStepInput) (CheckoutView, error) {
	return u.step(ctx, buyerID, checkoutID, func(st *checkout.State) error {
		if in.DeliveryMethodID == "" {
			return fmt.Errorf("%w: please select a delivery method", checkout.ErrValidation)
		}
		m, err := u.deliveries.FindByID(ctx, in.DeliveryMethodID)
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: delivery method not found", checkout.ErrValidation)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", checkout.ErrRemoteFetch, err)
		}
		return u.machine.CompleteDelivery(st, m, in.SpecialInstructions)
	})
}

func (u *CheckoutUsecase) SubmitPayment(ctx context.Context, buyerID, checkoutID string, in PaymentStepInput) (CheckoutView, error) {
	return u.step(ctx, buyerID, checkoutID, func(st *checkout.State) error {
		if in.Method == "" {
			return fmt.Errorf("%w: please select a payment method", checkout.ErrValidation)
		}
		details, err := checkout.DecodePayment(in.Method, in.Details)
		if err != nil {
			return err
		}
		return u.machine.CompletePayment(ctx, st, details, u.gateway)
	})
}

func (u *CheckoutUsecase) AcceptTerms(ctx context.Context, buyerID, checkoutID string, accepted bool) (CheckoutView, error) {
	return u.step(ctx, buyerID, checkoutID, func(st *checkout.State) error {
		return u.machine.AcceptTerms(st, accepted)
	})
}

// Back は1つ前へ。Address からならチェックアウトを終える
func (u *CheckoutUsecase) Back(ctx context.Context, buyerID, checkoutID string) (CheckoutView, error) {
	st, err := u.load(ctx, buyerID, checkoutID)
	if err != nil {
		return CheckoutView{}, err
	}
	if st.PaymentInProgress() {
		return CheckoutView{}, checkoutError(checkout.ErrBusy)
	}

	if u.machine.Back(st) {
		if err := u.Abandon(ctx, buyerID, checkoutID); err != nil {
			return CheckoutView{}, err
		}
		return CheckoutView{State: st, Exited: true}, nil
	}

	if err := u.sessions.Save(ctx, st); err != nil {
		return CheckoutView{}, u.storeError(err)
	}
	return u.viewWithCart(ctx, st)
}

// StartPayment は「注文する」。処理中フラグを立ててゲートウェイ注文を作る
func (u *CheckoutUsecase) StartPayment(ctx context.Context, buyerID, checkoutID string) (PaymentIntent, error) {
	st, err := u.load(ctx, buyerID, checkoutID)
	if err != nil {
		return PaymentIntent{}, err
	}
	if err := st.ReadyToPlace(); err != nil {
		return PaymentIntent{}, checkoutError(err)
	}

	token, ok, err := u.lock.Acquire(ctx, st.ID)
	if err != nil {
		return PaymentIntent{}, u.storeError(err)
	}
	if !ok {
		return PaymentIntent{}, checkoutError(checkout.ErrBusy)
	}

	intent, err := u.createGatewayOrder(ctx, st, token)
	if err != nil {
		u.release(ctx, st.ID, token)
		return PaymentIntent{}, err
	}
	return intent, nil
}

func (u *CheckoutUsecase) createGatewayOrder(ctx context.Context, st *checkout.State, token string) (PaymentIntent, error) {
	cart, err := loadCart(ctx, u.cartItems, u.products, st.BuyerID)
	if err != nil {
		return PaymentIntent{}, checkoutError(fmt.Errorf("%w: %v", checkout.ErrRemoteFetch, err))
	}
	if len(cart.Items) == 0 {
		return PaymentIntent{}, checkoutError(checkout.ErrEmptyCart)
	}
	totals := u.policy.Compute(cart.Subtotal, *st.DeliveryMethod).Rounded()
	amount := pricing.MinorUnits(totals.Total)

	gw, err := u.gateway.CreateOrder(ctx, amount, u.currency, st.ID)
	if err != nil {
		u.log.Error().Err(err).Str("checkout_id", st.ID).Int64("amount", amount).Msg("payment gateway order failed")
		return PaymentIntent{}, checkoutError(fmt.Errorf("%w: %v", checkout.ErrPaymentGateway, err))
	}

	st.GatewayOrderID = gw.ID
	st.GatewayAmount = amount
	st.LockToken = token
	if err := u.sessions.Save(ctx, st); err != nil {
		return PaymentIntent{}, u.storeError(err)
	}

	payment, _ := checkout.MarshalPayment(st.Payment)
	return PaymentIntent{
		KeyID:          u.gateway.KeyID(),
		GatewayOrderID: gw.ID,
		Amount:         gw.Amount,
		Currency:       gw.Currency,
		Receipt:        gw.Receipt,
		Totals:         totals,
		Prefill: PaymentPrefill{
			Name:    st.ShippingAddress.FullName,
			Contact: st.ShippingAddress.Phone,
		},
		Description: "Order payment",
		Payment:     payment,
	}, nil
}

// ConfirmPayment はウィジェットの結果を検証して注文を確定する
func (u *CheckoutUsecase) ConfirmPayment(ctx context.Context, buyerID, checkoutID string, conf checkout.PaymentConfirmation) (OrderOutput, error) {
	st, err := u.load(ctx, buyerID, checkoutID)
	if err != nil {
		return OrderOutput{}, err
	}

	//別のゲートウェイ注文の結果は受け付けない（処理中フラグにも触らない）
	if !st.PaymentInProgress() || conf.GatewayOrderID != st.GatewayOrderID {
		u.log.Warn().Str("checkout_id", st.ID).Str("razorpay_order_id", conf.GatewayOrderID).Msg("payment confirmation for unknown gateway order")
		return OrderOutput{}, checkoutError(checkout.ErrPaymentVerification)
	}
	defer u.release(ctx, st.ID, st.LockToken)

	out, err := u.placer.PlaceOrder(ctx, buyerID, st, conf)
	if err != nil {
		return OrderOutput{}, err
	}

	if err := u.sessions.Delete(ctx, st.ID); err != nil {
		u.log.Warn().Err(err).Str("checkout_id", st.ID).Msg("checkout session delete failed")
	}
	u.log.Info().Str("checkout_id", st.ID).Str("order_number", out.OrderNumber).Msg("order placed")
	return out, nil
}

// CancelPayment はウィジェットを閉じたとき。注文は作らない
func (u *CheckoutUsecase) CancelPayment(ctx context.Context, buyerID, checkoutID string) (CheckoutView, error) {
	st, err := u.load(ctx, buyerID, checkoutID)
	if err != nil {
		return CheckoutView{}, err
	}
	token := st.LockToken
	st.GatewayOrderID = ""
	st.GatewayAmount = 0
	st.LockToken = ""
	if err := u.sessions.Save(ctx, st); err != nil {
		return CheckoutView{}, u.storeError(err)
	}
	u.release(ctx, st.ID, token)
	return u.viewWithCart(ctx, st)
}

// Abandon はチェックアウトを捨てる（DBには何も残らない）
func (u *CheckoutUsecase) Abandon(ctx context.Context, buyerID, checkoutID string) error {
	st, err := u.load(ctx, buyerID, checkoutID)
	if err != nil {
		return err
	}
	if err := u.sessions.Delete(ctx, st.ID); err != nil {
		return u.storeError(err)
	}
	u.release(ctx, st.ID, st.LockToken)
	return nil
}

// 読み込み → 遷移 → 保存。遷移が失敗したら保存しない。
// 決済中は pay/cancel まで変更不可
func (u *CheckoutUsecase) step(ctx context.Context, buyerID, checkoutID string, fn func(st *checkout.State) error) (CheckoutView, error) {
	st, err := u.load(ctx, buyerID, checkoutID)
	if err != nil {
		return CheckoutView{}, err
	}
	if st.PaymentInProgress() {
		return CheckoutView{}, checkoutError(checkout.ErrBusy)
	}
	if err := fn(st); err != nil {
		return CheckoutView{}, checkoutError(err)
	}
	if err := u.sessions.Save(ctx, st); err != nil {
		return CheckoutView{}, u.storeError(err)
	}
	return u.viewWithCart(ctx, st)
}

// 本人のチェックアウトだけ。他人のものは「存在しない扱い」
func (u *CheckoutUsecase) load(ctx context.Context, buyerID, checkoutID string) (*checkout.State, error) {
	if buyerID == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if checkoutID == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	st, err := u.sessions.Load(ctx, checkoutID)
	if err != nil {
		if errors.Is(err, checkout.ErrSessionNotFound) {
			return nil, checkoutError(err)
		}
		return nil, u.storeError(err)
	}
	if st.BuyerID != buyerID {
		return nil, checkoutError(checkout.ErrSessionNotFound)
	}
	return st, nil
}

func (u *CheckoutUsecase) resolveAddress(ctx context.Context, buyerID string, c AddressChoice) (model.UserAddress, error) {
	if c.AddressID != "" {
		a, err := u.addresses.FindByID(ctx, c.AddressID)
		if errors.Is(err, repo.ErrNotFound) || (err == nil && a.UserID != buyerID) {
			return model.UserAddress{}, fmt.Errorf("%w: address not found", checkout.ErrValidation)
		}
		if err != nil {
			return model.UserAddress{}, fmt.Errorf("%w: %v", checkout.ErrRemoteFetch, err)
		}
		return a, nil
	}
	if c.Address == nil {
		return model.UserAddress{}, fmt.Errorf("%w: please select or enter an address", checkout.ErrValidation)
	}
	return c.Address.toModel(buyerID), nil
}

func (u *CheckoutUsecase) release(ctx context.Context, id, token string) {
	if err := u.lock.Release(ctx, id, token); err != nil {
		u.log.Warn().Err(err).Str("checkout_id", id).Msg("place order lock release failed")
	}
}

func (u *CheckoutUsecase) storeError(err error) error {
	u.log.Error().Err(err).Msg("checkout session store failed")
	return wrapHTTPError(http.StatusServiceUnavailable, "checkout temporarily unavailable, please retry", err)
}

func (u *CheckoutUsecase) viewWithCart(ctx context.Context, st *checkout.State) (CheckoutView, error) {
	cart, err := loadCart(ctx, u.cartItems, u.products, st.BuyerID)
	if err != nil {
		return CheckoutView{}, checkoutError(fmt.Errorf("%w: %v", checkout.ErrRemoteFetch, err))
	}
	return u.view(st, cart), nil
}

func (u *CheckoutUsecase) view(st *checkout.State, cart CartOutput) CheckoutView {
	v := CheckoutView{State: st, Cart: cart}
	if st.DeliveryMethod != nil {
		t := u.policy.Compute(cart.Subtotal, *st.DeliveryMethod).Rounded()
		v.Totals = &t
	}
	if st.Payment != nil {
		v.PaymentSummary = st.Payment.Describe()
	}
	return v
}
