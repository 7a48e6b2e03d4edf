package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Shreyr69/indiport/internal/domain/checkout"
	"github.com/Shreyr69/indiport/internal/domain/model"
	"github.com/Shreyr69/indiport/internal/domain/pricing"
	repo "github.com/Shreyr69/indiport/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// 決済結果の署名を確かめる約束
type PaymentVerifier interface {
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
}

type OrderUsecase struct {
	tx       repo.TransactionManager
	verifier PaymentVerifier
	policy   pricing.Policy
	numbers  OrderNumberGenerator
	clock    Clock
	log      zerolog.Logger
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	verifier PaymentVerifier,
	policy pricing.Policy,
	numbers OrderNumberGenerator,
	clock Clock,
	log zerolog.Logger,
) *OrderUsecase {
	return &OrderUsecase{
		tx:       tx,
		verifier: verifier,
		policy:   policy,
		numbers:  numbers,
		clock:    clock,
		log:      log,
	}
}

type OrderItemOutput struct {
	ProductID  string          `json:"product_id"`
	SellerID   string          `json:"seller_id"`
	Title      string          `json:"title"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int64           `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type OrderOutput struct {
	ID                  string                `json:"id"`
	OrderNumber         string                `json:"order_number"`
	BuyerID             string                `json:"buyer_id"`
	Status              model.OrderStatus     `json:"status"`
	Subtotal            decimal.Decimal       `json:"subtotal"`
	ShippingCost        decimal.Decimal       `json:"shipping_cost"`
	TaxAmount           decimal.Decimal       `json:"tax_amount"`
	TotalAmount         decimal.Decimal       `json:"total_amount"`
	ShippingAddress     model.AddressSnapshot `json:"shipping_address"`
	BillingAddress      model.AddressSnapshot `json:"billing_address"`
	DeliveryMethodID    string                `json:"delivery_method_id"`
	SpecialInstructions string                `json:"special_instructions"`
	PaymentMethod       model.PaymentMethod   `json:"payment_method"`
	RazorpayOrderID     string                `json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID   string                `json:"razorpay_payment_id,omitempty"`
	PaidAmount          decimal.Decimal       `json:"paid_amount"`
	AmountMismatch      bool                  `json:"amount_mismatch"`
	CreatedAt           time.Time             `json:"created_at"`
	Items               []OrderItemOutput     `json:"items"`
}

// PlaceOrder は決済確認済みのチェックアウトを注文にする。
//  1. 署名検証（失敗したら何も書かない）
//  2. 1トランザクションで ヘッダ→明細→カート削除
//
// チェックアウトIDを冪等キーにするので、同じチェックアウトからは1件しかできない。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, buyerID string, st *checkout.State, conf checkout.PaymentConfirmation) (OrderOutput, error) {
	if buyerID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if st == nil || st.BuyerID != buyerID {
		return OrderOutput{}, checkoutError(checkout.ErrSessionNotFound)
	}
	if err := st.ReadyToPlace(); err != nil {
		return OrderOutput{}, checkoutError(err)
	}

	//署名検証が先
	if !u.verifier.VerifySignature(conf.GatewayOrderID, conf.PaymentID, conf.Signature) {
		u.log.Warn().
			Str("checkout_id", st.ID).
			Str("buyer_id", buyerID).
			Str("razorpay_order_id", conf.GatewayOrderID).
			Msg("payment signature verification failed")
		return OrderOutput{}, checkoutError(checkout.ErrPaymentVerification)
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, buyerID, st.ID)
		if err != nil {
			return err
		}
		if found {
			items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return err
			}
			out = toOrderOutput(existing, items)
			return nil
		}

		//カートと現在価格を読み直して再計算
		cart, err := loadCart(ctx, r.CartItems(), r.Products(), buyerID)
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return checkout.ErrEmptyCart
		}
		totals := u.policy.Compute(cart.Subtotal, *st.DeliveryMethod).Rounded()

		//請求額と違っても注文は作る。差分は印を付けて残す
		paid := totals.Total
		mismatch := false
		if st.GatewayAmount > 0 && pricing.MinorUnits(totals.Total) != st.GatewayAmount {
			paid = decimal.New(st.GatewayAmount, -pricing.CurrencyPlaces)
			mismatch = true
			u.log.Warn().
				Str("checkout_id", st.ID).
				Str("razorpay_order_id", conf.GatewayOrderID).
				Int64("charged", st.GatewayAmount).
				Int64("order_total", pricing.MinorUnits(totals.Total)).
				Msg("order total differs from charged amount")
		}

		now := u.clock.Now()
		order := model.Order{
			OrderNumber:         u.numbers.Next(now),
			BuyerID:             buyerID,
			Subtotal:            totals.Subtotal,
			ShippingCost:        totals.ShippingCost,
			TaxAmount:           totals.TaxAmount,
			TotalAmount:         totals.Total,
			ShippingAddress:     st.ShippingAddress.Snapshot(),
			BillingAddress:      st.Billing().Snapshot(),
			DeliveryMethodID:    st.DeliveryMethod.ID,
			SpecialInstructions: st.SpecialInstructions,
			PaymentMethod:       st.Payment.Method(),
			Status:              model.OrderStatusPaid,
			RazorpayOrderID:     conf.GatewayOrderID,
			RazorpayPaymentID:   conf.PaymentID,
			RazorpaySignature:   conf.Signature,
			PaidAmount:          paid,
			AmountMismatch:      mismatch,
			IdempotencyKey:      st.ID,
			CreatedAt:           now,
			UpdatedAt:           now,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return err
		}
		order.ID = orderID

		//明細（単価はこの時点の価格で固定）
		orderItems := make([]model.OrderItem, 0, len(cart.Items))
		for _, it := range cart.Items {
			orderItems = append(orderItems, model.OrderItem{
				ProductID:  it.ProductID,
				SellerID:   it.SellerID,
				TitleSnap:  it.Title,
				Quantity:   it.Quantity,
				UnitPrice:  it.UnitPrice,
				TotalPrice: it.LineTotal.Round(pricing.CurrencyPlaces),
				CreatedAt:  now,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return err
		}

		// ★監査ログ（PAYMENT_VERIFIED）
		after, _ := json.Marshal(map[string]string{
			"status":              string(model.OrderStatusPaid),
			"razorpay_order_id":   conf.GatewayOrderID,
			"razorpay_payment_id": conf.PaymentID,
		})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  buyerID,
			Action:       model.AuditActionPaymentVerified,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			AfterJSON:    string(after),
			CreatedAt:    now,
		}); err != nil {
			return err
		}

		//注文できたのでカートを空に
		if err := r.CartItems().ClearByBuyerID(ctx, buyerID); err != nil {
			return err
		}

		out = toOrderOutput(order, orderItems)
		return nil
	})

	if err == nil {
		return out, nil
	}

	//同時に同じチェックアウトで確定された → 先にできた方を返す
	if errors.Is(err, repo.ErrDuplicate) {
		if existing, ok := u.findExisting(ctx, buyerID, st.ID); ok {
			return existing, nil
		}
	}
	if errors.Is(err, checkout.ErrEmptyCart) {
		return OrderOutput{}, checkoutError(err)
	}

	u.log.Error().Err(err).
		Str("checkout_id", st.ID).
		Str("buyer_id", buyerID).
		Str("razorpay_payment_id", conf.PaymentID).
		Msg("order persistence failed after verified payment")
	return OrderOutput{}, checkoutError(fmt.Errorf("%w: %v", checkout.ErrOrderPersistence, err))
}

func (u *OrderUsecase) findExisting(ctx context.Context, buyerID, key string) (OrderOutput, bool) {
	var out OrderOutput
	found := false
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, ok, err := r.Orders().FindByIdempotencyKey(ctx, buyerID, key)
		if err != nil || !ok {
			return err
		}
		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return err
		}
		out = toOrderOutput(o, items)
		found = true
		return nil
	})
	return out, err == nil && found
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, buyerID string, page, limit int) ([]OrderOutput, error) {
	if buyerID == "" {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByBuyerID(ctx, buyerID, page, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, buyerID string, orderID string) (OrderOutput, error) {
	if buyerID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.BuyerID != buyerID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// sellerの注文一覧。明細は自分の商品だけ見せる
func (u *OrderUsecase) ListSellerOrders(ctx context.Context, sellerID string, f repo.OrderListFilter) ([]OrderOutput, error) {
	if sellerID == "" {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListBySellerID(ctx, sellerID, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			mine := make([]model.OrderItem, 0, len(items))
			for _, it := range items {
				if it.SellerID == sellerID {
					mine = append(mine, it)
				}
			}
			outs = append(outs, toOrderOutput(o, mine))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID:  it.ProductID,
			SellerID:   it.SellerID,
			Title:      it.TitleSnap,
			UnitPrice:  it.UnitPrice,
			Quantity:   it.Quantity,
			TotalPrice: it.TotalPrice,
		})
	}

	return OrderOutput{
		ID:                  o.ID,
		OrderNumber:         o.OrderNumber,
		BuyerID:             o.BuyerID,
		Status:              o.Status,
		Subtotal:            o.Subtotal,
		ShippingCost:        o.ShippingCost,
		TaxAmount:           o.TaxAmount,
		TotalAmount:         o.TotalAmount,
		ShippingAddress:     o.ShippingAddress,
		BillingAddress:      o.BillingAddress,
		DeliveryMethodID:    o.DeliveryMethodID,
		SpecialInstructions: o.SpecialInstructions,
		PaymentMethod:       o.PaymentMethod,
		RazorpayOrderID:     o.RazorpayOrderID,
		RazorpayPaymentID:   o.RazorpayPaymentID,
		PaidAmount:          o.PaidAmount,
		AmountMismatch:      o.AmountMismatch,
		CreatedAt:           o.CreatedAt,
		Items:               outItems,
	}
}
