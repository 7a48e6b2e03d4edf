package usecase

import (
	"context"
	"time"

	"github.com/Shreyr69/indiport/internal/domain/checkout"
)

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// 注文番号を作る約束
type OrderNumberGenerator interface {
	Next(now time.Time) string
}

// チェックアウト途中の状態の置き場所（期限付き）
type CheckoutSessionStore interface {
	Save(ctx context.Context, st *checkout.State) error
	Load(ctx context.Context, id string) (*checkout.State, error)
	Delete(ctx context.Context, id string) error
}

// 「注文する」処理中フラグ
// 取れたら解放用のトークンを返す。解放はそのトークンを持つ人だけ
type PlaceOrderLock interface {
	Acquire(ctx context.Context, checkoutID string) (token string, ok bool, err error)
	Release(ctx context.Context, checkoutID, token string) error
}

// 決済ゲートウェイ
type PaymentGateway interface {
	checkout.WidgetLoader
	KeyID() string
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (checkout.GatewayOrder, error)
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
}
