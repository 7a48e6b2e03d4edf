package checkout

import "errors"

// チェックアウトのエラー種別。HTTP層で status に変換する。
var (
	// 入力不足・形式不正。ステップは進まない
	ErrValidation = errors.New("validation error")
	// 配送方法や住所一覧が取れない（再試行可）
	ErrRemoteFetch = errors.New("remote fetch failed")
	// 決済ウィジェットの読み込み失敗・ユーザーのキャンセル
	ErrPaymentGateway = errors.New("payment gateway error")
	// 署名不一致。注文は作らない
	ErrPaymentVerification = errors.New("payment verification failed")
	// 注文ヘッダ/明細の書き込み失敗
	ErrOrderPersistence = errors.New("order persistence failed")

	ErrEmptyCart        = errors.New("cart is empty")
	ErrStepOrder        = errors.New("checkout step out of order")
	ErrTermsNotAccepted = errors.New("terms not accepted")
	ErrBusy             = errors.New("order placement already in progress")
	ErrSessionNotFound  = errors.New("checkout session not found")
)
