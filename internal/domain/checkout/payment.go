package checkout

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Shreyr69/indiport/internal/domain/model"
)

// 支払い方法ごとの入力。方法ごとに必要な項目が違うので型を分ける。
type PaymentDetails interface {
	Method() model.PaymentMethod
	Describe() string
	isPaymentDetails()
}

type CardDetails struct {
	Number     string `json:"card_number,omitempty"`
	Last4      string `json:"last4,omitempty"`
	Expiry     string `json:"expiry_date"`
	CVV        string `json:"cvv,omitempty"`
	HolderName string `json:"cardholder_name"`
}

func (CardDetails) Method() model.PaymentMethod { return model.PaymentMethodCard }
func (c CardDetails) Describe() string {
	return "Credit/Debit Card ending in " + c.last4()
}
func (CardDetails) isPaymentDetails() {}

func (c CardDetails) last4() string {
	if c.Last4 != "" {
		return c.Last4
	}
	n := strings.ReplaceAll(c.Number, " ", "")
	if len(n) <= 4 {
		return n
	}
	return n[len(n)-4:]
}

// Masked はカード番号とCVVを捨てて下4桁だけ残す。セッションにはこれを置く。
func (c CardDetails) Masked() CardDetails {
	return CardDetails{
		Last4:      c.last4(),
		Expiry:     c.Expiry,
		HolderName: c.HolderName,
	}
}

type UPIDetails struct {
	UPIID string `json:"upi_id"`
}

func (UPIDetails) Method() model.PaymentMethod { return model.PaymentMethodUPI }
func (u UPIDetails) Describe() string          { return "UPI - " + u.UPIID }
func (UPIDetails) isPaymentDetails()           {}

type NetBankingDetails struct {
	Bank string `json:"selected_bank"`
}

func (NetBankingDetails) Method() model.PaymentMethod { return model.PaymentMethodNetBanking }
func (n NetBankingDetails) Describe() string          { return "Net Banking - " + n.Bank }
func (NetBankingDetails) isPaymentDetails()           {}

type WalletDetails struct{}

func (WalletDetails) Method() model.PaymentMethod { return model.PaymentMethodWallet }
func (WalletDetails) Describe() string            { return "Digital Wallet" }
func (WalletDetails) isPaymentDetails()           {}

// JSON上は {"method": "...", "details": {...}} で持つ
type paymentEnvelope struct {
	Method  model.PaymentMethod `json:"method"`
	Details json.RawMessage     `json:"details,omitempty"`
}

func MarshalPayment(p PaymentDetails) ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(paymentEnvelope{Method: p.Method(), Details: raw})
}

func UnmarshalPayment(data []byte) (PaymentDetails, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var env paymentEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return DecodePayment(env.Method, env.Details)
}

// DecodePayment は method をキーに details を対応する型へ読み込む。
func DecodePayment(method model.PaymentMethod, details json.RawMessage) (PaymentDetails, error) {
	switch method {
	case model.PaymentMethodCard:
		var c CardDetails
		if err := decodeDetails(details, &c); err != nil {
			return nil, err
		}
		return c, nil
	case model.PaymentMethodUPI:
		var u UPIDetails
		if err := decodeDetails(details, &u); err != nil {
			return nil, err
		}
		return u, nil
	case model.PaymentMethodNetBanking:
		var n NetBankingDetails
		if err := decodeDetails(details, &n); err != nil {
			return nil, err
		}
		return n, nil
	case model.PaymentMethodWallet:
		return WalletDetails{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, method)
	}
}

func decodeDetails(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: invalid payment details", ErrValidation)
	}
	return nil
}

// 決済ゲートウェイ側の注文（金額は最小通貨単位）
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// ウィジェットから戻る決済結果
type PaymentConfirmation struct {
	GatewayOrderID string `json:"razorpay_order_id"`
	PaymentID      string `json:"razorpay_payment_id"`
	Signature      string `json:"razorpay_signature"`
}
