package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Shreyr69/indiport/internal/domain/checkout"
)

// Razorpay の Orders API と署名検証。
// 鍵シークレットはサーバー側だけで持つ。
type RazorpayClient struct {
	keyID       string
	keySecret   string
	apiBase     string
	checkoutURL string
	http        *http.Client
}

type RazorpayConfig struct {
	KeyID       string
	KeySecret   string
	APIBase     string
	CheckoutURL string
	Timeout     time.Duration
}

func NewRazorpayClient(cfg RazorpayConfig) *RazorpayClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RazorpayClient{
		keyID:       cfg.KeyID,
		keySecret:   cfg.KeySecret,
		apiBase:     strings.TrimRight(cfg.APIBase, "/"),
		checkoutURL: cfg.CheckoutURL,
		http:        &http.Client{Timeout: timeout},
	}
}

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

// 公開鍵（ブラウザのウィジェットに渡す）
func (c *RazorpayClient) KeyID() string { return c.keyID }

// CreateOrder は金額（最小通貨単位、INRならパイサ）で注文を作る。
func (c *RazorpayClient) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (checkout.GatewayOrder, error) {
	if amountMinor <= 0 {
		return checkout.GatewayOrder{}, fmt.Errorf("razorpay: amount must be positive")
	}

	body, err := json.Marshal(createOrderRequest{
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
		Notes:    map[string]string{"order_id": receipt},
	})
	if err != nil {
		return checkout.GatewayOrder{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return checkout.GatewayOrder{}, err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return checkout.GatewayOrder{}, fmt.Errorf("razorpay: create order: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return checkout.GatewayOrder{}, fmt.Errorf("razorpay: create order: status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out checkout.GatewayOrder
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return checkout.GatewayOrder{}, fmt.Errorf("razorpay: decode order: %w", err)
	}
	return out, nil
}

// VerifySignature は HMAC-SHA256(order_id|payment_id) を定数時間で比べる。
func (c *RazorpayClient) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	if gatewayOrderID == "" || paymentID == "" || signature == "" {
		return false
	}
	expected := Signature(c.keySecret, gatewayOrderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// Load は決済ウィジェットのスクリプトが取れるかを見る。
func (c *RazorpayClient) Load(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.checkoutURL, nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("razorpay: load checkout script: %w", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("razorpay: load checkout script: status %d", res.StatusCode)
	}
	return nil
}

// 署名（hex）
func Signature(secret, gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
