package validator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Shreyr69/indiport/internal/domain/checkout"
	"github.com/Shreyr69/indiport/internal/domain/model"
)

const (
	minPhoneDigits  = 10
	minPostalLength = 6
)

type checkoutValidator struct{}

// Machine には interface で渡す
func NewCheckoutValidator() checkout.Validator {
	return checkoutValidator{}
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", checkout.ErrValidation, msg)
}

// 住所入力を検証
func (checkoutValidator) ValidateAddress(a model.UserAddress) error {
	return ValidateAddress(a)
}

// 支払い方法ごとの必須項目を検証
func (checkoutValidator) ValidatePayment(p checkout.PaymentDetails) error {
	return ValidatePaymentDetails(p)
}

func ValidateAddress(a model.UserAddress) error {
	if strings.TrimSpace(a.FullName) == "" {
		return invalid("full name is required")
	}
	if countDigits(a.Phone) < minPhoneDigits {
		return invalid("phone number must have at least 10 digits")
	}
	if strings.TrimSpace(a.AddressLine1) == "" {
		return invalid("address line 1 is required")
	}
	if strings.TrimSpace(a.City) == "" {
		return invalid("city is required")
	}
	if strings.TrimSpace(a.State) == "" {
		return invalid("state is required")
	}
	if len(strings.TrimSpace(a.PostalCode)) < minPostalLength {
		return invalid("postal code must be at least 6 characters")
	}
	if strings.TrimSpace(a.Country) == "" {
		return invalid("country is required")
	}
	return nil
}

func ValidatePaymentDetails(p checkout.PaymentDetails) error {
	switch d := p.(type) {
	case checkout.CardDetails:
		// 生のカード入力は4項目とも必須
		if strings.TrimSpace(d.Number) == "" || strings.TrimSpace(d.Expiry) == "" ||
			strings.TrimSpace(d.CVV) == "" || strings.TrimSpace(d.HolderName) == "" {
			return invalid("please fill in all card details")
		}
	case checkout.UPIDetails:
		if strings.TrimSpace(d.UPIID) == "" {
			return invalid("please enter your UPI ID")
		}
	case checkout.NetBankingDetails:
		if strings.TrimSpace(d.Bank) == "" {
			return invalid("please select your bank")
		}
	case checkout.WalletDetails:
		//入力なし
	case nil:
		return invalid("payment method is required")
	default:
		return invalid("unsupported payment method")
	}
	return nil
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
