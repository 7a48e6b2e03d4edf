package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Shreyr69/indiport/internal/domain/model"
)

// 入力チェックの約束（実装は validator パッケージ）
type Validator interface {
	ValidateAddress(a model.UserAddress) error
	ValidatePayment(p PaymentDetails) error
}

// 決済ウィジェットの準備。失敗は入力エラーとは別扱い。
type WidgetLoader interface {
	Load(ctx context.Context) error
}

// Machine は Address → Delivery → Payment → Review を順番に進める。
// 飛ばし・分岐はなし。
type Machine struct {
	validator Validator
}

func NewMachine(v Validator) *Machine {
	return &Machine{validator: v}
}

// Begin はカートが空でなければ Address から始める。
func (m *Machine) Begin(id, buyerID string, itemCount int64, now time.Time) (*State, error) {
	if itemCount <= 0 {
		return nil, ErrEmptyCart
	}
	return &State{
		ID:          id,
		BuyerID:     buyerID,
		CurrentStep: StepAddress,
		CreatedAt:   now,
	}, nil
}

func (m *Machine) CompleteAddress(st *State, shipping model.UserAddress, billing *model.UserAddress) error {
	if st.CurrentStep != StepAddress {
		return ErrStepOrder
	}
	if err := m.validator.ValidateAddress(shipping); err != nil {
		return err
	}
	if billing != nil {
		if err := m.validator.ValidateAddress(*billing); err != nil {
			return err
		}
	}

	s := shipping
	st.ShippingAddress = &s
	if billing != nil {
		b := *billing
		st.BillingAddress = &b
	} else {
		st.BillingAddress = nil
	}
	st.CurrentStep = StepDelivery
	return nil
}

func (m *Machine) CompleteDelivery(st *State, method model.DeliveryMethod, instructions string) error {
	if st.CurrentStep != StepDelivery {
		return ErrStepOrder
	}
	if method.ID == "" || !method.IsActive {
		return fmt.Errorf("%w: delivery method is not available", ErrValidation)
	}

	dm := method
	st.DeliveryMethod = &dm
	st.SpecialInstructions = strings.TrimSpace(instructions)
	st.CurrentStep = StepPayment
	return nil
}

// CompletePayment は入力チェック → ウィジェット準備の順。
// カードは下4桁だけ残す。
func (m *Machine) CompletePayment(ctx context.Context, st *State, details PaymentDetails, widget WidgetLoader) error {
	if st.CurrentStep != StepPayment {
		return ErrStepOrder
	}
	if details == nil {
		return fmt.Errorf("%w: payment method is required", ErrValidation)
	}
	if err := m.validator.ValidatePayment(details); err != nil {
		return err
	}
	if err := widget.Load(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	if card, ok := details.(CardDetails); ok {
		details = card.Masked()
	}
	st.Payment = details
	st.CurrentStep = StepReview
	return nil
}

func (m *Machine) AcceptTerms(st *State, accepted bool) error {
	if st.CurrentStep != StepReview {
		return ErrStepOrder
	}
	st.TermsAccepted = accepted
	return nil
}

// Back は1つ前に戻る。入力済みの値は消さない（規約同意だけは取り消す）。
// Address で戻るとチェックアウト終了（カートへ）なので true を返す。
func (m *Machine) Back(st *State) bool {
	if st.CurrentStep == StepAddress {
		return true
	}
	if st.CurrentStep == StepReview {
		st.TermsAccepted = false
	}
	st.CurrentStep--
	return false
}
