package checkout

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Shreyr69/indiport/internal/domain/model"
)

type Step int

const (
	StepAddress Step = iota
	StepDelivery
	StepPayment
	StepReview
)

var stepNames = [...]string{"address", "delivery", "payment", "review"}

func (s Step) String() string {
	if s < StepAddress || s > StepReview {
		return "unknown"
	}
	return stepNames[s]
}

func (s Step) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Step) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	for i, n := range stepNames {
		if n == name {
			*s = Step(i)
			return nil
		}
	}
	return fmt.Errorf("unknown checkout step %q", name)
}

// State はチェックアウト1回分の途中状態。注文確定まではDBに書かない。
type State struct {
	ID          string `json:"id"`
	BuyerID     string `json:"buyer_id"`
	CurrentStep Step   `json:"current_step"`

	ShippingAddress *model.UserAddress `json:"shipping_address,omitempty"`
	//指定がなければ配送先と同じ
	BillingAddress *model.UserAddress `json:"billing_address,omitempty"`

	DeliveryMethod      *model.DeliveryMethod `json:"delivery_method,omitempty"`
	SpecialInstructions string                `json:"special_instructions"`

	Payment PaymentDetails `json:"-"`

	TermsAccepted bool `json:"terms_accepted"`

	//決済ゲートウェイ側の注文ID（pay で発行、confirm で照合）
	GatewayOrderID string `json:"gateway_order_id,omitempty"`
	//ゲートウェイに請求した金額（パイサ）
	GatewayAmount int64 `json:"gateway_amount,omitempty"`
	//処理中フラグの解放用トークン
	LockToken string `json:"lock_token,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type stateAlias State

type stateJSON struct {
	*stateAlias
	Payment json.RawMessage `json:"payment,omitempty"`
}

func (s State) MarshalJSON() ([]byte, error) {
	p, err := MarshalPayment(s.Payment)
	if err != nil {
		return nil, err
	}
	alias := stateAlias(s)
	return json.Marshal(stateJSON{stateAlias: &alias, Payment: p})
}

func (s *State) UnmarshalJSON(b []byte) error {
	aux := stateJSON{stateAlias: (*stateAlias)(s)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	p, err := UnmarshalPayment(aux.Payment)
	if err != nil {
		return err
	}
	s.Payment = p
	return nil
}

// ReadyToPlace は「注文する」を押せる状態か。
func (s *State) ReadyToPlace() error {
	if s.CurrentStep != StepReview {
		return ErrStepOrder
	}
	if !s.TermsAccepted {
		return ErrTermsNotAccepted
	}
	if s.ShippingAddress == nil || s.DeliveryMethod == nil || s.Payment == nil {
		return ErrStepOrder
	}
	return nil
}

// 決済ウィジェットが開いている間は内容を変えられない
func (s *State) PaymentInProgress() bool {
	return s.GatewayOrderID != ""
}

func (s *State) Billing() *model.UserAddress {
	if s.BillingAddress != nil {
		return s.BillingAddress
	}
	return s.ShippingAddress
}
