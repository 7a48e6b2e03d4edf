package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Shreyr69/indiport/internal/domain/model"
	repo "github.com/Shreyr69/indiport/internal/repository"
	"github.com/Shreyr69/indiport/internal/validator"

	"github.com/shopspring/decimal"
)

// 見積の状態が先に変わっていた（409）
var ErrRFQStatusConflict = errors.New("rfq status conflict")

// RFQUsecase は見積依頼（購入者 → seller → 購入者）
type RFQUsecase struct {
	tx          repo.TransactionManager
	rfqRepo     repo.RFQRepository
	productRepo repo.ProductRepository
	clock       Clock
}

func NewRFQUsecase(
	tx repo.TransactionManager,
	rfqRepo repo.RFQRepository,
	productRepo repo.ProductRepository,
	clock Clock,
) *RFQUsecase {
	return &RFQUsecase{
		tx:          tx,
		rfqRepo:     rfqRepo,
		productRepo: productRepo,
		clock:       clock,
	}
}

type CreateRFQInput struct {
	ProductID     string `json:"product_id"`
	Quantity      int64  `json:"quantity"`
	CompanyName   string `json:"company_name"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Message       string `json:"message"`
}

type RespondRFQInput struct {
	QuotedPrice decimal.Decimal `json:"quoted_price"`
	Message     string          `json:"message"`
}

type RFQOutput struct {
	model.RFQ
	//回答済みのときだけ
	QuoteTotal *decimal.Decimal `json:"quote_total,omitempty"`
}

func toRFQOutput(r model.RFQ) RFQOutput {
	out := RFQOutput{RFQ: r}
	if t, ok := r.QuoteTotal(); ok {
		out.QuoteTotal = &t
	}
	return out
}

func toRFQOutputs(list []model.RFQ) []RFQOutput {
	out := make([]RFQOutput, 0, len(list))
	for _, r := range list {
		out = append(out, toRFQOutput(r))
	}
	return out
}

func (u *RFQUsecase) Create(ctx context.Context, buyerID string, in CreateRFQInput) (RFQOutput, error) {
	if buyerID == "" {
		return RFQOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID == "" {
		return RFQOutput{}, NewHTTPError(http.StatusBadRequest, "product_id required")
	}

	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive()) {
		return RFQOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return RFQOutput{}, wrapHTTPError(http.StatusInternalServerError, "db error", err)
	}

	r := model.RFQ{
		BuyerID:       buyerID,
		SellerID:      p.SellerID,
		ProductID:     p.ID,
		Quantity:      in.Quantity,
		CompanyName:   strings.TrimSpace(in.CompanyName),
		ContactPerson: strings.TrimSpace(in.ContactPerson),
		Email:         strings.TrimSpace(in.Email),
		Phone:         strings.TrimSpace(in.Phone),
		Message:       in.Message,
		Status:        model.RFQStatusPending,
		CreatedAt:     u.clock.Now(),
	}
	if err := validator.ValidateRFQ(r, p); err != nil {
		return RFQOutput{}, checkoutError(err)
	}

	created, err := u.rfqRepo.Create(ctx, r)
	if err != nil {
		return RFQOutput{}, wrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return toRFQOutput(created), nil
}

func (u *RFQUsecase) ListMine(ctx context.Context, buyerID string) ([]RFQOutput, error) {
	if buyerID == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	list, err := u.rfqRepo.ListByBuyerID(ctx, buyerID)
	if err != nil {
		return nil, wrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return toRFQOutputs(list), nil
}

func (u *RFQUsecase) ListForSeller(ctx context.Context, sellerID string) ([]RFQOutput, error) {
	if sellerID == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	list, err := u.rfqRepo.ListBySellerID(ctx, sellerID)
	if err != nil {
		return nil, wrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return toRFQOutputs(list), nil
}

// Respond は seller が単価とメッセージを返す（pending → responded）
func (u *RFQUsecase) Respond(ctx context.Context, sellerID, rfqID string, in RespondRFQInput) (RFQOutput, error) {
	r, err := u.find(ctx, rfqID)
	if err != nil {
		return RFQOutput{}, err
	}
	//他の seller の依頼は見せない
	if r.SellerID != sellerID {
		return RFQOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err := validator.ValidateQuote(in.QuotedPrice); err != nil {
		return RFQOutput{}, checkoutError(err)
	}

	before, _ := json.Marshal(map[string]any{"status": r.Status})

	now := u.clock.Now()
	price := in.QuotedPrice.Round(2)
	r.QuotedPrice = &price
	r.SellerResponse = strings.TrimSpace(in.Message)
	r.ResponseDate = &now
	r.Status = model.RFQStatusResponded

	after, _ := json.Marshal(map[string]any{"status": r.Status, "quoted_price": price})

	//回答と監査ログは同じTxで
	err = u.tx.WithinTx(ctx, func(txr repo.TxRepos) error {
		if err := updateRFQ(ctx, txr.RFQs(), r, model.RFQStatusPending); err != nil {
			return err
		}
		if err := txr.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  sellerID,
			Action:       model.AuditActionRespondRFQ,
			ResourceType: model.AuditResourceRFQ,
			ResourceID:   r.ID,
			BeforeJSON:   string(before),
			AfterJSON:    string(after),
			CreatedAt:    now,
		}); err != nil {
			return wrapHTTPError(http.StatusInternalServerError, "db error", err)
		}
		return nil
	})
	if err != nil {
		return RFQOutput{}, err
	}
	return toRFQOutput(r), nil
}

// 購入者が回答済みの見積を承認する
func (u *RFQUsecase) Accept(ctx context.Context, buyerID, rfqID string) (RFQOutput, error) {
	return u.decide(ctx, buyerID, rfqID, model.RFQStatusAccepted)
}

func (u *RFQUsecase) Reject(ctx context.Context, buyerID, rfqID string) (RFQOutput, error) {
	return u.decide(ctx, buyerID, rfqID, model.RFQStatusRejected)
}

func (u *RFQUsecase) decide(ctx context.Context, buyerID, rfqID string, to model.RFQStatus) (RFQOutput, error) {
	r, err := u.find(ctx, rfqID)
	if err != nil {
		return RFQOutput{}, err
	}
	if r.BuyerID != buyerID {
		return RFQOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	r.Status = to
	if err := updateRFQ(ctx, u.rfqRepo, r, model.RFQStatusResponded); err != nil {
		return RFQOutput{}, err
	}
	return toRFQOutput(r), nil
}

func (u *RFQUsecase) find(ctx context.Context, rfqID string) (model.RFQ, error) {
	if rfqID == "" {
		return model.RFQ{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := u.rfqRepo.FindByID(ctx, rfqID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.RFQ{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.RFQ{}, wrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return r, nil
}

// 状態が from のときだけ更新。先に変わっていたら409
func updateRFQ(ctx context.Context, rfqs repo.RFQRepository, r model.RFQ, from model.RFQStatus) error {
	ok, err := rfqs.Update(ctx, r, from)
	if err != nil {
		return wrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	if !ok {
		return wrapHTTPError(http.StatusConflict, "rfq is not "+string(from), ErrRFQStatusConflict)
	}
	return nil
}
