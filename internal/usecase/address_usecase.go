package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Shreyr69/indiport/internal/domain/checkout"
	"github.com/Shreyr69/indiport/internal/domain/model"
	"github.com/Shreyr69/indiport/internal/repository"
	"github.com/Shreyr69/indiport/internal/validator"
)

var (
	// 住所系で存在しないことを表す（Handlerが404に変換する）
	ErrNotFound = errors.New("not found")
	//401
	ErrUnauthorized = errors.New("unauthorized")
	//403
	ErrForbidden = errors.New("forbidden")
	//500
	ErrInternal = errors.New("internal error")
)

type AddressCreateRequest struct {
	Type         model.AddressType `json:"type"`
	FullName     string            `json:"full_name"`
	Phone        string            `json:"phone"`
	AddressLine1 string            `json:"address_line_1"`
	AddressLine2 string            `json:"address_line_2"`
	City         string            `json:"city"`
	State        string            `json:"state"`
	PostalCode   string            `json:"postal_code"`
	Country      string            `json:"country"`
	IsDefault    bool              `json:"is_default"`
}

// 入力をモデルへ（前後の空白は落とす）
func (r AddressCreateRequest) toModel(userID string) model.UserAddress {
	t := r.Type
	if t == "" {
		t = model.AddressTypeShipping
	}
	country := strings.TrimSpace(r.Country)
	if country == "" {
		country = "India"
	}
	return model.UserAddress{
		UserID:       userID,
		Type:         t,
		FullName:     strings.TrimSpace(r.FullName),
		Phone:        strings.TrimSpace(r.Phone),
		AddressLine1: strings.TrimSpace(r.AddressLine1),
		AddressLine2: strings.TrimSpace(r.AddressLine2),
		City:         strings.TrimSpace(r.City),
		State:        strings.TrimSpace(r.State),
		PostalCode:   strings.TrimSpace(r.PostalCode),
		Country:      country,
		IsDefault:    r.IsDefault,
	}
}

type AddressUsecase struct {
	addresses repository.AddressRepository
}

func NewAddressUsecase(addresses repository.AddressRepository) *AddressUsecase {
	return &AddressUsecase{addresses: addresses}
}

// 保存済み住所（デフォルトが先頭）
func (u *AddressUsecase) List(ctx context.Context, userID string) ([]model.UserAddress, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	list, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", checkout.ErrRemoteFetch, err)
	}
	return list, nil
}

func (u *AddressUsecase) Create(ctx context.Context, userID string, req AddressCreateRequest) (model.UserAddress, error) {
	if userID == "" {
		return model.UserAddress{}, ErrUnauthorized
	}

	a := req.toModel(userID)

	//入力チェック
	if err := validator.ValidateAddress(a); err != nil {
		return model.UserAddress{}, err
	}

	created, err := u.addresses.Create(ctx, a)
	if err != nil {
		return model.UserAddress{}, ErrInternal
	}
	return created, nil
}

// 本人の住所を1件（チェックアウトで選ぶとき用）
func (u *AddressUsecase) Get(ctx context.Context, userID string, addressID string) (model.UserAddress, error) {
	if userID == "" {
		return model.UserAddress{}, ErrUnauthorized
	}
	a, err := u.addresses.FindByID(ctx, addressID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.UserAddress{}, ErrNotFound
	}
	if err != nil {
		return model.UserAddress{}, fmt.Errorf("%w: %v", checkout.ErrRemoteFetch, err)
	}
	if a.UserID != userID {
		return model.UserAddress{}, ErrNotFound
	}
	return a, nil
}

func (u *AddressUsecase) SetDefault(ctx context.Context, userID string, addressID string) error {
	if userID == "" {
		return ErrUnauthorized
	}
	if addressID == "" {
		return fmt.Errorf("%w: address id is required", checkout.ErrValidation)
	}

	owned, err := u.addresses.IsOwnedByUser(ctx, addressID, userID)
	if err != nil {
		return ErrInternal
	}
	if !owned {
		return ErrForbidden
	}

	if err := u.addresses.SetDefault(ctx, userID, addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}
	return nil
}
