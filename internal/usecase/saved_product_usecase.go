package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Shreyr69/indiport/internal/domain/model"
	repo "github.com/Shreyr69/indiport/internal/repository"
)

// 購入者が保存した商品
type SavedProductUsecase struct {
	savedRepo   repo.SavedProductRepository
	productRepo repo.ProductRepository
	clock       Clock
}

func NewSavedProductUsecase(
	savedRepo repo.SavedProductRepository,
	productRepo repo.ProductRepository,
	clock Clock,
) *SavedProductUsecase {
	return &SavedProductUsecase{
		savedRepo:   savedRepo,
		productRepo: productRepo,
		clock:       clock,
	}
}

type SaveProductInput struct {
	ProductID string `json:"product_id"`
}

type SavedProductOutput struct {
	ID        string        `json:"id"`
	ProductID string        `json:"product_id"`
	CreatedAt time.Time     `json:"created_at"`
	Product   model.Product `json:"product"`
}

// 新しい順。消えた・非公開になった商品は出さない
func (u *SavedProductUsecase) List(ctx context.Context, buyerID string) ([]SavedProductOutput, error) {
	if buyerID == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	saved, err := u.savedRepo.ListByBuyerID(ctx, buyerID)
	if err != nil {
		return nil, wrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	ids := make([]string, 0, len(saved))
	for _, sp := range saved {
		ids = append(ids, sp.ProductID)
	}
	list, err := u.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, wrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	byID := make(map[string]model.Product, len(list))
	for _, p := range list {
		byID[p.ID] = p
	}

	out := make([]SavedProductOutput, 0, len(saved))
	for _, sp := range saved {
		p, ok := byID[sp.ProductID]
		if !ok || !p.IsActive() {
			continue
		}
		out = append(out, SavedProductOutput{ID: sp.ID, ProductID: sp.ProductID, CreatedAt: sp.CreatedAt, Product: p})
	}
	return out, nil
}

func (u *SavedProductUsecase) Save(ctx context.Context, buyerID string, in SaveProductInput) (SavedProductOutput, error) {
	if buyerID == "" {
		return SavedProductOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID == "" {
		return SavedProductOutput{}, NewHTTPError(http.StatusBadRequest, "product_id required")
	}

	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive()) {
		return SavedProductOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return SavedProductOutput{}, wrapHTTPError(http.StatusInternalServerError, "db error", err)
	}

	sp, err := u.savedRepo.Create(ctx, model.SavedProduct{
		BuyerID:   buyerID,
		ProductID: p.ID,
		CreatedAt: u.clock.Now(),
	})
	if errors.Is(err, repo.ErrDuplicate) {
		return SavedProductOutput{}, wrapHTTPError(http.StatusConflict, "product already saved", err)
	}
	if err != nil {
		return SavedProductOutput{}, wrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return SavedProductOutput{ID: sp.ID, ProductID: sp.ProductID, CreatedAt: sp.CreatedAt, Product: p}, nil
}

func (u *SavedProductUsecase) Remove(ctx context.Context, buyerID, savedID string) error {
	if buyerID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if savedID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err := u.savedRepo.DeleteByBuyer(ctx, savedID, buyerID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return wrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return nil
}
