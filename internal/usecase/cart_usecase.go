package usecase

import (
	"context"
	"errors"
	"net/http"

	"github.com/Shreyr69/indiport/internal/domain/model"
	"github.com/Shreyr69/indiport/internal/domain/pricing"
	repo "github.com/Shreyr69/indiport/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジック。
// 価格はカートに持たず、毎回商品の現在価格を読む。
type CartUsecase struct {
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
}

func NewCartUsecase(
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
	}
}

type CartLineOutput struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	SellerID  string          `json:"seller_id"`
	Title     string          `json:"title"`
	Unit      string          `json:"unit"`
	ImageURL  string          `json:"image_url"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartOutput struct {
	Items     []CartLineOutput `json:"items"`
	Subtotal  decimal.Decimal  `json:"subtotal"`
	ItemCount int64            `json:"item_count"`
}

// 計算用の明細
func (c CartOutput) Lines() []pricing.Line {
	lines := make([]pricing.Line, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, pricing.Line{ProductID: it.ProductID, UnitPrice: it.UnitPrice, Quantity: it.Quantity})
	}
	return lines
}

type AddCartInput struct {
	ProductID string
	Quantity  int64
}

// GetCart はカート取得（価格は現在値）
func (u *CartUsecase) GetCart(ctx context.Context, buyerID string) (CartOutput, error) {
	if buyerID == "" {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	out, err := loadCart(ctx, u.cartItemRepo, u.productRepo, buyerID)
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return out, nil
}

// AddItem は同じ商品なら数量を足す
func (u *CartUsecase) AddItem(ctx context.Context, buyerID string, in AddCartInput) (CartOutput, error) {
	if buyerID == "" {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID == "" {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity <= 0 {
		in.Quantity = 1
	}

	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive() {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "product is not available")
	}

	if err := u.cartItemRepo.UpsertByBuyerAndProduct(ctx, buyerID, in.ProductID, in.Quantity); err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.GetCart(ctx, buyerID)
}

// UpdateQuantity は数量を置き換える。0以下なら明細を消す
func (u *CartUsecase) UpdateQuantity(ctx context.Context, buyerID string, cartItemID string, qty int64) (CartOutput, error) {
	if err := u.checkOwner(ctx, buyerID, cartItemID); err != nil {
		return CartOutput{}, err
	}

	if qty <= 0 {
		err := u.cartItemRepo.DeleteByID(ctx, cartItemID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return u.GetCart(ctx, buyerID)
	}

	if err := u.cartItemRepo.UpdateQuantity(ctx, cartItemID, qty); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartOutput{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.GetCart(ctx, buyerID)
}

func (u *CartUsecase) RemoveItem(ctx context.Context, buyerID string, cartItemID string) (CartOutput, error) {
	if err := u.checkOwner(ctx, buyerID, cartItemID); err != nil {
		return CartOutput{}, err
	}
	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartOutput{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.GetCart(ctx, buyerID)
}

func (u *CartUsecase) Clear(ctx context.Context, buyerID string) error {
	if buyerID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.cartItemRepo.ClearByBuyerID(ctx, buyerID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 他人の明細は「存在しない扱い」
func (u *CartUsecase) checkOwner(ctx context.Context, buyerID, cartItemID string) error {
	if buyerID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ok, err := u.cartItemRepo.IsOwnedByUser(ctx, cartItemID, buyerID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !ok {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	return nil
}

// カート明細＋商品の現在価格。
// 商品が消えた・非公開になった明細は含めない。
func loadCart(ctx context.Context, items repo.CartItemRepository, products repo.ProductRepository, buyerID string) (CartOutput, error) {
	cartItems, err := items.ListByBuyerID(ctx, buyerID)
	if err != nil {
		return CartOutput{}, err
	}

	ids := make([]string, 0, len(cartItems))
	for _, ci := range cartItems {
		ids = append(ids, ci.ProductID)
	}
	list, err := products.FindByIDs(ctx, ids)
	if err != nil {
		return CartOutput{}, err
	}
	byID := make(map[string]model.Product, len(list))
	for _, p := range list {
		byID[p.ID] = p
	}

	out := CartOutput{Items: make([]CartLineOutput, 0, len(cartItems))}
	for _, ci := range cartItems {
		p, ok := byID[ci.ProductID]
		if !ok || !p.IsActive() {
			continue
		}
		line := pricing.Line{ProductID: p.ID, UnitPrice: p.Price, Quantity: ci.Quantity}
		out.Items = append(out.Items, CartLineOutput{
			ID:        ci.ID,
			ProductID: p.ID,
			SellerID:  p.SellerID,
			Title:     p.Title,
			Unit:      p.Unit,
			ImageURL:  p.ImageURL,
			UnitPrice: p.Price,
			Quantity:  ci.Quantity,
			LineTotal: line.Total(),
		})
	}

	lines := out.Lines()
	out.Subtotal = pricing.Subtotal(lines)
	out.ItemCount = pricing.ItemCount(lines)
	return out, nil
}
