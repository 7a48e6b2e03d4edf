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

type ProductUsecase struct {
	productRepo repo.ProductRepository
	reviewRepo  repo.ReviewRepository
	tx          repo.TransactionManager
	clock       Clock
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	reviewRepo repo.ReviewRepository,
	tx repo.TransactionManager,
	clock Clock,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
		tx:          tx,
		clock:       clock,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	Category string
	Sort     string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// 商品詳細＋評価
type ProductDetailOutput struct {
	model.Product
	Rating      decimal.Decimal `json:"rating"`
	ReviewCount int64           `json:"review_count"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        strings.TrimSpace(in.Q),
		Category: strings.TrimSpace(in.Category),
		Sort:     in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, wrapHTTPError(http.StatusInternalServerError, "db error", err)
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID string) (ProductDetailOutput, error) {
	if productID == "" {
		return ProductDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductDetailOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ProductDetailOutput{}, wrapHTTPError(http.StatusInternalServerError, "db error", err)
	}

	if !p.IsActive() {
		return ProductDetailOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	s, err := u.reviewRepo.Summary(ctx, p.ID)
	if err != nil {
		return ProductDetailOutput{}, wrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return ProductDetailOutput{Product: p, Rating: s.Average, ReviewCount: s.Count}, nil
}

// 出品フォームの入力
type CreateProductInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Unit        string          `json:"unit"`
	MinOrder    int64           `json:"min_order"`
	Stock       int64           `json:"stock_quantity"`
	Location    string          `json:"location"`
	ImageURL    string          `json:"image_url"`
}

// seller の出品。管理者が承認するまで pending で公開されない
func (u *ProductUsecase) CreateProduct(ctx context.Context, sellerID string, in CreateProductInput) (model.Product, error) {
	if sellerID == "" {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = "piece"
	}
	now := u.clock.Now()
	p := model.Product{
		SellerID:    sellerID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Price:       in.Price.Round(2),
		Unit:        unit,
		MinOrder:    in.MinOrder,
		Stock:       in.Stock,
		Status:      model.ProductStatusPending,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Location:    strings.TrimSpace(in.Location),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := validator.ValidateProduct(p); err != nil {
		return model.Product{}, checkoutError(err)
	}

	created, err := u.productRepo.Create(ctx, p)
	if err != nil {
		return model.Product{}, wrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return created, nil
}

// seller の出品一覧（承認待ち・却下も含む）
func (u *ProductUsecase) ListSellerProducts(ctx context.Context, sellerID string) ([]model.Product, error) {
	if sellerID == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	list, err := u.productRepo.ListBySellerID(ctx, sellerID)
	if err != nil {
		return nil, wrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return list, nil
}

func (u *ProductUsecase) DeleteProduct(ctx context.Context, sellerID, productID string) error {
	if sellerID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	err := u.productRepo.DeleteBySeller(ctx, productID, sellerID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return wrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return nil
}

// 管理画面の一覧。status 空なら全件
func (u *ProductUsecase) AdminListProducts(ctx context.Context, status model.ProductStatus) ([]model.Product, error) {
	if status != "" && !status.Valid() {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	list, err := u.productRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, wrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return list, nil
}

// 承認（active）・却下（rejected）・非公開（inactive）。監査ログと同じTxで
func (u *ProductUsecase) AdminUpdateProductStatus(ctx context.Context, adminID, productID string, status model.ProductStatus) error {
	if adminID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if !status.Valid() || status == model.ProductStatusPending {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return wrapHTTPError(http.StatusInternalServerError, "db error", err)
		}

		// 同じなら何もしない
		if p.Status == status {
			return nil
		}

		if err := r.Products().UpdateStatus(ctx, productID, status); err != nil {
			return wrapHTTPError(http.StatusInternalServerError, "db error", err)
		}

		before, _ := json.Marshal(map[string]any{"status": p.Status})
		after, _ := json.Marshal(map[string]any{"status": status})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminID,
			Action:       model.AuditActionUpdateProductStatus,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   string(before),
			AfterJSON:    string(after),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return wrapHTTPError(http.StatusInternalServerError, "db error", err)
		}
		return nil
	})
}
