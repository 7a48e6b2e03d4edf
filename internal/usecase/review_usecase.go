package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Shreyr69/indiport/internal/domain/model"
	repo "github.com/Shreyr69/indiport/internal/repository"
	"github.com/Shreyr69/indiport/internal/validator"

	"github.com/shopspring/decimal"
)

type ReviewUsecase struct {
	reviewRepo  repo.ReviewRepository
	productRepo repo.ProductRepository
	clock       Clock
}

func NewReviewUsecase(reviewRepo repo.ReviewRepository, productRepo repo.ProductRepository, clock Clock) *ReviewUsecase {
	return &ReviewUsecase{reviewRepo: reviewRepo, productRepo: productRepo, clock: clock}
}

type CreateReviewInput struct {
	Rating     int    `json:"rating"`
	ReviewText string `json:"review_text"`
}

type RatingOutput struct {
	Average decimal.Decimal `json:"average"`
	Count   int64           `json:"count"`
}

type ReviewListOutput struct {
	Items  []model.Review `json:"items"`
	Rating RatingOutput   `json:"rating"`
}

// 1商品につき1人1件
func (u *ReviewUsecase) Create(ctx context.Context, buyerID, productID string, in CreateReviewInput) (model.Review, error) {
	if buyerID == "" {
		return model.Review{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validator.ValidateReview(in.Rating); err != nil {
		return model.Review{}, checkoutError(err)
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive()) {
		return model.Review{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return model.Review{}, wrapHTTPError(http.StatusInternalServerError, "db error", err)
	}

	now := u.clock.Now()
	created, err := u.reviewRepo.Create(ctx, model.Review{
		BuyerID:    buyerID,
		ProductID:  p.ID,
		Rating:     in.Rating,
		ReviewText: strings.TrimSpace(in.ReviewText),
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if errors.Is(err, repo.ErrDuplicate) {
		return model.Review{}, wrapHTTPError(http.StatusConflict, "you have already reviewed this product", err)
	}
	if err != nil {
		return model.Review{}, wrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return created, nil
}

func (u *ReviewUsecase) List(ctx context.Context, productID string) (ReviewListOutput, error) {
	if productID == "" {
		return ReviewListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	items, err := u.reviewRepo.ListByProductID(ctx, productID)
	if err != nil {
		return ReviewListOutput{}, wrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	s, err := u.reviewRepo.Summary(ctx, productID)
	if err != nil {
		return ReviewListOutput{}, wrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return ReviewListOutput{
		Items:  items,
		Rating: RatingOutput{Average: s.Average, Count: s.Count},
	}, nil
}
