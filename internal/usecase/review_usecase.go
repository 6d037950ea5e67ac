package usecase

import (
	"context"
	"fmt"
	"strings"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/internal/infrastructure/metrics"
	"planmarket/pkg/errors"
	"planmarket/pkg/logger"
)

type ReviewUseCase struct {
	reviewRepo    repository.ReviewRepository
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	notifications *NotificationUseCase
	metrics       *metrics.Metrics
	relations     relations
}

func NewReviewUseCase(
	reviewRepo repository.ReviewRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	profileRepo repository.ProfileRepository,
	notifications *NotificationUseCase,
	m *metrics.Metrics,
) *ReviewUseCase {
	return &ReviewUseCase{
		reviewRepo:    reviewRepo,
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		notifications: notifications,
		metrics:       m,
		relations:     relations{profiles: profileRepo, products: productRepo},
	}
}

type CreateReviewInput struct {
	ProductID string
	Rating    int
	Comment   string
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return errors.BadRequest("Rating must be between 1 and 5", nil)
	}
	return nil
}

// CreateReview requires a completed order for the product.
func (uc *ReviewUseCase) CreateReview(ctx context.Context, buyerID string, input CreateReviewInput) (*entity.Review, error) {
	if err := validateRating(input.Rating); err != nil {
		return nil, err
	}

	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	purchased, err := uc.orderRepo.HasCompletedOrder(ctx, buyerID, product.ID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		return nil, errors.Forbidden("You can only review products you have purchased", nil)
	}

	if _, err := uc.reviewRepo.GetByBuyerAndProduct(ctx, buyerID, product.ID); err == nil {
		return nil, errors.Conflict("You have already reviewed this product")
	} else if !errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}

	review := &entity.Review{
		ProductID: product.ID,
		BuyerID:   buyerID,
		Rating:    input.Rating,
		Comment:   strings.TrimSpace(input.Comment),
	}
	if err := uc.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}
	uc.metrics.ReviewWritten("create")

	uc.refreshRating(ctx, product.ID)

	uc.notifications.Notify(ctx, product.SellerID, entity.NotificationReviewCreated,
		"New review",
		fmt.Sprintf("%q received a %d-star review", product.Title, review.Rating))

	return review, nil
}

type UpdateReviewInput struct {
	Rating  *int
	Comment *string
}

func (uc *ReviewUseCase) UpdateReview(ctx context.Context, buyerID, id string, input UpdateReviewInput) (*entity.Review, error) {
	review, err := uc.ownedReview(ctx, buyerID, id)
	if err != nil {
		return nil, err
	}

	if input.Rating != nil {
		if err := validateRating(*input.Rating); err != nil {
			return nil, err
		}
		review.Rating = *input.Rating
	}
	if input.Comment != nil {
		review.Comment = strings.TrimSpace(*input.Comment)
	}

	if err := uc.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	uc.metrics.ReviewWritten("update")
	uc.refreshRating(ctx, review.ProductID)
	return review, nil
}

func (uc *ReviewUseCase) DeleteReview(ctx context.Context, buyerID, id string) error {
	review, err := uc.ownedReview(ctx, buyerID, id)
	if err != nil {
		return err
	}
	if err := uc.reviewRepo.Delete(ctx, id); err != nil {
		return err
	}
	uc.metrics.ReviewWritten("delete")
	uc.refreshRating(ctx, review.ProductID)
	return nil
}

type ProductReviewsInput struct {
	ProductID string
	Sort      string
	Order     string
	Page      int
	Limit     int
}

func parseReviewSort(field, order string) (repository.Sort, error) {
	s := repository.Sort{Field: repository.SortCreatedAt, Desc: true}
	switch field {
	case "":
	case repository.SortCreatedAt, repository.SortRating:
		s.Field = field
	default:
		return s, errors.BadRequest("Invalid sort field: "+field, nil)
	}
	switch strings.ToLower(order) {
	case "", "desc":
	case "asc":
		s.Desc = false
	default:
		return s, errors.BadRequest("Invalid sort order: "+order, nil)
	}
	return s, nil
}

// ProductReviews pages a product's reviews with their authors, together with
// the summary over all of them.
func (uc *ReviewUseCase) ProductReviews(ctx context.Context, input ProductReviewsInput) ([]*entity.ReviewView, int64, *entity.ReviewSummary, error) {
	s, err := parseReviewSort(input.Sort, input.Order)
	if err != nil {
		return nil, 0, nil, err
	}
	if _, err := uc.productRepo.GetByID(ctx, input.ProductID); err != nil {
		return nil, 0, nil, err
	}
	reviews, total, err := uc.reviewRepo.ListByProduct(ctx, input.ProductID, s, input.Limit, offsetFor(input.Page, input.Limit))
	if err != nil {
		return nil, 0, nil, err
	}
	views, err := uc.relations.reviewsWithBuyers(ctx, reviews)
	if err != nil {
		return nil, 0, nil, err
	}
	summary, err := uc.reviewRepo.Summary(ctx, input.ProductID)
	if err != nil {
		return nil, 0, nil, err
	}
	return views, total, summary, nil
}

// MyReviews pages the caller's reviews with the product each one is about.
func (uc *ReviewUseCase) MyReviews(ctx context.Context, buyerID string, page, limit int) ([]*entity.ReviewView, int64, error) {
	reviews, total, err := uc.reviewRepo.ListByBuyer(ctx, buyerID, limit, offsetFor(page, limit))
	if err != nil {
		return nil, 0, err
	}
	views, err := uc.relations.reviewsWithProducts(ctx, reviews)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// ownedReview hides other buyers' reviews behind NotFound.
func (uc *ReviewUseCase) ownedReview(ctx context.Context, buyerID, id string) (*entity.Review, error) {
	review, err := uc.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.BuyerID != buyerID {
		return nil, errors.NotFound("Review", nil)
	}
	return review, nil
}

// refreshRating recomputes the product's denormalized rating. A failure
// leaves the counters stale until the next review write.
func (uc *ReviewUseCase) refreshRating(ctx context.Context, productID string) {
	summary, err := uc.reviewRepo.Summary(ctx, productID)
	if err != nil {
		logger.Error("Review summary for product %s: %v", productID, err)
		return
	}
	if err := uc.productRepo.UpdateRating(ctx, productID, summary.AverageRating, summary.TotalReviews); err != nil {
		logger.Error("Update rating of product %s: %v", productID, err)
	}
}
