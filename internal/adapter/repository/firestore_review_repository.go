package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/pkg/errors"
)

type firestoreReviewRepository struct {
	client *firestore.Client
}

func NewFirestoreReviewRepository(client *firestore.Client) repository.ReviewRepository {
	return &firestoreReviewRepository{client: client}
}

func (r *firestoreReviewRepository) col() *firestore.CollectionRef {
	return r.client.Collection(collectionReviews)
}

// Create derives the ID from (buyer, product); a second review of the same
// product by the same buyer fails with Conflict.
func (r *firestoreReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	review.ID = deterministicID("review", review.BuyerID, review.ProductID)
	now := time.Now().UTC()
	review.CreatedAt = now
	review.UpdatedAt = now

	if _, err := r.col().Doc(review.ID).Create(ctx, review); err != nil {
		if isAlreadyExists(err) {
			return errors.Conflict("You have already reviewed this product")
		}
		return errors.Internal("Failed to create review", err)
	}
	return nil
}

func (r *firestoreReviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		return nil, fsGetError(err, "Review", "Failed to get review")
	}
	var review entity.Review
	if err := snap.DataTo(&review); err != nil {
		return nil, errors.Internal("Failed to parse review data", err)
	}
	return &review, nil
}

func (r *firestoreReviewRepository) GetByBuyerAndProduct(ctx context.Context, buyerID, productID string) (*entity.Review, error) {
	return r.GetByID(ctx, deterministicID("review", buyerID, productID))
}

func (r *firestoreReviewRepository) Update(ctx context.Context, review *entity.Review) error {
	review.UpdatedAt = time.Now().UTC()
	_, err := r.col().Doc(review.ID).Update(ctx, []firestore.Update{
		{Path: "rating", Value: review.Rating},
		{Path: "comment", Value: review.Comment},
		{Path: "updatedAt", Value: review.UpdatedAt},
	})
	if err != nil {
		return fsGetError(err, "Review", "Failed to update review")
	}
	return nil
}

func (r *firestoreReviewRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.col().Doc(id).Delete(ctx, firestore.Exists); err != nil {
		return fsGetError(err, "Review", "Failed to delete review")
	}
	return nil
}

func (r *firestoreReviewRepository) list(ctx context.Context, field, value string, s repository.Sort, limit, offset int) ([]*entity.Review, int64, error) {
	query := r.col().Where(field, "==", value)
	total, err := countQuery(ctx, query)
	if err != nil {
		return nil, 0, errors.Internal("Failed to count reviews", err)
	}

	orderField := "createdAt"
	if s.Field == repository.SortRating {
		orderField = "rating"
	}
	direction := firestore.Asc
	if s.Desc {
		direction = firestore.Desc
	}
	query = query.OrderBy(orderField, direction)
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	reviews, err := collect[entity.Review](query.Documents(ctx), "reviews")
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *firestoreReviewRepository) ListByProduct(ctx context.Context, productID string, s repository.Sort, limit, offset int) ([]*entity.Review, int64, error) {
	return r.list(ctx, "productId", productID, s, limit, offset)
}

func (r *firestoreReviewRepository) ListByBuyer(ctx context.Context, buyerID string, limit, offset int) ([]*entity.Review, int64, error) {
	return r.list(ctx, "buyerId", buyerID, repository.Sort{Field: repository.SortCreatedAt, Desc: true}, limit, offset)
}

func (r *firestoreReviewRepository) Summary(ctx context.Context, productID string) (*entity.ReviewSummary, error) {
	reviews, err := collect[entity.Review](r.col().Where("productId", "==", productID).Select("rating").Documents(ctx), "reviews")
	if err != nil {
		return nil, err
	}
	counts := make(map[int]int)
	for _, rv := range reviews {
		counts[rv.Rating]++
	}
	return entity.NewReviewSummary(counts), nil
}
