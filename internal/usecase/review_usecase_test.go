package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planmarket/internal/domain/entity"
	"planmarket/pkg/errors"
)

func TestCreateReviewRequiresCompletedOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "seller", entity.RoleSeller)
	product := f.product(t, "seller", "5.00")

	_, err := f.reviews.CreateReview(ctx, "buyer", CreateReviewInput{ProductID: product.ID, Rating: 5})
	require.Error(t, err)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeForbidden, appErr.Code)
	assert.Equal(t, "You can only review products you have purchased", appErr.Message)

	// A pending order is not enough.
	_, _, err = f.orders.CreateOrder(ctx, "buyer", CreateOrderInput{ProductID: product.ID})
	require.NoError(t, err)
	_, err = f.reviews.CreateReview(ctx, "buyer", CreateReviewInput{ProductID: product.ID, Rating: 5})
	assert.True(t, errors.Is(err, errors.CodeForbidden))
}

func TestCreateReviewUpdatesRatingAndRejectsDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "seller", entity.RoleSeller)
	product := f.product(t, "seller", "5.00")
	f.completedOrder(t, "b1", product)
	f.completedOrder(t, "b2", product)

	_, err := f.reviews.CreateReview(ctx, "b1", CreateReviewInput{ProductID: product.ID, Rating: 5, Comment: " great "})
	require.NoError(t, err)
	_, err = f.reviews.CreateReview(ctx, "b2", CreateReviewInput{ProductID: product.ID, Rating: 4})
	require.NoError(t, err)

	_, err = f.reviews.CreateReview(ctx, "b1", CreateReviewInput{ProductID: product.ID, Rating: 3})
	assert.True(t, errors.Is(err, errors.CodeConflict))

	stored, err := f.repos.Products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.5, stored.Rating)
	assert.Equal(t, 2, stored.ReviewsCount)

	reviews, total, summary, err := f.reviews.ProductReviews(ctx, ProductReviewsInput{ProductID: product.ID, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, 2, summary.TotalReviews)
	assert.Equal(t, 4.5, summary.AverageRating)
	assert.Equal(t, 1, summary.RatingCounts[5])
	assert.Equal(t, 1, summary.RatingCounts[4])
	assert.Equal(t, 0, summary.RatingCounts[1])

	assert.Contains(t, f.pusher.typesFor("seller"), "notification")
}

func TestCreateReviewRejectsBadRating(t *testing.T) {
	f := newFixture(t)
	_, err := f.reviews.CreateReview(context.Background(), "b1", CreateReviewInput{ProductID: "p", Rating: 6})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}

func TestUpdateAndDeleteReviewScopedToBuyer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "seller", entity.RoleSeller)
	product := f.product(t, "seller", "5.00")
	f.completedOrder(t, "b1", product)

	review, err := f.reviews.CreateReview(ctx, "b1", CreateReviewInput{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)

	rating := 2
	_, err = f.reviews.UpdateReview(ctx, "b2", review.ID, UpdateReviewInput{Rating: &rating})
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	updated, err := f.reviews.UpdateReview(ctx, "b1", review.ID, UpdateReviewInput{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Rating)

	stored, err := f.repos.Products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, stored.Rating)

	assert.True(t, errors.Is(f.reviews.DeleteReview(ctx, "b2", review.ID), errors.CodeNotFound))
	require.NoError(t, f.reviews.DeleteReview(ctx, "b1", review.ID))

	stored, err = f.repos.Products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, stored.Rating)
	assert.Equal(t, 0, stored.ReviewsCount)

	mine, total, err := f.reviews.MyReviews(ctx, "b1", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, mine)
	assert.Equal(t, int64(0), total)
}

func TestProductReviewsSortedWithAuthors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "seller", entity.RoleSeller)
	f.profile(t, "b1", entity.RoleBuyer)
	product := f.product(t, "seller", "5.00")
	f.completedOrder(t, "b1", product)
	f.completedOrder(t, "b2", product)

	_, err := f.reviews.CreateReview(ctx, "b1", CreateReviewInput{ProductID: product.ID, Rating: 2})
	require.NoError(t, err)
	_, err = f.reviews.CreateReview(ctx, "b2", CreateReviewInput{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)

	lowest, _, _, err := f.reviews.ProductReviews(ctx, ProductReviewsInput{ProductID: product.ID, Sort: "rating", Order: "asc", Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, lowest, 2)
	assert.Equal(t, 2, lowest[0].Rating)
	require.NotNil(t, lowest[0].Buyer)
	assert.Equal(t, "User b1", lowest[0].Buyer.FullName)
	// b2 has no profile.
	assert.Nil(t, lowest[1].Buyer)

	_, _, _, err = f.reviews.ProductReviews(ctx, ProductReviewsInput{ProductID: product.ID, Sort: "price", Page: 1, Limit: 10})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
	_, _, _, err = f.reviews.ProductReviews(ctx, ProductReviewsInput{ProductID: product.ID, Order: "up", Page: 1, Limit: 10})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	mine, _, err := f.reviews.MyReviews(ctx, "b1", 1, 10)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Product)
	assert.Equal(t, "Oak dining table", mine[0].Product.Title)
}
