package entity

import (
	"math"
	"time"
)

type Review struct {
	ID        string    `json:"id" firestore:"id"`
	ProductID string    `json:"product_id" firestore:"productId"`
	BuyerID   string    `json:"buyer_id" firestore:"buyerId"`
	Rating    int       `json:"rating" firestore:"rating"`
	Comment   string    `json:"comment" firestore:"comment"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// ReviewView is a review with its author, and its product on the author's
// own listing.
type ReviewView struct {
	*Review
	Buyer   *UserSummary    `json:"buyer,omitempty"`
	Product *ProductSummary `json:"product,omitempty"`
}

// ReviewSummary aggregates every review of a product.
type ReviewSummary struct {
	TotalReviews  int         `json:"totalReviews"`
	AverageRating float64     `json:"averageRating"`
	RatingCounts  map[int]int `json:"ratingCounts"`
}

// NewReviewSummary builds a summary from per-rating counts. Ratings outside
// 1..5 are ignored.
func NewReviewSummary(counts map[int]int) *ReviewSummary {
	summary := &ReviewSummary{RatingCounts: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	sum := 0
	for rating, n := range counts {
		if rating < 1 || rating > 5 {
			continue
		}
		summary.RatingCounts[rating] += n
		summary.TotalReviews += n
		sum += rating * n
	}
	if summary.TotalReviews > 0 {
		summary.AverageRating = math.Round(float64(sum)/float64(summary.TotalReviews)*100) / 100
	}
	return summary
}
