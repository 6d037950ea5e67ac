package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/pkg/errors"
)

const reviewColumns = `id, product_id, buyer_id, rating, comment, created_at, updated_at`

var reviewSortColumns = map[string]string{
	repository.SortCreatedAt: "created_at",
	repository.SortRating:    "rating",
}

var newestReviewsFirst = repository.Sort{Field: repository.SortCreatedAt, Desc: true}

type postgresReviewRepository struct {
	db *sql.DB
}

func NewPostgresReviewRepository(db *sql.DB) repository.ReviewRepository {
	return &postgresReviewRepository{db: db}
}

func scanReview(row rowScanner) (*entity.Review, error) {
	var rv entity.Review
	if err := row.Scan(&rv.ID, &rv.ProductID, &rv.BuyerID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *postgresReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	review.CreatedAt = now
	review.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reviews (`+reviewColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, review.ID, review.ProductID, review.BuyerID, review.Rating, review.Comment, review.CreatedAt, review.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Conflict("You have already reviewed this product")
		}
		return errors.Internal("Failed to create review", err)
	}
	return nil
}

func (r *postgresReviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "Review", "Failed to get review")
	}
	return rv, nil
}

func (r *postgresReviewRepository) GetByBuyerAndProduct(ctx context.Context, buyerID, productID string) (*entity.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, `
		SELECT `+reviewColumns+` FROM reviews WHERE buyer_id = $1 AND product_id = $2
	`, buyerID, productID))
	if err != nil {
		return nil, notFoundOr(err, "Review", "Failed to get review")
	}
	return rv, nil
}

func (r *postgresReviewRepository) Update(ctx context.Context, review *entity.Review) error {
	review.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
		UPDATE reviews SET rating = $2, comment = $3, updated_at = $4 WHERE id = $1
	`, review.ID, review.Rating, review.Comment, review.UpdatedAt)
	if err != nil {
		return errors.Internal("Failed to update review", err)
	}
	return expectOneRow(result, "Review")
}

func (r *postgresReviewRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return errors.Internal("Failed to delete review", err)
	}
	return expectOneRow(result, "Review")
}

func (r *postgresReviewRepository) list(ctx context.Context, column, value string, s repository.Sort, limit, offset int) ([]*entity.Review, int64, error) {
	sortColumn, ok := reviewSortColumns[s.Field]
	if !ok {
		sortColumn = "created_at"
	}
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE `+column+` = $1`, value).Scan(&total); err != nil {
		return nil, 0, errors.Internal("Failed to count reviews", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reviewColumns+` FROM reviews WHERE `+column+` = $1
		ORDER BY `+sortColumn+` `+direction+`, id LIMIT $2 OFFSET $3
	`, value, limitArg(limit), offset)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list reviews", err)
	}
	defer rows.Close()

	reviews := []*entity.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, 0, errors.Internal("Failed to parse review data", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Internal("Failed to iterate reviews", err)
	}
	return reviews, total, nil
}

func (r *postgresReviewRepository) ListByProduct(ctx context.Context, productID string, s repository.Sort, limit, offset int) ([]*entity.Review, int64, error) {
	return r.list(ctx, "product_id", productID, s, limit, offset)
}

func (r *postgresReviewRepository) ListByBuyer(ctx context.Context, buyerID string, limit, offset int) ([]*entity.Review, int64, error) {
	return r.list(ctx, "buyer_id", buyerID, newestReviewsFirst, limit, offset)
}

func (r *postgresReviewRepository) Summary(ctx context.Context, productID string) (*entity.ReviewSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT rating, COUNT(*) FROM reviews WHERE product_id = $1 GROUP BY rating
	`, productID)
	if err != nil {
		return nil, errors.Internal("Failed to summarize reviews", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var rating, n int
		if err := rows.Scan(&rating, &n); err != nil {
			return nil, errors.Internal("Failed to parse review summary", err)
		}
		counts[rating] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("Failed to iterate review summary", err)
	}
	return entity.NewReviewSummary(counts), nil
}
