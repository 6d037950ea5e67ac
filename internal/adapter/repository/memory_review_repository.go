package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/pkg/errors"
)

type memoryReviewRepository struct {
	mu      sync.RWMutex
	reviews map[string]entity.Review
	seq     []string
}

func NewMemoryReviewRepository() repository.ReviewRepository {
	return &memoryReviewRepository{reviews: make(map[string]entity.Review)}
}

func (r *memoryReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.reviews {
		if existing.BuyerID == review.BuyerID && existing.ProductID == review.ProductID {
			return errors.Conflict("You have already reviewed this product")
		}
	}
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	review.CreatedAt = now
	review.UpdatedAt = now
	r.reviews[review.ID] = *review
	r.seq = append(r.seq, review.ID)
	return nil
}

func (r *memoryReviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rv, ok := r.reviews[id]
	if !ok {
		return nil, errors.NotFound("Review", nil)
	}
	return &rv, nil
}

func (r *memoryReviewRepository) GetByBuyerAndProduct(ctx context.Context, buyerID, productID string) (*entity.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rv := range r.reviews {
		if rv.BuyerID == buyerID && rv.ProductID == productID {
			rv := rv
			return &rv, nil
		}
	}
	return nil, errors.NotFound("Review", nil)
}

func (r *memoryReviewRepository) Update(ctx context.Context, review *entity.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reviews[review.ID]; !ok {
		return errors.NotFound("Review", nil)
	}
	review.UpdatedAt = time.Now().UTC()
	r.reviews[review.ID] = *review
	return nil
}

func (r *memoryReviewRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reviews[id]; !ok {
		return errors.NotFound("Review", nil)
	}
	delete(r.reviews, id)
	for i, rid := range r.seq {
		if rid == id {
			r.seq = append(r.seq[:i], r.seq[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memoryReviewRepository) newestFirst(keep func(entity.Review) bool) []*entity.Review {
	var out []*entity.Review
	for i := len(r.seq) - 1; i >= 0; i-- {
		rv := r.reviews[r.seq[i]]
		if keep(rv) {
			out = append(out, &rv)
		}
	}
	return out
}

func (r *memoryReviewRepository) ListByProduct(ctx context.Context, productID string, s repository.Sort, limit, offset int) ([]*entity.Review, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.newestFirst(func(rv entity.Review) bool { return rv.ProductID == productID })
	switch {
	case s.Field == repository.SortRating:
		sort.SliceStable(all, func(i, j int) bool {
			if s.Desc {
				return all[i].Rating > all[j].Rating
			}
			return all[i].Rating < all[j].Rating
		})
	case !s.Desc:
		for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
			all[i], all[j] = all[j], all[i]
		}
	}
	return paginate(all, limit, offset), int64(len(all)), nil
}

func (r *memoryReviewRepository) ListByBuyer(ctx context.Context, buyerID string, limit, offset int) ([]*entity.Review, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.newestFirst(func(rv entity.Review) bool { return rv.BuyerID == buyerID })
	return paginate(all, limit, offset), int64(len(all)), nil
}

func (r *memoryReviewRepository) Summary(ctx context.Context, productID string) (*entity.ReviewSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[int]int)
	for _, rv := range r.reviews {
		if rv.ProductID == productID {
			counts[rv.Rating]++
		}
	}
	return entity.NewReviewSummary(counts), nil
}
