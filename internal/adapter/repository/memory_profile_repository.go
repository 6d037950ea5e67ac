package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/pkg/errors"
)

type memoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]entity.Profile
}

func NewMemoryProfileRepository() repository.ProfileRepository {
	return &memoryProfileRepository{profiles: make(map[string]entity.Profile)}
}

func (r *memoryProfileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[profile.ID]; ok {
		return errors.Conflict("Profile already exists")
	}
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	r.profiles[profile.ID] = *profile
	return nil
}

func (r *memoryProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[id]
	if !ok {
		return nil, errors.NotFound("Profile", nil)
	}
	return &p, nil
}

func (r *memoryProfileRepository) GetByUsername(ctx context.Context, username string) (*entity.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.profiles {
		if p.Username != "" && strings.EqualFold(p.Username, username) {
			p := p
			return &p, nil
		}
	}
	return nil, errors.NotFound("Profile", nil)
}

func (r *memoryProfileRepository) Update(ctx context.Context, profile *entity.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[profile.ID]; !ok {
		return errors.NotFound("Profile", nil)
	}
	profile.UpdatedAt = time.Now().UTC()
	r.profiles[profile.ID] = *profile
	return nil
}

func (r *memoryProfileRepository) CountByRole(ctx context.Context) (entity.RoleCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var counts entity.RoleCounts
	for _, p := range r.profiles {
		switch p.Role {
		case entity.RoleSeller:
			counts.Sellers++
		case entity.RoleAdmin:
			counts.Admins++
		default:
			counts.Buyers++
		}
	}
	return counts, nil
}
