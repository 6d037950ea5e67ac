package repository

import (
	"context"

	"planmarket/internal/domain/entity"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *entity.Profile) error
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	GetByUsername(ctx context.Context, username string) (*entity.Profile, error)
	Update(ctx context.Context, profile *entity.Profile) error
	CountByRole(ctx context.Context) (entity.RoleCounts, error)
}
