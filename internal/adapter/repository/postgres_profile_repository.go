package repository

import (
	"context"
	"database/sql"
	"time"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/pkg/errors"
)

const profileColumns = `id, email, full_name, COALESCE(username, ''), role, avatar_url, bio, website, created_at, updated_at`

type postgresProfileRepository struct {
	db *sql.DB
}

func NewPostgresProfileRepository(db *sql.DB) repository.ProfileRepository {
	return &postgresProfileRepository{db: db}
}

func scanProfile(row rowScanner) (*entity.Profile, error) {
	var p entity.Profile
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.Username, &p.Role, &p.AvatarURL, &p.Bio, &p.Website,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresProfileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, full_name, username, role, avatar_url, bio, website, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, profile.ID, profile.Email, profile.FullName, nullIfEmpty(profile.Username), profile.Role,
		profile.AvatarURL, profile.Bio, profile.Website, profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Conflict("Profile or username already exists")
		}
		return errors.Internal("Failed to create profile", err)
	}
	return nil
}

func (r *postgresProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "Profile", "Failed to get profile")
	}
	return p, nil
}

func (r *postgresProfileRepository) GetByUsername(ctx context.Context, username string) (*entity.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+` FROM profiles WHERE lower(username) = lower($1)
	`, username))
	if err != nil {
		return nil, notFoundOr(err, "Profile", "Failed to get profile")
	}
	return p, nil
}

func (r *postgresProfileRepository) Update(ctx context.Context, profile *entity.Profile) error {
	profile.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
		UPDATE profiles
		SET full_name = $2, username = $3, role = $4, avatar_url = $5, bio = $6, website = $7, updated_at = $8
		WHERE id = $1
	`, profile.ID, profile.FullName, nullIfEmpty(profile.Username), profile.Role, profile.AvatarURL,
		profile.Bio, profile.Website, profile.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Conflict("Username is already taken")
		}
		return errors.Internal("Failed to update profile", err)
	}
	return expectOneRow(result, "Profile")
}

func (r *postgresProfileRepository) CountByRole(ctx context.Context) (entity.RoleCounts, error) {
	var counts entity.RoleCounts
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE role = 'buyer'),
			COUNT(*) FILTER (WHERE role = 'seller'),
			COUNT(*) FILTER (WHERE role = 'admin')
		FROM profiles
	`).Scan(&counts.Buyers, &counts.Sellers, &counts.Admins)
	if err != nil {
		return counts, errors.Internal("Failed to count profiles", err)
	}
	return counts, nil
}
