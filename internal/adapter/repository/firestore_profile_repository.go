package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/pkg/errors"
)

type firestoreProfileRepository struct {
	client *firestore.Client
}

func NewFirestoreProfileRepository(client *firestore.Client) repository.ProfileRepository {
	return &firestoreProfileRepository{client: client}
}

func (r *firestoreProfileRepository) col() *firestore.CollectionRef {
	return r.client.Collection(collectionProfiles)
}

func (r *firestoreProfileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	if _, err := r.col().Doc(profile.ID).Create(ctx, profile); err != nil {
		if isAlreadyExists(err) {
			return errors.Conflict("Profile already exists")
		}
		return errors.Internal("Failed to create profile", err)
	}
	return nil
}

func (r *firestoreProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		return nil, fsGetError(err, "Profile", "Failed to get profile")
	}
	var profile entity.Profile
	if err := snap.DataTo(&profile); err != nil {
		return nil, errors.Internal("Failed to parse profile data", err)
	}
	return &profile, nil
}

// GetByUsername matches exactly; Firestore has no case-insensitive equality.
func (r *firestoreProfileRepository) GetByUsername(ctx context.Context, username string) (*entity.Profile, error) {
	profiles, err := collect[entity.Profile](r.col().Where("username", "==", username).Limit(1).Documents(ctx), "profiles")
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, errors.NotFound("Profile", nil)
	}
	return profiles[0], nil
}

func (r *firestoreProfileRepository) Update(ctx context.Context, profile *entity.Profile) error {
	profile.UpdatedAt = time.Now().UTC()
	_, err := r.col().Doc(profile.ID).Update(ctx, []firestore.Update{
		{Path: "fullName", Value: profile.FullName},
		{Path: "username", Value: profile.Username},
		{Path: "role", Value: profile.Role},
		{Path: "avatarUrl", Value: profile.AvatarURL},
		{Path: "bio", Value: profile.Bio},
		{Path: "website", Value: profile.Website},
		{Path: "updatedAt", Value: profile.UpdatedAt},
	})
	if err != nil {
		return fsGetError(err, "Profile", "Failed to update profile")
	}
	return nil
}

func (r *firestoreProfileRepository) CountByRole(ctx context.Context) (entity.RoleCounts, error) {
	var counts entity.RoleCounts
	for role, dst := range map[string]*int64{
		entity.RoleBuyer:  &counts.Buyers,
		entity.RoleSeller: &counts.Sellers,
		entity.RoleAdmin:  &counts.Admins,
	} {
		n, err := countQuery(ctx, r.col().Where("role", "==", role))
		if err != nil {
			return counts, errors.Internal("Failed to count profiles", err)
		}
		*dst = n
	}
	return counts, nil
}
