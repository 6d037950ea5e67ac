package usecase

import (
	"context"
	"strings"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/internal/domain/service"
	"planmarket/pkg/errors"
)

type ProfileUseCase struct {
	profileRepo    repository.ProfileRepository
	productRepo    repository.ProductRepository
	storage        service.FileStorage
	maxAvatarBytes int64
}

func NewProfileUseCase(
	profileRepo repository.ProfileRepository,
	productRepo repository.ProductRepository,
	storage service.FileStorage,
	maxAvatarBytes int64,
) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo:    profileRepo,
		productRepo:    productRepo,
		storage:        storage,
		maxAvatarBytes: maxAvatarBytes,
	}
}

func (uc *ProfileUseCase) GetProfile(ctx context.Context, userID string) (*entity.Profile, error) {
	return uc.profileRepo.GetByID(ctx, userID)
}

type UpdateProfileInput struct {
	FullName *string
	Username *string
	Bio      *string
	Website  *string
}

func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.Profile, error) {
	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username != "" && username != profile.Username {
			existing, err := uc.profileRepo.GetByUsername(ctx, username)
			if err == nil && existing.ID != userID {
				return nil, errors.Conflict("Username is already taken")
			}
			if err != nil && !errors.Is(err, errors.CodeNotFound) {
				return nil, err
			}
		}
		profile.Username = username
	}
	if input.FullName != nil {
		profile.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Bio != nil {
		profile.Bio = *input.Bio
	}
	if input.Website != nil {
		profile.Website = strings.TrimSpace(*input.Website)
	}

	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// UploadAvatar stores the image at a fixed per-user path, so a new upload
// replaces the previous avatar.
func (uc *ProfileUseCase) UploadAvatar(ctx context.Context, userID string, file Upload) (*entity.Profile, error) {
	ext, ok := imageExtensions[strings.ToLower(file.ContentType)]
	if !ok {
		return nil, errors.BadRequest("Only JPEG, PNG, GIF and WebP images are allowed", nil)
	}
	if uc.maxAvatarBytes > 0 && file.Size > uc.maxAvatarBytes {
		return nil, errors.BadRequest("Avatar file is too large", nil)
	}

	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := uc.storage.Upload(ctx, file.Content, "avatars/"+userID+"/avatar."+ext, file.ContentType, true)
	if err != nil {
		return nil, errors.Internal("Failed to store avatar", err)
	}

	profile.AvatarURL = url
	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// SellerProfile is the public seller page. Non-sellers are reported missing.
func (uc *ProfileUseCase) SellerProfile(ctx context.Context, sellerID string) (*entity.SellerProfile, error) {
	profile, err := uc.profileRepo.GetByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if !profile.IsSeller() {
		return nil, errors.NotFound("Seller", nil)
	}

	filter := entity.ProductFilter{SellerID: sellerID, Status: entity.ProductStatusPublished}
	products, _, err := uc.productRepo.List(ctx, filter, repository.Sort{Field: repository.SortCreatedAt, Desc: true}, 0, 0)
	if err != nil {
		return nil, err
	}
	return &entity.SellerProfile{Profile: profile, Products: hideFiles(products)}, nil
}
