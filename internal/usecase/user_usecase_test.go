package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planmarket/internal/domain/entity"
	"planmarket/pkg/errors"
)

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "u1", entity.RoleBuyer)
	taken := f.profile(t, "u2", entity.RoleBuyer)
	taken.Username = "maker"
	require.NoError(t, f.repos.Profiles.Update(ctx, taken))

	name := "Ada Woodworker"
	bio := "Builds chairs"
	updated, err := f.profiles.UpdateProfile(ctx, "u1", UpdateProfileInput{FullName: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Ada Woodworker", updated.FullName)
	assert.Equal(t, "Builds chairs", updated.Bio)

	dup := "maker"
	_, err = f.profiles.UpdateProfile(ctx, "u1", UpdateProfileInput{Username: &dup})
	assert.True(t, errors.Is(err, errors.CodeConflict))
}

func TestUploadAvatar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "u1", entity.RoleBuyer)

	_, err := f.profiles.UploadAvatar(ctx, "u1", Upload{ContentType: "application/pdf", Size: 1, Content: strings.NewReader("x")})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	_, err = f.profiles.UploadAvatar(ctx, "u1", Upload{ContentType: "image/png", Size: 4 << 10, Content: strings.NewReader("x")})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	profile, err := f.profiles.UploadAvatar(ctx, "u1", Upload{ContentType: "image/png", Size: 3, Content: strings.NewReader("one")})
	require.NoError(t, err)
	assert.Equal(t, "http://files.test/avatars/u1/avatar.png", profile.AvatarURL)

	_, err = f.profiles.UploadAvatar(ctx, "u1", Upload{ContentType: "image/png", Size: 3, Content: strings.NewReader("two")})
	require.NoError(t, err)
	data, _, ok := f.storage.Object("avatars/u1/avatar.png")
	require.True(t, ok)
	assert.Equal(t, "two", string(data))
}

func TestSellerProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "seller", entity.RoleSeller)
	f.profile(t, "buyer", entity.RoleBuyer)
	f.product(t, "seller", "5.00")

	sp, err := f.profiles.SellerProfile(ctx, "seller")
	require.NoError(t, err)
	assert.Len(t, sp.Products, 1)

	_, err = f.profiles.SellerProfile(ctx, "buyer")
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	_, err = f.profiles.SellerProfile(ctx, "nobody")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}
