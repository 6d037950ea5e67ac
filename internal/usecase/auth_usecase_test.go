package usecase

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"planmarket/internal/domain/entity"
	"planmarket/internal/infrastructure/firebase"
	"planmarket/pkg/errors"
)

func TestRegisterDefaultsToBuyer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.auth.On("CreateUser", mock.Anything, "ada@example.com", "secret123", "Ada").Return("uid-1", nil)
	f.auth.On("SignIn", mock.Anything, "ada@example.com", "secret123").Return("uid-1", "id-token", "refresh-token", nil)

	result, err := f.authUC.Register(ctx, RegisterInput{Email: " Ada@Example.com ", Password: "secret123", FullName: "Ada", Username: "ada"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleBuyer, result.Profile.Role)
	assert.Equal(t, "uid-1", result.Profile.ID)
	assert.Equal(t, "id-token", result.Tokens.IDToken)

	stored, err := f.repos.Profiles.GetByID(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", stored.Email)
	f.auth.AssertExpectations(t)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	f := newFixture(t)
	_, err := f.authUC.Register(context.Background(), RegisterInput{Email: "a@b.c", Password: "secret123", Role: entity.RoleAdmin})
	assert.True(t, errors.Is(err, errors.CodeForbidden))
	f.auth.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterMapsExistingEmail(t *testing.T) {
	f := newFixture(t)
	f.auth.On("CreateUser", mock.Anything, "a@b.c", "secret123", "").Return("", firebase.ErrEmailExists)

	_, err := f.authUC.Register(context.Background(), RegisterInput{Email: "a@b.c", Password: "secret123", Role: entity.RoleSeller})
	assert.True(t, errors.Is(err, errors.CodeConflict))
}

func TestRegisterRollsBackIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "uid-dup", entity.RoleBuyer)
	f.auth.On("CreateUser", mock.Anything, "a@b.c", "secret123", "").Return("uid-dup", nil)
	f.auth.On("DeleteUser", mock.Anything, "uid-dup").Return(nil)

	_, err := f.authUC.Register(ctx, RegisterInput{Email: "a@b.c", Password: "secret123"})
	require.Error(t, err)
	f.auth.AssertCalled(t, "DeleteUser", mock.Anything, "uid-dup")
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "uid-1", entity.RoleSeller)
	f.auth.On("SignIn", mock.Anything, "a@b.c", "good").Return("uid-1", "id", "rt", nil)
	f.auth.On("SignIn", mock.Anything, "a@b.c", "bad").Return("", "", "", firebase.ErrInvalidCredentials)

	result, err := f.authUC.Login(ctx, "a@b.c", "good")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSeller, result.Profile.Role)

	_, err = f.authUC.Login(ctx, "a@b.c", "bad")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))
}

func TestRefreshAndLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.auth.On("Refresh", mock.Anything, "rt").Return("uid-1", "id2", "rt2", nil)
	f.auth.On("Refresh", mock.Anything, "expired").Return("", "", "", firebase.ErrInvalidCredentials)
	f.auth.On("RevokeTokens", mock.Anything, "uid-1").Return(nil)
	f.auth.On("RevokeTokens", mock.Anything, "uid-2").Return(stderrors.New("backend down"))

	tokens, err := f.authUC.Refresh(ctx, "rt")
	require.NoError(t, err)
	assert.Equal(t, "id2", tokens.IDToken)
	assert.Equal(t, "rt2", tokens.RefreshToken)

	_, err = f.authUC.Refresh(ctx, "expired")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))

	require.NoError(t, f.authUC.Logout(ctx, "uid-1"))
	assert.True(t, errors.Is(f.authUC.Logout(ctx, "uid-2"), errors.CodeInternal))
}
