package usecase

import (
	"context"
	stderrors "errors"
	"strings"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/internal/infrastructure/firebase"
	"planmarket/pkg/errors"
	"planmarket/pkg/logger"
)

type AuthUseCase struct {
	profileRepo repository.ProfileRepository
	auth        AuthProvider
}

func NewAuthUseCase(profileRepo repository.ProfileRepository, auth AuthProvider) *AuthUseCase {
	return &AuthUseCase{
		profileRepo: profileRepo,
		auth:        auth,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Username string
	Role     string
}

type Tokens struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthResult struct {
	Profile *entity.Profile `json:"profile"`
	Tokens  Tokens          `json:"tokens"`
}

// Register creates the identity and the profile. If the profile cannot be
// stored the identity is deleted again.
func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	role := input.Role
	switch role {
	case "":
		role = entity.RoleBuyer
	case entity.RoleBuyer, entity.RoleSeller:
	case entity.RoleAdmin:
		return nil, errors.Forbidden("Admin role cannot be self-assigned", nil)
	default:
		return nil, errors.BadRequest("Role must be buyer or seller", nil)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.TrimSpace(input.Username)
	if username != "" {
		if _, err := uc.profileRepo.GetByUsername(ctx, username); err == nil {
			return nil, errors.Conflict("Username is already taken")
		} else if !errors.Is(err, errors.CodeNotFound) {
			return nil, err
		}
	}

	uid, err := uc.auth.CreateUser(ctx, email, input.Password, input.FullName)
	if err != nil {
		if stderrors.Is(err, firebase.ErrEmailExists) {
			return nil, errors.Conflict("Email already in use")
		}
		return nil, errors.Internal("Failed to create user in authentication provider", err)
	}

	profile := &entity.Profile{
		ID:       uid,
		Email:    email,
		FullName: strings.TrimSpace(input.FullName),
		Username: username,
		Role:     role,
	}
	if err := uc.profileRepo.Create(ctx, profile); err != nil {
		if delErr := uc.auth.DeleteUser(ctx, uid); delErr != nil {
			logger.Error("Rollback of identity %s failed: %v", uid, delErr)
		}
		return nil, err
	}

	_, idToken, refreshToken, err := uc.auth.SignIn(ctx, email, input.Password)
	if err != nil {
		return nil, errors.Internal("Failed to generate authentication token", err)
	}

	logger.Info("Registered %s as %s", uid, role)
	return &AuthResult{
		Profile: profile,
		Tokens:  Tokens{IDToken: idToken, RefreshToken: refreshToken},
	}, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	uid, idToken, refreshToken, err := uc.auth.SignIn(ctx, strings.ToLower(strings.TrimSpace(email)), password)
	if err != nil {
		if stderrors.Is(err, firebase.ErrInvalidCredentials) {
			return nil, errors.Unauthorized("Invalid credentials", err)
		}
		return nil, errors.Internal("Failed to sign in", err)
	}

	profile, err := uc.profileRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Profile: profile,
		Tokens:  Tokens{IDToken: idToken, RefreshToken: refreshToken},
	}, nil
}

func (uc *AuthUseCase) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	_, idToken, newRefresh, err := uc.auth.Refresh(ctx, refreshToken)
	if err != nil {
		if stderrors.Is(err, firebase.ErrInvalidCredentials) {
			return nil, errors.Unauthorized("Invalid refresh token", err)
		}
		return nil, errors.Internal("Failed to refresh token", err)
	}
	return &Tokens{IDToken: idToken, RefreshToken: newRefresh}, nil
}

// Logout revokes every refresh token of the user.
func (uc *AuthUseCase) Logout(ctx context.Context, userID string) error {
	if err := uc.auth.RevokeTokens(ctx, userID); err != nil {
		return errors.Internal("Failed to revoke tokens", err)
	}
	return nil
}

func (uc *AuthUseCase) Profile(ctx context.Context, userID string) (*entity.Profile, error) {
	return uc.profileRepo.GetByID(ctx, userID)
}
