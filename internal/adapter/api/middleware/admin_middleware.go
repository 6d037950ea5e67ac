package middleware

import (
	"github.com/labstack/echo/v4"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/pkg/errors"
	"planmarket/pkg/response"
)

// RoleMiddleware gates routes on the caller's profile role. It must run after
// AuthMiddleware.Authenticate.
type RoleMiddleware struct {
	profileRepo repository.ProfileRepository
}

func NewRoleMiddleware(profileRepo repository.ProfileRepository) *RoleMiddleware {
	return &RoleMiddleware{
		profileRepo: profileRepo,
	}
}

func (m *RoleMiddleware) require(role, message string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := UserID(c)
			if uid == "" {
				return response.Error(c, errors.Unauthorized("Authentication required", nil))
			}

			profile, err := m.profileRepo.GetByID(c.Request().Context(), uid)
			if err != nil {
				if errors.Is(err, errors.CodeNotFound) {
					return response.Error(c, errors.Forbidden(message, nil))
				}
				return response.Error(c, err)
			}

			if profile.Role != role {
				return response.Error(c, errors.Forbidden(message, nil))
			}

			c.Set("role", profile.Role)
			return next(c)
		}
	}
}

func (m *RoleMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(entity.RoleAdmin, "Admin privileges required")(next)
}

func (m *RoleMiddleware) SellerOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(entity.RoleSeller, "Seller account required")(next)
}
