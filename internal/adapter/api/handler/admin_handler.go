package handler

import (
	"github.com/labstack/echo/v4"

	"planmarket/internal/usecase"
	"planmarket/pkg/response"
	"planmarket/pkg/utils"
)

type AdminHandler struct {
	adminUseCase *usecase.AdminUseCase
}

func NewAdminHandler(adminUseCase *usecase.AdminUseCase) *AdminHandler {
	return &AdminHandler{
		adminUseCase: adminUseCase,
	}
}

func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.adminUseCase.PlatformStats(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, stats)
}

func (h *AdminHandler) Orders(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	orders, total, err := h.adminUseCase.Orders(c.Request().Context(), pagination.Page, pagination.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, orders, total, pagination.Page, pagination.PageSize)
}

func (h *AdminHandler) TopSellers(c echo.Context) error {
	sellers, err := h.adminUseCase.TopSellers(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, sellers)
}
