package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"planmarket/internal/usecase"
	"planmarket/pkg/errors"
	"planmarket/pkg/response"
	"planmarket/pkg/utils"
)

type NotificationHandler struct {
	notificationUseCase *usecase.NotificationUseCase
}

func NewNotificationHandler(notificationUseCase *usecase.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
	}
}

type notificationPage struct {
	response.PaginatedData
	UnreadCount int64 `json:"unreadCount"`
}

func (h *NotificationHandler) List(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	unreadOnly := false
	if raw := c.QueryParam("unread"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return response.Error(c, errors.BadRequest("unread must be true or false", err))
		}
		unreadOnly = parsed
	}

	list, err := h.notificationUseCase.List(c.Request().Context(), c.Get("uid").(string), unreadOnly, pagination.Page, pagination.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, notificationPage{
		PaginatedData: response.PaginatedData{
			Items:      list.Items,
			Pagination: response.NewPagination(list.Total, pagination.Page, pagination.PageSize),
		},
		UnreadCount: list.UnreadCount,
	})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	if err := h.notificationUseCase.MarkRead(c.Request().Context(), c.Get("uid").(string), c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	n, err := h.notificationUseCase.MarkAllRead(c.Request().Context(), c.Get("uid").(string))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]int64{"updated": n})
}
