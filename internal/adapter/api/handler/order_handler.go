package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"planmarket/internal/usecase"
	"planmarket/pkg/response"
	"planmarket/pkg/utils"
)

const idempotencyHeader = "Idempotency-Key"

type OrderHandler struct {
	orderUseCase *usecase.OrderUseCase
}

func NewOrderHandler(orderUseCase *usecase.OrderUseCase) *OrderHandler {
	return &OrderHandler{
		orderUseCase: orderUseCase,
	}
}

type createOrderRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending completed canceled refunded"`
}

// CreateOrder answers 201 for a new order and 200 when the Idempotency-Key
// matched an earlier one.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req createOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	buyerID := c.Get("uid").(string)

	order, created, err := h.orderUseCase.CreateOrder(c.Request().Context(), buyerID, usecase.CreateOrderInput{
		ProductID:      req.ProductID,
		IdempotencyKey: strings.TrimSpace(c.Request().Header.Get(idempotencyHeader)),
	})
	if err != nil {
		return response.Error(c, err)
	}

	if !created {
		return response.Success(c, order)
	}
	return response.Created(c, order)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	orders, total, err := h.orderUseCase.ListOrders(c.Request().Context(), c.Get("uid").(string), c.QueryParam("status"), pagination.Page, pagination.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, orders, total, pagination.Page, pagination.PageSize)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	order, err := h.orderUseCase.GetOrder(c.Request().Context(), c.Get("uid").(string), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, order)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req updateOrderStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	order, err := h.orderUseCase.UpdateStatus(c.Request().Context(), c.Get("uid").(string), c.Param("id"), req.Status)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, order)
}

func (h *OrderHandler) ListSales(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	orders, total, summary, err := h.orderUseCase.ListSales(c.Request().Context(), c.Get("uid").(string), c.QueryParam("status"), pagination.Page, pagination.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.PaginatedWithSummary(c, orders, total, pagination.Page, pagination.PageSize, summary)
}

func (h *OrderHandler) Stats(c echo.Context) error {
	stats, err := h.orderUseCase.Stats(c.Request().Context(), c.Get("uid").(string))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, stats)
}
