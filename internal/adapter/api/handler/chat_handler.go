package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"planmarket/internal/usecase"
	"planmarket/pkg/errors"
	"planmarket/pkg/response"
	"planmarket/pkg/utils"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type createChatRequest struct {
	ProductID      string `json:"product_id" validate:"required"`
	InitialMessage string `json:"initial_message" validate:"max=2000"`
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// CreateChat answers 201 when a chat was opened and 200 when the caller
// already had one for this product.
func (h *ChatHandler) CreateChat(c echo.Context) error {
	var req createChatRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	chat, created, err := h.chatUseCase.CreateChat(c.Request().Context(), c.Get("uid").(string), usecase.CreateChatInput{
		ProductID:      req.ProductID,
		InitialMessage: req.InitialMessage,
	})
	if err != nil {
		return response.Error(c, err)
	}

	if !created {
		return response.Success(c, chat)
	}
	return response.Created(c, chat)
}

func (h *ChatHandler) ListChats(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	chats, total, err := h.chatUseCase.ListChats(c.Request().Context(), c.Get("uid").(string), pagination.Page, pagination.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, chats, total, pagination.Page, pagination.PageSize)
}

func (h *ChatHandler) GetChat(c echo.Context) error {
	chat, err := h.chatUseCase.GetChat(c.Request().Context(), c.Get("uid").(string), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, chat)
}

// Messages serves polling clients: ?since=<RFC3339>&limit=n.
func (h *ChatHandler) Messages(c echo.Context) error {
	var since time.Time
	if raw := c.QueryParam("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return response.Error(c, errors.BadRequest("since must be an RFC3339 timestamp", err))
		}
		since = parsed
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return response.Error(c, errors.BadRequest("limit must be a positive integer", err))
		}
		limit = min(n, utils.MaxPageSize)
	}

	messages, err := h.chatUseCase.Messages(c.Request().Context(), c.Get("uid").(string), c.Param("id"), since, limit)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, messages)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), c.Get("uid").(string), c.Param("id"), req.Content)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, message)
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	receipt, err := h.chatUseCase.MarkRead(c.Request().Context(), c.Get("uid").(string), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, receipt)
}
