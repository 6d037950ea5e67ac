package handler

import (
	"io"
	"mime/multipart"

	"github.com/labstack/echo/v4"

	ws "planmarket/internal/infrastructure/websocket"
	"planmarket/internal/usecase"
	"planmarket/pkg/errors"
)

var (
	authHandler         *AuthHandler
	profileHandler      *ProfileHandler
	productHandler      *ProductHandler
	orderHandler        *OrderHandler
	reviewHandler       *ReviewHandler
	chatHandler         *ChatHandler
	notificationHandler *NotificationHandler
	adminHandler        *AdminHandler
	webSocketHandler    *WebSocketHandler
)

// UseCases is everything the HTTP layer calls into.
type UseCases struct {
	Auth          *usecase.AuthUseCase
	Profiles      *usecase.ProfileUseCase
	Catalog       *usecase.CatalogUseCase
	Orders        *usecase.OrderUseCase
	Reviews       *usecase.ReviewUseCase
	Chats         *usecase.ChatUseCase
	Notifications *usecase.NotificationUseCase
	Admin         *usecase.AdminUseCase
}

func Setup(uc UseCases, hub *ws.Hub, allowedOrigins []string) {
	authHandler = NewAuthHandler(uc.Auth)
	profileHandler = NewProfileHandler(uc.Profiles)
	productHandler = NewProductHandler(uc.Catalog)
	orderHandler = NewOrderHandler(uc.Orders)
	reviewHandler = NewReviewHandler(uc.Reviews)
	chatHandler = NewChatHandler(uc.Chats)
	notificationHandler = NewNotificationHandler(uc.Notifications)
	adminHandler = NewAdminHandler(uc.Admin)
	webSocketHandler = NewWebSocketHandler(hub, allowedOrigins)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetProfileHandler() *ProfileHandler {
	return profileHandler
}

func GetProductHandler() *ProductHandler {
	return productHandler
}

func GetOrderHandler() *OrderHandler {
	return orderHandler
}

func GetReviewHandler() *ReviewHandler {
	return reviewHandler
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}

func GetNotificationHandler() *NotificationHandler {
	return notificationHandler
}

func GetAdminHandler() *AdminHandler {
	return adminHandler
}

func GetWebSocketHandler() *WebSocketHandler {
	return webSocketHandler
}

// bindAndValidate decodes the request into req and runs its validate tags.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.BadRequest("Invalid request body", err)
	}
	return c.Validate(req)
}

// formUpload opens the multipart file under field. The caller closes it.
func formUpload(c echo.Context, field string) (usecase.Upload, io.Closer, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return usecase.Upload{}, nil, errors.BadRequest("Multipart field '"+field+"' is required", err)
	}
	file, err := header.Open()
	if err != nil {
		return usecase.Upload{}, nil, errors.BadRequest("Failed to read uploaded file", err)
	}
	return usecase.Upload{
		Filename:    header.Filename,
		ContentType: contentType(header),
		Size:        header.Size,
		Content:     file,
	}, file, nil
}

func contentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
