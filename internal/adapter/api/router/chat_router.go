package router

import (
	"github.com/labstack/echo/v4"

	"planmarket/internal/adapter/api/handler"
	"planmarket/internal/adapter/api/middleware"
)

func SetupChatRouter(v1 *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	chatHandler := handler.GetChatHandler()

	chats := v1.Group("", authMiddleware.Authenticate)
	chats.GET("/chats", chatHandler.ListChats)
	chats.POST("/chats", chatHandler.CreateChat)
	chats.GET("/chat-:id", chatHandler.GetChat)
	chats.GET("/chat-:id/messages", chatHandler.Messages)
	chats.POST("/chat-:id/messages", chatHandler.SendMessage)
	chats.PUT("/chat-:id/read", chatHandler.MarkRead)
}
