package router

import (
	"github.com/labstack/echo/v4"

	"planmarket/internal/adapter/api/handler"
	"planmarket/internal/adapter/api/middleware"
)

func SetupProfileRouter(v1 *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	profileHandler := handler.GetProfileHandler()

	v1.GET("/seller-:id", profileHandler.SellerProfile)

	me := v1.Group("", authMiddleware.Authenticate)
	me.GET("/profile", profileHandler.GetProfile)
	me.PUT("/profile", profileHandler.UpdateProfile)
	me.POST("/avatar", profileHandler.UploadAvatar)
}
