package router

import (
	"github.com/labstack/echo/v4"

	"planmarket/internal/adapter/api/handler"
	"planmarket/internal/adapter/api/middleware"
)

func SetupProductRouter(v1 *echo.Group, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware) {
	productHandler := handler.GetProductHandler()

	v1.GET("/products", productHandler.ListProducts)
	v1.GET("/categories", productHandler.Categories)
	v1.GET("/featured", productHandler.Featured)
	v1.GET("/search", productHandler.Search)

	// The owner sees plan files on the detail view.
	v1.GET("/product-:id", productHandler.GetProduct, authMiddleware.Optional)

	v1.POST("/products", productHandler.CreateProduct, authMiddleware.Authenticate, roleMiddleware.SellerOnly)

	owner := v1.Group("", authMiddleware.Authenticate)
	owner.PUT("/product-:id", productHandler.UpdateProduct)
	owner.DELETE("/product-:id", productHandler.DeleteProduct)
	owner.POST("/product-:id/files", productHandler.UploadFile)
	owner.POST("/product-:id/images", productHandler.UploadImage)
}
