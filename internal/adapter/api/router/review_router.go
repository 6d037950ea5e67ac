package router

import (
	"github.com/labstack/echo/v4"

	"planmarket/internal/adapter/api/handler"
	"planmarket/internal/adapter/api/middleware"
)

func SetupReviewRouter(v1 *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	reviewHandler := handler.GetReviewHandler()

	v1.GET("/reviews/product-:id", reviewHandler.ProductReviews)

	reviews := v1.Group("", authMiddleware.Authenticate)
	reviews.POST("/reviews", reviewHandler.CreateReview)
	reviews.PUT("/review-:id", reviewHandler.UpdateReview)
	reviews.DELETE("/review-:id", reviewHandler.DeleteReview)
	reviews.GET("/my-reviews", reviewHandler.MyReviews)
}
