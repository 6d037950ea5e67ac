package handler

import (
	"github.com/labstack/echo/v4"

	"planmarket/internal/usecase"
	"planmarket/pkg/response"
	"planmarket/pkg/utils"
)

const reviewsPageSize = 10

type ReviewHandler struct {
	reviewUseCase *usecase.ReviewUseCase
}

func NewReviewHandler(reviewUseCase *usecase.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{
		reviewUseCase: reviewUseCase,
	}
}

type createReviewRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"max=2000"`
}

type updateReviewRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

func (h *ReviewHandler) CreateReview(c echo.Context) error {
	var req createReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	review, err := h.reviewUseCase.CreateReview(c.Request().Context(), c.Get("uid").(string), usecase.CreateReviewInput{
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, review)
}

func (h *ReviewHandler) UpdateReview(c echo.Context) error {
	var req updateReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	review, err := h.reviewUseCase.UpdateReview(c.Request().Context(), c.Get("uid").(string), c.Param("id"), usecase.UpdateReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, review)
}

func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	if err := h.reviewUseCase.DeleteReview(c.Request().Context(), c.Get("uid").(string), c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"message": "Review deleted"})
}

// ProductReviews pages a product's reviews with the rating summary.
func (h *ReviewHandler) ProductReviews(c echo.Context) error {
	pagination := utils.GetPaginationParamsWithDefault(c, reviewsPageSize)

	reviews, total, summary, err := h.reviewUseCase.ProductReviews(c.Request().Context(), usecase.ProductReviewsInput{
		ProductID: c.Param("id"),
		Sort:      c.QueryParam("sort"),
		Order:     c.QueryParam("order"),
		Page:      pagination.Page,
		Limit:     pagination.PageSize,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.PaginatedWithSummary(c, reviews, total, pagination.Page, pagination.PageSize, summary)
}

func (h *ReviewHandler) MyReviews(c echo.Context) error {
	pagination := utils.GetPaginationParamsWithDefault(c, reviewsPageSize)

	reviews, total, err := h.reviewUseCase.MyReviews(c.Request().Context(), c.Get("uid").(string), pagination.Page, pagination.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, reviews, total, pagination.Page, pagination.PageSize)
}
