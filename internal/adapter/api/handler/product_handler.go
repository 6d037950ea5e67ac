package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"planmarket/internal/adapter/api/middleware"
	"planmarket/internal/usecase"
	"planmarket/pkg/response"
	"planmarket/pkg/utils"
)

type ProductHandler struct {
	catalogUseCase *usecase.CatalogUseCase
}

func NewProductHandler(catalogUseCase *usecase.CatalogUseCase) *ProductHandler {
	return &ProductHandler{
		catalogUseCase: catalogUseCase,
	}
}

type createProductRequest struct {
	Title       string           `json:"title" validate:"required,max=200"`
	Description string           `json:"description" validate:"max=10000"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	CategoryID  string           `json:"category_id" validate:"required"`
	Images      []string         `json:"images" validate:"omitempty,dive,url"`
	Status      string           `json:"status" validate:"omitempty,oneof=draft published"`
	Featured    bool             `json:"featured"`
}

type updateProductRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=10000"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *string          `json:"category_id" validate:"omitempty,min=1"`
	Images      []string         `json:"images" validate:"omitempty,dive,url"`
	Status      *string          `json:"status" validate:"omitempty,oneof=draft published"`
	Featured    *bool            `json:"featured"`
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	products, total, err := h.catalogUseCase.ListProducts(c.Request().Context(), usecase.ListProductsInput{
		CategoryID: c.QueryParam("category"),
		Sort:       c.QueryParam("sort"),
		Order:      c.QueryParam("order"),
		Page:       pagination.Page,
		Limit:      pagination.PageSize,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, products, total, pagination.Page, pagination.PageSize)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	detail, err := h.catalogUseCase.GetProduct(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, detail)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req createProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	sellerID := c.Get("uid").(string)

	product, err := h.catalogUseCase.CreateProduct(c.Request().Context(), sellerID, usecase.CreateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       *req.Price,
		CategoryID:  req.CategoryID,
		Images:      req.Images,
		Status:      req.Status,
		Featured:    req.Featured,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, product)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	var req updateProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	sellerID := c.Get("uid").(string)

	product, err := h.catalogUseCase.UpdateProduct(c.Request().Context(), sellerID, c.Param("id"), usecase.UpdateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		Images:      req.Images,
		Status:      req.Status,
		Featured:    req.Featured,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	sellerID := c.Get("uid").(string)

	if err := h.catalogUseCase.DeleteProduct(c.Request().Context(), sellerID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Product deleted"})
}

func (h *ProductHandler) UploadFile(c echo.Context) error {
	upload, closer, err := formUpload(c, "file")
	if err != nil {
		return response.Error(c, err)
	}
	defer closer.Close()

	product, err := h.catalogUseCase.UploadPlanFile(c.Request().Context(), c.Get("uid").(string), c.Param("id"), upload)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, product)
}

func (h *ProductHandler) UploadImage(c echo.Context) error {
	upload, closer, err := formUpload(c, "image")
	if err != nil {
		return response.Error(c, err)
	}
	defer closer.Close()

	product, err := h.catalogUseCase.UploadImage(c.Request().Context(), c.Get("uid").(string), c.Param("id"), upload)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, product)
}

func (h *ProductHandler) Categories(c echo.Context) error {
	categories, err := h.catalogUseCase.Categories(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, categories)
}

func (h *ProductHandler) Featured(c echo.Context) error {
	products, err := h.catalogUseCase.Featured(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, products)
}

func (h *ProductHandler) Search(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	products, total, err := h.catalogUseCase.Search(c.Request().Context(), c.QueryParam("q"), pagination.Page, pagination.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, products, total, pagination.Page, pagination.PageSize)
}
