package usecase

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/internal/domain/service"
	"planmarket/internal/infrastructure/metrics"
	"planmarket/pkg/errors"
	"planmarket/pkg/logger"
)

const (
	featuredLimit      = 6
	detailReviewsLimit = 10
	signedURLTTL       = 15 * time.Minute
)

type CatalogUseCase struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	profileRepo  repository.ProfileRepository
	reviewRepo   repository.ReviewRepository
	orderRepo    repository.OrderRepository
	storage      service.FileStorage
	metrics      *metrics.Metrics
	maxFileBytes int64
	relations    relations
}

func NewCatalogUseCase(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	profileRepo repository.ProfileRepository,
	reviewRepo repository.ReviewRepository,
	orderRepo repository.OrderRepository,
	storage service.FileStorage,
	m *metrics.Metrics,
	maxFileBytes int64,
) *CatalogUseCase {
	return &CatalogUseCase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		profileRepo:  profileRepo,
		reviewRepo:   reviewRepo,
		orderRepo:    orderRepo,
		storage:      storage,
		metrics:      m,
		maxFileBytes: maxFileBytes,
		relations:    relations{profiles: profileRepo, products: productRepo, categories: categoryRepo},
	}
}

type ListProductsInput struct {
	CategoryID string
	Sort       string
	Order      string
	Page       int
	Limit      int
}

func parseSort(field, order string) (repository.Sort, error) {
	s := repository.Sort{Field: repository.SortCreatedAt, Desc: true}
	switch field {
	case "":
	case repository.SortCreatedAt, repository.SortPrice, repository.SortDownloads, repository.SortRating, repository.SortTitle:
		s.Field = field
	default:
		return s, errors.BadRequest("Invalid sort field: "+field, nil)
	}
	switch strings.ToLower(order) {
	case "", "desc":
	case "asc":
		s.Desc = false
	default:
		return s, errors.BadRequest("Invalid sort order: "+order, nil)
	}
	return s, nil
}

// ListProducts returns published products only.
func (uc *CatalogUseCase) ListProducts(ctx context.Context, input ListProductsInput) ([]*entity.ProductListing, int64, error) {
	s, err := parseSort(input.Sort, input.Order)
	if err != nil {
		return nil, 0, err
	}
	filter := entity.ProductFilter{
		CategoryID: input.CategoryID,
		Status:     entity.ProductStatusPublished,
	}
	products, total, err := uc.productRepo.List(ctx, filter, s, input.Limit, offsetFor(input.Page, input.Limit))
	if err != nil {
		return nil, 0, err
	}
	listings, err := uc.relations.productListings(ctx, products)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (uc *CatalogUseCase) Featured(ctx context.Context) ([]*entity.ProductListing, error) {
	featured := true
	filter := entity.ProductFilter{Status: entity.ProductStatusPublished, Featured: &featured}
	products, _, err := uc.productRepo.List(ctx, filter, repository.Sort{Field: repository.SortCreatedAt, Desc: true}, featuredLimit, 0)
	if err != nil {
		return nil, err
	}
	return uc.relations.productListings(ctx, products)
}

func (uc *CatalogUseCase) Search(ctx context.Context, query string, page, limit int) ([]*entity.ProductListing, int64, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, 0, errors.BadRequest("Search query is required", nil)
	}
	filter := entity.ProductFilter{Status: entity.ProductStatusPublished, Query: query}
	products, total, err := uc.productRepo.List(ctx, filter, repository.Sort{Field: repository.SortCreatedAt, Desc: true}, limit, offsetFor(page, limit))
	if err != nil {
		return nil, 0, err
	}
	listings, err := uc.relations.productListings(ctx, products)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (uc *CatalogUseCase) Categories(ctx context.Context) ([]*entity.Category, error) {
	return uc.categoryRepo.List(ctx)
}

// GetProduct resolves the product detail view and counts the read as a
// download. Plan files are only listed for the owner.
func (uc *CatalogUseCase) GetProduct(ctx context.Context, viewerID, id string) (*entity.ProductDetail, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.productRepo.IncrementDownloads(ctx, id); err != nil {
		return nil, err
	}
	product.Downloads++
	uc.metrics.ProductViewed()

	detail := &entity.ProductDetail{Product: product}

	if product.CategoryID != "" {
		if category, err := uc.categoryRepo.GetByID(ctx, product.CategoryID); err == nil {
			detail.Category = category
		} else if !errors.Is(err, errors.CodeNotFound) {
			return nil, err
		}
	}

	if seller, err := uc.profileRepo.GetByID(ctx, product.SellerID); err == nil {
		detail.Seller = seller
	} else if !errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}

	reviews, _, err := uc.reviewRepo.ListByProduct(ctx, id, repository.Sort{Field: repository.SortCreatedAt, Desc: true}, detailReviewsLimit, 0)
	if err != nil {
		return nil, err
	}
	if detail.Reviews, err = uc.relations.reviewsWithBuyers(ctx, reviews); err != nil {
		return nil, err
	}

	if viewerID != product.SellerID {
		product.Files = nil
	}
	return detail, nil
}

type CreateProductInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	CategoryID  string
	Images      []string
	Status      string
	Featured    bool
}

func (uc *CatalogUseCase) CreateProduct(ctx context.Context, sellerID string, input CreateProductInput) (*entity.Product, error) {
	seller, err := uc.profileRepo.GetByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if !seller.IsSeller() {
		return nil, errors.Forbidden("Only sellers can create products", nil)
	}

	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}
	if err := uc.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = entity.ProductStatusPublished
	}

	product := &entity.Product{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Price:       input.Price.Round(2),
		Images:      append([]string{}, input.Images...),
		Files:       []string{},
		CategoryID:  input.CategoryID,
		SellerID:    sellerID,
		Status:      status,
		Featured:    input.Featured,
	}
	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	logger.Info("Product %s created by seller %s", product.ID, sellerID)
	return product, nil
}

type UpdateProductInput struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	CategoryID  *string
	Images      []string
	Status      *string
	Featured    *bool
}

func (uc *CatalogUseCase) UpdateProduct(ctx context.Context, sellerID, id string, input UpdateProductInput) (*entity.Product, error) {
	product, err := uc.ownedProduct(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		product.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if err := validatePrice(*input.Price); err != nil {
			return nil, err
		}
		product.Price = input.Price.Round(2)
	}
	if input.CategoryID != nil {
		if err := uc.checkCategory(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *input.CategoryID
	}
	if input.Images != nil {
		product.Images = input.Images
	}
	if input.Status != nil {
		product.Status = *input.Status
	}
	if input.Featured != nil {
		product.Featured = *input.Featured
	}

	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (uc *CatalogUseCase) DeleteProduct(ctx context.Context, sellerID, id string) error {
	product, err := uc.ownedProduct(ctx, sellerID, id)
	if err != nil {
		return err
	}
	if err := uc.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	refs := append(append([]string{}, product.Files...), product.Images...)
	for _, ref := range refs {
		if err := uc.storage.Delete(ctx, ref); err != nil {
			logger.Warn("Delete object %s of product %s: %v", ref, id, err)
		}
	}
	return nil
}

// Upload describes one multipart file.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// UploadPlanFile stores a plan document as a private object. Re-uploading
// the same filename replaces it.
func (uc *CatalogUseCase) UploadPlanFile(ctx context.Context, sellerID, id string, file Upload) (*entity.Product, error) {
	product, err := uc.ownedProduct(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}
	if uc.maxFileBytes > 0 && file.Size > uc.maxFileBytes {
		return nil, errors.BadRequest("File is too large", nil)
	}

	name := path.Base(strings.ReplaceAll(file.Filename, "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return nil, errors.BadRequest("Filename is required", nil)
	}

	objectPath := "plans/" + product.ID + "/" + name
	ref, err := uc.storage.Upload(ctx, file.Content, objectPath, file.ContentType, false)
	if err != nil {
		return nil, errors.Internal("Failed to store file", err)
	}

	if !contains(product.Files, ref) {
		product.Files = append(product.Files, ref)
	}
	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (uc *CatalogUseCase) UploadImage(ctx context.Context, sellerID, id string, file Upload) (*entity.Product, error) {
	product, err := uc.ownedProduct(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}
	ext, ok := imageExtensions[strings.ToLower(file.ContentType)]
	if !ok {
		return nil, errors.BadRequest("Only JPEG, PNG, GIF and WebP images are allowed", nil)
	}
	if uc.maxFileBytes > 0 && file.Size > uc.maxFileBytes {
		return nil, errors.BadRequest("File is too large", nil)
	}

	objectPath := "products/" + product.ID + "/images/" + uuid.NewString() + "." + ext
	url, err := uc.storage.Upload(ctx, file.Content, objectPath, file.ContentType, true)
	if err != nil {
		return nil, errors.Internal("Failed to store image", err)
	}

	product.Images = append(product.Images, url)
	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// CanDownload reports whether userID may fetch the product's plan files.
func (uc *CatalogUseCase) CanDownload(ctx context.Context, userID string, product *entity.Product) (bool, error) {
	if userID == product.SellerID {
		return true, nil
	}
	return uc.orderRepo.HasCompletedOrder(ctx, userID, product.ID)
}

// SignFiles replaces stored file paths with short-lived download URLs.
func (uc *CatalogUseCase) SignFiles(ctx context.Context, product *entity.Product) error {
	signed := make([]string, 0, len(product.Files))
	for _, ref := range product.Files {
		url, err := uc.storage.SignedURL(ctx, ref, signedURLTTL)
		if err != nil {
			return errors.Internal("Failed to sign file URL", err)
		}
		signed = append(signed, url)
	}
	product.Files = signed
	return nil
}

// ownedProduct hides products of other sellers behind NotFound.
func (uc *CatalogUseCase) ownedProduct(ctx context.Context, sellerID, id string) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.SellerID != sellerID {
		return nil, errors.NotFound("Product", nil)
	}
	return product, nil
}

func (uc *CatalogUseCase) checkCategory(ctx context.Context, categoryID string) error {
	if categoryID == "" {
		return nil
	}
	if _, err := uc.categoryRepo.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return errors.BadRequest("Unknown category", err)
		}
		return err
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return errors.BadRequest("Price must be greater than zero", nil)
	}
	return nil
}

func hideFiles(products []*entity.Product) []*entity.Product {
	for _, p := range products {
		p.Files = nil
	}
	return products
}

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
