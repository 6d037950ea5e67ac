package repository

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/pkg/errors"
)

// productDoc is the stored shape; Firestore has no decimal type so prices
// are kept as float64 rounded to cents.
type productDoc struct {
	ID           string    `firestore:"id"`
	Title        string    `firestore:"title"`
	TitleLower   string    `firestore:"titleLower"`
	Description  string    `firestore:"description"`
	Price        float64   `firestore:"price"`
	Images       []string  `firestore:"images"`
	Files        []string  `firestore:"files"`
	CategoryID   string    `firestore:"categoryId"`
	SellerID     string    `firestore:"sellerId"`
	Downloads    int64     `firestore:"downloads"`
	Rating       float64   `firestore:"rating"`
	ReviewsCount int       `firestore:"reviewsCount"`
	Status       string    `firestore:"status"`
	Featured     bool      `firestore:"featured"`
	CreatedAt    time.Time `firestore:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}

var productSortFields = map[string]string{
	repository.SortCreatedAt: "createdAt",
	repository.SortPrice:     "price",
	repository.SortDownloads: "downloads",
	repository.SortRating:    "rating",
	repository.SortTitle:     "title",
}

func toProductDoc(p *entity.Product) *productDoc {
	return &productDoc{
		ID:           p.ID,
		Title:        p.Title,
		TitleLower:   strings.ToLower(p.Title),
		Description:  p.Description,
		Price:        moneyFloat(p.Price),
		Images:       p.Images,
		Files:        p.Files,
		CategoryID:   p.CategoryID,
		SellerID:     p.SellerID,
		Downloads:    p.Downloads,
		Rating:       p.Rating,
		ReviewsCount: p.ReviewsCount,
		Status:       p.Status,
		Featured:     p.Featured,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (d *productDoc) toEntity() *entity.Product {
	return &entity.Product{
		ID:           d.ID,
		Title:        d.Title,
		Description:  d.Description,
		Price:        money(d.Price),
		Images:       d.Images,
		Files:        d.Files,
		CategoryID:   d.CategoryID,
		SellerID:     d.SellerID,
		Downloads:    d.Downloads,
		Rating:       d.Rating,
		ReviewsCount: d.ReviewsCount,
		Status:       d.Status,
		Featured:     d.Featured,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type firestoreProductRepository struct {
	client *firestore.Client
}

func NewFirestoreProductRepository(client *firestore.Client) repository.ProductRepository {
	return &firestoreProductRepository{client: client}
}

func (r *firestoreProductRepository) col() *firestore.CollectionRef {
	return r.client.Collection(collectionProducts)
}

func (r *firestoreProductRepository) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	if _, err := r.col().Doc(product.ID).Set(ctx, toProductDoc(product)); err != nil {
		return errors.Internal("Failed to create product", err)
	}
	return nil
}

func (r *firestoreProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		return nil, fsGetError(err, "Product", "Failed to get product")
	}
	var doc productDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, errors.Internal("Failed to parse product data", err)
	}
	return doc.toEntity(), nil
}

func (r *firestoreProductRepository) List(ctx context.Context, filter entity.ProductFilter, s repository.Sort, limit, offset int) ([]*entity.Product, int64, error) {
	query := r.col().Query
	if filter.CategoryID != "" {
		query = query.Where("categoryId", "==", filter.CategoryID)
	}
	if filter.SellerID != "" {
		query = query.Where("sellerId", "==", filter.SellerID)
	}
	if filter.Status != "" {
		query = query.Where("status", "==", filter.Status)
	}
	if filter.Featured != nil {
		query = query.Where("featured", "==", *filter.Featured)
	}

	field, ok := productSortFields[s.Field]
	if !ok {
		field = "createdAt"
	}
	direction := firestore.Asc
	if s.Desc {
		direction = firestore.Desc
	}
	query = query.OrderBy(field, direction)

	// Firestore has no substring match; text queries are filtered here.
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		docs, err := collect[productDoc](query.Documents(ctx), "products")
		if err != nil {
			return nil, 0, err
		}
		var matched []*entity.Product
		for _, d := range docs {
			if strings.Contains(d.TitleLower, q) || strings.Contains(strings.ToLower(d.Description), q) {
				matched = append(matched, d.toEntity())
			}
		}
		return paginate(matched, limit, offset), int64(len(matched)), nil
	}

	total, err := countQuery(ctx, query)
	if err != nil {
		return nil, 0, errors.Internal("Failed to count products", err)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	docs, err := collect[productDoc](query.Documents(ctx), "products")
	if err != nil {
		return nil, 0, err
	}
	products := make([]*entity.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, d.toEntity())
	}
	return products, total, nil
}

func (r *firestoreProductRepository) Update(ctx context.Context, product *entity.Product) error {
	product.UpdatedAt = time.Now().UTC()
	_, err := r.col().Doc(product.ID).Update(ctx, []firestore.Update{
		{Path: "title", Value: product.Title},
		{Path: "titleLower", Value: strings.ToLower(product.Title)},
		{Path: "description", Value: product.Description},
		{Path: "price", Value: moneyFloat(product.Price)},
		{Path: "images", Value: product.Images},
		{Path: "files", Value: product.Files},
		{Path: "categoryId", Value: product.CategoryID},
		{Path: "status", Value: product.Status},
		{Path: "featured", Value: product.Featured},
		{Path: "updatedAt", Value: product.UpdatedAt},
	})
	if err != nil {
		return fsGetError(err, "Product", "Failed to update product")
	}
	return nil
}

func (r *firestoreProductRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.col().Doc(id).Delete(ctx, firestore.Exists); err != nil {
		return fsGetError(err, "Product", "Failed to delete product")
	}
	return nil
}

func (r *firestoreProductRepository) IncrementDownloads(ctx context.Context, id string) error {
	_, err := r.col().Doc(id).Update(ctx, []firestore.Update{
		{Path: "downloads", Value: firestore.Increment(1)},
	})
	if err != nil {
		return fsGetError(err, "Product", "Failed to increment product downloads")
	}
	return nil
}

func (r *firestoreProductRepository) UpdateRating(ctx context.Context, id string, rating float64, reviewsCount int) error {
	_, err := r.col().Doc(id).Update(ctx, []firestore.Update{
		{Path: "rating", Value: rating},
		{Path: "reviewsCount", Value: reviewsCount},
	})
	if err != nil {
		return fsGetError(err, "Product", "Failed to update product rating")
	}
	return nil
}

func (r *firestoreProductRepository) Totals(ctx context.Context) (int64, int64, error) {
	docs, err := collect[productDoc](r.col().Select("downloads").Documents(ctx), "products")
	if err != nil {
		return 0, 0, err
	}
	var downloads int64
	for _, d := range docs {
		downloads += d.Downloads
	}
	return int64(len(docs)), downloads, nil
}

type firestoreCategoryRepository struct {
	client *firestore.Client
}

func NewFirestoreCategoryRepository(client *firestore.Client) repository.CategoryRepository {
	return &firestoreCategoryRepository{client: client}
}

func (r *firestoreCategoryRepository) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	snap, err := r.client.Collection(collectionCategories).Doc(id).Get(ctx)
	if err != nil {
		return nil, fsGetError(err, "Category", "Failed to get category")
	}
	var c entity.Category
	if err := snap.DataTo(&c); err != nil {
		return nil, errors.Internal("Failed to parse category data", err)
	}
	return &c, nil
}

func (r *firestoreCategoryRepository) List(ctx context.Context) ([]*entity.Category, error) {
	query := r.client.Collection(collectionCategories).OrderBy("name", firestore.Asc)
	return collect[entity.Category](query.Documents(ctx), "categories")
}
