package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/pkg/errors"
)

const productColumns = `id, title, description, price, images, files, category_id, seller_id,
	downloads, rating, reviews_count, status, featured, created_at, updated_at`

// productSortColumns whitelists ORDER BY targets.
var productSortColumns = map[string]string{
	repository.SortCreatedAt: "created_at",
	repository.SortPrice:     "price",
	repository.SortDownloads: "downloads",
	repository.SortRating:    "rating",
	repository.SortTitle:     "title",
}

type postgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) repository.ProductRepository {
	return &postgresProductRepository{db: db}
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, pq.Array(&p.Images), pq.Array(&p.Files),
		&p.CategoryID, &p.SellerID, &p.Downloads, &p.Rating, &p.ReviewsCount, &p.Status, &p.Featured,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresProductRepository) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, product.ID, product.Title, product.Description, product.Price, pq.Array(product.Images),
		pq.Array(product.Files), product.CategoryID, product.SellerID, product.Downloads, product.Rating,
		product.ReviewsCount, product.Status, product.Featured, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return errors.Internal("Failed to create product", err)
	}
	return nil
}

func (r *postgresProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		return nil, notFoundOr(err, "Product", "Failed to get product")
	}
	return p, nil
}

func buildProductWhere(filter entity.ProductFilter) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.CategoryID != "" {
		add("category_id = $%d", filter.CategoryID)
	}
	if filter.SellerID != "" {
		add("seller_id = $%d", filter.SellerID)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.Featured != nil {
		add("featured = $%d", *filter.Featured)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", n, n))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *postgresProductRepository) List(ctx context.Context, filter entity.ProductFilter, s repository.Sort, limit, offset int) ([]*entity.Product, int64, error) {
	where, args := buildProductWhere(filter)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.Internal("Failed to count products", err)
	}

	column, ok := productSortColumns[s.Field]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}

	args = append(args, limitArg(limit), offset)
	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY %s %s, id LIMIT $%d OFFSET $%d`,
		productColumns, where, column, direction, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list products", err)
	}
	defer rows.Close()

	products := []*entity.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, errors.Internal("Failed to parse product data", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Internal("Failed to iterate products", err)
	}
	return products, total, nil
}

func (r *postgresProductRepository) Update(ctx context.Context, product *entity.Product) error {
	product.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET title = $2, description = $3, price = $4, images = $5, files = $6, category_id = $7,
			status = $8, featured = $9, updated_at = $10
		WHERE id = $1
	`, product.ID, product.Title, product.Description, product.Price, pq.Array(product.Images),
		pq.Array(product.Files), product.CategoryID, product.Status, product.Featured, product.UpdatedAt)
	if err != nil {
		return errors.Internal("Failed to update product", err)
	}
	return expectOneRow(result, "Product")
}

func (r *postgresProductRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return errors.Internal("Failed to delete product", err)
	}
	return expectOneRow(result, "Product")
}

func (r *postgresProductRepository) IncrementDownloads(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE products SET downloads = downloads + 1 WHERE id = $1`, id)
	if err != nil {
		return errors.Internal("Failed to increment product downloads", err)
	}
	return expectOneRow(result, "Product")
}

func (r *postgresProductRepository) UpdateRating(ctx context.Context, id string, rating float64, reviewsCount int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE products SET rating = $2, reviews_count = $3 WHERE id = $1
	`, id, rating, reviewsCount)
	if err != nil {
		return errors.Internal("Failed to update product rating", err)
	}
	return expectOneRow(result, "Product")
}

func (r *postgresProductRepository) Totals(ctx context.Context) (int64, int64, error) {
	var products, downloads int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(downloads), 0) FROM products`).
		Scan(&products, &downloads)
	if err != nil {
		return 0, 0, errors.Internal("Failed to total products", err)
	}
	return products, downloads, nil
}

type postgresCategoryRepository struct {
	db *sql.DB
}

func NewPostgresCategoryRepository(db *sql.DB) repository.CategoryRepository {
	return &postgresCategoryRepository{db: db}
}

func (r *postgresCategoryRepository) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	var c entity.Category
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, slug, description, created_at FROM categories WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, "Category", "Failed to get category")
	}
	return &c, nil
}

func (r *postgresCategoryRepository) List(ctx context.Context) ([]*entity.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, slug, description, created_at FROM categories ORDER BY name
	`)
	if err != nil {
		return nil, errors.Internal("Failed to list categories", err)
	}
	defer rows.Close()

	categories := []*entity.Category{}
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt); err != nil {
			return nil, errors.Internal("Failed to parse category data", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("Failed to iterate categories", err)
	}
	return categories, nil
}
