package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ProductStatusDraft     = "draft"
	ProductStatusPublished = "published"
)

// Product is a plan listing. Files holds the downloadable plan documents,
// Images the preview pictures.
type Product struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Images       []string        `json:"images"`
	Files        []string        `json:"files,omitempty"`
	CategoryID   string          `json:"category_id"`
	SellerID     string          `json:"seller_id"`
	Downloads    int64           `json:"downloads"`
	Rating       float64         `json:"rating"`
	ReviewsCount int             `json:"reviews_count"`
	Status       string          `json:"status"`
	Featured     bool            `json:"featured"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (p *Product) IsPublished() bool {
	return p.Status == ProductStatusPublished
}

// ProductDetail is the single-product view with its relations resolved.
type ProductDetail struct {
	*Product
	Category *Category     `json:"category,omitempty"`
	Seller   *Profile      `json:"seller,omitempty"`
	Reviews  []*ReviewView `json:"reviews"`
}

// ProductListing is a catalog entry with its category and seller names.
type ProductListing struct {
	*Product
	Category *CategorySummary `json:"category,omitempty"`
	Seller   *UserSummary     `json:"seller,omitempty"`
}

// ProductSummary is the slice of a product embedded in orders and reviews.
type ProductSummary struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	ImageURL string          `json:"image_url,omitempty"`
	Price    decimal.Decimal `json:"price"`
}

// Summary uses the first image as the thumbnail.
func (p *Product) Summary() *ProductSummary {
	s := &ProductSummary{ID: p.ID, Title: p.Title, Price: p.Price}
	if len(p.Images) > 0 {
		s.ImageURL = p.Images[0]
	}
	return s
}

// ProductFilter narrows catalog listings. Empty fields are ignored.
type ProductFilter struct {
	CategoryID string
	SellerID   string
	Status     string
	Featured   *bool
	Query      string
}

type Category struct {
	ID          string    `json:"id" firestore:"id"`
	Name        string    `json:"name" firestore:"name"`
	Slug        string    `json:"slug" firestore:"slug"`
	Description string    `json:"description,omitempty" firestore:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
}

type CategorySummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultCategories is the catalog taxonomy a fresh store starts with.
func DefaultCategories() []*Category {
	return []*Category{
		{ID: "tables", Name: "Tables", Slug: "tables"},
		{ID: "chairs", Name: "Chairs", Slug: "chairs"},
		{ID: "beds", Name: "Beds", Slug: "beds"},
		{ID: "storage", Name: "Storage", Slug: "storage", Description: "Cabinets, shelves and dressers"},
		{ID: "outdoor", Name: "Outdoor", Slug: "outdoor"},
		{ID: "desks", Name: "Desks", Slug: "desks"},
	}
}
