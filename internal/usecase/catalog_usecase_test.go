package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planmarket/internal/domain/entity"
	"planmarket/pkg/errors"
)

func TestCreateProductRequiresSeller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "buyer", entity.RoleBuyer)

	_, err := f.catalog.CreateProduct(ctx, "buyer", CreateProductInput{Title: "x", Price: decimal.NewFromInt(1)})
	assert.True(t, errors.Is(err, errors.CodeForbidden))
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "seller", entity.RoleSeller)

	_, err := f.catalog.CreateProduct(ctx, "seller", CreateProductInput{Title: "x", Price: decimal.Zero})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	_, err = f.catalog.CreateProduct(ctx, "seller", CreateProductInput{Title: "x", Price: decimal.NewFromInt(1), CategoryID: "nope"})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	p, err := f.catalog.CreateProduct(ctx, "seller", CreateProductInput{Title: " Bench ", Price: decimal.RequireFromString("3.456")})
	require.NoError(t, err)
	assert.Equal(t, "Bench", p.Title)
	assert.Equal(t, entity.ProductStatusPublished, p.Status)
	assert.Equal(t, "3.46", p.Price.StringFixed(2))
}

func TestGetProductIncrementsDownloads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "seller", entity.RoleSeller)
	product := f.product(t, "seller", "5.00")

	first, err := f.catalog.GetProduct(ctx, "", product.ID)
	require.NoError(t, err)
	second, err := f.catalog.GetProduct(ctx, "", product.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.Downloads)
	assert.Equal(t, int64(2), second.Downloads)
	require.NotNil(t, second.Category)
	assert.Equal(t, "Tables", second.Category.Name)
	require.NotNil(t, second.Seller)
	assert.Equal(t, "seller", second.Seller.ID)
	assert.NotNil(t, second.Reviews)

	_, err = f.catalog.GetProduct(ctx, "", "missing")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestListProductsOnlyPublished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "seller", entity.RoleSeller)
	cheap := f.product(t, "seller", "2.00")
	f.product(t, "seller", "9.00")
	hidden := f.product(t, "seller", "4.00")

	draft := entity.ProductStatusDraft
	_, err := f.catalog.UpdateProduct(ctx, "seller", hidden.ID, UpdateProductInput{Status: &draft})
	require.NoError(t, err)

	products, total, err := f.catalog.ListProducts(ctx, ListProductsInput{Sort: "price", Order: "asc", Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, products, 2)
	assert.Equal(t, cheap.ID, products[0].ID)
	require.NotNil(t, products[0].Category)
	assert.Equal(t, "Tables", products[0].Category.Name)
	require.NotNil(t, products[0].Seller)
	assert.Equal(t, "User seller", products[0].Seller.FullName)

	_, _, err = f.catalog.ListProducts(ctx, ListProductsInput{Sort: "color", Page: 1, Limit: 20})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
	_, _, err = f.catalog.ListProducts(ctx, ListProductsInput{Order: "sideways", Page: 1, Limit: 20})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}

func TestSearchAndFeatured(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "seller", entity.RoleSeller)
	table := f.product(t, "seller", "5.00")

	featured := true
	_, err := f.catalog.UpdateProduct(ctx, "seller", table.ID, UpdateProductInput{Featured: &featured})
	require.NoError(t, err)

	found, total, err := f.catalog.Search(ctx, "DINING", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, table.ID, found[0].ID)

	_, _, err = f.catalog.Search(ctx, "  ", 1, 20)
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	list, err := f.catalog.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, table.ID, list[0].ID)
}

func TestUpdateDeleteScopedToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "seller", entity.RoleSeller)
	f.profile(t, "other", entity.RoleSeller)
	product := f.product(t, "seller", "5.00")

	title := "Changed"
	_, err := f.catalog.UpdateProduct(ctx, "other", product.ID, UpdateProductInput{Title: &title})
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	assert.True(t, errors.Is(f.catalog.DeleteProduct(ctx, "other", product.ID), errors.CodeNotFound))
	require.NoError(t, f.catalog.DeleteProduct(ctx, "seller", product.ID))

	_, err = f.repos.Products.GetByID(ctx, product.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestUploadPlanFileAndImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "seller", entity.RoleSeller)
	product := f.product(t, "seller", "5.00")

	_, err := f.catalog.UploadPlanFile(ctx, "intruder", product.ID, Upload{Filename: "a.pdf", Content: strings.NewReader("x")})
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	updated, err := f.catalog.UploadPlanFile(ctx, "seller", product.ID, Upload{
		Filename: "../../etc/plan.pdf", ContentType: "application/pdf", Size: 4, Content: strings.NewReader("plan"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"plans/" + product.ID + "/plan.pdf"}, updated.Files)

	data, _, ok := f.storage.Object("plans/" + product.ID + "/plan.pdf")
	require.True(t, ok)
	assert.Equal(t, "plan", string(data))

	// Same name replaces rather than appends.
	updated, err = f.catalog.UploadPlanFile(ctx, "seller", product.ID, Upload{
		Filename: "plan.pdf", ContentType: "application/pdf", Size: 2, Content: strings.NewReader("v2"),
	})
	require.NoError(t, err)
	assert.Len(t, updated.Files, 1)

	_, err = f.catalog.UploadPlanFile(ctx, "seller", product.ID, Upload{Filename: "big.pdf", Size: 2 << 20, Content: strings.NewReader("")})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	_, err = f.catalog.UploadImage(ctx, "seller", product.ID, Upload{Filename: "a.txt", ContentType: "text/plain", Content: strings.NewReader("x")})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	withImage, err := f.catalog.UploadImage(ctx, "seller", product.ID, Upload{Filename: "a.png", ContentType: "image/png", Size: 1, Content: strings.NewReader("x")})
	require.NoError(t, err)
	require.Len(t, withImage.Images, 1)
	assert.True(t, strings.HasPrefix(withImage.Images[0], "http://files.test/products/"+product.ID+"/images/"))
	assert.True(t, strings.HasSuffix(withImage.Images[0], ".png"))

	detail, err := f.catalog.GetProduct(ctx, "someone", product.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Files)

	ownerView, err := f.catalog.GetProduct(ctx, "seller", product.ID)
	require.NoError(t, err)
	assert.Len(t, ownerView.Files, 1)
}
