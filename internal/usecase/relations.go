package usecase

import (
	"context"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/pkg/errors"
)

// relations resolves the names embedded in listings. Each id is loaded once
// per call and rows that no longer exist are left out.
type relations struct {
	profiles   repository.ProfileRepository
	products   repository.ProductRepository
	categories repository.CategoryRepository
}

func (r relations) users(ctx context.Context, ids ...string) (map[string]*entity.UserSummary, error) {
	out := make(map[string]*entity.UserSummary, len(ids))
	for _, id := range ids {
		if _, seen := out[id]; seen || id == "" {
			continue
		}
		profile, err := r.profiles.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, errors.CodeNotFound) {
				out[id] = nil
				continue
			}
			return nil, err
		}
		out[id] = profile.Summary()
	}
	return out, nil
}

func (r relations) productSummaries(ctx context.Context, ids ...string) (map[string]*entity.ProductSummary, error) {
	out := make(map[string]*entity.ProductSummary, len(ids))
	for _, id := range ids {
		if _, seen := out[id]; seen || id == "" {
			continue
		}
		product, err := r.products.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, errors.CodeNotFound) {
				out[id] = nil
				continue
			}
			return nil, err
		}
		out[id] = product.Summary()
	}
	return out, nil
}

// categoryNames loads the whole taxonomy; it is a handful of rows.
func (r relations) categoryNames(ctx context.Context) (map[string]*entity.CategorySummary, error) {
	categories, err := r.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*entity.CategorySummary, len(categories))
	for _, c := range categories {
		out[c.ID] = &entity.CategorySummary{ID: c.ID, Name: c.Name}
	}
	return out, nil
}

func (r relations) productListings(ctx context.Context, products []*entity.Product) ([]*entity.ProductListing, error) {
	categories, err := r.categoryNames(ctx)
	if err != nil {
		return nil, err
	}
	sellerIDs := make([]string, 0, len(products))
	for _, p := range products {
		sellerIDs = append(sellerIDs, p.SellerID)
	}
	sellers, err := r.users(ctx, sellerIDs...)
	if err != nil {
		return nil, err
	}

	out := make([]*entity.ProductListing, 0, len(products))
	for _, p := range hideFiles(products) {
		out = append(out, &entity.ProductListing{
			Product:  p,
			Category: categories[p.CategoryID],
			Seller:   sellers[p.SellerID],
		})
	}
	return out, nil
}

// orderViews attaches the product and, depending on the side, the seller or
// the buyer of each order.
func (r relations) orderViews(ctx context.Context, orders []*entity.Order, asSeller bool) ([]*entity.OrderView, error) {
	productIDs := make([]string, 0, len(orders))
	partyIDs := make([]string, 0, len(orders))
	for _, o := range orders {
		productIDs = append(productIDs, o.ProductID)
		if asSeller {
			partyIDs = append(partyIDs, o.BuyerID)
		} else {
			partyIDs = append(partyIDs, o.SellerID)
		}
	}
	products, err := r.productSummaries(ctx, productIDs...)
	if err != nil {
		return nil, err
	}
	parties, err := r.users(ctx, partyIDs...)
	if err != nil {
		return nil, err
	}

	out := make([]*entity.OrderView, 0, len(orders))
	for _, o := range orders {
		view := &entity.OrderView{Order: o, Product: products[o.ProductID]}
		if asSeller {
			view.Buyer = parties[o.BuyerID]
		} else {
			view.Seller = parties[o.SellerID]
		}
		out = append(out, view)
	}
	return out, nil
}

func (r relations) reviewsWithBuyers(ctx context.Context, reviews []*entity.Review) ([]*entity.ReviewView, error) {
	buyerIDs := make([]string, 0, len(reviews))
	for _, rv := range reviews {
		buyerIDs = append(buyerIDs, rv.BuyerID)
	}
	buyers, err := r.users(ctx, buyerIDs...)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.ReviewView, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, &entity.ReviewView{Review: rv, Buyer: buyers[rv.BuyerID]})
	}
	return out, nil
}

func (r relations) reviewsWithProducts(ctx context.Context, reviews []*entity.Review) ([]*entity.ReviewView, error) {
	productIDs := make([]string, 0, len(reviews))
	for _, rv := range reviews {
		productIDs = append(productIDs, rv.ProductID)
	}
	products, err := r.productSummaries(ctx, productIDs...)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.ReviewView, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, &entity.ReviewView{Review: rv, Product: products[rv.ProductID]})
	}
	return out, nil
}
