package usecase

import (
	"context"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/pkg/errors"
)

const topSellersLimit = 10

type AdminUseCase struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	profileRepo repository.ProfileRepository
}

func NewAdminUseCase(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	profileRepo repository.ProfileRepository,
) *AdminUseCase {
	return &AdminUseCase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		profileRepo: profileRepo,
	}
}

func (uc *AdminUseCase) PlatformStats(ctx context.Context) (*entity.PlatformStats, error) {
	roles, err := uc.profileRepo.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	products, downloads, err := uc.productRepo.Totals(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := uc.orderRepo.Totals(ctx)
	if err != nil {
		return nil, err
	}

	return &entity.PlatformStats{
		TotalUsers:       roles.Total(),
		Buyers:           roles.Buyers,
		Sellers:          roles.Sellers,
		TotalProducts:    products,
		TotalOrders:      orders.Count,
		CompletedOrders:  orders.CompletedCount,
		GrossVolume:      orders.TotalAmount,
		CompletedRevenue: orders.CompletedAmount,
		Commission:       orders.Commission,
		TotalDownloads:   downloads,
	}, nil
}

func (uc *AdminUseCase) Orders(ctx context.Context, page, limit int) ([]*entity.Order, int64, error) {
	return uc.orderRepo.List(ctx, limit, offsetFor(page, limit))
}

// TopSellers ranks sellers by completed revenue and resolves their names
// when the store did not.
func (uc *AdminUseCase) TopSellers(ctx context.Context) ([]*entity.SellerRanking, error) {
	ranking, err := uc.orderRepo.TopSellers(ctx, topSellersLimit)
	if err != nil {
		return nil, err
	}
	for _, r := range ranking {
		if r.FullName != "" {
			continue
		}
		profile, err := uc.profileRepo.GetByID(ctx, r.SellerID)
		if err != nil {
			if errors.Is(err, errors.CodeNotFound) {
				continue
			}
			return nil, err
		}
		r.FullName = profile.FullName
	}
	return ranking, nil
}
