package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planmarket/internal/domain/entity"
)

func TestPlatformStatsAndTopSellers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "s1", entity.RoleSeller)
	f.profile(t, "s2", entity.RoleSeller)
	f.profile(t, "b1", entity.RoleBuyer)
	f.profile(t, "root", entity.RoleAdmin)

	big := f.product(t, "s1", "20.00")
	small := f.product(t, "s2", "5.00")
	f.completedOrder(t, "b1", big)
	f.completedOrder(t, "b1", small)
	_, _, err := f.orders.CreateOrder(ctx, "b1", CreateOrderInput{ProductID: small.ID})
	require.NoError(t, err)
	_, err = f.catalog.GetProduct(ctx, "", big.ID)
	require.NoError(t, err)

	stats, err := f.admin.PlatformStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.Sellers)
	assert.Equal(t, int64(1), stats.Buyers)
	assert.Equal(t, int64(2), stats.TotalProducts)
	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.Equal(t, int64(2), stats.CompletedOrders)
	assert.Equal(t, "30.00", stats.GrossVolume.StringFixed(2))
	assert.Equal(t, "25.00", stats.CompletedRevenue.StringFixed(2))
	assert.Equal(t, "2.50", stats.Commission.StringFixed(2))
	assert.Equal(t, int64(1), stats.TotalDownloads)

	top, err := f.admin.TopSellers(ctx)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "s1", top[0].SellerID)
	assert.Equal(t, "User s1", top[0].FullName)
	assert.Equal(t, "20.00", top[0].Revenue.StringFixed(2))

	orders, total, err := f.admin.Orders(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, int64(3), total)
}
