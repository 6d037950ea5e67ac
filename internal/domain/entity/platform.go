package entity

import "github.com/shopspring/decimal"

// PlatformStats is the admin dashboard snapshot.
type PlatformStats struct {
	TotalUsers       int64           `json:"totalUsers"`
	Buyers           int64           `json:"buyers"`
	Sellers          int64           `json:"sellers"`
	TotalProducts    int64           `json:"totalProducts"`
	TotalOrders      int64           `json:"totalOrders"`
	CompletedOrders  int64           `json:"completedOrders"`
	GrossVolume      decimal.Decimal `json:"grossVolume"`
	CompletedRevenue decimal.Decimal `json:"completedRevenue"`
	Commission       decimal.Decimal `json:"commission"`
	TotalDownloads   int64           `json:"totalDownloads"`
}
