package models

import "time"

// StockSummary reports volumes around a reference date.
type StockSummary struct {
	CurrentStock         float64 `json:"currentStock"`
	DailyProduce         float64 `json:"dailyProduce"`
	DailyTotalLitersSold float64 `json:"dailyTotalLitersSold"`
	WeeklySold           float64 `json:"weeklySold"`
	WeeklySpoilt         float64 `json:"weeklySpoilt"`
	MonthlySold          float64 `json:"monthlySold"`
}

// EarningsSummary reports sales revenue around a reference date.
type EarningsSummary struct {
	TodayEarnings   float64 `json:"todayEarnings"`
	WeeklyEarnings  float64 `json:"weeklyEarnings"`
	MonthlyEarnings float64 `json:"monthlyEarnings"`
}

// InventoryTotals breaks the current stock down into its fact streams.
type InventoryTotals struct {
	TotalMilkIn    float64    `json:"totalMilkIn"`
	TotalMilkOut   float64    `json:"totalMilkOut"`
	TotalSpoilage  float64    `json:"totalSpoilage"`
	CurrentStock   float64    `json:"currentStock"`
	CachedStock    float64    `json:"cachedStock"`
	CacheUpdatedAt *time.Time `json:"cacheUpdatedAt,omitempty"`
}
