package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TopProductResult represents a product's sales performance
type TopProductResult struct {
	ProductID    uuid.UUID
	ProductName  string
	ProductCode  string
	QuantitySold int
	Revenue      float64
}

// CategorySalesResult represents sales aggregated by category
type CategorySalesResult struct {
	CategoryID   uuid.UUID
	CategoryName string
	TotalSales   float64
	SaleCount    int
	Percentage   float64
}

// TopClientResult represents a client's spending data
type TopClientResult struct {
	ClientID   uuid.UUID
	ClientName string
	TotalSpent float64
	SaleCount  int
}

// DailySalesResult represents sales data for a single day
type DailySalesResult struct {
	Date    time.Time
	Revenue float64
	Sales   int
}

// AnalyticsRepository defines interface for analytics/aggregation queries
type AnalyticsRepository interface {
	// GetTopProducts returns top selling products by revenue
	GetTopProducts(ctx context.Context, limit int) ([]TopProductResult, error)

	// GetSalesByCategory returns sales aggregated by category with percentages
	GetSalesByCategory(ctx context.Context) ([]CategorySalesResult, error)

	// GetTopClients returns top clients by total spending
	GetTopClients(ctx context.Context, limit int) ([]TopClientResult, error)

	// GetDailySales returns daily sales data for the last N days
	GetDailySales(ctx context.Context, days int) ([]DailySalesResult, error)

	// GetTotalRevenue returns total revenue from completed sales
	GetTotalRevenue(ctx context.Context) (float64, error)

	// GetMonthlyRevenue returns revenue for the current month
	GetMonthlyRevenue(ctx context.Context) (float64, error)

	// CountSales returns the number of sales with the given status, or all
	// sales when status is empty
	CountSales(ctx context.Context, status string) (int64, error)

	// CountClients returns the number of active clients
	CountClients(ctx context.Context) (int64, error)

	// CountProducts returns the number of active products
	CountProducts(ctx context.Context) (int64, error)
}
