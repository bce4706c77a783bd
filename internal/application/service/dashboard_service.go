package service

import (
	"context"

	"github.com/josemp10/ventas-api/internal/domain/entity"
	"github.com/josemp10/ventas-api/internal/domain/enum"
	"github.com/josemp10/ventas-api/internal/domain/repository"
)

// DashboardService provides dashboard statistics
type DashboardService struct {
	analyticsRepo repository.AnalyticsRepository
	productRepo   repository.ProductRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	analyticsRepo repository.AnalyticsRepository,
	productRepo repository.ProductRepository,
) *DashboardService {
	return &DashboardService{
		analyticsRepo: analyticsRepo,
		productRepo:   productRepo,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalClients      int64                `json:"total_clients"`
	TotalProducts     int64                `json:"total_products"`
	TotalSales        int64                `json:"total_sales"`
	PendingSales      int64                `json:"pending_sales"`
	TotalRevenue      float64              `json:"total_revenue"`
	MonthlyRevenue    float64              `json:"monthly_revenue"`
	LowStockCount     int64                `json:"low_stock_count"`
	DailySalesData    []DailySalesPoint    `json:"daily_sales_data"`
	CategorySalesData []CategorySalesPoint `json:"category_sales_data"`
}

// DailySalesPoint represents a daily sales data point
type DailySalesPoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Sales   int     `json:"sales"`
}

// CategorySalesPoint represents sales by category
type CategorySalesPoint struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// GetDashboardStats returns dashboard statistics
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	clientCount, err := s.analyticsRepo.CountClients(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalClients = clientCount

	productCount, err := s.analyticsRepo.CountProducts(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalProducts = productCount

	saleCount, err := s.analyticsRepo.CountSales(ctx, "")
	if err != nil {
		return nil, err
	}
	stats.TotalSales = saleCount

	pendingCount, err := s.analyticsRepo.CountSales(ctx, string(enum.SaleStatusPending))
	if err != nil {
		return nil, err
	}
	stats.PendingSales = pendingCount

	totalRevenue, err := s.analyticsRepo.GetTotalRevenue(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalRevenue = totalRevenue

	monthlyRevenue, err := s.analyticsRepo.GetMonthlyRevenue(ctx)
	if err != nil {
		return nil, err
	}
	stats.MonthlyRevenue = monthlyRevenue

	lowStock, err := s.productRepo.GetLowStock(ctx)
	if err != nil {
		return nil, err
	}
	stats.LowStockCount = int64(len(lowStock))

	dailySales, err := s.analyticsRepo.GetDailySales(ctx, 7)
	if err != nil {
		return nil, err
	}
	stats.DailySalesData = make([]DailySalesPoint, 0, len(dailySales))
	for _, day := range dailySales {
		stats.DailySalesData = append(stats.DailySalesData, DailySalesPoint{
			Date:    day.Date.Format("Jan 02"),
			Revenue: day.Revenue,
			Sales:   day.Sales,
		})
	}

	categorySales, err := s.analyticsRepo.GetSalesByCategory(ctx)
	if err != nil {
		return nil, err
	}
	stats.CategorySalesData = make([]CategorySalesPoint, 0, len(categorySales))
	for _, cat := range categorySales {
		stats.CategorySalesData = append(stats.CategorySalesData, CategorySalesPoint{
			Category:   cat.CategoryName,
			Amount:     cat.TotalSales,
			Percentage: cat.Percentage,
		})
	}

	return stats, nil
}

// GetTopProducts returns the best selling products across all completed sales
func (s *DashboardService) GetTopProducts(ctx context.Context, limit int) ([]repository.TopProductResult, error) {
	if limit <= 0 {
		limit = DefaultRankingSize
	}
	return s.analyticsRepo.GetTopProducts(ctx, limit)
}

// GetTopClients returns the highest spending clients
func (s *DashboardService) GetTopClients(ctx context.Context, limit int) ([]repository.TopClientResult, error) {
	if limit <= 0 {
		limit = DefaultRankingSize
	}
	return s.analyticsRepo.GetTopClients(ctx, limit)
}

// GetLowStockProducts returns products at or below their stock alert level
func (s *DashboardService) GetLowStockProducts(ctx context.Context) ([]entity.Product, error) {
	return s.productRepo.GetLowStock(ctx)
}
