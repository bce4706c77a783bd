package repository

import (
	"context"
	"database/sql"
	"time"

	domainRepo "github.com/josemp10/ventas-api/internal/domain/repository"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) GetTopProducts(ctx context.Context, limit int) ([]domainRepo.TopProductResult, error) {
	var results []domainRepo.TopProductResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			p.id as product_id,
			p.name as product_name,
			p.code as product_code,
			COALESCE(SUM(sd.quantity), 0) as quantity_sold,
			COALESCE(SUM(sd.subtotal), 0) / 100.0 as revenue
		FROM sale_details sd
		JOIN products p ON p.id = sd.product_id
		JOIN sales s ON s.id = sd.sale_id
		WHERE s.status = 'completed'
		GROUP BY p.id, p.name, p.code
		ORDER BY revenue DESC
		LIMIT ?
	`, limit).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *analyticsRepository) GetSalesByCategory(ctx context.Context) ([]domainRepo.CategorySalesResult, error) {
	var results []domainRepo.CategorySalesResult

	// Total first, for the percentage column
	var totalSales float64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(sd.subtotal), 0) / 100.0
		FROM sale_details sd
		JOIN sales s ON s.id = sd.sale_id
		WHERE s.status = 'completed'
	`).Scan(&totalSales).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(c.id, '00000000-0000-0000-0000-000000000000') as category_id,
			COALESCE(c.name, 'Uncategorized') as category_name,
			COALESCE(SUM(sd.subtotal), 0) / 100.0 as total_sales,
			COUNT(DISTINCT s.id) as sale_count
		FROM sale_details sd
		JOIN products p ON p.id = sd.product_id
		LEFT JOIN categories c ON c.id = p.category_id
		JOIN sales s ON s.id = sd.sale_id
		WHERE s.status = 'completed'
		GROUP BY c.id, c.name
		ORDER BY total_sales DESC
	`).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	for i := range results {
		if totalSales > 0 {
			results[i].Percentage = (results[i].TotalSales / totalSales) * 100
		}
	}

	return results, nil
}

func (r *analyticsRepository) GetTopClients(ctx context.Context, limit int) ([]domainRepo.TopClientResult, error) {
	var results []domainRepo.TopClientResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			c.id as client_id,
			c.name as client_name,
			COALESCE(SUM(s.total), 0) / 100.0 as total_spent,
			COUNT(s.id) as sale_count
		FROM sales s
		JOIN clients c ON c.id = s.client_id
		WHERE s.status = 'completed' AND s.client_id IS NOT NULL
		GROUP BY c.id, c.name
		ORDER BY total_spent DESC
		LIMIT ?
	`, limit).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *analyticsRepository) GetDailySales(ctx context.Context, days int) ([]domainRepo.DailySalesResult, error) {
	results := make([]domainRepo.DailySalesResult, 0, days)
	now := time.Now()

	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i)
		startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
		endOfDay := startOfDay.Add(24 * time.Hour)

		var row struct {
			Revenue sql.NullFloat64
			Sales   sql.NullInt64
		}
		err := r.db.WithContext(ctx).Raw(`
			SELECT COALESCE(SUM(total), 0) / 100.0 as revenue, COUNT(id) as sales
			FROM sales
			WHERE status = 'completed'
			AND sale_date >= ? AND sale_date < ?
		`, startOfDay, endOfDay).Scan(&row).Error

		if err != nil {
			return nil, err
		}

		result := domainRepo.DailySalesResult{Date: startOfDay}
		if row.Revenue.Valid {
			result.Revenue = row.Revenue.Float64
		}
		if row.Sales.Valid {
			result.Sales = int(row.Sales.Int64)
		}

		results = append(results, result)
	}

	return results, nil
}

func (r *analyticsRepository) GetTotalRevenue(ctx context.Context) (float64, error) {
	var revenue float64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(total), 0) / 100.0
		FROM sales
		WHERE status = 'completed'
	`).Scan(&revenue).Error

	return revenue, err
}

func (r *analyticsRepository) GetMonthlyRevenue(ctx context.Context) (float64, error) {
	now := time.Now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var revenue float64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(total), 0) / 100.0
		FROM sales
		WHERE status = 'completed' AND sale_date >= ?
	`, startOfMonth).Scan(&revenue).Error

	return revenue, err
}

func (r *analyticsRepository) CountSales(ctx context.Context, status string) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Table("sales").Where("deleted_at IS NULL")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CountClients(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("clients").
		Where("active = ? AND deleted_at IS NULL", true).
		Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("products").
		Where("active = ? AND deleted_at IS NULL", true).
		Count(&count).Error
	return count, err
}
