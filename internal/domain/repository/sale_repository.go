package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/josemp10/ventas-api/internal/domain/entity"
	"github.com/josemp10/ventas-api/internal/domain/enum"
	"github.com/josemp10/ventas-api/pkg/pagination"
)

// SaleRepository defines the interface for sale data operations
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	Update(ctx context.Context, sale *entity.Sale) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.SaleStatus) error
	List(ctx context.Context, params *SaleFilterParams) ([]entity.Sale, int64, error)
	ListWithCursor(ctx context.Context, params *SaleCursorFilterParams) ([]entity.Sale, error)
	CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error)

	// FindInRange returns sales matching the filter with details, products and
	// categories preloaded, ordered by sale date ascending. This is the single
	// read the forecast engine performs.
	FindInRange(ctx context.Context, filter *SaleFilter) ([]entity.Sale, error)
}

// SaleFilter is the query spec handed to FindInRange. Optional fields are nil
// when unset; the date range is inclusive unless EndExclusive is set.
type SaleFilter struct {
	StartDate    time.Time
	EndDate      time.Time
	EndExclusive bool
	Status       *enum.SaleStatus
	ProductID    *uuid.UUID
}

// SaleFilterParams contains filtering parameters for paginated sale listings
type SaleFilterParams struct {
	Pagination *pagination.PaginationParams
	Status     *enum.SaleStatus
	ClientID   *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	SortBy     string
	SortOrder  string
}

// SaleCursorFilterParams contains cursor-based filtering for sale listings
type SaleCursorFilterParams struct {
	Cursor    *pagination.CursorParams
	Status    *enum.SaleStatus
	ClientID  *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

// SaleDetailRepository defines the interface for sale detail data operations
type SaleDetailRepository interface {
	CreateBatch(ctx context.Context, details []entity.SaleDetail) error
	GetBySaleID(ctx context.Context, saleID uuid.UUID) ([]entity.SaleDetail, error)
	DeleteBySaleID(ctx context.Context, saleID uuid.UUID) error
}
