package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/josemp10/ventas-api/internal/domain/entity"
	"github.com/josemp10/ventas-api/internal/domain/enum"
	"github.com/josemp10/ventas-api/internal/domain/repository"
	"github.com/josemp10/ventas-api/pkg/apperror"
	"github.com/josemp10/ventas-api/pkg/pagination"
)

// SaleService handles sale-related operations
type SaleService struct {
	saleRepo       repository.SaleRepository
	saleDetailRepo repository.SaleDetailRepository
	productRepo    repository.ProductRepository
	clientRepo     repository.ClientRepository
}

// NewSaleService creates a new sale service
func NewSaleService(
	saleRepo repository.SaleRepository,
	saleDetailRepo repository.SaleDetailRepository,
	productRepo repository.ProductRepository,
	clientRepo repository.ClientRepository,
) *SaleService {
	return &SaleService{
		saleRepo:       saleRepo,
		saleDetailRepo: saleDetailRepo,
		productRepo:    productRepo,
		clientRepo:     clientRepo,
	}
}

// SaleItemInput represents a line item in a sale
type SaleItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateSaleInput represents the create sale input
type CreateSaleInput struct {
	UserID   uuid.UUID
	ClientID *uuid.UUID
	SaleDate *time.Time
	Items    []SaleItemInput
}

// CreateSale creates a new sale with its line items, decrementing stock
// atomically. Prices are taken from the current product catalog.
func (s *SaleService) CreateSale(ctx context.Context, input *CreateSaleInput) (*entity.Sale, error) {
	if len(input.Items) == 0 {
		return nil, apperror.NewBadRequestError("A sale requires at least one item")
	}

	// Validate client if provided
	if input.ClientID != nil {
		client, err := s.clientRepo.GetByID(ctx, *input.ClientID)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, apperror.NewNotFoundError("Client")
		}
	}

	// Batch fetch all products in one query (prevents N+1)
	productIDs := make([]uuid.UUID, len(input.Items))
	for i, item := range input.Items {
		productIDs[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	var total int64
	var totalItems int
	details := make([]entity.SaleDetail, 0, len(input.Items))
	stockDecrements := make(map[uuid.UUID]int)

	for _, item := range input.Items {
		product, exists := productMap[item.ProductID]
		if !exists {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Product %s", item.ProductID))
		}
		if item.Quantity <= 0 {
			return nil, apperror.NewBadRequestError(fmt.Sprintf("Invalid quantity for product %s", product.Name))
		}

		subtotal := product.Price * int64(item.Quantity)
		total += subtotal
		totalItems += item.Quantity

		details = append(details, entity.SaleDetail{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			Subtotal:  subtotal,
		})

		stockDecrements[product.ID] = item.Quantity
	}

	// Atomically decrement stock. If any product has insufficient stock the
	// whole batch rolls back and the failing IDs come back.
	failedIDs, err := s.productRepo.AtomicDecrementBatch(ctx, stockDecrements)
	if err != nil {
		return nil, err
	}
	if len(failedIDs) > 0 {
		var failedNames []string
		for _, id := range failedIDs {
			if product, exists := productMap[id]; exists {
				failedNames = append(failedNames, product.Name)
			}
		}
		return nil, apperror.NewBadRequestError(fmt.Sprintf("Insufficient stock for: %v", failedNames))
	}

	saleDate := time.Now()
	if input.SaleDate != nil {
		saleDate = *input.SaleDate
	}

	sale := &entity.Sale{
		UserID:     input.UserID,
		ClientID:   input.ClientID,
		SaleDate:   saleDate,
		Status:     enum.SaleStatusPending,
		TotalItems: totalItems,
		Total:      total,
		InvoiceNo:  fmt.Sprintf("VTA-%s", uuid.New().String()[:8]),
	}

	if err := s.saleRepo.Create(ctx, sale); err != nil {
		// Stock was already decremented, restore it
		_ = s.productRepo.AtomicIncrementBatch(ctx, stockDecrements)
		return nil, err
	}

	for i := range details {
		details[i].SaleID = sale.ID
	}

	if err := s.saleDetailRepo.CreateBatch(ctx, details); err != nil {
		_ = s.productRepo.AtomicIncrementBatch(ctx, stockDecrements)
		return nil, err
	}

	return s.saleRepo.GetWithDetails(ctx, sale.ID)
}

// GetSale retrieves a sale with its line items
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// ListSales lists sales with filtering
func (s *SaleService) ListSales(ctx context.Context, params *repository.SaleFilterParams) (*pagination.PaginatedResult[entity.Sale], error) {
	sales, total, err := s.saleRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(sales, pag), nil
}

// ListSalesWithCursor lists sales with cursor-based pagination
func (s *SaleService) ListSalesWithCursor(ctx context.Context, params *repository.SaleCursorFilterParams) (*pagination.CursorPaginatedResult[entity.Sale], error) {
	sales, err := s.saleRepo.ListWithCursor(ctx, params)
	if err != nil {
		return nil, err
	}

	hasPrev := params.Cursor.Cursor != ""

	cursorPag, items := pagination.NewCursorPagination(sales, params.Cursor.Limit,
		func(sa entity.Sale) string { return sa.ID.String() },
		func(sa entity.Sale) time.Time { return sa.CreatedAt },
	)
	cursorPag.HasPrev = hasPrev

	return pagination.NewCursorPaginatedResult(items, cursorPag), nil
}

// CompleteSale marks a pending sale as completed. Only completed sales feed
// history aggregation and forecasting.
func (s *SaleService) CompleteSale(ctx context.Context, id uuid.UUID) error {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sale == nil {
		return apperror.NewNotFoundError("Sale")
	}

	if sale.Status == enum.SaleStatusCancelled {
		return apperror.NewBadRequestError("Cannot complete a cancelled sale")
	}
	if sale.Status == enum.SaleStatusCompleted {
		return apperror.NewBadRequestError("Sale is already completed")
	}

	return s.saleRepo.UpdateStatus(ctx, id, enum.SaleStatusCompleted)
}

// CancelSale cancels a sale and restores the stock of its line items
func (s *SaleService) CancelSale(ctx context.Context, id uuid.UUID) error {
	sale, err := s.saleRepo.GetWithDetails(ctx, id)
	if err != nil {
		return err
	}
	if sale == nil {
		return apperror.NewNotFoundError("Sale")
	}

	if sale.Status == enum.SaleStatusCancelled {
		return apperror.NewBadRequestError("Sale is already cancelled")
	}

	stockIncrements := make(map[uuid.UUID]int)
	for _, detail := range sale.Details {
		stockIncrements[detail.ProductID] = detail.Quantity
	}

	if err := s.productRepo.AtomicIncrementBatch(ctx, stockIncrements); err != nil {
		return err
	}

	return s.saleRepo.UpdateStatus(ctx, id, enum.SaleStatusCancelled)
}
