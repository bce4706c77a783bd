package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/josemp10/ventas-api/internal/domain/entity"
	"github.com/josemp10/ventas-api/internal/domain/enum"
	"github.com/josemp10/ventas-api/internal/domain/repository"
	"github.com/josemp10/ventas-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductRepository struct {
	products map[uuid.UUID]*entity.Product
}

func newFakeProductRepository(products ...*entity.Product) *fakeProductRepository {
	m := make(map[uuid.UUID]*entity.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return &fakeProductRepository{products: m}
}

func (f *fakeProductRepository) Create(ctx context.Context, product *entity.Product) error {
	f.products[product.ID] = product
	return nil
}
func (f *fakeProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return f.products[id], nil
}
func (f *fakeProductRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	var out []entity.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}
func (f *fakeProductRepository) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	for _, p := range f.products {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, nil
}
func (f *fakeProductRepository) Update(ctx context.Context, product *entity.Product) error {
	f.products[product.ID] = product
	return nil
}
func (f *fakeProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.products, id)
	return nil
}
func (f *fakeProductRepository) List(ctx context.Context, params *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	return nil, 0, nil
}
func (f *fakeProductRepository) GetLowStock(ctx context.Context) ([]entity.Product, error) {
	return nil, nil
}

func (f *fakeProductRepository) AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]int) ([]uuid.UUID, error) {
	var failed []uuid.UUID
	for id, amount := range decrements {
		p, ok := f.products[id]
		if !ok || p.Stock < amount {
			failed = append(failed, id)
		}
	}
	if len(failed) > 0 {
		return failed, nil
	}
	for id, amount := range decrements {
		f.products[id].Stock -= amount
	}
	return nil, nil
}

func (f *fakeProductRepository) AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error {
	for id, amount := range increments {
		if p, ok := f.products[id]; ok {
			p.Stock += amount
		}
	}
	return nil
}

type fakeClientRepository struct {
	clients map[uuid.UUID]*entity.Client
}

func (f *fakeClientRepository) Create(ctx context.Context, client *entity.Client) error {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	f.clients[client.ID] = client
	return nil
}
func (f *fakeClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	return f.clients[id], nil
}
func (f *fakeClientRepository) GetByEmail(ctx context.Context, email string) (*entity.Client, error) {
	for _, c := range f.clients {
		if c.Email != nil && *c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}
func (f *fakeClientRepository) GetByIdentityDocument(ctx context.Context, document string) (*entity.Client, error) {
	for _, c := range f.clients {
		if c.IdentityDocument != nil && *c.IdentityDocument == document {
			return c, nil
		}
	}
	return nil, nil
}
func (f *fakeClientRepository) Update(ctx context.Context, client *entity.Client) error {
	f.clients[client.ID] = client
	return nil
}
func (f *fakeClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.clients, id)
	return nil
}
func (f *fakeClientRepository) List(ctx context.Context, params *repository.ClientFilterParams) ([]entity.Client, int64, error) {
	return nil, 0, nil
}

// statefulSaleRepository remembers created sales so status transitions can be
// asserted against
type statefulSaleRepository struct {
	fakeSaleRepository
	created map[uuid.UUID]*entity.Sale
}

func newStatefulSaleRepository() *statefulSaleRepository {
	return &statefulSaleRepository{created: make(map[uuid.UUID]*entity.Sale)}
}

func (f *statefulSaleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	f.created[sale.ID] = sale
	return nil
}

func (f *statefulSaleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	return f.created[id], nil
}

func (f *statefulSaleRepository) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	return f.created[id], nil
}

func (f *statefulSaleRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.SaleStatus) error {
	if sale, ok := f.created[id]; ok {
		sale.Status = status
	}
	return nil
}

type fakeSaleDetailRepository struct {
	bySale map[uuid.UUID][]entity.SaleDetail
}

func newFakeSaleDetailRepository() *fakeSaleDetailRepository {
	return &fakeSaleDetailRepository{bySale: make(map[uuid.UUID][]entity.SaleDetail)}
}

func (f *fakeSaleDetailRepository) CreateBatch(ctx context.Context, details []entity.SaleDetail) error {
	for _, d := range details {
		f.bySale[d.SaleID] = append(f.bySale[d.SaleID], d)
	}
	return nil
}
func (f *fakeSaleDetailRepository) GetBySaleID(ctx context.Context, saleID uuid.UUID) ([]entity.SaleDetail, error) {
	return f.bySale[saleID], nil
}
func (f *fakeSaleDetailRepository) DeleteBySaleID(ctx context.Context, saleID uuid.UUID) error {
	delete(f.bySale, saleID)
	return nil
}

func newTestSaleService(products ...*entity.Product) (*SaleService, *statefulSaleRepository, *fakeProductRepository) {
	saleRepo := newStatefulSaleRepository()
	productRepo := newFakeProductRepository(products...)
	svc := NewSaleService(saleRepo, newFakeSaleDetailRepository(), productRepo,
		&fakeClientRepository{clients: make(map[uuid.UUID]*entity.Client)})
	return svc, saleRepo, productRepo
}

func testProduct(name string, priceCents int64, stock int) *entity.Product {
	return &entity.Product{ID: uuid.New(), Name: name, Code: name, Price: priceCents, Stock: stock, Active: true}
}

func TestCreateSaleComputesTotalsAndDecrementsStock(t *testing.T) {
	keyboard := testProduct("KB-01", 4500, 10)
	mouse := testProduct("MS-01", 1500, 5)
	svc, saleRepo, _ := newTestSaleService(keyboard, mouse)

	sale, err := svc.CreateSale(context.Background(), &CreateSaleInput{
		UserID: uuid.New(),
		Items: []SaleItemInput{
			{ProductID: keyboard.ID, Quantity: 2},
			{ProductID: mouse.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, sale)

	assert.Equal(t, enum.SaleStatusPending, sale.Status)
	assert.Equal(t, 5, sale.TotalItems)
	assert.Equal(t, int64(2*4500+3*1500), sale.Total)
	assert.NotEmpty(t, sale.InvoiceNo)

	assert.Equal(t, 8, keyboard.Stock)
	assert.Equal(t, 2, mouse.Stock)
	assert.Len(t, saleRepo.created, 1)
}

func TestCreateSaleInsufficientStock(t *testing.T) {
	keyboard := testProduct("KB-01", 4500, 1)
	svc, saleRepo, _ := newTestSaleService(keyboard)

	_, err := svc.CreateSale(context.Background(), &CreateSaleInput{
		UserID: uuid.New(),
		Items:  []SaleItemInput{{ProductID: keyboard.ID, Quantity: 2}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Insufficient stock")

	// Nothing was persisted and stock is untouched
	assert.Empty(t, saleRepo.created)
	assert.Equal(t, 1, keyboard.Stock)
}

func TestCreateSaleUnknownProduct(t *testing.T) {
	svc, _, _ := newTestSaleService()

	_, err := svc.CreateSale(context.Background(), &CreateSaleInput{
		UserID: uuid.New(),
		Items:  []SaleItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreateSaleUnknownClient(t *testing.T) {
	keyboard := testProduct("KB-01", 4500, 10)
	svc, _, _ := newTestSaleService(keyboard)

	missing := uuid.New()
	_, err := svc.CreateSale(context.Background(), &CreateSaleInput{
		UserID:   uuid.New(),
		ClientID: &missing,
		Items:    []SaleItemInput{{ProductID: keyboard.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreateSaleRequiresItems(t *testing.T) {
	svc, _, _ := newTestSaleService()

	_, err := svc.CreateSale(context.Background(), &CreateSaleInput{UserID: uuid.New()})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}

func TestCompleteSale(t *testing.T) {
	keyboard := testProduct("KB-01", 4500, 10)
	svc, saleRepo, _ := newTestSaleService(keyboard)

	sale, err := svc.CreateSale(context.Background(), &CreateSaleInput{
		UserID: uuid.New(),
		Items:  []SaleItemInput{{ProductID: keyboard.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.CompleteSale(context.Background(), sale.ID))
	assert.Equal(t, enum.SaleStatusCompleted, saleRepo.created[sale.ID].Status)

	// Completing twice is rejected
	err = svc.CompleteSale(context.Background(), sale.ID)
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}

func TestCancelSaleRestoresStock(t *testing.T) {
	keyboard := testProduct("KB-01", 4500, 10)
	svc, saleRepo, _ := newTestSaleService(keyboard)

	sale, err := svc.CreateSale(context.Background(), &CreateSaleInput{
		UserID: uuid.New(),
		Items:  []SaleItemInput{{ProductID: keyboard.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, keyboard.Stock)

	require.NoError(t, svc.CancelSale(context.Background(), sale.ID))
	assert.Equal(t, enum.SaleStatusCancelled, saleRepo.created[sale.ID].Status)
	assert.Equal(t, 10, keyboard.Stock)

	// Cancelling twice is rejected, stock is not restored again
	err = svc.CancelSale(context.Background(), sale.ID)
	require.Error(t, err)
	assert.Equal(t, 10, keyboard.Stock)
}

func TestCompleteCancelledSaleRejected(t *testing.T) {
	keyboard := testProduct("KB-01", 4500, 10)
	svc, _, _ := newTestSaleService(keyboard)

	sale, err := svc.CreateSale(context.Background(), &CreateSaleInput{
		UserID: uuid.New(),
		Items:  []SaleItemInput{{ProductID: keyboard.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.CancelSale(context.Background(), sale.ID))
	err = svc.CompleteSale(context.Background(), sale.ID)
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}
