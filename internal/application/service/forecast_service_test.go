package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/josemp10/ventas-api/internal/domain/entity"
	"github.com/josemp10/ventas-api/internal/domain/enum"
	"github.com/josemp10/ventas-api/internal/domain/repository"
	"github.com/josemp10/ventas-api/pkg/apperror"
	"github.com/josemp10/ventas-api/pkg/period"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSaleRepository serves canned sales, applying the same range and status
// filtering the real repository performs
type fakeSaleRepository struct {
	sales []entity.Sale
}

func (f *fakeSaleRepository) Create(ctx context.Context, sale *entity.Sale) error { return nil }
func (f *fakeSaleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	return nil, nil
}
func (f *fakeSaleRepository) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	return nil, nil
}
func (f *fakeSaleRepository) Update(ctx context.Context, sale *entity.Sale) error { return nil }
func (f *fakeSaleRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.SaleStatus) error {
	return nil
}
func (f *fakeSaleRepository) List(ctx context.Context, params *repository.SaleFilterParams) ([]entity.Sale, int64, error) {
	return nil, 0, nil
}
func (f *fakeSaleRepository) ListWithCursor(ctx context.Context, params *repository.SaleCursorFilterParams) ([]entity.Sale, error) {
	return nil, nil
}
func (f *fakeSaleRepository) CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeSaleRepository) FindInRange(ctx context.Context, filter *repository.SaleFilter) ([]entity.Sale, error) {
	var matched []entity.Sale
	for _, sale := range f.sales {
		if !filter.StartDate.IsZero() && sale.SaleDate.Before(filter.StartDate) {
			continue
		}
		if !filter.EndDate.IsZero() {
			if filter.EndExclusive {
				if !sale.SaleDate.Before(filter.EndDate) {
					continue
				}
			} else if sale.SaleDate.After(filter.EndDate) {
				continue
			}
		}
		if filter.Status != nil && sale.Status != *filter.Status {
			continue
		}
		matched = append(matched, sale)
	}
	return matched, nil
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 12, 0, 0, 0, time.UTC)
}

func completedSale(date time.Time, details ...entity.SaleDetail) entity.Sale {
	var total int64
	for _, detail := range details {
		total += detail.Subtotal
	}
	return entity.Sale{
		ID:       uuid.New(),
		SaleDate: date,
		Status:   enum.SaleStatusCompleted,
		Total:    total,
		Details:  details,
	}
}

func lineItem(product entity.Product, quantity int, subtotalCents int64) entity.SaleDetail {
	return entity.SaleDetail{
		ProductID: product.ID,
		Quantity:  quantity,
		Subtotal:  subtotalCents,
		Product:   product,
	}
}

func newTestForecastService(sales ...entity.Sale) *ForecastService {
	svc := NewForecastService(&fakeSaleRepository{sales: sales})
	svc.nowFn = func() time.Time { return day(2024, time.June, 15) }
	return svc
}

func TestGetSalesHistoryAggregatesByPeriod(t *testing.T) {
	product := entity.Product{ID: uuid.New(), Name: "Keyboard"}
	svc := newTestForecastService(
		completedSale(day(2024, time.March, 1), lineItem(product, 1, 10000)),
		completedSale(day(2024, time.March, 1), lineItem(product, 2, 20000)),
		completedSale(day(2024, time.March, 2), lineItem(product, 1, 5000)),
	)

	points, err := svc.GetSalesHistory(context.Background(), &HistoryQuery{
		StartDate:   "2024-03-01",
		EndDate:     "2024-03-31",
		Granularity: period.Daily,
	})
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.Equal(t, "2024-03-01", points[0].Period)
	assert.InDelta(t, 300.0, points[0].Sales, 1e-9)
	assert.Equal(t, "2024-03-02", points[1].Period)
	assert.InDelta(t, 50.0, points[1].Sales, 1e-9)
}

func TestGetSalesHistoryExcludesPendingSales(t *testing.T) {
	product := entity.Product{ID: uuid.New(), Name: "Mouse"}
	pending := completedSale(day(2024, time.March, 5), lineItem(product, 1, 9999))
	pending.Status = enum.SaleStatusPending

	svc := newTestForecastService(
		pending,
		completedSale(day(2024, time.March, 5), lineItem(product, 1, 10000)),
	)

	points, err := svc.GetSalesHistory(context.Background(), &HistoryQuery{
		StartDate:   "2024-03-01",
		EndDate:     "2024-03-31",
		Granularity: period.Daily,
	})
	require.NoError(t, err)

	require.Len(t, points, 1)
	assert.InDelta(t, 100.0, points[0].Sales, 1e-9)
}

func TestGetSalesHistoryFiltersByCategory(t *testing.T) {
	catID := uuid.New()
	inCategory := entity.Product{ID: uuid.New(), Name: "Laptop", CategoryID: &catID}
	noCategory := entity.Product{ID: uuid.New(), Name: "Sticker"}

	svc := newTestForecastService(
		completedSale(day(2024, time.March, 10),
			lineItem(inCategory, 1, 50000),
			lineItem(noCategory, 1, 1000),
		),
	)

	points, err := svc.GetSalesHistory(context.Background(), &HistoryQuery{
		StartDate:   "2024-03-01",
		EndDate:     "2024-03-31",
		Granularity: period.Daily,
		CategoryID:  &catID,
	})
	require.NoError(t, err)

	require.Len(t, points, 1)
	assert.InDelta(t, 500.0, points[0].Sales, 1e-9)
}

func TestGetSalesHistoryRejectsMalformedDates(t *testing.T) {
	svc := newTestForecastService()

	_, err := svc.GetSalesHistory(context.Background(), &HistoryQuery{
		StartDate:   "01/03/2024",
		EndDate:     "2024-03-31",
		Granularity: period.Daily,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)

	_, err = svc.GetSalesHistory(context.Background(), &HistoryQuery{
		StartDate:   "2024-03-01",
		EndDate:     "2024-03-31",
		Granularity: period.Granularity("hourly"),
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)
}

func salesForValues(start time.Time, valuesInCents []int64) []entity.Sale {
	product := entity.Product{ID: uuid.New(), Name: "Widget"}
	sales := make([]entity.Sale, 0, len(valuesInCents))
	for i, cents := range valuesInCents {
		sales = append(sales, completedSale(start.AddDate(0, 0, i), lineItem(product, 1, cents)))
	}
	return sales
}

func TestGenerateForecastLinear(t *testing.T) {
	// Daily totals of 100, 120, 140: a clean line with slope 20
	sales := salesForValues(day(2024, time.March, 1), []int64{10000, 12000, 14000})
	svc := newTestForecastService(sales...)

	points, err := svc.GenerateForecast(context.Background(), &ForecastRequest{
		Method:      MethodLinear,
		Granularity: period.Daily,
		StartDate:   "2024-03-01",
		EndDate:     "2024-03-31",
		Params:      &ForecastParams{Horizon: 2},
	})
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.InDelta(t, 160.0, points[0].Predicted, 1e-9)
	assert.InDelta(t, 180.0, points[1].Predicted, 1e-9)

	// Labels advance from the clock, one period per step
	assert.Equal(t, "2024-06-16", points[0].Period)
	assert.Equal(t, "2024-06-17", points[1].Period)

	// 95% band around the prediction from the population stddev (~16.33)
	assert.InDelta(t, 160.0-1.96*16.329931, points[0].Confidence.Lower, 1e-3)
	assert.InDelta(t, 160.0+1.96*16.329931, points[0].Confidence.Upper, 1e-3)

	// Precision grades distance from the last observation (140)
	assert.InDelta(t, 100-100*20.0/140.0, points[0].Precision, 1e-6)
}

func TestGenerateForecastLinearFlatHistory(t *testing.T) {
	sales := salesForValues(day(2024, time.March, 1), []int64{10000, 10000, 10000, 10000})
	svc := newTestForecastService(sales...)

	points, err := svc.GenerateForecast(context.Background(), &ForecastRequest{
		Method:      MethodLinear,
		Granularity: period.Daily,
		StartDate:   "2024-03-01",
		EndDate:     "2024-03-31",
	})
	require.NoError(t, err)
	require.Len(t, points, DefaultHorizon)

	for _, p := range points {
		assert.InDelta(t, 100.0, p.Predicted, 1e-9)
		// Zero variance collapses the band onto the prediction
		assert.InDelta(t, 100.0, p.Confidence.Lower, 1e-9)
		assert.InDelta(t, 100.0, p.Confidence.Upper, 1e-9)
		assert.InDelta(t, 100.0, p.Precision, 1e-9)
	}
}

func TestGenerateForecastLinearSinglePointDegenerate(t *testing.T) {
	sales := salesForValues(day(2024, time.March, 1), []int64{10000})
	svc := newTestForecastService(sales...)

	_, err := svc.GenerateForecast(context.Background(), &ForecastRequest{
		Method:      MethodLinear,
		Granularity: period.Daily,
		StartDate:   "2024-03-01",
		EndDate:     "2024-03-31",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)
}

func TestGenerateForecastEmptyHistoryNotFound(t *testing.T) {
	svc := newTestForecastService()

	_, err := svc.GenerateForecast(context.Background(), &ForecastRequest{
		Method:      MethodLinear,
		Granularity: period.Daily,
		StartDate:   "2024-03-01",
		EndDate:     "2024-03-31",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestGenerateForecastUnknownMethodNotFound(t *testing.T) {
	sales := salesForValues(day(2024, time.March, 1), []int64{10000, 12000})
	svc := newTestForecastService(sales...)

	_, err := svc.GenerateForecast(context.Background(), &ForecastRequest{
		Method:      "prophet",
		Granularity: period.Daily,
		StartDate:   "2024-03-01",
		EndDate:     "2024-03-31",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestGenerateForecastMovingAverage(t *testing.T) {
	sales := salesForValues(day(2024, time.March, 1), []int64{10000, 12000, 14000})
	svc := newTestForecastService(sales...)

	// With full smoothing weight the prediction is the plain 3-point average
	points, err := svc.GenerateForecast(context.Background(), &ForecastRequest{
		Method:      MethodMovingAverage,
		Granularity: period.Daily,
		StartDate:   "2024-03-01",
		EndDate:     "2024-03-31",
		Params:      &ForecastParams{Horizon: 1, Alpha: 1.0},
	})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.InDelta(t, 120.0, points[0].Predicted, 1e-9)

	// Default alpha blends the window average with the last observation:
	// 0.3*120 + 0.7*140 = 134
	points, err = svc.GenerateForecast(context.Background(), &ForecastRequest{
		Method:      MethodMovingAverage,
		Granularity: period.Daily,
		StartDate:   "2024-03-01",
		EndDate:     "2024-03-31",
		Params:      &ForecastParams{Horizon: 1},
	})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.InDelta(t, 134.0, points[0].Predicted, 1e-9)
}

func TestGenerateForecastMovingAverageFeedsPredictionsBack(t *testing.T) {
	sales := salesForValues(day(2024, time.March, 1), []int64{10000, 10000, 10000})
	svc := newTestForecastService(sales...)

	points, err := svc.GenerateForecast(context.Background(), &ForecastRequest{
		Method:      MethodMovingAverage,
		Granularity: period.Daily,
		StartDate:   "2024-03-01",
		EndDate:     "2024-03-31",
		Params:      &ForecastParams{Horizon: 4},
	})
	require.NoError(t, err)
	require.Len(t, points, 4)

	// A flat series stays flat no matter how far the horizon extends
	for _, p := range points {
		assert.InDelta(t, 100.0, p.Predicted, 1e-9)
	}
}

func TestGenerateForecastSeasonalShortHistory(t *testing.T) {
	// Under two full cycles the factors stay neutral, so every projected
	// period carries the trailing-window mean
	sales := salesForValues(day(2024, time.March, 1), []int64{10000, 12000, 14000})
	svc := newTestForecastService(sales...)

	points, err := svc.GenerateForecast(context.Background(), &ForecastRequest{
		Method:      MethodSeasonal,
		Granularity: period.Daily,
		StartDate:   "2024-03-01",
		EndDate:     "2024-03-31",
		Params:      &ForecastParams{Horizon: 3},
	})
	require.NoError(t, err)
	require.Len(t, points, 3)

	for _, p := range points {
		assert.InDelta(t, 120.0, p.Predicted, 1e-9)
	}
}

func TestGenerateForecastSeasonalFactors(t *testing.T) {
	// Two full cycles of a 2-period season alternating 100/200. Slot factors
	// are 100/150 and 200/150; the trailing window mean is 150.
	sales := salesForValues(day(2024, time.March, 1), []int64{10000, 20000, 10000, 20000})
	svc := newTestForecastService(sales...)

	points, err := svc.GenerateForecast(context.Background(), &ForecastRequest{
		Method:      MethodSeasonal,
		Granularity: period.Daily,
		StartDate:   "2024-03-01",
		EndDate:     "2024-03-31",
		Params:      &ForecastParams{Horizon: 2, Seasonality: 2},
	})
	require.NoError(t, err)
	require.Len(t, points, 2)

	// len(data)%2 == 0, so the first projected slot is slot 0 (the 100s)
	assert.InDelta(t, 100.0, points[0].Predicted, 1e-9)
	assert.InDelta(t, 200.0, points[1].Predicted, 1e-9)
}

func TestConfidenceIntervalLowerClampedAtZero(t *testing.T) {
	data := []float64{0, 1000, 0, 1000}
	interval := confidenceInterval(10, data)

	assert.Equal(t, 0.0, interval.Lower)
	assert.Greater(t, interval.Upper, 10.0)
}

func TestPrecisionScore(t *testing.T) {
	assert.InDelta(t, 100.0, precisionScore([]float64{50, 100}, 100), 1e-9)
	assert.InDelta(t, 90.0, precisionScore([]float64{100}, 110), 1e-9)
	// Wildly off predictions floor at zero rather than going negative
	assert.Equal(t, 0.0, precisionScore([]float64{100}, 350))
	// A zero baseline makes relative error undefined
	assert.Equal(t, 0.0, precisionScore([]float64{100, 0}, 50))
	assert.Equal(t, 0.0, precisionScore(nil, 50))
}

func TestGetTopSellingDatesRanksByVolume(t *testing.T) {
	product := entity.Product{ID: uuid.New(), Name: "Widget"}
	svc := newTestForecastService(
		completedSale(day(2024, time.March, 1), lineItem(product, 1, 10000)),
		completedSale(day(2024, time.March, 2), lineItem(product, 1, 30000)),
		completedSale(day(2024, time.March, 2), lineItem(product, 1, 20000)),
		completedSale(day(2024, time.March, 3), lineItem(product, 1, 15000)),
	)

	rankings, err := svc.GetTopSellingDates(context.Background(), &TopDatesQuery{
		StartDate:   "2024-03-01",
		EndDate:     "2024-03-31",
		Granularity: period.Daily,
		Limit:       2,
	})
	require.NoError(t, err)
	require.Len(t, rankings, 2)

	assert.Equal(t, "2024-03-02", rankings[0].Period)
	assert.InDelta(t, 500.0, rankings[0].TotalSales, 1e-9)
	assert.Equal(t, 2, rankings[0].Transactions)

	assert.Equal(t, "2024-03-03", rankings[1].Period)
	assert.InDelta(t, 150.0, rankings[1].TotalSales, 1e-9)
	assert.Equal(t, 1, rankings[1].Transactions)
}

func TestGetTopSellingDatesEmptyWindow(t *testing.T) {
	svc := newTestForecastService()

	rankings, err := svc.GetTopSellingDates(context.Background(), &TopDatesQuery{
		StartDate:   "2024-03-01",
		EndDate:     "2024-03-31",
		Granularity: period.Weekly,
	})
	require.NoError(t, err)
	assert.Empty(t, rankings)
}

func TestGetTopProductsByPeriod(t *testing.T) {
	catID := uuid.New()
	laptop := entity.Product{ID: uuid.New(), Name: "Laptop", CategoryID: &catID,
		Category: &entity.Category{ID: catID, Name: "Electronics"}}
	sticker := entity.Product{ID: uuid.New(), Name: "Sticker"}

	svc := newTestForecastService(
		completedSale(day(2024, time.March, 5),
			lineItem(laptop, 1, 60000),
			lineItem(sticker, 10, 20000),
		),
		completedSale(day(2024, time.March, 20), lineItem(sticker, 5, 20000)),
		// Outside the month, must not count
		completedSale(day(2024, time.April, 1), lineItem(laptop, 1, 99999)),
	)

	rankings, err := svc.GetTopProductsByPeriod(context.Background(), "2024-03", 10)
	require.NoError(t, err)
	require.Len(t, rankings, 2)

	assert.Equal(t, "Laptop", rankings[0].ProductName)
	assert.Equal(t, "Electronics", rankings[0].Category)
	assert.InDelta(t, 600.0, rankings[0].Revenue, 1e-9)
	assert.InDelta(t, 60.0, rankings[0].Percentage, 1e-9)

	assert.Equal(t, "Sticker", rankings[1].ProductName)
	assert.Equal(t, "Uncategorized", rankings[1].Category)
	assert.Equal(t, 15, rankings[1].QuantitySold)
	assert.InDelta(t, 400.0, rankings[1].Revenue, 1e-9)
	assert.InDelta(t, 40.0, rankings[1].Percentage, 1e-9)
}

func TestGetTopProductsByPeriodEmptyPeriod(t *testing.T) {
	svc := newTestForecastService()

	rankings, err := svc.GetTopProductsByPeriod(context.Background(), "2024-W10", 10)
	require.NoError(t, err)
	assert.Empty(t, rankings)
}

func TestGetTopProductsByPeriodMalformedKey(t *testing.T) {
	svc := newTestForecastService()

	for _, key := range []string{"2024-W54", "2024-W00", "2024-13", "garbage"} {
		_, err := svc.GetTopProductsByPeriod(context.Background(), key, 10)
		require.Error(t, err, "key %q", key)
		assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)
	}
}
