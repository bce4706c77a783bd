package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/josemp10/ventas-api/internal/domain/enum"
	"github.com/josemp10/ventas-api/internal/domain/repository"
	"github.com/josemp10/ventas-api/pkg/apperror"
	"github.com/josemp10/ventas-api/pkg/period"
)

// Forecast method identifiers
const (
	MethodLinear        = "linear"
	MethodMovingAverage = "moving_average"
	MethodSeasonal      = "seasonal"
)

// Forecast defaults applied when the request omits tuning parameters
const (
	DefaultHorizon     = 6
	DefaultAlpha       = 0.3
	DefaultSeasonality = 12
	DefaultRankingSize = 10
)

// ForecastService computes sales history aggregates, projections and
// top-seller rankings from completed sales
type ForecastService struct {
	saleRepo repository.SaleRepository
	nowFn    func() time.Time
}

// NewForecastService creates a new forecast service
func NewForecastService(saleRepo repository.SaleRepository) *ForecastService {
	return &ForecastService{
		saleRepo: saleRepo,
		nowFn:    time.Now,
	}
}

// HistoricalPoint is one bucket of aggregated sales, keyed by period
type HistoricalPoint struct {
	Period string  `json:"period"`
	Sales  float64 `json:"sales"`
}

// ConfidenceInterval bounds a prediction at the 95% level
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// ForecastPoint is a single projected period
type ForecastPoint struct {
	Period     string             `json:"period"`
	Predicted  float64            `json:"predicted_sales"`
	Confidence ConfidenceInterval `json:"confidence_interval"`
	Precision  float64            `json:"precision_score"`
}

// PeriodRanking aggregates sales volume for one period bucket
type PeriodRanking struct {
	Period       string  `json:"period"`
	TotalSales   float64 `json:"total_sales"`
	Transactions int     `json:"transactions"`
}

// ProductRanking aggregates one product's performance inside a period
type ProductRanking struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	Category     string    `json:"category"`
	QuantitySold int       `json:"quantity_sold"`
	Revenue      float64   `json:"revenue"`
	Percentage   float64   `json:"percentage_of_total"`
}

// HistoryQuery selects the sales window to aggregate
type HistoryQuery struct {
	StartDate   string
	EndDate     string
	Granularity period.Granularity
	ProductID   *uuid.UUID
	CategoryID  *uuid.UUID
}

// ForecastParams tunes a forecast run; zero values fall back to defaults
type ForecastParams struct {
	Horizon     int
	Alpha       float64
	Seasonality int
}

// ForecastRequest asks for a projection over a historical window
type ForecastRequest struct {
	Method      string
	Granularity period.Granularity
	StartDate   string
	EndDate     string
	Params      *ForecastParams
}

// TopDatesQuery selects the window and size of a period ranking
type TopDatesQuery struct {
	StartDate   string
	EndDate     string
	Granularity period.Granularity
	Limit       int
}

// GetSalesHistory aggregates completed sales into period buckets, summing
// line-item subtotals. Results are sorted by period key ascending, which for
// the canonical key formats is also chronological order.
func (s *ForecastService) GetSalesHistory(ctx context.Context, query *HistoryQuery) ([]HistoricalPoint, error) {
	start, end, err := parseDateRange(query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}
	if !query.Granularity.Valid() {
		return nil, apperror.NewBadRequestError("Invalid period granularity")
	}

	completed := enum.SaleStatusCompleted
	filter := &repository.SaleFilter{
		StartDate: start,
		EndDate:   end,
		Status:    &completed,
		ProductID: query.ProductID,
	}

	sales, err := s.saleRepo.FindInRange(ctx, filter)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string]float64)
	for _, sale := range sales {
		key := period.Key(sale.SaleDate, query.Granularity)
		for _, detail := range sale.Details {
			if query.CategoryID != nil {
				if detail.Product.CategoryID == nil || *detail.Product.CategoryID != *query.CategoryID {
					continue
				}
			}
			grouped[key] += float64(detail.Subtotal) / 100.0
		}
	}

	points := make([]HistoricalPoint, 0, len(grouped))
	for key, total := range grouped {
		points = append(points, HistoricalPoint{Period: key, Sales: total})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Period < points[j].Period })

	return points, nil
}

// GenerateForecast projects future sales from the aggregated history of the
// requested window. An empty history is a not-found condition, not an empty
// forecast.
func (s *ForecastService) GenerateForecast(ctx context.Context, req *ForecastRequest) ([]ForecastPoint, error) {
	history, err := s.GetSalesHistory(ctx, &HistoryQuery{
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Granularity: req.Granularity,
	})
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, apperror.NewNotFoundError("Sales history for the selected period")
	}

	values := make([]float64, len(history))
	for i, point := range history {
		values[i] = point.Sales
	}

	horizon := DefaultHorizon
	alpha := DefaultAlpha
	seasonality := DefaultSeasonality
	if req.Params != nil {
		if req.Params.Horizon > 0 {
			horizon = req.Params.Horizon
		}
		if req.Params.Alpha > 0 {
			alpha = req.Params.Alpha
		}
		if req.Params.Seasonality > 0 {
			seasonality = req.Params.Seasonality
		}
	}

	switch req.Method {
	case MethodLinear:
		return s.linearForecast(values, horizon, req.Granularity)
	case MethodMovingAverage:
		return s.movingAverageForecast(values, horizon, alpha, req.Granularity)
	case MethodSeasonal:
		return s.seasonalForecast(values, horizon, seasonality, req.Granularity)
	default:
		return nil, apperror.NewNotFoundError("Forecast method")
	}
}

// linearForecast fits an ordinary least squares line over the series indexed
// 1..n and extrapolates it forward.
func (s *ForecastService) linearForecast(data []float64, horizon int, g period.Granularity) ([]ForecastPoint, error) {
	n := len(data)
	if n <= 1 {
		return nil, apperror.NewComputationError("Not enough history for a linear regression")
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range data {
		x := float64(i + 1)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	fn := float64(n)
	slope := (fn*sumXY - sumX*sumY) / (fn*sumX2 - sumX*sumX)
	intercept := (sumY - slope*sumX) / fn

	results := make([]ForecastPoint, 0, horizon)
	base := s.nowFn()
	for i := 1; i <= horizon; i++ {
		prediction := intercept + slope*float64(n+i)
		results = append(results, ForecastPoint{
			Period:     period.Key(period.Add(base, g, i), g),
			Predicted:  prediction,
			Confidence: confidenceInterval(prediction, data),
			Precision:  precisionScore(data, prediction),
		})
	}

	return results, nil
}

// movingAverageForecast averages the trailing three points and blends the
// result with the most recent value using exponential smoothing. Each
// prediction is fed back into the series so later steps build on it.
func (s *ForecastService) movingAverageForecast(data []float64, horizon int, alpha float64, g period.Granularity) ([]ForecastPoint, error) {
	series := make([]float64, len(data))
	copy(series, data)

	results := make([]ForecastPoint, 0, horizon)
	base := s.nowFn()
	for i := 0; i < horizon; i++ {
		window := series
		if len(window) > 3 {
			window = window[len(window)-3:]
		}
		var sum float64
		for _, v := range window {
			sum += v
		}
		prediction := sum / float64(len(window))

		last := prediction
		if len(series) > 0 {
			last = series[len(series)-1]
		}
		smoothed := alpha*prediction + (1-alpha)*last

		results = append(results, ForecastPoint{
			Period:     period.Key(period.Add(base, g, i+1), g),
			Predicted:  smoothed,
			Confidence: confidenceInterval(smoothed, data),
			Precision:  precisionScore(data, smoothed),
		})

		series = append(series, smoothed)
	}

	return results, nil
}

// seasonalForecast scales the mean of the trailing season by per-slot factors.
// Factors stay flat at 1.0 until at least two full cycles of history exist.
func (s *ForecastService) seasonalForecast(data []float64, horizon, seasonality int, g period.Granularity) ([]ForecastPoint, error) {
	factors := seasonalFactors(data, seasonality)

	tail := data
	if len(tail) > seasonality {
		tail = tail[len(tail)-seasonality:]
	}
	var tailSum float64
	for _, v := range tail {
		tailSum += v
	}
	baseValue := tailSum / float64(len(tail))

	results := make([]ForecastPoint, 0, horizon)
	base := s.nowFn()
	offset := len(data) % seasonality
	for i := 1; i <= horizon; i++ {
		slot := (offset + i - 1) % seasonality
		prediction := baseValue * factors[slot]

		results = append(results, ForecastPoint{
			Period:     period.Key(period.Add(base, g, i), g),
			Predicted:  prediction,
			Confidence: confidenceInterval(prediction, data),
			Precision:  precisionScore(data, prediction),
		})
	}

	return results, nil
}

// seasonalFactors computes a multiplicative factor per season slot, normalized
// so the factors average to 1.0. With fewer than two full cycles of data every
// slot keeps the neutral factor.
func seasonalFactors(data []float64, seasonality int) []float64 {
	factors := make([]float64, seasonality)
	for i := range factors {
		factors[i] = 1
	}

	if len(data) < seasonality*2 {
		return factors
	}

	for i := 0; i < seasonality; i++ {
		var sum float64
		var count int
		for j := i; j < len(data); j += seasonality {
			sum += data[j]
			count++
		}
		if count > 0 {
			factors[i] = sum / float64(count)
		}
	}

	var total float64
	for _, f := range factors {
		total += f
	}
	avg := total / float64(seasonality)
	if avg == 0 {
		for i := range factors {
			factors[i] = 1
		}
		return factors
	}
	for i := range factors {
		factors[i] /= avg
	}

	return factors
}

// confidenceInterval builds a 95% band around the prediction using the
// population standard deviation of the history. The lower bound never goes
// negative: sales cannot.
func confidenceInterval(prediction float64, data []float64) ConfidenceInterval {
	margin := 1.96 * stdDev(data)
	return ConfidenceInterval{
		Lower: math.Max(0, prediction-margin),
		Upper: prediction + margin,
	}
}

func stdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	var sum float64
	for _, v := range data {
		sum += v
	}
	mean := sum / float64(len(data))

	var variance float64
	for _, v := range data {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(data))

	return math.Sqrt(variance)
}

// precisionScore grades a prediction by its relative distance from the most
// recent observation, on a 0..100 scale. A zero last observation makes the
// relative error undefined, which scores 0.
func precisionScore(data []float64, prediction float64) float64 {
	if len(data) == 0 {
		return 0
	}
	last := data[len(data)-1]
	if last == 0 {
		return 0
	}
	relError := math.Abs(prediction-last) / last
	return math.Max(0, 100-relError*100)
}

// GetTopSellingDates ranks period buckets by completed sales volume inside
// the window. An empty window yields an empty ranking rather than an error.
func (s *ForecastService) GetTopSellingDates(ctx context.Context, query *TopDatesQuery) ([]PeriodRanking, error) {
	start, end, err := parseDateRange(query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}
	if !query.Granularity.Valid() {
		return nil, apperror.NewBadRequestError("Invalid period granularity")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = DefaultRankingSize
	}

	completed := enum.SaleStatusCompleted
	sales, err := s.saleRepo.FindInRange(ctx, &repository.SaleFilter{
		StartDate: start,
		EndDate:   end,
		Status:    &completed,
	})
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return []PeriodRanking{}, nil
	}

	grouped := make(map[string]*PeriodRanking)
	for _, sale := range sales {
		key := period.Key(sale.SaleDate, query.Granularity)
		entry, ok := grouped[key]
		if !ok {
			entry = &PeriodRanking{Period: key}
			grouped[key] = entry
		}
		entry.TotalSales += float64(sale.Total) / 100.0
		entry.Transactions++
	}

	rankings := make([]PeriodRanking, 0, len(grouped))
	for _, entry := range grouped {
		rankings = append(rankings, *entry)
	}
	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].TotalSales != rankings[j].TotalSales {
			return rankings[i].TotalSales > rankings[j].TotalSales
		}
		return rankings[i].Period < rankings[j].Period
	})

	if len(rankings) > limit {
		rankings = rankings[:limit]
	}

	return rankings, nil
}

// GetTopProductsByPeriod ranks products sold inside a single period bucket,
// identified by its key. The key may be any of the canonical period formats.
func (s *ForecastService) GetTopProductsByPeriod(ctx context.Context, periodKey string, limit int) ([]ProductRanking, error) {
	start, end, err := period.KeyRange(periodKey)
	if err != nil {
		return nil, apperror.NewBadRequestError(err.Error())
	}

	if limit <= 0 {
		limit = DefaultRankingSize
	}

	completed := enum.SaleStatusCompleted
	sales, err := s.saleRepo.FindInRange(ctx, &repository.SaleFilter{
		StartDate:    start,
		EndDate:      end,
		EndExclusive: true,
		Status:       &completed,
	})
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return []ProductRanking{}, nil
	}

	byProduct := make(map[uuid.UUID]*ProductRanking)
	var periodTotal float64
	for _, sale := range sales {
		for _, detail := range sale.Details {
			subtotal := float64(detail.Subtotal) / 100.0
			periodTotal += subtotal

			entry, ok := byProduct[detail.ProductID]
			if !ok {
				entry = &ProductRanking{
					ProductID:   detail.ProductID,
					ProductName: detail.Product.Name,
					Category:    "Uncategorized",
				}
				if detail.Product.Category != nil {
					entry.Category = detail.Product.Category.Name
				}
				byProduct[detail.ProductID] = entry
			}
			entry.QuantitySold += detail.Quantity
			entry.Revenue += subtotal
		}
	}

	rankings := make([]ProductRanking, 0, len(byProduct))
	for _, entry := range byProduct {
		if periodTotal > 0 {
			entry.Percentage = (entry.Revenue / periodTotal) * 100
		}
		rankings = append(rankings, *entry)
	}
	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].Revenue != rankings[j].Revenue {
			return rankings[i].Revenue > rankings[j].Revenue
		}
		return rankings[i].ProductName < rankings[j].ProductName
	})

	if len(rankings) > limit {
		rankings = rankings[:limit]
	}

	return rankings, nil
}

// parseDateRange validates the inclusive window bounds of a history query
func parseDateRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02", startDate, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.NewBadRequestError("Invalid start date, expected YYYY-MM-DD")
	}
	end, err := time.ParseInLocation("2006-01-02", endDate, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.NewBadRequestError("Invalid end date, expected YYYY-MM-DD")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, apperror.NewBadRequestError("End date must not precede start date")
	}
	// Push the end bound to the last instant of its day so same-day sales with
	// a time component still fall inside the inclusive window.
	end = end.Add(24*time.Hour - time.Nanosecond)
	return start, end, nil
}
