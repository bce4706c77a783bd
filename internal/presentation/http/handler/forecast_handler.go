package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/josemp10/ventas-api/internal/application/service"
	"github.com/josemp10/ventas-api/internal/presentation/http/dto/request"
	"github.com/josemp10/ventas-api/internal/presentation/http/dto/response"
	"github.com/josemp10/ventas-api/pkg/period"
)

// ForecastHandler handles forecasting and sales-analysis HTTP requests
type ForecastHandler struct {
	forecastService *service.ForecastService
}

// NewForecastHandler creates a new forecast handler
func NewForecastHandler(forecastService *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{forecastService: forecastService}
}

// GetHistory returns aggregated sales history bucketed by period
func (h *ForecastHandler) GetHistory(c *gin.Context) {
	query := &service.HistoryQuery{
		StartDate:   c.Query("start_date"),
		EndDate:     c.Query("end_date"),
		Granularity: period.Granularity(c.DefaultQuery("granularity", "monthly")),
	}

	if productIDStr := c.Query("product_id"); productIDStr != "" {
		productID, err := uuid.Parse(productIDStr)
		if err != nil {
			response.BadRequest(c, "Invalid product ID")
			return
		}
		query.ProductID = &productID
	}
	if categoryIDStr := c.Query("category_id"); categoryIDStr != "" {
		categoryID, err := uuid.Parse(categoryIDStr)
		if err != nil {
			response.BadRequest(c, "Invalid category ID")
			return
		}
		query.CategoryID = &categoryID
	}

	history, err := h.forecastService.GetSalesHistory(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sales history retrieved successfully", history)
}

// Generate runs a forecast over the selected historical window
func (h *ForecastHandler) Generate(c *gin.Context) {
	var req request.GenerateForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	forecastReq := &service.ForecastRequest{
		Method:      req.Method,
		Granularity: period.Granularity(req.Granularity),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if req.Params != nil {
		forecastReq.Params = &service.ForecastParams{
			Horizon:     req.Params.Horizon,
			Alpha:       req.Params.Alpha,
			Seasonality: req.Params.Seasonality,
		}
	}

	points, err := h.forecastService.GenerateForecast(c.Request.Context(), forecastReq)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Forecast generated successfully", gin.H{
		"method":   req.Method,
		"forecast": points,
	})
}

// GetTopDates returns the best-selling periods in a window, ranked by revenue
func (h *ForecastHandler) GetTopDates(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	query := &service.TopDatesQuery{
		StartDate:   c.Query("start_date"),
		EndDate:     c.Query("end_date"),
		Granularity: period.Granularity(c.DefaultQuery("granularity", "daily")),
		Limit:       limit,
	}

	rankings, err := h.forecastService.GetTopSellingDates(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Top selling periods retrieved successfully", rankings)
}

// GetTopProducts returns the best-selling products within a single period key
func (h *ForecastHandler) GetTopProducts(c *gin.Context) {
	periodKey := c.Param("period")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	rankings, err := h.forecastService.GetTopProductsByPeriod(c.Request.Context(), periodKey, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Top products retrieved successfully", gin.H{
		"period":   periodKey,
		"products": rankings,
	})
}
