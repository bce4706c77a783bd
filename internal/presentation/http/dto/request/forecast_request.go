package request

// ForecastParamsRequest tunes a forecast run
type ForecastParamsRequest struct {
	Horizon     int     `json:"horizon" binding:"omitempty,min=1,max=60"`
	Alpha       float64 `json:"alpha" binding:"omitempty,gt=0,lte=1"`
	Seasonality int     `json:"seasonality" binding:"omitempty,min=2,max=52"`
}

// GenerateForecastRequest represents a forecast generation request
type GenerateForecastRequest struct {
	Method      string                 `json:"method" binding:"required"`
	Granularity string                 `json:"granularity" binding:"required"`
	StartDate   string                 `json:"start_date" binding:"required"`
	EndDate     string                 `json:"end_date" binding:"required"`
	Params      *ForecastParamsRequest `json:"params"`
}
