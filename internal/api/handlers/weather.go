// Package handlers contains the HTTP handler implementations for the floe API.
//
// Handlers depend on narrow, locally-defined service interfaces rather than
// concrete domain types, per the handler injection pattern: tests substitute
// fakes without touching the domain packages.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"floe/internal/core"
	"floe/internal/observability"
	"floe/internal/types"
	"floe/internal/weather"
)

// defaultQuestion is asked on the user's behalf when the query omits one.
const defaultQuestion = "What should I wear?"

// WeatherComposer is the service contract for the weather handler.
type WeatherComposer interface {
	Compose(ctx context.Context, city, question, mode string) (*weather.WeatherView, error)
}

// WeatherHandler maps HTTP requests to the weather composer.
type WeatherHandler struct {
	composer WeatherComposer
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewWeatherHandler creates a new WeatherHandler. metrics may be nil.
func NewWeatherHandler(composer WeatherComposer, metrics *observability.Metrics, logger *slog.Logger) *WeatherHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WeatherHandler{
		composer: composer,
		metrics:  metrics,
		logger:   logger,
	}
}

// RegisterRoutes mounts the weather endpoint onto the mux.
func (h *WeatherHandler) RegisterRoutes(r chi.Router) {
	r.Get("/weather", h.HandleGetWeather)
}

// weatherResponse is the response payload for GET /v1/weather.
type weatherResponse struct {
	Status      string   `json:"status"`
	City        string   `json:"city"`
	TempC       float64  `json:"temp_c"`
	TempF       float64  `json:"temp_f"`
	FeelsLikeC  float64  `json:"feels_like_c"`
	WindKph     float64  `json:"wind_kph"`
	WindMph     float64  `json:"wind_mph"`
	Humidity    int      `json:"humidity"`
	Condition   string   `json:"condition"`
	IsDay       bool     `json:"is_day"`
	PenguinText string   `json:"penguin_text"`
	Model       string   `json:"model,omitempty"`
	Forecast    []string `json:"forecast"`

	// Alert is the primary hazard alert text ("" when none); Alerts carries
	// every simultaneously verified hazard for clients able to show them all.
	Alert  string        `json:"alert"`
	Alerts []types.Alert `json:"alerts,omitempty"`
}

// HandleGetWeather handles GET /v1/weather?city=&question=&mode=.
//  1. Validate query params.
//  2. Call the composer (gateway + hazard scan + narrative).
//  3. Return the assembled payload.
//
// Unknown cities surface as 404 not_found_city; provider outages as 502.
// Narrative failures never reach here: the composer degrades them to
// fallback text.
func (h *WeatherHandler) HandleGetWeather(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	city := q.Get("city")
	if city == "" {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"city query parameter is required",
			nil,
		))
		return
	}

	question := q.Get("question")
	if question == "" {
		question = defaultQuestion
	}

	mode := q.Get("mode")
	if mode == "" {
		mode = weather.ModePenguin
	}
	if mode != weather.ModePenguin && mode != weather.ModeStandard {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationInvalidMode,
			fmt.Sprintf("mode must be %q or %q", weather.ModePenguin, weather.ModeStandard),
			nil,
		))
		return
	}

	view, err := h.composer.Compose(r.Context(), city, question, mode)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	if h.metrics != nil && len(view.Alerts) > 0 {
		h.metrics.AlertsServed.Inc()
	}

	resp := weatherResponse{
		Status:      "success",
		City:        view.Reading.City,
		TempC:       view.Reading.TempC,
		TempF:       view.Reading.TempF,
		FeelsLikeC:  view.Reading.FeelsLikeC,
		WindKph:     view.Reading.WindKph,
		WindMph:     view.Reading.WindMph,
		Humidity:    view.Reading.Humidity,
		Condition:   view.DisplayCondition,
		IsDay:       view.Reading.IsDay,
		PenguinText: view.Narrative,
		Model:       view.Model,
		Forecast:    formatForecast(view.Forecast),
		Alerts:      view.Alerts,
	}
	if alert := view.Alert(); alert != nil {
		resp.Alert = alert.Text
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: resp})
}

// formatForecast renders forecast days as display strings, ordered by date.
func formatForecast(days []types.ForecastDay) []string {
	out := make([]string, 0, len(days))
	for _, day := range days {
		out = append(out, fmt.Sprintf("%s: %.1fC, %s (%d%% rain)",
			day.Date, day.AvgTempC, day.Condition, day.ChanceOfRain))
	}
	return out
}
