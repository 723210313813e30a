package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"floe/internal/config"
	"floe/internal/types"
)

// OpenMeteoConfig holds the configuration for creating an OpenMeteoClient.
type OpenMeteoConfig struct {
	GeocodeBaseURL  string
	ForecastBaseURL string
	APIKey          config.SecretString // optional; commercial tier only
	ForecastDays    int
	Logger          *slog.Logger
}

// OpenMeteoClient talks to the Open-Meteo geocoding and forecast APIs through
// BaseClient, so all requests inherit the platform's resilience behavior
// (circuit breaker, bounded retry, error mapping). Raw provider payloads stay
// inside this package; callers receive normalized structs.
type OpenMeteoClient struct {
	base            *BaseClient
	geocodeBaseURL  string
	forecastBaseURL string
	apiKey          config.SecretString
	forecastDays    int
	logger          *slog.Logger
}

// GeocodedCity is the resolved location for a city query.
type GeocodedCity struct {
	Name string
	Lat  float64
	Lon  float64
}

// CurrentObservation is the provider's current-conditions block with the
// provider's raw WMO weather code still attached. Condition bucketing happens
// in the weather gateway, not here.
type CurrentObservation struct {
	TempC       float64
	FeelsLikeC  float64
	Humidity    int
	WindKph     float64
	WeatherCode int
	IsDay       bool
}

// DailyObservation is one day of the provider's daily forecast.
type DailyObservation struct {
	Date         string // YYYY-MM-DD in the location's timezone
	AvgTempC     float64
	WeatherCode  int
	ChanceOfRain int
}

// ProviderSnapshot bundles the current conditions and daily forecast returned
// by a single forecast call.
type ProviderSnapshot struct {
	Current CurrentObservation
	Daily   []DailyObservation
}

// NewOpenMeteoClient creates a new OpenMeteoClient. The httpClient timeout
// bounds each individual request; the caller's context bounds the whole call.
func NewOpenMeteoClient(httpClient *http.Client, cfg OpenMeteoConfig) *OpenMeteoClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	days := cfg.ForecastDays
	if days <= 0 {
		days = 5
	}

	base := NewBaseClient(
		httpClient,
		"open-meteo",
		DefaultRetryPolicy(),
		"floe/1.0",
	)

	return &OpenMeteoClient{
		base:            base,
		geocodeBaseURL:  strings.TrimSuffix(cfg.GeocodeBaseURL, "/"),
		forecastBaseURL: strings.TrimSuffix(cfg.ForecastBaseURL, "/"),
		apiKey:          cfg.APIKey,
		forecastDays:    days,
		logger:          logger,
	}
}

// Geocode resolves a city name to coordinates using the first (best) match.
// It returns a not_found_city AppError when the provider has no match -- a
// user-correctable condition, not an upstream failure.
func (c *OpenMeteoClient) Geocode(ctx context.Context, city string) (*GeocodedCity, error) {
	params := url.Values{
		"name":  {city},
		"count": {"1"},
	}
	c.appendKey(params)

	reqURL := c.geocodeBaseURL + "/v1/search?" + params.Encode()

	var payload geocodeResponse
	if err := c.getJSON(ctx, reqURL, &payload); err != nil {
		return nil, err
	}

	if len(payload.Results) == 0 {
		return nil, types.NewAppError(
			types.ErrCodeNotFoundCity,
			fmt.Sprintf("no location found for city %q", city),
			nil,
		)
	}

	r := payload.Results[0]
	return &GeocodedCity{
		Name: r.Name,
		Lat:  r.Latitude,
		Lon:  r.Longitude,
	}, nil
}

// Forecast retrieves current conditions plus the daily forecast for the given
// coordinates. Temperatures are Celsius and wind speeds km/h (provider
// defaults); dates are local to the location via timezone=auto.
func (c *OpenMeteoClient) Forecast(ctx context.Context, lat, lon float64) (*ProviderSnapshot, error) {
	params := url.Values{
		"latitude":      {strconv.FormatFloat(lat, 'f', 4, 64)},
		"longitude":     {strconv.FormatFloat(lon, 'f', 4, 64)},
		"current":       {"temperature_2m,apparent_temperature,relative_humidity_2m,wind_speed_10m,weather_code,is_day"},
		"daily":         {"temperature_2m_mean,weather_code,precipitation_probability_max"},
		"timezone":      {"auto"},
		"forecast_days": {strconv.Itoa(c.forecastDays)},
	}
	c.appendKey(params)

	reqURL := c.forecastBaseURL + "/v1/forecast?" + params.Encode()

	var payload forecastResponse
	if err := c.getJSON(ctx, reqURL, &payload); err != nil {
		return nil, err
	}

	snapshot := &ProviderSnapshot{
		Current: CurrentObservation{
			TempC:       payload.Current.Temperature,
			FeelsLikeC:  payload.Current.ApparentTemperature,
			Humidity:    payload.Current.RelativeHumidity,
			WindKph:     payload.Current.WindSpeed,
			WeatherCode: payload.Current.WeatherCode,
			IsDay:       payload.Current.IsDay == 1,
		},
	}

	// The daily block is parallel arrays keyed by time; zip them together.
	// Entries are already ordered by date ascending.
	for i, date := range payload.Daily.Time {
		day := DailyObservation{Date: date}
		if i < len(payload.Daily.TemperatureMean) {
			day.AvgTempC = payload.Daily.TemperatureMean[i]
		}
		if i < len(payload.Daily.WeatherCode) {
			day.WeatherCode = payload.Daily.WeatherCode[i]
		}
		if i < len(payload.Daily.PrecipProbabilityMax) {
			day.ChanceOfRain = payload.Daily.PrecipProbabilityMax[i]
		}
		snapshot.Daily = append(snapshot.Daily, day)
	}

	return snapshot, nil
}

// appendKey adds the commercial API key parameter when one is configured.
func (c *OpenMeteoClient) appendKey(params url.Values) {
	if c.apiKey.IsSet() {
		params.Set("apikey", c.apiKey.Unmask())
	}
}

// getJSON performs a GET through the BaseClient and decodes the JSON body.
// Non-2xx responses and decode failures map to upstream_weather_unavailable;
// the raw body is attached to the wrapped error for server-side logging only.
func (c *OpenMeteoClient) getJSON(ctx context.Context, reqURL string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to create weather provider request",
			err,
		)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return types.NewAppError(
			types.ErrCodeUpstreamWeather,
			"weather provider is unavailable",
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return types.NewAppError(
			types.ErrCodeUpstreamWeather,
			"weather provider returned an error",
			fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return types.NewAppError(
			types.ErrCodeUpstreamWeather,
			"failed to decode weather provider response",
			err,
		)
	}

	return nil
}

// Open-Meteo API response types.

type geocodeResponse struct {
	Results []geocodeResult `json:"results"`
}

type geocodeResult struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type forecastResponse struct {
	Current currentBlock `json:"current"`
	Daily   dailyBlock   `json:"daily"`
}

type currentBlock struct {
	Time                string  `json:"time"`
	Temperature         float64 `json:"temperature_2m"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	RelativeHumidity    int     `json:"relative_humidity_2m"`
	WindSpeed           float64 `json:"wind_speed_10m"`
	WeatherCode         int     `json:"weather_code"`
	IsDay               int     `json:"is_day"`
}

type dailyBlock struct {
	Time                 []string  `json:"time"`
	TemperatureMean      []float64 `json:"temperature_2m_mean"`
	WeatherCode          []int     `json:"weather_code"`
	PrecipProbabilityMax []int     `json:"precipitation_probability_max"`
}
