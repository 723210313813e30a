package weather

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"floe/internal/external"
	"floe/internal/types"
)

// kphPerMph converts between the provider's km/h wind speeds and mph.
const kphPerMph = 1.609344

// Provider is the upstream weather collaborator contract. Satisfied by
// external.OpenMeteoClient in production and by fakes in tests.
type Provider interface {
	Geocode(ctx context.Context, city string) (*external.GeocodedCity, error)
	Forecast(ctx context.Context, lat, lon float64) (*external.ProviderSnapshot, error)
}

// Gateway fetches current conditions and the daily forecast for a city and
// normalizes them into the canonical Reading/ForecastDay shapes. Geocoding
// results are cached in-process; weather data never is.
type Gateway struct {
	provider Provider
	cache    *geocodeCache
	logger   *slog.Logger
}

// NewGateway creates a weather gateway. cacheSize bounds the geocode LRU
// cache; zero disables it.
func NewGateway(provider Provider, cacheSize int, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		provider: provider,
		cache:    newGeocodeCache(cacheSize),
		logger:   logger,
	}
}

// Fetch resolves a city and returns its normalized current reading plus the
// daily forecast ordered by date ascending. It fails with not_found_city when
// geocoding has no match and upstream_weather_unavailable on provider
// failure; both propagate to the caller untouched.
func (g *Gateway) Fetch(ctx context.Context, city string) (*types.Reading, []types.ForecastDay, error) {
	loc, err := g.geocode(ctx, city)
	if err != nil {
		return nil, nil, err
	}

	snapshot, err := g.provider.Forecast(ctx, loc.Lat, loc.Lon)
	if err != nil {
		return nil, nil, err
	}

	cur := snapshot.Current
	reading := &types.Reading{
		City:        loc.Name,
		TempC:       cur.TempC,
		TempF:       celsiusToFahrenheit(cur.TempC),
		FeelsLikeC:  cur.FeelsLikeC,
		FeelsLikeF:  celsiusToFahrenheit(cur.FeelsLikeC),
		Humidity:    cur.Humidity,
		WindKph:     cur.WindKph,
		WindMph:     cur.WindKph / kphPerMph,
		Condition:   BucketCondition(cur.WeatherCode),
		IsDay:       cur.IsDay,
		RetrievedAt: time.Now().UTC(),
	}

	forecast := make([]types.ForecastDay, 0, len(snapshot.Daily))
	for _, day := range snapshot.Daily {
		forecast = append(forecast, types.ForecastDay{
			Date:         day.Date,
			AvgTempC:     day.AvgTempC,
			Condition:    BucketCondition(day.WeatherCode),
			ChanceOfRain: day.ChanceOfRain,
		})
	}

	return reading, forecast, nil
}

// geocode resolves a city through the LRU cache. Cache keys are
// case-insensitive: "paris" and "Paris" are the same place.
func (g *Gateway) geocode(ctx context.Context, city string) (*external.GeocodedCity, error) {
	key := strings.ToLower(strings.TrimSpace(city))

	if loc, ok := g.cache.get(key); ok {
		return &loc, nil
	}

	loc, err := g.provider.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	g.cache.put(key, *loc)
	return loc, nil
}

func celsiusToFahrenheit(c float64) float64 {
	return c*9.0/5.0 + 32.0
}
