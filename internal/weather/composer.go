package weather

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"floe/internal/types"
)

// Display modes for the weather endpoint. ModePenguin engages the commentary
// generator; ModeStandard returns a static placeholder narrative and skips
// the LLM call entirely.
const (
	ModePenguin  = "penguin"
	ModeStandard = "standard"
)

// standardNarrative is the placeholder text for standard mode.
const standardNarrative = "Standard Data View Active"

// Verifier is the hazard-scanning contract the composer depends on.
// Satisfied by reports.Engine.
type Verifier interface {
	Enabled() bool
	ScanHazards(ctx context.Context, city string) []types.Alert
}

// Narrator is the commentary contract the composer depends on.
// Satisfied by commentary.Generator.
type Narrator interface {
	Generate(ctx context.Context, weatherContext, question string) (text, model string)
}

// WeatherView is the fully composed weather response: normalized metrics,
// forecast, narrative text, and any verified hazard alerts.
type WeatherView struct {
	Reading          types.Reading
	Forecast         []types.ForecastDay
	DisplayCondition string // reading condition, or hazard override
	Narrative        string
	Model            string // model that produced the narrative; "" for static text
	Alerts           []types.Alert
}

// Alert returns the primary alert (first in watch-list order), or nil.
func (v *WeatherView) Alert() *types.Alert {
	if len(v.Alerts) == 0 {
		return nil
	}
	return &v.Alerts[0]
}

// Composer orchestrates the gateway, the verification engine, and the
// commentary generator into a single weather response.
type Composer struct {
	gateway  *Gateway
	verifier Verifier
	narrator Narrator
	logger   *slog.Logger
}

// NewComposer creates a weather composer.
func NewComposer(gateway *Gateway, verifier Verifier, narrator Narrator, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		gateway:  gateway,
		verifier: verifier,
		narrator: narrator,
		logger:   logger,
	}
}

// Compose fetches weather for a city, merges in verified hazard alerts, and
// produces narrative text.
//
// Gateway failures (unknown city, provider outage) propagate to the caller:
// they break the primary data path. Alert and narrative failures never do;
// both features are optional enrichment and degrade silently.
func (c *Composer) Compose(ctx context.Context, city, question, mode string) (*WeatherView, error) {
	reading, forecast, err := c.gateway.Fetch(ctx, city)
	if err != nil {
		return nil, err
	}

	view := &WeatherView{
		Reading:          *reading,
		Forecast:         forecast,
		DisplayCondition: string(reading.Condition),
	}

	if c.verifier != nil && c.verifier.Enabled() {
		// ScanHazards degrades internally on store failure; it cannot error.
		view.Alerts = c.verifier.ScanHazards(ctx, reading.City)
		if alert := view.Alert(); alert != nil {
			view.DisplayCondition = fmt.Sprintf("%s (User Reported)", alert.Hazard)
		}
	}

	if mode == ModeStandard {
		view.Narrative = standardNarrative
		return view, nil
	}

	view.Narrative, view.Model = c.narrator.Generate(ctx, c.contextString(view), question)
	return view, nil
}

// contextString flattens the composed view into the prompt context consumed
// by the commentary generator.
func (c *Composer) contextString(view *WeatherView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current Weather in %s: Temp: %.1fC (feels like %.1fF). Condition: %s. Wind: %.1f kph (%.1f mph). Humidity: %d%%.",
		view.Reading.City,
		view.Reading.TempC,
		view.Reading.FeelsLikeF,
		view.DisplayCondition,
		view.Reading.WindKph,
		view.Reading.WindMph,
		view.Reading.Humidity,
	)

	for _, day := range view.Forecast {
		if day.ChanceOfRain > 0 {
			fmt.Fprintf(&b, " Rain chance today or soon: %d%%.", day.ChanceOfRain)
			break
		}
	}

	if alert := view.Alert(); alert != nil {
		fmt.Fprintf(&b, " ACTIVE ALERT: %s", alert.Text)
	}

	return b.String()
}
