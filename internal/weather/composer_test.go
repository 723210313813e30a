package weather

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floe/internal/types"
)

// fakeVerifier scripts hazard scan results.
type fakeVerifier struct {
	enabled bool
	alerts  []types.Alert
	scanned []string
}

func (v *fakeVerifier) Enabled() bool { return v.enabled }

func (v *fakeVerifier) ScanHazards(_ context.Context, city string) []types.Alert {
	v.scanned = append(v.scanned, city)
	return v.alerts
}

// fakeNarrator records the context string it was given.
type fakeNarrator struct {
	text       string
	model      string
	lastCtx    string
	lastAsked  string
	generation int
}

func (n *fakeNarrator) Generate(_ context.Context, weatherContext, question string) (string, string) {
	n.generation++
	n.lastCtx = weatherContext
	n.lastAsked = question
	return n.text, n.model
}

func TestComposer_Compose_PenguinMode(t *testing.T) {
	gw := NewGateway(parisProvider(), 0, nil)
	narrator := &fakeNarrator{text: "Wear a raincoat. Waddle fast.", model: "model-a"}
	composer := NewComposer(gw, &fakeVerifier{}, narrator, nil)

	view, err := composer.Compose(context.Background(), "Paris", "What should I wear?", ModePenguin)
	require.NoError(t, err)

	assert.Equal(t, "Wear a raincoat. Waddle fast.", view.Narrative)
	assert.Equal(t, "model-a", view.Model)
	assert.Equal(t, string(types.ConditionRainy), view.DisplayCondition)
	assert.Equal(t, "What should I wear?", narrator.lastAsked)
	assert.Contains(t, narrator.lastCtx, "Current Weather in Paris")
	assert.Contains(t, narrator.lastCtx, "Humidity: 65%")
	assert.Contains(t, narrator.lastCtx, "Rain chance today or soon: 10%")
}

func TestComposer_Compose_StandardModeSkipsNarrator(t *testing.T) {
	gw := NewGateway(parisProvider(), 0, nil)
	narrator := &fakeNarrator{text: "should not appear"}
	composer := NewComposer(gw, &fakeVerifier{}, narrator, nil)

	view, err := composer.Compose(context.Background(), "Paris", "", ModeStandard)
	require.NoError(t, err)

	assert.Equal(t, "Standard Data View Active", view.Narrative)
	assert.Empty(t, view.Model)
	assert.Zero(t, narrator.generation)
}

func TestComposer_Compose_HazardOverridesCondition(t *testing.T) {
	gw := NewGateway(parisProvider(), 0, nil)
	verifier := &fakeVerifier{
		enabled: true,
		alerts: []types.Alert{
			{Hazard: "FLOOD", VoteCount: 2, Text: "FLOOD alert for Paris: confirmed by 2 community reports."},
		},
	}
	narrator := &fakeNarrator{text: "Stay inside.", model: "model-a"}
	composer := NewComposer(gw, verifier, narrator, nil)

	view, err := composer.Compose(context.Background(), "Paris", "Is it safe?", ModePenguin)
	require.NoError(t, err)

	assert.Equal(t, "FLOOD (User Reported)", view.DisplayCondition)
	require.NotNil(t, view.Alert())
	assert.Equal(t, "FLOOD", view.Alert().Hazard)
	// The narrator sees the alert so the commentary can reference it.
	assert.Contains(t, narrator.lastCtx, "ACTIVE ALERT: FLOOD alert for Paris")
	assert.Contains(t, narrator.lastCtx, "Condition: FLOOD (User Reported)")
	// The scan uses the canonical geocoded city name.
	assert.Equal(t, []string{"Paris"}, verifier.scanned)
}

func TestComposer_Compose_VerifierDisabledSkipsScan(t *testing.T) {
	gw := NewGateway(parisProvider(), 0, nil)
	verifier := &fakeVerifier{enabled: false}
	composer := NewComposer(gw, verifier, &fakeNarrator{}, nil)

	view, err := composer.Compose(context.Background(), "Paris", "", ModePenguin)
	require.NoError(t, err)

	assert.Empty(t, verifier.scanned)
	assert.Nil(t, view.Alert())
	assert.Equal(t, string(types.ConditionRainy), view.DisplayCondition)
}

func TestComposer_Compose_GatewayErrorPropagates(t *testing.T) {
	provider := &fakeProvider{
		geocodeErr: types.NewAppError(types.ErrCodeNotFoundCity, "city not found", nil),
	}
	gw := NewGateway(provider, 0, nil)
	composer := NewComposer(gw, &fakeVerifier{}, &fakeNarrator{}, nil)

	view, err := composer.Compose(context.Background(), "Atlantis", "", ModePenguin)
	require.Error(t, err)
	assert.Nil(t, view)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeNotFoundCity, appErr.Code)
}

func TestWeatherView_Alert_FirstInOrder(t *testing.T) {
	view := &WeatherView{Alerts: []types.Alert{
		{Hazard: "FLOOD"},
		{Hazard: "SNOWING"},
	}}
	require.NotNil(t, view.Alert())
	assert.Equal(t, "FLOOD", view.Alert().Hazard)

	empty := &WeatherView{}
	assert.Nil(t, empty.Alert())
}
