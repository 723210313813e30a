package reports

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floe/internal/types"
)

// fakeStore is an in-memory ReportStore with exact-match semantics and
// injectable failures.
type fakeStore struct {
	mu        sync.Mutex
	rows      []types.Report
	appendErr error
	countErr  error
}

func (s *fakeStore) Append(_ context.Context, city, condition string, submittedAt time.Time) (*types.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return nil, s.appendErr
	}
	report := types.Report{
		ID:        uuid.NewString(),
		City:      city,
		Condition: condition,
		CreatedAt: submittedAt.UTC(),
	}
	s.rows = append(s.rows, report)
	return &report, nil
}

func (s *fakeStore) CountMatching(_ context.Context, city, condition string, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countErr != nil {
		return 0, s.countErr
	}
	count := 0
	for _, row := range s.rows {
		if row.City != city || row.Condition != condition {
			continue
		}
		if !since.IsZero() && row.CreatedAt.Before(since) {
			continue
		}
		count++
	}
	return count, nil
}

func (s *fakeStore) seed(city, condition string, at time.Time, n int) {
	for i := 0; i < n; i++ {
		_, _ = s.Append(context.Background(), city, condition, at)
	}
}

func TestEngine_Verify_NoStore(t *testing.T) {
	engine := NewEngine(nil, clockwork.NewFakeClock(), 0, nil)

	assert.False(t, engine.Enabled())
	result := engine.Verify(context.Background(), "Paris", "flood")
	assert.False(t, result.Verified)
	assert.Zero(t, result.VoteCount)
}

func TestEngine_Verify_ThresholdBoundary(t *testing.T) {
	store := &fakeStore{}
	clock := clockwork.NewFakeClock()
	engine := NewEngine(store, clock, 0, nil)

	// One short of the severe threshold.
	store.seed("Paris", "flood", clock.Now(), ThresholdSevere-1)
	result := engine.Verify(context.Background(), "Paris", "flood")
	assert.False(t, result.Verified)
	assert.Equal(t, ThresholdSevere-1, result.VoteCount)

	// One more report trips it.
	store.seed("Paris", "flood", clock.Now(), 1)
	result = engine.Verify(context.Background(), "Paris", "flood")
	assert.True(t, result.Verified)
	assert.Equal(t, ThresholdSevere, result.VoteCount)
}

func TestEngine_Verify_ExactMatchOnly(t *testing.T) {
	store := &fakeStore{}
	clock := clockwork.NewFakeClock()
	engine := NewEngine(store, clock, 0, nil)

	store.seed("Paris", "flood", clock.Now(), ThresholdSevere)

	// Different casing is a different condition.
	result := engine.Verify(context.Background(), "Paris", "Flood")
	assert.False(t, result.Verified)
	assert.Zero(t, result.VoteCount)

	// Different city does not count.
	result = engine.Verify(context.Background(), "London", "flood")
	assert.False(t, result.Verified)
	assert.Zero(t, result.VoteCount)
}

func TestEngine_Verify_WindowExcludesOldReports(t *testing.T) {
	store := &fakeStore{}
	clock := clockwork.NewFakeClock()
	engine := NewEngine(store, clock, 30*time.Minute, nil)

	// Two reports now, then the clock moves past the window.
	store.seed("Paris", "flood", clock.Now(), 2)
	clock.Advance(31 * time.Minute)

	result := engine.Verify(context.Background(), "Paris", "flood")
	assert.False(t, result.Verified)
	assert.Zero(t, result.VoteCount)

	// A fresh pair inside the window verifies again.
	store.seed("Paris", "flood", clock.Now(), 2)
	result = engine.Verify(context.Background(), "Paris", "flood")
	assert.True(t, result.Verified)
	assert.Equal(t, 2, result.VoteCount)
}

func TestEngine_Verify_ZeroWindowCountsAllHistory(t *testing.T) {
	store := &fakeStore{}
	clock := clockwork.NewFakeClock()
	engine := NewEngine(store, clock, 0, nil)

	store.seed("Paris", "flood", clock.Now(), 2)
	clock.Advance(24 * time.Hour)

	result := engine.Verify(context.Background(), "Paris", "flood")
	assert.True(t, result.Verified)
	assert.Equal(t, 2, result.VoteCount)
}

func TestEngine_Verify_StoreFailureDegrades(t *testing.T) {
	store := &fakeStore{countErr: errors.New("connection refused")}
	engine := NewEngine(store, clockwork.NewFakeClock(), 0, nil)

	result := engine.Verify(context.Background(), "Paris", "flood")
	assert.False(t, result.Verified)
	assert.Zero(t, result.VoteCount)
}

func TestEngine_ScanHazards(t *testing.T) {
	store := &fakeStore{}
	clock := clockwork.NewFakeClock()
	engine := NewEngine(store, clock, 0, nil)

	// Verified flood, unverified snow.
	store.seed("Paris", "flood", clock.Now(), 2)
	store.seed("Paris", "snowing", clock.Now(), 1)

	alerts := engine.ScanHazards(context.Background(), "Paris")
	require.Len(t, alerts, 1)
	assert.Equal(t, "FLOOD", alerts[0].Hazard)
	assert.Equal(t, 2, alerts[0].VoteCount)
	assert.Contains(t, alerts[0].Text, "FLOOD alert for Paris")
	assert.Contains(t, alerts[0].Text, "confirmed by 2 community reports")
}

func TestEngine_ScanHazards_WatchListOrder(t *testing.T) {
	store := &fakeStore{}
	clock := clockwork.NewFakeClock()
	engine := NewEngine(store, clock, 0, nil)

	store.seed("Paris", "snowing", clock.Now(), 2)
	store.seed("Paris", "flood", clock.Now(), 2)

	alerts := engine.ScanHazards(context.Background(), "Paris")
	require.Len(t, alerts, 2)
	assert.Equal(t, "FLOOD", alerts[0].Hazard)
	assert.Equal(t, "SNOWING", alerts[1].Hazard)
}

func TestEngine_ScanHazards_NoStore(t *testing.T) {
	engine := NewEngine(nil, clockwork.NewFakeClock(), 0, nil)
	assert.Nil(t, engine.ScanHazards(context.Background(), "Paris"))
}

func TestEngine_Submit_FirstReport(t *testing.T) {
	store := &fakeStore{}
	clock := clockwork.NewFakeClock()
	engine := NewEngine(store, clock, 0, nil)

	outcome, err := engine.Submit(context.Background(), "Paris", "flood")
	require.NoError(t, err)
	require.NotNil(t, outcome.Report)
	assert.Equal(t, "Paris", outcome.Report.City)
	assert.False(t, outcome.Result.Verified)
	assert.Equal(t, 1, outcome.Result.VoteCount)
	assert.Equal(t, ThresholdSevere, outcome.Threshold)
	assert.Contains(t, outcome.Message, "first to report")
}

func TestEngine_Submit_ReachesThreshold(t *testing.T) {
	store := &fakeStore{}
	clock := clockwork.NewFakeClock()
	engine := NewEngine(store, clock, 0, nil)

	store.seed("Paris", "flood", clock.Now(), ThresholdSevere-1)

	outcome, err := engine.Submit(context.Background(), "Paris", "flood")
	require.NoError(t, err)
	assert.True(t, outcome.Result.Verified)
	assert.Equal(t, ThresholdSevere, outcome.Result.VoteCount)
	assert.Contains(t, outcome.Message, "community-verified")
}

func TestEngine_Submit_ProgressMessage(t *testing.T) {
	store := &fakeStore{}
	clock := clockwork.NewFakeClock()
	engine := NewEngine(store, clock, 0, nil)

	// Default threshold is 5; the second vote narrates progress.
	store.seed("Paris", "sunny", clock.Now(), 1)

	outcome, err := engine.Submit(context.Background(), "Paris", "sunny")
	require.NoError(t, err)
	assert.False(t, outcome.Result.Verified)
	assert.Equal(t, "Noted sunny in Paris. 2 of 5 reports received.", outcome.Message)
}

func TestEngine_Submit_NoStore(t *testing.T) {
	engine := NewEngine(nil, clockwork.NewFakeClock(), 0, nil)

	outcome, err := engine.Submit(context.Background(), "Paris", "flood")
	require.NoError(t, err)
	assert.Nil(t, outcome.Report)
	assert.False(t, outcome.Result.Verified)
	assert.Equal(t, "Thanks! Noted that it is flood.", outcome.Message)
}

func TestEngine_Submit_AppendFailureSurfaces(t *testing.T) {
	store := &fakeStore{appendErr: types.NewAppError(types.ErrCodeInternalDB, "write failed", nil)}
	engine := NewEngine(store, clockwork.NewFakeClock(), 0, nil)

	outcome, err := engine.Submit(context.Background(), "Paris", "flood")
	require.Error(t, err)
	assert.Nil(t, outcome)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}
