package reports

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"floe/internal/types"
)

// ReportStore is the persistence contract the engine depends on. Satisfied by
// db.ReportRepo in production and by fakes in tests.
type ReportStore interface {
	// Append inserts one immutable report. A store failure must surface as an
	// error, never as a silent zero count.
	Append(ctx context.Context, city, condition string, submittedAt time.Time) (*types.Report, error)

	// CountMatching returns the number of reports matching city and condition
	// exactly (case-sensitive). A zero since counts all history.
	CountMatching(ctx context.Context, city, condition string, since time.Time) (int, error)
}

// hazardWatchList is the fixed set of condition keys eligible for city-wide
// alert broadcast, in scan order. Keys are the lowercased stored form;
// display labels are uppercased in alert text.
var hazardWatchList = []string{"flood", "snowing"}

// Engine decides whether a reported condition for a city has reached community
// consensus. It is a pure function of stored state at call time: no caching,
// no debouncing. Concurrent submissions are resolved by the store's
// read-after-write consistency; being off by one vote during a race only
// shifts when the threshold trips and is acceptable.
type Engine struct {
	store  ReportStore // nil when no report store is configured
	clock  clockwork.Clock
	window time.Duration // zero disables windowing (counts all history)
	logger *slog.Logger
}

// NewEngine creates a verification engine. store may be nil, in which case
// verification is unsupported and every query reports unverified with zero
// votes. window is the rolling time window applied when counting matching
// reports; pass zero for cumulative counting.
func NewEngine(store ReportStore, clock clockwork.Clock, window time.Duration, logger *slog.Logger) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  store,
		clock:  clock,
		window: window,
		logger: logger,
	}
}

// Enabled reports whether a report store is configured.
func (e *Engine) Enabled() bool {
	return e.store != nil
}

// windowStart returns the lower bound for counting, or the zero time when
// windowing is disabled.
func (e *Engine) windowStart() time.Time {
	if e.window <= 0 {
		return time.Time{}
	}
	return e.clock.Now().Add(-e.window)
}

// Verify checks whether the given (city, condition) pair has reached its vote
// threshold. With no store configured it returns (false, 0). A store read
// failure also degrades to (false, 0) with a warning log: weather display
// must never depend on the social feature being reachable.
func (e *Engine) Verify(ctx context.Context, city, condition string) types.VerificationResult {
	if e.store == nil {
		return types.VerificationResult{}
	}

	threshold := Classify(condition)

	count, err := e.store.CountMatching(ctx, city, condition, e.windowStart())
	if err != nil {
		e.logger.WarnContext(ctx, "report store unreachable; verification degraded",
			"city", city,
			"condition", condition,
			"error", err,
		)
		return types.VerificationResult{}
	}

	return types.VerificationResult{
		Verified:  count >= threshold,
		VoteCount: count,
	}
}

// ScanHazards runs Verify for every watched hazard condition and returns an
// alert for each one that is community-verified, in watch-list order. Callers
// that can only display a single alert use the first entry. The checks fan
// out concurrently; the per-request context bounds them all.
func (e *Engine) ScanHazards(ctx context.Context, city string) []types.Alert {
	if e.store == nil {
		return nil
	}

	results := make([]types.VerificationResult, len(hazardWatchList))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, hazard := range hazardWatchList {
		i, hazard := i, hazard
		g.Go(func() error {
			res := e.Verify(gctx, city, hazard)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	// Verify never returns an error; the group exists for context plumbing
	// and bounded fan-out.
	_ = g.Wait()

	var alerts []types.Alert
	for i, hazard := range hazardWatchList {
		if !results[i].Verified {
			continue
		}
		label := strings.ToUpper(hazard)
		alerts = append(alerts, types.Alert{
			Hazard:    label,
			VoteCount: results[i].VoteCount,
			Text: fmt.Sprintf("%s alert for %s: confirmed by %d community reports.",
				label, city, results[i].VoteCount),
		})
	}

	return alerts
}

// SubmitOutcome describes what happened to a submitted report: the stored
// record (nil when the store is unconfigured), the recomputed verification
// state, the threshold in play, and a narration of vote progress for the
// client.
type SubmitOutcome struct {
	Report    *types.Report
	Result    types.VerificationResult
	Threshold int
	Message   string
}

// Submit appends a report and recomputes verification for its (city,
// condition) pair. Unlike reads, a failed append surfaces as an error: the
// reporter must know their vote was not recorded.
//
// With no store configured the report is acknowledged but not counted, which
// keeps the endpoint usable in minimal deployments.
func (e *Engine) Submit(ctx context.Context, city, condition string) (*SubmitOutcome, error) {
	threshold := Classify(condition)

	if e.store == nil {
		return &SubmitOutcome{
			Threshold: threshold,
			Message:   fmt.Sprintf("Thanks! Noted that it is %s.", condition),
		}, nil
	}

	report, err := e.store.Append(ctx, city, condition, e.clock.Now())
	if err != nil {
		return nil, err
	}

	result := e.Verify(ctx, city, condition)

	return &SubmitOutcome{
		Report:    report,
		Result:    result,
		Threshold: threshold,
		Message:   progressMessage(city, condition, result, threshold),
	}, nil
}

// progressMessage narrates where a (city, condition) pair stands relative to
// its threshold after a submission.
func progressMessage(city, condition string, result types.VerificationResult, threshold int) string {
	switch {
	case result.Verified:
		return fmt.Sprintf("Confirmed: %s in %s is community-verified with %d reports.",
			condition, city, result.VoteCount)
	case result.VoteCount <= 1:
		return fmt.Sprintf("Thanks! You're the first to report %s in %s. %d more reports will confirm it.",
			condition, city, threshold-result.VoteCount)
	default:
		return fmt.Sprintf("Noted %s in %s. %d of %d reports received.",
			condition, city, result.VoteCount, threshold)
	}
}
