package retrieve

import (
	"context"
	"time"

	"github.com/devmind-dev/memcore/internal/extract"
	"github.com/devmind-dev/memcore/internal/store"
)

// qualityRefreshInterval bounds how often the background quality-score
// recompute runs: frequent enough to stay fresh, rare enough that it
// never competes meaningfully with the query path for I/O.
const qualityRefreshInterval = 24 * time.Hour

// qualityRefreshBatch caps how many recent contexts one recompute pass
// touches, so a database with a long history doesn't turn a "lazy"
// refresh into a multi-minute background job.
const qualityRefreshBatch = 200

// maybeRefreshQuality spawns a background quality-score recompute when
// more than qualityRefreshInterval has passed since the last one. It
// never blocks the caller: the check itself is synchronous but cheap
// (one state lookup), the recompute runs on the tracker.
func (e *Engine) maybeRefreshQuality(ctx context.Context) {
	if e.tasks == nil {
		return
	}
	last, ok, err := e.store.GetState(ctx, store.StateKeyLastQualityRefresh)
	if err == nil && ok {
		if t, perr := time.Parse(time.RFC3339, last); perr == nil && time.Since(t) < qualityRefreshInterval {
			return
		}
	}

	e.tasks.Go("quality-refresh", func(bgCtx context.Context) error {
		contexts, err := e.store.AllContexts(bgCtx, qualityRefreshBatch)
		if err != nil {
			return err
		}
		for _, c := range contexts {
			score := extract.Extract(c.Content, c.FilePath, c.LineStart, c.LineEnd).QualityScore
			_ = e.store.UpdateContext(bgCtx, c.ID, store.ContextUpdate{QualityScore: &score})
		}
		return e.store.SetState(bgCtx, store.StateKeyLastQualityRefresh, time.Now().UTC().Format(time.RFC3339))
	})
}
