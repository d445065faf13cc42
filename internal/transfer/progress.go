package transfer

import (
	"sync"

	"github.com/elaunira/r2index-go/r2types"
)

// Aggregator folds per-chunk byte deltas into a monotone cumulative total
// and forwards that total to a caller-supplied observer after each report.
//
// One Aggregator is owned by exactly one transfer call for its lifetime.
// Report is safe to call from concurrent part workers: the final total after
// any interleaving of reports equals the sum of the deltas, and the sequence
// of values delivered to the observer is non-decreasing. No ordering is
// guaranteed between which report corresponds to which chunk.
type Aggregator struct {
	mu          sync.Mutex
	observer    r2types.ProgressFunc
	transferred int64
}

// NewAggregator creates an Aggregator delivering cumulative totals to
// observer. A nil observer is allowed; the total is still accumulated.
func NewAggregator(observer r2types.ProgressFunc) *Aggregator {
	return &Aggregator{observer: observer}
}

// Report adds delta to the running total and notifies the observer with the
// new cumulative value. The add and the notification happen under one lock
// so concurrent reporters cannot deliver totals out of order.
func (a *Aggregator) Report(delta int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.transferred += delta
	if a.observer != nil {
		a.observer(a.transferred)
	}
}

// Total returns the cumulative bytes reported so far.
func (a *Aggregator) Total() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.transferred
}
