package testutil

import "sync"

// ProgressRecorder captures cumulative progress values delivered to an
// observer so tests can assert delivery order and totals.
type ProgressRecorder struct {
	mu     sync.Mutex
	Values []int64
}

// Observe records a cumulative progress value. Pass this method as the
// observer callback.
func (r *ProgressRecorder) Observe(total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Values = append(r.Values, total)
}

// Last returns the most recent value observed, or 0 when nothing was
// delivered.
func (r *ProgressRecorder) Last() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Values) == 0 {
		return 0
	}
	return r.Values[len(r.Values)-1]
}

// Count returns the number of observations delivered.
func (r *ProgressRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Values)
}
