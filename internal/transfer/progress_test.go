package transfer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatorAccumulates(t *testing.T) {
	var observed []int64
	agg := NewAggregator(func(total int64) {
		observed = append(observed, total)
	})

	agg.Report(10)
	agg.Report(5)
	agg.Report(85)

	assert.Equal(t, []int64{10, 15, 100}, observed)
	assert.Equal(t, int64(100), agg.Total())
}

func TestAggregatorNilObserver(t *testing.T) {
	agg := NewAggregator(nil)

	agg.Report(42)
	agg.Report(8)

	assert.Equal(t, int64(50), agg.Total())
}

func TestAggregatorConcurrent(t *testing.T) {
	const workers = 16
	const reportsPerWorker = 100
	const delta = 7

	var mu sync.Mutex
	var observed []int64
	agg := NewAggregator(func(total int64) {
		mu.Lock()
		observed = append(observed, total)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < reportsPerWorker; j++ {
				agg.Report(delta)
			}
		}()
	}
	wg.Wait()

	want := int64(workers * reportsPerWorker * delta)
	assert.Equal(t, want, agg.Total())
	require.Len(t, observed, workers*reportsPerWorker)

	// Every observation is strictly larger than the previous one, and the
	// final observation is the exact total.
	for i := 1; i < len(observed); i++ {
		assert.Greater(t, observed[i], observed[i-1])
	}
	assert.Equal(t, want, observed[len(observed)-1])
}
