package transfer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnginesRunAllParts(t *testing.T) {
	engines := map[string]Engine{
		"pool":   NewPoolEngine(4),
		"serial": NewSerialEngine(),
	}

	for name, eng := range engines {
		t.Run(name, func(t *testing.T) {
			const parts = 23

			var mu sync.Mutex
			seen := make(map[int]bool)

			err := eng.Run(context.Background(), parts, func(_ context.Context, part int) error {
				mu.Lock()
				seen[part] = true
				mu.Unlock()
				return nil
			})

			require.NoError(t, err)
			assert.Len(t, seen, parts)
			for part := 0; part < parts; part++ {
				assert.True(t, seen[part], "part %d not executed", part)
			}
		})
	}
}

func TestEnginesPropagateError(t *testing.T) {
	engines := map[string]Engine{
		"pool":   NewPoolEngine(2),
		"serial": NewSerialEngine(),
	}
	partErr := errors.New("part failed")

	for name, eng := range engines {
		t.Run(name, func(t *testing.T) {
			err := eng.Run(context.Background(), 10, func(_ context.Context, part int) error {
				if part == 3 {
					return partErr
				}
				return nil
			})

			assert.ErrorIs(t, err, partErr)
		})
	}
}

func TestSerialEngineRunsInOrder(t *testing.T) {
	eng := NewSerialEngine()

	var order []int
	err := eng.Run(context.Background(), 5, func(_ context.Context, part int) error {
		order = append(order, part)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestSerialEngineStopsOnCancel(t *testing.T) {
	eng := NewSerialEngine()
	ctx, cancel := context.WithCancel(context.Background())

	var executed int
	err := eng.Run(ctx, 10, func(_ context.Context, part int) error {
		executed++
		if part == 2 {
			cancel()
		}
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, executed)
}

func TestPoolEngineRespectsConcurrencyLimit(t *testing.T) {
	const limit = 3
	eng := NewPoolEngine(limit)

	var mu sync.Mutex
	var active, peak int

	err := eng.Run(context.Background(), 20, func(_ context.Context, _ int) error {
		mu.Lock()
		active++
		if active > peak {
			peak = active
		}
		mu.Unlock()

		mu.Lock()
		active--
		mu.Unlock()
		return nil
	})

	require.NoError(t, err)
	assert.LessOrEqual(t, peak, limit)
}

func TestEngineFor(t *testing.T) {
	plan := Plan{Multipart: true, PartSize: 1024, Concurrency: 4}

	_, isPool := EngineFor(plan, true).(*poolEngine)
	assert.True(t, isPool)

	_, isSerial := EngineFor(plan, false).(serialEngine)
	assert.True(t, isSerial)
}
