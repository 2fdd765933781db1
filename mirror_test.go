package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMirrorValues(t *testing.T) {
	registry := NewRegistry(4, 2, "sensor_", newFakeBroker("sensor_1").Dial, nil, discardLogger())
	snap := Snapshot{
		Params: Params{Mean: 48, Noise: 0.3},
		Grid:   [][]float64{{51.234, 0}, {47.5, 44.999}},
	}

	values := mirrorValues(snap, registry.Sensors())
	assert.Equal(t, map[string]float64{
		"sim:mean":      48,
		"sim:noise":     0.3,
		"sensor:last:0": 51.23,
		"sensor:last:2": 47.5,
		"sensor:last:3": 45,
	}, values)
}

func TestLastValueKey(t *testing.T) {
	assert.Equal(t, "sensor:last:17", lastValueKey(17))
}

type setCall struct {
	key   string
	value any
	ttl   time.Duration
}

// fakePipe zaznamenává SET příkazy. Ostatní metody Pipeliner nejsou implementované,
// jejich volání by v testu spadlo.
type fakePipe struct {
	redis.Pipeliner
	sets []setCall
}

func (p *fakePipe) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	p.sets = append(p.sets, setCall{key: key, value: value, ttl: expiration})
	return redis.NewStatusCmd(ctx)
}

// fakeRedis nahrazuje klienta Valkey, umí jen Pipelined.
type fakeRedis struct {
	redis.Cmdable
	mu      sync.Mutex
	batches [][]setCall
	err     error
}

func (r *fakeRedis) Pipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	pipe := &fakePipe{}
	if err := fn(pipe); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, pipe.sets)
	return nil, r.err
}

func (r *fakeRedis) batchCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func TestStateMirrorSync(t *testing.T) {
	registry := NewRegistry(4, 2, "sensor_", newFakeBroker("sensor_3").Dial, nil, discardLogger())
	state := NewSimState(2, 48, 0.5)
	state.Commit([]Cell{{Row: 0, Col: 0, Value: 50.126}, {Row: 0, Col: 1, Value: 51}, {Row: 1, Col: 0, Value: 49}})
	rdb := &fakeRedis{}

	require.NoError(t, NewStateMirror(rdb, state, registry.Sensors(), time.Second, discardLogger()).Sync(context.Background()))

	require.Len(t, rdb.batches, 1)
	got := map[string]any{}
	for _, c := range rdb.batches[0] {
		assert.Equal(t, mirrorTTL, c.ttl, c.key)
		got[c.key] = c.value
	}
	// 3 online senzory + mean + noise, offline sensor_3 chybí.
	assert.Equal(t, map[string]any{
		"sim:mean":      48.0,
		"sim:noise":     0.5,
		"sensor:last:0": 50.13,
		"sensor:last:1": 51.0,
		"sensor:last:2": 49.0,
	}, got)
}

func TestStateMirrorSyncReturnsError(t *testing.T) {
	registry := NewRegistry(1, 1, "sensor_", newFakeBroker().Dial, nil, discardLogger())
	rdb := &fakeRedis{err: errors.New("READONLY")}

	err := NewStateMirror(rdb, NewSimState(1, 50, 1), registry.Sensors(), time.Second, discardLogger()).Sync(context.Background())
	assert.Error(t, err)
}

func TestStateMirrorRunSurvivesErrorsAndStops(t *testing.T) {
	registry := NewRegistry(1, 1, "sensor_", newFakeBroker().Dial, nil, discardLogger())
	rdb := &fakeRedis{err: errors.New("connection reset")}
	mirror := NewStateMirror(rdb, NewSimState(1, 50, 1), registry.Sensors(), 5*time.Millisecond, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mirror.Run(ctx) }()

	// Chyba Valkey smyčku nezastaví, zapisuje dál.
	require.Eventually(t, func() bool { return rdb.batchCount() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("mirror did not stop")
	}
}
