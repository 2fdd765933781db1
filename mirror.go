package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Klíče ve Valkey. "sensor:last:{id}" je stejný formát, jaký používá persister dashboardu,
// takže Home API simulované senzory rovnou uvidí.
const (
	mirrorMeanKey  = "sim:mean"
	mirrorNoiseKey = "sim:noise"
	mirrorTTL      = 24 * time.Hour
	mirrorTimeout  = 2 * time.Second
)

func lastValueKey(sensorID int) string {
	return fmt.Sprintf("sensor:last:%d", sensorID)
}

// mirrorValues sestaví klíče a hodnoty pro jeden snímek. Senzory bez spojení vynecháváme,
// jejich buňka je jen výchozí nula, ne měření.
func mirrorValues(snap Snapshot, sensors []*Sensor) map[string]float64 {
	values := map[string]float64{
		mirrorMeanKey:  snap.Mean,
		mirrorNoiseKey: snap.Noise,
	}
	for _, s := range sensors {
		if !s.Online() || s.Row >= len(snap.Grid) || s.Col >= len(snap.Grid[s.Row]) {
			continue
		}
		values[lastValueKey(s.ID)] = RoundReading(snap.Grid[s.Row][s.Col])
	}
	return values
}

// StateMirror periodicky přepisuje aktuální stav do Valkey ("Hot Storage").
// Hodnoty se jen přepisují a expirují, historii nevedeme.
type StateMirror struct {
	rdb      redis.Cmdable
	state    *SimState
	sensors  []*Sensor
	interval time.Duration
	logger   *slog.Logger
}

// NewStateMirror - konstruktor.
func NewStateMirror(rdb redis.Cmdable, state *SimState, sensors []*Sensor, interval time.Duration, logger *slog.Logger) *StateMirror {
	return &StateMirror{
		rdb:      rdb,
		state:    state,
		sensors:  sensors,
		interval: interval,
		logger:   logger,
	}
}

// Run zrcadlí stav, dokud není zrušen ctx. Chyba Valkey není kritická - jen ji zalogujeme.
func (m *StateMirror) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := m.Sync(ctx); err != nil {
				m.logger.Warn("Chyba update Valkey", "error", err)
			}
		}
	}
}

// Sync zapíše jeden snímek jednou pipeline.
func (m *StateMirror) Sync(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, mirrorTimeout)
	defer cancel()

	values := mirrorValues(m.state.Snapshot(), m.sensors)
	_, err := m.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, v := range values {
			pipe.Set(ctx, key, v, mirrorTTL)
		}
		return nil
	})
	return err
}
