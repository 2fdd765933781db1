package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// PublishLoop každý tik spočítá hodnotu pro každý senzor, zapíše ji do mřížky
// a pošle ji do MQTT.
type PublishLoop struct {
	state    *SimState
	registry *Registry
	model    *ReadingModel
	topic    string
	interval time.Duration
	start    time.Time
	logger   *slog.Logger
}

// NewPublishLoop - konstruktor. start je okamžik, od kterého se počítá fáze sinusovky.
func NewPublishLoop(state *SimState, registry *Registry, model *ReadingModel, topic string, interval time.Duration, start time.Time, logger *slog.Logger) *PublishLoop {
	return &PublishLoop{
		state:    state,
		registry: registry,
		model:    model,
		topic:    topic,
		interval: interval,
		start:    start,
		logger:   logger,
	}
}

// Run tiká, dokud není zrušen ctx. První tik proběhne hned, další podle intervalu.
// Rozpracovaný tik se vždy dokončí, pak smyčka skončí a už nic nezapisuje.
func (p *PublishLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}
		p.Tick(time.Now())

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Tick provede jeden publikační krok pro okamžik now.
// Všechny senzory sdílí stejný timestamp i stejný snímek parametrů.
func (p *PublishLoop) Tick(now time.Time) TickStats {
	params := p.state.Params()
	elapsed := now.Sub(p.start).Seconds()
	ts := now.Unix()

	sensors := p.registry.Sensors()
	cells := make([]Cell, 0, len(sensors))
	readings := make([]Reading, 0, len(sensors))
	targets := make([]*Sensor, 0, len(sensors))

	for _, s := range sensors {
		// Senzor bez spojení nikdy neposlal data - jeho buňka zůstává na nule.
		if !s.Online() {
			continue
		}
		v := p.model.Value(elapsed, s.Phase, params.Mean, params.Noise)
		cells = append(cells, Cell{Row: s.Row, Col: s.Col, Value: v})
		readings = append(readings, Reading{Timestamp: ts, Value: RoundReading(v), SensorID: s.ID})
		targets = append(targets, s)
	}

	// Celý tik zapíšeme jedním zámkem, displej tak nikdy neuvidí půlku staré mřížky.
	p.state.Commit(cells)

	var stats TickStats
	for i, s := range targets {
		if err := p.publishOne(s, readings[i]); err != nil {
			// Best-effort: chybu jen zalogujeme a jedeme dál s dalším senzorem.
			p.logger.Debug("Publikace selhala", "sensor_id", s.ID, "error", err)
			stats.Failed++
			continue
		}
		stats.Published++
	}
	p.state.RecordTick(stats)
	return stats
}

func (p *PublishLoop) publishOne(s *Sensor, r Reading) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic při publikaci: %v", rec)
		}
	}()

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("serializace měření: %w", err)
	}
	return s.pub.Publish(p.topic, payload)
}
