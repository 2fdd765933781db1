package main

import (
	"context"
	"log/slog"
	"time"
)

// Kroky ovládání.
const (
	meanStep  = 1.0
	noiseStep = 0.1
)

// InputLoop čte klávesy a upravuje parametry simulace.
type InputLoop struct {
	state    *SimState
	term     Terminal
	interval time.Duration
	stop     func()
	logger   *slog.Logger
}

// NewInputLoop - konstruktor. stop se zavolá po stisku quit klávesy.
func NewInputLoop(state *SimState, term Terminal, interval time.Duration, stop func(), logger *slog.Logger) *InputLoop {
	return &InputLoop{
		state:    state,
		term:     term,
		interval: interval,
		stop:     stop,
		logger:   logger,
	}
}

// Run polluje terminál, dokud není zrušen ctx. Chyby čtení ignoruje.
func (in *InputLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(in.interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}
		key, err := in.term.PollKey()
		if err != nil {
			in.logger.Debug("Čtení klávesy selhalo", "error", err)
		} else {
			in.Handle(key)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Handle aplikuje jednu klávesu na stav.
func (in *InputLoop) Handle(key Key) {
	switch key {
	case KeyQuit:
		in.logger.Info("Uživatel ukončil simulaci")
		in.stop()
	case KeyUp:
		in.logger.Debug("Mean změněn", "mean", in.state.AdjustMean(meanStep))
	case KeyDown:
		in.logger.Debug("Mean změněn", "mean", in.state.AdjustMean(-meanStep))
	case KeyRight:
		in.logger.Debug("Noise změněn", "noise", in.state.AdjustNoise(noiseStep))
	case KeyLeft:
		in.logger.Debug("Noise změněn", "noise", in.state.AdjustNoise(-noiseStep))
	}
}
