package main

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Runner je smyčka, která běží, dokud není zrušen kontext.
type Runner func(ctx context.Context) error

// Simulator spouští smyčky a řídí jejich společné ukončení.
type Simulator struct {
	registry *Registry
	logger   *slog.Logger
	runners  []Runner

	// done je "running flag": zavřený kanál = simulace skončila. Jednou zavřený už zůstane zavřený.
	done     chan struct{}
	stopOnce sync.Once
}

// NewSimulator - konstruktor. Smyčky se přidávají přes Add, protože InputLoop potřebuje Stop.
func NewSimulator(registry *Registry, logger *slog.Logger) *Simulator {
	return &Simulator{
		registry: registry,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Add přidá smyčky. Volat jen před Run.
func (s *Simulator) Add(runners ...Runner) {
	s.runners = append(s.runners, runners...)
}

// Stop požádá o ukončení. Je idempotentní a bezpečný z libovolné goroutiny.
func (s *Simulator) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Ukončuji simulaci...")
		close(s.done)
	})
}

// Running vrací false od chvíle, kdy někdo zavolal Stop.
func (s *Simulator) Running() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Run spustí všechny smyčky a blokuje, dokud všechny neskončí.
// Skončí po Stop nebo po zrušení parent kontextu (SIGINT/SIGTERM).
// Teprve po doběhnutí všech smyček odpojí senzory, takže nikdo nepublikuje do zavřeného spojení.
func (s *Simulator) Run(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	go func() {
		select {
		case <-s.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range s.runners {
		g.Go(func() error {
			return r(gctx)
		})
	}
	err := g.Wait()

	// Cesta přes signál: flag nastavíme i tady, aby Running() odpovídal skutečnosti.
	s.Stop()
	s.registry.Shutdown()
	return err
}
