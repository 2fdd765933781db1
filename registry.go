package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"
)

// Rozsah fázového posunu senzorů (radiány).
const (
	phaseMin = -2.0
	phaseMax = 2.0
)

// dialConcurrency omezuje počet souběžně navazovaných spojení při startu.
const dialConcurrency = 16

// Sensor je jeden simulovaný senzor. Po vytvoření se nemění, kromě stavu spojení uvnitř Publisheru.
type Sensor struct {
	ID       int
	Row, Col int
	Phase    float64
	ClientID string

	pub Publisher // nil = spojení se při startu nepodařilo navázat
}

// Online říká, jestli má senzor živé spojení z inicializace.
func (s *Sensor) Online() bool {
	return s.pub != nil
}

// Registry vlastní pevnou sadu senzorů a jejich spojení (arena indexovaná podle ID).
type Registry struct {
	sensors []*Sensor
	width   int
	logger  *slog.Logger

	shutdownOnce sync.Once
}

// NewRegistry vytvoří count senzorů na mřížce o šířce width a každému otevře vlastní spojení.
// Chyba jednoho spojení se jen zaloguje - ostatní senzory se inicializují dál.
func NewRegistry(count, width int, clientPrefix string, dial Dialer, phaseSrc rand.Source, logger *slog.Logger) *Registry {
	r := &Registry{
		sensors: make([]*Sensor, count),
		width:   width,
		logger:  logger,
	}

	// Fáze losujeme sekvenčně - rand.Source není thread-safe.
	phases := distuv.Uniform{Min: phaseMin, Max: phaseMax, Src: phaseSrc}
	for id := range count {
		r.sensors[id] = &Sensor{
			ID:       id,
			Row:      id / width,
			Col:      id % width,
			Phase:    phases.Rand(),
			ClientID: fmt.Sprintf("%s%d", clientPrefix, id),
		}
	}

	// Spojení navazujeme paralelně, jinak by nedostupný broker znamenal count * timeout.
	var g errgroup.Group
	g.SetLimit(dialConcurrency)
	for _, s := range r.sensors {
		g.Go(func() error {
			pub, err := dial(s.ClientID)
			if err != nil {
				logger.Error("Chyba připojení senzoru k MQTT", "sensor_id", s.ID, "error", err)
				return nil
			}
			s.pub = pub
			return nil
		})
	}
	// Chyby už jsou zalogované u konkrétního senzoru a start se kvůli nim nezastaví,
	// goroutiny proto vrací nil a Wait slouží jen jako WaitGroup s limitem.
	_ = g.Wait()

	logger.Info("Senzory inicializovány", "total", count, "online", r.Online())
	return r
}

// Sensors vrací všechny senzory seřazené podle ID.
func (r *Registry) Sensors() []*Sensor {
	return r.sensors
}

// Online vrací počet senzorů se spojením.
func (r *Registry) Online() int {
	n := 0
	for _, s := range r.sensors {
		if s.Online() {
			n++
		}
	}
	return n
}

// Shutdown odpojí všechny senzory. Proběhne právě jednou, i když ho volá víc goroutin najednou.
// Selhání (i panic) jednoho odpojení neovlivní ostatní.
func (r *Registry) Shutdown() {
	r.shutdownOnce.Do(func() {
		var wg sync.WaitGroup
		for _, s := range r.sensors {
			if !s.Online() {
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() {
					if rec := recover(); rec != nil {
						r.logger.Warn("Odpojení senzoru selhalo", "sensor_id", s.ID, "panic", rec)
					}
				}()
				s.pub.Disconnect()
			}()
		}
		wg.Wait()
		r.logger.Info("Všechny senzory odpojeny")
	})
}
