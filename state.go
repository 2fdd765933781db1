package main

import (
	"math"
	"sync"
)

// noiseScale: krok šumu je 0.1, ale 0.1 není v binární plovoucí čárce přesně.
// Po každé změně hodnotu zarovnáme na 1e-9, aby 0.3 - 0.1 - 0.1 - 0.1 dalo přesně 0 a ne 5e-17.
// Dělíme celým číslem 1e9, které je reprezentovatelné přesně.
const noiseScale = 1e9

// SimState je jediný zdroj pravdy pro mean, noise a mřížku posledních hodnot.
// Čtou ho a píšou tři souběžné smyčky (publish, display, input).
type SimState struct {
	// mu (RWMutex) chrání všechna pole níže.
	// Kritické sekce jsou krátké (kopie malé mřížky), takže jeden zámek na celý stav stačí
	// a čtenář nikdy neuvidí napůl přepsaný řádek.
	mu sync.RWMutex

	mean  float64
	noise float64
	width int
	grid  [][]float64
	last  TickStats
}

// NewSimState vytvoří stav s mřížkou width x width vyplněnou nulami.
func NewSimState(width int, mean, noise float64) *SimState {
	grid := make([][]float64, width)
	for i := range grid {
		grid[i] = make([]float64, width)
	}
	return &SimState{
		mean:  mean,
		noise: math.Max(0, noise),
		width: width,
		grid:  grid,
	}
}

// Params vrátí aktuální (mean, noise).
func (s *SimState) Params() Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Params{Mean: s.mean, Noise: s.noise}
}

// AdjustMean posune střední hodnotu. Mean záměrně neomezujeme.
func (s *SimState) AdjustMean(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mean += delta
	return s.mean
}

// AdjustNoise posune šum a ořízne ho na >= 0 přímo v místě zápisu.
func (s *SimState) AdjustNoise(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := math.Round((s.noise+delta)*noiseScale) / noiseScale
	s.noise = math.Max(0, n)
	return s.noise
}

// Cell je hodnota pro jednu buňku mřížky.
type Cell struct {
	Row, Col int
	Value    float64
}

// Commit zapíše buňky jednoho tiku najednou pod jedním zámkem.
// Buňky mimo mřížku ignorujeme - rozměry jsou pevné po celou dobu běhu.
func (s *SimState) Commit(cells []Cell) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cells {
		if c.Row < 0 || c.Row >= s.width || c.Col < 0 || c.Col >= s.width {
			continue
		}
		s.grid[c.Row][c.Col] = c.Value
	}
}

// RecordTick uloží výsledek publikace posledního tiku.
func (s *SimState) RecordTick(stats TickStats) {
	s.mu.Lock()
	s.last = stats
	s.mu.Unlock()
}

// Snapshot vrátí parametry a hlubokou kopii mřížky z jedné kritické sekce.
func (s *SimState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grid := make([][]float64, len(s.grid))
	for i, row := range s.grid {
		grid[i] = append([]float64(nil), row...)
	}
	return Snapshot{
		Params: Params{Mean: s.mean, Noise: s.noise},
		Grid:   grid,
		Last:   s.last,
	}
}

// Width vrací rozměr mřížky.
func (s *SimState) Width() int {
	return s.width
}
