package main

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// ReadingModel počítá okamžitou hodnotu senzoru:
//
//	mean + A·sin(2π·t/P + φ) + N(0, noise)
//
// Model nemá sdílený stav kromě zdroje náhodných čísel. Ten patří publikační smyčce,
// proto ho nezamykáme.
type ReadingModel struct {
	Amplitude float64
	Period    float64 // v sekundách

	src rand.Source
}

// NewReadingModel vytvoří model. Pokud src == nil, použije se globální zdroj.
func NewReadingModel(amplitude float64, period time.Duration, src rand.Source) *ReadingModel {
	return &ReadingModel{
		Amplitude: amplitude,
		Period:    period.Seconds(),
		src:       src,
	}
}

// Value vrací hodnotu senzoru s fázovým posunem phase v čase elapsed (sekundy od startu).
// Každé volání táhne jeden nezávislý vzorek šumu.
func (m *ReadingModel) Value(elapsed, phase, mean, noise float64) float64 {
	if elapsed < 0 {
		elapsed = 0
	}
	sine := m.Amplitude * math.Sin(2*math.Pi*elapsed/m.Period+phase)
	return mean + sine + m.noiseTerm(noise)
}

func (m *ReadingModel) noiseTerm(sigma float64) float64 {
	// distuv.Normal se Sigma 0 by vrátil -0 nebo 0, ale vzorek bychom zbytečně spotřebovali.
	if sigma <= 0 {
		return 0
	}
	return distuv.Normal{Mu: 0, Sigma: sigma, Src: m.src}.Rand()
}

// RoundReading zaokrouhlí hodnotu na 2 desetinná místa pro payload.
func RoundReading(v float64) float64 {
	return math.Round(v*100) / 100
}
