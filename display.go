package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Rozložení obrazovky (řádky a sloupce terminálu).
const (
	gridTop      = 2 // první řádek mřížky
	cellWidth    = 8 // šířka jedné buňky včetně mezery
	controlsHint = "Controls: Arrow Keys - Adjust Mean/Noise, Q - Quit"
)

// SpanStyle určuje, jak terminál obarví text.
type SpanStyle int

const (
	StyleText SpanStyle = iota
	StyleNormal
	StyleLow
	StyleHigh
	StyleHeader
)

// Span je kus textu na pozici (X = sloupec, Y = řádek).
type Span struct {
	X, Y  int
	Text  string
	Style SpanStyle
}

// Frame je kompletní obsah jedné obrazovky. Sestavuje se čistou funkcí, terminál ho jen nakreslí.
type Frame struct {
	Spans []Span
}

// StatusInfo jsou doplňkové údaje pro informační řádek.
type StatusInfo struct {
	Broker string
	Online int
	Total  int
	CPU    float64 // % jednoho jádra
	RSSMB  float64
}

// Classify zařadí hodnotu do kategorie podle vzdálenosti od mean.
// Hranice je amplituda sinusovky - bez šumu tedy všechno zůstane "normal".
func Classify(value, mean, amplitude float64) Category {
	switch {
	case value < mean-amplitude:
		return CategoryLow
	case value > mean+amplitude:
		return CategoryHigh
	default:
		return CategoryNormal
	}
}

func categoryStyle(c Category) SpanStyle {
	switch c {
	case CategoryLow:
		return StyleLow
	case CategoryHigh:
		return StyleHigh
	default:
		return StyleNormal
	}
}

// BuildFrame převede snímek stavu na rámec pro terminál.
func BuildFrame(snap Snapshot, amplitude float64, info StatusInfo) Frame {
	width := len(snap.Grid)
	spans := make([]Span, 0, width*width+4)

	spans = append(spans, Span{X: 0, Y: 0, Text: fmt.Sprintf("Sensor Simulator | %s", info.Broker), Style: StyleHeader})

	for i, row := range snap.Grid {
		for j, v := range row {
			spans = append(spans, Span{
				X:     j * cellWidth,
				Y:     i + gridTop,
				Text:  fmt.Sprintf("%6.1f", v),
				Style: categoryStyle(Classify(v, snap.Mean, amplitude)),
			})
		}
	}

	spans = append(spans,
		Span{X: 0, Y: width + 3, Text: fmt.Sprintf("Mean: %6.1f | Noise: %4.2f", snap.Mean, snap.Noise)},
		Span{X: 0, Y: width + 4, Text: controlsHint},
		Span{X: 0, Y: width + 5, Text: fmt.Sprintf("Online: %d/%d | Last tick: %d sent, %d failed | CPU: %.1f%% | RSS: %.1f MB",
			info.Online, info.Total, snap.Last.Published, snap.Last.Failed, info.CPU, info.RSSMB)},
	)
	return Frame{Spans: spans}
}

// DisplayLoop periodicky vykresluje sdílený stav.
type DisplayLoop struct {
	state     *SimState
	term      Terminal
	amplitude float64
	interval  time.Duration
	info      func() StatusInfo
	logger    *slog.Logger
}

// NewDisplayLoop - konstruktor. info může být nil, pak se informační řádek vyplní nulami.
func NewDisplayLoop(state *SimState, term Terminal, amplitude float64, interval time.Duration, info func() StatusInfo, logger *slog.Logger) *DisplayLoop {
	if info == nil {
		info = func() StatusInfo { return StatusInfo{} }
	}
	return &DisplayLoop{
		state:     state,
		term:      term,
		amplitude: amplitude,
		interval:  interval,
		info:      info,
		logger:    logger,
	}
}

// Run vykresluje, dokud není zrušen ctx. Chyba vykreslení smyčku nikdy neukončí.
func (d *DisplayLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := d.Render(); err != nil {
			d.logger.Debug("Vykreslení selhalo", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Render nakreslí jeden snímek. Panic z terminálu (např. závod při změně velikosti) vrací jako chybu.
func (d *DisplayLoop) Render() (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic při vykreslení: %v", rec)
		}
	}()

	frame := BuildFrame(d.state.Snapshot(), d.amplitude, d.info())
	return d.term.Draw(frame)
}
