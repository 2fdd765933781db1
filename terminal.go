package main

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
)

// ErrTerminalClosed vrací terminál po zavolání Close.
var ErrTerminalClosed = errors.New("terminál je uzavřený")

// Terminal je vše, co simulátor od obrazovky potřebuje.
type Terminal interface {
	// Draw smaže obrazovku, nakreslí rámec a zobrazí ho.
	Draw(Frame) error
	// PollKey neblokuje. Když nic nečeká, vrací KeyNone.
	PollKey() (Key, error)
	// Close vrátí terminál do původního stavu. Lze volat opakovaně.
	Close()
}

var (
	styleDefault = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	styleHeader  = styleDefault.Foreground(tcell.ColorAqua).Bold(true)

	spanStyles = map[SpanStyle]tcell.Style{
		StyleText:   styleDefault,
		StyleLow:    styleDefault.Foreground(tcell.ColorWhite),
		StyleNormal: styleDefault.Foreground(tcell.ColorGreen),
		StyleHigh:   styleDefault.Foreground(tcell.ColorRed),
		StyleHeader: styleHeader,
	}
)

// TcellTerminal implementuje Terminal nad tcell.Screen.
// tcell.Screen je interně zamčená, Draw a PollKey proto smí běžet v různých goroutinách.
type TcellTerminal struct {
	screen    tcell.Screen
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewTerminal převezme skutečný terminál procesu.
// Chyba tady je jediná, která ukončí start simulátoru.
func NewTerminal() (*TcellTerminal, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("nelze vytvořit obrazovku: %w", err)
	}
	return newTcellTerminal(s)
}

func newTcellTerminal(s tcell.Screen) (*TcellTerminal, error) {
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("nelze inicializovat obrazovku: %w", err)
	}
	s.SetStyle(styleDefault)
	s.HideCursor()
	s.Clear()
	return &TcellTerminal{screen: s}, nil
}

func (t *TcellTerminal) Draw(frame Frame) error {
	if t.closed.Load() {
		return ErrTerminalClosed
	}
	t.screen.Clear()
	for _, span := range frame.Spans {
		style, ok := spanStyles[span.Style]
		if !ok {
			style = styleDefault
		}
		x := span.X
		for _, r := range span.Text {
			t.screen.SetContent(x, span.Y, r, nil, style)
			x++
		}
	}
	t.screen.Show()
	return nil
}

func (t *TcellTerminal) PollKey() (Key, error) {
	if t.closed.Load() {
		return KeyNone, ErrTerminalClosed
	}
	if !t.screen.HasPendingEvent() {
		return KeyNone, nil
	}

	switch ev := t.screen.PollEvent().(type) {
	case nil:
		// PollEvent vrací nil jen po Fini.
		return KeyNone, ErrTerminalClosed
	case *tcell.EventResize:
		t.screen.Sync()
		return KeyNone, nil
	case *tcell.EventKey:
		return mapKey(ev), nil
	default:
		return KeyNone, nil
	}
}

// mapKey převede tcell událost na naši klávesu.
// Ctrl-C v raw režimu nepošle SIGINT, proto ho bereme jako quit.
func mapKey(ev *tcell.EventKey) Key {
	switch ev.Key() {
	case tcell.KeyUp:
		return KeyUp
	case tcell.KeyDown:
		return KeyDown
	case tcell.KeyLeft:
		return KeyLeft
	case tcell.KeyRight:
		return KeyRight
	case tcell.KeyCtrlC, tcell.KeyEscape:
		return KeyQuit
	case tcell.KeyRune:
		if r := ev.Rune(); r == 'q' || r == 'Q' {
			return KeyQuit
		}
	}
	return KeyNone
}

func (t *TcellTerminal) Close() {
	t.closeOnce.Do(func() {
		t.closed.Store(true)
		t.screen.Fini()
	})
}
