package main

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type publishedMsg struct {
	Topic   string
	Payload []byte
}

// fakePublisher zaznamenává zprávy místo odesílání do brokera.
type fakePublisher struct {
	mu          sync.Mutex
	msgs        []publishedMsg
	publishErr  error
	panicOnDisc bool
	disconnects atomic.Int32
}

func (p *fakePublisher) Publish(topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.publishErr != nil {
		return p.publishErr
	}
	p.msgs = append(p.msgs, publishedMsg{Topic: topic, Payload: payload})
	return nil
}

func (p *fakePublisher) Disconnect() {
	p.disconnects.Add(1)
	if p.panicOnDisc {
		panic("disconnect boom")
	}
}

func (p *fakePublisher) messages() []publishedMsg {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedMsg(nil), p.msgs...)
}

// fakeBroker vydává fakePublishery podle client ID; vybraná ID umí odmítnout.
type fakeBroker struct {
	mu     sync.Mutex
	pubs   map[string]*fakePublisher
	refuse map[string]bool
}

func newFakeBroker(refuse ...string) *fakeBroker {
	b := &fakeBroker{pubs: map[string]*fakePublisher{}, refuse: map[string]bool{}}
	for _, id := range refuse {
		b.refuse[id] = true
	}
	return b
}

func (b *fakeBroker) Dial(clientID string) (Publisher, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.refuse[clientID] {
		return nil, errors.New("connection refused")
	}
	p := &fakePublisher{}
	b.pubs[clientID] = p
	return p, nil
}

func (b *fakeBroker) publisher(clientID string) *fakePublisher {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pubs[clientID]
}

// fakeTerminal uchovává rámce a vydává klávesy z fronty.
type fakeTerminal struct {
	mu        sync.Mutex
	frames    []Frame
	keys      []Key
	drawErr   error
	drawPanic bool
	pollErr   error
	closed    atomic.Bool
}

func (t *fakeTerminal) Draw(f Frame) error {
	if t.drawPanic {
		panic("resize race")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frames = append(t.frames, f)
	return t.drawErr
}

func (t *fakeTerminal) PollKey() (Key, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pollErr != nil {
		return KeyNone, t.pollErr
	}
	if len(t.keys) == 0 {
		return KeyNone, nil
	}
	k := t.keys[0]
	t.keys = t.keys[1:]
	return k, nil
}

func (t *fakeTerminal) Close() {
	t.closed.Store(true)
}

func (t *fakeTerminal) push(keys ...Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.keys = append(t.keys, keys...)
}

func (t *fakeTerminal) frameCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.frames)
}
