package ui

import (
	"sync"
)

// Page owns one State. Every mutation runs through Update, one at a time,
// the way a browser runs one event handler per turn.
type Page struct {
	mu    sync.Mutex
	state State

	subMu   sync.Mutex
	subs    []chan struct{}
	keys    map[int]func(key string)
	nextKey int
}

func NewPage(st State) *Page {
	return &Page{
		state: st,
		keys:  make(map[int]func(string)),
	}
}

// Update applies fn to the state under the page lock, then wakes
// subscribers. fn must not block or call back into the Page.
func (p *Page) Update(fn func(st *State)) {
	p.mu.Lock()
	fn(&p.state)
	p.mu.Unlock()
	p.notify()
}

// Read runs fn under the page lock without signalling a change.
func (p *Page) Read(fn func(st *State)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.state)
}

// Snapshot returns a deep copy of the current state.
func (p *Page) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.clone()
}

// Changes returns a channel that receives after each Update. Signals
// coalesce: a slow reader sees at least one signal after the last change.
func (p *Page) Changes() <-chan struct{} {
	ch := make(chan struct{}, 1)
	p.subMu.Lock()
	p.subs = append(p.subs, ch)
	p.subMu.Unlock()
	return ch
}

func (p *Page) notify() {
	p.subMu.Lock()
	defer p.subMu.Unlock()
	for _, ch := range p.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// AddKeyListener registers a document-level key handler. The returned
// func removes exactly that handler and is safe to call more than once.
func (p *Page) AddKeyListener(fn func(key string)) (remove func()) {
	p.subMu.Lock()
	id := p.nextKey
	p.nextKey++
	p.keys[id] = fn
	p.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.subMu.Lock()
			delete(p.keys, id)
			p.subMu.Unlock()
		})
	}
}

// KeyListeners returns how many key handlers are registered.
func (p *Page) KeyListeners() int {
	p.subMu.Lock()
	defer p.subMu.Unlock()
	return len(p.keys)
}

// KeyDown dispatches a key press to every registered handler.
func (p *Page) KeyDown(key string) {
	p.subMu.Lock()
	handlers := make([]func(string), 0, len(p.keys))
	for _, fn := range p.keys {
		handlers = append(handlers, fn)
	}
	p.subMu.Unlock()

	for _, fn := range handlers {
		fn(key)
	}
}
