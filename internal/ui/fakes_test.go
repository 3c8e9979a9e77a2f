package ui

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/quests/internal/client"
	"github.com/dukerupert/quests/internal/model"
)

type fakeAPI struct {
	mu sync.Mutex

	setStatus func(ctx context.Context, token string, id int64, status bool) error
	create    func(ctx context.Context, token string, form client.QuestForm) (*model.Quest, error)
	delete    func(ctx context.Context, token string, id int64) error

	statusCalls int
	createCalls int
	deleteCalls int
	lastToken   string
}

func (f *fakeAPI) SetStatus(ctx context.Context, token string, id int64, status bool) error {
	f.mu.Lock()
	f.statusCalls++
	f.lastToken = token
	f.mu.Unlock()
	if f.setStatus == nil {
		return nil
	}
	return f.setStatus(ctx, token, id, status)
}

func (f *fakeAPI) Create(ctx context.Context, token string, form client.QuestForm) (*model.Quest, error) {
	f.mu.Lock()
	f.createCalls++
	f.lastToken = token
	f.mu.Unlock()
	return f.create(ctx, token, form)
}

func (f *fakeAPI) Delete(ctx context.Context, token string, id int64) error {
	f.mu.Lock()
	f.deleteCalls++
	f.lastToken = token
	f.mu.Unlock()
	if f.delete == nil {
		return nil
	}
	return f.delete(ctx, token, id)
}

func (f *fakeAPI) deletes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteCalls
}

// fakeTimers records scheduled callbacks instead of running them.
type fakeTimers struct {
	mu    sync.Mutex
	after []time.Duration
	funcs []func()
}

func (t *fakeTimers) After(d time.Duration, f func()) func() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.after = append(t.after, d)
	t.funcs = append(t.funcs, f)
	return func() bool { return true }
}

func (t *fakeTimers) fireAll() {
	t.mu.Lock()
	funcs := t.funcs
	t.funcs = nil
	t.mu.Unlock()
	for _, f := range funcs {
		f()
	}
}

func always(answer bool) Confirmer {
	return ConfirmFunc(func(context.Context, string) bool { return answer })
}

func quest(id int64, name string) model.Quest {
	return model.Quest{
		ID:        id,
		Name:      name,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, int(id), 0, time.UTC),
	}
}

func newTestApp(t *testing.T, api API, quests ...model.Quest) (*App, *fakeTimers) {
	t.Helper()
	page := NewPage(NewState("", quests, "meta-token"))
	app := NewApp(page, api, always(true), slog.New(slog.NewTextHandler(io.Discard, nil)))
	timers := &fakeTimers{}
	app.After = timers.After
	app.Sequencer = ImmediateSequencer{}
	return app, timers
}

func render(t *testing.T, st State) string {
	t.Helper()
	html, err := Render(st)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(html)
}

func noticeMessages(st State) []string {
	var out []string
	for _, n := range st.Notices {
		out = append(out, n.Message)
	}
	return out
}
