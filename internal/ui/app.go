// Package ui is the quest page's interactive core: the state a page shows,
// the controllers that change it in response to user actions and server
// replies, and the render step that turns state into markup.
package ui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dukerupert/quests/internal/client"
	"github.com/dukerupert/quests/internal/model"
)

var (
	ErrMissingContainer = errors.New("quest container not found")
	ErrMissingControl   = errors.New("quest remove control not found")
	ErrMissingToken     = errors.New("authenticity token not found")
)

// API is the subset of the quest server the controllers call.
// *client.Client implements it.
type API interface {
	SetStatus(ctx context.Context, token string, id int64, status bool) error
	Create(ctx context.Context, token string, form client.QuestForm) (*model.Quest, error)
	Delete(ctx context.Context, token string, id int64) error
}

// Confirmer asks the user a yes/no question and blocks for the answer.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// AfterFunc schedules f after d. The returned func cancels it.
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

func timeAfter(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// App carries what the controllers share. Build it with NewApp and
// override fields in tests.
type App struct {
	Page      *Page
	API       API
	Confirm   Confirmer
	Sequencer Sequencer
	After     AfterFunc
	Logger    *slog.Logger

	notices noticeCounter
}

func NewApp(page *Page, api API, confirm Confirmer, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		Page:      page,
		API:       api,
		Confirm:   confirm,
		Sequencer: TimerSequencer{},
		After:     timeAfter,
		Logger:    logger.With("component", "ui"),
	}
}

// metaToken reads the page-level authenticity token.
func (a *App) metaToken() string {
	var tok string
	a.Page.Read(func(st *State) { tok = st.MetaToken })
	return tok
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
