package ui

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dukerupert/quests/internal/client"
	"github.com/dukerupert/quests/internal/model"
)

const (
	fieldName        = "quest[name]"
	fieldDescription = "quest[description]"
)

// Outcome is what a dialog submit ended in.
type Outcome int

const (
	// OutcomeIgnored means the dialog was closed or already submitting.
	OutcomeIgnored Outcome = iota
	OutcomeCreated
	OutcomeInvalid
	OutcomeFailed
	OutcomeCanceled
)

// DialogController runs the creation dialog.
type DialogController struct {
	app *App

	mu        sync.Mutex
	removeEsc func()
}

func NewDialogController(app *App) *DialogController {
	return &DialogController{app: app}
}

// Open shows the dialog, remembering scrollY so Close can restore it.
func (c *DialogController) Open(scrollY int) {
	opened := false
	c.app.Page.Update(func(st *State) {
		if st.ReadOnly || st.Dialog.Open {
			return
		}
		opened = true
		st.ScrollY = scrollY
		st.Dialog.savedScroll = scrollY
		st.Dialog.Open = true
		st.Dialog.Focus = fieldName
		st.BodyScrollLocked = true
	})
	if !opened {
		return
	}

	c.mu.Lock()
	if c.removeEsc == nil {
		c.removeEsc = c.app.Page.AddKeyListener(c.KeyDown)
	}
	c.mu.Unlock()
}

// SetField records typing into one of the dialog inputs.
func (c *DialogController) SetField(name, value string) {
	c.app.Page.Update(func(st *State) {
		switch name {
		case fieldName:
			st.Dialog.Name = value
		case fieldDescription:
			st.Dialog.Description = value
		}
	})
}

// KeyDown closes the dialog on Escape.
func (c *DialogController) KeyDown(key string) {
	if key == "Escape" {
		c.Close()
	}
}

// ClickBackdrop closes the dialog only when the click landed on the
// backdrop itself rather than the dialog content.
func (c *DialogController) ClickBackdrop(onBackdrop bool) {
	if onBackdrop {
		c.Close()
	}
}

// Close hides the dialog and resets it for the next use.
func (c *DialogController) Close() {
	c.app.Page.Update(closeDialog)
	c.releaseEsc()
}

// Detach releases everything Open acquired.
func (c *DialogController) Detach() {
	c.releaseEsc()
	c.app.Page.Update(func(st *State) {
		st.BodyScrollLocked = false
	})
}

func (c *DialogController) releaseEsc() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.removeEsc != nil {
		c.removeEsc()
		c.removeEsc = nil
	}
}

func closeDialog(st *State) {
	scroll := st.Dialog.savedScroll
	st.Dialog = Dialog{}
	st.ScrollY = scroll
	st.BodyScrollLocked = false
}

// Submit sends the form. While a submit is running further calls are
// ignored.
func (c *DialogController) Submit(ctx context.Context) Outcome {
	var (
		start bool
		form  client.QuestForm
		token string
	)
	c.app.Page.Update(func(st *State) {
		if !st.Dialog.Open || st.Dialog.Submitting {
			return
		}
		start = true
		st.Dialog.Submitting = true
		form = client.QuestForm{
			Name:        strings.TrimSpace(st.Dialog.Name),
			Description: st.Dialog.Description,
		}
		token = st.MetaToken
	})
	if !start {
		return OutcomeIgnored
	}

	if token == "" {
		c.app.Logger.Error("create aborted", "error", ErrMissingToken)
		c.showErrors(unexpected(), false)
		return OutcomeFailed
	}

	quest, err := c.app.API.Create(ctx, token, form)
	var verr *client.ValidationError
	switch {
	case err == nil:
		c.created(ctx, *quest)
		return OutcomeCreated
	case errors.As(err, &verr):
		c.showErrors(verr.Fields, true)
		return OutcomeInvalid
	case isCanceled(err):
		c.app.Page.Update(func(st *State) { st.Dialog.Submitting = false })
		return OutcomeCanceled
	default:
		c.app.Logger.Warn("create failed", "error", err)
		c.showErrors(unexpected(), false)
		return OutcomeFailed
	}
}

func unexpected() model.ValidationErrors {
	return model.ValidationErrors{"base": {msgUnexpected}}
}

func (c *DialogController) showErrors(errs model.ValidationErrors, markFields bool) {
	c.app.Page.Update(func(st *State) {
		st.Dialog.Submitting = false
		st.Dialog.Errors = errs
		st.Dialog.InvalidFields = nil
		if markFields {
			for field := range errs {
				if field == "base" {
					continue
				}
				if st.Dialog.InvalidFields == nil {
					st.Dialog.InvalidFields = map[string]bool{}
				}
				st.Dialog.InvalidFields["quest["+field+"]"] = true
			}
		}
		st.Dialog.ScrollToErrors = true
	})
}

// created inserts the quest and closes the dialog in one turn, so the
// placeholder and the new row are never both visible.
func (c *DialogController) created(ctx context.Context, q model.Quest) {
	c.app.Page.Update(func(st *State) {
		row := NewRow(q, st.MetaToken)
		row.Phase = PhaseEntering
		st.InsertHead(row)
		closeDialog(st)
	})
	c.releaseEsc()
	c.app.Notify(NoticeFlash, msgCreated, createdTTL)

	c.app.Sequencer.Play(context.WithoutCancel(ctx), Step{
		Name:     "enter",
		Duration: enterDuration,
	}, Step{
		Name: "settle",
		Apply: func() {
			c.app.Page.Update(func(st *State) {
				if row := st.Row(q.ID); row != nil && row.Phase == PhaseEntering {
					row.Phase = PhaseSettled
				}
			})
		},
	})
}
