package ui

import (
	"context"
	"fmt"
	"sync"
)

// DeleteState is where a row's remove control is in its lifecycle.
type DeleteState int

const (
	DeleteIdle DeleteState = iota
	DeleteConfirming
	DeleteDeleting
	DeleteRemoved
)

func (s DeleteState) String() string {
	switch s {
	case DeleteConfirming:
		return "confirming"
	case DeleteDeleting:
		return "deleting"
	case DeleteRemoved:
		return "removed"
	default:
		return "idle"
	}
}

// DeleteController is attached to one row's remove form.
type DeleteController struct {
	app *App
	id  int64

	mu       sync.Mutex
	state    DeleteState
	cancel   context.CancelFunc
	detached bool
}

func NewDeleteController(app *App, id int64) *DeleteController {
	return &DeleteController{app: app, id: id}
}

func (c *DeleteController) State() DeleteState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit handles the remove form's submit. It is a no-op unless the
// controller is idle.
func (c *DeleteController) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state != DeleteIdle || c.detached {
		c.mu.Unlock()
		return nil
	}
	c.state = DeleteConfirming
	c.mu.Unlock()

	if !c.app.Confirm.Confirm(ctx, msgConfirmRemove) {
		c.setState(DeleteIdle)
		return nil
	}
	if c.isDetached() {
		c.setState(DeleteIdle)
		return context.Canceled
	}

	token, err := c.begin()
	if err != nil {
		c.setState(DeleteIdle)
		c.app.Logger.Error("remove aborted", "quest_id", c.id, "error", err)
		c.app.Notify(NoticeError, msgRemoveFailed, removeFailedTTL)
		return fmt.Errorf("remove quest %d: %w", c.id, err)
	}

	reqCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	if c.detached {
		c.mu.Unlock()
		cancel()
		c.setState(DeleteIdle)
		c.restoreButton()
		return context.Canceled
	}
	c.state = DeleteDeleting
	c.cancel = cancel
	c.mu.Unlock()

	err = c.app.API.Delete(reqCtx, token, c.id)

	c.mu.Lock()
	c.cancel = nil
	cancel()
	c.mu.Unlock()

	switch {
	case err == nil:
		c.remove(ctx)
		return nil
	case isCanceled(err):
		c.setState(DeleteIdle)
		c.restoreButton()
		return err
	default:
		c.setState(DeleteIdle)
		c.app.Logger.Warn("remove failed", "quest_id", c.id, "error", err)
		c.app.Notify(NoticeError, msgRemoveFailed, removeFailedTTL)
		c.restoreButton()
		return fmt.Errorf("remove quest %d: %w", c.id, err)
	}
}

// begin resolves the row, its form and a token, then puts the button in
// its loading state. Nothing is changed when resolution fails.
func (c *DeleteController) begin() (string, error) {
	var (
		token string
		err   error
	)
	c.app.Page.Update(func(st *State) {
		row := st.Row(c.id)
		switch {
		case row == nil:
			err = ErrMissingContainer
			return
		case !row.HasDeleteForm:
			err = ErrMissingControl
			return
		}
		token = row.FormToken
		if token == "" {
			token = st.MetaToken
		}
		if token == "" {
			err = ErrMissingToken
			return
		}
		row.DeleteButton.startLoading()
	})
	return token, err
}

// remove plays the exit animation and then drops the row.
func (c *DeleteController) remove(ctx context.Context) {
	c.setState(DeleteRemoved)

	setPhase := func(p Phase) func() {
		return func() {
			c.app.Page.Update(func(st *State) {
				if row := st.Row(c.id); row != nil {
					row.Phase = p
				}
			})
		}
	}
	c.app.Sequencer.Play(context.WithoutCancel(ctx),
		Step{Name: "slide-out", Duration: slideOutDuration, Apply: setPhase(PhaseSlidingOut)},
		Step{Name: "collapse", Duration: collapseDuration, Apply: setPhase(PhaseCollapsing)},
	)
	c.app.Page.Update(func(st *State) {
		st.RemoveRow(c.id)
	})
	c.app.Notify(NoticeSuccess, msgRemoved, removedTTL)
}

// restoreButton puts the remove button back the way it was before loading.
func (c *DeleteController) restoreButton() {
	c.app.Page.Update(func(st *State) {
		if row := st.Row(c.id); row != nil {
			row.DeleteButton.restore()
		}
	})
}

// Detach cancels an in-flight request. The cancellation is not reported
// to the user.
func (c *DeleteController) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detached = true
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *DeleteController) isDetached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.detached
}

func (c *DeleteController) setState(s DeleteState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
