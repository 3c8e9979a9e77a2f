package ui

import (
	"context"
	"fmt"
)

// ToggleController handles checkbox changes on any view of a quest.
type ToggleController struct {
	app *App
}

func NewToggleController(app *App) *ToggleController {
	return &ToggleController{app: app}
}

// Toggle shows checked at once, then asks the server to persist it. On
// success the name's strikethrough follows; on failure the checkbox goes
// back to what it was before this call.
func (c *ToggleController) Toggle(ctx context.Context, id int64, checked bool) error {
	log := c.app.Logger.With("quest_id", id)

	var (
		found bool
		prev  bool
		token string
	)
	c.app.Page.Update(func(st *State) {
		row := st.Row(id)
		if row == nil {
			return
		}
		found = true
		prev = row.Checked
		row.Checked = checked
		token = st.MetaToken
	})
	if !found {
		log.Error("toggle target missing")
		return fmt.Errorf("toggle quest %d: %w", id, ErrMissingContainer)
	}
	if token == "" {
		c.revert(id, prev)
		log.Error("toggle aborted", "error", ErrMissingToken)
		c.app.Notify(NoticeError, msgToggleFailed, toggleFailedTTL)
		return fmt.Errorf("toggle quest %d: %w", id, ErrMissingToken)
	}

	err := c.app.API.SetStatus(ctx, token, id, checked)
	if err != nil {
		c.revert(id, prev)
		if isCanceled(err) {
			return err
		}
		log.Warn("toggle failed", "error", err)
		c.app.Notify(NoticeError, msgToggleFailed, toggleFailedTTL)
		return fmt.Errorf("toggle quest %d: %w", id, err)
	}

	c.app.Page.Update(func(st *State) {
		row := st.Row(id)
		if row == nil {
			return
		}
		row.Struck = checked
		row.Quest.Status = checked
	})
	return nil
}

func (c *ToggleController) revert(id int64, prev bool) {
	c.app.Page.Update(func(st *State) {
		if row := st.Row(id); row != nil {
			row.Checked = prev
		}
	})
}
