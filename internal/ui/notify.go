package ui

import (
	"sync/atomic"
	"time"
)

const (
	msgCreated       = "Quest was successfully created."
	msgRemoved       = "Quest successfully removed!"
	msgRemoveFailed  = "Failed to remove quest. Please try again."
	msgToggleFailed  = "Failed to update quest. Please try again."
	msgUnexpected    = "An unexpected error occurred. Please try again."
	msgConfirmRemove = "Are you sure you want to remove this quest?"

	createdTTL      = 5 * time.Second
	removedTTL      = 3 * time.Second
	removeFailedTTL = 4 * time.Second
	toggleFailedTTL = 4 * time.Second
)

type noticeCounter struct{ n atomic.Int64 }

func (c *noticeCounter) next() int64 { return c.n.Add(1) }

// Notify shows a notice and removes it after ttl.
func (a *App) Notify(kind NoticeKind, message string, ttl time.Duration) int64 {
	id := a.notices.next()
	a.Page.Update(func(st *State) {
		st.Notices = append(st.Notices, Notice{ID: id, Kind: kind, Message: message})
	})
	a.After(ttl, func() { a.Dismiss(id) })
	return id
}

// Dismiss removes a notice. Unknown ids are ignored.
func (a *App) Dismiss(id int64) {
	a.Page.Update(func(st *State) {
		for i, n := range st.Notices {
			if n.ID == id {
				st.Notices = append(st.Notices[:i], st.Notices[i+1:]...)
				return
			}
		}
	})
}
