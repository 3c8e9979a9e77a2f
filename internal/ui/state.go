package ui

import (
	"unicode/utf8"

	"github.com/dukerupert/quests/internal/model"
)

// Phase is where a row is in its enter or exit animation.
type Phase int

const (
	PhaseSettled Phase = iota
	PhaseEntering
	PhaseSlidingOut
	PhaseCollapsing
)

func (p Phase) String() string {
	switch p {
	case PhaseEntering:
		return "entering"
	case PhaseSlidingOut:
		return "sliding-out"
	case PhaseCollapsing:
		return "collapsing"
	default:
		return "settled"
	}
}

const (
	removeLabel   = "Remove"
	removingLabel = "Removing..."
)

// Button is the per-row remove control.
type Button struct {
	Label    string
	Disabled bool
	Dimmed   bool
	Loading  bool
	// PinnedWidth keeps the footprint of the original label, in character
	// cells, while the loading content is shown. Zero means unpinned.
	PinnedWidth int

	saved *Button
}

// startLoading swaps in the spinner content and pins the current size.
func (b *Button) startLoading() {
	orig := *b
	orig.saved = nil
	b.saved = &orig
	b.PinnedWidth = utf8.RuneCountInString(b.Label)
	b.Label = removingLabel
	b.Disabled = true
	b.Dimmed = true
	b.Loading = true
}

// restore puts back whatever startLoading replaced.
func (b *Button) restore() {
	if b.saved == nil {
		return
	}
	*b = *b.saved
}

// Row is one quest as shown in the list and, for the selected quest, in
// the detail view. Both views read the same Row.
type Row struct {
	Quest model.Quest
	// Checked is the checkbox; Struck is the line-through on the name.
	Checked bool
	Struck  bool
	Phase   Phase

	// HasDeleteForm is false for rows rendered without a remove form.
	HasDeleteForm bool
	// FormToken is the hidden authenticity_token in the remove form.
	FormToken    string
	DeleteButton Button
}

// NewRow builds a settled row for q with a remove form.
func NewRow(q model.Quest, token string) *Row {
	return &Row{
		Quest:         q,
		Checked:       q.Status,
		Struck:        q.Status,
		HasDeleteForm: true,
		FormToken:     token,
		DeleteButton:  Button{Label: removeLabel},
	}
}

func (r *Row) clone() *Row {
	c := *r
	if r.DeleteButton.saved != nil {
		saved := *r.DeleteButton.saved
		c.DeleteButton.saved = &saved
	}
	return &c
}

// Dialog is the creation dialog.
type Dialog struct {
	Open       bool
	Submitting bool

	Name        string
	Description string

	// Errors is nil while the error panel is hidden.
	Errors        model.ValidationErrors
	InvalidFields map[string]bool
	ScrollToErrors bool

	// Focus is the name of the focused input, empty when none.
	Focus string

	savedScroll int
}

// NoticeKind selects how a notice is styled.
type NoticeKind int

const (
	// NoticeFlash is the inline notice above the list.
	NoticeFlash NoticeKind = iota
	NoticeSuccess
	NoticeError
)

type Notice struct {
	ID      int64
	Kind    NoticeKind
	Message string
}

// State is everything a quest page shows.
type State struct {
	Title string
	// Rows are ordered newest first.
	Rows []*Row
	// Detail is the id shown in the detail view, zero for the list page.
	Detail int64
	// ReadOnly pages have no create dialog and no empty-state affordance.
	ReadOnly bool

	Dialog  Dialog
	Notices []Notice

	CreateURL string
	MetaToken string

	ScrollY          int
	BodyScrollLocked bool
}

// Empty reports whether the placeholder shows in place of the list.
func (s State) Empty() bool {
	return len(s.Rows) == 0
}

// Row returns the row for id, or nil.
func (s State) Row(id int64) *Row {
	for _, r := range s.Rows {
		if r.Quest.ID == id {
			return r
		}
	}
	return nil
}

// InsertHead puts row first. A row with the same id is removed first so
// an id is never shown twice.
func (s *State) InsertHead(row *Row) {
	s.RemoveRow(row.Quest.ID)
	s.Rows = append([]*Row{row}, s.Rows...)
}

// RemoveRow drops the row for id and reports whether it was present.
func (s *State) RemoveRow(id int64) bool {
	for i, r := range s.Rows {
		if r.Quest.ID == id {
			s.Rows = append(s.Rows[:i], s.Rows[i+1:]...)
			return true
		}
	}
	return false
}

// NewState builds a list page state from quests, newest first.
func NewState(title string, quests []model.Quest, token string) State {
	st := State{
		Title:     title,
		CreateURL: "/quests",
		MetaToken: token,
	}
	for _, q := range quests {
		st.Rows = append(st.Rows, NewRow(q, token))
	}
	return st
}

func (s State) clone() State {
	c := s
	c.Rows = make([]*Row, len(s.Rows))
	for i, r := range s.Rows {
		c.Rows[i] = r.clone()
	}
	c.Notices = append([]Notice(nil), s.Notices...)
	if s.Dialog.Errors != nil {
		c.Dialog.Errors = model.ValidationErrors{}
		for k, v := range s.Dialog.Errors {
			c.Dialog.Errors[k] = append([]string(nil), v...)
		}
	}
	if s.Dialog.InvalidFields != nil {
		c.Dialog.InvalidFields = make(map[string]bool, len(s.Dialog.InvalidFields))
		for k, v := range s.Dialog.InvalidFields {
			c.Dialog.InvalidFields[k] = v
		}
	}
	return c
}
