package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/quests/internal/client"
)

func TestDeleteLastItemShowsPlaceholder(t *testing.T) {
	api := &fakeAPI{}
	app, _ := newTestApp(t, api, quest(1, "Only quest"))
	c := NewDeleteController(app, 1)

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	st := app.Page.Snapshot()
	if !st.Empty() {
		t.Fatalf("rows = %d, want 0", len(st.Rows))
	}
	if c.State() != DeleteRemoved {
		t.Errorf("state = %v, want removed", c.State())
	}
	html := render(t, st)
	if strings.Contains(html, `id="quest_container_1"`) {
		t.Error("row still rendered")
	}
	if !strings.Contains(html, "No quests found.") || !strings.Contains(html, "Create your first quest") {
		t.Errorf("placeholder missing:\n%s", html)
	}
	if got := noticeMessages(st); len(got) != 1 || got[0] != "Quest successfully removed!" {
		t.Errorf("notices = %v", got)
	}
	if api.lastToken != "meta-token" {
		t.Errorf("token = %q, want form token", api.lastToken)
	}
}

func TestDeleteLeavesOtherRows(t *testing.T) {
	app, _ := newTestApp(t, &fakeAPI{}, quest(2, "b"), quest(1, "a"))

	NewDeleteController(app, 2).Submit(context.Background())

	st := app.Page.Snapshot()
	if len(st.Rows) != 1 || st.Rows[0].Quest.ID != 1 {
		t.Fatalf("rows = %+v", st.Rows)
	}
	if html := render(t, st); strings.Contains(html, "No quests found.") {
		t.Error("placeholder should not show while rows remain")
	}
}

func TestDeletePlaysExitAnimation(t *testing.T) {
	var phases []Phase
	app, _ := newTestApp(t, &fakeAPI{}, quest(1, "a"))
	app.Sequencer = recordingSequencer{app: app, id: 1, seen: &phases}

	NewDeleteController(app, 1).Submit(context.Background())

	if len(phases) != 2 || phases[0] != PhaseSlidingOut || phases[1] != PhaseCollapsing {
		t.Errorf("phases = %v, want [sliding-out collapsing]", phases)
	}
}

type recordingSequencer struct {
	app  *App
	id   int64
	seen *[]Phase
}

func (s recordingSequencer) Play(ctx context.Context, steps ...Step) error {
	for _, step := range steps {
		if step.Apply != nil {
			step.Apply()
		}
		if row := s.app.Page.Snapshot().Row(s.id); row != nil {
			*s.seen = append(*s.seen, row.Phase)
		}
	}
	return nil
}

func TestDeleteDeclinedSendsNothing(t *testing.T) {
	api := &fakeAPI{}
	app, _ := newTestApp(t, api, quest(1, "a"))
	app.Confirm = always(false)
	c := NewDeleteController(app, 1)

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if api.deleteCalls != 0 {
		t.Errorf("delete calls = %d, want 0", api.deleteCalls)
	}
	if c.State() != DeleteIdle {
		t.Errorf("state = %v, want idle", c.State())
	}
	if app.Page.Snapshot().Row(1) == nil {
		t.Error("row should remain")
	}
}

func TestDeleteConfirmPrompt(t *testing.T) {
	var prompt string
	app, _ := newTestApp(t, &fakeAPI{}, quest(1, "a"))
	app.Confirm = ConfirmFunc(func(_ context.Context, p string) bool {
		prompt = p
		return false
	})

	NewDeleteController(app, 1).Submit(context.Background())

	if prompt != "Are you sure you want to remove this quest?" {
		t.Errorf("prompt = %q", prompt)
	}
}

func TestDeleteDoubleSubmitSendsOneRequest(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	api := &fakeAPI{
		delete: func(context.Context, string, int64) error {
			close(started)
			<-release
			return nil
		},
	}
	app, _ := newTestApp(t, api, quest(1, "a"))
	c := NewDeleteController(app, 1)

	done := make(chan error)
	go func() { done <- c.Submit(context.Background()) }()
	<-started

	if c.State() != DeleteDeleting {
		t.Errorf("state = %v, want deleting", c.State())
	}
	if err := c.Submit(context.Background()); err != nil {
		t.Errorf("second submit: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}

	if n := api.deletes(); n != 1 {
		t.Errorf("delete calls = %d, want 1", n)
	}
}

func TestDeleteSecondSubmitWhileConfirmingIsNoop(t *testing.T) {
	asked := make(chan struct{})
	answer := make(chan bool)
	api := &fakeAPI{}
	app, _ := newTestApp(t, api, quest(1, "a"))
	app.Confirm = ConfirmFunc(func(context.Context, string) bool {
		close(asked)
		return <-answer
	})
	c := NewDeleteController(app, 1)

	done := make(chan error)
	go func() { done <- c.Submit(context.Background()) }()
	<-asked

	if c.State() != DeleteConfirming {
		t.Errorf("state = %v, want confirming", c.State())
	}
	c.Submit(context.Background())
	answer <- true
	<-done

	if n := api.deletes(); n != 1 {
		t.Errorf("delete calls = %d, want 1", n)
	}
}

func TestDeleteLoadingButton(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	api := &fakeAPI{
		delete: func(context.Context, string, int64) error {
			close(started)
			<-release
			return &client.HTTPError{Status: 500}
		},
	}
	app, _ := newTestApp(t, api, quest(1, "a"))
	c := NewDeleteController(app, 1)

	done := make(chan error)
	go func() { done <- c.Submit(context.Background()) }()
	<-started

	btn := app.Page.Snapshot().Row(1).DeleteButton
	if !btn.Disabled || !btn.Loading || !btn.Dimmed || btn.Label != "Removing..." {
		t.Errorf("button while deleting = %+v", btn)
	}
	if btn.PinnedWidth != len("Remove") {
		t.Errorf("pinned width = %d, want %d", btn.PinnedWidth, len("Remove"))
	}
	html := render(t, app.Page.Snapshot())
	if !strings.Contains(html, "animate-spin") || !strings.Contains(html, "min-width: 6ch") {
		t.Errorf("loading markup missing:\n%s", html)
	}

	close(release)
	<-done
}

func TestDeleteFailureRestoresButton(t *testing.T) {
	api := &fakeAPI{
		delete: func(context.Context, string, int64) error {
			return &client.HTTPError{Status: 404}
		},
	}
	app, timers := newTestApp(t, api, quest(1, "a"))
	c := NewDeleteController(app, 1)

	err := c.Submit(context.Background())
	var httpErr *client.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != 404 {
		t.Fatalf("err = %v, want 404", err)
	}

	st := app.Page.Snapshot()
	row := st.Row(1)
	if row == nil {
		t.Fatal("row removed on failure")
	}
	if row.DeleteButton.Disabled || row.DeleteButton.Loading || row.DeleteButton.Label != "Remove" || row.DeleteButton.PinnedWidth != 0 {
		t.Errorf("button = %+v, want restored", row.DeleteButton)
	}
	if got := noticeMessages(st); len(got) != 1 || got[0] != "Failed to remove quest. Please try again." {
		t.Errorf("notices = %v", got)
	}
	if timers.after[0] != 4*time.Second {
		t.Errorf("ttl = %v, want 4s", timers.after[0])
	}
	if c.State() != DeleteIdle {
		t.Errorf("state = %v, want idle", c.State())
	}

	// The control is usable again.
	api.delete = nil
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if app.Page.Snapshot().Row(1) != nil {
		t.Error("row should be gone after retry")
	}
}

func TestDeleteResolutionErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(st *State)
		want  error
	}{
		{"missing container", func(st *State) { st.RemoveRow(1) }, ErrMissingContainer},
		{"missing control", func(st *State) { st.Row(1).HasDeleteForm = false }, ErrMissingControl},
		{"missing token", func(st *State) {
			st.Row(1).FormToken = ""
			st.MetaToken = ""
		}, ErrMissingToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			app, _ := newTestApp(t, api, quest(1, "a"))
			app.Page.Update(tt.setup)
			c := NewDeleteController(app, 1)

			err := c.Submit(context.Background())
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if api.deleteCalls != 0 {
				t.Errorf("delete calls = %d, want 0", api.deleteCalls)
			}
			if c.State() != DeleteIdle {
				t.Errorf("state = %v, want idle", c.State())
			}
		})
	}
}

func TestDeleteFallsBackToMetaToken(t *testing.T) {
	api := &fakeAPI{}
	app, _ := newTestApp(t, api, quest(1, "a"))
	app.Page.Update(func(st *State) {
		st.Row(1).FormToken = ""
		st.MetaToken = "page-token"
	})

	NewDeleteController(app, 1).Submit(context.Background())

	if api.lastToken != "page-token" {
		t.Errorf("token = %q, want page-token", api.lastToken)
	}
}

func TestDeleteDetachCancelsSilently(t *testing.T) {
	started := make(chan struct{})
	api := &fakeAPI{
		delete: func(ctx context.Context, _ string, _ int64) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		},
	}
	app, _ := newTestApp(t, api, quest(1, "a"))
	c := NewDeleteController(app, 1)

	done := make(chan error)
	go func() { done <- c.Submit(context.Background()) }()
	<-started
	c.Detach()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	st := app.Page.Snapshot()
	if len(st.Notices) != 0 {
		t.Errorf("notices = %v, want none", noticeMessages(st))
	}
	if st.Row(1) == nil {
		t.Fatal("row should not be removed")
	}
	if b := st.Row(1).DeleteButton; b.Loading || b.Disabled || b.Label != removeLabel {
		t.Errorf("button = %+v, want restored", b)
	}
	if err := c.Submit(context.Background()); err != nil || api.deletes() != 1 {
		t.Errorf("detached controller sent another request")
	}
}

func TestDeleteDetachWhileConfirmingRestoresButton(t *testing.T) {
	api := &fakeAPI{}
	app, _ := newTestApp(t, api, quest(1, "a"))
	c := NewDeleteController(app, 1)
	app.Confirm = ConfirmFunc(func(context.Context, string) bool {
		c.Detach()
		return true
	})

	err := c.Submit(context.Background())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if api.deletes() != 0 {
		t.Errorf("delete calls = %d, want 0", api.deletes())
	}
	if c.State() != DeleteIdle {
		t.Errorf("state = %v, want idle", c.State())
	}
	st := app.Page.Snapshot()
	b := st.Row(1).DeleteButton
	if b.Loading || b.Disabled || b.Label != removeLabel {
		t.Errorf("button = %+v, want interactive", b)
	}
	if len(st.Notices) != 0 {
		t.Errorf("notices = %v, want none", noticeMessages(st))
	}
}

type noticeWatcher struct {
	app  *App
	seen *[]int
}

func (s noticeWatcher) Play(ctx context.Context, steps ...Step) error {
	for _, step := range steps {
		if step.Apply != nil {
			step.Apply()
		}
		*s.seen = append(*s.seen, len(s.app.Page.Snapshot().Notices))
	}
	return nil
}

func TestDeleteNoticeFollowsRemoval(t *testing.T) {
	var during []int
	app, _ := newTestApp(t, &fakeAPI{}, quest(1, "a"))
	app.Sequencer = noticeWatcher{app: app, seen: &during}

	if err := NewDeleteController(app, 1).Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	for i, n := range during {
		if n != 0 {
			t.Errorf("step %d: %d notices shown before the row was removed", i, n)
		}
	}
	st := app.Page.Snapshot()
	if st.Row(1) != nil {
		t.Fatal("row still present")
	}
	if got := noticeMessages(st); len(got) != 1 || got[0] != "Quest successfully removed!" {
		t.Errorf("notices = %v", got)
	}
}
