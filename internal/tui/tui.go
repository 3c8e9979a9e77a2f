// Package tui is a terminal front end for a running quest server. It drives
// the same page controllers as the browser, so toggles, creation and
// removal behave the same way.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dukerupert/quests/internal/client"
	"github.com/dukerupert/quests/internal/model"
	"github.com/dukerupert/quests/internal/ui"
)

type keyMap struct {
	Up, Down, Toggle, New, Remove, Quit key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle: key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
	New:    key.NewBinding(key.WithKeys("n", "a"), key.WithHelp("n", "new quest")),
	Remove: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type (
	changedMsg struct{}
	confirmMsg confirmRequest
	doneMsg    struct{ err error }
)

// Model is the bubbletea model. It holds no quest data of its own; every
// frame is drawn from the page snapshot.
type Model struct {
	ctx     context.Context
	app     *ui.App
	changes <-chan struct{}
	confirm *confirmer

	toggle  *ui.ToggleController
	dialog  *ui.DialogController
	deletes map[int64]*ui.DeleteController

	cursor  int
	inputs  []textinput.Model
	focused int
	spin    spinner.Model
	asking  *confirmRequest
	logger  *slog.Logger
}

// New builds a model around app. app.Confirm is replaced with the
// terminal prompt.
func New(ctx context.Context, app *ui.App) Model {
	conf := newConfirmer()
	app.Confirm = conf

	name := textinput.New()
	name.Prompt = "Name: "
	name.Placeholder = "Slay the dragon"
	name.CharLimit = model.MaxNameLength + 1
	desc := textinput.New()
	desc.Prompt = "Description: "
	desc.Placeholder = "optional"

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:     ctx,
		app:     app,
		changes: app.Page.Changes(),
		confirm: conf,
		toggle:  ui.NewToggleController(app),
		dialog:  ui.NewDialogController(app),
		deletes: make(map[int64]*ui.DeleteController),
		inputs:  []textinput.Model{name, desc},
		spin:    sp,
		logger:  app.Logger,
	}
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

func waitForConfirm(c *confirmer) tea.Cmd {
	return func() tea.Msg {
		return confirmMsg(<-c.requests)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForChange(m.changes), waitForConfirm(m.confirm), m.spin.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		m.clampCursor()
		return m, waitForChange(m.changes)
	case confirmMsg:
		req := confirmRequest(msg)
		m.asking = &req
		return m, nil
	case doneMsg:
		if msg.err != nil {
			m.logger.Debug("action finished", "error", msg.err)
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if m.asking != nil {
			return m.answer(msg)
		}
		if m.app.Page.Snapshot().Dialog.Open {
			return m.updateDialog(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) answer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.asking.answer <- false
		m.asking = nil
		return m.quit()
	}
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		m.asking.answer <- true
	case "n", "esc":
		m.asking.answer <- false
	default:
		return m, nil
	}
	m.asking = nil
	return m, waitForConfirm(m.confirm)
}

// quit cancels in-flight removals and ends the program.
func (m Model) quit() (tea.Model, tea.Cmd) {
	for _, d := range m.deletes {
		d.Detach()
	}
	m.dialog.Detach()
	return m, tea.Quit
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.app.Page.Snapshot()
	switch {
	case key.Matches(msg, keys.Quit):
		return m.quit()
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(st.Rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.New):
		m.dialog.Open(m.cursor)
		m.focused = 0
		for i := range m.inputs {
			m.inputs[i].SetValue("")
			m.inputs[i].Blur()
		}
		return m, m.inputs[0].Focus()
	case key.Matches(msg, keys.Toggle):
		row := m.selected(st)
		if row == nil {
			return m, nil
		}
		id, checked := row.Quest.ID, !row.Checked
		return m, func() tea.Msg {
			return doneMsg{m.toggle.Toggle(m.ctx, id, checked)}
		}
	case key.Matches(msg, keys.Remove):
		row := m.selected(st)
		if row == nil {
			return m, nil
		}
		ctrl, ok := m.deletes[row.Quest.ID]
		if !ok {
			ctrl = ui.NewDeleteController(m.app, row.Quest.ID)
			m.deletes[row.Quest.ID] = ctrl
		}
		return m, func() tea.Msg {
			return doneMsg{ctrl.Submit(m.ctx)}
		}
	}
	return m, nil
}

func (m Model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.app.Page.KeyDown("Escape")
		return m, nil
	case "tab", "shift+tab":
		m.inputs[m.focused].Blur()
		m.focused = (m.focused + 1) % len(m.inputs)
		return m, m.inputs[m.focused].Focus()
	case "enter":
		return m, func() tea.Msg {
			m.dialog.Submit(m.ctx)
			return doneMsg{}
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	m.dialog.SetField("quest[name]", m.inputs[0].Value())
	m.dialog.SetField("quest[description]", m.inputs[1].Value())
	return m, cmd
}

func (m Model) selected(st ui.State) *ui.Row {
	if m.cursor < 0 || m.cursor >= len(st.Rows) {
		return nil
	}
	return st.Rows[m.cursor]
}

func (m *Model) clampCursor() {
	n := len(m.app.Page.Snapshot().Rows)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) View() string {
	st := m.app.Page.Snapshot()
	var b strings.Builder

	done := 0
	for _, r := range st.Rows {
		if r.Struck {
			done++
		}
	}
	fmt.Fprintf(&b, "%s   %s %d  %s %d\n\n",
		titleStyle.Render("Quests"),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), len(st.Rows)-done,
	)

	for _, n := range st.Notices {
		switch n.Kind {
		case ui.NoticeError:
			b.WriteString(errorStyle.Render("✖ "+n.Message) + "\n")
		default:
			b.WriteString(successStyle.Render("✔ "+n.Message) + "\n")
		}
	}

	if st.Empty() {
		b.WriteString(mutedStyle.Render("No quests found.") + "\n")
		b.WriteString(accentStyle.Render("Press n to create your first quest") + "\n")
	}
	for i, r := range st.Rows {
		b.WriteString(m.renderRow(r, i == m.cursor) + "\n")
	}

	if st.Dialog.Open {
		b.WriteString("\n" + m.renderDialog(st.Dialog) + "\n")
	}
	if m.asking != nil {
		b.WriteString("\n" + errorStyle.Render(m.asking.prompt) + " " + helpStyle.Render("[y/n]") + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("↑/↓ move • space toggle • n new • d remove • q quit"))
	return panelStyle.Render(b.String())
}

func (m Model) renderRow(r *ui.Row, selected bool) string {
	box := mutedStyle.Render(boxUnchecked)
	if r.Checked {
		box = successStyle.Render(boxChecked)
	}
	name := r.Quest.Name
	if r.Struck {
		name = doneStyle.Render(name)
	}
	switch r.Phase {
	case ui.PhaseEntering:
		name = accentStyle.Render(name)
	case ui.PhaseSlidingOut, ui.PhaseCollapsing:
		name = mutedStyle.Render(name)
	}

	button := helpStyle.Render("[" + r.DeleteButton.Label + "]")
	if r.DeleteButton.Loading {
		button = m.spin.View() + " " + mutedStyle.Render(r.DeleteButton.Label)
	}

	prefix := "  "
	if selected {
		prefix = selectedStyle.Render("> ")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, prefix, box, " ", name, "  ", button)
}

func (m Model) renderDialog(d ui.Dialog) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New quest") + "\n")
	if d.Errors != nil {
		b.WriteString(errorStyle.Render(ui.ErrorHeader(d.Errors)) + "\n")
		for _, line := range ui.FullMessages(d.Errors) {
			b.WriteString(errorStyle.Render("  • "+line) + "\n")
		}
	}
	for _, in := range m.inputs {
		b.WriteString(in.View() + "\n")
	}
	if d.Submitting {
		b.WriteString(m.spin.View() + " " + mutedStyle.Render("Creating...") + "\n")
	}
	b.WriteString(helpStyle.Render("enter create • tab next field • esc cancel"))
	return dialogStyle.Render(b.String())
}

// Run connects to the server at baseURL and runs the terminal UI until the
// user quits.
func Run(ctx context.Context, baseURL string, logger *slog.Logger) error {
	c, err := client.New(client.Config{BaseURL: baseURL})
	if err != nil {
		return err
	}
	quests, err := c.List(ctx)
	if err != nil {
		return fmt.Errorf("load quests: %w", err)
	}

	page := ui.NewPage(ui.NewState("", quests, c.Token()))
	app := ui.NewApp(page, c, nil, logger)

	p := tea.NewProgram(New(ctx, app), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
