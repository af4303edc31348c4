package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/tagtile/internal/ipc"
	"github.com/1broseidon/tagtile/internal/wm"
)

// statusMsg is sent after a command completes.
type statusMsg struct {
	text string
}

// clearStatusMsg clears the status message after a delay.
type clearStatusMsg struct{}

// model is the root bubbletea model of the dashboard.
type model struct {
	daemon Daemon

	activeTab Tab
	snap      *wm.Snapshot
	connected bool

	clients list.Model

	// Command prompt opened with ':'.
	prompting bool
	prompt    textinput.Model

	// Picker form; pick receives the selected value, pickCmd is the
	// command it is passed to.
	form    *huh.Form
	pick    *string
	pickCmd string

	statusText string

	width  int
	height int
}

func newModel(d Daemon) model {
	ti := textinput.New()
	ti.Prompt = ":"
	ti.Placeholder = "view 2, setlayout monocle, spawn term"
	ti.CharLimit = 256

	return model{
		daemon:  d,
		clients: newClientList(),
		prompt:  ti,
	}
}

// contentHeight is the height left for the active tab.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clients.SetSize(m.width, m.contentHeight())
		return m, nil

	case snapshotMsg:
		snap := wm.Snapshot(msg)
		m.snap = &snap
		m.connected = true
		m.clients.SetItems(buildClientItems(snap))
		return m, nil

	case disconnectedMsg:
		m.connected = false
		return m, m.setStatus("daemon: " + msg.err.Error())

	case statusMsg:
		return m, m.setStatus(msg.text)

	case clearStatusMsg:
		m.statusText = ""
		return m, nil
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	if m.prompting {
		return m.updatePrompt(msg)
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1", "2", "3":
			m.activeTab = Tab(km.String()[0] - '1')
			return m, nil
		case ":":
			m.prompting = true
			m.prompt.Reset()
			m.prompt.Focus()
			return m, textinput.Blink
		case "v":
			return m.openPicker("view", "View tag", m.tagOptions())
		case "l":
			return m.openPicker("setlayout", "Layout", m.layoutOptions())
		}
	}

	if m.activeTab == TabClients {
		var cmd tea.Cmd
		m.clients, cmd = m.clients.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) updatePrompt(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.prompting = false
			m.prompt.Blur()
			return m, nil
		case "enter":
			line := strings.TrimSpace(m.prompt.Value())
			m.prompting = false
			m.prompt.Blur()
			if line == "" {
				return m, nil
			}
			p, err := ipc.ParseCommandArgs(splitPrompt(line))
			if err != nil {
				return m, m.setStatus("error: " + err.Error())
			}
			return m, m.run(p)
		}
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// splitPrompt splits a prompt line into words. Everything after the
// command name forms one argument unless "--" introduces an argv.
func splitPrompt(line string) []string {
	fields := strings.Fields(line)
	if len(fields) <= 2 {
		return fields
	}
	for _, f := range fields {
		if f == "--" {
			return fields
		}
	}
	return []string{fields[0], strings.Join(fields[1:], " ")}
}

func (m model) openPicker(command, title string, opts []huh.Option[string]) (tea.Model, tea.Cmd) {
	if len(opts) == 0 {
		return m, nil
	}
	m.pick = new(string)
	m.pickCmd = command

	w := m.width - 4
	if w < 30 {
		w = 30
	}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("value").
				Title(title).
				Options(opts...).
				Value(m.pick),
		),
	).WithWidth(w).WithShowHelp(false)
	return m, m.form.Init()
}

func (m model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		p := ipc.CommandPayload{Command: m.pickCmd, Arg: *m.pick}
		m.form = nil
		return m, m.run(p)
	case huh.StateAborted:
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m model) tagOptions() []huh.Option[string] {
	if m.snap == nil {
		return nil
	}
	opts := make([]huh.Option[string], 0, len(m.snap.Tags))
	for i, name := range m.snap.Tags {
		opts = append(opts, huh.NewOption(name, strconv.Itoa(i+1)))
	}
	return opts
}

func (m model) layoutOptions() []huh.Option[string] {
	if m.snap == nil {
		return nil
	}
	opts := make([]huh.Option[string], 0, len(m.snap.Layouts))
	for _, l := range m.snap.Layouts {
		opts = append(opts, huh.NewOption(l.Symbol+" "+l.Kind, strconv.Itoa(l.Index)))
	}
	return opts
}

// run sends p to the daemon off the update loop.
func (m model) run(p ipc.CommandPayload) tea.Cmd {
	d := m.daemon
	return func() tea.Msg {
		if err := d.RunCommand(p); err != nil {
			return statusMsg{text: "error: " + err.Error()}
		}
		text := p.Command
		if p.Arg != "" {
			text += " " + p.Arg
		}
		return statusMsg{text: "ran " + text}
	}
}

func (m *model) setStatus(text string) tea.Cmd {
	m.statusText = text
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.connected, m.snap, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width, m.statusText)
	if m.prompting {
		helpBar = lipgloss.NewStyle().Width(m.width).Padding(0, 1).Render(m.prompt.View())
	}

	var content string
	switch {
	case m.form != nil:
		content = m.form.View()
	case m.activeTab == TabClients:
		content = m.clients.View()
	case m.activeTab == TabLayouts:
		content = renderLayouts(m.snap, m.width)
	default:
		content = renderMonitors(m.snap, m.width)
	}
	content = lipgloss.NewStyle().Height(m.contentHeight()).MaxHeight(m.contentHeight()).Render(content)

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
