package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/tagtile/internal/wm"
)

var (
	viewedTagStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	urgentTagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("160")).
			Padding(0, 1)

	occupiedTagStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("250")).
				Padding(0, 1)

	emptyTagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)

	headingStyle = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// renderTags draws a dwm style tag bar for one monitor.
func renderTags(tags []string, m wm.MonitorState) string {
	cells := make([]string, 0, len(tags))
	for i, name := range tags {
		bit := uint32(1) << uint(i)
		switch {
		case m.SelectedTags&bit != 0:
			cells = append(cells, viewedTagStyle.Render(name))
		case m.UrgentTags&bit != 0:
			cells = append(cells, urgentTagStyle.Render(name))
		case m.OccupiedTags&bit != 0:
			cells = append(cells, occupiedTagStyle.Render(name))
		default:
			cells = append(cells, emptyTagStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func renderMonitors(snap *wm.Snapshot, width int) string {
	if snap == nil {
		return dimStyle.Render("waiting for the daemon...")
	}
	var blocks []string
	for _, m := range snap.Monitors {
		title := fmt.Sprintf("%d %s  %dx%d+%d+%d", m.Index, m.Name,
			m.Screen.Width, m.Screen.Height, m.Screen.X, m.Screen.Y)
		if m.Index == snap.SelectedMonitor {
			title = "* " + title
		} else {
			title = "  " + title
		}
		focused := m.SelectedTitle
		if focused == "" {
			focused = dimStyle.Render("(no focused window)")
		}
		block := lipgloss.JoinVertical(lipgloss.Left,
			headingStyle.Render(title),
			"  "+renderTags(snap.Tags, m)+"  "+m.LayoutSymbol,
			fmt.Sprintf("  mfact %.2f  nmaster %d  windows %d", m.MFact, m.NMaster, len(m.Clients)),
			"  "+focused,
		)
		blocks = append(blocks, lipgloss.NewStyle().Width(width).MarginBottom(1).Render(block))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

// clientItem implements list.Item for the client list.
type clientItem struct {
	client wm.ClientState
	tags   string
}

func (i clientItem) Title() string {
	title := i.client.Title
	if title == "" {
		title = i.client.Class
	}
	return fmt.Sprintf("%#x  %s", uint32(i.client.Window), title)
}

func (i clientItem) Description() string {
	var flags []string
	if i.client.Floating {
		flags = append(flags, "floating")
	}
	if i.client.Fullscreen {
		flags = append(flags, "fullscreen")
	}
	if i.client.Urgent {
		flags = append(flags, "urgent")
	}
	if !i.client.Visible {
		flags = append(flags, "hidden")
	}
	desc := fmt.Sprintf("%s  mon %d  tags %s", i.client.Class, i.client.Monitor, i.tags)
	if len(flags) > 0 {
		desc += "  " + strings.Join(flags, ",")
	}
	return desc
}

func (i clientItem) FilterValue() string { return i.client.Title + " " + i.client.Class }

func buildClientItems(snap wm.Snapshot) []list.Item {
	items := make([]list.Item, 0, len(snap.Clients))
	for _, c := range snap.Clients {
		items = append(items, clientItem{client: c, tags: tagList(snap.Tags, c.Tags)})
	}
	return items
}

func newClientList() list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Clients"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}

func renderLayouts(snap *wm.Snapshot, width int) string {
	if snap == nil {
		return dimStyle.Render("waiting for the daemon...")
	}
	lines := []string{headingStyle.Render(fmt.Sprintf("%-6s %-8s %-10s %s", "INDEX", "SYMBOL", "KIND", "MONITORS"))}
	for _, l := range snap.Layouts {
		var mons []string
		for _, m := range snap.Monitors {
			if m.LayoutIndex == l.Index {
				mons = append(mons, m.Name)
			}
		}
		lines = append(lines, fmt.Sprintf("%-6d %-8s %-10s %s", l.Index, l.Symbol, l.Kind, strings.Join(mons, ",")))
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

// tagList names the tags set in mask.
func tagList(tags []string, mask uint32) string {
	var names []string
	for i, name := range tags {
		if i < 32 && mask&(1<<uint(i)) != 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}
