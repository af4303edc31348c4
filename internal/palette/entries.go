package palette

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/tagtile/internal/dispatch"
	"github.com/1broseidon/tagtile/internal/wm"
)

// Entries builds the tagtile menu for the selected monitor of snap. Every
// leaf action is a command line such as "view 2" or "setlayout 1".
func Entries(snap wm.Snapshot) []MenuItem {
	if snap.SelectedMonitor < 0 || snap.SelectedMonitor >= len(snap.Monitors) {
		return nil
	}
	mon := snap.Monitors[snap.SelectedMonitor]

	var view, send []MenuItem
	for i, name := range snap.Tags {
		bit := uint32(1) << uint(i)
		n := strconv.Itoa(i + 1)
		view = append(view, MenuItem{
			Label:    name,
			Action:   "view " + n,
			IsActive: mon.SelectedTags&bit != 0,
			IsUrgent: mon.UrgentTags&bit != 0,
		})
		send = append(send, MenuItem{Label: name, Action: "tag " + n})
	}
	view = append(view, MenuItem{Label: "All tags", Action: "view all"})

	var layouts []MenuItem
	for _, l := range snap.Layouts {
		layouts = append(layouts, MenuItem{
			Label:    l.Symbol + "  " + l.Kind,
			Action:   "setlayout " + strconv.Itoa(l.Index),
			Meta:     l.Kind,
			IsActive: l.Index == mon.LayoutIndex,
		})
	}

	var windows []MenuItem
	for _, c := range snap.Clients {
		if c.Tags == 0 {
			continue
		}
		title := c.Title
		if title == "" {
			title = c.Class
		}
		windows = append(windows, MenuItem{
			Label:    fmt.Sprintf("%s  [%s]", title, tagNames(snap.Tags, c.Tags)),
			Action:   "view " + dispatch.FormatMask(c.Tags, len(snap.Tags)),
			Icon:     strings.ToLower(c.Class),
			Meta:     c.Class + " " + c.Instance,
			IsActive: c.ID == mon.Selected,
			IsUrgent: c.Urgent,
		})
	}

	items := []MenuItem{
		{Label: "View tag", Icon: "view-grid", Submenu: view},
		{Label: "Layout", Icon: "view-compact", Submenu: layouts},
	}
	if len(windows) > 0 {
		items = append(items, MenuItem{Label: "Windows", Icon: "window", Submenu: windows})
	}
	if mon.Selected != 0 {
		items = append(items,
			MenuItem{Label: "Window", IsHeader: true},
			MenuItem{Label: "Send to tag", Icon: "go-jump", Submenu: send},
			MenuItem{Label: "Zoom", Action: "zoom"},
			MenuItem{Label: "Toggle floating", Action: "togglefloating"},
			MenuItem{Label: "Toggle fullscreen", Action: "togglefullscreen"},
			MenuItem{Label: "Close", Action: "killclient", Icon: "window-close"},
		)
		if len(snap.Monitors) > 1 {
			items = append(items, MenuItem{Label: "Send to next monitor", Action: "tagmon +1"})
		}
	}
	items = append(items, MenuItem{Label: "────────", IsDivider: true})
	if len(snap.Monitors) > 1 {
		items = append(items, MenuItem{Label: "Focus next monitor", Action: "focusmon +1"})
	}
	items = append(items,
		MenuItem{Label: "Toggle bar", Action: "togglebar"},
		MenuItem{Label: "Quit tagtile", Action: "quit", Icon: "system-log-out"},
	)
	return items
}

// SplitAction splits a menu action into a command name and its argument.
func SplitAction(action string) (string, string) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(action), " ")
	return cmd, strings.TrimSpace(arg)
}

func tagNames(tags []string, mask uint32) string {
	var names []string
	for i, name := range tags {
		if i < 32 && mask&(1<<uint(i)) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, ",")
}
