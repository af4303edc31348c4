package palette

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MenuItem is a node of a hierarchical menu.
type MenuItem struct {
	Label     string
	Action    string // empty for parent items
	Icon      string
	Meta      string
	IsHeader  bool
	IsDivider bool
	IsActive  bool
	IsUrgent  bool
	Submenu   []MenuItem
}

// IsParent reports whether the item opens a submenu.
func (m MenuItem) IsParent() bool {
	return len(m.Submenu) > 0
}

// Menu navigates a MenuItem tree with a palette backend.
type Menu struct {
	backend Backend
	root    []MenuItem
	prompt  string
	message string
	monitor int
}

// NewMenu creates a menu over items. The launcher opens on monitor, or on
// its default monitor when monitor is negative.
func NewMenu(backend Backend, items []MenuItem, monitor int) *Menu {
	return &Menu{
		backend: backend,
		root:    items,
		prompt:  "tagtile",
		monitor: monitor,
	}
}

// SetMessage sets the text of the rofi message bar.
func (m *Menu) SetMessage(msg string) {
	m.message = msg
}

const (
	submenuPrefix = "__submenu__:"
	backAction    = "__back__"
)

// Show runs the menu and returns the action of the selected leaf, or
// ErrCancelled when the user leaves the top level.
func (m *Menu) Show() (string, error) {
	return m.showLevel(m.root, nil)
}

func (m *Menu) showLevel(items []MenuItem, breadcrumb []string) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("menu: no items to show")
	}

	for {
		paletteItems := make([]Item, 0, len(items)+1)
		if len(breadcrumb) > 0 {
			paletteItems = append(paletteItems, Item{Label: "← Back", Action: backAction, Icon: "go-previous"})
		}
		for i, item := range items {
			label, icon, action := item.Label, item.Icon, item.Action
			if item.IsParent() {
				label += " →"
				if icon == "" {
					icon = "folder"
				}
				action = submenuPrefix + strconv.Itoa(i)
			}
			paletteItems = append(paletteItems, Item{
				Label:     label,
				Action:    action,
				Icon:      icon,
				Meta:      item.Meta,
				IsHeader:  item.IsHeader,
				IsDivider: item.IsDivider,
				IsActive:  item.IsActive,
				IsUrgent:  item.IsUrgent,
			})
		}

		prompt := m.prompt
		if len(breadcrumb) > 0 {
			prompt = breadcrumb[len(breadcrumb)-1]
		}

		selected, err := m.backend.Show(Request{
			Prompt:  prompt,
			Message: m.message,
			Monitor: m.monitor,
			Items:   paletteItems,
		})
		if err != nil {
			return "", err
		}

		// dmenu cannot refuse header rows.
		if selected.IsHeader || selected.IsDivider || strings.TrimSpace(selected.Action) == "" {
			continue
		}
		if selected.Action == backAction {
			return "", ErrCancelled
		}

		if idxStr, ok := strings.CutPrefix(selected.Action, submenuPrefix); ok {
			idx, err := strconv.Atoi(idxStr)
			if err != nil || idx < 0 || idx >= len(items) || !items[idx].IsParent() {
				continue
			}
			crumbs := append(append([]string(nil), breadcrumb...), items[idx].Label)
			action, err := m.showLevel(items[idx].Submenu, crumbs)
			if errors.Is(err, ErrCancelled) {
				continue
			}
			return action, err
		}

		return selected.Action, nil
	}
}
