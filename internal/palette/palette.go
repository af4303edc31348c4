// Package palette shows tagtile menus through an external X11 launcher
// (rofi or dmenu) and reports the selected action.
package palette

import (
	"fmt"
	"os/exec"
	"strings"
)

// Item is a single selectable entry in a palette menu.
type Item struct {
	Label     string // Display text
	Action    string // Action returned on selection
	Icon      string // Icon name for rofi -show-icons
	Meta      string // Hidden search keywords (rofi meta field)
	IsHeader  bool   // Non-selectable section header
	IsDivider bool   // Non-selectable divider line
	IsActive  bool   // Highlighted as current
	IsUrgent  bool   // Highlighted as urgent
}

// Request describes one palette invocation.
type Request struct {
	Prompt  string
	Message string // rofi message bar
	Monitor int    // Xinerama monitor index, -1 for the launcher's default
	Items   []Item
}

// Backend shows a palette to the user and returns the selected item.
type Backend interface {
	Show(req Request) (Item, error)
}

// DetectBackend returns the first launcher found in PATH: rofi, then dmenu.
func DetectBackend() (string, error) {
	for _, name := range []string{"rofi", "dmenu"} {
		if _, err := exec.LookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no palette backend found in PATH (looked for: rofi, dmenu)")
}

// NewBackend creates a backend by name: auto, rofi or dmenu.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := DetectBackend()
		if err != nil {
			return nil, err
		}
		name = detected
	}

	var b *launcher
	switch name {
	case "rofi":
		b = newRofi()
	case "dmenu":
		b = newDmenu()
	default:
		return nil, fmt.Errorf("unknown palette backend: %q (expected: auto, rofi, dmenu)", name)
	}
	if _, err := exec.LookPath(b.command); err != nil {
		return nil, fmt.Errorf("palette backend %q not found in PATH", b.command)
	}
	return b, nil
}
