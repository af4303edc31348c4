package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

// ErrCancelled is returned when the user closes the palette without selecting an item.
var ErrCancelled = errors.New("palette cancelled")

// launcher drives a dmenu compatible program over stdin/stdout.
type launcher struct {
	command string

	// rofi reports the selected index and understands row markup,
	// icons and non-selectable rows. dmenu only echoes the label.
	rofi bool

	// run executes the launcher; replaced in tests.
	run func(name string, args []string, input string) (string, error)
}

type rowStates struct {
	active         []int
	urgent         []int
	selectedRow    int
	hasSelectedRow bool
}

func newRofi() *launcher {
	return &launcher{command: "rofi", rofi: true, run: execLauncher}
}

func newDmenu() *launcher {
	return &launcher{command: "dmenu", run: execLauncher}
}

func execLauncher(name string, args []string, input string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(input)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	selection := strings.TrimSpace(string(out))
	if err != nil {
		if selection == "" && isCancelExit(err) {
			return "", ErrCancelled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s failed: %s", name, msg)
		}
		return "", fmt.Errorf("%s failed: %w", name, err)
	}
	return selection, nil
}

func (b *launcher) Show(req Request) (Item, error) {
	if len(req.Items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}

	items := make([]Item, len(req.Items))
	copy(items, req.Items)

	input, states := b.formatInput(items)
	selection, err := b.run(b.command, b.buildArgs(req, states), input)
	if err != nil {
		return Item{}, err
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}
	return b.parseSelection(selection, items)
}

func (b *launcher) buildArgs(req Request, states rowStates) []string {
	if !b.rofi {
		args := []string{"-i"}
		if req.Prompt != "" {
			args = append(args, "-p", req.Prompt)
		}
		if req.Monitor >= 0 {
			args = append(args, "-m", strconv.Itoa(req.Monitor))
		}
		return args
	}

	args := []string{"-dmenu", "-i"}
	if req.Prompt != "" {
		args = append(args, "-p", req.Prompt)
	}
	// Labels may contain ':' or markup, so select by index.
	args = append(args, "-format", "i", "-no-custom", "-markup-rows", "-show-icons")
	if req.Monitor >= 0 {
		args = append(args, "-m", strconv.Itoa(req.Monitor))
	}
	if len(states.active) > 0 {
		args = append(args, "-a", formatIndices(states.active))
	}
	if len(states.urgent) > 0 {
		args = append(args, "-u", formatIndices(states.urgent))
	}
	if states.hasSelectedRow {
		args = append(args, "-selected-row", strconv.Itoa(states.selectedRow))
	}
	if req.Message != "" {
		args = append(args, "-mesg", req.Message)
	}
	return args
}

func (b *launcher) formatInput(items []Item) (string, rowStates) {
	lines := make([]string, 0, len(items))
	var states rowStates
	firstSelectable := -1
	firstActiveSelectable := -1

	// dmenu matches by visible text, so labels must be unique.
	if !b.rofi {
		seen := make(map[string]int)
		for i := range items {
			if items[i].IsHeader || items[i].IsDivider {
				continue
			}
			key := sanitizeLabel(items[i].Label)
			if key == "" {
				continue
			}
			if count := seen[key]; count > 0 {
				items[i].Label = fmt.Sprintf("%s (%d)", key, count+1)
			}
			seen[key]++
		}
	}

	for i, item := range items {
		lines = append(lines, b.formatItem(item))

		selectable := !item.IsHeader && !item.IsDivider
		if selectable {
			if firstSelectable == -1 {
				firstSelectable = i
			}
			if item.IsActive && firstActiveSelectable == -1 {
				firstActiveSelectable = i
			}
		}
		if b.rofi && selectable {
			if item.IsActive {
				states.active = append(states.active, i)
			}
			if item.IsUrgent {
				states.urgent = append(states.urgent, i)
			}
		}
	}

	switch {
	case firstActiveSelectable != -1:
		states.selectedRow = firstActiveSelectable
		states.hasSelectedRow = true
	case firstSelectable != -1:
		states.selectedRow = firstSelectable
		states.hasSelectedRow = true
	}

	return strings.Join(lines, "\n"), states
}

func (b *launcher) formatItem(item Item) string {
	display := sanitizeLabel(item.Label)
	if !b.rofi {
		return display
	}

	display = html.EscapeString(display)
	if item.IsHeader {
		display = fmt.Sprintf("<b>%s</b>", display)
	} else if item.IsDivider {
		display = fmt.Sprintf("<span foreground='#666666'>%s</span>", display)
	}

	// Row properties use a single NUL followed by \x1f separated pairs.
	var attrs []string
	if item.IsHeader || item.IsDivider {
		attrs = append(attrs, "nonselectable", "true")
	}
	if item.Icon != "" {
		attrs = append(attrs, "icon", sanitizeRofiField(item.Icon))
	}
	if item.Meta != "" {
		attrs = append(attrs, "meta", sanitizeRofiField(item.Meta))
	}
	if len(attrs) == 0 {
		return display
	}
	return display + "\x00" + strings.Join(attrs, "\x1f")
}

func (b *launcher) parseSelection(selection string, items []Item) (Item, error) {
	if b.rofi {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(items) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return items[idx], nil
		}
	}
	for _, item := range items {
		if sanitizeLabel(item.Label) == selection {
			return item, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func sanitizeRofiField(value string) string {
	value = strings.ReplaceAll(value, "\x00", " ")
	value = strings.ReplaceAll(value, "\x1f", " ")
	return sanitizeLabel(value)
}

func formatIndices(indices []int) string {
	parts := make([]string, 0, len(indices))
	for _, i := range indices {
		parts = append(parts, strconv.Itoa(i))
	}
	return strings.Join(parts, ",")
}

func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	// 1 is "no selection", 130 is Ctrl+C.
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	default:
		return false
	}
}
