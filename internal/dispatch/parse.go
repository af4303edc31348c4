package dispatch

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser turns textual command arguments (as written in config files and
// IPC requests) into typed actions.
type Parser struct {
	// NumTags is the number of configured tags.
	NumTags int
	// Layouts lists the layout palette by name, in palette order.
	Layouts []string
}

// TagMask returns the all-tags mask for n tags.
func TagMask(n int) uint32 {
	if n <= 0 {
		return 0
	}
	if n >= 32 {
		return ^uint32(0)
	}
	return 1<<uint(n) - 1
}

// Parse builds an action for cmd. arg is the textual argument; argv is only
// used by spawn.
func (p Parser) Parse(cmd, arg string, argv []string) (Action, error) {
	c, err := ParseCommand(cmd)
	if err != nil {
		return Action{}, err
	}
	arg = strings.TrimSpace(arg)
	a := Action{Cmd: c}

	switch c {
	case CmdSpawn:
		if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
			return Action{}, fmt.Errorf("spawn: argv must not be empty")
		}
		a.Arg = Arg{Kind: ArgArgv, Argv: append([]string(nil), argv...)}
		return a, nil

	case CmdToggleBar, CmdZoom, CmdKillClient, CmdToggleFloating, CmdToggleFullscreen,
		CmdMoveMouse, CmdResizeMouse, CmdQuit:
		if arg != "" {
			return Action{}, fmt.Errorf("%s: takes no argument, got %q", c, arg)
		}

	case CmdFocusStack, CmdPushStack:
		mode, n, err := ParseStackArg(arg)
		if err != nil {
			return Action{}, fmt.Errorf("%s: %w", c, err)
		}
		a.Arg = Arg{Kind: ArgStack, Stack: mode, N: n}

	case CmdIncNMaster, CmdFocusMon, CmdTagMon:
		n, err := strconv.Atoi(strings.TrimPrefix(arg, "+"))
		if err != nil {
			return Action{}, fmt.Errorf("%s: invalid integer %q", c, arg)
		}
		if n == 0 {
			return Action{}, fmt.Errorf("%s: delta must not be 0", c)
		}
		a.Arg = Arg{Kind: ArgInt, Int: n}

	case CmdSetMFact:
		f, rel, err := parseFloatArg(arg)
		if err != nil {
			return Action{}, fmt.Errorf("%s: %w", c, err)
		}
		if !rel && (f < 0.05 || f > 0.95) {
			return Action{}, fmt.Errorf("%s: absolute value %v outside [0.05, 0.95]", c, f)
		}
		a.Arg = Arg{Kind: ArgFloat, Float: f, Relative: rel}

	case CmdView, CmdToggleView, CmdTag, CmdToggleTag:
		mask, err := ParseMask(arg, p.NumTags)
		if err != nil {
			return Action{}, fmt.Errorf("%s: %w", c, err)
		}
		a.Arg = Arg{Kind: ArgMask, Mask: mask}

	case CmdSetLayout:
		idx, err := p.layoutIndex(arg)
		if err != nil {
			return Action{}, fmt.Errorf("%s: %w", c, err)
		}
		a.Arg = Arg{Kind: ArgLayout, Layout: idx}
	}
	return a, nil
}

// ParseStackArg parses "+1", "-2", "prevsel", "0", "3" and "last".
// Signed numbers are relative moves; unsigned numbers are absolute indices.
func ParseStackArg(s string) (StackMode, int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return 0, 0, fmt.Errorf("missing stack argument")
	case "prevsel":
		return StackPrevSel, 0, nil
	case "last":
		return StackAbsolute, -1, nil
	}
	if s[0] == '+' || s[0] == '-' {
		n, err := strconv.Atoi(strings.TrimPrefix(s, "+"))
		if err != nil || n == 0 {
			return 0, 0, fmt.Errorf("invalid relative stack argument %q", s)
		}
		return StackRelative, n, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, 0, fmt.Errorf("invalid stack index %q", s)
	}
	return StackAbsolute, n, nil
}

func parseFloatArg(s string) (float64, bool, error) {
	if s == "" {
		return 0, false, fmt.Errorf("missing value")
	}
	rel := s[0] == '+' || s[0] == '-'
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid number %q", s)
	}
	return f, rel, nil
}

// ParseMask parses a tag mask. Accepted forms: "" (0), "all" or "~0" (every
// tag), a comma-separated list of 1-based tag numbers ("1,3"), or a hex
// mask ("0x1ff"). The result must lie within the n-tag mask.
func ParseMask(s string, n int) (uint32, error) {
	all := TagMask(n)
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return 0, nil
	case "all", "~0":
		return all, nil
	}
	if strings.HasPrefix(s, "0x") {
		v, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid mask %q", s)
		}
		if uint32(v)&^all != 0 {
			return 0, fmt.Errorf("mask %q has bits outside the %d configured tags", s, n)
		}
		return uint32(v), nil
	}

	var mask uint32
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		t, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("invalid tag %q", part)
		}
		if t < 1 || t > n {
			return 0, fmt.Errorf("tag %d out of range 1-%d", t, n)
		}
		mask |= 1 << uint(t-1)
	}
	return mask, nil
}

// FormatMask renders mask as a 1-based tag list, "all" for every tag.
func FormatMask(mask uint32, n int) string {
	if mask == 0 {
		return ""
	}
	if all := TagMask(n); all != 0 && mask == all {
		return "all"
	}
	var parts []string
	for i := 0; i < 32; i++ {
		if mask&(1<<uint(i)) != 0 {
			parts = append(parts, strconv.Itoa(i+1))
		}
	}
	return strings.Join(parts, ",")
}

func (p Parser) layoutIndex(s string) (int, error) {
	if s == "" {
		return -1, nil
	}
	for i, name := range p.Layouts {
		if strings.EqualFold(name, s) {
			return i, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n >= len(p.Layouts) {
			return 0, fmt.Errorf("layout index %d out of range", n)
		}
		return n, nil
	}
	return 0, fmt.Errorf("unknown layout %q", s)
}
