// Package dispatch maps input triggers to window-manager commands.
package dispatch

import (
	"fmt"
	"strings"
)

// Command identifies a core operation. The set is closed; the control loop
// switches over it.
type Command int

const (
	CmdNone Command = iota
	CmdSpawn
	CmdToggleBar
	CmdFocusStack
	CmdPushStack
	CmdIncNMaster
	CmdSetMFact
	CmdZoom
	CmdView
	CmdToggleView
	CmdTag
	CmdToggleTag
	CmdKillClient
	CmdSetLayout
	CmdToggleFloating
	CmdToggleFullscreen
	CmdFocusMon
	CmdTagMon
	CmdMoveMouse
	CmdResizeMouse
	CmdQuit
)

var commandNames = []string{
	CmdNone:             "none",
	CmdSpawn:            "spawn",
	CmdToggleBar:        "togglebar",
	CmdFocusStack:       "focusstack",
	CmdPushStack:        "pushstack",
	CmdIncNMaster:       "incnmaster",
	CmdSetMFact:         "setmfact",
	CmdZoom:             "zoom",
	CmdView:             "view",
	CmdToggleView:       "toggleview",
	CmdTag:              "tag",
	CmdToggleTag:        "toggletag",
	CmdKillClient:       "killclient",
	CmdSetLayout:        "setlayout",
	CmdToggleFloating:   "togglefloating",
	CmdToggleFullscreen: "togglefullscreen",
	CmdFocusMon:         "focusmon",
	CmdTagMon:           "tagmon",
	CmdMoveMouse:        "movemouse",
	CmdResizeMouse:      "resizemouse",
	CmdQuit:             "quit",
}

func (c Command) String() string {
	if c >= 0 && int(c) < len(commandNames) {
		return commandNames[c]
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// ParseCommand resolves a command name as written in config or IPC requests.
func ParseCommand(name string) (Command, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range commandNames {
		if i == int(CmdNone) {
			continue
		}
		if n == name {
			return Command(i), nil
		}
	}
	return CmdNone, fmt.Errorf("unknown command %q", name)
}

// CommandNames lists every valid command name.
func CommandNames() []string {
	return append([]string(nil), commandNames[1:]...)
}

// ArgKind tells which field of Arg is meaningful.
type ArgKind int

const (
	ArgNone ArgKind = iota
	ArgInt
	ArgFloat
	ArgMask
	ArgLayout
	ArgStack
	ArgArgv
)

// StackMode selects how a focusstack/pushstack argument is interpreted.
type StackMode int

const (
	// StackRelative moves N positions through the visible clients, wrapping.
	StackRelative StackMode = iota
	// StackAbsolute selects the Nth visible client; negative N counts from the end.
	StackAbsolute
	// StackPrevSel selects the most recently focused other visible client.
	StackPrevSel
)

// Arg is the typed argument attached to a binding.
type Arg struct {
	Kind ArgKind

	// Int is a delta for incnmaster/focusmon/tagmon.
	Int int
	// Float is a delta when Relative, else an absolute master fraction.
	Float    float64
	Relative bool
	// Mask is a tag mask; 0 means "previous view" or "clicked tag".
	Mask uint32
	// Layout is a palette index; -1 toggles to the previous layout.
	Layout int
	Stack  StackMode
	N      int
	Argv   []string
}

// Action is a command paired with its argument.
type Action struct {
	Cmd Command
	Arg Arg
}

func (a Action) String() string {
	switch a.Arg.Kind {
	case ArgInt:
		return fmt.Sprintf("%s %+d", a.Cmd, a.Arg.Int)
	case ArgFloat:
		if a.Arg.Relative {
			return fmt.Sprintf("%s %+.2f", a.Cmd, a.Arg.Float)
		}
		return fmt.Sprintf("%s %.2f", a.Cmd, a.Arg.Float)
	case ArgMask:
		return fmt.Sprintf("%s %#x", a.Cmd, a.Arg.Mask)
	case ArgLayout:
		return fmt.Sprintf("%s %d", a.Cmd, a.Arg.Layout)
	case ArgStack:
		switch a.Arg.Stack {
		case StackPrevSel:
			return fmt.Sprintf("%s prevsel", a.Cmd)
		case StackRelative:
			return fmt.Sprintf("%s %+d", a.Cmd, a.Arg.N)
		}
		return fmt.Sprintf("%s @%d", a.Cmd, a.Arg.N)
	case ArgArgv:
		return fmt.Sprintf("%s %s", a.Cmd, strings.Join(a.Arg.Argv, " "))
	}
	return a.Cmd.String()
}
