package dispatch

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustKey(t *testing.T, s string) KeyTrigger {
	t.Helper()
	trig, err := ParseKeyTrigger(s, Mod1)
	if err != nil {
		t.Fatalf("ParseKeyTrigger(%q): %v", s, err)
	}
	return trig
}

func TestParseKeyTrigger(t *testing.T) {
	tests := []struct {
		in   string
		want KeyTrigger
	}{
		{"Mod1-Shift-Return", KeyTrigger{Mods: Mod1 | ModShift, Key: "Return"}},
		{"MODKEY-j", KeyTrigger{Mods: Mod1, Key: "j"}},
		{"super-ctrl-space", KeyTrigger{Mods: Mod4 | ModControl, Key: "space"}},
		{"Mod1--", KeyTrigger{Mods: Mod1, Key: "minus"}},
		{"F1", KeyTrigger{Key: "F1"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKeyTrigger(tt.in, Mod1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseKeyTrigger_Errors(t *testing.T) {
	for _, in := range []string{"", "Mod1-", "Hyper-x"} {
		if _, err := ParseKeyTrigger(in, Mod1); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
	if _, err := ParseKeyTrigger("MODKEY-x", 0); err == nil {
		t.Fatalf("expected error for MODKEY without modkey")
	}
}

func TestKeyTriggerString(t *testing.T) {
	trig := KeyTrigger{Mods: ModShift | Mod1, Key: "c"}
	if got := trig.String(); got != "Shift-Mod1-c" {
		t.Fatalf("String() = %q", got)
	}
}

func TestModifiersClean(t *testing.T) {
	m := Mod1 | ModLock | Mod2 | ModShift
	if got := m.Clean(Mod2); got != Mod1|ModShift {
		t.Fatalf("Clean = %v", got)
	}
}

func TestParseButtonTrigger(t *testing.T) {
	got, err := ParseButtonTrigger(RegionClientWin, "MODKEY-Button3", Mod1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := ButtonTrigger{Region: RegionClientWin, Mods: Mod1, Button: 3}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if _, err := ParseButtonTrigger(RegionTagBar, "9", Mod1); err == nil {
		t.Fatalf("expected error for button 9")
	}
}

func TestParser(t *testing.T) {
	p := Parser{NumTags: 9, Layouts: []string{"tile", "floating", "monocle", "spiral", "dwindle"}}

	tests := []struct {
		cmd, arg string
		argv     []string
		want     Action
	}{
		{"spawn", "", []string{"st"}, Action{Cmd: CmdSpawn, Arg: Arg{Kind: ArgArgv, Argv: []string{"st"}}}},
		{"zoom", "", nil, Action{Cmd: CmdZoom}},
		{"focusstack", "+1", nil, Action{Cmd: CmdFocusStack, Arg: Arg{Kind: ArgStack, Stack: StackRelative, N: 1}}},
		{"focusstack", "-1", nil, Action{Cmd: CmdFocusStack, Arg: Arg{Kind: ArgStack, Stack: StackRelative, N: -1}}},
		{"pushstack", "last", nil, Action{Cmd: CmdPushStack, Arg: Arg{Kind: ArgStack, Stack: StackAbsolute, N: -1}}},
		{"pushstack", "2", nil, Action{Cmd: CmdPushStack, Arg: Arg{Kind: ArgStack, Stack: StackAbsolute, N: 2}}},
		{"focusstack", "PrevSel", nil, Action{Cmd: CmdFocusStack, Arg: Arg{Kind: ArgStack, Stack: StackPrevSel}}},
		{"incnmaster", "-1", nil, Action{Cmd: CmdIncNMaster, Arg: Arg{Kind: ArgInt, Int: -1}}},
		{"setmfact", "+0.05", nil, Action{Cmd: CmdSetMFact, Arg: Arg{Kind: ArgFloat, Float: 0.05, Relative: true}}},
		{"setmfact", "0.6", nil, Action{Cmd: CmdSetMFact, Arg: Arg{Kind: ArgFloat, Float: 0.6}}},
		{"view", "", nil, Action{Cmd: CmdView, Arg: Arg{Kind: ArgMask}}},
		{"view", "all", nil, Action{Cmd: CmdView, Arg: Arg{Kind: ArgMask, Mask: 0x1ff}}},
		{"tag", "1,3", nil, Action{Cmd: CmdTag, Arg: Arg{Kind: ArgMask, Mask: 0b101}}},
		{"setlayout", "monocle", nil, Action{Cmd: CmdSetLayout, Arg: Arg{Kind: ArgLayout, Layout: 2}}},
		{"setlayout", "", nil, Action{Cmd: CmdSetLayout, Arg: Arg{Kind: ArgLayout, Layout: -1}}},
		{"focusmon", "+1", nil, Action{Cmd: CmdFocusMon, Arg: Arg{Kind: ArgInt, Int: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.cmd+" "+tt.arg, func(t *testing.T) {
			got, err := p.Parse(tt.cmd, tt.arg, tt.argv)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Parse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParser_Errors(t *testing.T) {
	p := Parser{NumTags: 9, Layouts: []string{"tile"}}
	tests := []struct{ cmd, arg string }{
		{"bogus", ""},
		{"spawn", ""},
		{"zoom", "1"},
		{"setmfact", "1.5"},
		{"setmfact", "abc"},
		{"view", "10"},
		{"view", "0x200"},
		{"setlayout", "spiral"},
		{"focusstack", ""},
		{"incnmaster", "0"},
	}
	for _, tt := range tests {
		if _, err := p.Parse(tt.cmd, tt.arg, nil); err == nil {
			t.Fatalf("expected error for %s %q", tt.cmd, tt.arg)
		}
	}
}

func TestMaskRoundTrip(t *testing.T) {
	for _, s := range []string{"1", "2,5,9", "all"} {
		m, err := ParseMask(s, 9)
		if err != nil {
			t.Fatalf("ParseMask(%q): %v", s, err)
		}
		if got := FormatMask(m, 9); got != s {
			t.Fatalf("FormatMask(ParseMask(%q)) = %q", s, got)
		}
	}
}

func TestTable_FirstMatchAndMiss(t *testing.T) {
	zoom := Action{Cmd: CmdZoom}
	quit := Action{Cmd: CmdQuit}
	tbl, err := NewTable([]KeyBinding{
		{Trigger: mustKey(t, "MODKEY-Return"), Action: zoom},
		{Trigger: mustKey(t, "MODKEY-Shift-q"), Action: quit},
	}, nil)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	got, ok := tbl.LookupKey(KeyTrigger{Mods: Mod1, Key: "Return"})
	if !ok || got.Cmd != CmdZoom {
		t.Fatalf("LookupKey = %v, %v", got, ok)
	}
	// Extra modifiers must not match.
	if _, ok := tbl.LookupKey(KeyTrigger{Mods: Mod1 | ModShift, Key: "Return"}); ok {
		t.Fatalf("expected no match with extra modifier")
	}
	if _, ok := tbl.LookupKey(KeyTrigger{Key: "x"}); ok {
		t.Fatalf("expected unmatched key to be ignored")
	}
}

func TestNewTable_Duplicates(t *testing.T) {
	k := mustKey(t, "MODKEY-j")
	_, err := NewTable([]KeyBinding{
		{Trigger: k, Action: Action{Cmd: CmdZoom}},
		{Trigger: k, Action: Action{Cmd: CmdQuit}},
	}, nil)
	if err == nil || !strings.Contains(err.Error(), "duplicates") {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	b := ButtonTrigger{Region: RegionClientWin, Mods: Mod1, Button: 1}
	_, err = NewTable(nil, []ButtonBinding{
		{Trigger: b, Action: Action{Cmd: CmdMoveMouse}},
		{Trigger: b, Action: Action{Cmd: CmdResizeMouse}},
	})
	if err == nil {
		t.Fatalf("expected duplicate button error")
	}
}

func TestNewTable_EmptyMaskOnlyOnTagBar(t *testing.T) {
	tagAction := Action{Cmd: CmdTag, Arg: Arg{Kind: ArgMask}}
	if _, err := NewTable([]KeyBinding{{Trigger: KeyTrigger{Key: "t"}, Action: tagAction}}, nil); err == nil {
		t.Fatalf("expected error for tag 0 on a key")
	}
	if _, err := NewTable(nil, []ButtonBinding{{Trigger: ButtonTrigger{Region: RegionTagBar, Button: 1}, Action: tagAction}}); err != nil {
		t.Fatalf("tag bar binding should accept empty mask: %v", err)
	}
	view := Action{Cmd: CmdView, Arg: Arg{Kind: ArgMask}}
	if _, err := NewTable([]KeyBinding{{Trigger: KeyTrigger{Key: "Tab"}, Action: view}}, nil); err != nil {
		t.Fatalf("view 0 is the previous view and must be accepted: %v", err)
	}
}

func TestTable_ClickSubstitutesTag(t *testing.T) {
	tbl, err := NewTable(nil, []ButtonBinding{
		{Trigger: ButtonTrigger{Region: RegionTagBar, Button: 1}, Action: Action{Cmd: CmdView, Arg: Arg{Kind: ArgMask}}},
		{Trigger: ButtonTrigger{Region: RegionTagBar, Button: 3}, Action: Action{Cmd: CmdToggleView, Arg: Arg{Kind: ArgMask, Mask: 1}}},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	a, ok := tbl.Click(ButtonTrigger{Region: RegionTagBar, Button: 1}, 4)
	if !ok || a.Arg.Mask != 1<<4 {
		t.Fatalf("Click = %+v, %v; want mask %#x", a, ok, 1<<4)
	}
	a, ok = tbl.Click(ButtonTrigger{Region: RegionTagBar, Button: 3}, 4)
	if !ok || a.Arg.Mask != 1 {
		t.Fatalf("explicit mask should be kept, got %#x", a.Arg.Mask)
	}
	if _, ok := tbl.Click(ButtonTrigger{Region: RegionRootWin, Button: 1}, 0); ok {
		t.Fatalf("expected no match on root window")
	}
}

func TestTable_ReturnsCopies(t *testing.T) {
	tbl, err := NewTable([]KeyBinding{{
		Trigger: KeyTrigger{Key: "Return"},
		Action:  Action{Cmd: CmdSpawn, Arg: Arg{Kind: ArgArgv, Argv: []string{"st"}}},
	}}, nil)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	a, _ := tbl.LookupKey(KeyTrigger{Key: "Return"})
	a.Arg.Argv[0] = "xterm"
	b, _ := tbl.LookupKey(KeyTrigger{Key: "Return"})
	if b.Arg.Argv[0] != "st" {
		t.Fatalf("table mutated through returned action")
	}
}

func TestParseCommand(t *testing.T) {
	for _, name := range CommandNames() {
		c, err := ParseCommand(name)
		if err != nil {
			t.Fatalf("ParseCommand(%q): %v", name, err)
		}
		if c.String() != name {
			t.Fatalf("round trip %q -> %q", name, c.String())
		}
	}
	if _, err := ParseCommand("none"); err == nil {
		t.Fatalf("none must not be a valid command")
	}
}
