package palette

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/tagtile/internal/wm"
)

func TestRofiFormatItem_UsesSingleNullSeparator(t *testing.T) {
	b := newRofi()

	out := b.formatItem(Item{
		Label:    "Header",
		IsHeader: true,
		Icon:     "folder",
		Meta:     "meta",
	})

	if got := strings.Count(out, "\x00"); got != 1 {
		t.Fatalf("expected exactly 1 NUL separator, got %d (%q)", got, out)
	}
	if !strings.Contains(out, "\x00nonselectable\x1ftrue") {
		t.Fatalf("expected nonselectable property, got %q", out)
	}
	if !strings.Contains(out, "icon\x1ffolder") || !strings.Contains(out, "meta\x1fmeta") {
		t.Fatalf("expected icon/meta attributes, got %q", out)
	}
	if !strings.HasPrefix(out, "<b>Header</b>") {
		t.Fatalf("expected bold markup for header, got %q", out)
	}
}

func TestRofiFormatItem_EscapesMarkup(t *testing.T) {
	out := newRofi().formatItem(Item{Label: "a <b> & c"})
	if out != "a &lt;b&gt; &amp; c" {
		t.Fatalf("label not escaped: %q", out)
	}
}

func TestDmenuFormatItem_Plain(t *testing.T) {
	out := newDmenu().formatItem(Item{Label: " vim\n", IsHeader: true, Icon: "st"})
	if out != "vim" {
		t.Fatalf("formatItem = %q, want plain label", out)
	}
}

func TestRofiBuildArgs(t *testing.T) {
	b := newRofi()

	_, states := b.formatInput([]Item{
		{Label: "h", IsHeader: true},
		{Label: "a", IsActive: true},
		{Label: "b", IsUrgent: true},
	})
	args := b.buildArgs(Request{Prompt: "prompt", Message: "message", Monitor: 1}, states)

	for _, pair := range [][2]string{
		{"-format", "i"},
		{"-p", "prompt"},
		{"-m", "1"},
		{"-a", "1"},
		{"-u", "2"},
		{"-selected-row", "1"},
		{"-mesg", "message"},
	} {
		if !containsArgs(args, pair[0], pair[1]) {
			t.Fatalf("expected %s %s in args, got %v", pair[0], pair[1], args)
		}
	}
	if !containsArg(args, "-no-custom") {
		t.Fatalf("expected -no-custom in args, got %v", args)
	}
}

func TestDmenuBuildArgs(t *testing.T) {
	b := newDmenu()
	got := b.buildArgs(Request{Prompt: "tagtile", Monitor: 0}, rowStates{})
	if diff := cmp.Diff([]string{"-i", "-p", "tagtile", "-m", "0"}, got); diff != "" {
		t.Fatalf("args (-want +got):\n%s", diff)
	}
	got = b.buildArgs(Request{Monitor: -1}, rowStates{})
	if diff := cmp.Diff([]string{"-i"}, got); diff != "" {
		t.Fatalf("args (-want +got):\n%s", diff)
	}
}

func TestFormatInput_DisambiguatesDuplicateLabels(t *testing.T) {
	b := newDmenu()
	items := []Item{
		{Label: "Dup", Action: "a"},
		{Label: "Dup", Action: "b"},
	}

	_, _ = b.formatInput(items)
	if items[0].Label != "Dup" {
		t.Fatalf("expected first label unchanged, got %q", items[0].Label)
	}
	if items[1].Label != "Dup (2)" {
		t.Fatalf("expected second label disambiguated, got %q", items[1].Label)
	}
}

func TestFormatInput_RofiKeepsDuplicateLabels(t *testing.T) {
	b := newRofi()
	items := []Item{
		{Label: "Dup", Action: "a"},
		{Label: "Dup", Action: "b"},
	}

	_, _ = b.formatInput(items)
	if items[0].Label != "Dup" || items[1].Label != "Dup" {
		t.Fatalf("expected labels unchanged for index backend, got %#v", items)
	}
}

func TestShow_ParsesSelection(t *testing.T) {
	items := []Item{{Label: "a", Action: "view 1"}, {Label: "b", Action: "view 2"}}

	rofi := newRofi()
	rofi.run = func(name string, args []string, input string) (string, error) {
		if name != "rofi" || !strings.Contains(input, "a\nb") {
			t.Fatalf("unexpected launcher call %s %v %q", name, args, input)
		}
		return "1", nil
	}
	got, err := rofi.Show(Request{Items: items, Monitor: -1})
	if err != nil || got.Action != "view 2" {
		t.Fatalf("rofi Show = %+v, %v", got, err)
	}

	dmenu := newDmenu()
	dmenu.run = func(string, []string, string) (string, error) { return "a", nil }
	got, err = dmenu.Show(Request{Items: items, Monitor: -1})
	if err != nil || got.Action != "view 1" {
		t.Fatalf("dmenu Show = %+v, %v", got, err)
	}

	dmenu.run = func(string, []string, string) (string, error) { return "", nil }
	if _, err := dmenu.Show(Request{Items: items}); !errors.Is(err, ErrCancelled) {
		t.Fatalf("empty selection error = %v, want ErrCancelled", err)
	}

	rofi.run = func(string, []string, string) (string, error) { return "7", nil }
	if _, err := rofi.Show(Request{Items: items}); err == nil {
		t.Fatalf("expected out of range error")
	}
}

type fakeBackend struct {
	picks    []string // labels to pick, in order; "" cancels
	requests []Request
}

func (f *fakeBackend) Show(req Request) (Item, error) {
	f.requests = append(f.requests, req)
	if len(f.picks) == 0 {
		return Item{}, ErrCancelled
	}
	pick := f.picks[0]
	f.picks = f.picks[1:]
	if pick == "" {
		return Item{}, ErrCancelled
	}
	for _, it := range req.Items {
		if it.Label == pick {
			return it, nil
		}
	}
	return Item{}, errors.New("no item " + pick)
}

func TestMenu_Navigation(t *testing.T) {
	items := []MenuItem{
		{Label: "Header", IsHeader: true},
		{Label: "Layout", Submenu: []MenuItem{{Label: "tile", Action: "setlayout 0"}}},
		{Label: "Zoom", Action: "zoom"},
	}

	tests := []struct {
		name    string
		picks   []string
		want    string
		wantErr error
	}{
		{name: "leaf", picks: []string{"Zoom"}, want: "zoom"},
		{name: "header is ignored", picks: []string{"Header", "Zoom"}, want: "zoom"},
		{name: "submenu", picks: []string{"Layout →", "tile"}, want: "setlayout 0"},
		{name: "back", picks: []string{"Layout →", "← Back", "Zoom"}, want: "zoom"},
		{name: "escape in submenu", picks: []string{"Layout →", "", "Zoom"}, want: "zoom"},
		{name: "escape", picks: []string{""}, wantErr: ErrCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{picks: tt.picks}
			got, err := NewMenu(b, items, 2).Show()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Show error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("Show = %q, want %q", got, tt.want)
			}
			if b.requests[0].Monitor != 2 || b.requests[0].Prompt != "tagtile" {
				t.Fatalf("unexpected first request %+v", b.requests[0])
			}
		})
	}
}

func TestEntries(t *testing.T) {
	snap := wm.Snapshot{
		SelectedMonitor: 0,
		Tags:            []string{"web", "code"},
		Layouts:         []wm.LayoutInfo{{Index: 0, Symbol: "[]=", Kind: "tile"}, {Index: 1, Symbol: "[M]", Kind: "monocle"}},
		Monitors: []wm.MonitorState{
			{Index: 0, SelectedTags: 0b10, UrgentTags: 0b01, LayoutIndex: 1, Selected: 2},
		},
		Clients: []wm.ClientState{
			{ID: 1, Title: "firefox", Class: "Firefox", Tags: 0b01, Urgent: true},
			{ID: 2, Title: "vim", Class: "st", Tags: 0b11},
			{ID: 3, Title: "scratch", Class: "st"},
		},
	}
	items := Entries(snap)

	find := func(label string) MenuItem {
		t.Helper()
		for _, it := range items {
			if it.Label == label {
				return it
			}
		}
		t.Fatalf("no menu item %q", label)
		return MenuItem{}
	}

	view := find("View tag")
	if diff := cmp.Diff([]MenuItem{
		{Label: "web", Action: "view 1", IsUrgent: true},
		{Label: "code", Action: "view 2", IsActive: true},
		{Label: "All tags", Action: "view all"},
	}, view.Submenu); diff != "" {
		t.Fatalf("view submenu (-want +got):\n%s", diff)
	}

	layouts := find("Layout").Submenu
	if len(layouts) != 2 || !layouts[1].IsActive || layouts[1].Action != "setlayout 1" {
		t.Fatalf("unexpected layouts %+v", layouts)
	}

	windows := find("Windows").Submenu
	var actions []string
	for _, w := range windows {
		actions = append(actions, w.Action)
	}
	if diff := cmp.Diff([]string{"view 1", "view all"}, actions); diff != "" {
		t.Fatalf("window actions (-want +got):\n%s", diff)
	}
	if !windows[1].IsActive || !windows[0].IsUrgent {
		t.Fatalf("window states not carried: %+v", windows)
	}

	find("Send to tag")
	if find("Quit tagtile").Action != "quit" {
		t.Fatalf("quit entry has wrong action")
	}

	// Without a focused window there are no window actions.
	snap.Monitors[0].Selected = 0
	for _, it := range Entries(snap) {
		if it.Label == "Send to tag" || it.Label == "Zoom" {
			t.Fatalf("unexpected window entry %q", it.Label)
		}
	}
}

func TestSplitAction(t *testing.T) {
	tests := []struct {
		in, cmd, arg string
	}{
		{"zoom", "zoom", ""},
		{"view 2", "view", "2"},
		{" focusmon +1 ", "focusmon", "+1"},
	}
	for _, tt := range tests {
		cmd, arg := SplitAction(tt.in)
		if cmd != tt.cmd || arg != tt.arg {
			t.Errorf("SplitAction(%q) = %q, %q", tt.in, cmd, arg)
		}
	}
}

func containsArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func containsArgs(args []string, a string, b string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == a && args[i+1] == b {
			return true
		}
	}
	return false
}
