package wm

import (
	"testing"

	"github.com/1broseidon/tagtile/internal/dispatch"
	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/tiling"
	"github.com/google/go-cmp/cmp"
)

func TestExecute_SpawnSubstitutesMonitor(t *testing.T) {
	fx := newFixture(t, testSettings(), nil,
		display(0, 0, 0, 1920, 1080),
		display(1, 1920, 0, 1920, 1080),
	)
	fx.m.FocusMonitor(1)
	fx.m.Execute(dispatch.Action{
		Cmd: dispatch.CmdSpawn,
		Arg: dispatch.Arg{Kind: dispatch.ArgArgv, Argv: []string{"dmenu_run", "-m", "{monitor}"}},
	})
	want := [][]string{{"dmenu_run", "-m", "1"}}
	if diff := cmp.Diff(want, fx.spawn.calls); diff != "" {
		t.Fatalf("spawn mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_Quit(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	if !fx.m.Running() {
		t.Fatalf("new manager should be running")
	}
	fx.m.Execute(dispatch.Action{Cmd: dispatch.CmdQuit})
	if fx.m.Running() {
		t.Fatalf("quit did not stop the manager")
	}
}

func TestExecute_KillClient(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	fx.m.Execute(dispatch.Action{Cmd: dispatch.CmdKillClient})
	if len(fx.b.closed) != 0 {
		t.Fatalf("killclient without selection closed %v", fx.b.closed)
	}
	id := fx.add(4, "a")
	fx.m.Execute(dispatch.Action{Cmd: dispatch.CmdKillClient})
	if diff := cmp.Diff([]platform.WindowID{4}, fx.b.closed); diff != "" {
		t.Fatalf("closed mismatch (-want +got):\n%s", diff)
	}
	// The client stays managed until its window is destroyed.
	if _, ok := fx.m.Client(id); !ok {
		t.Fatalf("client detached before destroy")
	}
}

func TestExecute_ToggleFloating(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	id := fx.add(1, "a")
	fx.m.Execute(dispatch.Action{Cmd: dispatch.CmdToggleFloating})
	if !fx.client(id).Floating {
		t.Fatalf("togglefloating did not float the client")
	}
	fx.m.Execute(dispatch.Action{Cmd: dispatch.CmdToggleFloating})
	if fx.client(id).Floating {
		t.Fatalf("second togglefloating did not tile the client")
	}
}

func TestExecute_NoSelectionIsNoop(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	for _, cmd := range []dispatch.Command{
		dispatch.CmdZoom, dispatch.CmdToggleFloating, dispatch.CmdToggleFullscreen,
		dispatch.CmdTagMon, dispatch.CmdMoveMouse, dispatch.CmdResizeMouse,
	} {
		fx.m.Execute(dispatch.Action{Cmd: cmd})
		fx.m.Execute(stackAction(dispatch.CmdFocusStack, dispatch.StackRelative, 1))
		fx.m.Execute(stackAction(dispatch.CmdPushStack, dispatch.StackRelative, 1))
	}
	fx.m.Execute(dispatch.Action{Cmd: dispatch.CmdTag, Arg: dispatch.Arg{Kind: dispatch.ArgMask, Mask: 2}})
	if fx.m.Dragging() || len(fx.b.configured) != 0 {
		t.Fatalf("actions without a selection touched windows: %v", fx.b.configured)
	}
}

func TestFullscreen_SaveAndRestore(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	id := fx.add(1, "a")
	tiled := fx.client(id).Geom

	fx.m.Execute(dispatch.Action{Cmd: dispatch.CmdToggleFullscreen})
	c := fx.client(id)
	if !c.Fullscreen || c.Border != 0 || c.Geom != (tiling.Rect{Width: 1920, Height: 1080}) {
		t.Fatalf("fullscreen state = %+v", c)
	}
	if !fx.b.fullscreen[1] || fx.b.borders[1] != 0 {
		t.Fatalf("backend not told about fullscreen")
	}

	fx.m.HandleEvent(platform.FullscreenRequest{Window: 1, Action: platform.StateToggle})
	c = fx.client(id)
	if c.Fullscreen || c.Floating || c.Border != 1 || c.Geom != tiled {
		t.Fatalf("restored state = %+v, want tiled %+v", c, tiled)
	}
	if fx.b.fullscreen[1] {
		t.Fatalf("backend still fullscreen")
	}
}

func TestFullscreen_IgnoresBar(t *testing.T) {
	s := testSettings()
	s.BarHeight = 20
	fx := newFixture(t, s, nil)
	id := fx.add(1, "a")
	fx.m.SetFullscreen(id, platform.StateAdd)
	fx.m.SetFullscreen(id, platform.StateAdd)
	if got := fx.client(id).Geom; got != (tiling.Rect{Width: 1920, Height: 1080}) {
		t.Fatalf("fullscreen geometry = %+v", got)
	}
	fx.m.SetFullscreen(id, platform.StateRemove)
	if got := fx.client(id).Geom; got != (tiling.Rect{Y: 20, Width: 1918, Height: 1058}) {
		t.Fatalf("restored geometry = %+v", got)
	}
}

func TestActivateRequest_MarksUrgent(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	a := fx.add(1, "a")
	b := fx.add(2, "b")

	fx.m.HandleEvent(platform.ActivateRequest{Window: 2})
	if fx.client(b).Urgent {
		t.Fatalf("selected client must not become urgent")
	}
	fx.m.HandleEvent(platform.ActivateRequest{Window: 1})
	if !fx.client(a).Urgent || fx.b.colors[1] != urgColor {
		t.Fatalf("activate request should mark the client urgent")
	}
}

func TestReconfigure(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	id := fx.add(1, "a")

	s := testSettings()
	s.BorderPx = 3
	if err := fx.m.Reconfigure(s); err != nil {
		t.Fatalf("Reconfigure: %v", err)
	}
	if got := fx.client(id).Geom; got != (tiling.Rect{Width: 1914, Height: 1074}) {
		t.Fatalf("geometry after border change = %+v", got)
	}

	s.Tags = s.Tags[:5]
	if err := fx.m.Reconfigure(s); err == nil {
		t.Fatalf("changing the tag count should be refused")
	}
	s = testSettings()
	s.Layouts = s.Layouts[:2]
	if err := fx.m.Reconfigure(s); err == nil {
		t.Fatalf("changing the palette length should be refused")
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	fx.add(1, "a")
	fx.m.SetStatus("12:00")

	snap := fx.m.Snapshot()
	snap.Monitors[0].Clients[0] = 99
	snap.Tags[0] = "x"

	again := fx.m.Snapshot()
	if again.Monitors[0].Clients[0] == 99 || again.Tags[0] == "x" {
		t.Fatalf("snapshot shares memory with the manager")
	}
	if again.Status != "12:00" || again.Monitors[0].SelectedTitle != "a" {
		t.Fatalf("snapshot = %+v", again)
	}
	if diff := cmp.Diff("[]=", again.Monitors[0].LayoutSymbol); diff != "" {
		t.Fatalf("layout symbol (-want +got):\n%s", diff)
	}
}
