package wm

import (
	"slices"
	"testing"

	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/rules"
	"github.com/1broseidon/tagtile/internal/tiling"
	"github.com/google/go-cmp/cmp"
)

func TestDetach_ReselectsMostRecentlyAttached(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	a := fx.add(1, "a")
	b := fx.add(2, "b")
	c := fx.add(3, "c")

	if got := fx.m.Selected(); got != c {
		t.Fatalf("selected = %d, want %d", got, c)
	}
	fx.m.Detach(c)
	if got := fx.m.Selected(); got != b {
		t.Fatalf("after detach selected = %d, want %d", got, b)
	}
	if fx.b.focused != 2 {
		t.Fatalf("focused window = %d, want 2", fx.b.focused)
	}

	fx.m.Detach(b)
	if got := fx.m.Selected(); got != a {
		t.Fatalf("selected = %d, want %d", got, a)
	}
	fx.m.Detach(a)
	if got := fx.m.Selected(); got != 0 {
		t.Fatalf("selected = %d, want none", got)
	}
	if fx.b.focused != 0 {
		t.Fatalf("focus should return to root, got %d", fx.b.focused)
	}
}

func TestDetach_NonSelectedKeepsSelection(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	a := fx.add(1, "a")
	b := fx.add(2, "b")
	fx.m.Detach(a)
	if got := fx.m.Selected(); got != b {
		t.Fatalf("selected = %d, want %d", got, b)
	}
	if diff := cmp.Diff([]ClientID{b}, fx.m.ClientsOn(0)); diff != "" {
		t.Fatalf("ClientsOn mismatch (-want +got):\n%s", diff)
	}
}

func TestAttach_InsertsAtHeadAndTiles(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	a := fx.add(1, "a")
	b := fx.add(2, "b")

	if diff := cmp.Diff([]ClientID{b, a}, fx.m.ClientsOn(0)); diff != "" {
		t.Fatalf("client order mismatch (-want +got):\n%s", diff)
	}
	// b is the master: 1920*0.55 = 1056 wide, minus the border on each side.
	if got, want := fx.client(b).Geom, (tiling.Rect{X: 0, Y: 0, Width: 1054, Height: 1078}); got != want {
		t.Fatalf("master geometry = %+v, want %+v", got, want)
	}
	if got, want := fx.client(a).Geom, (tiling.Rect{X: 1056, Y: 0, Width: 862, Height: 1078}); got != want {
		t.Fatalf("stack geometry = %+v, want %+v", got, want)
	}
	if fx.b.colors[2] != selColor || fx.b.colors[1] != normColor {
		t.Fatalf("unexpected border colors: %v", fx.b.colors)
	}
	if diff := cmp.Diff([]platform.WindowID{2, 1}, fx.b.clientList); diff != "" {
		t.Fatalf("client list mismatch (-want +got):\n%s", diff)
	}
}

func TestAttach_RearrangesOnlyOwningMonitor(t *testing.T) {
	fx := newFixture(t, testSettings(), nil,
		display(0, 0, 0, 1920, 1080),
		display(1, 1920, 0, 1920, 1080),
	)
	fx.add(1, "a")
	fx.m.FocusMonitor(1)
	fx.b.configureLog = nil

	b := fx.add(2, "b")
	if slices.Contains(fx.b.configureLog, platform.WindowID(1)) {
		t.Fatalf("window on monitor 0 was reconfigured: %v", fx.b.configureLog)
	}
	if got := fx.client(b).Monitor; got != 1 {
		t.Fatalf("new client monitor = %d, want 1", got)
	}
}

func TestAttach_AppliesRules(t *testing.T) {
	s := testSettings()
	floating := true
	one := 1
	s.Rules = rules.NewMatcher([]rules.Rule{
		{Class: "Gimp", Floating: &floating},
		{Class: "Firefox", Tags: 1 << 8, Monitor: &one},
	})
	fx := newFixture(t, s, nil,
		display(0, 0, 0, 1920, 1080),
		display(1, 1920, 0, 1920, 1080),
	)

	gimp := fx.add(1, "Gimp")
	if c := fx.client(gimp); !c.Floating || c.Tags != 1 {
		t.Fatalf("gimp: floating=%v tags=%#x", c.Floating, c.Tags)
	}
	if got := fx.b.configured[1]; got != (tiling.Rect{X: 10, Y: 10, Width: 400, Height: 300}) {
		t.Fatalf("floating window should keep its geometry, got %+v", got)
	}

	ff := fx.add(2, "Firefox")
	c := fx.client(ff)
	if c.Tags != 1<<8 || c.Monitor != 1 {
		t.Fatalf("firefox: tags=%#x monitor=%d", c.Tags, c.Monitor)
	}
	if fx.m.Selected() != gimp {
		t.Fatalf("a client placed on a hidden tag must not steal focus")
	}
}

func TestAttach_ZeroMaskTakesCurrentView(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	fx.m.View(1 << 2)
	id := fx.add(1, "a")
	if got := fx.client(id).Tags; got != 1<<2 {
		t.Fatalf("tags = %#x, want %#x", got, 1<<2)
	}
}

func TestAttach_TransientInheritsParent(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	parent := fx.add(1, "app")
	fx.m.SetTags(parent, 0b11)
	dlg := fx.add(2, "dialog", func(i *platform.WindowInfo) { i.TransientFor = 1 })
	c := fx.client(dlg)
	if !c.Floating || c.Tags != 0b11 {
		t.Fatalf("transient: floating=%v tags=%#x", c.Floating, c.Tags)
	}
}

func TestAttach_FixedSizeFloats(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	id := fx.add(1, "fixed", func(i *platform.WindowInfo) { i.Fixed = true })
	if !fx.client(id).Floating {
		t.Fatalf("fixed-size client should float")
	}
	fx.m.SetFloating(id, false)
	if !fx.client(id).Floating {
		t.Fatalf("fixed-size client must stay floating")
	}
}

func TestAttach_Idempotent(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	id := fx.add(1, "a")
	again, err := fx.m.Attach(fx.b.infos[1])
	if err != nil || again != id {
		t.Fatalf("second Attach = %d, %v; want %d", again, err, id)
	}
	if len(fx.m.ClientsOn(0)) != 1 {
		t.Fatalf("window attached twice")
	}
}

func TestWindowGone_IsImplicitDetach(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	a := fx.add(1, "a")
	b := fx.add(2, "b")

	fx.b.gone[2] = true
	fx.m.IncNMaster(1)

	if _, ok := fx.m.Client(b); ok {
		t.Fatalf("client with vanished window should be detached")
	}
	if got := fx.m.Selected(); got != a {
		t.Fatalf("selected = %d, want %d", got, a)
	}
}

func TestSetFloating_RearrangesTiled(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	a := fx.add(1, "a")
	b := fx.add(2, "b")
	fx.m.SetFloating(b, true)

	if got, want := fx.client(a).Geom, (tiling.Rect{Width: 1918, Height: 1078}); got != want {
		t.Fatalf("remaining tiled client = %+v, want %+v", got, want)
	}
	if !fx.client(b).Floating {
		t.Fatalf("b should be floating")
	}
}

func TestHandleEvent_MapAndDestroy(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	fx.b.infos[7] = platform.WindowInfo{ID: 7, Class: "st", Bounds: tiling.Rect{Width: 100, Height: 100}}
	fx.b.infos[8] = platform.WindowInfo{ID: 8, OverrideRedirect: true}

	fx.m.HandleEvent(platform.MapRequest{Window: 7})
	fx.m.HandleEvent(platform.MapRequest{Window: 8})
	if len(fx.m.ClientsOn(0)) != 1 || !fx.b.managed[7] {
		t.Fatalf("expected only window 7 to be managed, got %v", fx.m.ClientsOn(0))
	}

	fx.m.HandleEvent(platform.Destroyed{Window: 7})
	if len(fx.m.ClientsOn(0)) != 0 || fx.b.managed[7] {
		t.Fatalf("window 7 should be detached")
	}
}

func TestHandleEvent_ConfigureRequest(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	tiled := fx.add(1, "a")
	before := fx.client(tiled).Geom

	fx.m.HandleEvent(platform.ConfigureRequest{
		Window: 1,
		Rect:   tiling.Rect{X: 5, Y: 5, Width: 50, Height: 50},
		Fields: platform.ConfigX | platform.ConfigY | platform.ConfigWidth | platform.ConfigHeight,
	})
	if got := fx.client(tiled).Geom; got != before {
		t.Fatalf("tiled client moved by request: %+v", got)
	}

	fx.m.SetFloating(tiled, true)
	fx.m.HandleEvent(platform.ConfigureRequest{
		Window: 1,
		Rect:   tiling.Rect{Width: 640, Height: 480},
		Fields: platform.ConfigWidth | platform.ConfigHeight,
	})
	if got := fx.client(tiled).Geom; got.Width != 640 || got.Height != 480 {
		t.Fatalf("floating client request not applied: %+v", got)
	}

	fx.m.HandleEvent(platform.ConfigureRequest{Window: 99, Fields: platform.ConfigX})
	if len(fx.b.forwarded) != 1 || fx.b.forwarded[0].Window != 99 {
		t.Fatalf("unmanaged request should be forwarded, got %+v", fx.b.forwarded)
	}
}

func TestHandleEvent_TitleAndUrgency(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	a := fx.add(1, "a")
	fx.add(2, "b")

	info := fx.b.infos[1]
	info.Title = "new title"
	info.Urgent = true
	fx.b.infos[1] = info
	fx.m.HandleEvent(platform.PropertyChanged{Window: 1, Property: platform.PropTitle})
	fx.m.HandleEvent(platform.PropertyChanged{Window: 1, Property: platform.PropHints})

	c := fx.client(a)
	if c.Title != "new title" || !c.Urgent {
		t.Fatalf("title=%q urgent=%v", c.Title, c.Urgent)
	}
	if fx.m.Snapshot().Monitors[0].UrgentTags != 1 {
		t.Fatalf("urgent tag mask not reported")
	}
	fx.m.Focus(a)
	if fx.client(a).Urgent {
		t.Fatalf("focusing must clear urgency")
	}
}

func TestAdopt_ExistingWindows(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	fx.b.infos[5] = platform.WindowInfo{ID: 5, Class: "dlg", TransientFor: 6, Bounds: tiling.Rect{Width: 10, Height: 10}}
	fx.b.infos[6] = platform.WindowInfo{ID: 6, Class: "app", Bounds: tiling.Rect{Width: 10, Height: 10}}

	if err := fx.m.Adopt(); err != nil {
		t.Fatalf("Adopt: %v", err)
	}
	id, ok := fx.m.ClientByWindow(5)
	if !ok {
		t.Fatalf("transient not adopted")
	}
	if !fx.client(id).Floating {
		t.Fatalf("transient adopted after its parent should float")
	}
}
