package wm

import (
	"testing"

	"github.com/1broseidon/tagtile/internal/dispatch"
	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/tiling"
)

var (
	moveMouse   = dispatch.Action{Cmd: dispatch.CmdMoveMouse}
	resizeMouse = dispatch.Action{Cmd: dispatch.CmdResizeMouse}
)

func floatingAt(t *testing.T, fx *fixture, w platform.WindowID, r tiling.Rect) ClientID {
	t.Helper()
	id := fx.add(w, "float")
	fx.m.SetFloating(id, true)
	fx.m.SetGeometry(id, r)
	return id
}

func TestDrag_MoveSnapsToEdge(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	id := floatingAt(t, fx, 1, tiling.Rect{X: 100, Y: 100, Width: 400, Height: 300})
	fx.b.pointerX, fx.b.pointerY = 200, 200

	fx.m.Execute(moveMouse)
	if !fx.m.Dragging() {
		t.Fatalf("drag not started")
	}

	fx.m.HandleEvent(platform.DragMotion{X: 210, Y: 205})
	if got := fx.client(id).Geom; got != (tiling.Rect{X: 110, Y: 105, Width: 400, Height: 300}) {
		t.Fatalf("free move = %+v", got)
	}

	fx.m.HandleEvent(platform.DragMotion{X: 120, Y: 120})
	if got := fx.client(id).Geom; got != (tiling.Rect{Width: 400, Height: 300}) {
		t.Fatalf("move near the corner should snap, got %+v", got)
	}

	fx.m.HandleEvent(platform.DragEnd{X: 120, Y: 120})
	if fx.m.Dragging() {
		t.Fatalf("drag still active after end")
	}
}

func TestDrag_Resize(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	id := floatingAt(t, fx, 1, tiling.Rect{X: 100, Y: 100, Width: 400, Height: 300})
	fx.b.pointerX, fx.b.pointerY = 501, 401

	fx.m.Execute(resizeMouse)
	fx.m.HandleEvent(platform.DragMotion{X: 601, Y: 451})
	if got := fx.client(id).Geom; got != (tiling.Rect{X: 100, Y: 100, Width: 500, Height: 350}) {
		t.Fatalf("resize = %+v", got)
	}

	// The right edge lands within the snap distance of the screen edge.
	fx.m.HandleEvent(platform.DragEnd{X: 1900, Y: 451})
	if got := fx.client(id).Geom; got.X+got.Width+2 != 1920 {
		t.Fatalf("resize should snap to the right edge, got %+v", got)
	}
}

func TestDrag_TiledFloatsAfterPull(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	fx.add(1, "a")
	b := fx.add(2, "b")
	fx.b.pointerX, fx.b.pointerY = 500, 500

	fx.m.Execute(moveMouse)
	fx.m.HandleEvent(platform.DragMotion{X: 510, Y: 510})
	if fx.client(b).Floating {
		t.Fatalf("small pull must not float a tiled client")
	}
	if got := fx.client(b).Geom; got != (tiling.Rect{Width: 1054, Height: 1078}) {
		t.Fatalf("tiled client moved by small pull: %+v", got)
	}

	fx.m.HandleEvent(platform.DragMotion{X: 600, Y: 500})
	c := fx.client(b)
	if !c.Floating {
		t.Fatalf("client should float once pulled past the snap distance")
	}
	if c.Geom.X != 100 {
		t.Fatalf("geometry = %+v, want x 100", c.Geom)
	}
	fx.m.HandleEvent(platform.DragEnd{X: 600, Y: 500})
}

func TestDrag_DropOnOtherMonitor(t *testing.T) {
	fx := newFixture(t, testSettings(), nil,
		display(0, 0, 0, 1920, 1080),
		display(1, 1920, 0, 1920, 1080),
	)
	id := floatingAt(t, fx, 1, tiling.Rect{X: 100, Y: 100, Width: 400, Height: 300})
	fx.b.pointerX, fx.b.pointerY = 200, 200

	fx.m.Execute(moveMouse)
	fx.m.HandleEvent(platform.DragEnd{X: 2200, Y: 200})

	c := fx.client(id)
	if c.Monitor != 1 {
		t.Fatalf("client monitor = %d, want 1", c.Monitor)
	}
	if c.Geom.X != 2100 {
		t.Fatalf("dropped geometry = %+v, want x 2100", c.Geom)
	}
	if fx.m.SelectedMonitor() != 1 || fx.m.Selected() != id {
		t.Fatalf("monitor 1 should be selected with the dropped client")
	}
}

func TestDrag_NotForFullscreen(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	id := fx.add(1, "a")
	fx.m.SetFullscreen(id, platform.StateAdd)
	fx.m.Execute(moveMouse)
	if fx.m.Dragging() {
		t.Fatalf("fullscreen clients cannot be dragged")
	}
}

func TestDrag_CanceledWhenClientGoes(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	id := floatingAt(t, fx, 1, tiling.Rect{X: 100, Y: 100, Width: 400, Height: 300})
	fx.m.Execute(moveMouse)
	fx.m.Detach(id)
	if fx.m.Dragging() {
		t.Fatalf("drag should end with its client")
	}
	fx.m.HandleEvent(platform.DragMotion{X: 5, Y: 5})
}
