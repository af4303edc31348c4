package wm

import "github.com/1broseidon/tagtile/internal/tiling"

type dragKind int

const (
	dragMove dragKind = iota
	dragResize
)

type dragState struct {
	client ClientID
	kind   dragKind
	startX int
	startY int
	orig   tiling.Rect
}

// beginDrag starts moving or resizing the selected client with the pointer.
// Pointer motion arrives through DragMotion and DragEnd events.
func (m *Manager) beginDrag(kind dragKind) {
	mon := m.monitors[m.selmon]
	c := m.client(mon.Sel)
	if c == nil || c.Fullscreen {
		return
	}
	m.restack(mon)
	x, y, err := m.backend.Pointer()
	if err != nil {
		m.logger.Debug("query pointer", "error", err)
		return
	}
	m.drag = &dragState{client: c.ID, kind: kind, startX: x, startY: y, orig: c.Geom}
	m.logger.Debug("drag started", "client", c.ID, "resize", kind == dragResize)
}

// Dragging reports whether a pointer drag is in progress.
func (m *Manager) Dragging() bool { return m.drag != nil }

func (m *Manager) dragMotion(x, y int) {
	d := m.drag
	if d == nil {
		return
	}
	c := m.client(d.client)
	if c == nil {
		m.drag = nil
		return
	}
	mon := m.monitors[c.Monitor]
	snap := m.settings.Snap

	var want tiling.Rect
	switch d.kind {
	case dragMove:
		want = tiling.Rect{X: d.orig.X + x - d.startX, Y: d.orig.Y + y - d.startY, Width: c.Geom.Width, Height: c.Geom.Height}
	case dragResize:
		want = tiling.Rect{
			X:      c.Geom.X,
			Y:      c.Geom.Y,
			Width:  max(x-d.orig.X-2*c.Border+1, 1),
			Height: max(y-d.orig.Y-2*c.Border+1, 1),
		}
	}

	// A tiled client pulled further than the snap distance starts floating.
	if !c.Floating && m.arranges(mon) {
		pulled := abs(want.X-c.Geom.X) > snap || abs(want.Y-c.Geom.Y) > snap
		if d.kind == dragResize {
			pulled = abs(want.Width-c.Geom.Width) > snap || abs(want.Height-c.Geom.Height) > snap
		}
		if !pulled {
			return
		}
		c.Floating = true
		m.arrange(mon)
	}

	outer := tiling.Rect{X: want.X, Y: want.Y, Width: want.Width + 2*c.Border, Height: want.Height + 2*c.Border}
	others := m.snapTargets(mon, c)
	if d.kind == dragMove {
		outer = tiling.SnapMove(outer, mon.Window, others, snap)
	} else {
		outer = tiling.SnapResize(outer, mon.Window, others, snap)
	}
	m.resize(c, tiling.Rect{X: outer.X, Y: outer.Y, Width: outer.Width - 2*c.Border, Height: outer.Height - 2*c.Border})
	m.reap()
}

// snapTargets returns the outer rectangles of the other visible clients.
func (m *Manager) snapTargets(mon *Monitor, except *Client) []tiling.Rect {
	var out []tiling.Rect
	for _, c := range m.visibleClients(mon) {
		if c != except {
			out = append(out, c.outer())
		}
	}
	return out
}

// dragEnd finishes a drag. A client dropped mostly onto another monitor is
// sent there and that monitor is selected.
func (m *Manager) dragEnd() {
	d := m.drag
	m.drag = nil
	if d == nil {
		return
	}
	c := m.client(d.client)
	if c == nil {
		return
	}
	if target := m.monitorAt(c.outer()); target != c.Monitor {
		m.sendMon(c, m.monitors[target], false)
		m.selmon = target
		m.focus(nil)
	}
	m.reap()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
