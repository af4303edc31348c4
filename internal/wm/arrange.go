package wm

import (
	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/tiling"
)

func (m *Manager) arrangeAll() {
	for _, mon := range m.monitors {
		m.arrange(mon)
	}
}

// arrange shows and hides mon's clients, applies the layout and restacks.
func (m *Manager) arrange(mon *Monitor) {
	if !m.visible(m.client(mon.Sel)) {
		mon.Sel = m.firstVisible(mon.Stack)
	}
	m.showHide(mon)
	m.applyLayout(mon)
	m.restack(mon)
}

// showHide configures visible clients the layout does not place and moves
// hidden ones off screen.
func (m *Manager) showHide(mon *Monitor) {
	arranges := m.arranges(mon)
	for _, id := range mon.Stack {
		c := m.clients[id]
		if m.visible(c) {
			if c.Floating || c.Fullscreen || !arranges {
				m.configure(c)
			}
			continue
		}
		o := c.outer()
		hidden := tiling.Rect{X: -2 * o.Width, Y: c.Geom.Y, Width: c.Geom.Width, Height: c.Geom.Height}
		m.check(c, "hide", m.backend.Configure(c.Window, hidden, c.Border))
	}
}

func (m *Manager) applyLayout(mon *Monitor) {
	kind := m.layoutOf(mon).Kind
	if !kind.Arranges() {
		return
	}
	tiled := m.tiled(mon)
	rects := tiling.Arrange(kind, tiling.Params{
		Area:    mon.Window,
		Count:   len(tiled),
		NMaster: mon.nmaster(),
		MFact:   mon.mfact(),
	})
	for i, c := range tiled {
		r := rects[i]
		m.resize(c, tiling.Rect{X: r.X, Y: r.Y, Width: r.Width - 2*c.Border, Height: r.Height - 2*c.Border})
	}
}

// resize stores a new geometry and applies it when the client is visible.
func (m *Manager) resize(c *Client, r tiling.Rect) {
	r.Width = max(r.Width, 1)
	r.Height = max(r.Height, 1)
	c.Geom = r
	if m.visible(c) {
		m.configure(c)
	}
}

func (m *Manager) configure(c *Client) {
	m.check(c, "configure", m.backend.Configure(c.Window, c.Geom, c.Border))
}

// restack orders mon's visible windows: floating ones above tiled ones,
// each group in focus order.
func (m *Manager) restack(mon *Monitor) {
	arranges := m.arranges(mon)
	var above, below []platform.WindowID
	for _, id := range mon.Stack {
		c := m.clients[id]
		if !m.visible(c) {
			continue
		}
		if c.Floating || c.Fullscreen || !arranges {
			above = append(above, c.Window)
		} else {
			below = append(below, c.Window)
		}
	}
	order := append(above, below...)
	if len(order) == 0 {
		return
	}
	if err := m.backend.Restack(order); err != nil {
		m.logger.Debug("restack", "monitor", mon.Index, "error", err)
	}
}
