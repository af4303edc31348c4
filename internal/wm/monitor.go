package wm

import (
	"slices"

	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/tiling"
)

// Monitor is one output region.
type Monitor struct {
	Index int
	Name  string
	// Screen is the full output rectangle.
	Screen tiling.Rect
	// Usable excludes space reserved by external docks.
	Usable tiling.Rect
	// Window is the area clients are arranged in.
	Window tiling.Rect
	// Bar is the reserved bar rectangle; zero when hidden or external.
	Bar tiling.Rect

	TopBar bool

	tagset  [2]uint32
	seltags int

	// Clients is the client order; the head is the first master.
	Clients []ClientID
	// Stack is the focus order, most recently focused first.
	Stack []ClientID
	Sel   ClientID

	pertag pertag
}

// pertag remembers layout state per tag. Slot 0 is used while every tag is
// viewed; slot i+1 belongs to tag i.
type pertag struct {
	cur, prev int
	nmaster   []int
	mfact     []float64
	sellt     []int
	lt        [][2]int
	showbar   []bool
}

func (m *Manager) newMonitor(index int, d platform.Display) *Monitor {
	s := m.settings
	n := len(s.Tags) + 1
	mon := &Monitor{
		Index:  index,
		Name:   d.Name,
		Screen: d.Bounds,
		Usable: usableOf(d),
		TopBar: s.TopBar,
		tagset: [2]uint32{1, 1},
		pertag: pertag{
			cur:     1,
			prev:    1,
			nmaster: make([]int, n),
			mfact:   make([]float64, n),
			sellt:   make([]int, n),
			lt:      make([][2]int, n),
			showbar: make([]bool, n),
		},
	}
	for i := 0; i < n; i++ {
		mon.pertag.nmaster[i] = s.NMaster
		mon.pertag.mfact[i] = tiling.ClampMFact(s.MFact)
		mon.pertag.lt[i] = [2]int{0, 1 % len(s.Layouts)}
		mon.pertag.showbar[i] = s.ShowBar
	}
	m.updateBarPos(mon)
	return mon
}

func usableOf(d platform.Display) tiling.Rect {
	if d.Usable.Width <= 0 || d.Usable.Height <= 0 {
		return d.Bounds
	}
	return d.Usable
}

func (mon *Monitor) tags() uint32     { return mon.tagset[mon.seltags] }
func (mon *Monitor) nmaster() int     { return mon.pertag.nmaster[mon.pertag.cur] }
func (mon *Monitor) mfact() float64   { return mon.pertag.mfact[mon.pertag.cur] }
func (mon *Monitor) showBar() bool    { return mon.pertag.showbar[mon.pertag.cur] }
func (mon *Monitor) layoutIndex() int { p := &mon.pertag; return p.lt[p.cur][p.sellt[p.cur]] }

func (m *Manager) layoutOf(mon *Monitor) Layout {
	return m.settings.Layouts[mon.layoutIndex()]
}

func (m *Manager) arranges(mon *Monitor) bool {
	return m.layoutOf(mon).Kind.Arranges()
}

// updateBarPos recomputes the window area. A hidden bar gives clients the
// whole screen, including space reserved by external docks.
func (m *Manager) updateBarPos(mon *Monitor) {
	if !mon.showBar() {
		mon.Window = mon.Screen
		mon.Bar = tiling.Rect{}
		return
	}
	mon.Window = mon.Usable
	mon.Bar = tiling.Rect{}
	bh := m.settings.BarHeight
	if bh <= 0 || bh >= mon.Window.Height {
		return
	}
	mon.Window.Height -= bh
	mon.Bar = tiling.Rect{X: mon.Window.X, Width: mon.Window.Width, Height: bh}
	if mon.TopBar {
		mon.Bar.Y = mon.Window.Y
		mon.Window.Y += bh
	} else {
		mon.Bar.Y = mon.Window.Y + mon.Window.Height
	}
}

// uniqueDisplays drops displays whose bounds repeat an earlier one, as
// cloned outputs do.
func uniqueDisplays(displays []platform.Display) []platform.Display {
	var out []platform.Display
	for _, d := range displays {
		if d.Bounds.Width <= 0 || d.Bounds.Height <= 0 {
			continue
		}
		dup := slices.ContainsFunc(out, func(o platform.Display) bool { return o.Bounds == d.Bounds })
		if !dup {
			out = append(out, d)
		}
	}
	return out
}

// UpdateMonitors reconciles the monitor list with the current outputs.
// Monitors are matched by index. Clients of removed monitors move to the
// remaining monitor whose center is nearest (squared distance), ties going to
// the lowest index. An empty output list is ignored. It reports whether
// anything changed.
func (m *Manager) UpdateMonitors(displays []platform.Display) bool {
	displays = uniqueDisplays(displays)
	if len(displays) == 0 {
		m.logger.Warn("no outputs reported; keeping current monitors")
		return false
	}

	changed := false
	for i, d := range displays {
		if i >= len(m.monitors) {
			m.monitors = append(m.monitors, m.newMonitor(i, d))
			changed = true
			continue
		}
		mon := m.monitors[i]
		if mon.Screen != d.Bounds || mon.Usable != usableOf(d) || mon.Name != d.Name {
			mon.Screen = d.Bounds
			mon.Usable = usableOf(d)
			mon.Name = d.Name
			m.updateBarPos(mon)
			changed = true
		}
	}

	if len(displays) < len(m.monitors) {
		kept := m.monitors[:len(displays)]
		for _, gone := range m.monitors[len(displays):] {
			target := nearestMonitor(gone.Screen, kept)
			m.migrate(gone, kept[target])
		}
		m.monitors = kept
		if m.selmon >= len(m.monitors) {
			m.selmon = len(m.monitors) - 1
		}
		changed = true
	}

	if changed {
		m.logger.Info("monitors updated", "count", len(m.monitors))
		m.arrangeAll()
		m.focus(nil)
		m.reap()
	}
	return changed
}

// nearestMonitor returns the index in mons whose center is closest to r's.
func nearestMonitor(r tiling.Rect, mons []*Monitor) int {
	cx, cy := r.Center()
	best, bestDist := 0, -1
	for i, mon := range mons {
		mx, my := mon.Screen.Center()
		d := (mx-cx)*(mx-cx) + (my-cy)*(my-cy)
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// migrate moves every client of from onto to, keeping tag masks.
func (m *Manager) migrate(from, to *Monitor) {
	for _, id := range from.Clients {
		m.clients[id].Monitor = to.Index
	}
	// Hidden terminals follow the client that swallowed them.
	for _, c := range m.clients {
		if c.SwallowedBy != 0 && c.Monitor == from.Index {
			c.Monitor = to.Index
		}
	}
	to.Clients = append(slices.Clone(from.Clients), to.Clients...)
	to.Stack = append(slices.Clone(from.Stack), to.Stack...)
	if to.Sel == 0 {
		to.Sel = m.firstVisible(to.Stack)
	}
	from.Clients, from.Stack, from.Sel = nil, nil, 0
}

// dirToMonitor returns the monitor index dir steps from the selected one,
// wrapping around.
func (m *Manager) dirToMonitor(dir int) int {
	n := len(m.monitors)
	return ((m.selmon+dir)%n + n) % n
}

// monitorAt returns the monitor whose window area overlaps r the most,
// falling back to the selected monitor.
func (m *Manager) monitorAt(r tiling.Rect) int {
	best, area := m.selmon, 0
	for i, mon := range m.monitors {
		if a := r.Intersect(mon.Window).Area(); a > area {
			best, area = i, a
		}
	}
	return best
}

// FocusMonitor moves the selection dir monitors forward, wrapping around.
func (m *Manager) FocusMonitor(dir int) {
	if len(m.monitors) <= 1 {
		return
	}
	target := m.dirToMonitor(dir)
	if target == m.selmon {
		return
	}
	m.unfocus(m.client(m.monitors[m.selmon].Sel), false)
	m.selmon = target
	m.focus(nil)
	m.reap()
}

// SendToMonitor moves a client dir monitors forward, wrapping around. Its
// tag mask is kept and both monitors are re-arranged.
func (m *Manager) SendToMonitor(id ClientID, dir int) {
	c := m.client(id)
	if c == nil || len(m.monitors) <= 1 {
		return
	}
	n := len(m.monitors)
	m.sendMon(c, m.monitors[((c.Monitor+dir)%n+n)%n], true)
	m.reap()
}

// sendMon moves c to another monitor. With translate, a floating client
// keeps its offset relative to the monitor's window area.
func (m *Manager) sendMon(c *Client, to *Monitor, translate bool) {
	if c.Monitor == to.Index || c.SwallowedBy != 0 {
		return
	}
	from := m.monitors[c.Monitor]
	m.unfocus(c, true)
	from.Clients = removeID(from.Clients, c.ID)
	from.Stack = removeID(from.Stack, c.ID)
	if from.Sel == c.ID {
		from.Sel = m.firstVisible(from.Stack)
	}
	c.Monitor = to.Index
	if term := m.client(c.Swallowing); term != nil {
		term.Monitor = to.Index
	}
	to.Clients = slices.Insert(to.Clients, 0, c.ID)
	to.Stack = slices.Insert(to.Stack, 0, c.ID)
	if m.visible(c) {
		to.Sel = c.ID
	}
	if translate && c.Floating && !c.Fullscreen {
		c.Geom.X += to.Window.X - from.Window.X
		c.Geom.Y += to.Window.Y - from.Window.Y
		m.clampInto(c, to.Window)
	}
	if c.Fullscreen {
		c.Geom = to.Screen
	}
	m.arrange(from)
	m.arrange(to)
	m.focus(nil)
}
