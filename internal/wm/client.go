package wm

import (
	"fmt"
	"slices"

	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/rules"
	"github.com/1broseidon/tagtile/internal/tiling"
)

// ClientID is a stable handle for a managed window. Ids are never reused.
type ClientID uint64

// Client is one managed window.
type Client struct {
	ID     ClientID
	Window platform.WindowID
	PID    int

	Class    string
	Instance string
	Title    string

	// Geom is the applied geometry, excluding the border.
	Geom tiling.Rect
	// Requested is the geometry the client last asked for.
	Requested tiling.Rect
	Border    int

	Tags       uint32
	Monitor    int
	Floating   bool
	Fullscreen bool
	Fixed      bool
	Urgent     bool
	NeverFocus bool
	Terminal   bool
	NoSwallow  bool

	// Swallowing is the terminal this client is displayed in place of.
	Swallowing ClientID
	// SwallowedBy is set on a hidden terminal to the client replacing it.
	SwallowedBy ClientID

	saved struct {
		geom     tiling.Rect
		border   int
		floating bool
	}
}

// outer returns the geometry including the border.
func (c *Client) outer() tiling.Rect {
	return tiling.Rect{X: c.Geom.X, Y: c.Geom.Y, Width: c.Geom.Width + 2*c.Border, Height: c.Geom.Height + 2*c.Border}
}

func (m *Manager) visible(c *Client) bool {
	if c == nil || c.SwallowedBy != 0 {
		return false
	}
	mon := m.monitors[c.Monitor]
	return c.Tags&mon.tags() != 0
}

func (m *Manager) client(id ClientID) *Client {
	if id == 0 {
		return nil
	}
	return m.clients[id]
}

// Attach starts managing a window. Rules are applied before the client
// becomes visible. The new client goes to the head of its monitor's client
// and focus order, and only that monitor is re-arranged.
func (m *Manager) Attach(info platform.WindowInfo) (ClientID, error) {
	if id, ok := m.byWindow[info.ID]; ok {
		return id, nil
	}
	if info.OverrideRedirect {
		return 0, fmt.Errorf("window %d is override-redirect", info.ID)
	}

	m.nextID++
	c := &Client{
		ID:         m.nextID,
		Window:     info.ID,
		PID:        info.PID,
		Class:      info.Class,
		Instance:   info.Instance,
		Title:      info.Title,
		Geom:       info.Bounds,
		Requested:  info.Bounds,
		Border:     m.settings.BorderPx,
		Fixed:      info.Fixed,
		Urgent:     info.Urgent,
		NeverFocus: info.NeverFocus,
		Monitor:    m.selmon,
	}
	if c.Geom.Width < 1 {
		c.Geom.Width = 1
	}
	if c.Geom.Height < 1 {
		c.Geom.Height = 1
	}

	parent := m.client(m.byWindow[info.TransientFor])
	if info.TransientFor != 0 && parent != nil {
		c.Monitor = parent.Monitor
		c.Tags = parent.Tags
		c.Floating = true
	} else {
		m.applyRules(c)
	}
	if c.Fixed || info.Dialog {
		c.Floating = true
	}
	var term *Client
	if parent == nil {
		term = m.termFor(c)
	}

	mon := m.monitors[c.Monitor]
	m.clampInto(c, mon.Window)

	m.clients[c.ID] = c
	m.byWindow[c.Window] = c.ID

	m.check(c, "manage", m.backend.Manage(c.Window))
	m.check(c, "border", m.backend.SetBorderColor(c.Window, m.settings.NormBorder))

	if term != nil {
		m.swallow(term, c)
	} else {
		mon.Clients = slices.Insert(mon.Clients, 0, c.ID)
		mon.Stack = slices.Insert(mon.Stack, 0, c.ID)
	}
	mon = m.monitors[c.Monitor]

	m.updateClientList()
	if info.Fullscreen {
		m.setFullscreen(c, true)
	}

	if m.visible(c) {
		if c.Monitor == m.selmon {
			m.unfocus(m.client(mon.Sel), false)
		}
		mon.Sel = c.ID
	}
	m.arrange(mon)
	m.focus(nil)
	m.reap()

	m.logger.Debug("attached client",
		"id", c.ID, "window", c.Window, "class", c.Class, "monitor", c.Monitor,
		"tags", c.Tags, "floating", c.Floating, "swallowed", term != nil)
	return c.ID, nil
}

func (m *Manager) applyRules(c *Client) {
	out := m.settings.Rules.Classify(rules.Identity{Class: c.Class, Instance: c.Instance, Title: c.Title})
	c.Floating = out.Floating
	c.Terminal = out.Terminal
	c.NoSwallow = out.NoSwallow
	if out.Monitor >= 0 && out.Monitor < len(m.monitors) {
		c.Monitor = out.Monitor
	}
	c.Tags = out.Tags & m.settings.TagMask()
	if c.Tags == 0 {
		c.Tags = m.monitors[c.Monitor].tags()
	}
}

// clampInto keeps a window's top-left corner inside area.
func (m *Manager) clampInto(c *Client, area tiling.Rect) {
	o := c.outer()
	if o.X+o.Width > area.X+area.Width {
		c.Geom.X = area.X + area.Width - o.Width
	}
	if o.Y+o.Height > area.Y+area.Height {
		c.Geom.Y = area.Y + area.Height - o.Height
	}
	c.Geom.X = max(c.Geom.X, area.X)
	c.Geom.Y = max(c.Geom.Y, area.Y)
}

// Detach stops managing a client. If it was selected, the most recently
// focused visible client on the same monitor is selected instead.
func (m *Manager) Detach(id ClientID) {
	m.detach(id, false)
	m.reap()
}

func (m *Manager) detach(id ClientID, destroyed bool) {
	c := m.client(id)
	if c == nil {
		return
	}
	if m.drag != nil && m.drag.client == id {
		m.drag = nil
	}

	delete(m.clients, id)
	delete(m.byWindow, c.Window)
	m.backend.Unmanage(c.Window)

	// A hidden terminal vanished while swallowed.
	if c.SwallowedBy != 0 {
		if child := m.client(c.SwallowedBy); child != nil {
			child.Swallowing = 0
		}
		m.updateClientList()
		return
	}

	mon := m.monitors[c.Monitor]
	if term := m.client(c.Swallowing); term != nil {
		m.unswallow(term, c)
		m.updateClientList()
		m.arrange(mon)
		m.focus(term)
		return
	}

	mon.Clients = removeID(mon.Clients, id)
	mon.Stack = removeID(mon.Stack, id)
	if mon.Sel == id {
		mon.Sel = m.firstVisible(mon.Stack)
	}
	m.updateClientList()
	m.arrange(mon)
	m.focus(nil)

	m.logger.Debug("detached client", "id", id, "window", c.Window, "destroyed", destroyed)
}

// SetGeometry moves and resizes a client. Tiled clients are re-laid out on
// the next arrange of their monitor.
func (m *Manager) SetGeometry(id ClientID, r tiling.Rect) {
	c := m.client(id)
	if c == nil {
		return
	}
	m.resize(c, r)
	m.reap()
}

// SetTags replaces a client's tag mask. Masks without any configured tag are
// ignored.
func (m *Manager) SetTags(id ClientID, mask uint32) {
	c := m.client(id)
	if c == nil || mask&m.settings.TagMask() == 0 {
		return
	}
	c.Tags = mask & m.settings.TagMask()
	mon := m.monitors[c.Monitor]
	m.focus(nil)
	m.arrange(mon)
	m.reap()
}

// SetFloating changes a client's floating state. Fixed-size clients always
// float and fullscreen clients are left alone.
func (m *Manager) SetFloating(id ClientID, floating bool) {
	c := m.client(id)
	if c == nil || c.Fullscreen {
		return
	}
	m.setFloating(c, floating)
	m.arrange(m.monitors[c.Monitor])
	m.reap()
}

func (m *Manager) setFloating(c *Client, floating bool) {
	c.Floating = floating || c.Fixed
	if c.Floating {
		m.resize(c, c.Geom)
	}
}

// ClientsOn returns a monitor's clients in client order.
func (m *Manager) ClientsOn(monitor int) []ClientID {
	if monitor < 0 || monitor >= len(m.monitors) {
		return nil
	}
	return slices.Clone(m.monitors[monitor].Clients)
}

func (m *Manager) firstVisible(ids []ClientID) ClientID {
	for _, id := range ids {
		if m.visible(m.clients[id]) {
			return id
		}
	}
	return 0
}

// visibleClients returns the visible clients of mon in client order.
func (m *Manager) visibleClients(mon *Monitor) []*Client {
	var out []*Client
	for _, id := range mon.Clients {
		if c := m.clients[id]; m.visible(c) {
			out = append(out, c)
		}
	}
	return out
}

// tiled returns the visible, non-floating clients of mon in client order.
func (m *Manager) tiled(mon *Monitor) []*Client {
	var out []*Client
	for _, c := range m.visibleClients(mon) {
		if !c.Floating {
			out = append(out, c)
		}
	}
	return out
}

func (m *Manager) updateClientList() {
	var ids []platform.WindowID
	for _, mon := range m.monitors {
		for _, id := range mon.Clients {
			ids = append(ids, m.clients[id].Window)
		}
	}
	if err := m.backend.SetClientList(ids); err != nil {
		m.logger.Debug("set client list", "error", err)
	}
}

func removeID(ids []ClientID, id ClientID) []ClientID {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}
