package wm

import (
	"slices"

	"github.com/1broseidon/tagtile/internal/dispatch"
)

// focus selects c, or the most recently focused visible client of the
// selected monitor when c is nil or hidden.
func (m *Manager) focus(c *Client) {
	selmon := m.monitors[m.selmon]
	if c == nil || !m.visible(c) {
		c = m.client(m.firstVisible(selmon.Stack))
	}
	if sel := m.client(selmon.Sel); sel != nil && sel != c {
		m.unfocus(sel, false)
	}
	if c == nil {
		selmon.Sel = 0
		if err := m.backend.Focus(0); err != nil {
			m.logger.Debug("focus root", "error", err)
		}
		return
	}

	if c.Monitor != m.selmon {
		m.selmon = c.Monitor
		selmon = m.monitors[m.selmon]
	}
	c.Urgent = false
	selmon.Stack = slices.Insert(removeID(selmon.Stack, c.ID), 0, c.ID)
	selmon.Sel = c.ID
	m.check(c, "border", m.backend.SetBorderColor(c.Window, m.settings.SelBorder))
	if !c.NeverFocus {
		m.check(c, "focus", m.backend.Focus(c.Window))
	}
}

func (m *Manager) unfocus(c *Client, focusRoot bool) {
	if c == nil {
		return
	}
	color := m.settings.NormBorder
	if c.Urgent {
		color = m.settings.UrgentBorder
	}
	m.check(c, "border", m.backend.SetBorderColor(c.Window, color))
	if focusRoot {
		if err := m.backend.Focus(0); err != nil {
			m.logger.Debug("focus root", "error", err)
		}
	}
}

// Focus selects a client and raises it within its monitor.
func (m *Manager) Focus(id ClientID) {
	c := m.client(id)
	if c == nil || !m.visible(c) {
		return
	}
	m.focus(c)
	m.restack(m.monitors[c.Monitor])
	m.reap()
}

// stackPos resolves a focusstack/pushstack argument to an index into the
// visible clients of the selected monitor, or -1.
func (m *Manager) stackPos(mode dispatch.StackMode, n int) int {
	mon := m.monitors[m.selmon]
	vis := m.visibleClients(mon)
	if len(vis) == 0 {
		return -1
	}
	indexOf := func(id ClientID) int {
		return slices.IndexFunc(vis, func(c *Client) bool { return c.ID == id })
	}

	switch mode {
	case dispatch.StackPrevSel:
		for _, id := range mon.Stack {
			if id != mon.Sel && m.visible(m.clients[id]) {
				return indexOf(id)
			}
		}
		return -1
	case dispatch.StackRelative:
		i := indexOf(mon.Sel)
		if i < 0 {
			return -1
		}
		k := len(vis)
		return ((i+n)%k + k) % k
	default:
		if n < 0 {
			return max(len(vis)+n, 0)
		}
		return min(n, len(vis)-1)
	}
}

func (m *Manager) focusStack(mode dispatch.StackMode, n int) {
	mon := m.monitors[m.selmon]
	sel := m.client(mon.Sel)
	if sel == nil || (sel.Fullscreen && m.settings.LockFullscreen) {
		return
	}
	i := m.stackPos(mode, n)
	if i < 0 {
		return
	}
	m.focus(m.visibleClients(mon)[i])
	m.restack(mon)
}

// pushStack moves the selected client to position i among the visible
// clients of its monitor.
func (m *Manager) pushStack(mode dispatch.StackMode, n int) {
	mon := m.monitors[m.selmon]
	sel := m.client(mon.Sel)
	if sel == nil {
		return
	}
	i := m.stackPos(mode, n)
	if i < 0 {
		return
	}

	var others []ClientID
	for _, c := range m.visibleClients(mon) {
		if c != sel {
			others = append(others, c.ID)
		}
	}
	mon.Clients = removeID(mon.Clients, sel.ID)
	if i == 0 || len(others) == 0 {
		mon.Clients = slices.Insert(mon.Clients, 0, sel.ID)
	} else {
		after := others[min(i, len(others))-1]
		at := slices.Index(mon.Clients, after) + 1
		mon.Clients = slices.Insert(mon.Clients, at, sel.ID)
	}
	m.arrange(mon)
}

// zoom swaps the selected tiled client into the master position. If it
// already is the first master, the next tiled client is promoted.
func (m *Manager) zoom() {
	mon := m.monitors[m.selmon]
	sel := m.client(mon.Sel)
	if !m.arranges(mon) || sel == nil || sel.Floating {
		return
	}
	tiled := m.tiled(mon)
	c := sel
	if tiled[0] == sel {
		if len(tiled) < 2 {
			return
		}
		c = tiled[1]
	}
	mon.Clients = slices.Insert(removeID(mon.Clients, c.ID), 0, c.ID)
	m.focus(c)
	m.arrange(mon)
}
