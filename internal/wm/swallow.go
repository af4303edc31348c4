package wm

import "slices"

// termFor returns the terminal client that should be swallowed by c, or nil.
func (m *Manager) termFor(c *Client) *Client {
	if m.procs == nil || c.PID <= 0 || c.Terminal || c.NoSwallow {
		return nil
	}
	if c.Floating && !m.settings.SwallowFloating {
		return nil
	}
	// Deterministic order: lowest client id first.
	ids := make([]ClientID, 0, len(m.clients))
	for id := range m.clients {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		t := m.clients[id]
		if !t.Terminal || t.Swallowing != 0 || t.SwallowedBy != 0 || t.PID <= 0 {
			continue
		}
		if m.isDescendant(t.PID, c.PID) {
			return t
		}
	}
	return nil
}

// isDescendant reports whether child has parent among its ancestors.
func (m *Manager) isDescendant(parent, child int) bool {
	for depth := 0; child > 1 && depth < 64; depth++ {
		if child == parent {
			return true
		}
		child = m.procs.ParentPID(child)
	}
	return false
}

// swallow hides term and puts c in its place: the same position in the
// client and focus order, tags, monitor and geometry.
func (m *Manager) swallow(term, c *Client) {
	mon := m.monitors[term.Monitor]
	c.Monitor = term.Monitor
	c.Tags = term.Tags
	c.Floating = term.Floating
	c.Geom = term.Geom

	replaceID(mon.Clients, term.ID, c.ID)
	replaceID(mon.Stack, term.ID, c.ID)
	if mon.Sel == term.ID {
		mon.Sel = c.ID
	}
	c.Swallowing = term.ID
	term.SwallowedBy = c.ID

	o := term.outer()
	hidden := term.Geom
	hidden.X = -2 * o.Width
	m.check(term, "hide", m.backend.Configure(term.Window, hidden, term.Border))

	m.logger.Debug("swallowed terminal", "terminal", term.ID, "client", c.ID)
}

// unswallow restores term in the position c held.
func (m *Manager) unswallow(term, c *Client) {
	mon := m.monitors[c.Monitor]
	term.SwallowedBy = 0
	term.Monitor = c.Monitor
	term.Tags = c.Tags
	term.Floating = c.Floating
	term.Geom = c.Geom
	// A fullscreen child hands back the state it had before fullscreen.
	if c.Fullscreen {
		term.Floating = c.saved.floating
		term.Geom = c.saved.geom
	}

	replaceID(mon.Clients, c.ID, term.ID)
	replaceID(mon.Stack, c.ID, term.ID)
	if mon.Sel == c.ID {
		mon.Sel = term.ID
	}
	m.logger.Debug("restored terminal", "terminal", term.ID, "client", c.ID)
}

func replaceID(ids []ClientID, old, repl ClientID) {
	if i := slices.Index(ids, old); i >= 0 {
		ids[i] = repl
	}
}
