package wm

import "github.com/1broseidon/tagtile/internal/platform"

// setFullscreen gives c its monitor's whole screen without a border, or
// restores the state it had before.
func (m *Manager) setFullscreen(c *Client, on bool) {
	if on == c.Fullscreen {
		return
	}
	m.check(c, "fullscreen", m.backend.SetFullscreen(c.Window, on))
	mon := m.monitors[c.Monitor]
	if on {
		c.saved.geom = c.Geom
		c.saved.border = c.Border
		c.saved.floating = c.Floating
		c.Fullscreen = true
		c.Floating = true
		c.Border = 0
		m.resize(c, mon.Screen)
		return
	}
	c.Fullscreen = false
	c.Floating = c.saved.floating
	c.Border = c.saved.border
	m.resize(c, c.saved.geom)
}

// SetFullscreen applies a fullscreen state change and re-arranges the
// client's monitor.
func (m *Manager) SetFullscreen(id ClientID, action platform.StateAction) {
	c := m.client(id)
	if c == nil || c.SwallowedBy != 0 {
		return
	}
	on := c.Fullscreen
	switch action {
	case platform.StateAdd:
		on = true
	case platform.StateRemove:
		on = false
	case platform.StateToggle:
		on = !c.Fullscreen
	}
	m.setFullscreen(c, on)
	mon := m.monitors[c.Monitor]
	m.arrange(mon)
	m.reap()
}

// setUrgent marks c urgent unless it is the focused client.
func (m *Manager) setUrgent(c *Client, urgent bool) {
	if urgent && c.ID == m.monitors[m.selmon].Sel {
		return
	}
	c.Urgent = urgent
	color := m.settings.NormBorder
	if urgent {
		color = m.settings.UrgentBorder
	} else if c.ID == m.monitors[m.selmon].Sel {
		color = m.settings.SelBorder
	}
	m.check(c, "border", m.backend.SetBorderColor(c.Window, color))
}
