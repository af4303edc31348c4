package wm

import (
	"errors"

	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/tiling"
)

// HandleEvent applies a window-system event. Input events (keys, buttons,
// root name) are resolved by the caller and are ignored here.
func (m *Manager) HandleEvent(ev platform.Event) {
	switch e := ev.(type) {
	case platform.MapRequest:
		m.mapRequest(e.Window)
	case platform.Destroyed:
		if id, ok := m.byWindow[e.Window]; ok {
			m.detach(id, true)
		}
	case platform.Unmapped:
		if id, ok := m.byWindow[e.Window]; ok && m.clients[id].SwallowedBy == 0 {
			m.detach(id, false)
		}
	case platform.ConfigureRequest:
		m.configureRequest(e)
	case platform.PropertyChanged:
		m.propertyChanged(e)
	case platform.FullscreenRequest:
		if id, ok := m.byWindow[e.Window]; ok {
			m.SetFullscreen(id, e.Action)
		}
	case platform.ActivateRequest:
		if c := m.client(m.byWindow[e.Window]); c != nil && c.ID != m.Selected() && !c.Urgent {
			m.setUrgent(c, true)
		}
	case platform.Enter:
		m.enter(e)
	case platform.PointerMoved:
		if m.drag == nil {
			m.selectMonitorAt(e.X, e.Y)
		}
	case platform.ScreensChanged:
		displays, err := m.backend.Displays()
		if err != nil {
			m.logger.Warn("query outputs", "error", err)
			break
		}
		m.UpdateMonitors(displays)
	case platform.DragMotion:
		m.dragMotion(e.X, e.Y)
	case platform.DragEnd:
		m.dragMotion(e.X, e.Y)
		m.dragEnd()
	}
	m.reap()
}

func (m *Manager) mapRequest(w platform.WindowID) {
	if _, ok := m.byWindow[w]; ok {
		return
	}
	info, err := m.backend.WindowInfo(w)
	if err != nil {
		if !errors.Is(err, platform.ErrWindowGone) {
			m.logger.Warn("read window properties", "window", w, "error", err)
		}
		return
	}
	if info.OverrideRedirect {
		return
	}
	if _, err := m.Attach(info); err != nil {
		m.logger.Warn("attach window", "window", w, "error", err)
	}
}

func (m *Manager) configureRequest(e platform.ConfigureRequest) {
	c := m.client(m.byWindow[e.Window])
	if c == nil {
		if err := m.backend.Forward(e); err != nil {
			m.logger.Debug("forward configure request", "window", e.Window, "error", err)
		}
		return
	}
	if e.Fields&platform.ConfigBorder != 0 && !c.Fullscreen {
		c.Border = e.Border
	}
	mon := m.monitors[c.Monitor]
	if !c.Floating && m.arranges(mon) || c.Fullscreen {
		// Tiled clients are told their current geometry.
		m.configure(c)
		return
	}

	r := c.Geom
	if e.Fields&platform.ConfigX != 0 {
		r.X = e.Rect.X
	}
	if e.Fields&platform.ConfigY != 0 {
		r.Y = e.Rect.Y
	}
	if e.Fields&platform.ConfigWidth != 0 {
		r.Width = e.Rect.Width
	}
	if e.Fields&platform.ConfigHeight != 0 {
		r.Height = e.Rect.Height
	}
	c.Requested = r
	// Center windows that would end up off their monitor.
	if r.X+r.Width > mon.Screen.X+mon.Screen.Width && c.Floating {
		r.X = mon.Screen.X + (mon.Screen.Width/2 - (r.Width+2*c.Border)/2)
	}
	if r.Y+r.Height > mon.Screen.Y+mon.Screen.Height && c.Floating {
		r.Y = mon.Screen.Y + (mon.Screen.Height/2 - (r.Height+2*c.Border)/2)
	}
	m.resize(c, r)
}

func (m *Manager) propertyChanged(e platform.PropertyChanged) {
	c := m.client(m.byWindow[e.Window])
	if c == nil {
		return
	}
	info, err := m.backend.WindowInfo(c.Window)
	if err != nil {
		m.check(c, "properties", err)
		return
	}
	mon := m.monitors[c.Monitor]
	switch e.Property {
	case platform.PropTitle:
		c.Title = info.Title
	case platform.PropHints:
		c.NeverFocus = info.NeverFocus
		if info.Urgent != c.Urgent {
			m.setUrgent(c, info.Urgent)
		}
	case platform.PropNormalHints:
		c.Fixed = info.Fixed
		if c.Fixed && !c.Floating {
			c.Floating = true
			m.arrange(mon)
		}
	case platform.PropTransient:
		if !c.Floating && info.TransientFor != 0 {
			if _, ok := m.byWindow[info.TransientFor]; ok {
				c.Floating = true
				m.arrange(mon)
			}
		}
	case platform.PropWindowType:
		if info.Fullscreen && !c.Fullscreen {
			m.setFullscreen(c, true)
			m.arrange(mon)
		}
		if info.Dialog && !c.Floating {
			c.Floating = true
			m.arrange(mon)
		}
	}
}

// enter implements focus-follows-mouse.
func (m *Manager) enter(e platform.Enter) {
	if m.drag != nil {
		return
	}
	c := m.client(m.byWindow[e.Window])
	target := m.monitorAt(tiling.Rect{X: e.X, Y: e.Y, Width: 1, Height: 1})
	if c != nil {
		target = c.Monitor
	}
	if target != m.selmon {
		m.unfocus(m.client(m.monitors[m.selmon].Sel), true)
		m.selmon = target
	} else if c == nil || c.ID == m.Selected() {
		return
	}
	m.focus(c)
}

func (m *Manager) selectMonitorAt(x, y int) {
	target := m.monitorAt(tiling.Rect{X: x, Y: y, Width: 1, Height: 1})
	if target == m.selmon {
		return
	}
	m.unfocus(m.client(m.monitors[m.selmon].Sel), true)
	m.selmon = target
	m.focus(nil)
}

// PressAt prepares a pointer button press: a press on a managed window
// focuses and raises it, a press on the root window selects the monitor
// under the pointer. It reports whether the press hit a managed client.
func (m *Manager) PressAt(w platform.WindowID, x, y int) bool {
	if c := m.client(m.byWindow[w]); c != nil {
		m.focus(c)
		m.restack(m.monitors[c.Monitor])
		m.reap()
		return true
	}
	m.selectMonitorAt(x, y)
	m.reap()
	return false
}
