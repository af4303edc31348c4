package wm

import (
	"strconv"
	"strings"

	"github.com/1broseidon/tagtile/internal/dispatch"
)

// Execute runs a dispatched action against the selected monitor. It
// completes, including any re-layout and focus change, before returning.
func (m *Manager) Execute(a dispatch.Action) {
	arg := a.Arg
	switch a.Cmd {
	case dispatch.CmdSpawn:
		m.spawn(arg.Argv)
	case dispatch.CmdToggleBar:
		m.ToggleBar()
	case dispatch.CmdFocusStack:
		m.focusStack(arg.Stack, arg.N)
	case dispatch.CmdPushStack:
		m.pushStack(arg.Stack, arg.N)
	case dispatch.CmdIncNMaster:
		m.IncNMaster(arg.Int)
	case dispatch.CmdSetMFact:
		m.SetMFact(arg.Float, arg.Relative)
	case dispatch.CmdZoom:
		m.zoom()
	case dispatch.CmdView:
		m.View(arg.Mask)
	case dispatch.CmdToggleView:
		m.ToggleView(arg.Mask)
	case dispatch.CmdTag:
		m.Tag(arg.Mask)
	case dispatch.CmdToggleTag:
		m.ToggleTag(arg.Mask)
	case dispatch.CmdKillClient:
		if c := m.client(m.Selected()); c != nil {
			m.check(c, "close", m.backend.Close(c.Window))
		}
	case dispatch.CmdSetLayout:
		m.SetLayout(arg.Layout)
	case dispatch.CmdToggleFloating:
		if c := m.client(m.Selected()); c != nil {
			m.SetFloating(c.ID, !c.Floating)
		}
	case dispatch.CmdToggleFullscreen:
		if c := m.client(m.Selected()); c != nil {
			m.setFullscreen(c, !c.Fullscreen)
			m.arrange(m.monitors[c.Monitor])
		}
	case dispatch.CmdFocusMon:
		m.FocusMonitor(arg.Int)
	case dispatch.CmdTagMon:
		if sel := m.Selected(); sel != 0 {
			m.SendToMonitor(sel, arg.Int)
		}
	case dispatch.CmdMoveMouse:
		m.beginDrag(dragMove)
	case dispatch.CmdResizeMouse:
		m.beginDrag(dragResize)
	case dispatch.CmdQuit:
		m.logger.Info("quit requested")
		m.running = false
	default:
		m.logger.Debug("ignoring action", "action", a.String())
	}
	m.reap()
}

// spawn launches argv with "{monitor}" replaced by the selected monitor
// index.
func (m *Manager) spawn(argv []string) {
	if len(argv) == 0 {
		return
	}
	if m.spawner == nil {
		m.logger.Warn("spawn requested without a spawner", "argv", argv)
		return
	}
	mon := strconv.Itoa(m.selmon)
	out := make([]string, len(argv))
	for i, s := range argv {
		out[i] = strings.ReplaceAll(s, "{monitor}", mon)
	}
	m.spawner.Spawn(out)
}
