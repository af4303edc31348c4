//go:build linux

package platform

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/1broseidon/tagtile/internal/x11"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
)

// LinuxBackend drives an X11 display as its window manager.
type LinuxBackend struct {
	conn   *x11.Connection
	logger *slog.Logger
	input  ClientInput

	mu    sync.Mutex
	docks map[xproto.Window]struct{}
	names []string

	ctx context.Context
	out chan<- Event
}

var (
	_ Backend   = (*LinuxBackend)(nil)
	_ Publisher = (*LinuxBackend)(nil)
)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection, logger *slog.Logger) *LinuxBackend {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LinuxBackend{
		conn:   conn,
		logger: logger,
		docks:  make(map[xproto.Window]struct{}),
	}
}

// NewLinuxBackendFromDisplay connects to display, takes over window
// management and announces itself under name.
func NewLinuxBackendFromDisplay(display, name string, logger *slog.Logger) (*LinuxBackend, error) {
	conn, err := x11.NewConnectionDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	if err := conn.BecomeWM(); err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.Announce(name); err != nil {
		conn.Close()
		return nil, fmt.Errorf("announce window manager: %w", err)
	}
	b := NewLinuxBackend(conn, logger)
	if err := conn.WatchScreens(); err != nil {
		b.logger.Debug("randr screen events unavailable", "error", err)
	}
	return b, nil
}

// SetClientInput installs the bindings applied to managed windows.
func (b *LinuxBackend) SetClientInput(input ClientInput) {
	b.input = input
}

// Disconnect releases the EWMH properties and closes the X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Release()
		b.conn.Close()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Run delivers window-system events to out until ctx is canceled.
func (b *LinuxBackend) Run(ctx context.Context, out chan<- Event) error {
	b.ctx, b.out = ctx, out
	b.connectRoot()

	stop := context.AfterFunc(ctx, b.conn.Quit)
	defer stop()
	b.conn.EventLoop()
	return ctx.Err()
}

// Emit sends ev to the control loop. It is called from the event loop
// goroutine and drops events before Run or after shutdown.
func (b *LinuxBackend) Emit(ev Event) {
	if b.out == nil {
		return
	}
	select {
	case b.out <- ev:
	case <-b.ctx.Done():
	}
}

func (b *LinuxBackend) connectRoot() {
	xu, root := b.conn.XUtil, b.conn.Root

	xevent.MapRequestFun(func(xu *xgbutil.XUtil, e xevent.MapRequestEvent) {
		if _, dock := b.conn.WindowType(e.Window); dock {
			b.addDock(e.Window)
			return
		}
		b.Emit(MapRequest{Window: WindowID(e.Window)})
	}).Connect(xu, root)

	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, e xevent.DestroyNotifyEvent) {
		if b.removeDock(e.Window) {
			return
		}
		b.Emit(Destroyed{Window: WindowID(e.Window)})
	}).Connect(xu, root)

	xevent.UnmapNotifyFun(func(xu *xgbutil.XUtil, e xevent.UnmapNotifyEvent) {
		if b.removeDock(e.Window) {
			return
		}
		b.Emit(Unmapped{Window: WindowID(e.Window)})
	}).Connect(xu, root)

	xevent.ConfigureRequestFun(func(xu *xgbutil.XUtil, e xevent.ConfigureRequestEvent) {
		b.Emit(configureRequest(e.ConfigureRequestEvent))
	}).Connect(xu, root)

	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, e xevent.ConfigureNotifyEvent) {
		if e.Window == root {
			b.Emit(ScreensChanged{})
		}
	}).Connect(xu, root)

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, e xevent.PropertyNotifyEvent) {
		if e.Atom == xproto.AtomWmName {
			b.Emit(RootName{Text: b.conn.RootName()})
		}
	}).Connect(xu, root)

	xevent.MotionNotifyFun(func(xu *xgbutil.XUtil, e xevent.MotionNotifyEvent) {
		if e.Event == root {
			b.Emit(PointerMoved{X: int(e.RootX), Y: int(e.RootY)})
		}
	}).Connect(xu, root)

	xevent.EnterNotifyFun(func(xu *xgbutil.XUtil, e xevent.EnterNotifyEvent) {
		if e.Mode != xproto.NotifyModeNormal {
			return
		}
		b.Emit(Enter{X: int(e.RootX), Y: int(e.RootY)})
	}).Connect(xu, root)

	xevent.HookFun(func(xu *xgbutil.XUtil, ev interface{}) bool {
		switch ev.(type) {
		case randr.ScreenChangeNotifyEvent, randr.NotifyEvent:
			b.Emit(ScreensChanged{})
			return false
		}
		return true
	}).Connect(xu)
}

func (b *LinuxBackend) connectClient(win xproto.Window) {
	xu := b.conn.XUtil
	id := WindowID(win)

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, e xevent.PropertyNotifyEvent) {
		if e.State == xproto.PropertyDelete {
			return
		}
		name, err := xprop.AtomName(xu, e.Atom)
		if err != nil {
			return
		}
		if prop, ok := propertyFor(name); ok {
			b.Emit(PropertyChanged{Window: id, Property: prop})
		}
	}).Connect(xu, win)

	xevent.EnterNotifyFun(func(xu *xgbutil.XUtil, e xevent.EnterNotifyEvent) {
		if e.Mode != xproto.NotifyModeNormal || e.Detail == xproto.NotifyDetailInferior {
			return
		}
		b.Emit(Enter{Window: id, X: int(e.RootX), Y: int(e.RootY)})
	}).Connect(xu, win)

	xevent.ClientMessageFun(func(xu *xgbutil.XUtil, e xevent.ClientMessageEvent) {
		name, err := xprop.AtomName(xu, e.Type)
		if err != nil {
			return
		}
		data := e.Data.Data32
		switch name {
		case "_NET_WM_STATE":
			for _, a := range data[1:3] {
				if s, _ := xprop.AtomName(xu, xproto.Atom(a)); s == "_NET_WM_STATE_FULLSCREEN" {
					b.Emit(FullscreenRequest{Window: id, Action: StateAction(data[0])})
					return
				}
			}
		case "_NET_ACTIVE_WINDOW":
			b.Emit(ActivateRequest{Window: id})
		}
	}).Connect(xu, win)
}

func propertyFor(atom string) (Property, bool) {
	switch atom {
	case "WM_NAME", "_NET_WM_NAME":
		return PropTitle, true
	case "WM_HINTS":
		return PropHints, true
	case "WM_NORMAL_HINTS":
		return PropNormalHints, true
	case "WM_TRANSIENT_FOR":
		return PropTransient, true
	case "_NET_WM_WINDOW_TYPE":
		return PropWindowType, true
	}
	return 0, false
}

func configureRequest(e *xproto.ConfigureRequestEvent) ConfigureRequest {
	req := ConfigureRequest{
		Window: WindowID(e.Window),
		Rect: Rect{
			X: int(e.X), Y: int(e.Y),
			Width: int(e.Width), Height: int(e.Height),
		},
		Border:    int(e.BorderWidth),
		Sibling:   WindowID(e.Sibling),
		StackMode: e.StackMode,
	}
	bits := []struct {
		mask  uint16
		field ConfigFields
	}{
		{xproto.ConfigWindowX, ConfigX},
		{xproto.ConfigWindowY, ConfigY},
		{xproto.ConfigWindowWidth, ConfigWidth},
		{xproto.ConfigWindowHeight, ConfigHeight},
		{xproto.ConfigWindowBorderWidth, ConfigBorder},
		{xproto.ConfigWindowSibling, ConfigSibling},
		{xproto.ConfigWindowStackMode, ConfigStackMode},
	}
	for _, bit := range bits {
		if e.ValueMask&bit.mask != 0 {
			req.Fields |= bit.field
		}
	}
	return req
}

func (b *LinuxBackend) addDock(win xproto.Window) {
	b.mu.Lock()
	b.docks[win] = struct{}{}
	b.mu.Unlock()

	xu := b.conn.XUtil
	if err := b.conn.SelectEvents(win, xproto.EventMaskPropertyChange|xproto.EventMaskStructureNotify); err != nil {
		b.logger.Debug("select dock events", "window", win, "error", err)
	}
	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, e xevent.PropertyNotifyEvent) {
		name, _ := xprop.AtomName(xu, e.Atom)
		if name == "_NET_WM_STRUT" || name == "_NET_WM_STRUT_PARTIAL" {
			b.Emit(ScreensChanged{})
		}
	}).Connect(xu, win)
	if err := b.conn.Map(win); err != nil {
		b.logger.Debug("map dock", "window", win, "error", err)
	}
	b.Emit(ScreensChanged{})
}

func (b *LinuxBackend) removeDock(win xproto.Window) bool {
	b.mu.Lock()
	_, ok := b.docks[win]
	delete(b.docks, win)
	b.mu.Unlock()
	if ok {
		xevent.Detach(b.conn.XUtil, win)
		b.Emit(ScreensChanged{})
	}
	return ok
}

func (b *LinuxBackend) dockList() []xproto.Window {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Collect(maps.Keys(b.docks))
}

// Displays returns the active outputs with dock struts removed from their
// usable area.
func (b *LinuxBackend) Displays() ([]Display, error) {
	monitors, err := b.conn.Monitors(b.dockList())
	if err != nil {
		return nil, err
	}
	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, displayFromMonitor(m))
	}
	return displays, nil
}

// Windows lists the mapped or iconified top-level windows found at startup.
// Docks are tracked by the backend and left out.
func (b *LinuxBackend) Windows() ([]WindowID, error) {
	children, err := b.conn.TopLevel()
	if err != nil {
		return nil, err
	}
	var ids []WindowID
	for _, win := range children {
		if win == b.conn.Check {
			continue
		}
		p, err := b.conn.ReadProps(win)
		if err != nil || p.OverrideRedirect || !p.Viewable {
			continue
		}
		if p.Dock {
			b.mu.Lock()
			b.docks[win] = struct{}{}
			b.mu.Unlock()
			continue
		}
		ids = append(ids, WindowID(win))
	}
	return ids, nil
}

// WindowInfo reads the properties of id.
func (b *LinuxBackend) WindowInfo(id WindowID) (WindowInfo, error) {
	p, err := b.conn.ReadProps(xproto.Window(id))
	if err != nil {
		return WindowInfo{}, wrap(id, err)
	}
	return WindowInfo{
		ID:               id,
		PID:              p.PID,
		Class:            p.Class,
		Instance:         p.Instance,
		Title:            p.Title,
		Bounds:           Rect{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height},
		Border:           p.Border,
		TransientFor:     WindowID(p.TransientFor),
		Fixed:            p.Fixed,
		Urgent:           p.Urgent,
		NeverFocus:       p.NeverFocus,
		Fullscreen:       p.Fullscreen,
		Dialog:           p.Dialog,
		OverrideRedirect: p.OverrideRedirect,
	}, nil
}

// Pointer returns the pointer position in root coordinates.
func (b *LinuxBackend) Pointer() (int, int, error) {
	return b.conn.Pointer()
}

// Manage selects client events on id, maps it and installs client bindings.
func (b *LinuxBackend) Manage(id WindowID) error {
	win := xproto.Window(id)
	if err := b.conn.SelectEvents(win, x11.ClientEventMask); err != nil {
		return wrap(id, err)
	}
	b.connectClient(win)
	if err := b.conn.SetWMState(win, icccm.StateNormal); err != nil {
		b.logger.Debug("set WM_STATE", "window", win, "error", err)
	}
	if err := b.conn.Map(win); err != nil {
		xevent.Detach(b.conn.XUtil, win)
		return wrap(id, err)
	}
	if b.input != nil {
		b.input.Grab(id)
	}
	return nil
}

// Unmanage drops the per-window callbacks and bindings of id.
func (b *LinuxBackend) Unmanage(id WindowID) {
	win := xproto.Window(id)
	xevent.Detach(b.conn.XUtil, win)
	if b.input != nil {
		b.input.Ungrab(id)
	}
	// The window may already be destroyed.
	_ = b.conn.SetWMState(win, icccm.StateWithdrawn)
}

// Configure moves and resizes id.
func (b *LinuxBackend) Configure(id WindowID, r Rect, border int) error {
	return wrap(id, b.conn.MoveResize(xproto.Window(id), r.X, r.Y, r.Width, r.Height, border))
}

// Forward applies a configure request from an unmanaged window unchanged.
func (b *LinuxBackend) Forward(req ConfigureRequest) error {
	var mask uint16
	var values []uint32
	add := func(f ConfigFields, bit uint16, v uint32) {
		if req.Fields&f != 0 {
			mask |= bit
			values = append(values, v)
		}
	}
	add(ConfigX, xproto.ConfigWindowX, uint32(int32(req.Rect.X)))
	add(ConfigY, xproto.ConfigWindowY, uint32(int32(req.Rect.Y)))
	add(ConfigWidth, xproto.ConfigWindowWidth, uint32(req.Rect.Width))
	add(ConfigHeight, xproto.ConfigWindowHeight, uint32(req.Rect.Height))
	add(ConfigBorder, xproto.ConfigWindowBorderWidth, uint32(req.Border))
	add(ConfigSibling, xproto.ConfigWindowSibling, uint32(req.Sibling))
	add(ConfigStackMode, xproto.ConfigWindowStackMode, uint32(req.StackMode))
	if mask == 0 {
		return nil
	}
	return wrap(req.Window, b.conn.ConfigureRaw(xproto.Window(req.Window), mask, values))
}

// SetBorderColor sets the border pixel of id.
func (b *LinuxBackend) SetBorderColor(id WindowID, color uint32) error {
	return wrap(id, b.conn.SetBorderColor(xproto.Window(id), color))
}

// Restack orders ids top to bottom.
func (b *LinuxBackend) Restack(ids []WindowID) error {
	wins := make([]xproto.Window, len(ids))
	for i, id := range ids {
		wins[i] = xproto.Window(id)
	}
	return b.conn.Restack(wins)
}

// Focus gives input focus to id, or to the root window when id is 0.
func (b *LinuxBackend) Focus(id WindowID) error {
	win := xproto.Window(id)
	if id == 0 {
		return b.conn.Focus(0, false)
	}
	_, neverFocus := b.conn.Hints(win)
	b.conn.ClearUrgent(win)
	return wrap(id, b.conn.Focus(win, !neverFocus))
}

// Close asks id to close, killing its client when WM_DELETE_WINDOW is not
// supported.
func (b *LinuxBackend) Close(id WindowID) error {
	return wrap(id, b.conn.CloseWindow(xproto.Window(id)))
}

// SetFullscreen updates the _NET_WM_STATE of id.
func (b *LinuxBackend) SetFullscreen(id WindowID, on bool) error {
	return wrap(id, b.conn.SetFullscreenState(xproto.Window(id), on))
}

// SetClientList publishes the managed windows in _NET_CLIENT_LIST.
func (b *LinuxBackend) SetClientList(ids []WindowID) error {
	wins := make([]xproto.Window, len(ids))
	for i, id := range ids {
		wins[i] = xproto.Window(id)
	}
	return b.conn.SetClientList(wins)
}

// Publish exports tags as EWMH desktops.
func (b *LinuxBackend) Publish(tags []string, selected uint32, focused WindowID, windows map[WindowID]uint32) error {
	if !slices.Equal(tags, b.names) {
		if err := b.conn.SetDesktops(tags); err != nil {
			return err
		}
		b.names = slices.Clone(tags)
	}
	if err := b.conn.SetCurrentDesktop(max(x11.DesktopFor(selected, len(tags)), 0)); err != nil {
		return err
	}
	for id, mask := range windows {
		if err := b.conn.SetWindowDesktop(xproto.Window(id), x11.DesktopFor(mask, len(tags))); err != nil && !x11.IsGone(err) {
			return err
		}
	}
	return nil
}

// SetStatus writes the root window name.
func (b *LinuxBackend) SetStatus(text string) error {
	return b.conn.SetRootName(text)
}

func wrap(id WindowID, err error) error {
	if err == nil {
		return nil
	}
	if x11.IsGone(err) {
		return fmt.Errorf("window %#x: %w", uint32(id), ErrWindowGone)
	}
	return fmt.Errorf("window %#x: %w", uint32(id), err)
}

func displayFromMonitor(m x11.Monitor) Display {
	return Display{
		ID:     m.ID,
		Name:   m.Name,
		Bounds: Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
		Usable: Rect{X: m.Work.X, Y: m.Work.Y, Width: m.Work.Width, Height: m.Work.Height},
	}
}
