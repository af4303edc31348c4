// Package hotkeys grabs the configured key and pointer chords on the X
// server and reports them as platform events.
package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/tagtile/internal/dispatch"
	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/BurntSushi/xgbutil/xevent"
)

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// clientBinding is a pointer chord grabbed on every managed window.
type clientBinding struct {
	trig   dispatch.ButtonTrigger
	drag   bool
	cursor xproto.Cursor
}

// Handler manages global keyboard shortcuts and pointer bindings.
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	emit   func(platform.Event)
	logger *slog.Logger

	mu      sync.Mutex
	client  []clientBinding
	windows map[xproto.Window]struct{}
	numLock dispatch.Modifiers
}

var (
	_ platform.ClientInput = (*Handler)(nil)

	ignoreModsOnce sync.Once
)

// ErrNoX11 is returned when the backend does not expose an X connection.
var ErrNoX11 = errors.New("backend has no X11 connection")

// NewHandler creates a handler that reports chords through emit.
func NewHandler(backend platform.Backend, emit func(platform.Event), logger *slog.Logger) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok || accessor.XUtil() == nil {
		return nil, ErrNoX11
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	xu := accessor.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:      xu,
		root:    accessor.RootWindow(),
		emit:    emit,
		logger:  logger,
		windows: make(map[xproto.Window]struct{}),
		numLock: dispatch.Modifiers(modMaskForKeysym(xu, "Num_Lock")),
	}, nil
}

// NumLock returns the modifier bit NumLock is mapped to.
func (h *Handler) NumLock() dispatch.Modifiers { return h.numLock }

// Apply replaces every grab with the bindings of t. Chords the server
// cannot grab are reported together; the rest stay active.
func (h *Handler) Apply(t *dispatch.Table) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	keybind.Detach(h.xu, h.root)
	mousebind.Detach(h.xu, h.root)
	for win := range h.windows {
		mousebind.Detach(h.xu, win)
	}

	var errs []error
	for _, kb := range t.Keys() {
		if err := h.RegisterKey(kb.Trigger); err != nil {
			errs = append(errs, err)
		}
	}

	h.client = h.client[:0]
	for _, bb := range t.Buttons() {
		switch bb.Trigger.Region {
		case dispatch.RegionRootWin:
			if err := h.registerRootButton(bb.Trigger); err != nil {
				errs = append(errs, err)
			}
		case dispatch.RegionClientWin:
			cb := clientBinding{trig: bb.Trigger}
			switch bb.Action.Cmd {
			case dispatch.CmdMoveMouse:
				cb.drag, cb.cursor = true, h.cursor(xcursor.Fleur)
			case dispatch.CmdResizeMouse:
				cb.drag, cb.cursor = true, h.cursor(xcursor.BottomRightCorner)
			}
			h.client = append(h.client, cb)
		}
		// Bar regions arrive through CLICK requests from external bars.
	}

	for win := range h.windows {
		h.grabClient(win)
	}
	return errors.Join(errs...)
}

// RegisterKey grabs a key chord on the root window.
func (h *Handler) RegisterKey(trig dispatch.KeyTrigger) error {
	ev := platform.KeyPressed{Mods: uint16(trig.Mods), Key: trig.Key}
	err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, e xevent.KeyPressEvent) {
		h.emit(ev)
	}).Connect(h.xu, h.root, trig.String(), true)
	if err != nil {
		return fmt.Errorf("grab key %s: %w", trig, err)
	}
	return nil
}

func (h *Handler) registerRootButton(trig dispatch.ButtonTrigger) error {
	err := mousebind.ButtonPressFun(func(xu *xgbutil.XUtil, e xevent.ButtonPressEvent) {
		h.emit(platform.ButtonPressed{
			Mods:   uint16(trig.Mods),
			Button: trig.Button,
			X:      int(e.RootX),
			Y:      int(e.RootY),
		})
	}).Connect(h.xu, h.root, trig.Chord(), false, false)
	if err != nil {
		return fmt.Errorf("bind %s: %w", trig, err)
	}
	return nil
}

// Grab installs the client window bindings on id.
func (h *Handler) Grab(id platform.WindowID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	win := xproto.Window(id)
	h.windows[win] = struct{}{}
	h.grabClient(win)
}

// Ungrab removes the client window bindings from id.
func (h *Handler) Ungrab(id platform.WindowID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	win := xproto.Window(id)
	if _, ok := h.windows[win]; !ok {
		return
	}
	delete(h.windows, win)
	mousebind.Detach(h.xu, win)
}

func (h *Handler) grabClient(win xproto.Window) {
	id := platform.WindowID(win)
	for _, cb := range h.client {
		trig := cb.trig
		pressed := func(x, y int) {
			h.emit(platform.ButtonPressed{
				Window: id,
				Mods:   uint16(trig.Mods),
				Button: trig.Button,
				X:      x,
				Y:      y,
			})
		}

		if !cb.drag {
			err := mousebind.ButtonPressFun(func(xu *xgbutil.XUtil, e xevent.ButtonPressEvent) {
				pressed(int(e.RootX), int(e.RootY))
			}).Connect(h.xu, win, trig.Chord(), false, true)
			if err != nil {
				h.logger.Debug("grab client button", "window", win, "chord", trig.Chord(), "error", err)
			}
			continue
		}

		cursor := cb.cursor
		mousebind.Drag(h.xu, win, win, trig.Chord(), true,
			func(xu *xgbutil.XUtil, rx, ry, ex, ey int) (bool, xproto.Cursor) {
				pressed(rx, ry)
				return true, cursor
			},
			func(xu *xgbutil.XUtil, rx, ry, ex, ey int) {
				h.emit(platform.DragMotion{X: rx, Y: ry})
			},
			func(xu *xgbutil.XUtil, rx, ry, ex, ey int) {
				h.emit(platform.DragEnd{X: rx, Y: ry})
			})
	}
}

func (h *Handler) cursor(glyph uint16) xproto.Cursor {
	c, err := xcursor.CreateCursor(h.xu, glyph)
	if err != nil {
		h.logger.Debug("create cursor", "glyph", glyph, "error", err)
		return 0
	}
	return c
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
