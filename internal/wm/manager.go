// Package wm owns the managed clients and monitors: registration, tag
// views, focus order, layout application and monitor hot-plug.
//
// A Manager is not safe for concurrent use. It is driven from a single
// control loop; other goroutines read state through Snapshot values.
package wm

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/rules"
	"github.com/1broseidon/tagtile/internal/tiling"
)

// Layout is one entry of the layout palette.
type Layout struct {
	Symbol string
	Kind   tiling.Kind
}

// Settings is the immutable configuration the Manager is built from.
type Settings struct {
	Tags    []string
	Layouts []Layout

	MFact   float64
	NMaster int

	BorderPx  int
	Snap      int
	ShowBar   bool
	TopBar    bool
	BarHeight int

	LockFullscreen  bool
	SwallowFloating bool

	NormBorder   uint32
	SelBorder    uint32
	UrgentBorder uint32

	Rules *rules.Matcher
}

// NumTags returns the number of configured tags.
func (s Settings) NumTags() int { return len(s.Tags) }

// TagMask returns the mask with every configured tag set.
func (s Settings) TagMask() uint32 {
	n := len(s.Tags)
	if n >= 32 {
		return ^uint32(0)
	}
	return 1<<uint(n) - 1
}

func (s Settings) validate() error {
	if len(s.Tags) == 0 || len(s.Tags) > 31 {
		return fmt.Errorf("tag count %d outside 1-31", len(s.Tags))
	}
	if len(s.Layouts) == 0 {
		return errors.New("layout palette is empty")
	}
	if s.NMaster < 0 {
		return fmt.Errorf("nmaster %d is negative", s.NMaster)
	}
	return nil
}

// Spawner launches external commands without waiting for them.
type Spawner interface {
	Spawn(argv []string)
}

// ProcessTree resolves process ancestry for terminal swallowing.
type ProcessTree interface {
	// ParentPID returns the parent of pid, or 0 when unknown.
	ParentPID(pid int) int
}

// Options carries the Manager's optional collaborators.
type Options struct {
	Logger  *slog.Logger
	Spawner Spawner
	Procs   ProcessTree
}

// Manager is the window-manager core.
type Manager struct {
	backend  platform.Backend
	settings Settings
	logger   *slog.Logger
	spawner  Spawner
	procs    ProcessTree

	clients  map[ClientID]*Client
	byWindow map[platform.WindowID]ClientID
	nextID   ClientID

	monitors []*Monitor
	selmon   int

	drag   *dragState
	gone   []platform.WindowID
	status string

	running bool
}

// New builds a Manager. At least one display is required.
func New(backend platform.Backend, settings Settings, displays []platform.Display, opts Options) (*Manager, error) {
	if err := settings.validate(); err != nil {
		return nil, err
	}
	displays = uniqueDisplays(displays)
	if len(displays) == 0 {
		return nil, errors.New("no displays")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	m := &Manager{
		backend:  backend,
		settings: settings,
		logger:   logger,
		spawner:  opts.Spawner,
		procs:    opts.Procs,
		clients:  make(map[ClientID]*Client),
		byWindow: make(map[platform.WindowID]ClientID),
		running:  true,
	}
	for i, d := range displays {
		m.monitors = append(m.monitors, m.newMonitor(i, d))
	}
	return m, nil
}

// Adopt manages windows that already exist, as found at startup.
// Transient windows are adopted after their parents.
func (m *Manager) Adopt() error {
	ids, err := m.backend.Windows()
	if err != nil {
		return fmt.Errorf("list windows: %w", err)
	}
	var transients []platform.WindowInfo
	for _, id := range ids {
		info, err := m.backend.WindowInfo(id)
		if err != nil {
			m.logger.Debug("skip window at startup", "window", id, "error", err)
			continue
		}
		if info.OverrideRedirect {
			continue
		}
		if info.TransientFor != 0 {
			transients = append(transients, info)
			continue
		}
		if _, err := m.Attach(info); err != nil {
			m.logger.Warn("adopt window", "window", id, "error", err)
		}
	}
	for _, info := range transients {
		if _, err := m.Attach(info); err != nil {
			m.logger.Warn("adopt transient", "window", info.ID, "error", err)
		}
	}
	return nil
}

// Running reports whether quit has not been requested.
func (m *Manager) Running() bool { return m.running }

// Settings returns the active settings.
func (m *Manager) Settings() Settings { return m.settings }

// SelectedMonitor returns the index of the selected monitor.
func (m *Manager) SelectedMonitor() int { return m.selmon }

// Selected returns the selected client of the selected monitor, 0 when none.
func (m *Manager) Selected() ClientID {
	return m.monitors[m.selmon].Sel
}

// Client returns a copy of the client with the given id.
func (m *Manager) Client(id ClientID) (Client, bool) {
	c, ok := m.clients[id]
	if !ok {
		return Client{}, false
	}
	return *c, true
}

// ClientByWindow resolves a platform window to its client id.
func (m *Manager) ClientByWindow(w platform.WindowID) (ClientID, bool) {
	id, ok := m.byWindow[w]
	return id, ok
}

// MonitorCount returns the number of tracked monitors.
func (m *Manager) MonitorCount() int { return len(m.monitors) }

// SetStatus stores the status text shown to bars.
func (m *Manager) SetStatus(text string) { m.status = text }

// Reconfigure swaps in new settings. Tag count and palette length are fixed
// for the life of the Manager. Per-monitor geometry defaults only apply to
// monitors created afterwards.
func (m *Manager) Reconfigure(s Settings) error {
	if err := s.validate(); err != nil {
		return err
	}
	if len(s.Tags) != len(m.settings.Tags) {
		return fmt.Errorf("tag count changed from %d to %d; restart required", len(m.settings.Tags), len(s.Tags))
	}
	if len(s.Layouts) != len(m.settings.Layouts) {
		return fmt.Errorf("layout palette length changed from %d to %d; restart required", len(m.settings.Layouts), len(s.Layouts))
	}
	m.settings = s
	for _, c := range m.clients {
		if !c.Fullscreen {
			c.Border = s.BorderPx
		}
	}
	for _, mon := range m.monitors {
		m.updateBarPos(mon)
	}
	m.arrangeAll()
	m.focus(nil)
	m.reap()
	return nil
}

// check records windows that vanished underneath an operation so they can
// be detached once the current operation completes.
func (m *Manager) check(c *Client, op string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, platform.ErrWindowGone) {
		m.logger.Debug("window gone", "window", c.Window, "op", op)
		m.gone = append(m.gone, c.Window)
		return
	}
	m.logger.Warn("backend call failed", "window", c.Window, "op", op, "error", err)
}

// reap detaches clients whose windows were reported gone.
func (m *Manager) reap() {
	for len(m.gone) > 0 {
		w := m.gone[0]
		m.gone = m.gone[1:]
		if id, ok := m.byWindow[w]; ok {
			m.detach(id, true)
		}
	}
}
