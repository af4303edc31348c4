// Package daemon runs the control loop that owns the window-manager core.
// Every mutation of the Manager happens on the goroutine running Run:
// window-system events, bound chords, IPC requests, status text and config
// reloads are all serialized through it.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"runtime/debug"
	"slices"
	"sync/atomic"
	"syscall"

	"github.com/1broseidon/tagtile/internal/bus"
	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/dispatch"
	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/wm"
	"github.com/google/go-cmp/cmp"
)

// ErrStopped is returned by requests made after the control loop exited.
var ErrStopped = errors.New("control loop stopped")

// Input installs the configured chords on the window system.
type Input interface {
	Apply(t *dispatch.Table) error
	NumLock() dispatch.Modifiers
}

// Options configures a Daemon.
type Options struct {
	Backend platform.Backend
	// Config is the validated configuration to start with.
	Config *config.LoadResult
	// ConfigPath is re-read on reload; empty means the default location.
	ConfigPath string

	Input   Input
	Spawner wm.Spawner
	Procs   wm.ProcessTree
	Logger  *slog.Logger

	// OnReload is called on the control loop after a reload was applied.
	OnReload func(res *config.LoadResult)
}

type request struct {
	fn   func() error
	done chan error
}

// Daemon drives a wm.Manager from a single goroutine.
type Daemon struct {
	backend   platform.Backend
	publisher platform.Publisher
	input     Input
	logger    *slog.Logger
	load      func() (*config.LoadResult, error)
	onReload  func(res *config.LoadResult)

	cfg   *config.Config
	table *dispatch.Table
	mgr   *wm.Manager

	events   chan platform.Event
	requests chan request
	status   chan string
	done     chan struct{}

	snapshot  atomic.Pointer[wm.Snapshot]
	last      *wm.Snapshot
	hub       *bus.Hub[wm.Snapshot]
	published view
}

// view is what pagers and taskbars see of the tag state.
type view struct {
	tags     []string
	selected uint32
	focused  platform.WindowID
	windows  map[platform.WindowID]uint32
}

func (v view) equal(o view) bool {
	return slices.Equal(v.tags, o.tags) && v.selected == o.selected &&
		v.focused == o.focused && maps.Equal(v.windows, o.windows)
}

// New builds the Manager for the backend's current displays.
func New(opts Options) (*Daemon, error) {
	if opts.Backend == nil {
		return nil, errors.New("daemon: backend is required")
	}
	if opts.Config == nil || opts.Config.Config == nil {
		return nil, errors.New("daemon: config is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cfg := opts.Config.Config
	settings, err := cfg.Settings()
	if err != nil {
		return nil, err
	}
	table, err := cfg.Table()
	if err != nil {
		return nil, err
	}
	displays, err := opts.Backend.Displays()
	if err != nil {
		return nil, fmt.Errorf("query displays: %w", err)
	}
	mgr, err := wm.New(opts.Backend, settings, displays, wm.Options{
		Logger:  logger,
		Spawner: opts.Spawner,
		Procs:   opts.Procs,
	})
	if err != nil {
		return nil, err
	}

	path := opts.ConfigPath
	d := &Daemon{
		backend:  opts.Backend,
		input:    opts.Input,
		logger:   logger,
		onReload: opts.OnReload,
		load: func() (*config.LoadResult, error) {
			if path == "" {
				return config.LoadWithSources()
			}
			return config.LoadFromPath(path)
		},
		cfg:      cfg,
		table:    table,
		mgr:      mgr,
		events:   make(chan platform.Event, 256),
		requests: make(chan request),
		status:   make(chan string, 1),
		done:     make(chan struct{}),
		hub:      bus.NewHub[wm.Snapshot](),
	}
	if p, ok := opts.Backend.(platform.Publisher); ok {
		d.publisher = p
	}
	snap := mgr.Snapshot()
	d.snapshot.Store(&snap)
	return d, nil
}

// Events is where the backend and the input layer deliver events.
func (d *Daemon) Events() chan<- platform.Event { return d.events }

// Start grabs the configured chords and adopts the existing windows. It
// must be called before Run, from the goroutine that will run it.
func (d *Daemon) Start() error {
	if d.input != nil {
		if err := d.input.Apply(d.table); err != nil {
			d.logger.Warn("some bindings could not be grabbed", "error", err)
		}
	}
	if err := d.mgr.Adopt(); err != nil {
		return err
	}
	d.publish()
	return nil
}

// Run processes events and requests until quit is executed or ctx ends.
// It returns nil after quit.
func (d *Daemon) Run(ctx context.Context) error {
	defer close(d.done)

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	d.publish()
	for d.mgr.Running() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-d.events:
			d.guard("event", func() { d.handle(ev) })
		case req := <-d.requests:
			var err error
			d.guard("request", func() { err = req.fn() })
			// Callers read Snapshot right after the reply.
			d.publish()
			req.done <- err
		case text := <-d.status:
			d.guard("status", func() { d.setStatus(text) })
		case <-hup:
			d.guard("reload", func() { _ = d.reload("SIGHUP") })
		}
		d.publish()
	}
	d.logger.Info("quit requested")
	return nil
}

// guard keeps a failing handler from taking the loop down.
func (d *Daemon) guard(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("control loop panic recovered", "while", what, "panic", r)
			d.logger.Debug(string(debug.Stack()))
		}
	}()
	fn()
}

func (d *Daemon) handle(ev platform.Event) {
	switch e := ev.(type) {
	case platform.KeyPressed:
		trig := dispatch.KeyTrigger{Mods: dispatch.Modifiers(e.Mods).Clean(d.numLock()), Key: e.Key}
		if a, ok := d.table.LookupKey(trig); ok {
			d.logger.Debug("key binding", "chord", trig.String(), "action", a.String())
			d.mgr.Execute(a)
		}
	case platform.ButtonPressed:
		region := dispatch.RegionRootWin
		if d.mgr.PressAt(e.Window, e.X, e.Y) {
			region = dispatch.RegionClientWin
		}
		trig := dispatch.ButtonTrigger{
			Region: region,
			Mods:   dispatch.Modifiers(e.Mods).Clean(d.numLock()),
			Button: e.Button,
		}
		if a, ok := d.table.LookupButton(trig); ok {
			d.logger.Debug("button binding", "trigger", trig.String(), "action", a.String())
			d.mgr.Execute(a)
		}
	case platform.RootName:
		// The generator owns the status text when it runs.
		if !d.cfg.Status.Enabled {
			d.mgr.SetStatus(e.Text)
		}
	default:
		d.mgr.HandleEvent(ev)
	}
}

func (d *Daemon) numLock() dispatch.Modifiers {
	if d.input == nil {
		return 0
	}
	return d.input.NumLock()
}

// PushStatus hands generated status text to the loop. Only the latest text
// is kept when the loop is busy.
func (d *Daemon) PushStatus(text string) {
	for {
		select {
		case d.status <- text:
			return
		default:
		}
		select {
		case <-d.status:
		default:
		}
	}
}

func (d *Daemon) setStatus(text string) {
	d.mgr.SetStatus(text)
	if d.publisher == nil {
		return
	}
	if err := d.publisher.SetStatus(text); err != nil {
		d.logger.Debug("export status text", "error", err)
	}
}

// publish stores and broadcasts the state when it changed and exports the
// tag view.
func (d *Daemon) publish() {
	snap := d.mgr.Snapshot()
	if d.last != nil && cmp.Equal(*d.last, snap) {
		return
	}
	d.last = &snap
	d.snapshot.Store(&snap)
	d.hub.Broadcast(snap)

	if d.publisher == nil {
		return
	}
	v := viewOf(snap)
	if v.equal(d.published) {
		return
	}
	if err := d.publisher.Publish(v.tags, v.selected, v.focused, v.windows); err != nil {
		d.logger.Debug("export tag view", "error", err)
		return
	}
	d.published = v
}

func viewOf(snap wm.Snapshot) view {
	v := view{
		tags:    snap.Tags,
		windows: make(map[platform.WindowID]uint32, len(snap.Clients)),
	}
	var sel wm.ClientID
	if snap.SelectedMonitor >= 0 && snap.SelectedMonitor < len(snap.Monitors) {
		mon := snap.Monitors[snap.SelectedMonitor]
		v.selected = mon.SelectedTags
		sel = mon.Selected
	}
	for _, c := range snap.Clients {
		v.windows[c.Window] = c.Tags
		if c.ID == sel && sel != 0 {
			v.focused = c.Window
		}
	}
	return v
}

// reload re-reads the configuration and applies it. A configuration that
// fails to load or apply is rejected and the running one is kept.
func (d *Daemon) reload(reason string) error {
	d.logger.Info("reloading config", "reason", reason)
	res, err := d.load()
	if err != nil {
		d.logger.Warn("config reload rejected", "error", err)
		return err
	}
	settings, err := res.Config.Settings()
	if err != nil {
		d.logger.Warn("config reload rejected", "error", err)
		return err
	}
	table, err := res.Config.Table()
	if err != nil {
		d.logger.Warn("config reload rejected", "error", err)
		return err
	}
	if err := d.mgr.Reconfigure(settings); err != nil {
		d.logger.Warn("config reload rejected", "error", err)
		return err
	}

	if diff := config.Diff(d.cfg, res.Config); diff != "" {
		d.logger.Info("config changed", "diff", diff)
	} else {
		d.logger.Info("config unchanged")
	}
	d.cfg = res.Config
	d.table = table
	if d.input != nil {
		if err := d.input.Apply(table); err != nil {
			d.logger.Warn("some bindings could not be grabbed", "error", err)
		}
	}
	if d.onReload != nil {
		d.onReload(res)
	}
	return nil
}

// reconcile drops clients whose windows vanished without an event and
// manages mapped windows that were missed.
func (d *Daemon) reconcile() error {
	var detached, adopted int
	for _, c := range d.mgr.Snapshot().Clients {
		if _, err := d.backend.WindowInfo(c.Window); errors.Is(err, platform.ErrWindowGone) {
			d.logger.Info("reconciler: window vanished", "window", c.Window, "client", c.ID)
			d.mgr.Detach(c.ID)
			detached++
		}
	}

	ids, err := d.backend.Windows()
	if err != nil {
		return fmt.Errorf("list windows: %w", err)
	}
	for _, id := range ids {
		if _, ok := d.mgr.ClientByWindow(id); ok {
			continue
		}
		info, err := d.backend.WindowInfo(id)
		if err != nil || info.OverrideRedirect {
			continue
		}
		if _, err := d.mgr.Attach(info); err != nil {
			d.logger.Debug("reconciler: attach", "window", id, "error", err)
			continue
		}
		d.logger.Info("reconciler: adopted unmanaged window", "window", id)
		adopted++
	}
	if detached+adopted > 0 {
		d.logger.Debug("reconciler: pass done", "detached", detached, "adopted", adopted)
	}
	return nil
}
