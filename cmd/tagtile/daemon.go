package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/google/go-cmp/cmp"
	"github.com/thejerf/suture/v4"

	"github.com/1broseidon/tagtile/internal/build"
	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/daemon"
	"github.com/1broseidon/tagtile/internal/hotkeys"
	"github.com/1broseidon/tagtile/internal/ipc"
	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/spawn"
	"github.com/1broseidon/tagtile/internal/status"
	"github.com/1broseidon/tagtile/internal/supervise"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/tagtile/config.yaml)")
	display := fs.String("display", "", "X display (default: $DISPLAY)")
	debug := fs.Bool("debug", false, "Log at debug level")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tagtile daemon [--path PATH] [--display DISPLAY] [--debug]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the window manager in the foreground. SIGHUP reloads the configuration.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	configPath := *path
	if configPath == "" {
		if configPath, err = config.DefaultConfigPath(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	level := res.Config.SlogLevel()
	if *debug {
		level = slog.LevelDebug
	}
	logger := newLogger(level)
	logger.Info("starting", "version", build.Current.Version, "config", configPath, "files", len(res.Files))

	if err := serveDaemon(res, configPath, *display, logger); err != nil {
		logger.Error("daemon failed", "error", err)
		return 1
	}
	return 0
}

func serveDaemon(res *config.LoadResult, configPath, display string, logger *slog.Logger) error {
	backend, err := platform.NewLinuxBackendFromDisplay(display, "tagtile", logger)
	if err != nil {
		return err
	}
	defer backend.Disconnect()

	input, err := hotkeys.NewHandler(backend, backend.Emit, logger)
	if err != nil {
		return fmt.Errorf("set up key bindings: %w", err)
	}
	backend.SetClientInput(input)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	super := supervise.New("tagtile", logger)
	services := &services{super: super, logger: logger, cfg: res.Config}

	d, err := daemon.New(daemon.Options{
		Backend:    backend,
		Config:     res,
		ConfigPath: configPath,
		Input:      input,
		Spawner:    spawn.New(logger),
		Procs:      spawn.NewProcTree(),
		Logger:     logger,
		OnReload:   services.reloaded,
	})
	if err != nil {
		return err
	}
	services.daemon = d

	ipcServer, err := ipc.NewServer(d, logger)
	if err != nil {
		return err
	}
	supervise.Add(super, ipcServer)
	supervise.Add(super, daemon.NewReconciler(daemon.ReconcilerConfig{Logger: logger}, d.Reconcile))
	services.watcher = config.NewWatcher(watchFiles(configPath, res.Files), func(reason string) {
		if err := d.ReloadBecause(ctx, reason); err != nil {
			logger.Debug("automatic reload failed", "error", err)
		}
	}, logger)
	services.watcherToken = supervise.Add(super, services.watcher)
	services.watched = watchFiles(configPath, res.Files)
	services.startStatus(res.Config)

	if err := d.Start(); err != nil {
		return err
	}

	backendErr := make(chan error, 1)
	go func() {
		err := backend.Run(ctx, d.Events())
		if ctx.Err() != nil {
			backendErr <- nil
			return
		}
		if err == nil {
			err = errors.New("event loop exited")
		}
		cancel()
		backendErr <- fmt.Errorf("display connection lost: %w", err)
	}()

	superErr := super.ServeBackground(ctx)
	logger.Info("window manager running")

	runErr := d.Run(ctx)
	cancel()
	<-superErr
	if err := <-backendErr; err != nil {
		return err
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	logger.Info("stopped")
	return nil
}

// services keeps the supervised helpers in step with reloaded configs.
type services struct {
	super  *suture.Supervisor
	logger *slog.Logger
	daemon *daemon.Daemon
	cfg    *config.Config

	watcher      *config.Watcher
	watcherToken suture.ServiceToken
	watched      []string

	statusToken *suture.ServiceToken
}

func (s *services) startStatus(cfg *config.Config) {
	if !cfg.Status.Enabled {
		return
	}
	gen := status.New(cfg.Status.Components, s.daemon.PushStatus, status.Options{
		Interval: cfg.Status.Interval,
		Unknown:  cfg.Status.Unknown,
		Logger:   s.logger,
	})
	token := supervise.Add(s.super, gen)
	s.statusToken = &token
}

// reloaded runs on the control loop after a reload was applied.
func (s *services) reloaded(res *config.LoadResult) {
	prev := s.cfg
	s.cfg = res.Config

	if !cmp.Equal(prev.Status, res.Config.Status) {
		if s.statusToken != nil {
			if err := s.super.Remove(*s.statusToken); err != nil {
				s.logger.Debug("stop status generator", "error", err)
			}
			s.statusToken = nil
		}
		s.startStatus(res.Config)
		s.logger.Info("status generator restarted", "enabled", res.Config.Status.Enabled)
	}

	files := watchFiles(s.watched[0], res.Files)
	if !slices.Equal(files, s.watched) {
		s.watcher.SetFiles(files)
		if err := s.super.Remove(s.watcherToken); err != nil {
			s.logger.Debug("stop config watcher", "error", err)
		}
		s.watcherToken = supervise.Add(s.super, s.watcher)
		s.watched = files
		s.logger.Debug("watching config files", "files", files)
	}
}

// watchFiles is the main config path followed by its includes.
func watchFiles(path string, loaded []string) []string {
	files := []string{path}
	for _, f := range loaded {
		if !slices.Contains(files, f) {
			files = append(files, f)
		}
	}
	return files
}
