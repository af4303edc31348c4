package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultReconcileInterval is the time between two drift checks.
const DefaultReconcileInterval = 10 * time.Second

// ReconcileFunc performs one reconciliation pass.
type ReconcileFunc func(ctx context.Context) error

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically checks for drift between the managed clients and
// the windows that actually exist, for windows whose events were lost.
type Reconciler struct {
	interval time.Duration
	pass     ReconcileFunc
	logger   *slog.Logger
}

// NewReconciler creates a reconciler that calls pass on every tick.
func NewReconciler(cfg ReconcilerConfig, pass ReconcileFunc) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Reconciler{
		interval: interval,
		pass:     pass,
		logger:   logger,
	}
}

func (r *Reconciler) String() string { return "reconciler" }

// Serve runs the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Serve(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Debug("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("reconciler stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := r.reconcile(ctx); err != nil {
				r.logger.Warn("reconciler pass failed", "error", err)
			}
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile(ctx context.Context) (err error) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("reconciler panic: %v", p)
		}
	}()

	pctx, cancel := context.WithTimeout(ctx, r.interval)
	defer cancel()
	return r.pass(pctx)
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow(ctx context.Context) error {
	return r.reconcile(ctx)
}
