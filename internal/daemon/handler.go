package daemon

import (
	"context"
	"fmt"

	"github.com/1broseidon/tagtile/internal/dispatch"
	"github.com/1broseidon/tagtile/internal/ipc"
	"github.com/1broseidon/tagtile/internal/wm"
)

var _ ipc.Handler = (*Daemon)(nil)

// Snapshot returns the most recently published state. It is safe to call
// from any goroutine.
func (d *Daemon) Snapshot() wm.Snapshot {
	return *d.snapshot.Load()
}

// Subscribe streams every published state change.
func (d *Daemon) Subscribe(ctx context.Context) (<-chan wm.Snapshot, func()) {
	return d.hub.Subscribe(ctx)
}

// RunCommand parses p against the running configuration and executes it.
func (d *Daemon) RunCommand(ctx context.Context, p ipc.CommandPayload) error {
	return d.do(ctx, func() error {
		a, err := d.cfg.Action(p.Command, p.Arg, p.Argv)
		if err != nil {
			return err
		}
		d.logger.Debug("ipc command", "action", a.String())
		d.mgr.Execute(a)
		return nil
	})
}

// Click resolves a bar click through the button table and executes the
// bound action. Clicks without a binding are ignored.
func (d *Daemon) Click(ctx context.Context, p ipc.ClickPayload) error {
	region, err := dispatch.ParseRegion(p.Region)
	if err != nil {
		return err
	}
	var mods dispatch.Modifiers
	for _, name := range p.Mods {
		m, err := dispatch.ParseModifier(name)
		if err != nil {
			return err
		}
		mods |= m
	}
	if p.Button < 1 {
		return fmt.Errorf("invalid button %d", p.Button)
	}
	trig := dispatch.ButtonTrigger{Region: region, Mods: mods, Button: p.Button}

	return d.do(ctx, func() error {
		a, ok := d.table.Click(trig, p.Tag)
		if !ok {
			d.logger.Debug("click without binding", "trigger", trig.String())
			return nil
		}
		d.mgr.Execute(a)
		return nil
	})
}

// Reload re-reads the configuration file.
func (d *Daemon) Reload(ctx context.Context) error {
	return d.ReloadBecause(ctx, "ipc request")
}

// ReloadBecause re-reads the configuration file, logging reason.
func (d *Daemon) ReloadBecause(ctx context.Context, reason string) error {
	return d.do(ctx, func() error { return d.reload(reason) })
}

// Reconcile runs a drift check on the control loop.
func (d *Daemon) Reconcile(ctx context.Context) error {
	return d.do(ctx, d.reconcile)
}

// do runs fn on the control loop and waits for its result.
func (d *Daemon) do(ctx context.Context, fn func() error) error {
	req := request{fn: fn, done: make(chan error, 1)}
	select {
	case d.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-d.done:
		return ErrStopped
	}
	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-d.done:
		select {
		case err := <-req.done:
			return err
		default:
			return ErrStopped
		}
	}
}
