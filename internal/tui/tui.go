// Package tui is a live terminal dashboard for a running tagtile daemon.
// It follows the daemon's SUBSCRIBE stream and sends commands over IPC.
package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/tagtile/internal/ipc"
	"github.com/1broseidon/tagtile/internal/wm"
)

// retryDelay is how long the dashboard waits before subscribing again
// after the daemon went away.
const retryDelay = 2 * time.Second

// Daemon is the part of the IPC client the dashboard uses.
type Daemon interface {
	Subscribe(ctx context.Context, fn func(wm.Snapshot) error) (string, error)
	RunCommand(p ipc.CommandPayload) error
}

// snapshotMsg carries a state update from the subscription.
type snapshotMsg wm.Snapshot

// disconnectedMsg reports that the subscription ended.
type disconnectedMsg struct {
	err error
}

// Run shows the dashboard until the user quits or ctx is cancelled.
func Run(ctx context.Context, d Daemon) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(d), tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	go follow(ctx, d, p.Send)

	_, err := p.Run()
	return err
}

// follow keeps a subscription open, reconnecting until ctx is done.
func follow(ctx context.Context, d Daemon, send func(tea.Msg)) {
	for {
		_, err := d.Subscribe(ctx, func(s wm.Snapshot) error {
			send(snapshotMsg(s))
			return nil
		})
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			err = fmt.Errorf("subscription closed")
		}
		send(disconnectedMsg{err: err})

		select {
		case <-ctx.Done():
			return
		case <-time.After(retryDelay):
		}
	}
}
