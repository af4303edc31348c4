// Package spawn starts external commands for the window manager and reads
// process ancestry from /proc.
package spawn

import (
	"log/slog"
	"os"
	"os/exec"
	"syscall"
)

// Spawner launches commands detached from the window manager's process
// group. It never waits on the caller's goroutine.
type Spawner struct {
	logger *slog.Logger
	env    []string
}

// New returns a Spawner. extraEnv entries ("KEY=value") are appended to the
// inherited environment.
func New(logger *slog.Logger, extraEnv ...string) *Spawner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Spawner{logger: logger, env: extraEnv}
}

// Spawn starts argv and reaps it in the background.
func (s *Spawner) Spawn(argv []string) {
	if len(argv) == 0 {
		return
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if len(s.env) > 0 {
		cmd.Env = append(os.Environ(), s.env...)
	}
	if err := cmd.Start(); err != nil {
		s.logger.Warn("could not start command", "argv", argv, "error", err)
		return
	}
	s.logger.Debug("spawned", "argv", argv, "pid", cmd.Process.Pid)
	go func() {
		// The program's own exit status is not interesting.
		_ = cmd.Wait()
	}()
}
