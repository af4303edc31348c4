// Package status renders a status line from system readings on a fixed
// interval, in the manner of slstatus.
package status

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultInterval is the time between two renders.
	DefaultInterval = time.Second
	// DefaultUnknown replaces readings that are not available.
	DefaultUnknown = "n/a"
	// MaxLen bounds the rendered text in bytes.
	MaxLen = 2048
)

// Component is one segment of the status line: the reading named by Func
// with Arg is substituted into Format with fmt verbs ("%s", "%3s%%").
type Component struct {
	Func   string `yaml:"func" json:"func"`
	Format string `yaml:"format" json:"format"`
	Arg    string `yaml:"arg,omitempty" json:"arg,omitempty"`
}

// Options configures a Generator.
type Options struct {
	Interval time.Duration
	Unknown  string
	Logger   *slog.Logger
	// SysRoot and ProcRoot default to /sys and /proc.
	SysRoot  string
	ProcRoot string
	Now      func() time.Time
}

// Generator renders the status line and hands every changed text to sink.
type Generator struct {
	components []Component
	sink       func(string)
	interval   time.Duration
	unknown    string
	logger     *slog.Logger
	env        env
}

// env is what readings need from the outside world.
type env struct {
	sys  string
	proc string
	now  func() time.Time
}

type reading func(ctx context.Context, e env, arg string) (string, error)

var readings = map[string]reading{
	"datetime":      datetime,
	"battery_state": batteryState,
	"battery_perc":  batteryPerc,
	"wifi_perc":     wifiPerc,
	"run_command":   runCommand,
}

// Known reports whether name is a supported reading.
func Known(name string) bool {
	_, ok := readings[name]
	return ok
}

// Names lists the supported readings.
func Names() []string {
	names := make([]string, 0, len(readings))
	for name := range readings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds a Generator. Components naming unknown readings render the
// unknown string.
func New(components []Component, sink func(string), opts Options) *Generator {
	g := &Generator{
		components: append([]Component(nil), components...),
		sink:       sink,
		interval:   opts.Interval,
		unknown:    opts.Unknown,
		logger:     opts.Logger,
		env:        env{sys: opts.SysRoot, proc: opts.ProcRoot, now: opts.Now},
	}
	if g.interval <= 0 {
		g.interval = DefaultInterval
	}
	if g.unknown == "" {
		g.unknown = DefaultUnknown
	}
	if g.logger == nil {
		g.logger = slog.New(slog.DiscardHandler)
	}
	if g.env.sys == "" {
		g.env.sys = "/sys"
	}
	if g.env.proc == "" {
		g.env.proc = "/proc"
	}
	if g.env.now == nil {
		g.env.now = time.Now
	}
	return g
}

func (g *Generator) String() string { return "status" }

// Render produces one status line.
func (g *Generator) Render(ctx context.Context) string {
	var b strings.Builder
	for _, c := range g.components {
		value := g.unknown
		if fn, ok := readings[c.Func]; ok {
			v, err := fn(ctx, g.env, c.Arg)
			switch {
			case err != nil:
				g.logger.Debug("status reading failed", "func", c.Func, "arg", c.Arg, "error", err)
			case v != "":
				value = v
			}
		}
		b.WriteString(fmt.Sprintf(c.Format, value))
		if b.Len() >= MaxLen {
			break
		}
	}
	return truncate(b.String(), MaxLen)
}

// Serve renders on every tick until ctx ends. The sink is called only when
// the text changes.
func (g *Generator) Serve(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	last := ""
	first := true
	for {
		rctx, cancel := context.WithTimeout(ctx, g.interval)
		text := g.Render(rctx)
		cancel()
		if first || text != last {
			g.sink(text)
			last, first = text, false
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// truncate cuts s to at most n bytes without splitting a rune at the cut.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
