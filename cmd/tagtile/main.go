package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/phsym/console-slog"
	"golang.org/x/term"

	"github.com/1broseidon/tagtile/internal/build"
	"github.com/1broseidon/tagtile/internal/config"
)

func main() {
	// A .env next to the working directory may set DISPLAY or TAGTILE_SOCKET.
	godotenv.Load()

	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "clients":
		os.Exit(runClients(os.Args[2:]))
	case "monitors":
		os.Exit(runMonitors(os.Args[2:]))
	case "layouts":
		os.Exit(runLayouts(os.Args[2:]))
	case "command":
		os.Exit(runCommand(os.Args[2:]))
	case "click":
		os.Exit(runClick(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "subscribe":
		os.Exit(runSubscribe(os.Args[2:]))
	case "menu":
		os.Exit(runMenu(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "version", "--version":
		fmt.Println(build.Current.String())
		os.Exit(0)
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tagtile <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Run the window manager (foreground)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  status              Show tags, monitors and status text")
	fmt.Fprintln(w, "  clients             List managed windows")
	fmt.Fprintln(w, "  monitors            List monitors")
	fmt.Fprintln(w, "  layouts             List the layout palette")
	fmt.Fprintln(w, "  command             Run a command (view, tag, setlayout, spawn, ...)")
	fmt.Fprintln(w, "  click               Forward a bar click")
	fmt.Fprintln(w, "  reload              Reload the configuration")
	fmt.Fprintln(w, "  subscribe           Stream state changes as JSON lines")
	fmt.Fprintln(w, "  menu                Launcher menu (rofi or dmenu)")
	fmt.Fprintln(w, "  tui                 Live dashboard")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "  version             Print version")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'tagtile <command> --help' for command-specific options.")
}

// newLogger writes colored console logs to a terminal and plain text
// otherwise.
func newLogger(level slog.Level) *slog.Logger {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
			Level: level,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// loadConfig reads path, or the default location when path is empty.
func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

// stdoutIsTerminal decides between tables and JSON output.
func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
