package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/1broseidon/tagtile/internal/dispatch"
	"github.com/1broseidon/tagtile/internal/ipc"
	"github.com/1broseidon/tagtile/internal/wm"
)

// queryFlags parses the flags shared by the read-only commands.
func queryFlags(name, usage string, args []string) (asJSON bool, code int, ok bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Print JSON (default when stdout is not a terminal)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tagtile %s [--json]\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, usage)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return false, 0, false
		}
		return false, 2, false
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return false, 2, false
	}
	return *jsonOut || !stdoutIsTerminal(), 0, true
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	asJSON, code, ok := queryFlags("status", "Show tags, monitors and status text via IPC.", args)
	if !ok {
		return code
	}
	st, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if asJSON {
		return printJSON(st)
	}
	fmt.Printf("version:        %s\n", st.Version)
	fmt.Printf("uptime_seconds: %d\n", st.UptimeSeconds)
	fmt.Printf("status:         %s\n", st.Status)
	fmt.Println()
	printMonitors(os.Stdout, st.Tags, st.SelectedMonitor, st.Monitors)
	return 0
}

func runMonitors(args []string) int {
	asJSON, code, ok := queryFlags("monitors", "List monitors and their tag views via IPC.", args)
	if !ok {
		return code
	}
	client := ipc.NewClient()
	data, err := client.GetMonitors()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if asJSON {
		return printJSON(data)
	}
	st, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printMonitors(os.Stdout, st.Tags, data.SelectedMonitor, data.Monitors)
	return 0
}

func printMonitors(w io.Writer, tags []string, selected int, monitors []wm.MonitorState) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MON\tNAME\tGEOMETRY\tTAGS\tLAYOUT\tMFACT\tNMASTER\tFOCUSED")
	for _, m := range monitors {
		mark := " "
		if m.Index == selected {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s%d\t%s\t%dx%d+%d+%d\t%s\t%s\t%.2f\t%d\t%s\n",
			mark, m.Index, m.Name,
			m.Screen.Width, m.Screen.Height, m.Screen.X, m.Screen.Y,
			tagBar(tags, m), m.LayoutSymbol, m.MFact, m.NMaster, m.SelectedTitle)
	}
	tw.Flush()
}

// tagBar renders the tags of a monitor the way a dwm bar shows them:
// [name] for viewed tags, name* for occupied ones, name! for urgent ones.
func tagBar(tags []string, m wm.MonitorState) string {
	var parts []string
	for i, name := range tags {
		bit := uint32(1) << uint(i)
		switch {
		case m.SelectedTags&bit != 0:
			parts = append(parts, "["+name+"]")
		case m.UrgentTags&bit != 0:
			parts = append(parts, name+"!")
		case m.OccupiedTags&bit != 0:
			parts = append(parts, name+"*")
		default:
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, " ")
}

func runClients(args []string) int {
	asJSON, code, ok := queryFlags("clients", "List managed windows via IPC.", args)
	if !ok {
		return code
	}
	client := ipc.NewClient()
	data, err := client.GetClients()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if asJSON {
		return printJSON(data)
	}
	st, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWINDOW\tMON\tTAGS\tFLAGS\tCLASS\tTITLE")
	for _, c := range data.Clients {
		fmt.Fprintf(tw, "%d\t%#x\t%d\t%s\t%s\t%s\t%s\n",
			c.ID, uint32(c.Window), c.Monitor,
			dispatch.FormatMask(c.Tags, len(st.Tags)), clientFlags(c), c.Class, c.Title)
	}
	tw.Flush()
	return 0
}

func clientFlags(c wm.ClientState) string {
	var b strings.Builder
	for _, f := range []struct {
		on   bool
		mark byte
	}{
		{c.Visible, 'v'},
		{c.Floating, 'f'},
		{c.Fullscreen, 'F'},
		{c.Urgent, 'u'},
		{c.Terminal, 't'},
		{c.Swallowing != 0, 's'},
	} {
		if f.on {
			b.WriteByte(f.mark)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

func runLayouts(args []string) int {
	asJSON, code, ok := queryFlags("layouts", "List the layout palette and the layout of every monitor via IPC.", args)
	if !ok {
		return code
	}
	data, err := ipc.NewClient().GetLayouts()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if asJSON {
		return printJSON(data)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tSYMBOL\tKIND\tMONITORS")
	for _, l := range data.Layouts {
		var mons []string
		for i, sym := range data.Active {
			if sym == l.Symbol {
				mons = append(mons, strconv.Itoa(i))
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", l.Index, l.Symbol, l.Kind, strings.Join(mons, ","))
	}
	tw.Flush()
	return 0
}

func runCommand(args []string) int {
	fs := flag.NewFlagSet("command", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tagtile command <name> [arg] [-- argv...]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run a command the way a key binding would. Examples:")
		fmt.Fprintln(os.Stderr, "  tagtile command view 2")
		fmt.Fprintln(os.Stderr, "  tagtile command setlayout monocle")
		fmt.Fprintln(os.Stderr, "  tagtile command spawn term")
		fmt.Fprintln(os.Stderr, "  tagtile command spawn -- xterm -e htop")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintf(os.Stderr, "Commands: %s\n", strings.Join(dispatch.CommandNames(), ", "))
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	p, err := ipc.ParseCommandArgs(fs.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return 2
	}
	if err := ipc.NewClient().RunCommand(p); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runClick(args []string) int {
	fs := flag.NewFlagSet("click", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	region := fs.String("region", "", "tagbar, ltsymbol, statustext, wintitle, clientwin or rootwin")
	button := fs.Int("button", 1, "Pointer button")
	mods := fs.String("mods", "", "Comma separated modifiers, e.g. Mod1,Shift")
	tag := fs.Int("tag", -1, "Clicked tag index for tagbar clicks")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tagtile click --region REGION [--button N] [--mods MODS] [--tag N]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Forward a bar click to the button bindings.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if *region == "" || fs.NArg() != 0 {
		fs.Usage()
		return 2
	}

	p := ipc.ClickPayload{Region: *region, Button: *button, Tag: *tag}
	for _, m := range strings.Split(*mods, ",") {
		if m = strings.TrimSpace(m); m != "" {
			p.Mods = append(p.Mods, m)
		}
	}
	if err := ipc.NewClient().Click(p); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runReload(args []string) int {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "Usage: tagtile reload")
		if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
			return 0
		}
		return 2
	}
	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config: reloaded")
	return 0
}

func runSubscribe(args []string) int {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "Usage: tagtile subscribe")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Print the current state, then every change, as one JSON object per line.")
		if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
			return 0
		}
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	enc := json.NewEncoder(os.Stdout)
	_, err := ipc.NewClient().Subscribe(ctx, func(s wm.Snapshot) error {
		return enc.Encode(s)
	})
	if err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
