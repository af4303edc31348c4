package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/tagtile/internal/ipc"
	"github.com/1broseidon/tagtile/internal/palette"
	"github.com/1broseidon/tagtile/internal/wm"
)

func runMenu(args []string) int {
	fs := flag.NewFlagSet("menu", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	backendName := fs.String("backend", "auto", "Launcher: auto, rofi or dmenu")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tagtile menu [--backend auto|rofi|dmenu]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Pick a tag, layout, window or command from a launcher menu.")
		fmt.Fprintln(os.Stderr, "The default configuration binds it to MODKEY-Shift-p.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	backend, err := palette.NewBackend(*backendName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	client := ipc.NewClient()
	snap, err := fetchSnapshot(client)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	menu := palette.NewMenu(backend, palette.Entries(*snap), snap.SelectedMonitor)
	if snap.Status != "" {
		menu.SetMessage(snap.Status)
	}
	action, err := menu.Show()
	if errors.Is(err, palette.ErrCancelled) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	cmd, arg := palette.SplitAction(action)
	if err := client.RunCommand(ipc.CommandPayload{Command: cmd, Arg: arg}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// fetchSnapshot assembles the state the menu needs from the query commands.
func fetchSnapshot(client *ipc.Client) (*wm.Snapshot, error) {
	st, err := client.GetStatus()
	if err != nil {
		return nil, err
	}
	clients, err := client.GetClients()
	if err != nil {
		return nil, err
	}
	layouts, err := client.GetLayouts()
	if err != nil {
		return nil, err
	}
	return &wm.Snapshot{
		SelectedMonitor: st.SelectedMonitor,
		Tags:            st.Tags,
		Layouts:         layouts.Layouts,
		Monitors:        st.Monitors,
		Clients:         clients.Clients,
		Status:          st.Status,
	}, nil
}
