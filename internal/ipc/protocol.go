package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/tagtile/internal/wm"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload      CommandType = "RELOAD"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandGetMonitors CommandType = "GET_MONITORS"
	CommandGetClients  CommandType = "GET_CLIENTS"
	CommandGetLayouts  CommandType = "GET_LAYOUTS"
	CommandRunCommand  CommandType = "RUN_COMMAND"
	CommandClick       CommandType = "CLICK"
	CommandSubscribe   CommandType = "SUBSCRIBE"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	SelectedMonitor int               `json:"selected_monitor"`
	Tags            []string          `json:"tags"`
	Monitors        []wm.MonitorState `json:"monitors"`
	Status          string            `json:"status"`
	UptimeSeconds   int64             `json:"uptime_seconds"`
	Version         string            `json:"version"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	SelectedMonitor int               `json:"selected_monitor"`
	Monitors        []wm.MonitorState `json:"monitors"`
}

// ClientsData is returned by GET_CLIENTS.
type ClientsData struct {
	Clients []wm.ClientState `json:"clients"`
}

// LayoutsData is returned by GET_LAYOUTS. Active holds the layout symbol of
// every monitor, indexed by monitor.
type LayoutsData struct {
	Layouts []wm.LayoutInfo `json:"layouts"`
	Active  []string        `json:"active"`
}

// CommandPayload is the payload of RUN_COMMAND. Arg uses the same syntax as
// the binding tables in the config file; Argv is used by spawn.
type CommandPayload struct {
	Command string   `json:"command"`
	Arg     string   `json:"arg,omitempty"`
	Argv    []string `json:"argv,omitempty"`
}

// ClickPayload is the payload of CLICK, sent by external bars. Tag is the
// index of the clicked tag for tagbar clicks.
type ClickPayload struct {
	Region string   `json:"region"`
	Button int      `json:"button"`
	Mods   []string `json:"mods,omitempty"`
	Tag    int      `json:"tag,omitempty"`
}

// SubscribeData is the handshake of a SUBSCRIBE stream. Every following
// line is a JSON encoded wm.Snapshot.
type SubscribeData struct {
	ID string `json:"id"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// ParseCommandArgs builds a RUN_COMMAND payload from "name [arg] [-- argv...]".
func ParseCommandArgs(args []string) (CommandPayload, error) {
	var argv []string
	for i, a := range args {
		if a == "--" {
			argv = append([]string(nil), args[i+1:]...)
			args = args[:i]
			break
		}
	}
	if len(args) == 0 {
		return CommandPayload{}, fmt.Errorf("command name is required")
	}
	if len(args) > 2 {
		return CommandPayload{}, fmt.Errorf("too many arguments: %q", args[2:])
	}
	p := CommandPayload{Command: args[0], Argv: argv}
	if len(args) == 2 {
		p.Arg = args[1]
	}
	if len(argv) > 0 && p.Arg != "" {
		return CommandPayload{}, fmt.Errorf("use either an argument or -- argv, not both")
	}
	return p, nil
}
