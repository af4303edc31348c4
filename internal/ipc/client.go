package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/tagtile/internal/runtimepath"
	"github.com/1broseidon/tagtile/internal/wm"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for the socket at socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

func (c *Client) dial() (net.Conn, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	return conn, nil
}

func writeRequest(conn net.Conn, req *Request) error {
	reqData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return nil
}

func readResponse(reader *bufio.Reader) (*Response, error) {
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	if err := writeRequest(conn, req); err != nil {
		return nil, err
	}
	return readResponse(bufio.NewReader(conn))
}

func (c *Client) request(cmd CommandType, payload interface{}, out interface{}) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.request(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.request(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetMonitors retrieves monitor information
func (c *Client) GetMonitors() (*MonitorsData, error) {
	var monitors MonitorsData
	if err := c.request(CommandGetMonitors, nil, &monitors); err != nil {
		return nil, err
	}
	return &monitors, nil
}

// GetClients retrieves the managed clients.
func (c *Client) GetClients() (*ClientsData, error) {
	var clients ClientsData
	if err := c.request(CommandGetClients, nil, &clients); err != nil {
		return nil, err
	}
	return &clients, nil
}

// GetLayouts retrieves the layout palette and the active layout per monitor.
func (c *Client) GetLayouts() (*LayoutsData, error) {
	var layouts LayoutsData
	if err := c.request(CommandGetLayouts, nil, &layouts); err != nil {
		return nil, err
	}
	return &layouts, nil
}

// RunCommand executes a window manager command in the daemon.
func (c *Client) RunCommand(p CommandPayload) error {
	return c.request(CommandRunCommand, p, nil)
}

// Click forwards a bar click.
func (c *Client) Click(p ClickPayload) error {
	return c.request(CommandClick, p, nil)
}

// Subscribe calls fn with every snapshot the daemon publishes until ctx
// ends, fn returns an error, or the daemon closes the stream. It returns
// the subscription id reported by the daemon.
func (c *Client) Subscribe(ctx context.Context, fn func(wm.Snapshot) error) (string, error) {
	conn, err := c.dial()
	if err != nil {
		return "", err
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	conn.SetDeadline(time.Now().Add(c.timeout))
	if err := writeRequest(conn, &Request{Command: CommandSubscribe}); err != nil {
		return "", err
	}
	reader := bufio.NewReader(conn)
	resp, err := readResponse(reader)
	if err != nil {
		return "", err
	}
	var hello SubscribeData
	if err := json.Unmarshal(resp.Data, &hello); err != nil {
		return "", fmt.Errorf("failed to parse subscription: %w", err)
	}
	conn.SetDeadline(time.Time{})

	dec := json.NewDecoder(reader)
	for {
		var snap wm.Snapshot
		if err := dec.Decode(&snap); err != nil {
			if ctx.Err() != nil {
				return hello.ID, ctx.Err()
			}
			return hello.ID, fmt.Errorf("subscription %s ended: %w", hello.ID, err)
		}
		if err := fn(snap); err != nil {
			return hello.ID, err
		}
	}
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
