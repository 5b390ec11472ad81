package mpv

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"
)

// ipcCommand is the JSON structure sent to mpv's IPC socket.
type ipcCommand struct {
	Command []any `json:"command"`
}

// ipcResponse is one line received from mpv's IPC socket. Lines carrying an
// event name are asynchronous notifications, not replies.
type ipcResponse struct {
	Data  any    `json:"data"`
	Error string `json:"error"`
	Event string `json:"event"`
}

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	readDeadline = 1 * time.Second
	maxEvents    = 32
)

// client talks to one mpv instance.
type client struct {
	mu         sync.Mutex
	socketPath string
}

func newClient(socketPath string) *client {
	return &client{socketPath: socketPath}
}

// command sends a command, retrying transient connection errors.
func (c *client) command(args ...any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}
		result, err := doCommand(c.socketPath, args)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("ipc command %v failed after %d attempts: %w", args[0], maxRetries, lastErr)
}

// poll sends a command once. It is used on the tick path where a retry
// delay would stall playback.
func (c *client) poll(args ...any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return doCommand(c.socketPath, args)
}

func (c *client) setProperty(name string, value any) error {
	_, err := c.command("set_property", name, value)
	return err
}

func (c *client) getFloat(name string) (float64, error) {
	v, err := c.poll("get_property", name)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s is %T, want number", name, v)
	}
	return f, nil
}

func (c *client) getBool(name string) (bool, error) {
	v, err := c.poll("get_property", name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("property %s is %T, want bool", name, v)
	}
	return b, nil
}

// doCommand performs a single IPC round trip.
func doCommand(socketPath string, args []any) (any, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	payload, err := json.Marshal(ipcCommand{Command: args})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	// mpv requires newline-delimited JSON
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	for i := 0; i < maxEvents && scanner.Scan(); i++ {
		var resp ipcResponse
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			return nil, fmt.Errorf("unmarshal: %w", err)
		}
		if resp.Event != "" {
			continue
		}
		if resp.Error != "" && resp.Error != "success" {
			return nil, fmt.Errorf("mpv error: %s", resp.Error)
		}
		return resp.Data, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return nil, fmt.Errorf("read: no reply")
}
