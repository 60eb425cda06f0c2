package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/wallkit/wallkit/internal/control"
)

const (
	// defaultTimeout is used when the caller does not provide a context deadline.
	defaultTimeout = 3 * time.Second
)

// Client talks to the running wallkit daemon over its control socket.
type Client struct {
	socketPath string
}

type (
	// StatusPayload mirrors the daemon's status answer.
	StatusPayload = control.StatusPayload
	// BatchPayload mirrors the daemon's reapply answer.
	BatchPayload = control.BatchPayload
	// CyclePayload mirrors the daemon's navigation answer.
	CyclePayload = control.CyclePayload
)

// New creates a client that connects to the provided socket path. When path
// is empty, the default runtime path is used.
func New(path string) (*Client, error) {
	if path == "" {
		var err error
		path, err = control.DefaultSocketPath()
		if err != nil {
			return nil, err
		}
	}
	return &Client{socketPath: path}, nil
}

// Status retrieves the daemon's view of every monitor.
func (c *Client) Status(ctx context.Context) (StatusPayload, error) {
	var status StatusPayload
	if err := c.do(ctx, control.Request{Action: control.ActionStatus}, &status); err != nil {
		return StatusPayload{}, err
	}
	return status, nil
}

// Reapply asks the daemon to push every resolved wallpaper out again.
func (c *Client) Reapply(ctx context.Context) (BatchPayload, error) {
	var batch BatchPayload
	if err := c.do(ctx, control.Request{Action: control.ActionReapply}, &batch); err != nil {
		return BatchPayload{}, err
	}
	return batch, nil
}

// Next advances the wallpaper on a monitor. Empty monitor means the
// daemon's configured target.
func (c *Client) Next(ctx context.Context, monitor string) (CyclePayload, error) {
	return c.cycle(ctx, control.ActionNext, monitor)
}

// Prev steps the wallpaper back on a monitor.
func (c *Client) Prev(ctx context.Context, monitor string) (CyclePayload, error) {
	return c.cycle(ctx, control.ActionPrev, monitor)
}

// Random picks a random wallpaper on a monitor.
func (c *Client) Random(ctx context.Context, monitor string) (CyclePayload, error) {
	return c.cycle(ctx, control.ActionRandom, monitor)
}

func (c *Client) cycle(ctx context.Context, action, monitor string) (CyclePayload, error) {
	req := control.Request{Action: action}
	if monitor != "" {
		req.Params = map[string]any{"monitor": monitor}
	}
	var payload CyclePayload
	if err := c.do(ctx, req, &payload); err != nil {
		return CyclePayload{}, err
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, req control.Request, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("dial control socket: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	var resp control.Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.Status != control.StatusOK {
		if resp.Error == "" {
			resp.Error = "unknown control error"
		}
		return errors.New(resp.Error)
	}
	if out == nil || resp.Data == nil {
		return nil
	}
	data, err := json.Marshal(resp.Data)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
