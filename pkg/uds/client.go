package uds

import (
	"context"
	"net"
	"time"

	"rookie/pkg/exception"
)

const unixNetwork = "unix"

// Client dials one socket path.
type Client struct {
	path    string
	timeout time.Duration
}

// NewClient returns a client for path. A zero timeout leaves dialing bounded
// by the context only.
func NewClient(path string, timeout time.Duration) (*Client, error) {
	if path == "" {
		return nil, exception.ErrEmptyPathUDS
	}
	return &Client{path: path, timeout: timeout}, nil
}

func (c *Client) Path() string {
	return c.path
}

func (c *Client) Dial(ctx context.Context) (*Conn, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, unixNetwork, c.path)
	if err != nil {
		return nil, err
	}
	return NewConn(conn.(*net.UnixConn)), nil
}
