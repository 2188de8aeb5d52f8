package relay

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"rookie/internal/gateway"
	"rookie/internal/model"
	"rookie/pkg/exception"
	"rookie/pkg/uds"
)

// Name is the adapter name the relay client registers under.
const Name = "relay"

var _ gateway.MarketAdapter = (*Client)(nil)

// Client is a market adapter backed by a relay server.
type Client struct {
	cfg    gateway.Config
	pusher gateway.Pusher
	dialer *uds.Client
	seq    atomic.Uint64

	mu       sync.Mutex
	conn     *uds.Conn
	inflight map[uint64]*gateway.Call[Frame]

	subscribe *gateway.Call[Frame]
	unsub     *gateway.Call[Frame]
	details   *gateway.Call[Frame]
}

func NewClient(cfg gateway.Config, p gateway.Pusher) (*Client, error) {
	dialer, err := uds.NewClient(cfg.SocketPath, cfg.Timeout())
	if err != nil {
		return nil, err
	}
	return &Client{
		cfg:       cfg,
		pusher:    p,
		dialer:    dialer,
		inflight:  make(map[uint64]*gateway.Call[Frame]),
		subscribe: gateway.NewCall[Frame](nil),
		unsub:     gateway.NewCall[Frame](nil),
		details:   gateway.NewCall[Frame](nil),
	}, nil
}

// Register binds the relay client to the registry under Name.
func Register(r *gateway.Registry) {
	r.RegisterMarket(Name, func(cfg gateway.Config, p gateway.Pusher) (gateway.MarketAdapter, error) {
		return NewClient(cfg, p)
	})
}

// Login dials the relay. A connection that breaks afterwards reports one
// market disconnect.
func (c *Client) Login(ctx context.Context) error {
	conn, err := c.dialer.Dial(ctx)
	if err != nil {
		return errors.Wrapf(exception.ErrGatewayDisconnected, "dial relay %s, err: %+v", c.dialer.Path(), err)
	}

	c.mu.Lock()
	old := c.conn
	c.conn = conn
	c.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}

	go c.read(conn)
	return nil
}

// Logout closes the connection without reporting a disconnect.
func (c *Client) Logout(context.Context) error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (c *Client) Subscribe(ctx context.Context, symbols []model.Symbol) error {
	_, err := c.request(ctx, c.subscribe, Request{Type: RequestSubscribe, Symbols: symbols})
	return err
}

func (c *Client) Unsubscribe(ctx context.Context, symbols []model.Symbol) error {
	_, err := c.request(ctx, c.unsub, Request{Type: RequestUnsubscribe, Symbols: symbols})
	return err
}

// QuerySymbolDetails returns the upstream details accepted by the client config.
func (c *Client) QuerySymbolDetails(ctx context.Context) (model.SymbolDetails, error) {
	f, err := c.request(ctx, c.details, Request{Type: RequestQuerySymbolDetail})
	if err != nil {
		return nil, err
	}
	return c.cfg.Filter(f.Details), nil
}

func (c *Client) request(ctx context.Context, call *gateway.Call[Frame], req Request) (Frame, error) {
	if err := call.Begin(); err != nil {
		return Frame{}, err
	}
	req.ID = c.seq.Add(1)

	c.mu.Lock()
	conn := c.conn
	if conn != nil {
		c.inflight[req.ID] = call
	}
	c.mu.Unlock()

	if conn == nil {
		call.Fail(exception.ErrGatewayNotLoggedIn)
	} else if err := conn.WriteJSON(req); err != nil {
		call.Fail(errors.Wrapf(exception.ErrGatewayDisconnected, "write %s, err: %+v", req.Type, err))
	}

	f, err := call.Wait(ctx, c.cfg.Timeout())
	c.mu.Lock()
	delete(c.inflight, req.ID)
	c.mu.Unlock()
	if err != nil {
		return Frame{}, err
	}
	if !f.OK {
		return Frame{}, errors.Wrapf(exception.ErrRelayResponse, "%s: %s", req.Type, f.Error)
	}
	return f, nil
}

func (c *Client) read(conn *uds.Conn) {
	for {
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			c.broken(conn, err)
			return
		}
		switch f.Type {
		case FrameTick:
			if f.Tick != nil {
				c.pusher.PushTick(*f.Tick)
			}
		case FrameBar:
			if f.Bar != nil {
				c.pusher.PushBar(*f.Bar)
			}
		case FrameResponse:
			c.mu.Lock()
			call, ok := c.inflight[f.ID]
			c.mu.Unlock()
			if ok {
				call.Resolve(f)
			}
		default:
			logs.Warnf("relay client drop frame type %s", f.Type)
		}
	}
}

// broken fails the waiting requests. Only the current connection reports a
// disconnect.
func (c *Client) broken(conn *uds.Conn, err error) {
	c.mu.Lock()
	current := c.conn == conn
	if current {
		c.conn = nil
	}
	calls := make([]*gateway.Call[Frame], 0, len(c.inflight))
	for _, call := range c.inflight {
		calls = append(calls, call)
	}
	c.mu.Unlock()

	if !current {
		return
	}
	_ = conn.Close()
	for _, call := range calls {
		call.Fail(exception.ErrRelayClosed)
	}
	logs.Errorf("relay connection %s broken, err: %+v", c.dialer.Path(), err)
	c.pusher.PushMarketDisconnected()
}
