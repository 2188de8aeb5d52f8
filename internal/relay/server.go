package relay

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/yanun0323/logs"

	"rookie/internal/gateway"
	"rookie/internal/model"
	"rookie/pkg/exception"
	"rookie/pkg/uds"
)

const outboxCapacity = 1024

var _ gateway.Pusher = (*Server)(nil)

// Server subscribes upstream on behalf of its clients. A symbol is subscribed
// upstream while at least one client holds it.
type Server struct {
	listener *uds.Server
	upstream gateway.MarketAdapter

	// upMu serializes reference counting with the upstream calls it causes.
	upMu sync.Mutex
	refs map[string]int
	held model.SymbolSet

	mu       sync.RWMutex
	sessions map[*session]struct{}

	down  atomic.Bool
	drops atomic.Uint64
}

type session struct {
	conn *uds.Conn
	subs model.SymbolSet
	out  chan Frame
	done chan struct{}
	once sync.Once
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

// NewServer builds the upstream market adapter named by upstream with the
// server as its pusher.
func NewServer(path string, registry *gateway.Registry, upstream gateway.Config) (*Server, error) {
	listener, err := uds.NewServer(path)
	if err != nil {
		return nil, err
	}
	s := &Server{
		listener: listener,
		refs:     make(map[string]int),
		held:     make(model.SymbolSet),
		sessions: make(map[*session]struct{}),
	}
	adapter, err := registry.NewMarket(upstream, s)
	if err != nil {
		return nil, err
	}
	s.upstream = adapter
	return s, nil
}

// Drops is the number of pushes discarded because a client fell behind.
func (s *Server) Drops() uint64 {
	return s.drops.Load()
}

// Serve logs in upstream and serves clients until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.upstream.Login(ctx); err != nil {
		return err
	}
	if err := s.listener.Listen(); err != nil {
		return err
	}
	logs.Infof("relay listening on %s", s.listener.Path())

	err := s.listener.Serve(ctx, s.serveConn)
	if err != nil {
		logs.Errorf("relay accept, err: %+v", err)
	}
	if e := s.upstream.Logout(context.WithoutCancel(ctx)); e != nil {
		logs.Warnf("relay upstream logout, err: %+v", e)
	}
	return err
}

func (s *Server) closeSessions() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for sess := range s.sessions {
		sess.close()
	}
}

// serveConn reads requests until the client goes away, then releases every
// symbol the client held.
func (s *Server) serveConn(ctx context.Context, conn *uds.Conn) {
	sess := &session{
		conn: conn,
		subs: make(model.SymbolSet),
		out:  make(chan Frame, outboxCapacity),
		done: make(chan struct{}),
	}
	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.write(sess)
	}()
	defer wg.Wait()
	defer s.release(ctx, sess)

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		s.send(sess, s.handle(ctx, sess, req), true)
	}
}

func (s *Server) write(sess *session) {
	for {
		select {
		case f := <-sess.out:
			if err := sess.conn.WriteJSON(f); err != nil {
				logs.Warnf("relay write, err: %+v", err)
				sess.close()
				return
			}
		case <-sess.done:
			return
		}
	}
}

// send queues f. Responses wait for room, pushes are dropped when the client
// is behind.
func (s *Server) send(sess *session, f Frame, wait bool) {
	if wait {
		select {
		case sess.out <- f:
		case <-sess.done:
		}
		return
	}
	select {
	case sess.out <- f:
	default:
		s.drops.Add(1)
	}
}

func (s *Server) handle(ctx context.Context, sess *session, req Request) Frame {
	if err := s.relogin(ctx); err != nil {
		return reply(req.ID, err)
	}
	switch req.Type {
	case RequestSubscribe:
		return reply(req.ID, s.subscribe(ctx, sess, req.Symbols))
	case RequestUnsubscribe:
		return reply(req.ID, s.unsubscribe(ctx, sess, req.Symbols))
	case RequestQuerySymbolDetail:
		details, err := s.upstream.QuerySymbolDetails(ctx)
		if err != nil {
			return reply(req.ID, err)
		}
		f := reply(req.ID, nil)
		f.Details = details
		return f
	default:
		return reply(req.ID, exception.ErrRelayUnknownRequest)
	}
}

// relogin logs in upstream again after it dropped and restores the symbols
// still held by clients.
func (s *Server) relogin(ctx context.Context) error {
	if !s.down.Load() {
		return nil
	}
	s.upMu.Lock()
	defer s.upMu.Unlock()
	if !s.down.Load() {
		return nil
	}
	if err := s.upstream.Login(ctx); err != nil {
		return err
	}
	if len(s.held) != 0 {
		if err := s.upstream.Subscribe(ctx, s.held.Slice()); err != nil {
			return err
		}
	}
	s.down.Store(false)
	logs.Info("relay upstream logged in again")
	return nil
}

func (s *Server) subscribe(ctx context.Context, sess *session, symbols []model.Symbol) error {
	s.upMu.Lock()
	defer s.upMu.Unlock()

	s.mu.Lock()
	added := make([]model.Symbol, 0, len(symbols))
	for _, sym := range symbols {
		if sess.subs.Add(sym) {
			added = append(added, sym)
		}
	}
	s.mu.Unlock()

	fresh := make([]model.Symbol, 0, len(added))
	for _, sym := range added {
		if s.refs[sym.Key()] == 0 {
			fresh = append(fresh, sym)
		}
		s.refs[sym.Key()]++
		s.held.Add(sym)
	}
	if len(fresh) == 0 {
		return nil
	}
	if err := s.upstream.Subscribe(ctx, fresh); err != nil {
		s.mu.Lock()
		for _, sym := range added {
			delete(sess.subs, sym.Key())
		}
		s.mu.Unlock()
		s.unref(added)
		return err
	}
	return nil
}

func (s *Server) unsubscribe(ctx context.Context, sess *session, symbols []model.Symbol) error {
	s.upMu.Lock()
	defer s.upMu.Unlock()

	s.mu.Lock()
	if len(symbols) == 0 {
		symbols = sess.subs.Slice()
	}
	removed := make([]model.Symbol, 0, len(symbols))
	for _, sym := range symbols {
		if sess.subs.Has(sym) {
			delete(sess.subs, sym.Key())
			removed = append(removed, sym)
		}
	}
	s.mu.Unlock()

	if gone := s.unref(removed); len(gone) != 0 {
		return s.upstream.Unsubscribe(ctx, gone)
	}
	return nil
}

// unref drops one reference per symbol and returns the ones nobody holds.
func (s *Server) unref(symbols []model.Symbol) []model.Symbol {
	gone := make([]model.Symbol, 0, len(symbols))
	for _, sym := range symbols {
		key := sym.Key()
		if s.refs[key]--; s.refs[key] <= 0 {
			delete(s.refs, key)
			delete(s.held, key)
			gone = append(gone, sym)
		}
	}
	return gone
}

func (s *Server) release(ctx context.Context, sess *session) {
	sess.close()
	if err := s.unsubscribe(context.WithoutCancel(ctx), sess, nil); err != nil {
		logs.Warnf("relay release client subscriptions, err: %+v", err)
	}
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
}

// Refs returns how many clients hold the symbol.
func (s *Server) Refs(sym model.Symbol) int {
	s.upMu.Lock()
	defer s.upMu.Unlock()
	return s.refs[sym.Key()]
}

func (s *Server) PushTick(tick model.TickData) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for sess := range s.sessions {
		if sess.subs.Has(tick.Symbol) {
			s.send(sess, Frame{Type: FrameTick, Tick: &tick}, false)
		}
	}
}

func (s *Server) PushBar(bar model.BarData) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for sess := range s.sessions {
		if sess.subs.Has(bar.Symbol) {
			s.send(sess, Frame{Type: FrameBar, Bar: &bar}, false)
		}
	}
}

// PushMarketDisconnected drops every client so each one reports its own
// disconnect and logs in again.
func (s *Server) PushMarketDisconnected() {
	s.down.Store(true)
	logs.Errorf("relay upstream disconnected, drop %d clients", s.clientCount())
	s.closeSessions()
}

func (s *Server) PushTrade(model.TradeData)       {}
func (s *Server) PushCancel(model.CancelData)     {}
func (s *Server) PushOrderError(model.OrderError) {}
func (s *Server) PushTradeDisconnected()          {}

func (s *Server) clientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
