package uds

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"

	"rookie/pkg/exception"
)

// Handler owns conn until it returns. The server closes conn afterwards.
type Handler func(ctx context.Context, conn *Conn)

// Server accepts framed connections on a unix socket and hands each one to a
// Handler on its own goroutine.
type Server struct {
	addr net.UnixAddr

	mu    sync.Mutex
	ln    *net.UnixListener
	conns map[*Conn]struct{}
	wg    sync.WaitGroup
}

func NewServer(path string) (*Server, error) {
	if path == "" {
		return nil, exception.ErrEmptyPathUDS
	}
	return &Server{
		addr:  net.UnixAddr{Name: path, Net: unixNetwork},
		conns: make(map[*Conn]struct{}),
	}, nil
}

func (s *Server) Path() string {
	return s.addr.Name
}

// Listen binds the socket. A stale socket file from an earlier process is
// removed first.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return exception.ErrListeningUDS
	}
	if err := RemoveIfExists(s.addr.Name); err != nil {
		return err
	}
	ln, err := net.ListenUnix(unixNetwork, &s.addr)
	if err != nil {
		return err
	}
	ln.SetUnlinkOnClose(true)
	s.ln = ln
	return nil
}

// Serve accepts until ctx is done or Close is called, then closes every open
// connection and waits for the handlers to return.
func (s *Server) Serve(ctx context.Context, handle Handler) error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return exception.ErrNotListeningUDS
	}

	stop := context.AfterFunc(ctx, func() {
		_ = s.Close()
	})
	defer stop()

	var err error
	for {
		raw, e := ln.AcceptUnix()
		if e != nil {
			if ctx.Err() == nil && !errors.Is(e, net.ErrClosed) {
				err = e
			}
			break
		}
		conn := NewConn(raw)
		if !s.track(conn) {
			_ = conn.Close()
			break
		}
		go func() {
			defer s.untrack(conn)
			handle(ctx, conn)
		}()
	}

	_ = s.Close()
	s.wg.Wait()
	return err
}

func (s *Server) track(conn *Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(conn *Conn) {
	_ = conn.Close()
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	s.wg.Done()
}

// Close stops accepting, unlinks the socket file and closes open connections.
// Handlers observe the close as a read error.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	err := s.ln.Close()
	s.ln = nil
	for conn := range s.conns {
		_ = conn.Close()
	}
	return err
}

// RemoveIfExists removes path when it is a socket and fails when it is
// anything else.
func RemoveIfExists(path string) error {
	if path == "" {
		return exception.ErrEmptyPathUDS
	}
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeSocket == 0 {
		return exception.ErrPathNotSocketUDS
	}
	return os.Remove(path)
}
