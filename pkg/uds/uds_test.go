package uds

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rookie/pkg/exception"
)

type frame struct {
	Type    string   `json:"type"`
	ID      uint64   `json:"id"`
	Symbols []string `json:"symbols"`
}

func listen(t *testing.T, handle Handler) (string, context.CancelFunc, <-chan error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "uds.sock")
	server, err := NewServer(path)
	require.NoError(t, err)
	require.NoError(t, server.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		done <- server.Serve(ctx, handle)
	}()
	t.Cleanup(func() {
		cancel()
		<-finished
	})
	return path, cancel, done
}

func dial(t *testing.T, path string) *Conn {
	t.Helper()
	client, err := NewClient(path, time.Second)
	require.NoError(t, err)
	conn, err := client.Dial(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func echo(_ context.Context, conn *Conn) {
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			return
		}
		f.ID++
		if err := conn.WriteJSON(f); err != nil {
			return
		}
	}
}

func TestEmptyPath(t *testing.T) {
	_, err := NewClient("", 0)
	require.ErrorIs(t, err, exception.ErrEmptyPathUDS)
	_, err = NewServer("")
	require.ErrorIs(t, err, exception.ErrEmptyPathUDS)
}

func TestRemoveIfExistsRejectsNonSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-socket")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))
	require.ErrorIs(t, RemoveIfExists(path), exception.ErrPathNotSocketUDS)
	require.NoError(t, RemoveIfExists(filepath.Join(t.TempDir(), "missing")))
}

func TestServeBeforeListen(t *testing.T) {
	server, err := NewServer(filepath.Join(t.TempDir(), "uds.sock"))
	require.NoError(t, err)
	require.ErrorIs(t, server.Serve(context.Background(), echo), exception.ErrNotListeningUDS)
}

func TestListenTwice(t *testing.T) {
	server, err := NewServer(filepath.Join(t.TempDir(), "uds.sock"))
	require.NoError(t, err)
	require.NoError(t, server.Listen())
	defer server.Close()
	require.ErrorIs(t, server.Listen(), exception.ErrListeningUDS)
}

func TestFramedExchange(t *testing.T) {
	path, _, _ := listen(t, echo)
	conn := dial(t, path)

	for i, symbols := range [][]string{{"rb2501"}, {"IF2412", "au2502"}} {
		require.NoError(t, conn.WriteJSON(frame{Type: "subscribe", ID: uint64(i * 10), Symbols: symbols}))
		var got frame
		require.NoError(t, conn.ReadJSON(&got))
		require.Equal(t, uint64(i*10+1), got.ID)
		require.Equal(t, symbols, got.Symbols)
	}
}

func TestServeClosesConnectionsOnCancel(t *testing.T) {
	path, cancel, done := listen(t, echo)
	conn := dial(t, path)
	require.NoError(t, conn.WriteJSON(frame{Type: "subscribe"}))
	var got frame
	require.NoError(t, conn.ReadJSON(&got))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return")
	}

	require.Error(t, conn.ReadJSON(&got))
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestReadRejectsOversizedFrame(t *testing.T) {
	result := make(chan error, 1)
	path, _, _ := listen(t, func(_ context.Context, conn *Conn) {
		conn.SetMaxFrameSize(8)
		var f frame
		result <- conn.ReadJSON(&f)
	})
	conn := dial(t, path)
	require.NoError(t, conn.WriteJSON(frame{Type: "query_symbol_detail"}))

	select {
	case err := <-result:
		require.ErrorIs(t, err, exception.ErrFrameTooLarge)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for server")
	}
}
