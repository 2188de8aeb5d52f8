package uds

import (
	"bufio"
	"encoding/binary"
	"io"
	"net"
	"sync"

	"github.com/bytedance/sonic"

	"rookie/pkg/exception"
)

const (
	frameHeaderSize     = 4
	DefaultMaxFrameSize = 4 << 20
)

// Conn carries length prefixed JSON frames over a unix connection.
// Writes are serialized; reads must come from a single goroutine.
type Conn struct {
	conn    *net.UnixConn
	r       *bufio.Reader
	wmu     sync.Mutex
	maxSize int
	header  [frameHeaderSize]byte
}

func NewConn(conn *net.UnixConn) *Conn {
	return &Conn{
		conn:    conn,
		r:       bufio.NewReader(conn),
		maxSize: DefaultMaxFrameSize,
	}
}

// SetMaxFrameSize limits the payload size accepted by ReadJSON.
func (c *Conn) SetMaxFrameSize(size int) {
	if size > 0 {
		c.maxSize = size
	}
}

// WriteJSON encodes v and writes it as one frame.
func (c *Conn) WriteJSON(v any) error {
	payload, err := sonic.ConfigFastest.Marshal(v)
	if err != nil {
		return err
	}
	if len(payload) > c.maxSize {
		return exception.ErrFrameTooLarge
	}

	buf := make([]byte, frameHeaderSize+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[frameHeaderSize:], payload)

	c.wmu.Lock()
	defer c.wmu.Unlock()
	_, err = c.conn.Write(buf)
	return err
}

// ReadJSON blocks for the next frame and decodes it into v.
func (c *Conn) ReadJSON(v any) error {
	if _, err := io.ReadFull(c.r, c.header[:]); err != nil {
		return err
	}
	size := int(binary.BigEndian.Uint32(c.header[:]))
	if size > c.maxSize {
		return exception.ErrFrameTooLarge
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(c.r, payload); err != nil {
		return err
	}
	return sonic.ConfigFastest.Unmarshal(payload, v)
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
