// Package channel owns one stream-oriented unix-socket endpoint and
// exposes framed send/receive over it. Each connection serves exactly
// one direction of the IPC protocol: the kscan channel is only written,
// the events channel is only read.
package channel

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"syscall"

	"github.com/rbright/keywire/internal/frame"
)

var (
	// ErrNotConnected reports an operation on a channel that was never
	// connected or has been closed.
	ErrNotConnected = errors.New("channel is not connected")

	// ErrAddressNotFound reports that no listener exists at the
	// configured socket path.
	ErrAddressNotFound = errors.New("no listener at socket path")
)

// Conn is one unix-stream IPC channel endpoint.
//
// The mutex guards connection state only; frame I/O itself runs
// unlocked under the single-writer/single-reader discipline. Closing
// concurrently with a blocked Receive is supported: the in-flight read
// fails with a connection-closed error, which is the expected shutdown
// signal.
type Conn struct {
	path string

	mu   sync.Mutex
	conn net.Conn
}

// New returns an unconnected channel for the given socket path.
func New(path string) *Conn {
	return &Conn{path: path}
}

// Path returns the configured socket path.
func (c *Conn) Path() string { return c.path }

// Connected reports whether the channel currently holds an open endpoint.
func (c *Conn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Connect dials the socket path. A missing socket file or a path with
// no listener maps to ErrAddressNotFound. Reconnecting a closed channel
// is allowed; connecting an already-connected one is an error.
func (c *Conn) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return fmt.Errorf("channel %s is already connected", c.path)
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", c.path)
	if err != nil {
		if isAddressNotFound(err) {
			return fmt.Errorf("%w: %s", ErrAddressNotFound, c.path)
		}
		return fmt.Errorf("connect %s: %w", c.path, err)
	}

	c.conn = conn
	return nil
}

// Send writes one whole frame carrying payload.
func (c *Conn) Send(payload []byte) error {
	conn := c.current()
	if conn == nil {
		return ErrNotConnected
	}
	return frame.Write(conn, payload)
}

// Receive blocks until one whole frame arrives and returns its payload.
func (c *Conn) Receive() ([]byte, error) {
	conn := c.current()
	if conn == nil {
		return nil, ErrNotConnected
	}

	payload, err := frame.Read(conn)
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return nil, fmt.Errorf("receive on %s: %w", c.path, frame.ErrConnectionClosed)
		}
		return nil, err
	}
	return payload, nil
}

// Close releases the endpoint. Repeated close is a no-op; subsequent
// send/receive fail with ErrNotConnected.
func (c *Conn) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("close %s: %w", c.path, err)
	}
	return nil
}

func (c *Conn) current() net.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// isAddressNotFound reports absent-socket and no-listener dial failures.
func isAddressNotFound(err error) bool {
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ECONNREFUSED)
}
