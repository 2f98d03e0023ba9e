package netwire

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrClientClosed reports an operation on a closed client.
var ErrClientClosed = errors.New("netwire: client closed")

// Client is the dialing side of the wire protocol. Inbound messages are
// read by a background goroutine and delivered on a channel; sends go
// straight to the connection.
type Client struct {
	conn   *Conn
	logger *zap.Logger

	incoming chan Message
	closed   sync.Once
	done     chan struct{}
}

// Dial connects to a game server at addr.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a connected Client with its read loop running.
func Dial(addr string, logger *zap.Logger) (*Client, error) {
	raw, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}

	c := &Client{
		conn:     NewConn(raw, 0, 10*time.Second),
		logger:   logger,
		incoming: make(chan Message, 64),
		done:     make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// readLoop decodes inbound lines until the connection ends, then closes
// the incoming channel.
func (c *Client) readLoop() {
	defer close(c.incoming)
	for {
		msg, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.logger.Debug("client read loop ended", zap.Error(err))
			}
			return
		}
		select {
		case c.incoming <- msg:
		case <-c.done:
			return
		}
	}
}

// Send writes msg to the server.
//
// Postcondition: msg is written to the connection, or an error is returned.
func (c *Client) Send(msg Message) error {
	return c.conn.WriteMessage(msg)
}

// Messages returns the inbound message channel. The channel is closed
// when the connection ends.
func (c *Client) Messages() <-chan Message {
	return c.incoming
}

// Next returns the next inbound message, waiting up to timeout.
//
// Postcondition: Returns the message, ErrClientClosed if the connection
// ended, or a timeout error.
func (c *Client) Next(timeout time.Duration) (Message, error) {
	select {
	case msg, ok := <-c.incoming:
		if !ok {
			return Message{}, ErrClientClosed
		}
		return msg, nil
	case <-time.After(timeout):
		return Message{}, fmt.Errorf("waiting for message: timeout after %s", timeout)
	}
}

// Close shuts down the client connection. Safe to call more than once.
//
// Postcondition: The connection is closed and the read loop exits.
func (c *Client) Close() {
	c.closed.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
