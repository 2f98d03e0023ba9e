package netwire

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"time"
)

// Conn wraps a TCP connection with line-based JSON message framing.
// Writes are serialized by a mutex so concurrent senders cannot
// interleave partial lines.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	mu     sync.Mutex

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps a raw TCP connection with message framing.
//
// Precondition: raw must be a valid, open network connection.
// Postcondition: Returns a Conn ready for reading and writing.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// ReadLine reads the next wire line. The returned line has the trailing
// newline (and any \r) stripped.
//
// Postcondition: Returns the next line of input, or an error (including io.EOF).
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	line, err := c.reader.ReadString('\n')
	if err != nil {
		return strings.TrimRight(line, "\r\n"), err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadMessage reads and decodes the next wire message. Blank lines are
// skipped.
//
// Postcondition: Returns the next Message, a decode error for a
// malformed line, or the underlying read error.
func (c *Conn) ReadMessage() (Message, error) {
	for {
		line, err := c.ReadLine()
		if err != nil {
			return Message{}, err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		return Decode([]byte(line))
	}
}

// WriteMessage encodes msg and writes it as a single line.
//
// Postcondition: The full line is written to the connection, or an error
// is returned.
func (c *Conn) WriteMessage(msg Message) error {
	data, err := Encode(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err = c.raw.Write(data)
	return err
}

// Close closes the underlying TCP connection.
//
// Postcondition: The connection is closed and no longer usable.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the remote network address of the client.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}
