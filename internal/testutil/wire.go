package testutil

import (
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/z26games/wof/internal/netwire"
)

// WireClient is a game-protocol test client for integration testing.
// It speaks the newline-delimited JSON protocol and lets tests wait for
// specific server messages while skipping the ones they do not care about.
type WireClient struct {
	client *netwire.Client
	t      *testing.T
}

// NewWireClient dials the given address and returns a test client.
//
// Precondition: addr must be a valid "host:port" string with a listening server.
// Postcondition: Returns a connected WireClient or fails the test.
func NewWireClient(t *testing.T, addr string) *WireClient {
	t.Helper()
	start := time.Now()

	client, err := netwire.Dial(addr, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("connecting to %s: %v [%s]", addr, err, time.Since(start))
	}

	t.Cleanup(func() {
		client.Close()
	})

	t.Logf("wire client connected to %s [%s]", addr, time.Since(start))
	return &WireClient{client: client, t: t}
}

// Send writes a message to the server.
//
// Precondition: msg.Action must be non-empty.
// Postcondition: The encoded message is written to the connection.
func (c *WireClient) Send(msg netwire.Message) {
	c.t.Helper()
	if err := c.client.Send(msg); err != nil {
		c.t.Fatalf("sending %q: %v", msg.Action, err)
	}
}

// Expect reads messages until one with the given action arrives or the
// timeout expires. Messages with other actions are skipped.
//
// Precondition: action must be non-empty.
// Postcondition: Returns the first matching message, or fails on timeout.
func (c *WireClient) Expect(action string, timeout time.Duration) netwire.Message {
	c.t.Helper()
	return c.WaitFor(fmt.Sprintf("action %q", action), timeout, func(msg netwire.Message) bool {
		return msg.Action == action
	})
}

// WaitFor reads messages until one satisfies pred or the timeout
// expires. The desc string names what the test was waiting for in
// failure output.
//
// Postcondition: Returns the first matching message, or fails on timeout.
func (c *WireClient) WaitFor(desc string, timeout time.Duration, pred func(netwire.Message) bool) netwire.Message {
	c.t.Helper()
	deadline := time.Now().Add(timeout)

	var skipped []string
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			c.t.Fatalf("waiting for %s: timed out, skipped %v", desc, skipped)
		}
		msg, err := c.client.Next(remaining)
		if err != nil {
			c.t.Fatalf("waiting for %s: skipped %v, error: %v", desc, skipped, err)
		}
		if pred(msg) {
			return msg
		}
		skipped = append(skipped, msg.Action)
	}
}

// Drain discards any messages already buffered on the connection. It
// returns once no further message arrives within the quiet window.
func (c *WireClient) Drain(quiet time.Duration) {
	c.t.Helper()
	for {
		if _, err := c.client.Next(quiet); err != nil {
			return
		}
	}
}

// Close closes the underlying connection.
func (c *WireClient) Close() {
	c.client.Close()
}
