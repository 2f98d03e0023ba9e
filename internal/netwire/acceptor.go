package netwire

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/z26games/wof/internal/config"
)

// Handler consumes parsed wire messages. Implementations receive one
// call per decoded line, concurrently across connections, and must not
// retain msg.Game beyond the call.
type Handler interface {
	HandleMessage(ctx context.Context, addr string, msg Message)
}

// Sender delivers outbound messages to connected clients by remote
// address. Delivery is fire-and-forget: unknown or dead addresses are
// dropped.
type Sender interface {
	Send(addr string, msg Message)
}

// Acceptor listens for client connections on a TCP port, decodes their
// wire lines, and dispatches each message to a Handler. It also
// implements Sender over the live connections.
type Acceptor struct {
	cfg     config.ServerConfig
	handler Handler
	logger  *zap.Logger

	listener net.Listener
	wg       sync.WaitGroup
	quit     chan struct{}
	mu       sync.Mutex
	running  bool
	conns    map[string]*Conn
}

// NewAcceptor creates an acceptor with the given configuration. handler
// may be nil when the dispatcher needs the acceptor as its Sender first;
// install it with SetHandler before ListenAndServe.
//
// Precondition: cfg must have a valid port; logger must be non-nil.
// Postcondition: Returns an Acceptor ready to be started with ListenAndServe.
func NewAcceptor(cfg config.ServerConfig, handler Handler, logger *zap.Logger) *Acceptor {
	return &Acceptor{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		quit:    make(chan struct{}),
		conns:   make(map[string]*Conn),
	}
}

// SetHandler installs the message handler.
//
// Precondition: must be called before ListenAndServe.
func (a *Acceptor) SetHandler(handler Handler) {
	a.handler = handler
}

// ListenAndServe starts the TCP listener and accepts connections until
// Stop is called. This method blocks until the acceptor is stopped.
//
// Precondition: The acceptor must not already be running.
// Postcondition: The listener is closed when this method returns.
func (a *Acceptor) ListenAndServe() error {
	start := time.Now()

	listener, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}

	a.mu.Lock()
	a.listener = listener
	a.running = true
	a.mu.Unlock()

	a.logger.Info("acceptor listening",
		zap.String("addr", listener.Addr().String()),
		zap.Duration("startup", time.Since(start)),
	)

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-a.quit:
				return nil
			default:
				a.logger.Error("accepting connection", zap.Error(err))
				continue
			}
		}

		a.wg.Add(1)
		go a.handleConn(conn)
	}
}

// handleConn runs the read loop for a single client connection.
func (a *Acceptor) handleConn(raw net.Conn) {
	defer a.wg.Done()
	start := time.Now()
	addr := raw.RemoteAddr().String()

	a.logger.Info("client connected",
		zap.String("remote_addr", addr),
	)

	conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
	a.mu.Lock()
	a.conns[addr] = conn
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		delete(a.conns, addr)
		a.mu.Unlock()
		_ = conn.Close()
		a.logger.Info("client disconnected",
			zap.String("remote_addr", addr),
			zap.Duration("duration", time.Since(start)),
		)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel context when quit signal received
	go func() {
		select {
		case <-a.quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		line, err := conn.ReadLine()
		if err != nil {
			return
		}
		if line == "" {
			continue
		}

		msg, err := Decode([]byte(line))
		if err != nil {
			// A malformed line is the client's problem, not a reason
			// to drop the connection.
			a.logger.Warn("dropping malformed wire line",
				zap.String("remote_addr", addr),
				zap.Error(err),
			)
			continue
		}

		a.handler.HandleMessage(ctx, addr, msg)
	}
}

// Send delivers msg to the client at addr. Unknown addresses and write
// failures are logged at debug level and dropped.
func (a *Acceptor) Send(addr string, msg Message) {
	a.mu.Lock()
	conn := a.conns[addr]
	a.mu.Unlock()

	if conn == nil {
		a.logger.Debug("dropping message for unknown client",
			zap.String("remote_addr", addr),
			zap.String("action", msg.Action),
		)
		return
	}
	if err := conn.WriteMessage(msg); err != nil {
		a.logger.Debug("dropping undeliverable message",
			zap.String("remote_addr", addr),
			zap.String("action", msg.Action),
			zap.Error(err),
		)
	}
}

// Stop gracefully stops the acceptor, closing the listener and every
// live connection and waiting for the read loops to finish.
//
// Postcondition: All connections are closed and goroutines have exited.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false

	close(a.quit)
	if a.listener != nil {
		a.listener.Close()
	}
	// Closing the conns unblocks their read loops.
	for _, conn := range a.conns {
		_ = conn.Close()
	}
	a.mu.Unlock()

	a.wg.Wait()

	a.logger.Info("acceptor stopped")
}

// Addr returns the actual listening address, or empty string if not yet listening.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return ""
}

// IsRunning returns whether the acceptor is currently accepting connections.
func (a *Acceptor) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}
