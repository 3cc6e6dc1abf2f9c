package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"downtime-tracker/domain"
)

const (
	defaultWriteWait      = 10 * time.Second
	defaultMaxMessageSize = 4096
	defaultSendBufferSize = 256
)

// State is the lifecycle position of a connection. Transitions only move
// forward; the Open -> Closed transition carries the single side effect of
// deregistering the connection from every room.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosing
	StateClosed
)

// Conn is the subset of a live connection that the registry, router,
// broadcaster, and sweeper operate on. *Client is the production
// implementation; tests substitute fakes.
type Conn interface {
	ID() uuid.UUID
	Principal() domain.Principal

	// Deliver enqueues a frame for the connection's writer. It reports
	// false when the connection is not open or its buffer is full; a
	// failed delivery is skipped, never an error.
	Deliver(frame []byte) bool

	// ConfirmedAlive reports whether the connection answered the probe
	// sent by the previous liveness sweep.
	ConfirmedAlive() bool

	// Probe marks the connection unconfirmed and sends a ping. The next
	// pong flips it back to confirmed.
	Probe() error

	// Terminate forcibly closes the connection and deregisters it.
	// Safe to call more than once; only the first call has an effect.
	Terminate()
}

// Client wraps one websocket connection to a browser tab. The read pump is
// the only goroutine processing inbound frames, which gives per-connection
// arrival-order processing for free; outbound data frames are serialized
// through the write pump. Ping control frames bypass the write pump via
// WriteControl, which gorilla documents as concurrency-safe.
type Client struct {
	id        uuid.UUID
	principal domain.Principal
	ws        *websocket.Conn
	log       *slog.Logger

	send chan []byte
	done chan struct{}

	// onClosed is the Open -> Closed side effect, wired to the registry's
	// Deregister by the handler. Both the close path and the sweep path
	// funnel through shutdown, so cleanup never runs twice.
	onClosed func(*Client)

	mu    sync.Mutex
	state State
	alive bool

	writeWait      time.Duration
	maxMessageSize int64
}

func newClient(principal domain.Principal, ws *websocket.Conn, log *slog.Logger, onClosed func(*Client)) *Client {
	return &Client{
		id:             uuid.New(),
		principal:      principal,
		ws:             ws,
		log:            log,
		send:           make(chan []byte, defaultSendBufferSize),
		done:           make(chan struct{}),
		onClosed:       onClosed,
		state:          StateConnecting,
		alive:          true,
		writeWait:      defaultWriteWait,
		maxMessageSize: defaultMaxMessageSize,
	}
}

func (c *Client) ID() uuid.UUID               { return c.id }
func (c *Client) Principal() domain.Principal { return c.principal }

func (c *Client) Deliver(frame []byte) bool {
	c.mu.Lock()
	open := c.state == StateOpen
	c.mu.Unlock()
	if !open {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		// Slow consumer: drop the frame rather than block fan-out.
		return false
	}
}

func (c *Client) ConfirmedAlive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alive
}

func (c *Client) Probe() error {
	c.mu.Lock()
	c.alive = false
	c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeWait))
}

func (c *Client) Terminate() {
	c.shutdown()
}

// start moves the client to Open, sends the connected acknowledgement, and
// launches the pumps. The handler registers the client before calling start
// so no broadcast can observe an open-but-unregistered connection.
func (c *Client) start(handle func(Conn, []byte)) {
	c.mu.Lock()
	c.state = StateOpen
	c.mu.Unlock()

	c.Deliver(connectedFrame(c.principal))

	go c.writePump()
	go c.readPump(handle)
}

// shutdown is the single Open -> Closed transition. It closes the socket,
// stops the write pump, and runs the deregistration side effect exactly once,
// regardless of whether the close event or the liveness sweep got here first.
func (c *Client) shutdown() {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = StateClosed
	c.mu.Unlock()

	close(c.done)
	_ = c.ws.Close()
	if c.onClosed != nil {
		c.onClosed(c)
	}
}

func (c *Client) readPump(handle func(Conn, []byte)) {
	defer c.shutdown()

	c.ws.SetReadLimit(c.maxMessageSize)
	c.ws.SetPongHandler(func(string) error {
		c.mu.Lock()
		c.alive = true
		c.mu.Unlock()
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Debug("Read error", "connectionId", c.id, "userId", c.principal.UserID, "err", err)
			}
			return
		}
		handle(c, data)
	}
}

func (c *Client) writePump() {
	for {
		select {
		case frame := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Debug("Write error", "connectionId", c.id, "err", err)
				c.shutdown()
				return
			}
		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
