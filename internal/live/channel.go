// Package live maintains the client's persistent connection to the real-time
// messaging server. One Channel is opened at application startup, shared by
// every view for the lifetime of the session, and closed at shutdown; views
// only add and remove their own event subscriptions.
package live

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/google/uuid"

	"github.com/ArponRoy7/codemate-go/internal/metrics"
	"github.com/ArponRoy7/codemate-go/internal/protocol"
)

// Handler receives a decoded server message. Handlers run on the read-loop
// goroutine and must not block for extended periods.
type Handler func(msg interface{})

// Config holds live channel settings.
type Config struct {
	URL           string        // ws:// or wss:// endpoint
	AckTimeout    time.Duration // default wait for a sendMessage ack
	ReconnectWait time.Duration // time between reconnect attempts
	MaxReconnects int           // max consecutive reconnect attempts (-1 for infinite)
}

// DefaultConfig returns sensible defaults for the given endpoint.
func DefaultConfig(url string) Config {
	return Config{
		URL:           url,
		AckTimeout:    5 * time.Second,
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1,
	}
}

// Subscription identifies one registered handler so a view can remove
// exactly its own handlers on teardown, even across remounts.
type Subscription struct {
	ch      *Channel
	msgType string
	id      string
}

// Off removes the subscription. It is safe to call more than once.
func (s *Subscription) Off() {
	if s == nil || s.ch == nil {
		return
	}
	s.ch.off(s.msgType, s.id)
}

// Channel is the shared live connection. All methods are goroutine-safe.
type Channel struct {
	cfg Config

	writeMu sync.Mutex // serializes outbound frames
	connMu  sync.RWMutex
	conn    net.Conn

	handlerMu sync.RWMutex
	handlers  map[string]map[string]Handler // msg type -> subscription id -> handler

	ackMu sync.Mutex
	acks  map[string]chan protocol.AckMsg // correlation id -> waiter

	reconnectMu sync.Mutex
	onReconnect func()

	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to the messaging server and starts the background read loop.
func Dial(ctx context.Context, cfg Config) (*Channel, error) {
	conn, _, _, err := ws.Dial(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("live: dial %s: %w", cfg.URL, err)
	}

	c := &Channel{
		cfg:      cfg,
		conn:     conn,
		handlers: make(map[string]map[string]Handler),
		acks:     make(map[string]chan protocol.AckMsg),
		done:     make(chan struct{}),
	}

	go c.readLoop()
	return c, nil
}

// On registers a handler for a server message type. Multiple handlers per
// type coexist; each is removable through its own Subscription, so a view
// remounting never accumulates duplicate handlers.
func (c *Channel) On(msgType string, h Handler) *Subscription {
	id := uuid.NewString()
	c.handlerMu.Lock()
	if c.handlers[msgType] == nil {
		c.handlers[msgType] = make(map[string]Handler)
	}
	c.handlers[msgType][id] = h
	c.handlerMu.Unlock()
	return &Subscription{ch: c, msgType: msgType, id: id}
}

func (c *Channel) off(msgType, id string) {
	c.handlerMu.Lock()
	if m := c.handlers[msgType]; m != nil {
		delete(m, id)
		if len(m) == 0 {
			delete(c.handlers, msgType)
		}
	}
	c.handlerMu.Unlock()
}

// SetOnReconnect installs a hook invoked after each successful reconnect.
// The chat controller uses it to re-announce identify/joinChat.
func (c *Channel) SetOnReconnect(fn func()) {
	c.reconnectMu.Lock()
	c.onReconnect = fn
	c.reconnectMu.Unlock()
}

// Emit sends one client message. It is goroutine-safe.
func (c *Channel) Emit(msgType string, payload interface{}) error {
	data, err := protocol.NewClientMessage(msgType, payload)
	if err != nil {
		return err
	}
	return c.write(data)
}

// AckWait blocks for the delivery acknowledgement of one sent message. The
// wait is bounded by ctx and by the configured AckTimeout.
type AckWait func(ctx context.Context) (protocol.AckMsg, error)

// Send emits a sendMessage and returns the acknowledgement waiter without
// blocking, so the caller can emit follow-up frames (a stopTyping, say)
// before sitting out the ack round-trip. A missing message ID is filled in
// for correlation.
func (c *Channel) Send(msg protocol.SendMessageMsg) (AckWait, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	waiter := make(chan protocol.AckMsg, 1)
	c.ackMu.Lock()
	c.acks[msg.ID] = waiter
	c.ackMu.Unlock()

	if err := c.Emit(protocol.TypeSendMessage, msg); err != nil {
		c.ackMu.Lock()
		delete(c.acks, msg.ID)
		c.ackMu.Unlock()
		return nil, err
	}
	metrics.MessagesSent.Inc()

	wait := func(ctx context.Context) (protocol.AckMsg, error) {
		defer func() {
			c.ackMu.Lock()
			delete(c.acks, msg.ID)
			c.ackMu.Unlock()
		}()

		timeout := c.cfg.AckTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		timer := time.NewTimer(timeout)
		defer timer.Stop()

		select {
		case ack := <-waiter:
			return ack, nil
		case <-timer.C:
			return protocol.AckMsg{}, fmt.Errorf("live: ack timeout for message %s", msg.ID)
		case <-ctx.Done():
			return protocol.AckMsg{}, ctx.Err()
		case <-c.done:
			return protocol.AckMsg{}, fmt.Errorf("live: channel closed")
		}
	}
	return wait, nil
}

// SendWithAck emits a sendMessage and waits for the server's delivery
// acknowledgement in one call.
func (c *Channel) SendWithAck(ctx context.Context, msg protocol.SendMessageMsg) (protocol.AckMsg, error) {
	wait, err := c.Send(msg)
	if err != nil {
		return protocol.AckMsg{}, err
	}
	return wait(ctx)
}

// Close shuts the channel down and stops the read loop. Safe to call
// multiple times.
func (c *Channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.connMu.RLock()
		if c.conn != nil {
			err = c.conn.Close()
		}
		c.connMu.RUnlock()
	})
	return err
}

func (c *Channel) write(data []byte) error {
	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()
	if conn == nil {
		return fmt.Errorf("live: not connected")
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := wsutil.WriteClientMessage(conn, ws.OpText, data); err != nil {
		return fmt.Errorf("live: write: %w", err)
	}
	return nil
}

// readLoop continuously reads frames, resolves pending acks, and dispatches
// everything else to the registered handlers. On a read failure it attempts
// to reconnect; handler registrations survive reconnects.
func (c *Channel) readLoop() {
	for {
		select {
		case <-c.done:
			return
		default:
		}

		c.connMu.RLock()
		conn := c.conn
		c.connMu.RUnlock()

		data, err := wsutil.ReadServerText(conn)
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}
			log.Printf("[live] read error: %v", err)
			if !c.reconnect() {
				return
			}
			continue
		}

		msgType, msg, err := protocol.ParseServerMessage(data)
		if err != nil {
			log.Printf("[live] dropping message: %v", err)
			continue
		}

		if msgType == protocol.TypeAck {
			c.resolveAck(msg.(protocol.AckMsg))
			continue
		}
		if msgType == protocol.TypeMessageReceived {
			metrics.MessagesReceived.Inc()
		}

		c.dispatch(msgType, msg)
	}
}

func (c *Channel) dispatch(msgType string, msg interface{}) {
	c.handlerMu.RLock()
	snapshot := make([]Handler, 0, len(c.handlers[msgType]))
	for _, h := range c.handlers[msgType] {
		snapshot = append(snapshot, h)
	}
	c.handlerMu.RUnlock()

	for _, h := range snapshot {
		h(msg)
	}
}

func (c *Channel) resolveAck(ack protocol.AckMsg) {
	c.ackMu.Lock()
	waiter, ok := c.acks[ack.ID]
	c.ackMu.Unlock()
	if !ok {
		return
	}
	// Non-blocking: a duplicate ack for an already-filled waiter must never
	// stall the read loop.
	select {
	case waiter <- ack:
	default:
	}
}

// reconnect redials until it succeeds or the attempt budget is exhausted.
// Returns false when the channel should stop for good.
func (c *Channel) reconnect() bool {
	attempts := 0
	for {
		select {
		case <-c.done:
			return false
		case <-time.After(c.cfg.ReconnectWait):
		}

		attempts++
		if c.cfg.MaxReconnects >= 0 && attempts > c.cfg.MaxReconnects {
			log.Printf("[live] giving up after %d reconnect attempts", attempts-1)
			c.Close()
			return false
		}

		metrics.LiveReconnects.Inc()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		conn, _, _, err := ws.Dial(ctx, c.cfg.URL)
		cancel()
		if err != nil {
			log.Printf("[live] reconnect attempt %d failed: %v", attempts, err)
			continue
		}

		c.connMu.Lock()
		old := c.conn
		c.conn = conn
		c.connMu.Unlock()
		if old != nil {
			_ = old.Close()
		}

		log.Printf("[live] reconnected to %s", c.cfg.URL)

		c.reconnectMu.Lock()
		hook := c.onReconnect
		c.reconnectMu.Unlock()
		if hook != nil {
			hook()
		}
		return true
	}
}
