// Package chat holds the conversation state for one open 1:1 chat: the
// message transcript, the peer's presence and typing indicator, and the
// outgoing composer with its typing debounce.
package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ArponRoy7/codemate-go/internal/api"
	"github.com/ArponRoy7/codemate-go/internal/live"
	"github.com/ArponRoy7/codemate-go/internal/metrics"
	"github.com/ArponRoy7/codemate-go/internal/protocol"
	"github.com/ArponRoy7/codemate-go/internal/session"
)

// DefaultTypingIdle is the keyboard-idle window after which a typing burst is
// considered over and stopTyping is sent.
const DefaultTypingIdle = 1200 * time.Millisecond

// Options tunes how a conversation is opened.
type Options struct {
	// NavProfile is the target's display profile when the caller already has
	// it (for example from the connections list). When both fields are set
	// the profile lookup request is skipped.
	NavProfile *api.Profile

	// TypingIdle overrides DefaultTypingIdle when positive.
	TypingIdle time.Duration
}

// Controller owns the state of one open conversation. All exported methods
// are goroutine-safe. A Controller is single-use: after Close it must not be
// reused.
type Controller struct {
	api      *api.Client
	channel  *live.Channel
	self     session.User
	targetID string

	log *MessageLog
	deb *Debouncer

	mu       sync.RWMutex
	presence api.Presence
	typing   bool
	profile  api.Profile
	composer string

	subs      []*live.Subscription
	cancel    context.CancelFunc
	updates   chan struct{}
	closeOnce sync.Once
}

// Open starts a conversation with targetID. It announces the user on the live
// channel, subscribes to conversation events, and kicks off the history,
// presence and profile fetches concurrently. Each fetch fails independently;
// a failure leaves that slice of state at its zero value and is logged.
func Open(ctx context.Context, client *api.Client, channel *live.Channel, self session.User, targetID string, opts Options) *Controller {
	idle := opts.TypingIdle
	if idle <= 0 {
		idle = DefaultTypingIdle
	}

	c := &Controller{
		api:      client,
		channel:  channel,
		self:     self,
		targetID: targetID,
		log:      NewMessageLog(),
		updates:  make(chan struct{}, 1),
	}
	c.deb = NewDebouncer(idle, c.emitTyping, c.emitStopTyping)

	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.announce()
	c.channel.SetOnReconnect(c.announce)

	c.subs = append(c.subs,
		channel.On(protocol.TypeMessageReceived, c.onMessageReceived),
		channel.On(protocol.TypePresenceUpdate, c.onPresenceUpdate),
		channel.On(protocol.TypeTyping, c.onTyping),
		channel.On(protocol.TypeStopTyping, c.onStopTyping),
	)

	go c.fetchHistory(fetchCtx)
	go c.fetchPresence(fetchCtx)
	go c.resolveProfile(fetchCtx, opts.NavProfile)

	return c
}

// announce identifies the user and joins the conversation channel. It runs at
// open and again after every reconnect, since the server loses routing state
// with the connection.
func (c *Controller) announce() {
	if err := c.channel.Emit(protocol.TypeIdentify, protocol.IdentifyMsg{UserID: c.self.ID}); err != nil {
		log.Printf("[chat] identify failed: %v", err)
		return
	}
	err := c.channel.Emit(protocol.TypeJoinChat, protocol.JoinChatMsg{
		Name:         c.self.Name,
		UserID:       c.self.ID,
		TargetUserID: c.targetID,
	})
	if err != nil {
		log.Printf("[chat] joinChat failed: %v", err)
	}
}

// Close tears the conversation down: subscriptions come off the channel,
// in-flight fetches are cancelled, and any pending typing countdown is
// dropped with a final stopTyping so the peer's indicator clears.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.channel.SetOnReconnect(nil)
		for _, s := range c.subs {
			s.Off()
		}
		c.cancel()
		c.deb.Flush()
	})
}

// Updates signals state changes. The channel is buffered and coalescing:
// a receive means "something changed, re-read the accessors".
func (c *Controller) Updates() <-chan struct{} {
	return c.updates
}

func (c *Controller) notify() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

// --- bootstrap fetches ---

func (c *Controller) fetchHistory(ctx context.Context) {
	history, err := c.api.ChatHistory(ctx, c.targetID)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("[chat] history fetch failed: %v", err)
		}
		return
	}
	if ctx.Err() != nil {
		return
	}
	msgs := make([]Message, 0, len(history))
	for _, h := range history {
		msgs = append(msgs, Message{
			SenderID:   h.SenderID,
			SenderName: h.SenderName,
			Text:       h.Text,
			CreatedAt:  h.CreatedAt,
		})
	}
	c.log.Seed(msgs)
	c.notify()
}

func (c *Controller) fetchPresence(ctx context.Context) {
	p, err := c.api.GetPresence(ctx, c.targetID)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("[chat] presence fetch failed: %v", err)
		}
		return
	}
	if ctx.Err() != nil {
		return
	}
	c.mu.Lock()
	c.presence = p
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) resolveProfile(ctx context.Context, nav *api.Profile) {
	if nav != nil && nav.Name != "" && nav.PhotoURL != "" {
		c.mu.Lock()
		c.profile = *nav
		c.mu.Unlock()
		c.notify()
		return
	}
	p, err := c.api.LookupUser(ctx, c.targetID)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("[chat] profile lookup failed: %v", err)
		}
		return
	}
	if ctx.Err() != nil {
		return
	}
	c.mu.Lock()
	c.profile = p
	c.mu.Unlock()
	c.notify()
}

// --- live event handlers ---

func (c *Controller) onMessageReceived(msg interface{}) {
	m, ok := msg.(protocol.MessageReceivedMsg)
	if !ok {
		return
	}
	c.log.Append(Message{
		SenderID:   m.SenderID,
		SenderName: m.Name,
		Text:       m.Text,
		CreatedAt:  m.CreatedAt,
	})
	c.notify()
}

func (c *Controller) onPresenceUpdate(msg interface{}) {
	p, ok := msg.(protocol.PresenceUpdateMsg)
	if !ok || p.UserID != c.targetID {
		return
	}
	c.mu.Lock()
	c.presence = api.Presence{Online: p.Online, LastSeen: p.LastSeen}
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) onTyping(msg interface{}) {
	t, ok := msg.(protocol.ServerTypingMsg)
	if !ok || t.UserID != c.targetID {
		return
	}
	c.setTyping(true)
}

func (c *Controller) onStopTyping(msg interface{}) {
	t, ok := msg.(protocol.ServerTypingMsg)
	if !ok || t.UserID != c.targetID {
		return
	}
	c.setTyping(false)
}

func (c *Controller) setTyping(v bool) {
	c.mu.Lock()
	changed := c.typing != v
	c.typing = v
	c.mu.Unlock()
	if changed {
		c.notify()
	}
}

// --- outgoing ---

func (c *Controller) emitTyping() {
	err := c.channel.Emit(protocol.TypeTyping, protocol.TypingMsg{
		UserID:       c.self.ID,
		TargetUserID: c.targetID,
	})
	if err != nil {
		log.Printf("[chat] typing emit failed: %v", err)
		return
	}
	metrics.TypingEmissions.WithLabelValues("typing").Inc()
}

func (c *Controller) emitStopTyping() {
	err := c.channel.Emit(protocol.TypeStopTyping, protocol.StopTypingMsg{
		UserID:       c.self.ID,
		TargetUserID: c.targetID,
	})
	if err != nil {
		log.Printf("[chat] stopTyping emit failed: %v", err)
		return
	}
	metrics.TypingEmissions.WithLabelValues("stopTyping").Inc()
}

// Input replaces the composer text and counts as one keystroke toward the
// typing indicator.
func (c *Controller) Input(text string) {
	c.mu.Lock()
	c.composer = text
	c.mu.Unlock()
	c.deb.Keystroke()
}

// Send sends the composer's current text. Leading and trailing whitespace is
// trimmed; an empty result is a silent no-op. The composer is cleared and the
// typing burst flushed whether or not the server accepts the message, so a
// rejected send is reported through the returned error but never re-queued.
func (c *Controller) Send(ctx context.Context) error {
	c.mu.Lock()
	text := strings.TrimSpace(c.composer)
	c.composer = ""
	c.mu.Unlock()
	c.notify()

	if text == "" {
		return nil
	}

	if err := ValidateMessage(text); err != nil {
		c.deb.Flush()
		return err
	}

	wait, err := c.channel.Send(protocol.SendMessageMsg{
		Name:         c.self.Name,
		UserID:       c.self.ID,
		TargetUserID: c.targetID,
		Text:         text,
	})
	// stopTyping goes out right behind the sendMessage frame, never waiting
	// on the ack round-trip.
	c.deb.Flush()
	if err != nil {
		log.Printf("[chat] sendMessage failed: %v", err)
		return err
	}

	ack, err := wait(ctx)
	if err != nil {
		log.Printf("[chat] sendMessage failed: %v", err)
		return err
	}
	if !ack.OK {
		log.Printf("[chat] sendMessage rejected: %s", ack.Error)
		return fmt.Errorf("send rejected: %s", ack.Error)
	}
	return nil
}

// --- accessors ---

// Messages returns the transcript in order.
func (c *Controller) Messages() []Message {
	return c.log.Messages()
}

// Presence returns the peer's last known presence snapshot.
func (c *Controller) Presence() api.Presence {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.presence
}

// PeerTyping reports whether the peer is currently typing.
func (c *Controller) PeerTyping() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.typing
}

// Profile returns the peer's display profile. Fields are empty until the
// lookup resolves.
func (c *Controller) Profile() api.Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile
}

// Composer returns the current composer text.
func (c *Controller) Composer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.composer
}
