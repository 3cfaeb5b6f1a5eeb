package chat

import "sync"

// Message is a single chat line as the client renders it. CreatedAt is kept
// exactly as it arrived on the wire so history and live copies of the same
// message compare equal.
type Message struct {
	SenderID   string
	SenderName string
	Text       string
	CreatedAt  string
}

// key identifies a message for history/live deduplication.
func (m Message) key() string {
	return m.SenderID + "\x00" + m.CreatedAt + "\x00" + m.Text
}

// MessageLog is the append-only transcript for one conversation.
// It is goroutine-safe.
type MessageLog struct {
	mu   sync.RWMutex
	msgs []Message
}

// NewMessageLog creates an empty MessageLog.
func NewMessageLog() *MessageLog {
	return &MessageLog{}
}

// Append adds one message to the end of the transcript.
func (l *MessageLog) Append(m Message) {
	l.mu.Lock()
	l.msgs = append(l.msgs, m)
	l.mu.Unlock()
}

// Seed installs the fetched history at the front of the transcript. Messages
// that arrived live before the history fetch completed are kept, but any of
// them already present in the history are dropped so the transcript holds a
// single copy.
func (l *MessageLog) Seed(history []Message) {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[string]struct{}, len(history))
	for _, m := range history {
		seen[m.key()] = struct{}{}
	}

	merged := make([]Message, 0, len(history)+len(l.msgs))
	merged = append(merged, history...)
	for _, m := range l.msgs {
		if _, dup := seen[m.key()]; dup {
			continue
		}
		merged = append(merged, m)
	}
	l.msgs = merged
}

// Messages returns a copy of the transcript in order.
func (l *MessageLog) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Message, len(l.msgs))
	copy(out, l.msgs)
	return out
}

// Len reports the number of messages in the transcript.
func (l *MessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.msgs)
}
