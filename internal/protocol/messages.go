// Package protocol defines the live-channel message types and structures used
// for communication between the CodeMate client and the real-time messaging
// server. All messages are serialized as JSON and follow a consistent envelope
// format with a type discriminator.
package protocol

import (
	"encoding/json"
	"fmt"
)

// ---------------------------------------------------------------------------
// Message type constants
// ---------------------------------------------------------------------------

// Client -> Server message types.
const (
	TypeIdentify    = "identify"
	TypeJoinChat    = "joinChat"
	TypeTyping      = "typing"
	TypeStopTyping  = "stopTyping"
	TypeSendMessage = "sendMessage"
)

// Server -> Client message types. TypeTyping and TypeStopTyping are shared
// with the client->server direction; the payloads differ (the server relays
// only the subject's userId).
const (
	TypeMessageReceived = "messageReceived"
	TypePresenceUpdate  = "presenceUpdate"
	TypeAck             = "ack"
)

// ---------------------------------------------------------------------------
// Envelope — used for initial JSON parsing to extract the type discriminator.
// ---------------------------------------------------------------------------

// Envelope holds the message type and the raw JSON payload for deferred
// parsing into a concrete struct.
type Envelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements the json.Unmarshaler interface. It captures the
// full raw bytes and extracts only the "type" field so that the rest of the
// payload can be decoded later into the appropriate concrete struct.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	// Capture the full raw message for deferred parsing.
	e.Raw = make(json.RawMessage, len(data))
	copy(e.Raw, data)

	// Extract only the type field.
	var partial struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &partial); err != nil {
		return fmt.Errorf("protocol: failed to unmarshal envelope: %w", err)
	}
	if partial.Type == "" {
		return fmt.Errorf("protocol: missing or empty \"type\" field")
	}
	e.Type = partial.Type
	return nil
}

// ---------------------------------------------------------------------------
// Client -> Server message structs
// ---------------------------------------------------------------------------

// IdentifyMsg announces the authenticated user's identity to the messaging
// server so presence and message routing can be keyed by user ID.
type IdentifyMsg struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// JoinChatMsg joins the 1:1 conversation channel keyed by the
// (userId, targetUserId) pair.
type JoinChatMsg struct {
	Type         string `json:"type"`
	Name         string `json:"name"`
	UserID       string `json:"userId"`
	TargetUserID string `json:"targetUserId"`
}

// TypingMsg signals that the sender has started typing in the conversation
// with targetUserId.
type TypingMsg struct {
	Type         string `json:"type"`
	UserID       string `json:"userId"`
	TargetUserID string `json:"targetUserId"`
}

// StopTypingMsg signals that the sender has stopped typing.
type StopTypingMsg struct {
	Type         string `json:"type"`
	UserID       string `json:"userId"`
	TargetUserID string `json:"targetUserId"`
}

// SendMessageMsg carries an outgoing chat message. ID is a client-generated
// correlation ID echoed back in the server's AckMsg.
type SendMessageMsg struct {
	Type         string `json:"type"`
	ID           string `json:"id"`
	Name         string `json:"name"`
	UserID       string `json:"userId"`
	TargetUserID string `json:"targetUserId"`
	Text         string `json:"text"`
}

// ---------------------------------------------------------------------------
// Server -> Client message structs
// ---------------------------------------------------------------------------

// MessageReceivedMsg is a chat message delivered by the server. The sender's
// own messages are echoed back through this event as well.
type MessageReceivedMsg struct {
	Type      string `json:"type"`
	SenderID  string `json:"senderId"`
	Name      string `json:"name"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

// PresenceUpdateMsg reports a participant's online/last-seen state. LastSeen
// is an RFC 3339 timestamp, or empty when the participant has never been seen.
type PresenceUpdateMsg struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	Online   bool   `json:"online"`
	LastSeen string `json:"lastSeen,omitempty"`
}

// ServerTypingMsg relays a typing or stopTyping signal; only the subject's
// user ID is carried.
type ServerTypingMsg struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// AckMsg is the server's delivery acknowledgement for a sendMessage request,
// correlated by the client-generated ID.
type AckMsg struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// ---------------------------------------------------------------------------
// Helper functions
// ---------------------------------------------------------------------------

// ParseServerMessage parses raw live-channel bytes into a typed server
// message. It returns the message type string, the decoded struct, and any
// error encountered during parsing. An error is returned for unknown or
// client-only message types.
func ParseServerMessage(data []byte) (string, interface{}, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("protocol: failed to parse message: %w", err)
	}

	var (
		msg interface{}
		err error
	)

	switch env.Type {
	case TypeMessageReceived:
		var m MessageReceivedMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypePresenceUpdate:
		var m PresenceUpdateMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypeTyping, TypeStopTyping:
		var m ServerTypingMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypeAck:
		var m AckMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	default:
		return env.Type, nil, fmt.Errorf("protocol: unknown server message type: %q", env.Type)
	}

	if err != nil {
		return env.Type, nil, fmt.Errorf("protocol: failed to decode %q payload: %w", env.Type, err)
	}
	return env.Type, msg, nil
}

// NewClientMessage creates a JSON-encoded byte slice for a client message.
// The msgType is injected into the payload under the "type" key. The payload
// should be one of the client message structs; this function marshals it to
// JSON, injects the type field, and returns the final bytes.
func NewClientMessage(msgType string, payload interface{}) ([]byte, error) {
	// Marshal the payload struct to a generic map so we can ensure the "type"
	// field is present and correct.
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to marshal payload: %w", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("protocol: failed to unmarshal payload into map: %w", err)
	}

	m["type"] = msgType

	out, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to marshal client message: %w", err)
	}
	return out, nil
}
