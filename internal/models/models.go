package models

import "time"

// EventUser is the role tag of events authored by the client.
const EventUser = "user"

// Conversation is a tracker document read from the conversation store
type Conversation struct {
	SenderID string  `json:"sender_id" bson:"sender_id"`
	Events   []Event `json:"events" bson:"events"`
	Address  any     `json:"address,omitempty" bson:"address,omitempty"`
}

// Event is one entry of a conversation. Timestamp is epoch seconds and may
// be missing on malformed records.
type Event struct {
	Event     string   `json:"event" bson:"event"`
	Timestamp *float64 `json:"timestamp,omitempty" bson:"timestamp,omitempty"`
	Text      string   `json:"text,omitempty" bson:"text,omitempty"`
}

// IsUser reports whether the event was authored by the client.
func (e Event) IsUser() bool {
	return e.Event == EventUser
}

// Message is a user event prepared for classification
type Message struct {
	Timestamp time.Time
	Text      string
	// Position is the index of the event in the conversation, used to break timestamp ties.
	Position int
}
