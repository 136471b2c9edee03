package core

import "time"

// Message is the domain model for a single chat line.
type Message struct {
	Room      string
	From      string
	Text      string
	CreatedAt time.Time
}

// NewMessage builds a message stamped with the current time.
func NewMessage(room, from, text string) *Message {
	return &Message{
		Room:      room,
		From:      from,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// Line renders the message the way room members see it.
func (m *Message) Line() string {
	if m.From == "" {
		return m.Text
	}
	return m.From + ": " + m.Text
}
