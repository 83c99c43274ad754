// Package session provides domain entities for chat session management.
package session

import (
	"fmt"
	"time"

	"github.com/jbctechsolutions/parley/internal/domain/chat"
)

// ChatSession represents one independent conversation thread with its own
// ordered message log and identity.
type ChatSession struct {
	ID        int            // Unique within process lifetime
	Name      string         // Display label, e.g. "Chat 3"
	Messages  []chat.Message // Append-only, order is conversational turn order
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Append adds a message to the session's log after validating its role.
// Content may be empty.
func (s *ChatSession) Append(msg chat.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now()
	return nil
}

// MessageCount returns the number of messages in the session.
func (s *ChatSession) MessageCount() int {
	return len(s.Messages)
}

// LastMessage returns the most recent message, or false if the log is empty.
func (s *ChatSession) LastMessage() (chat.Message, bool) {
	if len(s.Messages) == 0 {
		return chat.Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Replace swaps the session's message log for a loaded transcript.
// Used when restoring a saved history into the current session.
func (s *ChatSession) Replace(messages []chat.Message) {
	s.Messages = append([]chat.Message(nil), messages...)
	s.UpdatedAt = time.Now()
}

// sessionName formats the generated display name for a session id.
func sessionName(id int) string {
	return fmt.Sprintf("Chat %d", id)
}
