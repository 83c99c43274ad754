// Package testutil provides test fixtures and helpers for testing.
package testutil

import (
	"github.com/jbctechsolutions/parley/internal/application/ports"
	"github.com/jbctechsolutions/parley/internal/domain/chat"
)

// NewUserMessage creates a user port message for testing.
func NewUserMessage(content string) ports.Message {
	return ports.Message{Role: "user", Content: content}
}

// NewAssistantMessage creates an assistant port message for testing.
func NewAssistantMessage(content string) ports.Message {
	return ports.Message{Role: "assistant", Content: content}
}

// NewSystemMessage creates a system port message for testing.
func NewSystemMessage(content string) ports.Message {
	return ports.Message{Role: "system", Content: content}
}

// Conversation builds a short alternating transcript ending with a user turn.
func Conversation(turns ...string) []chat.Message {
	messages := make([]chat.Message, 0, len(turns))
	for i, turn := range turns {
		if i%2 == 0 {
			messages = append(messages, chat.NewUserMessage(turn))
		} else {
			messages = append(messages, chat.NewAssistantMessage(turn))
		}
	}
	return messages
}
