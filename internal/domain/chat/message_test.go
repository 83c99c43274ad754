package chat

import (
	"testing"

	"github.com/jbctechsolutions/parley/internal/domain/errors"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		factory func(string) Message
		role    MessageRole
	}{
		{"system", NewSystemMessage, RoleSystem},
		{"user", NewUserMessage, RoleUser},
		{"assistant", NewAssistantMessage, RoleAssistant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.factory("hello")
			if msg.Role != tt.role {
				t.Errorf("Role = %v, want %v", msg.Role, tt.role)
			}
			if msg.Content != "hello" {
				t.Errorf("Content = %q, want %q", msg.Content, "hello")
			}
		})
	}
}

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{"valid user message", NewUserMessage("hi"), false},
		{"valid system message", NewSystemMessage("be helpful"), false},
		{"valid assistant message", NewAssistantMessage("sure"), false},
		{"empty content is allowed", NewUserMessage(""), false},
		{"invalid role", NewMessage("moderator", "x"), true},
		{"empty role", NewMessage("", "x"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrInvalidRole) {
				t.Errorf("expected ErrInvalidRole in chain, got %v", err)
			}
		})
	}
}

func TestMessageRole_IsValid(t *testing.T) {
	valid := []MessageRole{RoleSystem, RoleUser, RoleAssistant}
	for _, r := range valid {
		if !r.IsValid() {
			t.Errorf("role %q should be valid", r)
		}
	}

	invalid := []MessageRole{"", "tool", "function", "USER"}
	for _, r := range invalid {
		if r.IsValid() {
			t.Errorf("role %q should be invalid", r)
		}
	}
}

func TestMessageRole_String(t *testing.T) {
	if RoleAssistant.String() != "assistant" {
		t.Errorf("String() = %q, want %q", RoleAssistant.String(), "assistant")
	}
}
