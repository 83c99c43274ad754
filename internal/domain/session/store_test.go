package session

import (
	"testing"

	"github.com/jbctechsolutions/parley/internal/domain/chat"
	"github.com/jbctechsolutions/parley/internal/domain/errors"
)

func TestStore_Create(t *testing.T) {
	store := NewStore()

	first := store.Create()
	if first.ID != 1 {
		t.Errorf("first session ID = %d, want 1", first.ID)
	}
	if first.Name != "Chat 1" {
		t.Errorf("first session Name = %q, want %q", first.Name, "Chat 1")
	}
	if len(first.Messages) != 0 {
		t.Errorf("new session should have empty message log, got %d messages", len(first.Messages))
	}
	if store.Active() != first {
		t.Error("newly created session should be active")
	}

	second := store.Create()
	if second.ID != 2 {
		t.Errorf("second session ID = %d, want 2", second.ID)
	}
	if store.Active() != second {
		t.Error("active selection should move to the newest session")
	}
	if store.Count() != 2 {
		t.Errorf("Count() = %d, want 2", store.Count())
	}
}

func TestStore_IDsNotReusedAfterDeletion(t *testing.T) {
	store := NewStore()

	a := store.Create() // id 1
	b := store.Create() // id 2
	if err := store.Delete(a.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	c := store.Create()
	if c.ID == b.ID || c.ID == a.ID {
		t.Errorf("new session reused an issued id: got %d", c.ID)
	}
	if c.ID != 3 {
		t.Errorf("ids must be strictly monotonic: got %d, want 3", c.ID)
	}
}

func TestStore_DeleteMovesActiveToLastRemaining(t *testing.T) {
	store := NewStore()

	a := store.Create() // id 1
	b := store.Create() // id 2

	if _, err := store.Select(a.ID); err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if err := store.Delete(a.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if store.Count() != 1 {
		t.Errorf("Count() = %d, want 1", store.Count())
	}
	if store.Active() != b {
		t.Errorf("active = %v, want session %d", store.Active(), b.ID)
	}
}

func TestStore_DeleteInactiveKeepsActive(t *testing.T) {
	store := NewStore()

	a := store.Create()
	b := store.Create()

	if err := store.Delete(a.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if store.Active() != b {
		t.Error("deleting an inactive session must not change the active selection")
	}
}

func TestStore_DeleteLastSessionSynthesizesNewOne(t *testing.T) {
	store := NewStore()

	only := store.Create()
	if err := store.Delete(only.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if store.Count() != 1 {
		t.Fatalf("store must never be left empty, Count() = %d", store.Count())
	}
	active := store.Active()
	if active == nil {
		t.Fatal("active selection must be valid after deleting the last session")
	}
	if active.ID == only.ID {
		t.Error("synthesized session must have a fresh id")
	}
	if len(active.Messages) != 0 {
		t.Errorf("synthesized session must have an empty message log, got %d", len(active.Messages))
	}
}

func TestStore_DeleteUnknownID(t *testing.T) {
	store := NewStore()
	store.Create()

	err := store.Delete(99)
	if !errors.Is(err, errors.ErrSessionNotFound) {
		t.Errorf("Delete(99) error = %v, want ErrSessionNotFound", err)
	}
}

func TestStore_Append(t *testing.T) {
	store := NewStore()
	sess := store.Create()

	if err := store.Append(sess.ID, chat.NewUserMessage("hello")); err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if err := store.Append(sess.ID, chat.NewAssistantMessage("hi there")); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	if sess.MessageCount() != 2 {
		t.Errorf("MessageCount() = %d, want 2", sess.MessageCount())
	}
	last, ok := sess.LastMessage()
	if !ok || last.Role != chat.RoleAssistant {
		t.Errorf("LastMessage() = %v, %v; want assistant message", last, ok)
	}
}

func TestStore_AppendEmptyContent(t *testing.T) {
	store := NewStore()
	sess := store.Create()

	if err := store.Append(sess.ID, chat.NewUserMessage("")); err != nil {
		t.Errorf("empty content must be accepted, got error: %v", err)
	}
}

func TestStore_AppendInvalidRole(t *testing.T) {
	store := NewStore()
	sess := store.Create()

	err := store.Append(sess.ID, chat.NewMessage("narrator", "meanwhile"))
	if !errors.Is(err, errors.ErrInvalidRole) {
		t.Errorf("Append with bad role error = %v, want ErrInvalidRole", err)
	}
	if sess.MessageCount() != 0 {
		t.Error("rejected message must not be appended")
	}
}

func TestStore_AppendUnknownSession(t *testing.T) {
	store := NewStore()
	store.Create()

	err := store.Append(42, chat.NewUserMessage("hello"))
	if !errors.Is(err, errors.ErrSessionNotFound) {
		t.Errorf("Append to unknown session error = %v, want ErrSessionNotFound", err)
	}
}

func TestStore_SelectAndGet(t *testing.T) {
	store := NewStore()
	a := store.Create()
	store.Create()

	got, err := store.Select(a.ID)
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if got != a || store.Active() != a {
		t.Error("Select should change the active selection")
	}

	if _, err := store.Get(a.ID); err != nil {
		t.Errorf("Get() error: %v", err)
	}
	if _, err := store.Get(999); !errors.Is(err, errors.ErrSessionNotFound) {
		t.Errorf("Get(999) error = %v, want ErrSessionNotFound", err)
	}
}

func TestStore_ListOrder(t *testing.T) {
	store := NewStore()
	for i := 0; i < 4; i++ {
		store.Create()
	}
	if err := store.Delete(2); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	list := store.List()
	wantIDs := []int{1, 3, 4}
	if len(list) != len(wantIDs) {
		t.Fatalf("List() length = %d, want %d", len(list), len(wantIDs))
	}
	for i, sess := range list {
		if sess.ID != wantIDs[i] {
			t.Errorf("List()[%d].ID = %d, want %d", i, sess.ID, wantIDs[i])
		}
	}
}

func TestChatSession_Replace(t *testing.T) {
	store := NewStore()
	sess := store.Create()
	if err := sess.Append(chat.NewUserMessage("old")); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	loaded := []chat.Message{
		chat.NewSystemMessage("be helpful"),
		chat.NewUserMessage("new"),
	}
	sess.Replace(loaded)

	if sess.MessageCount() != 2 {
		t.Fatalf("MessageCount() = %d, want 2", sess.MessageCount())
	}
	if sess.Messages[0].Role != chat.RoleSystem || sess.Messages[1].Content != "new" {
		t.Error("Replace should install the loaded transcript in order")
	}
}
