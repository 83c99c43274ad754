package session

import (
	"sync"
	"time"

	"github.com/jbctechsolutions/parley/internal/domain/chat"
	"github.com/jbctechsolutions/parley/internal/domain/errors"
)

// Store holds an ordered collection of chat sessions and tracks the active
// selection. The store is never empty after the first Create or Delete: when
// the last session is removed, a fresh empty one is synthesized immediately.
//
// Session ids come from a strictly monotonic counter incremented once per
// creation. Deriving ids from the current list length would reuse an id after
// deletions, letting two sessions collide.
type Store struct {
	mu       sync.RWMutex
	sessions []*ChatSession
	active   *ChatSession
	nextID   int
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{nextID: 1}
}

// Create appends a new empty session with a fresh id and a generated display
// name. The new session becomes the active selection.
func (s *Store) Create() *ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked()
}

func (s *Store) createLocked() *ChatSession {
	now := time.Now()
	sess := &ChatSession{
		ID:        s.nextID,
		Name:      sessionName(s.nextID),
		Messages:  make([]chat.Message, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextID++
	s.sessions = append(s.sessions, sess)
	s.active = sess
	return sess
}

// Delete removes the session with the given id. If the deleted session was
// active, the active selection moves to the last remaining session. If the
// store would be left empty, a fresh session is created and becomes active.
func (s *Store) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, sess := range s.sessions {
		if sess.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.NewError(errors.CodeNotFound, "cannot delete session", errors.ErrSessionNotFound)
	}

	wasActive := s.active != nil && s.active.ID == id
	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)

	if len(s.sessions) == 0 {
		s.createLocked()
		return nil
	}
	if wasActive {
		s.active = s.sessions[len(s.sessions)-1]
	}
	return nil
}

// Append adds a message to the session with the given id.
func (s *Store) Append(id int, msg chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess.Append(msg)
		}
	}
	return errors.NewError(errors.CodeNotFound, "cannot append message", errors.ErrSessionNotFound)
}

// Select makes the session with the given id the active selection.
func (s *Store) Select(id int) (*ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		if sess.ID == id {
			s.active = sess
			return sess, nil
		}
	}
	return nil, errors.NewError(errors.CodeNotFound, "cannot select session", errors.ErrSessionNotFound)
}

// Active returns the currently selected session, or nil if the store has
// never held a session.
func (s *Store) Active() *ChatSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Get returns the session with the given id.
func (s *Store) Get(id int) (*ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess, nil
		}
	}
	return nil, errors.NewError(errors.CodeNotFound, "session lookup failed", errors.ErrSessionNotFound)
}

// List returns the sessions in creation order.
func (s *Store) List() []*ChatSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*ChatSession, len(s.sessions))
	copy(result, s.sessions)
	return result
}

// Count returns the number of sessions in the store.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
