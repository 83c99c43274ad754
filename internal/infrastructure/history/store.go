// Package history persists chat transcripts as JSON files. The format is a
// flat array of role/content objects so transcripts are portable between
// installations and hand-editable.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jbctechsolutions/parley/internal/domain/chat"
	"github.com/jbctechsolutions/parley/internal/domain/errors"
)

// Store reads and writes transcript files.
type Store struct{}

// NewStore creates a new transcript store.
func NewStore() *Store {
	return &Store{}
}

// Save writes messages to path as indented JSON. The write goes through a
// temp file in the same directory followed by a rename, so a crash mid-write
// never leaves a truncated transcript behind.
func (s *Store) Save(messages []chat.Message, path string) error {
	if messages == nil {
		messages = []chat.Message{}
	}

	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return errors.NewError(errors.CodePersistence, "encoding transcript", fmt.Errorf("%w: %v", errors.ErrPersistence, err))
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return errors.NewError(errors.CodePersistence, "creating transcript directory "+dir, fmt.Errorf("%w: %v", errors.ErrPersistence, err))
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.NewError(errors.CodePersistence, "creating temp transcript file", fmt.Errorf("%w: %v", errors.ErrPersistence, err))
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.NewError(errors.CodePersistence, "writing transcript", fmt.Errorf("%w: %v", errors.ErrPersistence, err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.NewError(errors.CodePersistence, "closing temp transcript file", fmt.Errorf("%w: %v", errors.ErrPersistence, err))
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.NewError(errors.CodePersistence, "replacing transcript "+path, fmt.Errorf("%w: %v", errors.ErrPersistence, err))
	}

	return nil
}

// Load reads messages from path. A missing file is not an error and yields
// an empty transcript; a malformed file yields an empty transcript alongside
// the parse error so callers can start fresh while reporting the problem.
func (s *Store) Load(path string) ([]chat.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []chat.Message{}, nil
		}
		return []chat.Message{}, errors.NewError(errors.CodePersistence, "reading transcript "+path, fmt.Errorf("%w: %v", errors.ErrPersistence, err))
	}

	var messages []chat.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return []chat.Message{}, errors.NewError(errors.CodePersistence, "parsing transcript "+path, fmt.Errorf("%w: %v", errors.ErrPersistence, err))
	}
	if messages == nil {
		messages = []chat.Message{}
	}

	return messages, nil
}
