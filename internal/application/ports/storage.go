package ports

import (
	"github.com/jbctechsolutions/parley/internal/domain/chat"
)

// HistoryPort persists an ordered message log to a durable destination.
//
// Save is a full overwrite of the destination. Load on a missing destination
// returns an empty slice and no error; malformed content yields an empty
// slice plus an error the caller can surface without aborting.
type HistoryPort interface {
	Save(messages []chat.Message, path string) error
	Load(path string) ([]chat.Message, error)
}
