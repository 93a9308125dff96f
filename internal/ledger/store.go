package ledger

import "context"

// Store persists chain entries. Implementations only ever append and read;
// the ledger has no update or delete operation by design.
type Store interface {
	// Append persists a new entry. Entries arrive with strictly increasing
	// EntryID; implementations must reject duplicates.
	Append(ctx context.Context, entry Entry) error
	// List returns all entries ordered by EntryID ascending.
	List(ctx context.Context) ([]Entry, error)
	// Last returns the highest-ID entry, or ok=false on an empty chain.
	Last(ctx context.Context) (Entry, bool, error)
}
