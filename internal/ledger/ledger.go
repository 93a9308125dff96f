package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"attestra/internal/domain"
	"attestra/pkg/requestcontext"
)

// Ledger owns the chain pointer and serializes appends. The mutex is not
// optional: two concurrent records reading the same previousHash would both
// claim the same parent and silently fork the chain.
type Ledger struct {
	store  Store
	logger *slog.Logger

	mu       sync.Mutex
	nextID   int64
	lastHash string
}

// New constructs a ledger over the given store, resuming the chain pointer
// from the store's last entry.
func New(ctx context.Context, store Store, logger *slog.Logger) (*Ledger, error) {
	l := &Ledger{
		store:    store,
		logger:   logger,
		lastHash: GenesisHash,
	}
	last, ok, err := store.Last(ctx)
	if err != nil {
		return nil, fmt.Errorf("load chain tip: %w", err)
	}
	if ok {
		l.nextID = last.EntryID + 1
		l.lastHash = last.EntryHash
	}
	return l, nil
}

// Record appends one evaluation summary to the chain. Only statuses, the
// evidence hash, and metadata are taken from the result; raw figures never
// reach the store.
func (l *Ledger) Record(ctx context.Context, evaluationID string, result domain.ComplianceResult) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Truncated to microseconds so the hashed timestamp survives a round trip
	// through TIMESTAMPTZ storage unchanged.
	entry := Entry{
		EntryID:        l.nextID,
		Timestamp:      requestcontext.Now(ctx).Truncate(time.Microsecond),
		EvaluationID:   evaluationID,
		OverallStatus:  result.OverallStatus,
		ControlSummary: result.Summaries(),
		PolicyVersion:  result.PolicyVersion,
		EvidenceHash:   result.EvidenceHash,
		PreviousHash:   l.lastHash,
	}

	hash, err := ComputeEntryHash(entry)
	if err != nil {
		return Entry{}, fmt.Errorf("hash audit entry: %w", err)
	}
	entry.EntryHash = hash

	if err := l.store.Append(ctx, entry); err != nil {
		return Entry{}, err
	}

	l.nextID++
	l.lastHash = entry.EntryHash

	if l.logger != nil {
		l.logger.InfoContext(ctx, "audit entry recorded",
			"entry_id", entry.EntryID,
			"evaluation_id", evaluationID,
			"overall_status", entry.OverallStatus,
		)
	}
	return entry, nil
}

// VerifyChain walks the whole chain from genesis, recomputing every entry
// hash and checking previousHash linkage. It reports the first broken index
// rather than erroring: a tampered chain is a finding, not a crash.
func (l *Ledger) VerifyChain(ctx context.Context) (VerifyReport, error) {
	entries, err := l.store.List(ctx)
	if err != nil {
		return VerifyReport{}, fmt.Errorf("load chain: %w", err)
	}

	prevHash := GenesisHash
	for i := range entries {
		entry := entries[i]
		if entry.PreviousHash != prevHash {
			idx := entry.EntryID
			return VerifyReport{
				Valid:    false,
				BrokenAt: &idx,
				Reason:   fmt.Sprintf("entry %d previousHash does not match entry %d entryHash", entry.EntryID, entry.EntryID-1),
			}, nil
		}
		recomputed, err := ComputeEntryHash(entry)
		if err != nil {
			return VerifyReport{}, fmt.Errorf("recompute entry %d hash: %w", entry.EntryID, err)
		}
		if recomputed != entry.EntryHash {
			idx := entry.EntryID
			return VerifyReport{
				Valid:    false,
				BrokenAt: &idx,
				Reason:   fmt.Sprintf("entry %d content does not match its recorded hash", entry.EntryID),
			}, nil
		}
		prevHash = entry.EntryHash
	}
	return VerifyReport{Valid: true}, nil
}

// ExportJSON dumps the chain with a fresh integrity verdict for external
// auditors.
func (l *Ledger) ExportJSON(ctx context.Context) (Export, error) {
	report, err := l.VerifyChain(ctx)
	if err != nil {
		return Export{}, err
	}
	entries, err := l.store.List(ctx)
	if err != nil {
		return Export{}, fmt.Errorf("load chain: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return Export{
		ExportedAt: requestcontext.Now(ctx),
		ChainValid: report.Valid,
		Entries:    entries,
	}, nil
}
