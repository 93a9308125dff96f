// Package ledger implements the tamper-evident audit trail: an append-only,
// hash-chained log of non-sensitive evaluation summaries with whole-chain
// integrity verification and auditor export.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"attestra/internal/domain"
)

// GenesisHash is the previousHash of the first entry.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// Entry is one link in the audit chain. It deliberately carries only
// statuses, digests, and metadata: raw monetary values, asset names, and
// percentages never appear here.
type Entry struct {
	EntryID        int64                   `json:"entryId"`
	Timestamp      time.Time               `json:"timestamp"`
	EvaluationID   string                  `json:"evaluationId"`
	OverallStatus  domain.Status           `json:"overallStatus"`
	ControlSummary []domain.ControlSummary `json:"controlSummary"`
	PolicyVersion  string                  `json:"policyVersion"`
	EvidenceHash   string                  `json:"evidenceHash"`
	EntryHash      string                  `json:"entryHash"`
	PreviousHash   string                  `json:"previousHash"`
}

// entryContent is the canonical hashed portion of an entry. Struct fields
// only, so json.Marshal yields a byte-stable encoding for reproducible
// hashing.
type entryContent struct {
	EntryID        int64                   `json:"entryId"`
	Timestamp      string                  `json:"timestamp"`
	EvaluationID   string                  `json:"evaluationId"`
	OverallStatus  domain.Status           `json:"overallStatus"`
	ControlSummary []domain.ControlSummary `json:"controlSummary"`
	PolicyVersion  string                  `json:"policyVersion"`
	EvidenceHash   string                  `json:"evidenceHash"`
}

// ComputeEntryHash returns the lowercase hex SHA-256 over the entry's
// canonical content concatenated with its previousHash. Exported so external
// auditors can replay the chain from an export.
func ComputeEntryHash(e Entry) (string, error) {
	content := entryContent{
		EntryID:        e.EntryID,
		Timestamp:      e.Timestamp.UTC().Format(time.RFC3339Nano),
		EvaluationID:   e.EvaluationID,
		OverallStatus:  e.OverallStatus,
		ControlSummary: e.ControlSummary,
		PolicyVersion:  e.PolicyVersion,
		EvidenceHash:   e.EvidenceHash,
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write(raw)
	h.Write([]byte(e.PreviousHash))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyReport is the structured, non-throwing outcome of a chain walk. An
// invalid chain is an investigative finding, not a runtime failure; consumers
// must treat entries from BrokenAt onward as untrustworthy.
type VerifyReport struct {
	Valid    bool   `json:"valid"`
	BrokenAt *int64 `json:"brokenAt,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Export is the auditor-facing dump of the whole chain.
type Export struct {
	ExportedAt time.Time `json:"exportedAt"`
	ChainValid bool      `json:"chainValid"`
	Entries    []Entry   `json:"entries"`
}
