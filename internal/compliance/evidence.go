package compliance

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"attestra/internal/domain"
)

// evidenceCommitment is the canonical structure the evidence hash is computed
// over. Every field is a struct or a slice of structs, never a map, so
// json.Marshal produces a byte-stable encoding and the hash is replayable.
//
// The raw snapshots appear only as one-way digests. Note the limitation: the
// digests carry no randomized salt, so they do not cryptographically hide
// inputs an adversary could brute-force from a small value space. The privacy
// boundary is the secrecy of the full raw inputs.
type evidenceCommitment struct {
	ReserveCommitment   string                  `json:"reserveCommitment"`
	LiabilityCommitment string                  `json:"liabilityCommitment"`
	ControlStatuses     []domain.ControlSummary `json:"controlStatuses"`
	EvaluationTimestamp string                  `json:"evaluationTimestamp"`
	PolicyVersion       string                  `json:"policyVersion"`
}

// BuildEvidenceHash produces the publishable 64-char lowercase hex commitment
// over what was evaluated and with what outcome. Controls must already be in
// the fixed rule order; the commitment is built over that sequence.
func BuildEvidenceHash(
	reserves domain.ReserveData,
	liabilities domain.LiabilityData,
	controls []domain.ControlResult,
	evaluatedAt time.Time,
	policyVersion string,
) (string, error) {
	reserveDigest, err := digest(reserves)
	if err != nil {
		return "", fmt.Errorf("commit reserves: %w", err)
	}
	liabilityDigest, err := digest(liabilities)
	if err != nil {
		return "", fmt.Errorf("commit liabilities: %w", err)
	}

	statuses := make([]domain.ControlSummary, 0, len(controls))
	for _, c := range controls {
		statuses = append(statuses, domain.ControlSummary{Type: c.ControlType, Status: c.Status})
	}

	commitment := evidenceCommitment{
		ReserveCommitment:   reserveDigest,
		LiabilityCommitment: liabilityDigest,
		ControlStatuses:     statuses,
		EvaluationTimestamp: evaluatedAt.UTC().Format(time.RFC3339),
		PolicyVersion:       policyVersion,
	}
	return digest(commitment)
}

// digest returns the lowercase hex SHA-256 of v's canonical JSON encoding.
func digest(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
