// Package anchor is the boundary with the on-chain submission adapter. The
// core hands over exactly five scalar values; ABI encoding and transaction
// submission belong to the adapter behind the Submitter interface.
package anchor

import (
	"context"
	"encoding/hex"
	"log/slog"

	dErrors "attestra/pkg/domain-errors"

	"attestra/internal/domain"
)

// Status codes as anchored on chain.
const (
	StatusGreen  uint8 = 0
	StatusYellow uint8 = 1
	StatusRed    uint8 = 2
)

// Payload carries the five values needed for an on-chain anchor.
type Payload struct {
	Status              uint8    `json:"status"`
	EvidenceHash        [32]byte `json:"-"`
	PolicyVersion       string   `json:"policyVersion"`
	EvaluationTimestamp int64    `json:"evaluationTimestamp"`
	ControlCount        uint8    `json:"controlCount"`
}

// EvidenceHashHex renders the fixed-size hash field for JSON consumers.
func (p Payload) EvidenceHashHex() string {
	return hex.EncodeToString(p.EvidenceHash[:])
}

// BuildPayload projects a compliance result into its anchor form.
func BuildPayload(result domain.ComplianceResult) (Payload, error) {
	status, err := encodeStatus(result.OverallStatus)
	if err != nil {
		return Payload{}, err
	}

	raw, err := hex.DecodeString(result.EvidenceHash)
	if err != nil || len(raw) < 32 {
		return Payload{}, dErrors.Newf(dErrors.CodeInternal, "evidence hash %q is not a 64-char hex digest", result.EvidenceHash)
	}

	payload := Payload{
		Status:              status,
		PolicyVersion:       result.PolicyVersion,
		EvaluationTimestamp: result.EvaluationTimestamp.Unix(),
		ControlCount:        uint8(len(result.Controls)),
	}
	copy(payload.EvidenceHash[:], raw[:32])
	return payload, nil
}

func encodeStatus(s domain.Status) (uint8, error) {
	switch s {
	case domain.StatusGreen:
		return StatusGreen, nil
	case domain.StatusYellow:
		return StatusYellow, nil
	case domain.StatusRed:
		return StatusRed, nil
	default:
		return 0, dErrors.Newf(dErrors.CodeInternal, "unknown status %q", s)
	}
}

// Submitter hands a payload to the chain adapter.
type Submitter interface {
	Submit(ctx context.Context, payload Payload) error
}

// LogSubmitter records payloads without touching a chain. It stands in until
// a real transaction adapter is wired.
type LogSubmitter struct {
	logger *slog.Logger
}

func NewLogSubmitter(logger *slog.Logger) *LogSubmitter {
	return &LogSubmitter{logger: logger}
}

func (s *LogSubmitter) Submit(ctx context.Context, payload Payload) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "anchor payload ready",
			"status", payload.Status,
			"evidence_hash", payload.EvidenceHashHex(),
			"policy_version", payload.PolicyVersion,
			"evaluation_timestamp", payload.EvaluationTimestamp,
			"control_count", payload.ControlCount,
		)
	}
	return nil
}
