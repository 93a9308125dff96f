package httpapi

import (
	"time"

	"attestra/internal/anchor"
	"attestra/internal/compliance"
	"attestra/internal/domain"
	"attestra/internal/ledger"
)

// EvaluationResponse is the wire projection of a completed evaluation.
type EvaluationResponse struct {
	EvaluationID string                  `json:"evaluationId"`
	Result       domain.ComplianceResult `json:"result"`
	AuditEntryID int64                   `json:"auditEntryId"`
	Explanation  string                  `json:"explanation"`
	Degraded     bool                    `json:"explanationDegraded"`
	Anchor       AnchorResponse          `json:"anchor"`
}

// AnchorResponse renders the five on-chain scalars, with the fixed-size hash
// field as hex.
type AnchorResponse struct {
	Status              uint8  `json:"status"`
	EvidenceHash        string `json:"evidenceHash"`
	PolicyVersion       string `json:"policyVersion"`
	EvaluationTimestamp int64  `json:"evaluationTimestamp"`
	ControlCount        uint8  `json:"controlCount"`
}

func fromAnchor(p anchor.Payload) AnchorResponse {
	return AnchorResponse{
		Status:              p.Status,
		EvidenceHash:        p.EvidenceHashHex(),
		PolicyVersion:       p.PolicyVersion,
		EvaluationTimestamp: p.EvaluationTimestamp,
		ControlCount:        p.ControlCount,
	}
}

func fromEvaluation(e *compliance.Evaluation) EvaluationResponse {
	return EvaluationResponse{
		EvaluationID: e.EvaluationID,
		Result:       e.Result,
		AuditEntryID: e.Entry.EntryID,
		Explanation:  e.Explanation,
		Degraded:     e.Degraded,
		Anchor:       fromAnchor(e.Anchor),
	}
}

// HistoryResponse lists retained results, oldest first.
type HistoryResponse struct {
	Count   int                       `json:"count"`
	Results []domain.ComplianceResult `json:"results"`
}

// VerifyResponse wraps the chain verification report.
type VerifyResponse struct {
	VerifiedAt time.Time           `json:"verifiedAt"`
	Report     ledger.VerifyReport `json:"report"`
}
