package domain

import "time"

// ComplianceResult is the immutable outcome of one full evaluation. An
// evaluation either produces all four controls or fails entirely; no partial
// result is ever constructed.
type ComplianceResult struct {
	OverallStatus       Status          `json:"overallStatus"`
	Controls            []ControlResult `json:"controls"`
	PolicyVersion       string          `json:"policyVersion"`
	EvaluationTimestamp time.Time       `json:"evaluationTimestamp"`
	EvidenceHash        string          `json:"evidenceHash"`
}

// Summaries projects the controls into their non-sensitive {type,status}
// form, preserving the fixed control order.
func (r ComplianceResult) Summaries() []ControlSummary {
	out := make([]ControlSummary, 0, len(r.Controls))
	for _, c := range r.Controls {
		out = append(out, ControlSummary{Type: c.ControlType, Status: c.Status})
	}
	return out
}
