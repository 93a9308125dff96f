package httpapi

import (
	"attestra/internal/domain"
)

// EvaluateRequest optionally carries caller-supplied snapshots. With a nil
// body the handler runs a regular gather-and-evaluate cycle instead.
type EvaluateRequest struct {
	Reserves    *domain.ReserveData   `json:"reserves"`
	Liabilities *domain.LiabilityData `json:"liabilities"`
}

// PolicyUpdateRequest swaps the active policy for subsequent evaluations.
type PolicyUpdateRequest struct {
	Policy domain.PolicyConfig `json:"policy"`
}
