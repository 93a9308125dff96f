package verdictstream

import (
	"context"

	"attestra/internal/compliance"
)

// ServiceAdapter bridges the compliance service's publisher port to a
// concrete stream publisher.
type ServiceAdapter struct {
	publisher Publisher
}

func NewServiceAdapter(p Publisher) *ServiceAdapter {
	return &ServiceAdapter{publisher: p}
}

func (a *ServiceAdapter) Publish(ctx context.Context, event compliance.VerdictEvent) error {
	return a.publisher.Publish(ctx, VerdictEvent{
		EvaluationID:        event.EvaluationID,
		OverallStatus:       event.OverallStatus,
		ControlSummary:      event.ControlSummary,
		PolicyVersion:       event.PolicyVersion,
		EvidenceHash:        event.EvidenceHash,
		EvaluationTimestamp: event.EvaluationTimestamp,
	})
}
