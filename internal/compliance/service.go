package compliance

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"attestra/internal/advisory"
	"attestra/internal/anchor"
	"attestra/internal/compliance/metrics"
	"attestra/internal/domain"
	"attestra/internal/fetch"
	"attestra/internal/ledger"
	"attestra/internal/validation"
	"attestra/pkg/requestcontext"
)

// SnapshotGatherer supplies one cycle's input data.
type SnapshotGatherer interface {
	Gather(ctx context.Context) (*fetch.Snapshot, error)
}

// Evaluation is the full outcome of one cycle: the immutable result, its
// audit entry, the advisory commentary, and the on-chain payload.
type Evaluation struct {
	EvaluationID string                  `json:"evaluationId"`
	Result       domain.ComplianceResult `json:"result"`
	Entry        ledger.Entry            `json:"auditEntry"`
	Explanation  string                  `json:"explanation"`
	Degraded     bool                    `json:"explanationDegraded"`
	Anchor       anchor.Payload          `json:"anchor"`
	EvidenceHash string                  `json:"evidenceHash"`
}

// Service orchestrates a full evaluation cycle: gather snapshots, run the
// engine, append to the audit ledger, fan the verdict out, and attach
// advisory commentary. The active policy may be hot-swapped; swaps affect
// only subsequent evaluations, never recorded results or their hashes.
type Service struct {
	engine    *Engine
	gatherer  SnapshotGatherer
	ledger    *ledger.Ledger
	publisher VerdictPublisher
	advisor   *advisory.Guard
	submitter anchor.Submitter
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer

	policyMu sync.RWMutex
	policy   domain.PolicyConfig
}

// VerdictPublisher fans verdict summaries out to downstream consumers.
type VerdictPublisher interface {
	Publish(ctx context.Context, event VerdictEvent) error
}

// VerdictEvent mirrors verdictstream's wire shape without importing it, so
// the service does not depend on the Kafka adapter.
type VerdictEvent struct {
	EvaluationID        string
	OverallStatus       domain.Status
	ControlSummary      []domain.ControlSummary
	PolicyVersion       string
	EvidenceHash        string
	EvaluationTimestamp time.Time
}

// NewService wires the evaluation pipeline. Publisher, advisor, and submitter
// may be nil; the corresponding step is skipped or degraded.
func NewService(
	engine *Engine,
	gatherer SnapshotGatherer,
	auditLedger *ledger.Ledger,
	policy domain.PolicyConfig,
	logger *slog.Logger,
	m *metrics.Metrics,
	opts ...ServiceOption,
) (*Service, error) {
	if err := validation.Policy(policy); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		engine:   engine,
		gatherer: gatherer,
		ledger:   auditLedger,
		advisor:  advisory.NewGuard(nil),
		metrics:  m,
		logger:   logger,
		tracer:   otel.Tracer("attestra/compliance"),
		policy:   policy,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ServiceOption configures optional collaborators.
type ServiceOption func(*Service)

// WithPublisher enables verdict fan-out.
func WithPublisher(p VerdictPublisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

// WithAdvisor enables advisory commentary. The explainer is always wrapped in
// the degradation guard.
func WithAdvisor(e advisory.Explainer) ServiceOption {
	return func(s *Service) { s.advisor = advisory.NewGuard(e) }
}

// WithSubmitter enables anchor payload submission.
func WithSubmitter(sub anchor.Submitter) ServiceOption {
	return func(s *Service) { s.submitter = sub }
}

// Policy returns the currently active policy configuration.
func (s *Service) Policy() domain.PolicyConfig {
	s.policyMu.RLock()
	defer s.policyMu.RUnlock()
	return s.policy
}

// SetPolicy hot-swaps the active policy after validating it. Past results are
// never recomputed.
func (s *Service) SetPolicy(p domain.PolicyConfig) error {
	if err := validation.Policy(p); err != nil {
		return err
	}
	s.policyMu.Lock()
	s.policy = p
	s.policyMu.Unlock()

	if s.logger != nil {
		s.logger.Info("policy swapped", "policy_version", p.Version)
	}
	return nil
}

// RunCycle gathers fresh snapshots and evaluates them.
func (s *Service) RunCycle(ctx context.Context) (*Evaluation, error) {
	snapshot, err := s.gatherer.Gather(ctx)
	if err != nil {
		return nil, err
	}
	return s.EvaluateSnapshot(ctx, snapshot.Reserves, snapshot.Liabilities)
}

// EvaluateSnapshot runs one evaluation over supplied snapshots: engine,
// ledger append, fan-out, advisory. The snapshots are discarded afterwards.
func (s *Service) EvaluateSnapshot(ctx context.Context, reserves domain.ReserveData, liabilities domain.LiabilityData) (*Evaluation, error) {
	ctx, span := s.tracer.Start(ctx, "compliance.evaluate")
	defer span.End()

	start := time.Now()
	now := requestcontext.Now(ctx)
	evaluationID := uuid.NewString()
	policy := s.Policy()

	result, err := s.engine.Evaluate(reserves, liabilities, policy, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "evaluation failed",
			"evaluation_id", evaluationID,
			"policy_version", policy.Version,
			"error", err,
		)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("compliance.overall_status", string(result.OverallStatus)),
		attribute.String("compliance.policy_version", result.PolicyVersion),
	)

	entry, err := s.ledger.Record(ctx, evaluationID, result)
	if err != nil {
		// Fail closed: a verdict that cannot be audited is not published.
		s.logger.ErrorContext(ctx, "audit append failed",
			"evaluation_id", evaluationID,
			"error", err,
		)
		return nil, err
	}
	s.metrics.IncrementChainEntries()
	s.metrics.IncrementVerdict(string(result.OverallStatus), result.PolicyVersion)

	s.publish(ctx, evaluationID, result)

	payload, err := anchor.BuildPayload(result)
	if err != nil {
		return nil, err
	}
	if s.submitter != nil {
		if err := s.submitter.Submit(ctx, payload); err != nil {
			// Anchoring is downstream of the verdict; log and move on.
			s.logger.WarnContext(ctx, "anchor submission failed",
				"evaluation_id", evaluationID,
				"error", err,
			)
		}
	}

	explanation, degraded := s.advisor.Explain(ctx, result)
	if degraded {
		s.metrics.IncrementAdvisoryFallbacks()
	}

	s.metrics.ObserveEvaluateLatency(time.Since(start))
	s.logger.InfoContext(ctx, "evaluation completed",
		"evaluation_id", evaluationID,
		"overall_status", result.OverallStatus,
		"policy_version", result.PolicyVersion,
		"evidence_hash", result.EvidenceHash,
		"entry_id", entry.EntryID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Evaluation{
		EvaluationID: evaluationID,
		Result:       result,
		Entry:        entry,
		Explanation:  explanation,
		Degraded:     degraded,
		Anchor:       payload,
		EvidenceHash: result.EvidenceHash,
	}, nil
}

func (s *Service) publish(ctx context.Context, evaluationID string, result domain.ComplianceResult) {
	if s.publisher == nil {
		return
	}
	event := VerdictEvent{
		EvaluationID:        evaluationID,
		OverallStatus:       result.OverallStatus,
		ControlSummary:      result.Summaries(),
		PolicyVersion:       result.PolicyVersion,
		EvidenceHash:        result.EvidenceHash,
		EvaluationTimestamp: result.EvaluationTimestamp,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "verdict publish failed",
			"evaluation_id", evaluationID,
			"error", err,
		)
	}
}

// Latest exposes the most recent result for the API layer.
func (s *Service) Latest() (domain.ComplianceResult, bool) {
	return s.engine.Latest()
}

// History exposes the bounded evaluation history, oldest first.
func (s *Service) History() []domain.ComplianceResult {
	return s.engine.History()
}
