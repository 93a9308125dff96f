package compliance

import (
	"fmt"
	"sync"
	"time"

	dErrors "attestra/pkg/domain-errors"

	"attestra/internal/domain"
	"attestra/internal/validation"
)

// defaultHistoryLimit bounds the in-memory evaluation history.
const defaultHistoryLimit = 1000

// Engine runs the full decision pipeline: validation, the four rules in fixed
// order, worst-of aggregation, and the evidence commitment. Evaluation is a
// pure function of its arguments; the only state the engine keeps is a
// bounded history of past results, guarded for concurrent callers.
type Engine struct {
	historyLimit int

	mu      sync.RWMutex
	history []domain.ComplianceResult
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithHistoryLimit overrides the bounded history size.
func WithHistoryLimit(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.historyLimit = n
		}
	}
}

// NewEngine constructs an engine with an empty history.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{historyLimit: defaultHistoryLimit}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate produces an immutable ComplianceResult for one cycle. It fails
// fast on malformed input before any rule runs, and aborts entirely if a rule
// faults: a missing control must never be mistaken for a passing one.
func (e *Engine) Evaluate(
	reserves domain.ReserveData,
	liabilities domain.LiabilityData,
	policy domain.PolicyConfig,
	now time.Time,
) (domain.ComplianceResult, error) {
	if err := validation.Reserves(reserves); err != nil {
		return domain.ComplianceResult{}, err
	}
	if err := validation.Liabilities(liabilities); err != nil {
		return domain.ComplianceResult{}, err
	}
	if err := validation.Policy(policy); err != nil {
		return domain.ComplianceResult{}, err
	}

	controls, err := e.runRules(reserves, liabilities, policy, now)
	if err != nil {
		return domain.ComplianceResult{}, err
	}

	evidenceHash, err := BuildEvidenceHash(reserves, liabilities, controls, now, policy.Version)
	if err != nil {
		return domain.ComplianceResult{}, dErrors.Wrap(err, dErrors.CodeEvaluation, "evidence commitment failed")
	}

	result := domain.ComplianceResult{
		OverallStatus:       Aggregate(controls),
		Controls:            controls,
		PolicyVersion:       policy.Version,
		EvaluationTimestamp: now,
		EvidenceHash:        evidenceHash,
	}

	e.remember(result)
	return result, nil
}

// runRules evaluates the four controls in the fixed order the evidence
// commitment depends on. A panic inside a rule is converted to an evaluation
// error that aborts the whole call.
func (e *Engine) runRules(
	reserves domain.ReserveData,
	liabilities domain.LiabilityData,
	policy domain.PolicyConfig,
	now time.Time,
) (controls []domain.ControlResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			controls = nil
			err = dErrors.Wrap(fmt.Errorf("%v", r), dErrors.CodeEvaluation, "rule evaluation panicked")
		}
	}()

	controls = make([]domain.ControlResult, 0, len(domain.ControlOrder))
	for _, ct := range domain.ControlOrder {
		var result domain.ControlResult
		switch ct {
		case domain.ControlReserveRatio:
			result = EvaluateReserveRatio(reserves, liabilities, policy.Ratio, now)
		case domain.ControlProofFreshness:
			result = EvaluateProofFreshness(reserves, policy.Freshness, now)
		case domain.ControlAssetQuality:
			result = EvaluateAssetQuality(reserves, policy.Quality, now)
		case domain.ControlConcentration:
			result = EvaluateConcentration(reserves, policy.Concentration, now)
		}
		if !result.Status.Valid() {
			return nil, dErrors.Newf(dErrors.CodeEvaluation, "control %s produced no status", ct)
		}
		controls = append(controls, result)
	}
	return controls, nil
}

func (e *Engine) remember(result domain.ComplianceResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = append(e.history, result)
	if len(e.history) > e.historyLimit {
		e.history = e.history[len(e.history)-e.historyLimit:]
	}
}

// History returns a copy of the retained evaluation results, oldest first.
func (e *Engine) History() []domain.ComplianceResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]domain.ComplianceResult(nil), e.history...)
}

// Latest returns the most recent result, if any.
func (e *Engine) Latest() (domain.ComplianceResult, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.history) == 0 {
		return domain.ComplianceResult{}, false
	}
	return e.history[len(e.history)-1], true
}
