package compliance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "attestra/pkg/domain-errors"
	"attestra/pkg/requestcontext"

	"attestra/internal/domain"
	"attestra/internal/fetch"
	"attestra/internal/ledger"
)

type stubGatherer struct {
	snapshot *fetch.Snapshot
	err      error
}

func (g stubGatherer) Gather(context.Context) (*fetch.Snapshot, error) {
	return g.snapshot, g.err
}

type recordingPublisher struct {
	events []VerdictEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event VerdictEvent) error {
	p.events = append(p.events, event)
	return p.err
}

type failingStore struct{}

func (failingStore) Append(context.Context, ledger.Entry) error {
	return errors.New("disk on fire")
}
func (failingStore) List(context.Context) ([]ledger.Entry, error) { return nil, nil }
func (failingStore) Last(context.Context) (ledger.Entry, bool, error) {
	return ledger.Entry{}, false, nil
}

func healthySnapshot() *fetch.Snapshot {
	return &fetch.Snapshot{
		Reserves: reservesWorth(105,
			domain.Asset{ID: "a1", RiskLevel: domain.RiskSafe, Value: 52.5, Percentage: 50},
			domain.Asset{ID: "a2", RiskLevel: domain.RiskSafe, Value: 52.5, Percentage: 50},
		),
		Liabilities: liabilitiesWorth(100),
		FetchedAt:   testNow,
	}
}

func newTestService(t *testing.T, opts ...ServiceOption) (*Service, *ledger.Ledger) {
	t.Helper()
	auditLedger, err := ledger.New(context.Background(), ledger.NewInMemoryStore(), nil)
	require.NoError(t, err)

	svc, err := NewService(NewEngine(), stubGatherer{snapshot: healthySnapshot()}, auditLedger, domain.BaselinePolicy(), nil, nil, opts...)
	require.NoError(t, err)
	return svc, auditLedger
}

func TestServiceRunCycle(t *testing.T) {
	publisher := &recordingPublisher{}
	svc, auditLedger := newTestService(t, WithPublisher(publisher))

	ctx := requestcontext.WithTime(context.Background(), testNow)
	evaluation, err := svc.RunCycle(ctx)
	require.NoError(t, err)

	assert.NotEmpty(t, evaluation.EvaluationID)
	assert.Equal(t, domain.StatusGreen, evaluation.Result.OverallStatus)
	assert.Equal(t, evaluation.Result.EvidenceHash, evaluation.EvidenceHash)
	assert.Equal(t, int64(0), evaluation.Entry.EntryID)
	assert.Equal(t, uint8(4), evaluation.Anchor.ControlCount)

	// The verdict reached the stream and the chain.
	require.Len(t, publisher.events, 1)
	assert.Equal(t, evaluation.EvaluationID, publisher.events[0].EvaluationID)

	report, err := auditLedger.VerifyChain(ctx)
	require.NoError(t, err)
	assert.True(t, report.Valid)

	latest, ok := svc.Latest()
	require.True(t, ok)
	assert.Equal(t, evaluation.Result, latest)
}

func TestServiceGatherFailureAbortsCycle(t *testing.T) {
	auditLedger, err := ledger.New(context.Background(), ledger.NewInMemoryStore(), nil)
	require.NoError(t, err)

	svc, err := NewService(
		NewEngine(),
		stubGatherer{err: dErrors.New(dErrors.CodeUnavailable, "reserve source unavailable")},
		auditLedger, domain.BaselinePolicy(), nil, nil,
	)
	require.NoError(t, err)

	_, err = svc.RunCycle(context.Background())
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnavailable, dErrors.CodeOf(err))
	assert.Empty(t, svc.History())
}

func TestServiceFailsClosedWhenAuditAppendFails(t *testing.T) {
	auditLedger, err := ledger.New(context.Background(), failingStore{}, nil)
	require.NoError(t, err)

	publisher := &recordingPublisher{}
	svc, err := NewService(
		NewEngine(), stubGatherer{snapshot: healthySnapshot()}, auditLedger,
		domain.BaselinePolicy(), nil, nil, WithPublisher(publisher),
	)
	require.NoError(t, err)

	_, err = svc.RunCycle(context.Background())
	require.Error(t, err)
	// An unauditable verdict must never fan out.
	assert.Empty(t, publisher.events)
}

func TestServicePublishFailureIsNonFatal(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("broker down")}
	svc, _ := newTestService(t, WithPublisher(publisher))

	evaluation, err := svc.RunCycle(requestcontext.WithTime(context.Background(), testNow))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusGreen, evaluation.Result.OverallStatus)
}

func TestServiceAdvisoryDegradationIsNonFatal(t *testing.T) {
	svc, _ := newTestService(t) // no advisor configured

	evaluation, err := svc.RunCycle(context.Background())
	require.NoError(t, err)
	assert.True(t, evaluation.Degraded)
	assert.Contains(t, evaluation.Explanation, "[low-confidence fallback]")
}

func TestServicePolicyHotSwap(t *testing.T) {
	svc, _ := newTestService(t)

	ctx := requestcontext.WithTime(context.Background(), testNow)
	first, err := svc.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", first.Result.PolicyVersion)

	require.NoError(t, svc.SetPolicy(domain.StrictPolicy()))
	second, err := svc.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", second.Result.PolicyVersion)

	// The swap never rewrites history.
	history := svc.History()
	require.Len(t, history, 2)
	assert.Equal(t, "1.0.0", history[0].PolicyVersion)
	assert.Equal(t, first.Result.EvidenceHash, history[0].EvidenceHash)
}

func TestServiceRejectsInvalidPolicySwap(t *testing.T) {
	svc, _ := newTestService(t)

	bad := domain.BaselinePolicy()
	bad.Version = "not-semver"
	err := svc.SetPolicy(bad)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err))
	assert.Equal(t, "1.0.0", svc.Policy().Version)
}
