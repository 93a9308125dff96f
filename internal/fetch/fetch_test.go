package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "attestra/pkg/domain-errors"

	"attestra/internal/domain"
)

var testNow = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

type stubReserveSource struct {
	data  domain.ReserveData
	err   error
	delay time.Duration
}

func (s stubReserveSource) FetchReserves(ctx context.Context) (domain.ReserveData, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return domain.ReserveData{}, ctx.Err()
		}
	}
	return s.data, s.err
}

type stubLiabilitySource struct {
	data domain.LiabilityData
	err  error
}

func (s stubLiabilitySource) FetchLiabilities(context.Context) (domain.LiabilityData, error) {
	return s.data, s.err
}

func TestGathererFetchesBothSnapshots(t *testing.T) {
	reserves := domain.ReserveData{TotalValue: 105, AttestationTimestamp: testNow, Source: "attestor"}
	liabilities := domain.LiabilityData{TotalValue: 100, Timestamp: testNow, Source: "issuer"}

	g := NewGatherer(stubReserveSource{data: reserves}, stubLiabilitySource{data: liabilities}, nil)

	snapshot, err := g.Gather(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reserves, snapshot.Reserves)
	assert.Equal(t, liabilities, snapshot.Liabilities)
	assert.False(t, snapshot.FetchedAt.IsZero())
}

func TestGathererSourceFailureIsUnavailable(t *testing.T) {
	g := NewGatherer(
		stubReserveSource{err: errors.New("connection refused")},
		stubLiabilitySource{data: domain.LiabilityData{TotalValue: 100}},
		nil,
	)

	_, err := g.Gather(context.Background())
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnavailable, dErrors.CodeOf(err))
}

func TestGathererTimeout(t *testing.T) {
	g := NewGatherer(
		stubReserveSource{delay: 5 * time.Second},
		stubLiabilitySource{data: domain.LiabilityData{TotalValue: 100}},
		nil,
		WithTimeout(50*time.Millisecond),
	)

	start := time.Now()
	_, err := g.Gather(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second, "gather must respect its timeout")
}

func TestGathererUnconfiguredSources(t *testing.T) {
	g := NewGatherer(UnconfiguredSource{}, UnconfiguredSource{}, nil)

	_, err := g.Gather(context.Background())
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnavailable, dErrors.CodeOf(err))
}

func TestHTTPSource(t *testing.T) {
	reserves := domain.ReserveData{
		TotalValue: 105,
		Assets: []domain.Asset{
			{ID: "a1", Name: "US Treasuries", Symbol: "UST", Value: 105, RiskLevel: domain.RiskSafe, Percentage: 100},
		},
		AttestationTimestamp: testNow,
		AttestationHash:      "f0a1",
		Source:               "attestor",
	}
	liabilities := domain.LiabilityData{TotalValue: 100, CirculatingSupply: 100, Timestamp: testNow, Source: "issuer"}

	mux := http.NewServeMux()
	mux.HandleFunc("/reserves", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		writeJSON(t, w, reserves)
	})
	mux.HandleFunc("/liabilities", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, liabilities)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	source := NewHTTPSource(srv.Client(), srv.URL+"/reserves", srv.URL+"/liabilities")

	gotReserves, err := source.FetchReserves(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reserves.TotalValue, gotReserves.TotalValue)
	require.Len(t, gotReserves.Assets, 1)
	assert.Equal(t, domain.RiskSafe, gotReserves.Assets[0].RiskLevel)

	gotLiabilities, err := source.FetchLiabilities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, liabilities.TotalValue, gotLiabilities.TotalValue)
}

func TestHTTPSourceNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	source := NewHTTPSource(srv.Client(), srv.URL, srv.URL)

	_, err := source.FetchReserves(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}
