package compliance

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"attestra/internal/domain"
)

var testNow = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

func reservesWorth(total float64, assets ...domain.Asset) domain.ReserveData {
	return domain.ReserveData{
		TotalValue:           total,
		Assets:               assets,
		AttestationTimestamp: testNow.Add(-2 * time.Hour),
		AttestationHash:      "ab12",
		Source:               "test-attestor",
	}
}

func liabilitiesWorth(total float64) domain.LiabilityData {
	return domain.LiabilityData{
		TotalValue:        total,
		CirculatingSupply: total,
		Timestamp:         testNow,
		Source:            "test-issuer",
	}
}

func TestEvaluateReserveRatio(t *testing.T) {
	thresholds := domain.RatioThresholds{Green: 1.02, Yellow: 1.00}

	tests := []struct {
		name        string
		reserves    float64
		liabilities float64
		want        domain.Status
	}{
		{"at green threshold is green", 102, 100, domain.StatusGreen},
		{"above green threshold is green", 105, 100, domain.StatusGreen},
		{"at yellow threshold is yellow", 100, 100, domain.StatusYellow},
		{"between thresholds is yellow", 101, 100, domain.StatusYellow},
		{"just under yellow threshold is red", 99.9999, 100, domain.StatusRed},
		{"deeply under-collateralized is red", 50, 100, domain.StatusRed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EvaluateReserveRatio(reservesWorth(tt.reserves), liabilitiesWorth(tt.liabilities), thresholds, testNow)
			assert.Equal(t, tt.want, result.Status)
			assert.Equal(t, domain.ControlReserveRatio, result.ControlType)
		})
	}

	t.Run("float noise at the boundary reads as exactly 1.00", func(t *testing.T) {
		// 0.1+0.2 over 0.3 divides to 1.0000000000000001…; after rounding to
		// ten decimal places the ratio must sit exactly on the yellow
		// threshold, not below the green one by an epsilon.
		result := EvaluateReserveRatio(reservesWorth(0.1+0.2), liabilitiesWorth(0.3), thresholds, testNow)
		assert.Equal(t, domain.StatusYellow, result.Status)
		assert.Equal(t, 1.0, result.Value)
	})

	t.Run("zero liabilities is green with infinite ratio", func(t *testing.T) {
		result := EvaluateReserveRatio(reservesWorth(100), liabilitiesWorth(0), thresholds, testNow)
		assert.Equal(t, domain.StatusGreen, result.Status)
		assert.True(t, math.IsInf(result.Value, 1))
	})
}

func TestEvaluateProofFreshness(t *testing.T) {
	thresholds := domain.FreshnessThresholds{GreenMaxAgeHours: 12, YellowMaxAgeHours: 24}

	attestedAt := func(age time.Duration) domain.ReserveData {
		r := reservesWorth(100)
		r.AttestationTimestamp = testNow.Add(-age)
		return r
	}

	tests := []struct {
		name string
		age  time.Duration
		want domain.Status
	}{
		{"fresh attestation is green", 2 * time.Hour, domain.StatusGreen},
		{"exactly at green ceiling is green", 12 * time.Hour, domain.StatusGreen},
		{"past green ceiling is yellow", 13 * time.Hour, domain.StatusYellow},
		{"exactly at yellow ceiling is yellow", 24 * time.Hour, domain.StatusYellow},
		{"past yellow ceiling is red", 24*time.Hour + time.Minute, domain.StatusRed},
		{"very stale is red", 30 * time.Hour, domain.StatusRed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EvaluateProofFreshness(attestedAt(tt.age), thresholds, testNow)
			assert.Equal(t, tt.want, result.Status)
			assert.Equal(t, domain.ControlProofFreshness, result.ControlType)
		})
	}

	t.Run("future attestation clamps to zero age", func(t *testing.T) {
		result := EvaluateProofFreshness(attestedAt(-3*time.Hour), thresholds, testNow)
		assert.Equal(t, domain.StatusGreen, result.Status)
		assert.Equal(t, 0.0, result.Value)
	})
}

func TestEvaluateAssetQuality(t *testing.T) {
	binary := domain.QualityThresholds{RestrictedRiskLevels: []domain.RiskLevel{domain.RiskRestricted}}

	safe := domain.Asset{ID: "a1", Name: "US Treasuries", Symbol: "UST", Value: 85, RiskLevel: domain.RiskSafe, Percentage: 85}
	risky := domain.Asset{ID: "a2", Name: "Corporate Bonds", Symbol: "CORP", Value: 15, RiskLevel: domain.RiskRisky, Percentage: 15}
	restricted := domain.Asset{ID: "a3", Name: "Unregistered Token", Symbol: "XXX", Value: 1, RiskLevel: domain.RiskRestricted, Percentage: 1}

	t.Run("no restricted holdings is green", func(t *testing.T) {
		result := EvaluateAssetQuality(reservesWorth(100, safe, risky), binary, testNow)
		assert.Equal(t, domain.StatusGreen, result.Status)
		assert.Equal(t, 85.0, result.Value)
	})

	t.Run("one restricted holding is red with no intermediate tier", func(t *testing.T) {
		result := EvaluateAssetQuality(reservesWorth(100, safe, restricted), binary, testNow)
		assert.Equal(t, domain.StatusRed, result.Status)
	})

	t.Run("restricted verdict names no assets", func(t *testing.T) {
		result := EvaluateAssetQuality(reservesWorth(100, safe, restricted), binary, testNow)
		assert.NotContains(t, result.Message, restricted.Name)
		assert.NotContains(t, result.Message, restricted.Symbol)
	})

	t.Run("risky percentage cap forces red above the cap", func(t *testing.T) {
		cap := 30.0
		capped := domain.QualityThresholds{
			RestrictedRiskLevels: []domain.RiskLevel{domain.RiskRestricted},
			RiskyPercentageCap:   &cap,
		}
		heavyRisky := domain.Asset{ID: "a4", RiskLevel: domain.RiskRisky, Percentage: 31}

		result := EvaluateAssetQuality(reservesWorth(100, safe, heavyRisky), capped, testNow)
		assert.Equal(t, domain.StatusRed, result.Status)

		atCap := domain.Asset{ID: "a5", RiskLevel: domain.RiskRisky, Percentage: 30}
		result = EvaluateAssetQuality(reservesWorth(100, safe, atCap), capped, testNow)
		assert.Equal(t, domain.StatusGreen, result.Status)
	})
}

func TestEvaluateConcentration(t *testing.T) {
	tiered := domain.ConcentrationThresholds{GreenMaxPercentage: 60, YellowMaxPercentage: 75}

	holding := func(pct float64) domain.Asset {
		return domain.Asset{ID: "a1", RiskLevel: domain.RiskSafe, Percentage: pct, Value: pct}
	}

	tests := []struct {
		name   string
		maxPct float64
		want   domain.Status
	}{
		{"diversified portfolio is green", 50, domain.StatusGreen},
		{"exactly at green ceiling is green", 60, domain.StatusGreen},
		{"past green ceiling is yellow", 61, domain.StatusYellow},
		{"exactly at yellow ceiling is yellow", 75, domain.StatusYellow},
		{"just past yellow ceiling is red", 75.01, domain.StatusRed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reserves := reservesWorth(100, holding(tt.maxPct), holding(100-tt.maxPct))
			result := EvaluateConcentration(reserves, tiered, testNow)
			assert.Equal(t, tt.want, result.Status)
			assert.Equal(t, tt.maxPct, result.Value)
		})
	}

	t.Run("empty asset list is conservatively red", func(t *testing.T) {
		result := EvaluateConcentration(reservesWorth(0), tiered, testNow)
		assert.Equal(t, domain.StatusRed, result.Status)
		assert.Equal(t, 0.0, result.Value)
	})
}
