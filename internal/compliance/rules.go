// Package compliance implements the decision core: the four rule evaluators,
// the worst-of aggregator, the evidence commitment, and the engine that
// orchestrates them into an immutable ComplianceResult.
package compliance

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"attestra/internal/domain"
)

// ratioPrecision is the number of decimal places the reserve ratio is rounded
// to before tiering. Without it, float noise like 1.0000000000000002 would
// flip a boundary verdict that should read as exactly 1.00.
const ratioPrecision = 10

// EvaluateReserveRatio tiers reserves/liabilities. Zero liabilities is a
// documented policy choice: a zero-liability issuer is trivially
// over-collateralized, so the result is GREEN with an infinite ratio.
func EvaluateReserveRatio(reserves domain.ReserveData, liabilities domain.LiabilityData, t domain.RatioThresholds, now time.Time) domain.ControlResult {
	result := domain.ControlResult{
		ControlType: domain.ControlReserveRatio,
		Timestamp:   now,
	}

	if liabilities.TotalValue == 0 {
		result.Status = domain.StatusGreen
		result.Value = math.Inf(1)
		result.Threshold = t.Green
		result.Message = "no outstanding liabilities; issuer is trivially over-collateralized"
		return result
	}

	ratio := decimal.NewFromFloat(reserves.TotalValue).
		DivRound(decimal.NewFromFloat(liabilities.TotalValue), ratioPrecision)
	green := decimal.NewFromFloat(t.Green)
	yellow := decimal.NewFromFloat(t.Yellow)

	result.Value, _ = ratio.Float64()
	switch {
	case ratio.GreaterThanOrEqual(green):
		result.Status = domain.StatusGreen
		result.Threshold = t.Green
		result.Message = fmt.Sprintf("reserve ratio %s meets the green threshold %.4f", ratio, t.Green)
	case ratio.GreaterThanOrEqual(yellow):
		result.Status = domain.StatusYellow
		result.Threshold = t.Yellow
		result.Message = fmt.Sprintf("reserve ratio %s is below the green threshold %.4f", ratio, t.Green)
	default:
		result.Status = domain.StatusRed
		result.Threshold = t.Yellow
		result.Message = fmt.Sprintf("reserve ratio %s is below the yellow threshold %.4f", ratio, t.Yellow)
	}
	return result
}

// EvaluateProofFreshness tiers the attestation age against the policy
// ceilings. Future-dated attestations clamp to zero age instead of going
// negative; validating the timestamp's authenticity is not this rule's job.
func EvaluateProofFreshness(reserves domain.ReserveData, t domain.FreshnessThresholds, now time.Time) domain.ControlResult {
	ageHours := now.Sub(reserves.AttestationTimestamp).Hours()
	if ageHours < 0 {
		ageHours = 0
	}

	result := domain.ControlResult{
		ControlType: domain.ControlProofFreshness,
		Value:       ageHours,
		Timestamp:   now,
	}

	switch {
	case ageHours <= t.GreenMaxAgeHours:
		result.Status = domain.StatusGreen
		result.Threshold = t.GreenMaxAgeHours
		result.Message = fmt.Sprintf("attestation is %.2fh old, within the %.0fh green ceiling", ageHours, t.GreenMaxAgeHours)
	case ageHours <= t.YellowMaxAgeHours:
		result.Status = domain.StatusYellow
		result.Threshold = t.YellowMaxAgeHours
		result.Message = fmt.Sprintf("attestation is %.2fh old, past the %.0fh green ceiling", ageHours, t.GreenMaxAgeHours)
	default:
		result.Status = domain.StatusRed
		result.Threshold = t.YellowMaxAgeHours
		result.Message = fmt.Sprintf("attestation is %.2fh old, past the %.0fh yellow ceiling", ageHours, t.YellowMaxAgeHours)
	}
	return result
}

// EvaluateAssetQuality scans holdings for categorically restricted risk
// levels. A single restricted holding is a structural violation: RED, with no
// intermediate tier. When a risky-percentage cap is configured, the combined
// RISKY share is additionally held under it. Messages carry counts and
// percentages only, never asset names or symbols.
func EvaluateAssetQuality(reserves domain.ReserveData, t domain.QualityThresholds, now time.Time) domain.ControlResult {
	result := domain.ControlResult{
		ControlType: domain.ControlAssetQuality,
		Timestamp:   now,
	}

	var restrictedCount int
	var riskyPct, safePct float64
	for _, a := range reserves.Assets {
		switch {
		case t.Restricted(a.RiskLevel):
			restrictedCount++
		case a.RiskLevel == domain.RiskRisky:
			riskyPct += a.Percentage
		default:
			safePct += a.Percentage
		}
	}

	if restrictedCount > 0 {
		result.Status = domain.StatusRed
		result.Message = fmt.Sprintf("%d restricted holding(s) present in the reserve", restrictedCount)
		return result
	}

	if t.RiskyPercentageCap != nil && riskyPct > *t.RiskyPercentageCap {
		result.Status = domain.StatusRed
		result.Value = riskyPct
		result.Threshold = *t.RiskyPercentageCap
		result.Message = fmt.Sprintf("risky holdings at %.2f%% exceed the %.2f%% cap", riskyPct, *t.RiskyPercentageCap)
		return result
	}

	result.Status = domain.StatusGreen
	result.Value = safePct
	result.Message = fmt.Sprintf("no restricted holdings; %.2f%% of the reserve is in safe assets", safePct)
	return result
}

// EvaluateConcentration tiers the largest single-asset share. An empty asset
// list carries no diversification information and is treated conservatively
// as RED.
func EvaluateConcentration(reserves domain.ReserveData, t domain.ConcentrationThresholds, now time.Time) domain.ControlResult {
	result := domain.ControlResult{
		ControlType: domain.ControlConcentration,
		Timestamp:   now,
	}

	if len(reserves.Assets) == 0 {
		result.Status = domain.StatusRed
		result.Value = 0
		result.Threshold = t.YellowMaxPercentage
		result.Message = "reserve snapshot contains no assets; concentration cannot be assessed"
		return result
	}

	var maxPct float64
	for _, a := range reserves.Assets {
		if a.Percentage > maxPct {
			maxPct = a.Percentage
		}
	}

	result.Value = maxPct
	switch {
	case maxPct <= t.GreenMaxPercentage:
		result.Status = domain.StatusGreen
		result.Threshold = t.GreenMaxPercentage
		result.Message = fmt.Sprintf("largest holding at %.2f%% is within the %.2f%% green ceiling", maxPct, t.GreenMaxPercentage)
	case maxPct <= t.YellowMaxPercentage:
		result.Status = domain.StatusYellow
		result.Threshold = t.YellowMaxPercentage
		result.Message = fmt.Sprintf("largest holding at %.2f%% is past the %.2f%% green ceiling", maxPct, t.GreenMaxPercentage)
	default:
		result.Status = domain.StatusRed
		result.Threshold = t.YellowMaxPercentage
		result.Message = fmt.Sprintf("largest holding at %.2f%% is past the %.2f%% yellow ceiling", maxPct, t.YellowMaxPercentage)
	}
	return result
}
