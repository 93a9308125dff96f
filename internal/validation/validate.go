// Package validation guards the compliance engine's inputs. Evaluation is
// all-or-nothing: any schema violation here aborts the whole cycle before a
// single rule runs.
package validation

import (
	dErrors "attestra/pkg/domain-errors"

	"attestra/internal/domain"
)

// Reserves checks a reserve snapshot against the schema in the data model.
func Reserves(r domain.ReserveData) error {
	if r.TotalValue < 0 {
		return dErrors.New(dErrors.CodeValidation, "reserve totalValue must be non-negative")
	}
	if r.AttestationTimestamp.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "reserve attestationTimestamp is required")
	}
	for i, a := range r.Assets {
		if a.Value < 0 {
			return dErrors.Newf(dErrors.CodeValidation, "asset %d: value must be non-negative", i)
		}
		if a.Percentage < 0 || a.Percentage > 100 {
			return dErrors.Newf(dErrors.CodeValidation, "asset %d: percentage must be within 0..100", i)
		}
		if !a.RiskLevel.Valid() {
			return dErrors.Newf(dErrors.CodeValidation, "asset %d: unknown risk level %q", i, a.RiskLevel)
		}
	}
	return nil
}

// Liabilities checks a liability snapshot.
func Liabilities(l domain.LiabilityData) error {
	if l.TotalValue < 0 {
		return dErrors.New(dErrors.CodeValidation, "liability totalValue must be non-negative")
	}
	if l.CirculatingSupply < 0 {
		return dErrors.New(dErrors.CodeValidation, "circulatingSupply must be non-negative")
	}
	return nil
}

// Policy checks threshold ordering and the version string. Misordered tiers
// would silently invert verdicts, so they are rejected up front.
func Policy(p domain.PolicyConfig) error {
	if !domain.PolicyVersionPattern.MatchString(p.Version) {
		return dErrors.Newf(dErrors.CodeValidation, "policy version %q does not match MAJOR.MINOR.PATCH", p.Version)
	}
	if p.Ratio.Green < p.Ratio.Yellow {
		return dErrors.New(dErrors.CodeValidation, "ratio green threshold must not be below yellow threshold")
	}
	if p.Ratio.Yellow < 0 {
		return dErrors.New(dErrors.CodeValidation, "ratio thresholds must be non-negative")
	}
	if p.Freshness.GreenMaxAgeHours < 0 || p.Freshness.YellowMaxAgeHours < p.Freshness.GreenMaxAgeHours {
		return dErrors.New(dErrors.CodeValidation, "freshness ceilings must satisfy 0 <= green <= yellow")
	}
	if len(p.Quality.RestrictedRiskLevels) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one restricted risk level is required")
	}
	for _, r := range p.Quality.RestrictedRiskLevels {
		if !r.Valid() {
			return dErrors.Newf(dErrors.CodeValidation, "unknown restricted risk level %q", r)
		}
	}
	if cap := p.Quality.RiskyPercentageCap; cap != nil && (*cap < 0 || *cap > 100) {
		return dErrors.New(dErrors.CodeValidation, "risky percentage cap must be within 0..100")
	}
	if p.Concentration.GreenMaxPercentage < 0 || p.Concentration.GreenMaxPercentage > 100 ||
		p.Concentration.YellowMaxPercentage > 100 ||
		p.Concentration.YellowMaxPercentage < p.Concentration.GreenMaxPercentage {
		return dErrors.New(dErrors.CodeValidation, "concentration ceilings must satisfy 0 <= green <= yellow <= 100")
	}
	return nil
}
