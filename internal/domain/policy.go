package domain

import "regexp"

// PolicyVersionPattern constrains policy versions to semver-shaped strings.
var PolicyVersionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// RatioThresholds are the reserve-ratio tier cut-offs. A ratio at or above
// Green is GREEN; at or above Yellow but below Green is YELLOW; below Yellow
// is RED. Boundaries are inclusive on the lower bound of each tier.
type RatioThresholds struct {
	Green  float64 `json:"green" koanf:"green"`
	Yellow float64 `json:"yellow" koanf:"yellow"`
}

// FreshnessThresholds are the attestation max-age ceilings in hours. An age at
// or below GreenMaxAgeHours is GREEN; at or below YellowMaxAgeHours is YELLOW;
// above it is RED.
type FreshnessThresholds struct {
	GreenMaxAgeHours  float64 `json:"greenMaxAgeHours" koanf:"green_max_age_hours"`
	YellowMaxAgeHours float64 `json:"yellowMaxAgeHours" koanf:"yellow_max_age_hours"`
}

// QualityThresholds configure the asset-quality rule. RestrictedRiskLevels is
// the categorical kill list: one matching asset forces RED with no
// intermediate tier. RiskyPercentageCap, when non-nil, additionally forces RED
// once the combined RISKY share exceeds the cap.
type QualityThresholds struct {
	RestrictedRiskLevels []RiskLevel `json:"restrictedRiskLevels" koanf:"restricted_risk_levels"`
	RiskyPercentageCap   *float64    `json:"riskyPercentageCap,omitempty" koanf:"risky_percentage_cap"`
}

// Restricted reports whether the risk level is on the kill list.
func (q QualityThresholds) Restricted(level RiskLevel) bool {
	for _, r := range q.RestrictedRiskLevels {
		if r == level {
			return true
		}
	}
	return false
}

// ConcentrationThresholds are the single-asset percentage ceilings. A maximum
// share at or below GreenMaxPercentage is GREEN; at or below
// YellowMaxPercentage is YELLOW; above it is RED.
type ConcentrationThresholds struct {
	GreenMaxPercentage  float64 `json:"greenMaxPercentage" koanf:"green_max_percentage"`
	YellowMaxPercentage float64 `json:"yellowMaxPercentage" koanf:"yellow_max_percentage"`
}

// PolicyConfig bundles the per-rule thresholds under a version string. It is
// passed explicitly into every evaluation; there is no shared mutable policy
// singleton. Swapping a policy affects only subsequent evaluations.
type PolicyConfig struct {
	Version       string                  `json:"version" koanf:"version"`
	Ratio         RatioThresholds         `json:"ratio" koanf:"ratio"`
	Freshness     FreshnessThresholds     `json:"freshness" koanf:"freshness"`
	Quality       QualityThresholds       `json:"quality" koanf:"quality"`
	Concentration ConcentrationThresholds `json:"concentration" koanf:"concentration"`
}

// The upstream policy sources disagree on three points: freshness ceilings
// (6h vs 12h), asset-quality semantics (binary restricted list vs an added
// 30% risky cap), and concentration tiers (a flat 75% green cut-off with a
// wide yellow band vs a tiered 60/75 scheme). Rather than guessing which is
// correct, both appear here as named profiles and a deployer chooses one (or
// overrides individual thresholds) in configuration.

// BaselinePolicy is the permissive profile: 12h/24h freshness, binary
// restricted-list asset quality, flat 75% concentration cut-off with a yellow
// band up to 90%.
func BaselinePolicy() PolicyConfig {
	return PolicyConfig{
		Version:       "1.0.0",
		Ratio:         RatioThresholds{Green: 1.02, Yellow: 1.00},
		Freshness:     FreshnessThresholds{GreenMaxAgeHours: 12, YellowMaxAgeHours: 24},
		Quality:       QualityThresholds{RestrictedRiskLevels: []RiskLevel{RiskRestricted}},
		Concentration: ConcentrationThresholds{GreenMaxPercentage: 75, YellowMaxPercentage: 90},
	}
}

// StrictPolicy is the conservative profile: 6h/12h freshness, restricted-list
// asset quality plus a 30% risky-percentage cap, tiered 60/75 concentration.
func StrictPolicy() PolicyConfig {
	cap := 30.0
	return PolicyConfig{
		Version:       "2.0.0",
		Ratio:         RatioThresholds{Green: 1.02, Yellow: 1.00},
		Freshness:     FreshnessThresholds{GreenMaxAgeHours: 6, YellowMaxAgeHours: 12},
		Quality:       QualityThresholds{RestrictedRiskLevels: []RiskLevel{RiskRestricted}, RiskyPercentageCap: &cap},
		Concentration: ConcentrationThresholds{GreenMaxPercentage: 60, YellowMaxPercentage: 75},
	}
}
