package domain

// RiskLevel classifies a reserve holding.
type RiskLevel string

const (
	RiskSafe       RiskLevel = "SAFE"
	RiskRisky      RiskLevel = "RISKY"
	RiskRestricted RiskLevel = "RESTRICTED"
)

// Valid reports whether r is a known risk level.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskSafe, RiskRisky, RiskRestricted:
		return true
	}
	return false
}

// Asset is one holding inside a reserve snapshot. Percentage is the asset's
// share of the total reserve value, 0..100.
type Asset struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Symbol     string    `json:"symbol"`
	Value      float64   `json:"value"`
	RiskLevel  RiskLevel `json:"riskLevel"`
	Percentage float64   `json:"percentage"`
}
