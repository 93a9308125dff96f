package domain

import "time"

// ControlType is the closed set of compliance controls. Switches over it are
// written exhaustively so adding a control is a compile-time-visible change,
// not a missed map key.
type ControlType string

const (
	ControlReserveRatio   ControlType = "RESERVE_RATIO"
	ControlProofFreshness ControlType = "PROOF_FRESHNESS"
	ControlAssetQuality   ControlType = "ASSET_QUALITY"
	ControlConcentration  ControlType = "CONCENTRATION"
)

// ControlOrder is the fixed evaluation and serialization order. The evidence
// commitment is computed over this sequence, so it must never be reordered.
var ControlOrder = [4]ControlType{
	ControlReserveRatio,
	ControlProofFreshness,
	ControlAssetQuality,
	ControlConcentration,
}

// ControlResult is the outcome of one rule evaluation.
//
// Value and Threshold are derived figures (a ratio, an age, a percentage),
// never raw reserve or liability totals.
type ControlResult struct {
	ControlType ControlType `json:"controlType"`
	Status      Status      `json:"status"`
	Value       float64     `json:"value,omitempty"`
	Threshold   float64     `json:"threshold,omitempty"`
	Message     string      `json:"message"`
	Timestamp   time.Time   `json:"timestamp"`
}

// ControlSummary is the non-sensitive projection of a ControlResult recorded
// in audit entries: type and status only.
type ControlSummary struct {
	Type   ControlType `json:"type"`
	Status Status      `json:"status"`
}
