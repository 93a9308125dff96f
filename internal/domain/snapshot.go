package domain

import "time"

// ReserveData is an immutable reserve snapshot supplied once per evaluation
// cycle by the fetch layer. The core reads it and discards it; snapshots are
// never retained past the evaluation that consumed them.
type ReserveData struct {
	TotalValue           float64   `json:"totalValue"`
	Assets               []Asset   `json:"assets"`
	AttestationTimestamp time.Time `json:"attestationTimestamp"`
	AttestationHash      string    `json:"attestationHash"`
	Source               string    `json:"source"`
}

// LiabilityData is the liability side of an evaluation cycle.
type LiabilityData struct {
	TotalValue        float64   `json:"totalValue"`
	CirculatingSupply float64   `json:"circulatingSupply"`
	Timestamp         time.Time `json:"timestamp"`
	Source            string    `json:"source"`
}
