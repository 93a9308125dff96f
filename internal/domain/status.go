package domain

// Status is the three-valued verdict used by every control and by the overall
// result.
type Status string

const (
	StatusGreen  Status = "GREEN"
	StatusYellow Status = "YELLOW"
	StatusRed    Status = "RED"
)

// Severity orders statuses for worst-of aggregation: RED > YELLOW > GREEN.
func (s Status) Severity() int {
	switch s {
	case StatusRed:
		return 2
	case StatusYellow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusGreen, StatusYellow, StatusRed:
		return true
	}
	return false
}

// WorseOf returns the more severe of the two statuses.
func WorseOf(a, b Status) Status {
	if b.Severity() > a.Severity() {
		return b
	}
	return a
}
