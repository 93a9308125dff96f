package compliance

import "attestra/internal/domain"

// Aggregate reduces control results to one overall status via worst-of
// severity. The reduction is total and order-independent: with all four
// controls present it always yields exactly one of the three statuses.
func Aggregate(controls []domain.ControlResult) domain.Status {
	overall := domain.StatusGreen
	for _, c := range controls {
		overall = domain.WorseOf(overall, c.Status)
	}
	return overall
}
