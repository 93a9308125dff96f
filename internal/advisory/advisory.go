// Package advisory turns compliance results into human-readable explanation
// text. The adapter is strictly downstream: its output never feeds back into
// statuses, controls, or the evidence hash, and any fault degrades to a fixed
// fallback rather than blocking the already-computed result.
package advisory

import (
	"context"
	"fmt"
	"strings"

	"attestra/internal/domain"
)

// FallbackExplanation is returned whenever the explainer fails. The label is
// deliberate: consumers must be able to tell a degraded explanation from a
// real one.
const FallbackExplanation = "[low-confidence fallback] An explanation could not be generated for this evaluation. " +
	"The compliance verdict itself is unaffected; consult the per-control statuses directly."

// Explainer produces free-text commentary for a result.
type Explainer interface {
	Explain(ctx context.Context, result domain.ComplianceResult) (string, error)
}

// TemplateExplainer renders deterministic per-control commentary. Each
// control type has its own template selected by an exhaustive switch, so a
// new control type fails compilation review here instead of vanishing into a
// missed map lookup.
type TemplateExplainer struct{}

func NewTemplateExplainer() *TemplateExplainer {
	return &TemplateExplainer{}
}

func (e *TemplateExplainer) Explain(_ context.Context, result domain.ComplianceResult) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Overall verdict: %s under policy %s.\n", result.OverallStatus, result.PolicyVersion)

	for _, c := range result.Controls {
		var line string
		switch c.ControlType {
		case domain.ControlReserveRatio:
			line = describe("Reserve backing", c)
		case domain.ControlProofFreshness:
			line = describe("Attestation freshness", c)
		case domain.ControlAssetQuality:
			line = describe("Asset quality", c)
		case domain.ControlConcentration:
			line = describe("Portfolio concentration", c)
		default:
			return "", fmt.Errorf("no template for control type %q", c.ControlType)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func describe(label string, c domain.ControlResult) string {
	switch c.Status {
	case domain.StatusGreen:
		return fmt.Sprintf("%s passed: %s", label, c.Message)
	case domain.StatusYellow:
		return fmt.Sprintf("%s needs attention: %s", label, c.Message)
	default:
		return fmt.Sprintf("%s failed: %s", label, c.Message)
	}
}

// Guard wraps an explainer so that errors and panics degrade to the fixed
// fallback. The bool return reports whether the fallback was used.
type Guard struct {
	inner Explainer
}

func NewGuard(inner Explainer) *Guard {
	return &Guard{inner: inner}
}

// Explain never fails; it returns the fallback text and true when the inner
// explainer does.
func (g *Guard) Explain(ctx context.Context, result domain.ComplianceResult) (text string, degraded bool) {
	defer func() {
		if r := recover(); r != nil {
			text = FallbackExplanation
			degraded = true
		}
	}()

	if g.inner == nil {
		return FallbackExplanation, true
	}
	out, err := g.inner.Explain(ctx, result)
	if err != nil || out == "" {
		return FallbackExplanation, true
	}
	return out, false
}
