// Package analyses turns the vision model's markdown answer into a structured
// Analysis. Parsing never fails: unrecognised text yields default fields.
package analyses

import (
	"fmt"

	"hairalyzer-backend/internal/shared/telemetry"
)

const fallbackMetric = 50

// Parse extracts every known section from text and scores the metrics. It is a
// pure function of its inputs.
func Parse(text string, user UserData) (out Analysis) {
	defer func() {
		if rec := recover(); rec != nil {
			telemetry.Warn("analysis.parse_fallback", map[string]any{
				"err":    fmt.Errorf("%w: %v", errSectionPanic, rec),
				"length": len(text),
			})
			out = fallback(text)
		}
	}()
	return parseWith(text, user, sectionRules)
}

func parseWith(text string, user UserData, rules []sectionRule) Analysis {
	a := Analysis{RawAnalysis: text}
	headers := findHeaders(text, rules)
	for i, r := range rules {
		body, ok := sectionBody(text, headers, i)
		if !ok {
			continue
		}
		r.apply(body, &a)
	}
	a.Metrics = scoreMetrics(a.DetailedAnalysis, user)
	return a.Normalize()
}

// fallback is the minimal analysis returned when extraction itself fails.
func fallback(text string) Analysis {
	return Analysis{
		RawAnalysis:      text,
		DetailedAnalysis: text,
		Metrics: Metrics{
			Moisture:    fallbackMetric,
			Strength:    fallbackMetric,
			Elasticity:  fallbackMetric,
			ScalpHealth: fallbackMetric,
		},
	}.Normalize()
}
