package analyses

import (
	"regexp"
	"strings"
)

const (
	baseMoisture    = 50
	baseStrength    = 60
	baseElasticity  = 60
	baseScalpHealth = 70

	minMetric = 10
	maxMetric = 100
)

type metric int

const (
	moisture metric = iota
	strength
	elasticity
	scalpHealth
)

// tier is a set of phrases sharing one delta.
type tier struct {
	delta   int
	phrases []string
	re      *regexp.Regexp
}

// family is an ordered list of tiers for one metric; only the first tier with
// a matching phrase applies, so "very dry" does not also count as "dry".
type family struct {
	metric metric
	tiers  []tier
}

func fam(m metric, tiers ...tier) family {
	for i := range tiers {
		quoted := make([]string, len(tiers[i].phrases))
		for j, p := range tiers[i].phrases {
			quoted[j] = regexp.QuoteMeta(p)
		}
		tiers[i].re = regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	return family{metric: m, tiers: tiers}
}

func tierOf(delta int, phrases ...string) tier { return tier{delta: delta, phrases: phrases} }

// descriptionFamilies score the model's description text.
var descriptionFamilies = []family{
	fam(moisture,
		tierOf(-30, "very dry", "extremely dry", "severely dry", "excessively dry"),
		tierOf(-20, "dry", "dryness", "dehydrated", "parched")),
	fam(moisture, tierOf(-10, "frizz", "frizzy", "frizziness")),
	fam(moisture, tierOf(+30, "well moisturized", "well-moisturized", "well hydrated", "well-hydrated")),

	fam(strength, tierOf(-20, "brittle")),
	fam(strength, tierOf(-15, "breakage", "breaking", "broken")),
	fam(strength, tierOf(-10, "split ends", "split end")),
	fam(strength,
		tierOf(-25, "severely damaged", "heavily damaged"),
		tierOf(-15, "damaged", "damage")),
	fam(strength, tierOf(-10, "thinning", "hair loss", "shedding")),
	fam(strength, tierOf(+20, "strong", "resilient")),
	fam(strength, tierOf(+10, "healthy")),

	fam(elasticity, tierOf(-15, "brittle")),
	fam(elasticity, tierOf(-20, "overprocessed", "over-processed", "over processed")),
	fam(elasticity, tierOf(-10, "limp", "lacks elasticity", "low elasticity", "poor elasticity")),
	fam(elasticity, tierOf(+15, "good elasticity", "elastic", "bouncy", "springy")),

	fam(scalpHealth, tierOf(-20, "dandruff", "seborrheic")),
	fam(scalpHealth, tierOf(-15, "flaky", "flaking", "flakes")),
	fam(scalpHealth, tierOf(-10, "itchy", "itching", "itchiness")),
	fam(scalpHealth, tierOf(-10, "oily", "greasy")),
	fam(scalpHealth, tierOf(-15, "irritation", "irritated", "redness", "inflamed", "inflammation")),
	fam(scalpHealth, tierOf(+15, "healthy scalp", "clean scalp")),
}

// concernFamilies score the user's stated primary concern.
var concernFamilies = []family{
	fam(moisture, tierOf(-10, "dry", "dryness", "frizz", "frizzy")),
	fam(strength, tierOf(-10, "breakage", "breaking", "brittle", "split ends", "thinning", "hair loss", "damage", "damaged")),
	fam(scalpHealth, tierOf(-10, "dandruff", "itchy", "flaky", "oily scalp", "scalp")),
}

// washFamilies score the reported wash frequency.
var washFamilies = []family{
	fam(moisture, tierOf(-10, "daily", "every day", "everyday", "twice a day", "twice daily")),
}

const dyeDelta = -10

func baselineMetrics() Metrics {
	return Metrics{
		Moisture:    baseMoisture,
		Strength:    baseStrength,
		Elasticity:  baseElasticity,
		ScalpHealth: baseScalpHealth,
	}
}

// scoreMetrics starts from the baselines, applies description and user-data
// deltas, then clamps every score to [10,100].
func scoreMetrics(description string, user UserData) Metrics {
	m := baselineMetrics()
	applyFamilies(&m, strings.ToLower(description), descriptionFamilies)
	applyFamilies(&m, strings.ToLower(user.PrimaryConcern), concernFamilies)
	applyFamilies(&m, strings.ToLower(user.WashFrequency), washFamilies)
	if isDyed(user.DyeStatus) {
		m.Moisture += dyeDelta
		m.Strength += dyeDelta
		m.Elasticity += dyeDelta
	}
	return clampMetrics(m)
}

func applyFamilies(m *Metrics, text string, families []family) {
	if strings.TrimSpace(text) == "" {
		return
	}
	for _, f := range families {
		for _, tr := range f.tiers {
			if tr.re.MatchString(text) {
				m.add(f.metric, tr.delta)
				break
			}
		}
	}
}

func (m *Metrics) add(which metric, delta int) {
	switch which {
	case moisture:
		m.Moisture += delta
	case strength:
		m.Strength += delta
	case elasticity:
		m.Elasticity += delta
	case scalpHealth:
		m.ScalpHealth += delta
	}
}

func clampMetrics(m Metrics) Metrics {
	m.Moisture = clamp(m.Moisture)
	m.Strength = clamp(m.Strength)
	m.Elasticity = clamp(m.Elasticity)
	m.ScalpHealth = clamp(m.ScalpHealth)
	return m
}

func clamp(v int) int {
	if v < minMetric {
		return minMetric
	}
	if v > maxMetric {
		return maxMetric
	}
	return v
}

var dyedRe = regexp.MustCompile(`\b(?:yes|y|true|dyed|dye|colou?red|bleached|bleach|highlights?)\b`)
var notDyedRe = regexp.MustCompile(`\b(?:no|never|not|natural)\b`)

func isDyed(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	if s == "" || notDyedRe.MatchString(s) {
		return false
	}
	return dyedRe.MatchString(s)
}
