package analyses

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestParseCompactResponse(t *testing.T) {
	text := "**AI Description**\nDry and brittle, split ends.\n" +
		"**Hair Care Routine**\n1. **Cleansing:** wash twice weekly\n" +
		"**Product Suggestions**\n- Moisturizing shampoo\n" +
		"**AI Bonus Tips**\n1. Trim regularly"

	a := Parse(text, UserData{})

	assert.Equal(t, text, a.RawAnalysis)
	assert.Equal(t, "Dry and brittle, split ends.", a.DetailedAnalysis)
	assert.LessOrEqual(t, a.Metrics.Moisture, 50)
	assert.LessOrEqual(t, a.Metrics.Strength, 60)
	assert.Equal(t, "wash twice weekly", a.HaircareRoutine.Cleansing)
	assert.Empty(t, a.HaircareRoutine.Conditioning)
	assert.Equal(t, []string{"Moisturizing shampoo"}, a.ProductSuggestions)
	assert.Equal(t, []string{"Trim regularly"}, a.AIBonusTips)
}

func TestParseFullResponse(t *testing.T) {
	a := Parse(readFixture(t, "full_response.md"), UserData{})

	assert.Contains(t, a.DetailedAnalysis, "The hair appears very dry")
	assert.NotContains(t, a.DetailedAnalysis, "**")
	assert.Equal(t, "Use a sulfate-free shampoo twice a week.", a.HaircareRoutine.Cleansing)
	assert.Equal(t, "Apply a rich conditioner after every wash.", a.HaircareRoutine.Conditioning)
	assert.Equal(t, "Deep condition weekly with a hydrating mask.", a.HaircareRoutine.Treatments)
	assert.Equal(t, "Air dry and avoid heat tools where possible.", a.HaircareRoutine.Styling)
	assert.Equal(t, []string{
		"Moisturizing shampoo with glycerin",
		"Leave-in conditioner",
		"Argan oil serum",
	}, a.ProductSuggestions)
	assert.Equal(t, []string{"Sleep on a silk pillowcase.", "Trim every 8-10 weeks."}, a.AIBonusTips)

	// very dry (-30) and frizz (-10) from 50.
	assert.Equal(t, 10, a.Metrics.Moisture)
	// split ends (-10) from 60.
	assert.Equal(t, 50, a.Metrics.Strength)
	// dandruff (-20) from 70.
	assert.Equal(t, 50, a.Metrics.ScalpHealth)
	assert.Equal(t, 60, a.Metrics.Elasticity)
}

func TestParseOrdinalRoutineAndPlainHeaders(t *testing.T) {
	a := Parse(readFixture(t, "ordinal_routine.md"), UserData{})

	assert.Equal(t, "Healthy, strong strands with good elasticity.", a.DetailedAnalysis)
	assert.Equal(t, Routine{
		Cleansing:    "Gentle shampoo once a week",
		Conditioning: "Lightweight conditioner",
		Treatments:   "Monthly protein treatment",
		Styling:      "Minimal heat styling",
	}, a.HaircareRoutine)
	assert.Empty(t, a.ProductSuggestions)
	assert.Equal(t, []string{"Drink plenty of water."}, a.AIBonusTips)
	// strong (+20) and healthy (+10) from 60.
	assert.Equal(t, 90, a.Metrics.Strength)
	assert.Equal(t, 75, a.Metrics.Elasticity)
}

func TestParseEmptyText(t *testing.T) {
	a := Parse("", UserData{})

	assert.Equal(t, "", a.RawAnalysis)
	assert.Equal(t, "", a.DetailedAnalysis)
	assert.Equal(t, baselineMetrics(), a.Metrics)
	assert.Equal(t, Routine{}, a.HaircareRoutine)
	assert.NotNil(t, a.ProductSuggestions)
	assert.NotNil(t, a.AIBonusTips)
	assert.Empty(t, a.ProductSuggestions)
	assert.Empty(t, a.AIBonusTips)
}

func TestParseTextWithoutHeaders(t *testing.T) {
	text := "Your hair looks **dry**. Try a mask."
	a := Parse(text, UserData{})

	assert.Equal(t, text, a.RawAnalysis)
	assert.Equal(t, "", a.DetailedAnalysis)
	assert.Equal(t, "Your hair looks dry. Try a mask.", a.Summary())
	assert.Equal(t, baselineMetrics(), a.Metrics)
}

func TestParseIgnoresSentencesStartingWithTitleWords(t *testing.T) {
	text := "**Description**\nShiny.\n**Hair Care Routine**\n1. Routine trims help\n2. Deep conditioner"
	a := Parse(text, UserData{})

	assert.Equal(t, "Routine trims help", a.HaircareRoutine.Cleansing)
	assert.Equal(t, "Deep conditioner", a.HaircareRoutine.Conditioning)
}

func TestParseKeepsBoldNumberedItemsInsideLists(t *testing.T) {
	text := "**Product Suggestions**\n1. **Hair Analysis kit** for home checks\n2. Leave-in conditioner\n" +
		"**AI Bonus Tips**\n1. **Routine consistency:** stick with it\n2. Trim regularly"
	a := Parse(text, UserData{})

	assert.Equal(t, []string{"Hair Analysis kit for home checks", "Leave-in conditioner"}, a.ProductSuggestions)
	assert.Equal(t, []string{"Routine consistency: stick with it", "Trim regularly"}, a.AIBonusTips)
	assert.Equal(t, Routine{}, a.HaircareRoutine)
}

func TestParseAcceptsNumberedBoldHeaders(t *testing.T) {
	text := "1. **Hair Description:**\nDry ends.\n2. **Product Suggestions**\n- Mask\n3. **Bonus Tips:**\n- Rinse cool"
	a := Parse(text, UserData{})

	assert.Equal(t, "Dry ends.", a.DetailedAnalysis)
	assert.Equal(t, []string{"Mask"}, a.ProductSuggestions)
	assert.Equal(t, []string{"Rinse cool"}, a.AIBonusTips)
}

func TestParseFirstLabelWins(t *testing.T) {
	text := "**Routine**\nCleansing: first\nCleansing: second\nStyling: loose braids"
	a := Parse(text, UserData{})

	assert.Equal(t, "first", a.HaircareRoutine.Cleansing)
	assert.Equal(t, "loose braids", a.HaircareRoutine.Styling)
}

func TestParseIsDeterministic(t *testing.T) {
	text := readFixture(t, "full_response.md")
	user := UserData{PrimaryConcern: "breakage", DyeStatus: "yes", WashFrequency: "daily"}

	assert.Equal(t, Parse(text, user), Parse(text, user))
}

func TestParseUserDataAdjustsMetrics(t *testing.T) {
	text := "**Description**\nNormal looking hair."
	user := UserData{
		PrimaryConcern: "Dry, itchy scalp",
		DyeStatus:      "Yes, bleached last month",
		WashFrequency:  "Every day",
	}
	a := Parse(text, user)

	// concern dry (-10), wash daily (-10), dyed (-10).
	assert.Equal(t, 20, a.Metrics.Moisture)
	assert.Equal(t, 50, a.Metrics.Strength)
	assert.Equal(t, 50, a.Metrics.Elasticity)
	assert.Equal(t, 60, a.Metrics.ScalpHealth)
}

func TestMetricsStayInRange(t *testing.T) {
	worst := "**Description**\nExtremely dry, frizzy, brittle, breakage, split ends, severely damaged, " +
		"thinning, overprocessed, limp, dandruff, flaky, itchy, oily, inflamed."
	best := "**Description**\nWell moisturized, strong, healthy, bouncy, healthy scalp."
	dyed := UserData{PrimaryConcern: "dry breakage scalp", DyeStatus: "yes", WashFrequency: "twice a day"}

	for _, text := range []string{"", worst, best} {
		for _, user := range []UserData{{}, dyed} {
			m := Parse(text, user).Metrics
			for _, v := range []int{m.Moisture, m.Strength, m.Elasticity, m.ScalpHealth} {
				assert.GreaterOrEqual(t, v, minMetric)
				assert.LessOrEqual(t, v, maxMetric)
			}
		}
	}
	m := Parse(worst, dyed).Metrics
	assert.Equal(t, minMetric, m.Moisture)
	assert.Equal(t, minMetric, m.Strength)
}

func TestParseFallsBackWhenRulePanics(t *testing.T) {
	saved := sectionRules
	t.Cleanup(func() { sectionRules = saved })
	sectionRules = append([]sectionRule{}, saved...)
	sectionRules[0].apply = func(string, *Analysis) { panic("boom") }

	text := "**Description**\nDry."
	a := Parse(text, UserData{})

	assert.Equal(t, text, a.RawAnalysis)
	assert.Equal(t, text, a.DetailedAnalysis)
	assert.Equal(t, Metrics{Moisture: 50, Strength: 50, Elasticity: 50, ScalpHealth: 50}, a.Metrics)
	assert.Equal(t, Routine{}, a.HaircareRoutine)
	assert.Empty(t, a.ProductSuggestions)
	assert.NotNil(t, a.AIBonusTips)
}

func TestIsDyed(t *testing.T) {
	cases := map[string]bool{
		"":                  false,
		"yes":               true,
		"Y":                 true,
		"true":              true,
		"Colored at salon":  true,
		"highlights":        true,
		"no":                false,
		"Never dyed":        false,
		"not dyed":          false,
		"natural":           false,
		"sometimes, maybe?": false,
	}
	for in, want := range cases {
		assert.Equal(t, want, isDyed(in), in)
	}
}

func TestStripEmphasis(t *testing.T) {
	assert.Equal(t, "bold and under", StripEmphasis("  **bold** and __under__  "))
	assert.Equal(t, "a\n\nb", StripEmphasis("a  \n\n\n\nb"))
}
