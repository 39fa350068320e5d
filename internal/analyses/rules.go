package analyses

import (
	"regexp"
	"sort"
	"strings"
)

// sectionRule locates one markdown section and writes its field. Rules share
// nothing but the list of known headers used to bound section bodies.
type sectionRule struct {
	name   string
	header *regexp.Regexp
	apply  func(body string, a *Analysis)
}

// headerPattern matches a line-leading section title with optional heading
// hashes, numbering, bold markers, an "AI" prefix and a trailing colon.
func headerPattern(title string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[ \t]*(#{1,6}[ \t]*)?(\d{1,2}[.)][ \t]*)?(\*\*|__)?[ \t]*(?:AI[ \t]+)?(?:` +
		title + `)\b[ \t]*(\*\*|__)?[ \t]*(:)?[ \t]*(\*\*|__)?`)
}

var sectionRules = []sectionRule{
	{
		name:   "description",
		header: headerPattern(`(?:Hair[ \t]+)?Description|Hair[ \t]+Analysis`),
		apply: func(body string, a *Analysis) {
			a.DetailedAnalysis = StripEmphasis(body)
		},
	},
	{
		name:   "routine",
		header: headerPattern(`(?:(?:Recommended|Personali[sz]ed)[ \t]+)?(?:Hair[ \t]*care[ \t]+)?Routine`),
		apply: func(body string, a *Analysis) {
			a.HaircareRoutine = parseRoutine(body)
		},
	},
	{
		name:   "products",
		header: headerPattern(`(?:Recommended[ \t]+)?Products?[ \t]+(?:Suggestions|Recommendations)`),
		apply: func(body string, a *Analysis) {
			a.ProductSuggestions = listItems(body)
		},
	},
	{
		name:   "tips",
		header: headerPattern(`(?:Bonus|Additional)[ \t]+Tips`),
		apply: func(body string, a *Analysis) {
			a.AIBonusTips = listItems(body)
		},
	},
}

type headerMatch struct {
	rule       int
	start, end int
}

// findHeaders returns every decorated header occurrence ordered by position.
func findHeaders(text string, rules []sectionRule) []headerMatch {
	var out []headerMatch
	for i, r := range rules {
		for _, loc := range r.header.FindAllStringSubmatchIndex(text, -1) {
			if !isHeaderLine(text, loc) {
				continue
			}
			out = append(out, headerMatch{rule: i, start: loc[0], end: loc[1]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

// isHeaderLine rejects ordinary sentences and list items that happen to start
// with a title word. Headings with hashes always count. A numbered line, or one
// with only an opening bold marker, counts only when nothing but closing markers
// and a colon follow the title. Otherwise a closing marker or colon is enough.
func isHeaderLine(text string, loc []int) bool {
	has := func(g int) bool { return loc[2*g] >= 0 }
	if has(1) {
		return true
	}
	rest := text[loc[1]:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	numbered := has(2)
	openOnly := has(3) && !has(4)
	if !numbered && !openOnly && (has(4) || has(5) || has(6)) {
		return true
	}
	return strings.Trim(rest, " \t\r*_:") == ""
}

// sectionBody returns the text after the first header of rule up to the next
// known header or end of text.
func sectionBody(text string, headers []headerMatch, rule int) (string, bool) {
	for i, h := range headers {
		if h.rule != rule {
			continue
		}
		end := len(text)
		for _, next := range headers[i+1:] {
			if next.start >= h.end {
				end = next.start
				break
			}
		}
		return text[h.end:end], true
	}
	return "", false
}

var (
	routineLabelRe = regexp.MustCompile(`(?im)^[ \t]*(?:[-*•+][ \t]*)?(?:\d{1,2}[.)][ \t]*)?(?:\*\*|__)?[ \t]*(Cleansing|Conditioning|Treatments?|Styling)[ \t]*(?:\*\*|__)?[ \t]*:?[ \t]*(?:\*\*|__)?[ \t]*:?`)
	routineOrdRe   = regexp.MustCompile(`(?m)^[ \t]*([1-4])[.)][ \t]*`)
)

// parseRoutine fills the four steps by label, falling back to ordinals 1-4.
func parseRoutine(body string) Routine {
	var r Routine
	set := func(field *string, span string) {
		if *field == "" {
			*field = StripEmphasis(span)
		}
	}

	labels := routineLabelRe.FindAllStringSubmatchIndex(body, -1)
	if len(labels) > 0 {
		for i, loc := range labels {
			end := len(body)
			if i+1 < len(labels) {
				end = labels[i+1][0]
			}
			span := body[loc[1]:end]
			switch strings.ToLower(body[loc[2]:loc[3]]) {
			case "cleansing":
				set(&r.Cleansing, span)
			case "conditioning":
				set(&r.Conditioning, span)
			case "treatment", "treatments":
				set(&r.Treatments, span)
			case "styling":
				set(&r.Styling, span)
			}
		}
		return r
	}

	ords := routineOrdRe.FindAllStringSubmatchIndex(body, -1)
	for i, loc := range ords {
		end := len(body)
		if i+1 < len(ords) {
			end = ords[i+1][0]
		}
		span := body[loc[1]:end]
		switch body[loc[2]:loc[3]] {
		case "1":
			set(&r.Cleansing, span)
		case "2":
			set(&r.Conditioning, span)
		case "3":
			set(&r.Treatments, span)
		case "4":
			set(&r.Styling, span)
		}
	}
	return r
}
