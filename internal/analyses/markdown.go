package analyses

import (
	"regexp"
	"strings"
)

var (
	emphasisReplacer = strings.NewReplacer("**", "", "__", "")
	listItemRe       = regexp.MustCompile(`^[ \t]*(?:[-*•+]|\d{1,2}[.)])[ \t]+(.*)$`)
	blankRunRe       = regexp.MustCompile(`\n{3,}`)
)

// StripEmphasis removes bold/underline markers and trims surrounding space.
func StripEmphasis(s string) string {
	s = emphasisReplacer.Replace(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	s = strings.Join(lines, "\n")
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// listItems returns bullet or numbered lines without their markers. When no
// line carries a marker the whole non-empty body is a single item.
func listItems(body string) []string {
	items := []string{}
	for _, line := range strings.Split(body, "\n") {
		m := listItemRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if item := StripEmphasis(m[1]); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		if whole := StripEmphasis(body); whole != "" {
			items = append(items, whole)
		}
	}
	return items
}
