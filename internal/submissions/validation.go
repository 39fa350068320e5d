package submissions

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"hairalyzer-backend/internal/shared/storage/object"
)

const (
	MaxHairPhotos       = 3
	MaxProductPhotos    = 5
	MaxProductNames     = 20
	maxProductNameRunes = 100
)

var answerLimits = []struct {
	field string
	max   int
	value func(Answers) string
}{
	{"hairProblem", 500, func(a Answers) string { return a.HairProblem }},
	{"allergies", 500, func(a Answers) string { return a.Allergies }},
	{"medication", 500, func(a Answers) string { return a.Medication }},
	{"dyed", 100, func(a Answers) string { return a.Dyed }},
	{"washFrequency", 100, func(a Answers) string { return a.WashFrequency }},
	{"additionalConcerns", 1000, func(a Answers) string { return a.AdditionalConcerns }},
}

// TrimAnswers strips surrounding whitespace from every answer.
func TrimAnswers(a Answers) Answers {
	return Answers{
		HairProblem:        strings.TrimSpace(a.HairProblem),
		Allergies:          strings.TrimSpace(a.Allergies),
		Medication:         strings.TrimSpace(a.Medication),
		Dyed:               strings.TrimSpace(a.Dyed),
		WashFrequency:      strings.TrimSpace(a.WashFrequency),
		AdditionalConcerns: strings.TrimSpace(a.AdditionalConcerns),
	}
}

// ParseProductNames decodes the productNames form field. An empty field is an
// empty list; anything but a JSON array of strings is rejected.
func ParseProductNames(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		verr := &ValidationError{}
		verr.add("productNames", "must be a JSON array of strings")
		return nil, verr
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out, nil
}

// Validate checks every limit before any side effect runs.
func Validate(in SubmitInput) error {
	verr := &ValidationError{}
	for _, l := range answerLimits {
		if n := utf8.RuneCountInString(l.value(in.Answers)); n > l.max {
			verr.add(l.field, "must be at most %d characters", l.max)
		}
	}
	if len(in.ProductNames) > MaxProductNames {
		verr.add("productNames", "at most %d products allowed", MaxProductNames)
	}
	for _, name := range in.ProductNames {
		if utf8.RuneCountInString(name) > maxProductNameRunes {
			verr.add("productNames", "each product name must be at most %d characters", maxProductNameRunes)
			break
		}
	}
	validatePhotos(verr, "hairPhotos", in.HairPhotos, MaxHairPhotos)
	validatePhotos(verr, "productImages", in.ProductPhotos, MaxProductPhotos)
	return verr.orNil()
}

func validatePhotos(verr *ValidationError, field string, photos []Photo, max int) {
	if len(photos) > max {
		verr.add(field, "at most %d files allowed", max)
	}
	for _, p := range photos {
		if p.Size > object.MaxObjectBytes {
			verr.add(field, "%s exceeds the 20MB limit", p.FileName)
		}
	}
}
