package llm

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

var (
	//go:embed prompts/hair_analysis.tmpl
	hairAnalysisPrompt string
	//go:embed prompts/chat_system.tmpl
	chatSystemPrompt string

	funcs = template.FuncMap{"join": strings.Join}

	hairAnalysisTmpl = template.Must(template.New("hair_analysis").Funcs(funcs).Parse(hairAnalysisPrompt))
	chatSystemTmpl   = template.Must(template.New("chat_system").Funcs(funcs).Parse(chatSystemPrompt))
)

// BuildHairPrompt renders the single prompt sent with all hair photos.
func BuildHairPrompt(input HairInput) (string, error) {
	data := struct {
		HairInput
		PhotoCount int
	}{HairInput: trimInput(input), PhotoCount: len(input.PhotoURLs)}

	var buf bytes.Buffer
	if err := hairAnalysisTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render hair prompt: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// ChatContext is the stored analysis the chat assistant grounds its answers in.
type ChatContext struct {
	HairProblem   string
	Allergies     string
	Medication    string
	Dyed          string
	WashFrequency string
	Description   string
	Moisture      int
	Strength      int
	Elasticity    int
	ScalpHealth   int
	Suggestions   []string
}

// BuildChatSystemPrompt renders the system message for a submission's chat.
func BuildChatSystemPrompt(c ChatContext) (string, error) {
	var buf bytes.Buffer
	if err := chatSystemTmpl.Execute(&buf, c); err != nil {
		return "", fmt.Errorf("render chat prompt: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func trimInput(in HairInput) HairInput {
	in.HairProblem = strings.TrimSpace(in.HairProblem)
	in.Allergies = strings.TrimSpace(in.Allergies)
	in.Medication = strings.TrimSpace(in.Medication)
	in.Dyed = strings.TrimSpace(in.Dyed)
	in.WashFrequency = strings.TrimSpace(in.WashFrequency)
	in.AdditionalConcerns = strings.TrimSpace(in.AdditionalConcerns)
	names := make([]string, 0, len(in.ProductNames))
	for _, n := range in.ProductNames {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	in.ProductNames = names
	return in
}
