package prompts

import (
	"errors"
	"fmt"
	"strings"
)

// TextKey is the variable that receives the text to translate.
const TextKey = "text"

var ErrMissingPlaceholder = errors.New("prompt template has no text placeholder")

// PromptTemplate represents a string template that can be formatted.
type PromptTemplate struct {
	Template string
}

// NewPromptTemplate creates a new prompt template.
func NewPromptTemplate(template string) PromptTemplate {
	return PromptTemplate{Template: template}
}

// Format substitutes variables in the template string.
// Variables are in the format `{{.variable_name}}`.
func (p PromptTemplate) Format(vars map[string]string) string {
	prompt := p.Template
	for key, value := range vars {
		prompt = strings.ReplaceAll(prompt, placeholder(key), value)
	}
	return prompt
}

// Render substitutes text for the text placeholder.
func (p PromptTemplate) Render(text string) string {
	return p.Format(map[string]string{TextKey: text})
}

// Strip returns the template with the text placeholder removed, i.e. the
// fixed instruction overhead every request carries.
func (p PromptTemplate) Strip() string {
	return p.Render("")
}

// Validate checks that the template has exactly one text placeholder.
func (p PromptTemplate) Validate() error {
	switch n := strings.Count(p.Template, placeholder(TextKey)); n {
	case 1:
		return nil
	case 0:
		return ErrMissingPlaceholder
	default:
		return fmt.Errorf("prompt template has %d text placeholders, want 1", n)
	}
}

func placeholder(key string) string {
	return "{{." + key + "}}"
}
