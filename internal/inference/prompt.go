package inference

import (
	"fmt"
	"strings"
	"text/template"

	"accreditation-gateway/internal/document"
)

// Prompt is a text/template rendered against an action's input mapping.
// Documents are attached with {{media .documentDataUri}}, which decodes the
// data URI into a request part and leaves a placeholder in the text.
type Prompt struct {
	name string
	tmpl *template.Template
}

// NewPrompt parses text. Referencing an input field that is absent fails at
// render time.
func NewPrompt(name, text string) (*Prompt, error) {
	tmpl, err := template.New(name).
		Option("missingkey=error").
		Funcs(template.FuncMap{"media": func(string) (string, error) { return "", nil }}).
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt %s: %w", name, err)
	}
	return &Prompt{name: name, tmpl: tmpl}, nil
}

// MustPrompt is NewPrompt for package-level templates.
func MustPrompt(name, text string) *Prompt {
	p, err := NewPrompt(name, text)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Prompt) Name() string { return p.name }

// Render executes the template and returns the prompt text with the
// documents it attached, in order of appearance.
func (p *Prompt) Render(input map[string]interface{}) (string, []document.DataURI, error) {
	var media []document.DataURI

	tmpl, err := p.tmpl.Clone()
	if err != nil {
		return "", nil, fmt.Errorf("clone prompt %s: %w", p.name, err)
	}
	tmpl.Funcs(template.FuncMap{
		"media": func(raw string) (string, error) {
			uri, err := document.ParseDataURI(raw)
			if err != nil {
				return "", err
			}
			media = append(media, uri)
			return fmt.Sprintf("[attached document %d: %s]", len(media), uri.MIMEType), nil
		},
	})

	var sb strings.Builder
	if err := tmpl.Execute(&sb, input); err != nil {
		return "", nil, fmt.Errorf("render prompt %s: %w", p.name, err)
	}
	return strings.TrimSpace(sb.String()), media, nil
}
