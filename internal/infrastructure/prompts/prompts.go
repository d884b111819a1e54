// Package prompts renders the LLM prompts from a YAML file of text/template
// sources. The built-in file is embedded; PROMPTS_FILE may replace it.
package prompts

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/medreport-assistant/internal/core/domain"
)

//go:embed prompts.yaml
var defaultPrompts []byte

type file struct {
	Greeting string `yaml:"greeting"`
	Summary  string `yaml:"summary"`
	Severity string `yaml:"severity"`
}

type Builder struct {
	greeting string
	summary  *template.Template
	severity *template.Template
}

// Load reads prompts from path, or the embedded defaults when path is empty.
func Load(path string) (*Builder, error) {
	raw := defaultPrompts
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read prompts file: %w", err)
		}
		raw = data
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Builder, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode prompts yaml: %w", err)
	}
	if strings.TrimSpace(f.Summary) == "" || strings.TrimSpace(f.Severity) == "" {
		return nil, fmt.Errorf("prompts yaml must define both summary and severity templates")
	}
	if f.Greeting == "" {
		f.Greeting = "Hello,"
	}

	summary, err := template.New("summary").Option("missingkey=error").Parse(f.Summary)
	if err != nil {
		return nil, fmt.Errorf("parse summary template: %w", err)
	}
	severity, err := template.New("severity").Option("missingkey=error").Parse(f.Severity)
	if err != nil {
		return nil, fmt.Errorf("parse severity template: %w", err)
	}
	return &Builder{greeting: f.Greeting, summary: summary, severity: severity}, nil
}

func (b *Builder) SummaryPrompt(report string, docType domain.DocumentType) (string, error) {
	return execute(b.summary, struct {
		Greeting     string
		Report       string
		DocumentType domain.DocumentType
	}{b.greeting, report, docType})
}

func (b *Builder) SeverityPrompt(summary string) (string, error) {
	return execute(b.severity, struct{ Summary string }{summary})
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
