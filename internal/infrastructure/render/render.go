// Package render turns raw LLM output into the HTML fragment returned to
// clients: markdown is converted with goldmark and the result is filtered to a
// small allow-list of tags.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

type Renderer struct {
	markdown goldmark.Markdown
}

// New returns a renderer. With markdown disabled the input is only sanitized.
func New(markdown bool) *Renderer {
	if !markdown {
		return &Renderer{}
	}
	return &Renderer{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.Strikethrough),
			goldmark.WithRendererOptions(
				gmhtml.WithUnsafe(),
				gmhtml.WithHardWraps(),
			),
		),
	}
}

func (r *Renderer) Render(raw string) (string, error) {
	source := raw
	if r.markdown != nil {
		var buf bytes.Buffer
		if err := r.markdown.Convert([]byte(raw), &buf); err != nil {
			return "", fmt.Errorf("convert markdown: %w", err)
		}
		source = buf.String()
	}
	return strings.TrimSpace(Sanitize(source)), nil
}
