package tesseract

import "strings"

type Config struct {
	// Languages are Tesseract language codes, e.g. "eng".
	Languages []string
	// DPI is passed as user_defined_dpi when positive.
	DPI int
	// PageSegMode overrides Tesseract's page segmentation mode when positive.
	PageSegMode int
}

type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine {
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"eng"}
	}
	return &Engine{cfg: cfg}
}

func (e *Engine) Name() string { return "tesseract" }

// SplitLines returns the non-blank lines of recognized text in reading order.
func SplitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
