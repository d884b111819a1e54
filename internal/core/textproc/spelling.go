package textproc

import (
	"strings"
	"unicode"

	"github.com/kirillkom/medreport-assistant/internal/core/ports"
)

// Corrector replaces misspelled alphabetic tokens. Tokens containing digits,
// units or punctuation are never touched.
type Corrector struct {
	dict ports.SpellDictionary
}

func NewCorrector(dict ports.SpellDictionary) *Corrector {
	return &Corrector{dict: dict}
}

func (c *Corrector) Correct(text string) string {
	tokens := strings.Fields(text)
	if c == nil || c.dict == nil {
		return strings.Join(tokens, " ")
	}
	for i, token := range tokens {
		if !isAlphabetic(token) {
			continue
		}
		if fixed, ok := c.dict.Correction(token); ok && fixed != "" {
			tokens[i] = fixed
		}
	}
	return strings.Join(tokens, " ")
}

func isAlphabetic(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
