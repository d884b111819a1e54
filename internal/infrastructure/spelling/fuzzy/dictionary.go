// Package fuzzy provides the spelling dictionary used to correct OCR output.
// It wraps a github.com/sajari/fuzzy model trained from an embedded English
// frequency list and an embedded clinical vocabulary.
package fuzzy

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sajari/fuzzy"
)

var (
	//go:embed english.txt
	englishFrequencies string
	//go:embed clinical.txt
	clinicalWords string
)

const (
	DefaultMinWordLength = 4
	DefaultMaxDistance   = 1
	DefaultMinFrequency  = 5

	// clinicalFrequency ranks domain terms above most general English words.
	clinicalFrequency = 100
)

type Options struct {
	// ExtraWordsPath names an optional file of additional domain words, whitespace separated, '#' comments.
	ExtraWordsPath string
	MinWordLength  int
	MaxDistance    int
	// MinFrequency is the lowest corpus count a suggestion needs to replace a token.
	MinFrequency int
}

// Dictionary corrects a token only when exactly one known word within
// MaxDistance edits is more frequent than every other candidate. Unknown words
// without such a candidate (names, rare terms) pass through unchanged.
type Dictionary struct {
	model        *fuzzy.Model
	frequency    map[string]int
	clinical     map[string]struct{}
	minLength    int
	maxDistance  int
	minFrequency int
}

func New(opts Options) (*Dictionary, error) {
	english, err := readFrequencies(strings.NewReader(englishFrequencies))
	if err != nil {
		return nil, fmt.Errorf("read embedded english words: %w", err)
	}
	domain, err := readWords(strings.NewReader(clinicalWords))
	if err != nil {
		return nil, fmt.Errorf("read embedded clinical words: %w", err)
	}
	if path := strings.TrimSpace(opts.ExtraWordsPath); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open spelling dictionary: %w", err)
		}
		extra, err := readWords(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("read spelling dictionary %s: %w", path, err)
		}
		domain = append(domain, extra...)
	}
	return NewFromFrequencies(english, domain, opts), nil
}

// NewFromWords builds a dictionary whose whole vocabulary is domain words.
func NewFromWords(words []string, opts Options) *Dictionary {
	return NewFromFrequencies(nil, words, opts)
}

// NewFromFrequencies builds a dictionary from general word counts plus domain
// words, which are ranked at least clinicalFrequency.
func NewFromFrequencies(general map[string]int, domain []string, opts Options) *Dictionary {
	if opts.MinWordLength <= 0 {
		opts.MinWordLength = DefaultMinWordLength
	}
	if opts.MaxDistance <= 0 {
		opts.MaxDistance = DefaultMaxDistance
	}
	if opts.MinFrequency <= 0 {
		opts.MinFrequency = DefaultMinFrequency
	}

	frequency := make(map[string]int, len(general)+len(domain))
	for w, n := range general {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" && n > 0 {
			frequency[w] += n
		}
	}
	clinical := make(map[string]struct{}, len(domain))
	for _, w := range domain {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		clinical[w] = struct{}{}
		if frequency[w] < clinicalFrequency {
			frequency[w] = clinicalFrequency
		}
	}

	model := fuzzy.NewModel()
	model.SetUseAutocomplete(false)
	model.SetThreshold(1)
	model.SetDepth(opts.MaxDistance)
	for w, n := range frequency {
		model.SetCount(w, n, true)
	}

	return &Dictionary{
		model:        model,
		frequency:    frequency,
		clinical:     clinical,
		minLength:    opts.MinWordLength,
		maxDistance:  opts.MaxDistance,
		minFrequency: opts.MinFrequency,
	}
}

// Correction returns the best dictionary word for an unknown token, in the
// token's case. Capitalized tokens are often names, so they are only corrected
// towards clinical terms.
func (d *Dictionary) Correction(word string) (string, bool) {
	lower := strings.ToLower(word)
	if _, ok := d.frequency[lower]; ok {
		return word, false
	}
	if utf8.RuneCountInString(lower) < d.minLength {
		return word, false
	}
	clinicalOnly := startsUpper(word) && !isUpper(word)

	best, bestCount, tied := "", 0, false
	for term, pot := range d.model.Potentials(lower, true) {
		if term == lower || editDistance(lower, term) > d.maxDistance {
			continue
		}
		if clinicalOnly {
			if _, ok := d.clinical[term]; !ok {
				continue
			}
		}
		count := pot.Score
		switch {
		case count > bestCount:
			best, bestCount, tied = term, count, false
		case count == bestCount:
			tied = true
		}
	}
	if best == "" || tied || bestCount < d.minFrequency {
		return word, false
	}
	return matchCase(word, best), true
}

func (d *Dictionary) Size() int { return len(d.frequency) }

// editDistance counts insertions, deletions, substitutions and adjacent
// transpositions, the usual OCR slips.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev2 := make([]int, len(rb)+1)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				cur[j] = min(cur[j], prev2[j-2]+1)
			}
		}
		prev2, prev, cur = prev, cur, prev2
	}
	return prev[len(rb)]
}

func readWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		words = append(words, strings.Fields(stripComment(scanner.Text()))...)
	}
	return words, scanner.Err()
}

// readFrequencies parses "word count" lines.
func readFrequencies(r io.Reader) (map[string]int, error) {
	counts := make(map[string]int)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(stripComment(scanner.Text()))
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: want \"word count\", got %d fields", line, len(fields))
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad count: %w", line, err)
		}
		counts[fields[0]] += n
	}
	return counts, scanner.Err()
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

func matchCase(original, suggestion string) string {
	switch {
	case isUpper(original) && utf8.RuneCountInString(original) > 1:
		return strings.ToUpper(suggestion)
	case startsUpper(original):
		r, size := utf8.DecodeRuneInString(suggestion)
		return string(unicode.ToUpper(r)) + suggestion[size:]
	default:
		return suggestion
	}
}

func isUpper(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
