// Package sentiment scores message polarity with a word lexicon.
package sentiment

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

//go:embed lexicon.tsv
var defaultLexicon string

var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "nothing": {}, "cannot": {},
	"dont": {}, "don't": {}, "isnt": {}, "isn't": {}, "wasnt": {}, "wasn't": {},
	"cant": {}, "can't": {}, "wont": {}, "won't": {}, "nahi": {}, "nhi": {},
}

var intensifiers = map[string]float64{
	"very":       1.3,
	"really":     1.3,
	"so":         1.3,
	"super":      1.3,
	"extremely":  1.5,
	"too":        1.2,
	"totally":    1.3,
	"absolutely": 1.5,
	"bahut":      1.3,
}

const negationFactor = -0.5

// LexiconScorer averages the polarity of lexicon terms found in a text.
type LexiconScorer struct {
	matcher  *goahocorasick.Machine
	polarity map[string]float64
}

// NewLexiconScorer builds the Aho-Corasick automaton over the lowercase lexicon terms.
func NewLexiconScorer(lexicon map[string]float64) (*LexiconScorer, error) {
	polarity := make(map[string]float64, len(lexicon))
	for term, p := range lexicon {
		term = strings.Join(strings.Fields(strings.ToLower(term)), " ")
		if term == "" {
			continue
		}
		polarity[term] = p
	}
	if len(polarity) == 0 {
		return nil, fmt.Errorf("sentiment lexicon is empty")
	}

	terms := make([]string, 0, len(polarity))
	for term := range polarity {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	patterns := make([][]rune, len(terms))
	for i, term := range terms {
		patterns[i] = []rune(term)
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &LexiconScorer{matcher: m, polarity: polarity}, nil
}

// NewDefaultScorer uses the embedded English and Hinglish lexicon.
func NewDefaultScorer() (*LexiconScorer, error) {
	lexicon, err := LoadLexicon(strings.NewReader(defaultLexicon))
	if err != nil {
		return nil, err
	}
	return NewLexiconScorer(lexicon)
}

// LoadLexicon reads "term<TAB>polarity" lines. Blank lines and # comments are ignored.
func LoadLexicon(r io.Reader) (map[string]float64, error) {
	lexicon := make(map[string]float64)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		term, value, ok := strings.Cut(text, "\t")
		if !ok {
			return nil, fmt.Errorf("lexicon line %d: missing tab separator", line)
		}
		p, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("lexicon line %d: %w", line, err)
		}
		if p < -1 || p > 1 {
			return nil, fmt.Errorf("lexicon line %d: polarity %v out of [-1, 1]", line, p)
		}
		lexicon[term] = p
	}
	return lexicon, scanner.Err()
}

type span struct {
	start, end int
	term       string
}

// Score returns the mean polarity of whole-word lexicon matches, 0 when none match.
// A preceding intensifier scales a match, a preceding negator flips and halves it.
func (s *LexiconScorer) Score(text string) float64 {
	norm := normalize(text)
	if len(norm) == 0 {
		return 0
	}

	hits := s.matcher.MultiPatternSearch(norm, false)
	spans := make([]span, 0, len(hits))
	for _, hit := range hits {
		start, end := hit.Pos, hit.Pos+len(hit.Word)
		if start < 0 || end > len(norm) || !isWordBoundary(norm, start, end) {
			continue
		}
		spans = append(spans, span{start: start, end: end, term: string(hit.Word)})
	}
	if len(spans) == 0 {
		return 0
	}

	// Longest match wins when terms overlap ("well done" over "well").
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	var total float64
	matched, lastEnd := 0, -1
	for _, sp := range spans {
		if sp.start < lastEnd {
			continue
		}
		lastEnd = sp.end
		total += s.polarity[sp.term] * modifier(norm, sp.start)
		matched++
	}
	return clamp(total / float64(matched))
}

// normalize lowercases text and blanks everything but letters, digits and apostrophes.
// Rune positions are preserved.
func normalize(text string) []rune {
	runes := []rune(text)
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			runes[i] = unicode.ToLower(r)
		case r == '\'' || r == '’':
			runes[i] = '\''
		default:
			runes[i] = ' '
		}
	}
	return runes
}

func isWordBoundary(norm []rune, start, end int) bool {
	return (start == 0 || norm[start-1] == ' ') && (end == len(norm) || norm[end] == ' ')
}

// modifier inspects the two words before a match.
func modifier(norm []rune, start int) float64 {
	first, rest := previousWord(norm, start)
	if factor, ok := intensifiers[first]; ok {
		second, _ := previousWord(norm, rest)
		if _, negated := negators[second]; negated {
			return factor * negationFactor
		}
		return factor
	}
	if _, negated := negators[first]; negated {
		return negationFactor
	}
	return 1
}

// previousWord returns the word ending before pos and the index where it starts.
func previousWord(norm []rune, pos int) (string, int) {
	end := pos
	for end > 0 && norm[end-1] == ' ' {
		end--
	}
	start := end
	for start > 0 && norm[start-1] != ' ' {
		start--
	}
	return string(norm[start:end]), start
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}
