// Package spell corrects misspelled words in recognized text using a
// frequency model from github.com/sajari/fuzzy. Only word tokens are
// touched; whitespace, punctuation and digits pass through unchanged.
package spell

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sajari/fuzzy"
)

// words.txt holds "word count" lines ranked by frequency.
//
//go:embed words.txt
var defaultCorpus string

var wordPattern = regexp.MustCompile(`\p{L}+(?:'\p{L}+)*`)

// Corrector turns text into spell-corrected text.
type Corrector interface {
	Correct(ctx context.Context, text string) (string, error)
}

// Model is a Corrector backed by a trained fuzzy model. It is safe for
// concurrent use.
type Model struct {
	model     *fuzzy.Model
	counts    map[string]int
	depth     int
	threshold int
	logger    *slog.Logger
}

// New trains a Model from the configured corpus file, or from the embedded
// word list when none is configured.
func New(cfg *Config, logger *slog.Logger) (*Model, error) {
	var r io.Reader = strings.NewReader(defaultCorpus)
	source := "embedded"

	if cfg.Corpus != "" {
		f, err := os.Open(cfg.Corpus)
		if err != nil {
			return nil, fmt.Errorf("read corpus: %w", err)
		}
		defer f.Close()
		r = f
		source = cfg.Corpus
	}

	counts, err := ParseCorpus(r)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", source, err)
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("corpus %s contains no words", source)
	}

	m := newModel(cfg, counts, logger)
	m.logger.Info("spelling model trained", "corpus", source, "words", len(counts))
	return m, nil
}

// NewFromWords trains a Model on the given words. Each occurrence counts
// towards the word's frequency.
func NewFromWords(cfg *Config, words []string, logger *slog.Logger) *Model {
	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[strings.ToLower(w)]++
	}
	return newModel(cfg, counts, logger)
}

// ParseCorpus reads word frequencies. A line of the form "word count" sets
// that word's count; any other line is tokenized and each word counts once.
func ParseCorpus(r io.Reader) (map[string]int, error) {
	counts := make(map[string]int)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()

		if fields := strings.Fields(line); len(fields) == 2 {
			if n, err := strconv.Atoi(fields[1]); err == nil && n > 0 && isWord(fields[0]) {
				counts[strings.ToLower(fields[0])] += n
				continue
			}
		}

		for _, w := range Tokenize(line) {
			counts[w]++
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func newModel(cfg *Config, counts map[string]int, logger *slog.Logger) *Model {
	model := fuzzy.NewModel()
	model.SetThreshold(cfg.Threshold)
	model.SetDepth(cfg.Depth)
	model.SetUseAutocomplete(false)

	for word, n := range counts {
		model.SetCount(word, n, n >= cfg.Threshold)
	}

	return &Model{
		model:     model,
		counts:    counts,
		depth:     cfg.Depth,
		threshold: cfg.Threshold,
		logger:    logger.With("system", "spell"),
	}
}

// Correct replaces each unknown word in text with the closest known word,
// keeping the original capitalization pattern. Known words, and words with
// no candidate within the configured depth, are left as they are.
func (m *Model) Correct(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var changed int
	out := wordPattern.ReplaceAllStringFunc(text, func(word string) string {
		fixed := m.correctWord(word)
		if fixed != word {
			changed++
		}
		return fixed
	})

	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.logger.Debug("text corrected", "changed", changed)
	return out, nil
}

// correctWord picks the candidate with the smallest edit distance, then the
// highest count, then the lowest in lexical order.
func (m *Model) correctWord(word string) string {
	if utf8.RuneCountInString(word) < 2 {
		return word
	}

	lower := strings.ToLower(word)
	if m.counts[lower] > 0 {
		return word
	}

	var (
		best      string
		bestDist  int
		bestCount int
	)
	for term := range m.model.Potentials(lower, true) {
		count := m.counts[term]
		if count < m.threshold {
			continue
		}
		dist := distance(lower, term)
		if dist > m.depth {
			continue
		}

		if best == "" ||
			dist < bestDist ||
			dist == bestDist && count > bestCount ||
			dist == bestDist && count == bestCount && term < best {
			best, bestDist, bestCount = term, dist, count
		}
	}

	if best == "" {
		return word
	}
	return matchCase(word, best)
}

// Tokenize splits text into lower-cased word tokens.
func Tokenize(text string) []string {
	matches := wordPattern.FindAllString(text, -1)
	for i, w := range matches {
		matches[i] = strings.ToLower(w)
	}
	return matches
}

func isWord(s string) bool {
	loc := wordPattern.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}

// distance is the optimal string alignment distance: insertions, deletions,
// substitutions and adjacent transpositions each cost one.
func distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	rows := make([][]int, len(ra)+1)
	for i := range rows {
		rows[i] = make([]int, len(rb)+1)
		rows[i][0] = i
	}
	for j := range rows[0] {
		rows[0][j] = j
	}

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d := min(rows[i-1][j]+1, rows[i][j-1]+1, rows[i-1][j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				d = min(d, rows[i-2][j-2]+1)
			}
			rows[i][j] = d
		}
	}
	return rows[len(ra)][len(rb)]
}

func matchCase(original, suggestion string) string {
	if strings.ToUpper(original) == original {
		return strings.ToUpper(suggestion)
	}
	first, _ := utf8.DecodeRuneInString(original)
	if unicode.IsUpper(first) {
		r, size := utf8.DecodeRuneInString(suggestion)
		return string(unicode.ToUpper(r)) + suggestion[size:]
	}
	return suggestion
}
