package interview

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
)

// MatcherConfig holds the thresholds of the keyword-overlap question matcher
type MatcherConfig struct {
	// KeywordCount is how many of the longest question words are compared
	KeywordCount int
	// MinKeywordLength is the minimum rune length of a keyword
	MinKeywordLength int
	// MinOverlap is how many keywords must appear in the utterance
	MinOverlap int
	// PrefixLength is the length of the question prefix that matches on its own
	PrefixLength int
}

// DefaultMatcherConfig returns the production thresholds
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		KeywordCount:     5,
		MinKeywordLength: 5,
		MinOverlap:       2,
		PrefixLength:     30,
	}
}

// Tracked is the result of tracking an agent utterance
type Tracked struct {
	Question entities.Question
	// AdHoc is true when no configured question matched
	AdHoc bool
}

// QuestionMatcher maps agent utterances to configured questions
type QuestionMatcher struct {
	cfg       MatcherConfig
	questions []entities.Question
	keywords  [][]string
}

// NewQuestionMatcher precomputes the keywords of every configured question
func NewQuestionMatcher(cfg MatcherConfig, questions []entities.Question) *QuestionMatcher {
	m := &QuestionMatcher{
		cfg:       cfg,
		questions: questions,
		keywords:  make([][]string, len(questions)),
	}
	for i, q := range questions {
		m.keywords[i] = keywords(q.Text, cfg.KeywordCount, cfg.MinKeywordLength)
	}
	return m
}

// Track returns the question an agent utterance asks. Utterances without a
// question mark never change the current question and return false.
func (m *QuestionMatcher) Track(utterance string) (Tracked, bool) {
	if !strings.Contains(utterance, "?") {
		return Tracked{}, false
	}

	if q, ok := m.Match(utterance); ok {
		return Tracked{Question: q}, true
	}

	text := extractLastQuestion(utterance)
	if text == "" {
		return Tracked{}, false
	}
	return Tracked{
		Question: entities.Question{Text: text, Criterion: entities.CriterionGeneral},
		AdHoc:    true,
	}, true
}

// Match returns the configured question with the best keyword overlap
func (m *QuestionMatcher) Match(utterance string) (entities.Question, bool) {
	lower := strings.ToLower(utterance)

	best, bestScore := -1, 0
	for i, q := range m.questions {
		score := 0
		for _, kw := range m.keywords[i] {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score < m.cfg.MinOverlap {
			score = 0
		}
		if prefix := questionPrefix(q.Text, m.cfg.PrefixLength); prefix != "" && strings.Contains(lower, prefix) {
			// a verbatim prefix beats any keyword overlap
			score = m.cfg.KeywordCount + 1
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	if best < 0 {
		return entities.Question{}, false
	}
	return m.questions[best], true
}

// keywords returns the n longest words with at least minLen runes, lowercased
func keywords(text string, n, minLen int) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '-'
	})

	seen := make(map[string]bool, len(fields))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "'-")
		if utf8.RuneCountInString(f) < minLen || seen[f] {
			continue
		}
		seen[f] = true
		words = append(words, f)
	}

	sort.SliceStable(words, func(i, j int) bool {
		return utf8.RuneCountInString(words[i]) > utf8.RuneCountInString(words[j])
	})
	if len(words) > n {
		words = words[:n]
	}
	return words
}

func questionPrefix(text string, n int) string {
	if n <= 0 {
		return ""
	}
	lower := strings.ToLower(strings.TrimSpace(text))
	if utf8.RuneCountInString(lower) <= n {
		return lower
	}
	return string([]rune(lower)[:n])
}

// extractLastQuestion returns the last sentence of s that ends in '?'
func extractLastQuestion(s string) string {
	end := strings.LastIndex(s, "?")
	if end < 0 {
		return ""
	}
	start := strings.LastIndexAny(s[:end], ".!?\n") + 1
	return strings.TrimSpace(s[start : end+1])
}
