package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionMatcher_KeywordOverlap(t *testing.T) {
	m := NewQuestionMatcher(DefaultMatcherConfig(), testQuestions())

	tracked, ok := m.Track("Thanks. Tell me about a distributed system where you weighed tradeoffs?")
	require.True(t, ok)
	assert.False(t, tracked.AdHoc)
	assert.Equal(t, 1, tracked.Question.Index)
	assert.Equal(t, "Technical", tracked.Question.Criterion)
}

func TestQuestionMatcher_VerbatimPrefix(t *testing.T) {
	m := NewQuestionMatcher(DefaultMatcherConfig(), testQuestions())

	q, ok := m.Match("Next one: can you describe a distributed platform?")
	require.True(t, ok)
	assert.Equal(t, 1, q.Index)
}

func TestQuestionMatcher_SingleKeywordIsNotEnough(t *testing.T) {
	m := NewQuestionMatcher(DefaultMatcherConfig(), testQuestions())

	_, ok := m.Match("Which system do you like most?")
	assert.False(t, ok)
}

func TestQuestionMatcher_AdHocQuestion(t *testing.T) {
	m := NewQuestionMatcher(DefaultMatcherConfig(), testQuestions())

	tracked, ok := m.Track("Great answer. What motivates you to apply here?")
	require.True(t, ok)
	assert.True(t, tracked.AdHoc)
	assert.Equal(t, "What motivates you to apply here?", tracked.Question.Text)
	assert.Equal(t, "General", tracked.Question.CriterionOrDefault())
}

func TestQuestionMatcher_StatementsAreIgnored(t *testing.T) {
	m := NewQuestionMatcher(DefaultMatcherConfig(), testQuestions())

	_, ok := m.Track("Let's talk about distributed system tradeoffs now.")
	assert.False(t, ok)
}

func TestKeywords(t *testing.T) {
	got := keywords("Can you describe a distributed system you designed and its tradeoffs?", 3, 5)
	assert.Equal(t, []string{"distributed", "tradeoffs", "describe"}, got)
}

func TestExtractLastQuestion(t *testing.T) {
	assert.Equal(t, "Why?", extractLastQuestion("Interesting. Why?"))
	assert.Equal(t, "And how did it go?", extractLastQuestion("Okay! And how did it go?"))
	assert.Equal(t, "", extractLastQuestion("No question here."))
}
