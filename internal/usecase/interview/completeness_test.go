package interview

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCountAnsweredPairs(t *testing.T) {
	id := uuid.New()
	transcripts := newFakeTranscripts()
	transcripts.seed(id,
		"A: Hello! Can you hear me well?",
		"C: Yes, I can hear you perfectly.",
		"A: Can you describe a distributed system you designed and its tradeoffs?",
		"C: um",
		"C: We built an event pipeline on Kafka with idempotent consumers.",
		"A: Interesting. And what would you change today?",
		"C: I would add better backpressure handling.",
		"A: How do you explain complex technical concepts to stakeholders?",
		"A: Do you have any questions for me?",
		"C: What does the team work on right now?",
	)
	turns, _ := transcripts.ListBySession(context.Background(), id)

	// the distributed-systems question and the ad-hoc follow-up were answered;
	// the stakeholders question was never answered
	assert.Equal(t, 2, CountAnsweredPairs(turns, testQuestions()))
}

func TestCountAnsweredPairs_Empty(t *testing.T) {
	assert.Equal(t, 0, CountAnsweredPairs(nil, testQuestions()))
}

func TestRequiredAnswers(t *testing.T) {
	assert.Equal(t, 1, RequiredAnswers(testQuestions(), 0.5))
	assert.Equal(t, 2, RequiredAnswers(testQuestions(), 0.75))
	assert.Equal(t, 1, RequiredAnswers(nil, 0.5))
	assert.Equal(t, 1, RequiredAnswers(testQuestions(), 0))
}
