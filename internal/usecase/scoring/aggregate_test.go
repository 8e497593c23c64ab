package scoring

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
)

func answered(n int, criterion string, score float64, response string) entities.AnswerEvaluation {
	return entities.AnswerEvaluation{
		QuestionNumber:    n,
		QuestionText:      "Question number " + string(rune('A'+n)),
		Criterion:         criterion,
		Score:             score,
		Completeness:      entities.CompletenessComplete,
		Answered:          true,
		CandidateResponse: response,
		Source:            entities.SourceLive,
	}
}

const goodAnswer = "I designed the caching layer and measured the latency gains carefully."

func scenario() []entities.AnswerEvaluation {
	return []entities.AnswerEvaluation{
		answered(1, "Technical", 80, goodAnswer),
		answered(2, "Technical", 60, goodAnswer),
		answered(3, "Communication", 90, goodAnswer),
		answered(4, "Culture", 50, goodAnswer),
	}
}

func breakdown(t *testing.T, score entities.AggregatedScore, criterion string) entities.CriterionBreakdown {
	t.Helper()
	for _, b := range score.PerCriterion {
		if b.Criterion == criterion {
			return b
		}
	}
	t.Fatalf("no breakdown for %s", criterion)
	return entities.CriterionBreakdown{}
}

func weightSumBP(score entities.AggregatedScore) int {
	total := 0
	for _, b := range score.PerCriterion {
		total += int(math.Round(b.WeightPercentage * 100))
	}
	return total
}

func TestAggregate_HireScenario(t *testing.T) {
	score := Aggregate(scenario(), 4)

	assert.Equal(t, 68, score.OverallScore)
	assert.Equal(t, entities.RecommendationHire, score.Recommendation)

	tech := breakdown(t, score, "Technical")
	assert.Equal(t, 70.0, tech.AverageScore)
	assert.Equal(t, 50.0, tech.WeightPercentage)
	assert.Equal(t, 35.0, tech.WeightedContribution)

	comm := breakdown(t, score, "Communication")
	assert.Equal(t, 18.0, comm.WeightedContribution)

	culture := breakdown(t, score, "Culture")
	assert.Equal(t, 30.0, culture.WeightPercentage)
	assert.Equal(t, 15.0, culture.WeightedContribution)

	assert.Equal(t, []string{"Technical", "Communication", "Culture"}, score.CategoriesUsed)
	assert.Empty(t, score.CategoriesNotUsed)
}

func TestAggregate_SkippedCultureScenario(t *testing.T) {
	evals := scenario()
	evals[3].CandidateResponse = "skip"

	score := Aggregate(evals, 4)

	assert.Equal(t, 0.0, breakdown(t, score, "Culture").AverageScore)
	assert.Equal(t, 53, score.OverallScore)
	assert.Equal(t, entities.RecommendationMaybe, score.Recommendation)
	assert.Equal(t, 1, score.Marks.QuestionsUnanswered)
}

func TestAggregate_NotSureIsZero(t *testing.T) {
	eval := answered(1, "Technical", 95, "not sure")
	score := Aggregate([]entities.AnswerEvaluation{eval}, 1)

	require.Len(t, score.Questions, 1)
	assert.True(t, score.Questions[0].Unanswered)
	assert.Equal(t, 0.0, score.Questions[0].EffectiveScore)
	assert.Equal(t, 0, score.Questions[0].MarksObtained)
}

func TestIsUnanswered(t *testing.T) {
	cases := []struct {
		name     string
		eval     entities.AnswerEvaluation
		expected bool
	}{
		{"flag false", entities.AnswerEvaluation{Answered: false, CandidateResponse: goodAnswer}, true},
		{"short", entities.AnswerEvaluation{Answered: true, CandidateResponse: "  yes   "}, true},
		{"disengaged", entities.AnswerEvaluation{Answered: true, CandidateResponse: "Hmm, I Don't Know the answer to that one"}, true},
		{"next", entities.AnswerEvaluation{Answered: true, CandidateResponse: "Please ask the next question"}, true},
		{"real", entities.AnswerEvaluation{Answered: true, CandidateResponse: goodAnswer}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsUnanswered(tc.eval))
		})
	}
}

func TestAggregate_ZeroForUnasked(t *testing.T) {
	evals := []entities.AnswerEvaluation{
		answered(1, "Technical", 100, goodAnswer),
		answered(2, "Technical", 100, goodAnswer),
		answered(3, "Technical", 100, goodAnswer),
		answered(4, "Communication", 100, goodAnswer),
		answered(5, "Communication", 100, goodAnswer),
		answered(6, "Culture", 100, goodAnswer),
	}

	score := Aggregate(evals, 10)

	assert.Equal(t, 10, score.Marks.MarksPerQuestion)
	assert.Equal(t, 100, score.Marks.MaxMarks)
	assert.Equal(t, 60, score.Marks.TotalMarksObtained)
	assert.Equal(t, 4, score.Marks.QuestionsNotAsked)
	assert.Equal(t, 6, score.Marks.QuestionsAnswered)
	// overall only reflects the criteria actually present
	assert.Equal(t, 100, score.OverallScore)
}

func TestAggregate_DefaultsTotalToTen(t *testing.T) {
	score := Aggregate([]entities.AnswerEvaluation{answered(1, "Technical", 70, goodAnswer)}, 0)

	assert.Equal(t, 10, score.Marks.TotalConfiguredQuestions)
	assert.Equal(t, 7, score.Marks.TotalMarksObtained)
	assert.Equal(t, 9, score.Marks.QuestionsNotAsked)
}

func TestAggregate_MarksRounding(t *testing.T) {
	// floor(100/3) = 33 marks per question, 75% of 33 = 24.75
	score := Aggregate([]entities.AnswerEvaluation{answered(1, "Technical", 75, goodAnswer)}, 3)

	assert.Equal(t, 33, score.Marks.MarksPerQuestion)
	assert.Equal(t, 99, score.Marks.MaxMarks)
	assert.Equal(t, 25, score.Questions[0].MarksObtained)
}

func TestAggregate_FixedCriteriaAlwaysPresent(t *testing.T) {
	score := Aggregate([]entities.AnswerEvaluation{answered(1, "Leadership", 80, goodAnswer)}, 1)

	require.Len(t, score.PerCriterion, 3)
	assert.Equal(t, "Technical", score.PerCriterion[0].Criterion)
	assert.Equal(t, 0, score.PerCriterion[0].QuestionCount)
	assert.Equal(t, 50.0, score.PerCriterion[0].WeightPercentage)
	assert.Equal(t, "Communication", score.PerCriterion[1].Criterion)
	assert.Equal(t, []string{"Technical", "Communication"}, score.CategoriesNotUsed)
	// 80 * 30% only
	assert.Equal(t, 24, score.OverallScore)
	assert.Equal(t, entities.RecommendationNoHire, score.Recommendation)
}

func TestAggregate_TechnicalSkillsAlias(t *testing.T) {
	evals := []entities.AnswerEvaluation{
		answered(1, "Technical Skills", 80, goodAnswer),
		answered(2, "Technical", 60, goodAnswer),
	}
	score := Aggregate(evals, 2)

	tech := score.PerCriterion[0]
	assert.Equal(t, "Technical Skills", tech.Criterion)
	assert.Equal(t, 2, tech.QuestionCount)
	assert.Equal(t, 70.0, tech.AverageScore)
}

func TestAggregate_MissingCriterionIsGeneral(t *testing.T) {
	score := Aggregate([]entities.AnswerEvaluation{answered(1, "", 80, goodAnswer)}, 1)

	assert.Equal(t, "General", score.PerCriterion[2].Criterion)
	assert.Equal(t, "General", score.Questions[0].Criterion)
}

func TestAggregate_WeightConservation(t *testing.T) {
	sets := [][]string{
		{},
		{"Technical"},
		{"Technical", "Communication"},
		{"Culture"},
		{"Culture", "Leadership", "Ownership"},
		{"A", "B", "C", "D", "E", "F", "G"},
		{"Technical Skills", "Communication", "A", "B"},
	}
	for _, criteria := range sets {
		var evals []entities.AnswerEvaluation
		for i, c := range criteria {
			evals = append(evals, answered(i+1, c, 50, goodAnswer))
		}
		score := Aggregate(evals, len(criteria))
		assert.Equal(t, 10000, weightSumBP(score), "criteria %v", criteria)
	}
}

func TestAggregate_NoOtherCriteriaRedistributesReserve(t *testing.T) {
	evals := []entities.AnswerEvaluation{
		answered(1, "Technical", 100, goodAnswer),
		answered(2, "Communication", 100, goodAnswer),
	}
	score := Aggregate(evals, 2)

	assert.Equal(t, 71.43, score.PerCriterion[0].WeightPercentage)
	assert.Equal(t, 28.57, score.PerCriterion[1].WeightPercentage)
	assert.Equal(t, 100, score.OverallScore)
}

func TestAggregate_Deterministic(t *testing.T) {
	evals := scenario()
	evals[1].CandidateResponse = "not sure"

	first, err := json.Marshal(Aggregate(evals, 6))
	require.NoError(t, err)
	second, err := json.Marshal(Aggregate(evals, 6))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	reversed := []entities.AnswerEvaluation{evals[3], evals[2], evals[1], evals[0]}
	third, err := json.Marshal(Aggregate(reversed, 6))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(third))
}

func TestAggregate_ClampsScores(t *testing.T) {
	score := Aggregate([]entities.AnswerEvaluation{answered(1, "Technical", 140, goodAnswer)}, 1)
	assert.Equal(t, 100.0, score.Questions[0].EffectiveScore)
}

func TestRecommend(t *testing.T) {
	assert.Equal(t, entities.RecommendationHire, Recommend(65))
	assert.Equal(t, entities.RecommendationMaybe, Recommend(64))
	assert.Equal(t, entities.RecommendationMaybe, Recommend(40))
	assert.Equal(t, entities.RecommendationNoHire, Recommend(39))
}

func TestRationaleListsEveryQuestion(t *testing.T) {
	evals := scenario()
	evals[0].Reasoning = "Solid grasp of caching."
	evals[3].CandidateResponse = "skip"
	score := Aggregate(evals, 4)

	text := Rationale(score)

	assert.Contains(t, text, "Overall score 53/100 (Maybe, fail)")
	assert.Contains(t, text, "Formula: overall")
	assert.Contains(t, text, "Q1 [Technical] 80/100: Solid grasp of caching.")
	assert.Contains(t, text, "Q4 [Culture] unanswered")
}
