package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
)

const (
	// DefaultTotalQuestions is used when a job has no configured question list
	DefaultTotalQuestions = 10

	CriterionTechnical     = "Technical"
	CriterionCommunication = "Communication"

	// Weights in basis points (1% = 100)
	technicalWeightBP     = 5000
	communicationWeightBP = 2000
	otherWeightBP         = 3000
	totalWeightBP         = 10000

	hireThreshold  = 65
	maybeThreshold = 40

	minAnswerLength = 10
)

var disengagementPhrases = []string{
	"no, sorry",
	"please ask the next",
	"skip",
	"i don't know",
	"not sure",
}

// IsUnanswered reports whether an evaluation counts as no answer at all
func IsUnanswered(eval entities.AnswerEvaluation) bool {
	if !eval.Answered {
		return true
	}
	response := strings.TrimSpace(eval.CandidateResponse)
	if len(response) < minAnswerLength {
		return true
	}
	lower := strings.ToLower(response)
	for _, phrase := range disengagementPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// criterionKey maps a criterion label onto its weighting group
func criterionKey(label string) string {
	label = strings.TrimSpace(label)
	switch strings.ToLower(label) {
	case "":
		return strings.ToLower(entities.CriterionGeneral)
	case "technical", "technical skills":
		return "technical"
	case "communication":
		return "communication"
	}
	return strings.ToLower(label)
}

func isFixedKey(key string) bool {
	return key == "technical" || key == "communication"
}

type criterionGroup struct {
	key      string
	label    string
	count    int
	answered int
	sum      float64
}

func (g *criterionGroup) average() float64 {
	if g.count == 0 {
		return 0
	}
	return g.sum / float64(g.count)
}

// Aggregate computes the canonical score of an interview. It is pure: the
// same input always yields the same output, whatever order evaluations come in.
func Aggregate(evaluations []entities.AnswerEvaluation, totalConfigured int) entities.AggregatedScore {
	if totalConfigured <= 0 {
		totalConfigured = DefaultTotalQuestions
	}
	marksPerQuestion := 100 / totalConfigured

	ordered := make([]entities.AnswerEvaluation, len(evaluations))
	copy(ordered, evaluations)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].QuestionNumber != ordered[j].QuestionNumber {
			return ordered[i].QuestionNumber < ordered[j].QuestionNumber
		}
		return ordered[i].QuestionText < ordered[j].QuestionText
	})

	technical := &criterionGroup{key: "technical", label: CriterionTechnical}
	communication := &criterionGroup{key: "communication", label: CriterionCommunication}
	groups := map[string]*criterionGroup{
		technical.key:     technical,
		communication.key: communication,
	}
	var others []*criterionGroup
	seenTechnicalLabel := false

	results := make([]entities.QuestionResult, 0, len(ordered))
	marks := entities.MarksSummary{
		TotalConfiguredQuestions: totalConfigured,
		MarksPerQuestion:         marksPerQuestion,
		MaxMarks:                 marksPerQuestion * totalConfigured,
		QuestionsEvaluated:       len(ordered),
	}

	for _, eval := range ordered {
		if strings.TrimSpace(eval.Criterion) == "" {
			eval.Criterion = entities.CriterionGeneral
		}
		unanswered := IsUnanswered(eval)
		effective := clampScore(eval.Score)
		if unanswered {
			effective = 0
			marks.QuestionsUnanswered++
		} else {
			marks.QuestionsAnswered++
		}
		obtained := int(math.Round(effective / 100 * float64(marksPerQuestion)))
		marks.TotalMarksObtained += obtained

		key := criterionKey(eval.Criterion)
		group, ok := groups[key]
		if !ok {
			group = &criterionGroup{key: key, label: strings.TrimSpace(eval.Criterion)}
			groups[key] = group
			others = append(others, group)
		}
		if key == "technical" && !seenTechnicalLabel {
			group.label = strings.TrimSpace(eval.Criterion)
			seenTechnicalLabel = true
		}
		group.count++
		group.sum += effective
		if !unanswered {
			group.answered++
		}

		results = append(results, entities.QuestionResult{
			AnswerEvaluation: eval,
			Unanswered:       unanswered,
			EffectiveScore:   effective,
			MarksObtained:    obtained,
		})
	}

	if notAsked := totalConfigured - len(ordered); notAsked > 0 {
		marks.QuestionsNotAsked = notAsked
	}

	weights := distributeWeights(len(others))
	all := append([]*criterionGroup{technical, communication}, others...)

	score := entities.AggregatedScore{
		PerCriterion:      make([]entities.CriterionBreakdown, 0, len(all)),
		CategoriesUsed:    []string{},
		CategoriesNotUsed: []string{},
		Marks:             marks,
		Questions:         results,
	}

	var overall float64
	terms := make([]string, 0, len(all))
	for i, group := range all {
		weight := float64(weights[i]) / 100
		avg := group.average()
		contribution := avg * weight / 100
		overall += contribution

		score.PerCriterion = append(score.PerCriterion, entities.CriterionBreakdown{
			Criterion:            group.label,
			QuestionCount:        group.count,
			AnsweredCount:        group.answered,
			AverageScore:         round2(avg),
			WeightPercentage:     weight,
			WeightedContribution: round2(contribution),
			Summary:              criterionSummary(group),
		})
		if group.count > 0 {
			score.CategoriesUsed = append(score.CategoriesUsed, group.label)
		} else {
			score.CategoriesNotUsed = append(score.CategoriesNotUsed, group.label)
		}
		terms = append(terms, fmt.Sprintf("%s %.2f x %s%%", group.label, avg, formatWeight(weight)))
	}

	score.OverallScore = int(math.Round(overall))
	score.Recommendation = Recommend(score.OverallScore)
	score.Formula = fmt.Sprintf("overall = round(%s) / 100 = %d", strings.Join(terms, " + "), score.OverallScore)
	return score
}

// Recommend maps an overall score to a hiring verdict
func Recommend(overall int) entities.Recommendation {
	switch {
	case overall >= hireThreshold:
		return entities.RecommendationHire
	case overall >= maybeThreshold:
		return entities.RecommendationMaybe
	default:
		return entities.RecommendationNoHire
	}
}

// distributeWeights returns basis points for Technical, Communication and
// then each other criterion. The result always sums to 100%.
func distributeWeights(otherCount int) []int {
	weights := make([]int, 2+otherCount)
	if otherCount == 0 {
		fixed := technicalWeightBP + communicationWeightBP
		weights[0] = int(math.Round(float64(totalWeightBP) * technicalWeightBP / float64(fixed)))
		weights[1] = totalWeightBP - weights[0]
		return weights
	}
	weights[0] = technicalWeightBP
	weights[1] = communicationWeightBP
	share := otherWeightBP / otherCount
	remainder := otherWeightBP % otherCount
	for i := 0; i < otherCount; i++ {
		weights[2+i] = share
		if i < remainder {
			weights[2+i]++
		}
	}
	return weights
}

func criterionSummary(g *criterionGroup) string {
	if g.count == 0 {
		return fmt.Sprintf("No %s questions were asked; scored as 0.", g.label)
	}
	return fmt.Sprintf("%d of %d question(s) answered, average score %.1f.", g.answered, g.count, g.average())
}

func clampScore(score float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatWeight(w float64) string {
	if w == math.Trunc(w) {
		return fmt.Sprintf("%d", int(w))
	}
	return fmt.Sprintf("%.2f", w)
}
