package scoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
	"github.com/johnquangdev/interview-assistant/pkg/ai"
)

// ErrUnknownPayload is returned when a payload matches neither known shape
var ErrUnknownPayload = errors.New("unrecognized evaluation payload shape")

// Payload is an upstream evaluation payload in one of its known shapes
type Payload interface {
	// Evaluations flattens the payload into evaluations in question order
	Evaluations() []entities.AnswerEvaluation
	Shape() string
}

// FlatQuestionPayload is a list of per-question objects, either bare or
// under a "questions" key.
type FlatQuestionPayload struct {
	Questions []WireEvaluation
}

// Shape implements Payload
func (FlatQuestionPayload) Shape() string { return "flat" }

// Evaluations implements Payload
func (p FlatQuestionPayload) Evaluations() []entities.AnswerEvaluation {
	out := make([]entities.AnswerEvaluation, 0, len(p.Questions))
	for i, w := range p.Questions {
		eval := w.toEvaluation("")
		if eval.QuestionNumber <= 0 {
			eval.QuestionNumber = i + 1
		}
		out = append(out, eval)
	}
	return out
}

// CategoryGroup is one category of a legacy grouped payload
type CategoryGroup struct {
	Name      string
	Questions []WireEvaluation
}

// LegacyGroupedPayload groups questions by category name. Category order is
// the order the keys appeared in the document.
type LegacyGroupedPayload struct {
	Categories []CategoryGroup
}

// Shape implements Payload
func (LegacyGroupedPayload) Shape() string { return "legacy_grouped" }

// Evaluations implements Payload. Questions are numbered sequentially in
// category-then-list order; upstream numbering is ignored.
func (p LegacyGroupedPayload) Evaluations() []entities.AnswerEvaluation {
	var out []entities.AnswerEvaluation
	n := 0
	for _, group := range p.Categories {
		for _, w := range group.Questions {
			n++
			eval := w.toEvaluation(group.Name)
			eval.QuestionNumber = n
			out = append(out, eval)
		}
	}
	return out
}

// WireEvaluation is a per-question object as the scoring model returns it.
// Both snake_case and camelCase keys are accepted.
type WireEvaluation struct {
	QuestionNumber    int
	QuestionText      string
	Criterion         string
	Score             float64
	Completeness      string
	Answered          *bool
	CandidateResponse string
	Strengths         []string
	Gaps              []string
	Reasoning         string
}

type wireFields struct {
	QuestionNumber      *int     `json:"question_number"`
	QuestionNumberCamel *int     `json:"questionNumber"`
	QuestionText        string   `json:"question_text"`
	QuestionTextCamel   string   `json:"questionText"`
	Question            string   `json:"question"`
	Criterion           string   `json:"criterion"`
	Category            string   `json:"category"`
	Score               *float64 `json:"score"`
	Completeness        string   `json:"completeness"`
	Answered            *bool    `json:"answered"`
	CandidateResponse   string   `json:"candidate_response"`
	CandidateRespCamel  string   `json:"candidateResponse"`
	Answer              string   `json:"answer"`
	Strengths           []string `json:"strengths"`
	Gaps                []string `json:"gaps"`
	Weaknesses          []string `json:"weaknesses"`
	Reasoning           string   `json:"reasoning"`
	Feedback            string   `json:"feedback"`
}

// UnmarshalJSON implements json.Unmarshaler
func (w *WireEvaluation) UnmarshalJSON(data []byte) error {
	var f wireFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*w = WireEvaluation{
		QuestionText:      firstNonEmpty(f.QuestionText, f.QuestionTextCamel, f.Question),
		Criterion:         firstNonEmpty(f.Criterion, f.Category),
		Completeness:      f.Completeness,
		Answered:          f.Answered,
		CandidateResponse: firstNonEmpty(f.CandidateResponse, f.CandidateRespCamel, f.Answer),
		Strengths:         f.Strengths,
		Gaps:              f.Gaps,
		Reasoning:         firstNonEmpty(f.Reasoning, f.Feedback),
	}
	if w.Gaps == nil {
		w.Gaps = f.Weaknesses
	}
	switch {
	case f.QuestionNumber != nil:
		w.QuestionNumber = *f.QuestionNumber
	case f.QuestionNumberCamel != nil:
		w.QuestionNumber = *f.QuestionNumberCamel
	}
	if f.Score != nil {
		w.Score = *f.Score
	}
	return nil
}

func (w WireEvaluation) toEvaluation(category string) entities.AnswerEvaluation {
	criterion := w.Criterion
	if category != "" {
		criterion = category
	}
	if strings.TrimSpace(criterion) == "" {
		criterion = entities.CriterionGeneral
	}
	answered := strings.TrimSpace(w.CandidateResponse) != ""
	if w.Answered != nil {
		answered = *w.Answered
	}
	return entities.AnswerEvaluation{
		QuestionNumber:    w.QuestionNumber,
		QuestionText:      strings.TrimSpace(w.QuestionText),
		Criterion:         strings.TrimSpace(criterion),
		Score:             w.Score,
		Completeness:      entities.ParseCompleteness(w.Completeness, answered),
		Answered:          answered,
		CandidateResponse: w.CandidateResponse,
		Strengths:         nonNil(w.Strengths),
		Gaps:              nonNil(w.Gaps),
		Reasoning:         w.Reasoning,
		Source:            entities.SourceBatch,
	}
}

// DecodePayload detects the shape of a raw model response and decodes it.
// Markdown code fences around the JSON are tolerated.
func DecodePayload(raw string) (Payload, error) {
	content := ai.ExtractJSON(raw)
	if content == "" {
		return nil, fmt.Errorf("empty payload: %w", ErrUnknownPayload)
	}

	if strings.HasPrefix(content, "[") {
		var questions []WireEvaluation
		if err := json.Unmarshal([]byte(content), &questions); err != nil {
			return nil, fmt.Errorf("failed to parse question list: %w", err)
		}
		return FlatQuestionPayload{Questions: questions}, nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse payload: %w", err)
	}

	if categories, ok := doc["categories"]; ok {
		groups, err := decodeOrderedCategories(categories)
		if err != nil {
			return nil, err
		}
		return LegacyGroupedPayload{Categories: groups}, nil
	}

	if questions, ok := doc["questions"]; ok {
		var list []WireEvaluation
		if err := json.Unmarshal(questions, &list); err != nil {
			return nil, fmt.Errorf("failed to parse questions: %w", err)
		}
		return FlatQuestionPayload{Questions: list}, nil
	}

	return nil, ErrUnknownPayload
}

// decodeOrderedCategories walks the object token by token so category
// order matches the document.
func decodeOrderedCategories(data json.RawMessage) ([]CategoryGroup, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("categories must be an object: %w", ErrUnknownPayload)
	}

	var groups []CategoryGroup
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read category name: %w", err)
		}
		name, _ := keyTok.(string)
		var questions []WireEvaluation
		if err := dec.Decode(&questions); err != nil {
			return nil, fmt.Errorf("failed to parse category %q: %w", name, err)
		}
		groups = append(groups, CategoryGroup{Name: name, Questions: questions})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to close categories: %w", err)
	}
	return groups, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
