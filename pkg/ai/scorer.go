package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCredential is returned when the scoring service rejects the tenant credential
var ErrInvalidCredential = errors.New("scoring credential rejected")

// ErrEmptyResponse is returned when the model produced no content
var ErrEmptyResponse = errors.New("empty response from scoring model")

// Completer sends one prompt to a hosted model and returns its raw text
type Completer interface {
	Complete(ctx context.Context, credential, system, prompt string) (string, error)
	Provider() string
}

// AnswerRequest asks for the score of one candidate answer
type AnswerRequest struct {
	Question       string
	Answer         string
	Criterion      string
	QuestionNumber int
	TotalQuestions int
	JobContext     string
	Credential     string
}

// AnswerScore is the model's verdict on one answer
type AnswerScore struct {
	Score        float64  `json:"score"`
	Completeness string   `json:"completeness"`
	Answered     bool     `json:"answered"`
	Strengths    []string `json:"strengths"`
	Gaps         []string `json:"gaps"`
	Reasoning    string   `json:"reasoning"`
}

// FlowRequest asks whether an answer stays on topic
type FlowRequest struct {
	Question   string
	Answer     string
	Credential string
}

// Flow recommendations
const (
	FlowContinue = "continue"
	FlowRedirect = "redirect"
)

// FlowDecision is the flow classification of an answer
type FlowDecision struct {
	Recommendation string  `json:"recommendation"`
	Confidence     float64 `json:"confidence"`
	Reason         string  `json:"reason"`
}

// TranscriptQuestion is a configured question sent with a batch request
type TranscriptQuestion struct {
	Number    int    `json:"question_number"`
	Text      string `json:"question_text"`
	Criterion string `json:"criterion"`
}

// TranscriptRequest asks for a batch evaluation of a whole interview
type TranscriptRequest struct {
	Questions  []TranscriptQuestion
	Transcript string
	JobContext string
	Credential string
}

// Scorer is the hosted scoring service
type Scorer interface {
	ScoreAnswer(ctx context.Context, req AnswerRequest) (*AnswerScore, error)
	ClassifyFlow(ctx context.Context, req FlowRequest) (*FlowDecision, error)
	// ScoreTranscript returns the raw model payload; callers normalize it
	ScoreTranscript(ctx context.Context, req TranscriptRequest) (string, error)
	Provider() string
}

// PromptScorer implements Scorer on top of any Completer
type PromptScorer struct {
	completer Completer
}

// NewScorer wraps a completer into a Scorer
func NewScorer(completer Completer) *PromptScorer {
	return &PromptScorer{completer: completer}
}

// Provider returns the name of the underlying provider
func (s *PromptScorer) Provider() string {
	return s.completer.Provider()
}

// ScoreAnswer implements Scorer
func (s *PromptScorer) ScoreAnswer(ctx context.Context, req AnswerRequest) (*AnswerScore, error) {
	raw, err := s.completer.Complete(ctx, req.Credential, answerSystemPrompt, buildAnswerPrompt(req))
	if err != nil {
		return nil, err
	}

	var score AnswerScore
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &score); err != nil {
		return nil, fmt.Errorf("failed to parse answer score: %w", err)
	}
	if score.Score < 0 {
		score.Score = 0
	}
	if score.Score > 100 {
		score.Score = 100
	}
	score.Completeness = strings.ToLower(strings.TrimSpace(score.Completeness))
	return &score, nil
}

// ClassifyFlow implements Scorer
func (s *PromptScorer) ClassifyFlow(ctx context.Context, req FlowRequest) (*FlowDecision, error) {
	raw, err := s.completer.Complete(ctx, req.Credential, flowSystemPrompt, buildFlowPrompt(req))
	if err != nil {
		return nil, err
	}

	var decision FlowDecision
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &decision); err != nil {
		return nil, fmt.Errorf("failed to parse flow decision: %w", err)
	}
	decision.Recommendation = strings.ToLower(strings.TrimSpace(decision.Recommendation))
	if decision.Recommendation != FlowRedirect {
		decision.Recommendation = FlowContinue
	}
	return &decision, nil
}

// ScoreTranscript implements Scorer
func (s *PromptScorer) ScoreTranscript(ctx context.Context, req TranscriptRequest) (string, error) {
	raw, err := s.completer.Complete(ctx, req.Credential, transcriptSystemPrompt, buildTranscriptPrompt(req))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptyResponse
	}
	return raw, nil
}
