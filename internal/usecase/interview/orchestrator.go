package interview

import (
	"fmt"
	"strings"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
	"github.com/johnquangdev/interview-assistant/internal/usecase/scoring"
	"github.com/johnquangdev/interview-assistant/pkg/ai"
)

// RedirectConfidence is the minimum classifier confidence for a redirect
const RedirectConfidence = 80

// InstructionType is the control message type sent to the conversational agent
type InstructionType string

const (
	InstructionSessionUpdate  InstructionType = "session.update"
	InstructionResponseCreate InstructionType = "response.create"
)

// InstructionKind tells why an instruction was emitted
type InstructionKind string

const (
	KindConfigure   InstructionKind = "configure"
	KindElaboration InstructionKind = "elaboration"
	KindRedirect    InstructionKind = "redirect"
)

// Instruction is an outbound control message for the conversational agent
type Instruction struct {
	Type      InstructionType     `json:"type"`
	Kind      InstructionKind     `json:"kind"`
	Text      string              `json:"instructions"`
	Questions []entities.Question `json:"questions,omitempty"`
}

// FlowCheck asks the classifier whether an answer stays on topic
type FlowCheck struct {
	Question   string
	Answer     string
	Credential string
}

// Effects are the side effects the actor must carry out after a state change
type Effects struct {
	PhaseChanged bool
	Instructions []Instruction
	Evaluate     *PendingEvaluation
	Classify     *FlowCheck
	// Skipped is set when the evaluation guards rejected the answer
	Skipped *Outcome
}

var (
	candidateQuestionCues = []string{
		"do you have any questions",
		"any questions for me",
		"anything you would like to ask",
		"anything you'd like to ask",
	}
	closingCues = []string{
		"that concludes",
		"this concludes",
		"thank you for your time",
		"thanks for your time",
		"end of our interview",
		"end of the interview",
	}
	setupPhrases = []string{"audio", "video", "hear", "see me", "setup", "working fine"}
	disfluencies = map[string]bool{
		"um": true, "uh": true, "uhm": true, "umm": true, "hmm": true, "mhm": true,
		"mm": true, "er": true, "erm": true, "ah": true, "oh": true,
	}
)

// minUtteranceLength is the length a candidate utterance must exceed to be analyzed
const minUtteranceLength = 5

// Orchestrator drives the phase machine and question tracking of one session
type Orchestrator struct {
	matcher   *QuestionMatcher
	evaluator *Evaluator
	persona   string
}

// NewOrchestrator creates the orchestrator of a session
func NewOrchestrator(matcher *QuestionMatcher, evaluator *Evaluator, persona string) *Orchestrator {
	return &Orchestrator{matcher: matcher, evaluator: evaluator, persona: persona}
}

// HandleSessionReady configures the agent once media and identity setup succeeded
func (o *Orchestrator) HandleSessionReady(st *SessionState) Effects {
	if st.Ready {
		return Effects{}
	}
	st.Ready = true
	return Effects{Instructions: []Instruction{o.configureInstruction(st)}}
}

// HandleTransportConnected starts the greeting
func (o *Orchestrator) HandleTransportConnected(st *SessionState) Effects {
	return Effects{PhaseChanged: st.Advance(entities.PhaseGreeting)}
}

// HandleAgentUtterance tracks phase cues and the current question
func (o *Orchestrator) HandleAgentUtterance(st *SessionState, text string) Effects {
	if o.questionsExhausted(st) {
		lower := strings.ToLower(text)
		if containsAny(lower, candidateQuestionCues) {
			return Effects{PhaseChanged: st.Advance(entities.PhaseCandidateQuestions)}
		}
		if containsAny(lower, closingCues) {
			return Effects{PhaseChanged: st.Advance(entities.PhaseClosing)}
		}
	}
	if !st.Phase.Before(entities.PhaseCandidateQuestions) {
		return Effects{}
	}

	tracked, ok := o.matcher.Track(text)
	if !ok {
		return Effects{}
	}

	q := tracked.Question
	if tracked.AdHoc {
		if o.allConfiguredTracked(st) {
			return Effects{PhaseChanged: st.Advance(entities.PhaseCandidateQuestions)}
		}
		st.Current = &q
		return Effects{}
	}

	st.Current = &q
	st.Tracked[q.Index] = true
	return Effects{PhaseChanged: st.Advance(entities.PhaseQuestions)}
}

// HandleCandidateUtterance runs elaboration, live scoring and flow
// classification on an answer
func (o *Orchestrator) HandleCandidateUtterance(st *SessionState, text string) Effects {
	if !st.Phase.Before(entities.PhaseCandidateQuestions) || st.Current == nil {
		return Effects{}
	}
	if IsSetupQuestion(st.Current.Text) || IsTrivialUtterance(text) {
		return Effects{}
	}

	var fx Effects
	q := *st.Current

	obs := st.Elaboration.Observe(q.Text, text)
	if obs.Prompt != "" {
		fx.Instructions = append(fx.Instructions, Instruction{
			Type: InstructionResponseCreate,
			Kind: KindElaboration,
			Text: obs.Prompt,
		})
	}

	pending, outcome := o.evaluator.Begin(st, q, obs.Accumulated)
	if pending != nil {
		fx.Evaluate = pending
	} else {
		fx.Skipped = &outcome
	}

	if st.Credential != "" && !st.Classifying && !st.Redirected[q.Text] {
		st.Classifying = true
		fx.Classify = &FlowCheck{Question: q.Text, Answer: obs.Accumulated, Credential: st.Credential}
	}
	return fx
}

// HandleEvaluationResult applies a finished live evaluation
func (o *Orchestrator) HandleEvaluationResult(st *SessionState, p *PendingEvaluation, outcome Outcome) Outcome {
	return o.evaluator.Complete(st, p, outcome)
}

// HandleFlowResult emits at most one redirect per question. It never touches evaluations.
func (o *Orchestrator) HandleFlowResult(st *SessionState, check *FlowCheck, decision *ai.FlowDecision) Effects {
	st.Classifying = false
	if decision == nil || decision.Recommendation != ai.FlowRedirect || decision.Confidence < RedirectConfidence {
		return Effects{}
	}
	if st.Redirected[check.Question] || st.Current == nil || st.Current.Text != check.Question {
		return Effects{}
	}
	if !st.Phase.Before(entities.PhaseCandidateQuestions) {
		return Effects{}
	}

	st.Redirected[check.Question] = true
	return Effects{Instructions: []Instruction{{
		Type: InstructionResponseCreate,
		Kind: KindRedirect,
		Text: fmt.Sprintf("The candidate's answer has drifted off topic. Politely acknowledge it and steer them back to the original question: %q", check.Question),
	}}}
}

// HandleSessionEnd closes the phase machine
func (o *Orchestrator) HandleSessionEnd(st *SessionState) Effects {
	return Effects{PhaseChanged: st.Advance(entities.PhaseClosing)}
}

func (o *Orchestrator) configureInstruction(st *SessionState) Instruction {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(o.persona))
	if len(st.Questions) > 0 {
		b.WriteString("\n\nAsk the following questions one at a time, in order, and wait for the candidate to finish answering each one:\n")
		for _, q := range st.Questions {
			fmt.Fprintf(&b, "%d. %s\n", q.Index, q.Text)
		}
	}
	return Instruction{
		Type:      InstructionSessionUpdate,
		Kind:      KindConfigure,
		Text:      strings.TrimSpace(b.String()),
		Questions: st.Questions,
	}
}

// questionsExhausted reports whether phase cues may end the questions phase.
// Courtesy phrases during setup or greeting never count.
func (o *Orchestrator) questionsExhausted(st *SessionState) bool {
	switch st.Phase {
	case entities.PhaseQuestions:
		return o.allConfiguredTracked(st)
	case entities.PhaseCandidateQuestions:
		return true
	default:
		return false
	}
}

func (o *Orchestrator) allConfiguredTracked(st *SessionState) bool {
	scorable := 0
	for _, q := range st.Questions {
		if scoring.IsClosingMessage(q.Text) {
			continue
		}
		scorable++
		if !st.Tracked[q.Index] {
			return false
		}
	}
	return scorable > 0
}

// IsSetupQuestion reports whether a question only checks the audio/video setup
func IsSetupQuestion(question string) bool {
	return containsAny(strings.ToLower(question), setupPhrases)
}

// IsTrivialUtterance reports whether an utterance is a disfluency or too short to analyze
func IsTrivialUtterance(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= minUtteranceLength {
		return true
	}
	for _, word := range strings.Fields(strings.ToLower(trimmed)) {
		if !disfluencies[strings.Trim(word, ".,!?…-")] {
			return false
		}
	}
	return true
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
