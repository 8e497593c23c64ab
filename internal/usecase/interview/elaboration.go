package interview

import "strings"

const (
	// SufficientWordCount is the accumulated length at which an answer needs no prompt
	SufficientWordCount = 80
	// MaxElaborationPrompts caps the prompts issued for one question
	MaxElaborationPrompts = 2

	FirstElaborationPrompt  = "Your answer seems brief. Could you please elaborate more?"
	SecondElaborationPrompt = "Could you please explain it a bit more?"
)

var elaborationPrompts = [MaxElaborationPrompts]string{FirstElaborationPrompt, SecondElaborationPrompt}

// ElaborationState tracks the answer given to one question
type ElaborationState struct {
	QuestionText   string
	CombinedAnswer string
	PromptCount    int
}

// Observation is the result of observing one candidate utterance
type Observation struct {
	Accumulated string
	WordCount   int
	// Prompt is empty when no elaboration should be requested
	Prompt string
}

// ElaborationController decides whether a thin answer warrants a scripted prompt
type ElaborationController struct {
	state ElaborationState
}

// Observe appends utterance to the answer of question. A different question
// text replaces the state.
func (c *ElaborationController) Observe(question, utterance string) Observation {
	if c.state.QuestionText != question {
		c.state = ElaborationState{QuestionText: question}
	}

	if trimmed := strings.TrimSpace(utterance); trimmed != "" {
		if c.state.CombinedAnswer == "" {
			c.state.CombinedAnswer = trimmed
		} else {
			c.state.CombinedAnswer += " " + trimmed
		}
	}

	obs := Observation{
		Accumulated: c.state.CombinedAnswer,
		WordCount:   len(strings.Fields(c.state.CombinedAnswer)),
	}
	if obs.WordCount < SufficientWordCount && c.state.PromptCount < MaxElaborationPrompts {
		obs.Prompt = elaborationPrompts[c.state.PromptCount]
		c.state.PromptCount++
	}
	return obs
}

// State returns a copy of the current state
func (c *ElaborationController) State() ElaborationState {
	return c.state
}
