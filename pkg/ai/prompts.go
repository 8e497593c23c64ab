package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

const answerSystemPrompt = `You evaluate one answer given in a job interview.
Respond with JSON only:
{"score": 0-100, "completeness": "complete|partial|incomplete", "answered": true|false,
 "strengths": ["..."], "gaps": ["..."], "reasoning": "..."}`

const flowSystemPrompt = `You decide whether a candidate's answer addresses the interview question.
Respond with JSON only:
{"recommendation": "continue|redirect", "confidence": 0-100, "reason": "..."}
Recommend "redirect" only when the answer is clearly off topic.`

const transcriptSystemPrompt = `You evaluate a complete job interview transcript question by question.
Respond with JSON only:
{"questions": [{"question_number": 1, "question_text": "...", "criterion": "...", "score": 0-100,
 "completeness": "complete|partial|incomplete", "answered": true|false,
 "candidate_response": "full answer text", "strengths": ["..."], "gaps": ["..."], "reasoning": "..."}]}
Include every configured question. Mark questions the candidate never answered with "answered": false.`

func buildAnswerPrompt(req AnswerRequest) string {
	var b strings.Builder
	if req.JobContext != "" {
		fmt.Fprintf(&b, "Role context:\n%s\n\n", req.JobContext)
	}
	criterion := req.Criterion
	if criterion == "" {
		criterion = "General"
	}
	fmt.Fprintf(&b, "Question %d of %d (criterion: %s):\n%s\n\n", req.QuestionNumber, req.TotalQuestions, criterion, req.Question)
	fmt.Fprintf(&b, "Candidate answer:\n%s\n", req.Answer)
	return b.String()
}

func buildFlowPrompt(req FlowRequest) string {
	return fmt.Sprintf("Question:\n%s\n\nCandidate answer:\n%s\n", req.Question, req.Answer)
}

func buildTranscriptPrompt(req TranscriptRequest) string {
	var b strings.Builder
	if req.JobContext != "" {
		fmt.Fprintf(&b, "Role context:\n%s\n\n", req.JobContext)
	}
	questions, _ := json.Marshal(req.Questions)
	fmt.Fprintf(&b, "Configured questions:\n%s\n\n", questions)
	fmt.Fprintf(&b, "Transcript:\n%s\n", req.Transcript)
	return b.String()
}
