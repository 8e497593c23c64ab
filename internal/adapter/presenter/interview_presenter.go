package presenter

import (
	"github.com/johnquangdev/interview-assistant/internal/adapter/dto/interview"
	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
	interviewUsecase "github.com/johnquangdev/interview-assistant/internal/usecase/interview"
)

// ToInterviewResponse converts a session entity to InterviewResponse DTO
func ToInterviewResponse(s *entities.InterviewSession) *interview.InterviewResponse {
	if s == nil {
		return nil
	}

	questions := []entities.Question(s.Questions)
	if questions == nil {
		questions = []entities.Question{}
	}

	return &interview.InterviewResponse{
		ID:              s.ID.String(),
		TenantID:        s.TenantID,
		JobID:           s.JobID,
		CandidateName:   s.CandidateName,
		Phase:           string(s.Phase),
		Questions:       questions,
		LivekitRoomName: s.LivekitRoomName,
		RecordingURL:    s.RecordingURL,
		DurationSeconds: s.DurationSeconds,
		Completed:       s.Completed,
		StartedAt:       s.StartedAt,
		EndedAt:         s.EndedAt,
		CompletedAt:     s.CompletedAt,
		CreatedAt:       s.CreatedAt,
	}
}

// ToSessionViewResponse converts a session view with its live state
func ToSessionViewResponse(v *interviewUsecase.SessionView) *interview.InterviewResponse {
	if v == nil {
		return nil
	}
	resp := ToInterviewResponse(v.Session)
	if resp == nil {
		return nil
	}
	resp.Live = v.Live

	if st := v.State; st != nil {
		resp.Phase = string(st.Phase)
		evals := st.Evaluations
		if evals == nil {
			evals = []entities.AnswerEvaluation{}
		}
		resp.State = &interview.LiveStateResponse{
			CurrentQuestion:     st.CurrentQuestion,
			Criterion:           st.Criterion,
			EvaluationCount:     st.Counter,
			EvaluationInFlight:  st.InFlight,
			Turns:               st.Turns,
			ElaborationPrompts:  st.Elaboration.PromptCount,
			AccumulatedResponse: st.Elaboration.CombinedAnswer,
			Evaluations:         evals,
		}
	}
	return resp
}

// ToCreateInterviewResponse converts the create output
func ToCreateInterviewResponse(out *interviewUsecase.CreateOutput) *interview.CreateInterviewResponse {
	if out == nil {
		return nil
	}
	return &interview.CreateInterviewResponse{
		Interview:      ToInterviewResponse(out.Session),
		LivekitURL:     out.LiveKitURL,
		CandidateToken: out.CandidateToken,
		AgentToken:     out.AgentToken,
		StreamTicket:   out.StreamTicket,
		ExpiresAt:      out.ExpiresAt,
	}
}

// ToInstructionResponse converts an outbound instruction
func ToInstructionResponse(in interviewUsecase.Instruction) interview.InstructionResponse {
	return interview.InstructionResponse{
		Type:         string(in.Type),
		Kind:         string(in.Kind),
		Instructions: in.Text,
		Questions:    in.Questions,
	}
}

// ToInstructionResponses converts a list of instructions, never returning nil
func ToInstructionResponses(list []interviewUsecase.Instruction) []interview.InstructionResponse {
	out := make([]interview.InstructionResponse, 0, len(list))
	for _, in := range list {
		out = append(out, ToInstructionResponse(in))
	}
	return out
}

// ToTranscriptResponse converts persisted transcript turns
func ToTranscriptResponse(sessionID string, turns []*entities.TranscriptTurn) *interview.TranscriptResponse {
	resp := &interview.TranscriptResponse{
		SessionID: sessionID,
		Turns:     make([]interview.TranscriptTurnResponse, 0, len(turns)),
	}
	for _, t := range turns {
		resp.Turns = append(resp.Turns, interview.TranscriptTurnResponse{
			Sequence:  t.Sequence,
			Role:      string(t.Role),
			Text:      t.Text,
			Timestamp: t.Timestamp,
		})
	}
	return resp
}

// ToReportResponse converts a stored evaluation report
func ToReportResponse(r *entities.EvaluationReport) *interview.ReportResponse {
	if r == nil {
		return nil
	}
	evals := []entities.AnswerEvaluation(r.Evaluations)
	if evals == nil {
		evals = []entities.AnswerEvaluation{}
	}
	return &interview.ReportResponse{
		SessionID:    r.SessionID.String(),
		OverallScore: r.OverallScore,
		Result:       r.Result,
		Source:       string(r.Source),
		Fallback:     r.Fallback,
		Score:        r.Score.Data(),
		Evaluations:  evals,
		Rationale:    r.Rationale,
		ArchiveKey:   r.ArchiveKey,
		CreatedAt:    r.CreatedAt,
	}
}
