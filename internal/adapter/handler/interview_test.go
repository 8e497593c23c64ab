package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	apperrors "github.com/johnquangdev/interview-assistant/errors"
	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
	interviewUsecase "github.com/johnquangdev/interview-assistant/internal/usecase/interview"
)

type envelope struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
	Data    json.RawMessage   `json:"data"`
}

func newTestEcho(svc *fakeService) *echo.Echo {
	e := echo.New()
	e.Validator = testValidator
	NewRouter(nil, nil, NewInterviewHandler(svc, nil), nil, nil).Setup(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestInterview_Create(t *testing.T) {
	svc := newFakeService()
	var got interviewUsecase.CreateInput
	svc.createFn = func(in interviewUsecase.CreateInput) (*interviewUsecase.CreateOutput, error) {
		got = in
		session := entities.NewInterviewSession(in.TenantID, in.JobID, entities.NumberQuestions(in.Questions), in.Duration)
		return &interviewUsecase.CreateOutput{
			Session:        session,
			LiveKitURL:     "wss://livekit.test",
			CandidateToken: "candidate-token",
			StreamTicket:   "ticket",
			ExpiresAt:      time.Now().Add(time.Hour),
		}, nil
	}
	e := newTestEcho(svc)

	rec, env := do(t, e, http.MethodPost, "/v1/interviews", `{
		"tenant_id": "acme",
		"job_id": "backend",
		"duration_minutes": 20,
		"questions": [{"text": "Why Go?", "criterion": "Technical Skills"}]
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, "acme", got.TenantID)
	assert.Equal(t, 20*time.Minute, got.Duration)
	require.Len(t, got.Questions, 1)
	assert.Equal(t, "Technical Skills", got.Questions[0].Criterion)

	var data struct {
		Interview struct {
			TenantID  string `json:"tenant_id"`
			Phase     string `json:"phase"`
			Questions []entities.Question
		} `json:"interview"`
		CandidateToken string `json:"candidate_token"`
		StreamTicket   string `json:"stream_ticket"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "acme", data.Interview.TenantID)
	assert.Equal(t, "setup", data.Interview.Phase)
	assert.Equal(t, "candidate-token", data.CandidateToken)
	assert.Equal(t, "ticket", data.StreamTicket)
}

func TestInterview_CreateValidation(t *testing.T) {
	e := newTestEcho(newFakeService())

	rec, env := do(t, e, http.MethodPost, "/v1/interviews", `{"job_id": "backend"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int(apperrors.ErrorCode_INVALID_ARGUMENT), env.Code)

	rec, _ = do(t, e, http.MethodPost, "/v1/interviews", `{"tenant_id": "acme", "questions": [{"text": "Why?", "criterion": "!!"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, e, http.MethodPost, "/v1/interviews", `{"tenant_id": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int(apperrors.ErrorCode_INVALID_PAYLOAD), env.Code)
}

func TestInterview_GetWithLiveState(t *testing.T) {
	svc := newFakeService()
	svc.getFn = func(id uuid.UUID) (*interviewUsecase.SessionView, error) {
		session := entities.NewInterviewSession("acme", "", nil, time.Minute)
		session.ID = id
		return &interviewUsecase.SessionView{
			Session: session,
			Live:    true,
			State: &interviewUsecase.Snapshot{
				Phase:           entities.PhaseQuestions,
				CurrentQuestion: "Why Go?",
				Counter:         1,
			},
		}, nil
	}
	e := newTestEcho(svc)

	id := uuid.New()
	rec, env := do(t, e, http.MethodGet, "/v1/interviews/"+id.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		ID    string `json:"id"`
		Phase string `json:"phase"`
		Live  bool   `json:"live"`
		State struct {
			CurrentQuestion string `json:"current_question"`
			EvaluationCount int    `json:"evaluation_count"`
		} `json:"state"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, id.String(), data.ID)
	assert.Equal(t, "questions", data.Phase)
	assert.True(t, data.Live)
	assert.Equal(t, "Why Go?", data.State.CurrentQuestion)
	assert.Equal(t, 1, data.State.EvaluationCount)
}

func TestInterview_InvalidID(t *testing.T) {
	e := newTestEcho(newFakeService())

	rec, env := do(t, e, http.MethodGet, "/v1/interviews/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int(apperrors.ErrorCode_INVALID_ARGUMENT), env.Code)
}

func TestInterview_DispatchEvents(t *testing.T) {
	svc := newFakeService()
	svc.dispatchFn = func(id uuid.UUID, ev interviewUsecase.Event) ([]interviewUsecase.Instruction, error) {
		if ev.Type == interviewUsecase.EventSessionReady {
			return []interviewUsecase.Instruction{{Type: interviewUsecase.InstructionSessionUpdate, Kind: interviewUsecase.KindConfigure, Text: "persona"}}, nil
		}
		return nil, nil
	}
	svc.queued = []interviewUsecase.Instruction{{Type: interviewUsecase.InstructionResponseCreate, Kind: interviewUsecase.KindRedirect, Text: "redirect"}}
	e := newTestEcho(svc)

	rec, env := do(t, e, http.MethodPost, "/v1/interviews/"+uuid.NewString()+"/events", `{"events": [
		{"type": "session.ready"},
		{"type": "candidate.transcript.done", "text": "I like Go"}
	]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data struct {
		Instructions []struct {
			Type         string `json:"type"`
			Kind         string `json:"kind"`
			Instructions string `json:"instructions"`
		} `json:"instructions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Instructions, 2)
	assert.Equal(t, "session.update", data.Instructions[0].Type)
	assert.Equal(t, "redirect", data.Instructions[1].Kind)

	events := svc.recorded()
	require.Len(t, events, 2)
	assert.Equal(t, "I like Go", events[1].Text)
}

func TestInterview_DispatchEventsStopsOnError(t *testing.T) {
	svc := newFakeService()
	svc.dispatchFn = func(id uuid.UUID, ev interviewUsecase.Event) ([]interviewUsecase.Instruction, error) {
		return nil, apperrors.ErrInterviewNotLive(id.String())
	}
	e := newTestEcho(svc)

	rec, env := do(t, e, http.MethodPost, "/v1/interviews/"+uuid.NewString()+"/events",
		`{"events": [{"type": "session.ready"}, {"type": "session.end"}]}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, int(apperrors.ErrorCode_INTERVIEW_NOT_LIVE), env.Code)
	assert.Len(t, svc.recorded(), 1)

	rec, _ = do(t, e, http.MethodPost, "/v1/interviews/"+uuid.NewString()+"/events", `{"events": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInterview_FinalizeErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   apperrors.ErrorCode
	}{
		{"incomplete", apperrors.ErrInterviewIncomplete(0, 2), http.StatusConflict, apperrors.ErrorCode_INTERVIEW_INCOMPLETE},
		{"configuration", apperrors.ErrInterviewConfiguration("no scoring credential"), http.StatusUnprocessableEntity, apperrors.ErrorCode_INTERVIEW_CONFIGURATION_ERROR},
		{"completed", apperrors.ErrInterviewAlreadyCompleted("x"), http.StatusConflict, apperrors.ErrorCode_INTERVIEW_ALREADY_COMPLETED},
		{"unexpected", assert.AnError, http.StatusInternalServerError, apperrors.ErrorCode_INTERNAL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeService()
			svc.finalizeFn = func(id uuid.UUID) (*entities.EvaluationReport, error) { return nil, tt.err }
			e := newTestEcho(svc)

			rec, env := do(t, e, http.MethodPost, "/v1/interviews/"+uuid.NewString()+"/finalize", "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, int(tt.code), env.Code)
		})
	}
}

func TestInterview_FinalizeIncompleteDetails(t *testing.T) {
	svc := newFakeService()
	svc.finalizeFn = func(id uuid.UUID) (*entities.EvaluationReport, error) {
		return nil, apperrors.ErrInterviewIncomplete(1, 3)
	}
	e := newTestEcho(svc)

	_, env := do(t, e, http.MethodPost, "/v1/interviews/"+uuid.NewString()+"/finalize", "")
	assert.Equal(t, "1", env.Details["answered"])
	assert.Equal(t, "3", env.Details["required"])
}

func TestInterview_Report(t *testing.T) {
	svc := newFakeService()
	svc.reportFn = func(id uuid.UUID) (*entities.EvaluationReport, error) {
		return &entities.EvaluationReport{
			ID:           uuid.New(),
			SessionID:    id,
			OverallScore: 68,
			Result:       "pass",
			Source:       entities.SourceBatch,
			Score:        datatypes.NewJSONType(entities.AggregatedScore{OverallScore: 68, Recommendation: entities.RecommendationHire}),
		}, nil
	}
	e := newTestEcho(svc)

	rec, env := do(t, e, http.MethodGet, "/v1/interviews/"+uuid.NewString()+"/report", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		OverallScore int                         `json:"overall_score"`
		Result       string                      `json:"result"`
		Score        entities.AggregatedScore    `json:"score"`
		Evaluations  []entities.AnswerEvaluation `json:"evaluations"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 68, data.OverallScore)
	assert.Equal(t, "pass", data.Result)
	assert.Equal(t, entities.RecommendationHire, data.Score.Recommendation)
	assert.NotNil(t, data.Evaluations)
}

func TestInterview_TranscriptAndEnd(t *testing.T) {
	svc := newFakeService()
	e := newTestEcho(svc)
	id := uuid.New()

	rec, env := do(t, e, http.MethodGet, "/v1/interviews/"+id.String()+"/transcript", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		Turns []struct {
			Role string `json:"role"`
			Text string `json:"text"`
		} `json:"turns"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Turns, 2)
	assert.Equal(t, "candidate", data.Turns[1].Role)

	rec, _ = do(t, e, http.MethodPost, "/v1/interviews/"+id.String()+"/end", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uuid.UUID{id}, svc.endedIDs)
}

func TestHealthCheck(t *testing.T) {
	e := newTestEcho(newFakeService())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
