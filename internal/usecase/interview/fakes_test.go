package interview

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
	"github.com/johnquangdev/interview-assistant/pkg/ai"
)

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entities.InterviewSession
	reports  map[uuid.UUID]*entities.EvaluationReport
	phases   []entities.InterviewPhase
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		sessions: make(map[uuid.UUID]*entities.InterviewSession),
		reports:  make(map[uuid.UUID]*entities.EvaluationReport),
	}
}

func (f *fakeSessions) Create(ctx context.Context, session *entities.InterviewSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *session
	f.sessions[session.ID] = &cp
	return nil
}

func (f *fakeSessions) FindByID(ctx context.Context, id uuid.UUID) (*entities.InterviewSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessions) FindByRoomName(ctx context.Context, roomName string) (*entities.InterviewSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.LivekitRoomName == roomName {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeSessions) UpdatePhase(ctx context.Context, id uuid.UUID, phase entities.InterviewPhase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok {
		s.Phase = phase
	}
	f.phases = append(f.phases, phase)
	return nil
}

func (f *fakeSessions) MarkEnded(ctx context.Context, id uuid.UUID, endedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok && s.EndedAt == nil {
		s.EndedAt = &endedAt
		s.Phase = entities.PhaseClosing
	}
	return nil
}

func (f *fakeSessions) SetRecording(ctx context.Context, id uuid.UUID, egressID, recordingURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok {
		if egressID != "" {
			s.EgressID = egressID
		}
		if recordingURL != "" {
			s.RecordingURL = recordingURL
		}
	}
	return nil
}

func (f *fakeSessions) CompleteWithReport(ctx context.Context, report *entities.EvaluationReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[report.SessionID]
	if !ok {
		return entities.ErrSessionNotFound
	}
	if err := s.MarkCompleted(); err != nil {
		return err
	}
	f.reports[report.SessionID] = report
	return nil
}

func (f *fakeSessions) FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*entities.EvaluationReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reports[sessionID], nil
}

func (f *fakeSessions) get(id uuid.UUID) entities.InterviewSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.sessions[id]
}

type fakeTranscripts struct {
	mu    sync.Mutex
	turns map[uuid.UUID][]*entities.TranscriptTurn
}

func newFakeTranscripts() *fakeTranscripts {
	return &fakeTranscripts{turns: make(map[uuid.UUID][]*entities.TranscriptTurn)}
}

func (f *fakeTranscripts) Append(ctx context.Context, turn *entities.TranscriptTurn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.turns[turn.SessionID] {
		if t.Sequence == turn.Sequence {
			return errors.New("duplicate sequence")
		}
	}
	f.turns[turn.SessionID] = append(f.turns[turn.SessionID], turn)
	return nil
}

func (f *fakeTranscripts) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*entities.TranscriptTurn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]*entities.TranscriptTurn(nil), f.turns[sessionID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (f *fakeTranscripts) seed(sessionID uuid.UUID, lines ...string) {
	for i, line := range lines {
		role := entities.RoleCandidate
		text := strings.TrimPrefix(line, "C: ")
		if strings.HasPrefix(line, "A: ") {
			role = entities.RoleAgent
			text = strings.TrimPrefix(line, "A: ")
		}
		_ = f.Append(context.Background(), entities.NewTranscriptTurn(sessionID, i+1, role, text))
	}
}

type fakeLiveEvals struct {
	mu    sync.Mutex
	evals map[uuid.UUID][]entities.AnswerEvaluation
}

func newFakeLiveEvals() *fakeLiveEvals {
	return &fakeLiveEvals{evals: make(map[uuid.UUID][]entities.AnswerEvaluation)}
}

func (f *fakeLiveEvals) Upsert(ctx context.Context, eval *entities.LiveEvaluation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.evals[eval.SessionID]
	for i, e := range list {
		if e.QuestionText == eval.QuestionText {
			list[i] = eval.Evaluation.Data()
			return nil
		}
	}
	f.evals[eval.SessionID] = append(list, eval.Evaluation.Data())
	return nil
}

func (f *fakeLiveEvals) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]entities.AnswerEvaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entities.AnswerEvaluation(nil), f.evals[sessionID]...), nil
}

type fakeCredentials struct {
	keys map[string]string
	hits int
}

func (f *fakeCredentials) FindActive(ctx context.Context, tenantID string) (*entities.TenantCredential, error) {
	f.hits++
	key, ok := f.keys[tenantID]
	if !ok {
		return nil, nil
	}
	return &entities.TenantCredential{TenantID: tenantID, APIKey: key, Active: true}, nil
}

type fakeScorer struct {
	mu          sync.Mutex
	answer      func(req ai.AnswerRequest) (*ai.AnswerScore, error)
	flow        func(req ai.FlowRequest) (*ai.FlowDecision, error)
	transcript  func(req ai.TranscriptRequest) (string, error)
	answerCalls []ai.AnswerRequest
	batchCalls  int
}

func (f *fakeScorer) ScoreAnswer(ctx context.Context, req ai.AnswerRequest) (*ai.AnswerScore, error) {
	f.mu.Lock()
	f.answerCalls = append(f.answerCalls, req)
	fn := f.answer
	f.mu.Unlock()
	if fn == nil {
		return &ai.AnswerScore{Score: 70, Completeness: "complete", Answered: true, Reasoning: "ok"}, nil
	}
	return fn(req)
}

func (f *fakeScorer) ClassifyFlow(ctx context.Context, req ai.FlowRequest) (*ai.FlowDecision, error) {
	if f.flow == nil {
		return &ai.FlowDecision{Recommendation: ai.FlowContinue, Confidence: 90}, nil
	}
	return f.flow(req)
}

func (f *fakeScorer) ScoreTranscript(ctx context.Context, req ai.TranscriptRequest) (string, error) {
	f.mu.Lock()
	f.batchCalls++
	fn := f.transcript
	f.mu.Unlock()
	if fn == nil {
		return "", errors.New("no batch response configured")
	}
	return fn(req)
}

func (f *fakeScorer) Provider() string { return "fake" }

func (f *fakeScorer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.answerCalls)
}

type fakeLock struct {
	mu       sync.Mutex
	held     map[string]bool
	released int
}

func (f *fakeLock) Acquire(ctx context.Context, sessionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held == nil {
		f.held = make(map[string]bool)
	}
	if f.held[sessionID] {
		return false, nil
	}
	f.held[sessionID] = true
	return true, nil
}

func (f *fakeLock) Release(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.held, sessionID)
	f.released++
	return nil
}

type fakeArchive struct {
	mu      sync.Mutex
	objects map[string]interface{}
}

func (f *fakeArchive) UploadJSON(ctx context.Context, objectName string, v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects = make(map[string]interface{})
	}
	f.objects[objectName] = v
	return nil
}

func (f *fakeArchive) UploadText(ctx context.Context, objectName string, content string) error {
	return f.UploadJSON(ctx, objectName, content)
}

func (f *fakeArchive) GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	return "https://storage.test/" + objectName, nil
}

type fakeTranscriber struct {
	url        string
	utterances []ai.RecordingUtterance
	err        error
}

func (f *fakeTranscriber) TranscribeRecording(ctx context.Context, recordingURL string) ([]ai.RecordingUtterance, error) {
	f.url = recordingURL
	if f.err != nil {
		return nil, f.err
	}
	return f.utterances, nil
}

func testQuestions() []entities.Question {
	return entities.NumberQuestions([]entities.Question{
		{Text: "Can you describe a distributed system you designed and its tradeoffs?", Criterion: "Technical"},
		{Text: "How do you explain complex technical concepts to stakeholders?", Criterion: "Communication"},
		{Text: "Do you have any questions for me?"},
	})
}

func longAnswer(words int) string {
	return strings.TrimSpace(strings.Repeat("word ", words))
}
