package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/interview-assistant/errors"
	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
	"github.com/johnquangdev/interview-assistant/internal/domain/repositories"
	"github.com/johnquangdev/interview-assistant/internal/infrastructure/external/livekit"
	"github.com/johnquangdev/interview-assistant/internal/infrastructure/storage"
	ucerrors "github.com/johnquangdev/interview-assistant/internal/usecase/errors"
	"github.com/johnquangdev/interview-assistant/internal/usecase/scoring"
	"github.com/johnquangdev/interview-assistant/pkg/ai"
	"github.com/johnquangdev/interview-assistant/pkg/config"
	"github.com/johnquangdev/interview-assistant/pkg/jwt"
	"github.com/johnquangdev/interview-assistant/pkg/logger"
)

// Archive stores finalized artifacts
type Archive interface {
	UploadJSON(ctx context.Context, objectName string, v interface{}) error
	UploadText(ctx context.Context, objectName string, content string) error
	GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// CompletionLock guards finalize across instances
type CompletionLock interface {
	Acquire(ctx context.Context, sessionID string) (bool, error)
	Release(ctx context.Context, sessionID string) error
}

// Dependencies wires the interview service
type Dependencies struct {
	Sessions        repositories.InterviewSessionRepository
	Transcripts     repositories.TranscriptRepository
	LiveEvaluations repositories.LiveEvaluationRepository
	Reports         repositories.ReportRepository
	Credentials     *CredentialResolver

	Scorer      ai.Scorer
	Transcriber ai.RecordingTranscriber
	LiveKit     livekit.Client
	Archive     Archive
	Lock        CompletionLock
	Cache       EvaluationCache
	Tickets     *jwt.Manager
	Bank        *QuestionBank

	Interview  config.InterviewConfig
	LiveKitCfg config.LiveKitConfig
	Storage    config.StorageConfig
	Scoring    config.ScoringConfig
	Logger     *zap.Logger
}

type liveSession struct {
	actor    *sessionActor
	attached bool
}

type interviewService struct {
	deps   Dependencies
	logger *zap.Logger

	mu   sync.Mutex
	live map[uuid.UUID]*liveSession
}

// NewService creates the interview service
func NewService(deps Dependencies) Service {
	return &interviewService{
		deps:   deps,
		logger: logger.OrNop(deps.Logger),
		live:   make(map[uuid.UUID]*liveSession),
	}
}

// Create creates a session, provisions its room and starts live orchestration
func (s *interviewService) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	tenantID := strings.TrimSpace(input.TenantID)
	if tenantID == "" {
		return nil, apperrors.ErrInvalidArgument("tenant_id is required")
	}

	questions := entities.NumberQuestions(input.Questions)
	if len(questions) == 0 {
		questions = s.deps.Bank.ForJob(input.JobID)
	}

	duration := input.Duration
	if duration <= 0 {
		duration = s.deps.Interview.DefaultDuration
	}

	session := entities.NewInterviewSession(tenantID, strings.TrimSpace(input.JobID), questions, duration)
	session.CandidateName = strings.TrimSpace(input.CandidateName)
	session.JobContext = strings.TrimSpace(input.JobContext)
	session.LivekitRoomName = fmt.Sprintf("interview-%s", session.ID.String())

	metadata, _ := json.Marshal(map[string]string{
		"session_id": session.ID.String(),
		"tenant_id":  tenantID,
	})
	if _, err := s.deps.LiveKit.CreateRoom(ctx, session.LivekitRoomName, livekit.DefaultRoomOptions(string(metadata))); err != nil {
		return nil, apperrors.ErrLiveKitFailed("create_room", err)
	}

	candidateName := session.CandidateName
	if candidateName == "" {
		candidateName = "Candidate"
	}
	ttl := s.deps.LiveKitCfg.TokenTTL
	candidateToken, err := s.deps.LiveKit.GenerateToken(
		livekit.IdentityCandidatePrefix+session.ID.String(), session.LivekitRoomName, candidateName,
		livekit.CandidateTokenOptions(ttl))
	if err != nil {
		s.deleteRoom(session.LivekitRoomName)
		return nil, apperrors.ErrLiveKitFailed("generate_token", err)
	}
	agentToken, err := s.deps.LiveKit.GenerateToken(
		livekit.IdentityAgentPrefix+session.ID.String(), session.LivekitRoomName, "Interviewer",
		livekit.AgentTokenOptions(ttl))
	if err != nil {
		s.deleteRoom(session.LivekitRoomName)
		return nil, apperrors.ErrLiveKitFailed("generate_token", err)
	}

	if err := s.deps.Sessions.Create(ctx, session); err != nil {
		s.deleteRoom(session.LivekitRoomName)
		return nil, apperrors.ErrDBQueryFailed("create_interview_session", err)
	}

	s.startRecording(ctx, session)

	ticket, err := s.deps.Tickets.GenerateStreamTicket(session.ID, tenantID, jwt.RoleAgent)
	if err != nil {
		return nil, apperrors.ErrInternal(fmt.Errorf("failed to sign stream ticket: %w", err))
	}

	if _, err := s.liveActor(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("interview created",
		zap.String("session_id", session.ID.String()),
		zap.String("tenant_id", tenantID),
		zap.Int("questions", len(questions)))

	return &CreateOutput{
		Session:        session,
		LiveKitURL:     s.deps.LiveKitCfg.URL,
		CandidateToken: candidateToken,
		AgentToken:     agentToken,
		StreamTicket:   ticket,
		ExpiresAt:      time.Now().Add(s.deps.Tickets.Expiry()),
	}, nil
}

// Get returns a session with its live state when it is running
func (s *interviewService) Get(ctx context.Context, sessionID uuid.UUID) (*SessionView, error) {
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	view := &SessionView{Session: session}
	if ls := s.running(sessionID); ls != nil {
		snapshot, err := ls.actor.Snapshot(ctx)
		if err == nil {
			view.Live = true
			view.State = &snapshot
			view.Session.Phase = snapshot.Phase
		}
	}
	return view, nil
}

// Dispatch applies one live event and returns the instructions to relay
func (s *interviewService) Dispatch(ctx context.Context, sessionID uuid.UUID, ev Event) ([]Instruction, error) {
	if err := ev.Validate(); err != nil {
		return nil, apperrors.ErrInvalidArgument(fmt.Sprintf("unknown event type %q", ev.Type))
	}

	actor, err := s.actorFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	instructions, err := actor.Dispatch(ctx, ev)
	if errors.Is(err, ucerrors.ErrSessionNotLive) {
		return nil, apperrors.ErrInterviewNotLive(sessionID.String())
	}
	return instructions, err
}

// Attach binds the single stream of a live session
func (s *interviewService) Attach(ctx context.Context, sessionID uuid.UUID) (<-chan Instruction, <-chan struct{}, func(), error) {
	actor, err := s.actorFor(ctx, sessionID)
	if err != nil {
		return nil, nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ls, ok := s.live[sessionID]
	if !ok || ls.actor != actor {
		return nil, nil, nil, apperrors.ErrInterviewNotLive(sessionID.String())
	}
	if ls.attached {
		return nil, nil, nil, apperrors.ErrAlreadyExists("interview stream").
			WithDetail("session_id", sessionID.String())
	}
	ls.attached = true

	var once sync.Once
	detach := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if cur, ok := s.live[sessionID]; ok && cur == ls {
				ls.attached = false
			}
		})
	}
	return actor.Instructions(), actor.Done(), detach, nil
}

// Drain returns the asynchronous instructions queued so far without blocking
func (s *interviewService) Drain(ctx context.Context, sessionID uuid.UUID) ([]Instruction, error) {
	ls := s.running(sessionID)
	if ls == nil {
		return nil, nil
	}

	var out []Instruction
	for {
		select {
		case ins := <-ls.actor.Instructions():
			out = append(out, ins)
		default:
			return out, nil
		}
	}
}

// End stops live orchestration without scoring
func (s *interviewService) End(ctx context.Context, sessionID uuid.UUID) error {
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if ls := s.running(sessionID); ls != nil {
		if err := ls.actor.End(ctx); err != nil {
			return apperrors.ErrInternal(fmt.Errorf("failed to end live session: %w", err))
		}
	} else if session.EndedAt == nil {
		if err := s.deps.Sessions.MarkEnded(ctx, sessionID, time.Now()); err != nil {
			return apperrors.ErrDBQueryFailed("mark_interview_ended", err)
		}
	}

	s.teardownMedia(session)
	return nil
}

// Transcript returns the persisted transcript turns
func (s *interviewService) Transcript(ctx context.Context, sessionID uuid.UUID) ([]*entities.TranscriptTurn, error) {
	if _, err := s.findSession(ctx, sessionID); err != nil {
		return nil, err
	}
	turns, err := s.deps.Transcripts.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list_transcript_turns", err)
	}
	return turns, nil
}

// Report returns the stored report
func (s *interviewService) Report(ctx context.Context, sessionID uuid.UUID) (*entities.EvaluationReport, error) {
	report, err := s.deps.Reports.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("find_evaluation_report", err)
	}
	if report == nil {
		return nil, apperrors.ErrReportNotFound(sessionID.String())
	}
	return report, nil
}

// HandleRoomFinished ends the session bound to a finished LiveKit room
func (s *interviewService) HandleRoomFinished(ctx context.Context, roomName string) error {
	session, err := s.deps.Sessions.FindByRoomName(ctx, roomName)
	if err != nil {
		return apperrors.ErrDBQueryFailed("find_interview_by_room", err)
	}
	if session == nil {
		s.logger.Debug("room_finished for unknown room", zap.String("room", roomName))
		return nil
	}

	if ls := s.running(session.ID); ls != nil {
		if err := ls.actor.End(ctx); err != nil {
			return apperrors.ErrInternal(fmt.Errorf("failed to end live session: %w", err))
		}
	} else if session.EndedAt == nil {
		if err := s.deps.Sessions.MarkEnded(ctx, session.ID, time.Now()); err != nil {
			return apperrors.ErrDBQueryFailed("mark_interview_ended", err)
		}
	}

	s.logger.Info("interview room finished",
		zap.String("session_id", session.ID.String()),
		zap.String("room", roomName))
	return nil
}

// HandleRecordingFinished stores the recording location of a room
func (s *interviewService) HandleRecordingFinished(ctx context.Context, roomName, location string) error {
	if strings.TrimSpace(location) == "" {
		return nil
	}
	session, err := s.deps.Sessions.FindByRoomName(ctx, roomName)
	if err != nil {
		return apperrors.ErrDBQueryFailed("find_interview_by_room", err)
	}
	if session == nil {
		return nil
	}
	if err := s.deps.Sessions.SetRecording(ctx, session.ID, "", location); err != nil {
		return apperrors.ErrDBQueryFailed("set_interview_recording", err)
	}
	s.logger.Info("interview recording stored",
		zap.String("session_id", session.ID.String()),
		zap.String("location", location))
	return nil
}

// Shutdown ends every live session
func (s *interviewService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	actors := make([]*sessionActor, 0, len(s.live))
	for _, ls := range s.live {
		actors = append(actors, ls.actor)
	}
	s.mu.Unlock()

	var firstErr error
	for _, a := range actors {
		if err := a.End(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.deps.Credentials != nil {
		s.deps.Credentials.Close()
	}
	return firstErr
}

func (s *interviewService) findSession(ctx context.Context, sessionID uuid.UUID) (*entities.InterviewSession, error) {
	session, err := s.deps.Sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("find_interview_session", err)
	}
	if session == nil {
		return nil, apperrors.ErrInterviewNotFound(sessionID.String())
	}
	return session, nil
}

func (s *interviewService) running(sessionID uuid.UUID) *liveSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live[sessionID]
}

// actorFor returns the running actor of a session, restarting it when the
// session is still live but no actor runs on this instance.
func (s *interviewService) actorFor(ctx context.Context, sessionID uuid.UUID) (*sessionActor, error) {
	if ls := s.running(sessionID); ls != nil {
		return ls.actor, nil
	}

	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Completed || session.EndedAt != nil {
		return nil, apperrors.ErrInterviewNotLive(sessionID.String())
	}
	return s.liveActor(ctx, session)
}

func (s *interviewService) liveActor(ctx context.Context, session *entities.InterviewSession) (*sessionActor, error) {
	credential, _, err := s.deps.Credentials.Resolve(ctx, session.TenantID)
	if err != nil {
		s.logger.Warn("credential lookup failed, live scoring disabled",
			zap.String("session_id", session.ID.String()), zap.Error(err))
	}

	turns, err := s.deps.Transcripts.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list_transcript_turns", err)
	}
	evaluations, err := s.deps.LiveEvaluations.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list_live_evaluations", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ls, ok := s.live[session.ID]; ok {
		return ls.actor, nil
	}

	state := NewSessionState(session, credential, scoring.ScorableTotal(session.Questions))
	for _, eval := range evaluations {
		state.Upsert(eval)
	}
	lastSeq := 0
	if n := len(turns); n > 0 {
		lastSeq = turns[n-1].Sequence
	}

	log := logger.ForSession(s.logger, session.ID.String(), session.TenantID)
	evaluator := NewEvaluator(s.deps.Scorer, s.deps.Scoring.Timeout, log)
	orchestrator := NewOrchestrator(NewQuestionMatcher(DefaultMatcherConfig(), state.Questions), evaluator, s.deps.Interview.AgentPersona)
	writer := NewWriter(s.deps.Interview.EventBuffer, 10*time.Second, log)

	sessionID := session.ID
	var actor *sessionActor
	actor = newSessionActor(actorDeps{
		scorer:      s.deps.Scorer,
		sessions:    s.deps.Sessions,
		transcripts: s.deps.Transcripts,
		liveEvals:   s.deps.LiveEvaluations,
		cache:       s.deps.Cache,
		grace:       s.deps.Scoring.Timeout,
		logger:      log,
	}, state, orchestrator, NewTranscriptStore(sessionID, lastSeq), writer, s.deps.Interview.EventBuffer, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if ls, ok := s.live[sessionID]; ok && ls.actor == actor {
			delete(s.live, sessionID)
		}
	})
	s.live[sessionID] = &liveSession{actor: actor}
	actor.start()

	log.Info("live session started",
		zap.String("phase", string(state.Phase)),
		zap.Bool("live_scoring", credential != ""))
	return actor, nil
}

func (s *interviewService) startRecording(ctx context.Context, session *entities.InterviewSession) {
	if !s.deps.LiveKitCfg.Record || !s.deps.Storage.Enabled {
		return
	}

	key := storage.RecordingKey(session.TenantID, session.ID.String())
	egressID, err := s.deps.LiveKit.StartRecording(ctx, session.LivekitRoomName, &livekit.RecordingTarget{
		Endpoint:  s.deps.Storage.Endpoint,
		AccessKey: s.deps.Storage.AccessKeyID,
		SecretKey: s.deps.Storage.SecretAccessKey,
		Bucket:    s.deps.Storage.BucketName,
		Region:    s.deps.Storage.Region,
		Filepath:  key,
	})
	if err != nil {
		s.logger.Warn("failed to start recording", zap.String("session_id", session.ID.String()), zap.Error(err))
		return
	}

	session.EgressID = egressID
	session.RecordingURL = key
	if err := s.deps.Sessions.SetRecording(ctx, session.ID, egressID, key); err != nil {
		s.logger.Warn("failed to store recording", zap.String("session_id", session.ID.String()), zap.Error(err))
	}
}

func (s *interviewService) teardownMedia(session *entities.InterviewSession) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if session.EgressID != "" {
		if err := s.deps.LiveKit.StopRecording(ctx, session.EgressID); err != nil {
			s.logger.Debug("stop recording", zap.String("egress_id", session.EgressID), zap.Error(err))
		}
	}
	if session.LivekitRoomName != "" {
		if err := s.deps.LiveKit.DeleteRoom(ctx, session.LivekitRoomName); err != nil {
			s.logger.Debug("delete room", zap.String("room", session.LivekitRoomName), zap.Error(err))
		}
	}
}

func (s *interviewService) deleteRoom(roomName string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.deps.LiveKit.DeleteRoom(ctx, roomName); err != nil {
		s.logger.Warn("failed to clean up room", zap.String("room", roomName), zap.Error(err))
	}
}
