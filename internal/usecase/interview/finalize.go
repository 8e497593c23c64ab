package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	apperrors "github.com/johnquangdev/interview-assistant/errors"
	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
	"github.com/johnquangdev/interview-assistant/internal/infrastructure/storage"
	"github.com/johnquangdev/interview-assistant/internal/usecase/scoring"
	"github.com/johnquangdev/interview-assistant/pkg/ai"
	"github.com/johnquangdev/interview-assistant/pkg/jobcontext"
)

const batchScoringJob = "batch_scoring"

// finalizeInput is everything loaded before scoring
type finalizeInput struct {
	session    *entities.InterviewSession
	turns      []*entities.TranscriptTurn
	live       []entities.AnswerEvaluation
	credential string
}

// Finalize scores the interview exactly once and stores the report
func (s *interviewService) Finalize(ctx context.Context, sessionID uuid.UUID) (report *entities.EvaluationReport, err error) {
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Completed {
		return nil, apperrors.ErrInterviewAlreadyCompleted(sessionID.String())
	}

	if s.deps.Lock != nil {
		acquired, lockErr := s.deps.Lock.Acquire(ctx, sessionID.String())
		if lockErr != nil {
			return nil, apperrors.ErrCacheFailed("acquire_completion_lock", lockErr)
		}
		if !acquired {
			return nil, apperrors.ErrInterviewAlreadyCompleted(sessionID.String()).
				WithDetail("reason", "finalize already in progress")
		}
		defer func() {
			if err == nil {
				return
			}
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if relErr := s.deps.Lock.Release(releaseCtx, sessionID.String()); relErr != nil {
				s.logger.Warn("failed to release completion lock", zap.String("session_id", sessionID.String()), zap.Error(relErr))
			}
		}()
	}

	if ls := s.running(sessionID); ls != nil {
		if err := ls.actor.End(ctx); err != nil {
			return nil, apperrors.ErrInternal(fmt.Errorf("failed to end live session: %w", err))
		}
	} else if session.EndedAt == nil {
		if err := s.deps.Sessions.MarkEnded(ctx, sessionID, time.Now()); err != nil {
			return nil, apperrors.ErrDBQueryFailed("mark_interview_ended", err)
		}
	}

	in, err := s.loadFinalizeInput(ctx, session)
	if err != nil {
		return nil, err
	}

	result, err := s.score(ctx, in)
	if err != nil {
		return nil, err
	}

	report = &entities.EvaluationReport{
		ID:           uuid.New(),
		SessionID:    session.ID,
		TenantID:     session.TenantID,
		OverallScore: result.Score.OverallScore,
		Result:       result.Score.ResultLabel(),
		Source:       result.Source,
		Fallback:     result.Fallback,
		Score:        datatypes.NewJSONType(result.Score),
		Evaluations:  datatypes.JSONSlice[entities.AnswerEvaluation](result.Evaluations),
		Rationale:    scoring.Rationale(result.Score),
	}
	s.archive(ctx, session, report, in.turns)

	if err := s.deps.Sessions.CompleteWithReport(ctx, report); err != nil {
		if errors.Is(err, entities.ErrSessionCompleted) {
			return nil, apperrors.ErrInterviewAlreadyCompleted(sessionID.String())
		}
		return nil, apperrors.ErrDBTransactionFailed(err)
	}
	s.teardownMedia(session)

	s.logger.Info("interview finalized",
		zap.String("session_id", sessionID.String()),
		zap.Int("overall_score", report.OverallScore),
		zap.String("result", report.Result),
		zap.String("source", string(report.Source)),
		zap.Bool("fallback", report.Fallback))
	return report, nil
}

func (s *interviewService) loadFinalizeInput(ctx context.Context, session *entities.InterviewSession) (*finalizeInput, error) {
	in := &finalizeInput{session: session}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		turns, err := s.deps.Transcripts.ListBySession(gctx, session.ID)
		if err != nil {
			return apperrors.ErrDBQueryFailed("list_transcript_turns", err)
		}
		in.turns = turns
		return nil
	})
	g.Go(func() error {
		live, err := s.deps.LiveEvaluations.ListBySession(gctx, session.ID)
		if err != nil {
			return apperrors.ErrDBQueryFailed("list_live_evaluations", err)
		}
		if len(live) == 0 && s.deps.Cache != nil {
			cached, cacheErr := s.deps.Cache.Load(gctx, session.ID.String())
			if cacheErr != nil {
				s.logger.Warn("failed to load cached live evaluations", zap.Error(cacheErr))
			}
			live = cached
		}
		in.live = live
		return nil
	})
	g.Go(func() error {
		credential, _, err := s.deps.Credentials.Resolve(gctx, session.TenantID)
		if err != nil {
			return apperrors.ErrDBQueryFailed("find_tenant_credential", err)
		}
		in.credential = credential
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(in.turns) == 0 {
		turns, err := s.recoverTranscript(ctx, session)
		if err != nil {
			if len(in.live) == 0 {
				return nil, err
			}
			s.logger.Warn("transcript recovery failed, scoring live evaluations",
				zap.String("session_id", session.ID.String()), zap.Error(err))
		}
		in.turns = turns
	}
	return in, nil
}

// score checks completeness, then picks the scoring path: batch over the
// transcript when a credential exists, live evaluations otherwise, and the
// tagged fallback when the batch response cannot be used.
func (s *interviewService) score(ctx context.Context, in *finalizeInput) (scoring.Result, error) {
	session := in.session
	questions := []entities.Question(session.Questions)
	total := scoring.ScorableTotal(questions)
	live := scoring.FilterClosing(in.live)

	if in.credential == "" && len(live) == 0 {
		return scoring.Result{}, apperrors.ErrInterviewConfiguration("no scoring credential for tenant and no live evaluations")
	}
	if len(in.turns) == 0 && len(live) == 0 {
		return scoring.Result{}, apperrors.ErrInterviewConfiguration("nothing to score: no transcript and no live evaluations")
	}

	// the completeness gate applies to every scoring path
	answered := CountAnsweredPairs(in.turns, questions)
	if len(live) > answered {
		answered = len(live)
	}
	required := RequiredAnswers(questions, s.deps.Interview.MinAnsweredRatio)
	if answered < required {
		return scoring.Result{}, apperrors.ErrInterviewIncomplete(answered, required)
	}

	if in.credential == "" {
		return scoring.Fallback(questions, live, total), nil
	}

	if len(in.turns) == 0 {
		return scoring.NormalizeEvaluations(live, total, entities.SourceLive), nil
	}

	raw, err := s.scoreTranscript(ctx, in, questions)
	if err != nil {
		switch {
		case len(live) > 0:
			s.logger.Warn("batch scoring failed, using live evaluations",
				zap.String("session_id", session.ID.String()), zap.Error(err))
			return scoring.Fallback(questions, live, total), nil
		case errors.Is(err, ai.ErrInvalidCredential):
			return scoring.Result{}, apperrors.ErrInvalidCredential(session.TenantID, err)
		default:
			return scoring.Result{}, apperrors.ErrScoringFailed(err)
		}
	}

	payload, err := scoring.DecodePayload(raw)
	if err != nil {
		s.logger.Warn("unusable batch scoring payload, using fallback",
			zap.String("session_id", session.ID.String()), zap.Error(err))
		return scoring.Fallback(questions, live, total), nil
	}

	result := scoring.Normalize(payload, total)
	if len(result.Evaluations) == 0 {
		s.logger.Warn("batch scoring payload has no scorable questions, using fallback",
			zap.String("session_id", session.ID.String()), zap.String("shape", payload.Shape()))
		return scoring.Fallback(questions, live, total), nil
	}
	return result, nil
}

func (s *interviewService) scoreTranscript(ctx context.Context, in *finalizeInput, questions []entities.Question) (string, error) {
	if s.deps.Scorer == nil {
		return "", errors.New("no scoring provider configured")
	}

	req := ai.TranscriptRequest{
		Transcript: FormatTranscript(in.turns),
		JobContext: in.session.JobContext,
		Credential: in.credential,
	}
	for _, q := range questions {
		if scoring.IsClosingMessage(q.Text) {
			continue
		}
		req.Questions = append(req.Questions, ai.TranscriptQuestion{
			Number:    q.Index,
			Text:      q.Text,
			Criterion: q.CriterionOrDefault(),
		})
	}

	timeout := s.deps.Scoring.Timeout * 4
	jobCtx, cancel := jobcontext.JobBegin(ctx, in.session.ID, batchScoringJob, timeout)
	defer cancel()

	var raw string
	err := jobcontext.JobEnd(jobCtx, jobcontext.DefaultPolicy, func(attemptCtx context.Context) error {
		if attempt := jobcontext.GetRetryAttempt(attemptCtx); attempt > 0 {
			s.logger.Info("retrying batch scoring",
				zap.String("session_id", in.session.ID.String()), zap.Int("attempt", attempt))
		}
		out, err := s.deps.Scorer.ScoreTranscript(attemptCtx, req)
		if err != nil {
			return err
		}
		raw = out
		return nil
	})
	return raw, err
}

// recoverTranscript rebuilds turns from the session recording when nothing
// was captured live. Speakers are assigned by first appearance: the
// interviewer speaks first.
func (s *interviewService) recoverTranscript(ctx context.Context, session *entities.InterviewSession) ([]*entities.TranscriptTurn, error) {
	if s.deps.Transcriber == nil || session.RecordingURL == "" {
		return nil, nil
	}

	url := session.RecordingURL
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		if s.deps.Archive == nil {
			return nil, nil
		}
		presigned, err := s.deps.Archive.GetFileURL(ctx, url, time.Hour)
		if err != nil {
			return nil, apperrors.ErrStorageFailed("presign_recording", err)
		}
		url = presigned
	}

	utterances, err := s.deps.Transcriber.TranscribeRecording(ctx, url)
	if err != nil {
		return nil, apperrors.ErrAITranscriptionFailed(err)
	}

	agentSpeaker := ""
	turns := make([]*entities.TranscriptTurn, 0, len(utterances))
	for _, u := range utterances {
		text := strings.TrimSpace(u.Text)
		if text == "" {
			continue
		}
		if agentSpeaker == "" {
			agentSpeaker = u.Speaker
		}
		role := entities.RoleCandidate
		if u.Speaker == agentSpeaker {
			role = entities.RoleAgent
		}
		turns = append(turns, entities.NewTranscriptTurn(session.ID, len(turns)+1, role, text))
	}

	s.logger.Info("transcript recovered from recording",
		zap.String("session_id", session.ID.String()), zap.Int("turns", len(turns)))
	return turns, nil
}

func (s *interviewService) archive(ctx context.Context, session *entities.InterviewSession, report *entities.EvaluationReport, turns []*entities.TranscriptTurn) {
	if s.deps.Archive == nil || !s.deps.Storage.Enabled {
		return
	}

	key := storage.ReportKey(session.TenantID, session.ID.String())
	if err := s.deps.Archive.UploadJSON(ctx, key, report); err != nil {
		s.logger.Warn("failed to archive report", zap.String("session_id", session.ID.String()), zap.Error(err))
		return
	}
	report.ArchiveKey = key

	if len(turns) > 0 {
		if err := s.deps.Archive.UploadText(ctx, storage.TranscriptKey(session.TenantID, session.ID.String()), FormatTranscript(turns)); err != nil {
			s.logger.Warn("failed to archive transcript", zap.String("session_id", session.ID.String()), zap.Error(err))
		}
	}
}
