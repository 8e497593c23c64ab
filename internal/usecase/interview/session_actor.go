package interview

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
	"github.com/johnquangdev/interview-assistant/internal/domain/repositories"
	ucerrors "github.com/johnquangdev/interview-assistant/internal/usecase/errors"
	"github.com/johnquangdev/interview-assistant/pkg/ai"
)

// EventType is the type of an inbound live event
type EventType string

const (
	EventSessionReady            EventType = "session.ready"
	EventTransportConnected      EventType = "transport.connected"
	EventAgentTranscriptDelta    EventType = "agent.transcript.delta"
	EventAgentTranscriptDone     EventType = "agent.transcript.done"
	EventCandidateTranscriptDone EventType = "candidate.transcript.done"
	EventSessionEnd              EventType = "session.end"
)

// Event is one inbound live event relayed from the conversational agent or the client
type Event struct {
	Type  EventType `json:"type" validate:"required"`
	Text  string    `json:"text,omitempty"`
	Delta string    `json:"delta,omitempty"`
}

// Validate checks the event type
func (e Event) Validate() error {
	switch e.Type {
	case EventSessionReady, EventTransportConnected, EventAgentTranscriptDelta,
		EventAgentTranscriptDone, EventCandidateTranscriptDone, EventSessionEnd:
		return nil
	}
	return ucerrors.ErrUnknownEventType
}

// Snapshot is a read-only view of the live state
type Snapshot struct {
	Phase           entities.InterviewPhase     `json:"phase"`
	CurrentQuestion string                      `json:"current_question,omitempty"`
	Criterion       string                      `json:"criterion,omitempty"`
	Counter         int                         `json:"counter"`
	InFlight        bool                        `json:"in_flight"`
	Turns           int                         `json:"turns"`
	Elaboration     ElaborationState            `json:"elaboration"`
	Evaluations     []entities.AnswerEvaluation `json:"evaluations"`
}

// EvaluationCache mirrors live evaluations for other instances
type EvaluationCache interface {
	Save(ctx context.Context, sessionID string, eval entities.AnswerEvaluation) error
	Load(ctx context.Context, sessionID string) ([]entities.AnswerEvaluation, error)
}

type actorDeps struct {
	scorer      ai.Scorer
	sessions    repositories.InterviewSessionRepository
	transcripts repositories.TranscriptRepository
	liveEvals   repositories.LiveEvaluationRepository
	cache       EvaluationCache
	grace       time.Duration
	logger      *zap.Logger
}

type (
	eventMsg struct {
		ev    Event
		reply chan eventReply
	}
	eventReply struct {
		instructions []Instruction
		err          error
	}
	evaluationMsg struct {
		pending *PendingEvaluation
		outcome Outcome
	}
	flowMsg struct {
		check    *FlowCheck
		decision *ai.FlowDecision
		err      error
	}
	snapshotMsg struct {
		reply chan Snapshot
	}
	endMsg struct{}
)

// sessionActor owns the SessionState of one live session. Every mutation
// happens on its goroutine; network calls run elsewhere and post back.
type sessionActor struct {
	actorDeps
	state        *SessionState
	orchestrator *Orchestrator
	transcript   *TranscriptStore
	writer       *Writer

	inbox  chan interface{}
	outbox chan Instruction
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	pending    int
	ending     bool
	graceTimer <-chan time.Time
	onStop     func()
}

func newSessionActor(deps actorDeps, st *SessionState, orch *Orchestrator, transcript *TranscriptStore, writer *Writer, buffer int, onStop func()) *sessionActor {
	if buffer <= 0 {
		buffer = 256
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &sessionActor{
		actorDeps:    deps,
		state:        st,
		orchestrator: orch,
		transcript:   transcript,
		writer:       writer,
		inbox:        make(chan interface{}, buffer),
		outbox:       make(chan Instruction, 32),
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
		onStop:       onStop,
	}
}

func (a *sessionActor) start() {
	go a.run()
}

// Dispatch hands an event to the actor and waits until it was applied.
// The returned instructions must be relayed to the agent.
func (a *sessionActor) Dispatch(ctx context.Context, ev Event) ([]Instruction, error) {
	reply := make(chan eventReply, 1)
	if err := a.post(ctx, eventMsg{ev: ev, reply: reply}); err != nil {
		return nil, err
	}
	select {
	case r := <-reply:
		return r.instructions, r.err
	case <-a.done:
		return nil, ucerrors.ErrSessionNotLive
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Snapshot returns a copy of the live state
func (a *sessionActor) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	if err := a.post(ctx, snapshotMsg{reply: reply}); err != nil {
		return Snapshot{}, err
	}
	select {
	case s := <-reply:
		return s, nil
	case <-a.done:
		return Snapshot{}, ucerrors.ErrSessionNotLive
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Instructions streams instructions produced asynchronously (redirects)
func (a *sessionActor) Instructions() <-chan Instruction {
	return a.outbox
}

// End asks the actor to stop and waits until pending work is drained
func (a *sessionActor) End(ctx context.Context) error {
	if err := a.post(ctx, endMsg{}); err != nil && err != ucerrors.ErrSessionNotLive {
		return err
	}
	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the actor stopped
func (a *sessionActor) Done() <-chan struct{} {
	return a.done
}

func (a *sessionActor) post(ctx context.Context, msg interface{}) error {
	select {
	case <-a.done:
		return ucerrors.ErrSessionNotLive
	default:
	}
	select {
	case a.inbox <- msg:
		return nil
	case <-a.done:
		return ucerrors.ErrSessionNotLive
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *sessionActor) run() {
	defer a.finish()

	for {
		select {
		case msg := <-a.inbox:
			a.handle(msg)
		case <-a.graceTimer:
			a.logger.Warn("abandoning pending live calls at session end", zap.Int("pending", a.pending))
			return
		}
		if a.ending && a.pending == 0 {
			return
		}
	}
}

func (a *sessionActor) handle(msg interface{}) {
	switch m := msg.(type) {
	case eventMsg:
		if a.ending {
			m.reply <- eventReply{err: ucerrors.ErrSessionNotLive}
			return
		}
		instructions, err := a.handleEvent(m.ev)
		m.reply <- eventReply{instructions: instructions, err: err}

	case evaluationMsg:
		a.pending--
		outcome := a.orchestrator.HandleEvaluationResult(a.state, m.pending, m.outcome)
		if outcome.Status == OutcomeEvaluated {
			a.persistEvaluation(*outcome.Evaluation)
		}

	case flowMsg:
		a.pending--
		if m.err != nil {
			a.state.Classifying = false
			a.logger.Warn("flow classification failed", zap.Error(m.err))
			return
		}
		fx := a.orchestrator.HandleFlowResult(a.state, m.check, m.decision)
		for _, ins := range fx.Instructions {
			a.emit(ins)
		}

	case snapshotMsg:
		m.reply <- a.snapshot()

	case endMsg:
		a.beginEnd()
	}
}

func (a *sessionActor) handleEvent(ev Event) ([]Instruction, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}

	var fx Effects
	switch ev.Type {
	case EventSessionReady:
		fx = a.orchestrator.HandleSessionReady(a.state)
	case EventTransportConnected:
		fx = a.orchestrator.HandleTransportConnected(a.state)
	case EventAgentTranscriptDelta:
		delta := ev.Delta
		if delta == "" {
			delta = ev.Text
		}
		a.transcript.AgentDelta(delta)
		return nil, nil
	case EventAgentTranscriptDone:
		turn, ok := a.transcript.AgentDone(ev.Text)
		if !ok {
			return nil, nil
		}
		a.persistTurn(turn)
		fx = a.orchestrator.HandleAgentUtterance(a.state, turn.Text)
	case EventCandidateTranscriptDone:
		turn, ok := a.transcript.Candidate(ev.Text)
		if !ok {
			return nil, nil
		}
		a.persistTurn(turn)
		fx = a.orchestrator.HandleCandidateUtterance(a.state, turn.Text)
	case EventSessionEnd:
		a.beginEnd()
		return nil, nil
	}

	a.apply(fx)
	return fx.Instructions, nil
}

func (a *sessionActor) apply(fx Effects) {
	if fx.PhaseChanged {
		a.persistPhase(a.state.Phase)
	}
	if fx.Skipped != nil {
		a.logger.Debug("live evaluation skipped", zap.String("reason", string(fx.Skipped.Reason)))
	}
	if fx.Evaluate != nil {
		a.launchEvaluation(fx.Evaluate)
	}
	if fx.Classify != nil {
		a.launchClassification(fx.Classify)
	}
}

func (a *sessionActor) launchEvaluation(p *PendingEvaluation) {
	a.pending++
	evaluator := a.orchestrator.evaluator
	go func() {
		outcome := evaluator.Run(a.ctx, p)
		_ = a.post(context.Background(), evaluationMsg{pending: p, outcome: outcome})
	}()
}

func (a *sessionActor) launchClassification(check *FlowCheck) {
	if a.scorer == nil {
		a.state.Classifying = false
		return
	}
	a.pending++
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, 15*time.Second)
		defer cancel()
		decision, err := a.scorer.ClassifyFlow(ctx, ai.FlowRequest{
			Question:   check.Question,
			Answer:     check.Answer,
			Credential: check.Credential,
		})
		_ = a.post(context.Background(), flowMsg{check: check, decision: decision, err: err})
	}()
}

func (a *sessionActor) emit(ins Instruction) {
	select {
	case a.outbox <- ins:
	default:
		a.logger.Warn("instruction dropped, no reader", zap.String("kind", string(ins.Kind)))
	}
}

func (a *sessionActor) beginEnd() {
	if a.ending {
		return
	}
	a.ending = true

	if turn, ok := a.transcript.Flush(); ok {
		a.persistTurn(turn)
	}
	a.orchestrator.HandleSessionEnd(a.state)

	sessionID := a.state.SessionID
	endedAt := time.Now()
	a.writer.Submit("mark_ended", func(ctx context.Context) error {
		return a.sessions.MarkEnded(ctx, sessionID, endedAt)
	})

	if a.pending > 0 {
		a.graceTimer = time.After(a.grace)
	}
}

func (a *sessionActor) finish() {
	a.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.writer.Close(ctx); err != nil {
		a.logger.Error("transcript writer did not drain", zap.Error(err))
	}

	if a.onStop != nil {
		a.onStop()
	}
	close(a.done)
	a.logger.Info("live session stopped",
		zap.String("phase", string(a.state.Phase)),
		zap.Int("evaluations", len(a.state.Evaluations)))
}

func (a *sessionActor) persistTurn(turn *entities.TranscriptTurn) {
	a.writer.Submit("append_turn", func(ctx context.Context) error {
		return a.transcripts.Append(ctx, turn)
	})
}

func (a *sessionActor) persistPhase(phase entities.InterviewPhase) {
	sessionID := a.state.SessionID
	a.writer.Submit("update_phase", func(ctx context.Context) error {
		return a.sessions.UpdatePhase(ctx, sessionID, phase)
	})
}

func (a *sessionActor) persistEvaluation(eval entities.AnswerEvaluation) {
	sessionID := a.state.SessionID
	a.writer.Submit("upsert_live_evaluation", func(ctx context.Context) error {
		if err := a.liveEvals.Upsert(ctx, entities.NewLiveEvaluation(sessionID, eval)); err != nil {
			return err
		}
		if a.cache != nil {
			if err := a.cache.Save(ctx, sessionID.String(), eval); err != nil {
				a.logger.Warn("failed to cache live evaluation", zap.Error(err))
			}
		}
		return nil
	})
}

func (a *sessionActor) snapshot() Snapshot {
	s := Snapshot{
		Phase:       a.state.Phase,
		Counter:     a.state.Counter,
		InFlight:    a.state.InFlight,
		Turns:       len(a.transcript.turns),
		Elaboration: a.state.Elaboration.State(),
		Evaluations: a.state.EvaluationsSnapshot(),
	}
	if a.state.Current != nil {
		s.CurrentQuestion = strings.TrimSpace(a.state.Current.Text)
		s.Criterion = a.state.Current.CriterionOrDefault()
	}
	return s
}
