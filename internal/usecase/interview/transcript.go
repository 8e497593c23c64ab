package interview

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
	"github.com/johnquangdev/interview-assistant/pkg/logger"
)

// TranscriptStore accumulates the ordered conversation of one session.
// Agent speech arrives as deltas and becomes a turn when done; candidate
// speech arrives as complete utterances. Not safe for concurrent use.
type TranscriptStore struct {
	sessionID   uuid.UUID
	agentBuffer strings.Builder
	turns       []entities.TranscriptTurn
	seq         int
}

// NewTranscriptStore creates a store continuing after the given sequence number
func NewTranscriptStore(sessionID uuid.UUID, lastSeq int) *TranscriptStore {
	return &TranscriptStore{sessionID: sessionID, seq: lastSeq}
}

// AgentDelta buffers a partial agent utterance
func (t *TranscriptStore) AgentDelta(delta string) {
	t.agentBuffer.WriteString(delta)
}

// AgentDone closes the buffered agent utterance. The final text wins over
// the buffered deltas when present.
func (t *TranscriptStore) AgentDone(final string) (*entities.TranscriptTurn, bool) {
	text := strings.TrimSpace(final)
	if text == "" {
		text = strings.TrimSpace(t.agentBuffer.String())
	}
	t.agentBuffer.Reset()
	return t.append(entities.RoleAgent, text)
}

// Candidate appends a complete candidate utterance
func (t *TranscriptStore) Candidate(text string) (*entities.TranscriptTurn, bool) {
	return t.append(entities.RoleCandidate, strings.TrimSpace(text))
}

// Flush turns any buffered agent text into a turn
func (t *TranscriptStore) Flush() (*entities.TranscriptTurn, bool) {
	if t.agentBuffer.Len() == 0 {
		return nil, false
	}
	return t.AgentDone("")
}

// Turns returns a copy of the recorded turns
func (t *TranscriptStore) Turns() []entities.TranscriptTurn {
	out := make([]entities.TranscriptTurn, len(t.turns))
	copy(out, t.turns)
	return out
}

func (t *TranscriptStore) append(role entities.SpeakerRole, text string) (*entities.TranscriptTurn, bool) {
	if text == "" {
		return nil, false
	}
	t.seq++
	turn := entities.NewTranscriptTurn(t.sessionID, t.seq, role, text)
	t.turns = append(t.turns, *turn)
	return turn, true
}

// FormatTranscript renders turns as "Interviewer:"/"Candidate:" lines
func FormatTranscript(turns []*entities.TranscriptTurn) string {
	var b strings.Builder
	for _, turn := range turns {
		speaker := "Candidate"
		if turn.Role == entities.RoleAgent {
			speaker = "Interviewer"
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker, turn.Text)
	}
	return b.String()
}

// Job is one unit of persistence work
type Job func(ctx context.Context) error

// Writer runs persistence jobs one at a time in submission order
type Writer struct {
	jobs    chan namedJob
	done    chan struct{}
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.Mutex
	closed bool
}

type namedJob struct {
	name string
	run  Job
}

// NewWriter starts the writer goroutine
func NewWriter(buffer int, timeout time.Duration, log *zap.Logger) *Writer {
	if buffer <= 0 {
		buffer = 256
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	w := &Writer{
		jobs:    make(chan namedJob, buffer),
		done:    make(chan struct{}),
		timeout: timeout,
		logger:  logger.OrNop(log),
	}
	go w.loop()
	return w
}

// Submit enqueues a job. It blocks while the queue is full and returns false
// once the writer is closed.
func (w *Writer) Submit(name string, job Job) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false
	}
	w.jobs <- namedJob{name: name, run: job}
	return true
}

// Close stops accepting jobs and waits until the queue is drained or ctx ends
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.jobs)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Writer) loop() {
	defer close(w.done)
	for job := range w.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		if err := job.run(ctx); err != nil {
			w.logger.Error("persistence job failed", zap.String("job", job.name), zap.Error(err))
		}
		cancel()
	}
}
