package handler

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
	interviewUsecase "github.com/johnquangdev/interview-assistant/internal/usecase/interview"
	"github.com/johnquangdev/interview-assistant/pkg/validator"
)

// fakeService records calls and returns canned results
type fakeService struct {
	mu sync.Mutex

	createFn   func(in interviewUsecase.CreateInput) (*interviewUsecase.CreateOutput, error)
	getFn      func(id uuid.UUID) (*interviewUsecase.SessionView, error)
	dispatchFn func(id uuid.UUID, ev interviewUsecase.Event) ([]interviewUsecase.Instruction, error)
	finalizeFn func(id uuid.UUID) (*entities.EvaluationReport, error)
	reportFn   func(id uuid.UUID) (*entities.EvaluationReport, error)
	attachErr  error

	queued       []interviewUsecase.Instruction
	instructions chan interviewUsecase.Instruction
	done         chan struct{}
	detached     chan struct{}

	events         []interviewUsecase.Event
	endedIDs       []uuid.UUID
	finishedRooms  []string
	recordingRooms map[string]string
}

func newFakeService() *fakeService {
	return &fakeService{
		instructions:   make(chan interviewUsecase.Instruction, 8),
		done:           make(chan struct{}),
		detached:       make(chan struct{}),
		recordingRooms: make(map[string]string),
	}
}

func (f *fakeService) Create(ctx context.Context, in interviewUsecase.CreateInput) (*interviewUsecase.CreateOutput, error) {
	return f.createFn(in)
}

func (f *fakeService) Get(ctx context.Context, id uuid.UUID) (*interviewUsecase.SessionView, error) {
	return f.getFn(id)
}

func (f *fakeService) Dispatch(ctx context.Context, id uuid.UUID, ev interviewUsecase.Event) ([]interviewUsecase.Instruction, error) {
	f.mu.Lock()
	f.events = append(f.events, ev)
	fn := f.dispatchFn
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(id, ev)
}

func (f *fakeService) Attach(ctx context.Context, id uuid.UUID) (<-chan interviewUsecase.Instruction, <-chan struct{}, func(), error) {
	if f.attachErr != nil {
		return nil, nil, nil, f.attachErr
	}
	var once sync.Once
	return f.instructions, f.done, func() { once.Do(func() { close(f.detached) }) }, nil
}

func (f *fakeService) Drain(ctx context.Context, id uuid.UUID) ([]interviewUsecase.Instruction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.queued
	f.queued = nil
	return out, nil
}

func (f *fakeService) End(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.endedIDs = append(f.endedIDs, id)
	return nil
}

func (f *fakeService) Finalize(ctx context.Context, id uuid.UUID) (*entities.EvaluationReport, error) {
	return f.finalizeFn(id)
}

func (f *fakeService) Transcript(ctx context.Context, id uuid.UUID) ([]*entities.TranscriptTurn, error) {
	return []*entities.TranscriptTurn{
		entities.NewTranscriptTurn(id, 1, entities.RoleAgent, "Why Go?"),
		entities.NewTranscriptTurn(id, 2, entities.RoleCandidate, "Simplicity."),
	}, nil
}

func (f *fakeService) Report(ctx context.Context, id uuid.UUID) (*entities.EvaluationReport, error) {
	return f.reportFn(id)
}

func (f *fakeService) HandleRoomFinished(ctx context.Context, roomName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finishedRooms = append(f.finishedRooms, roomName)
	return nil
}

func (f *fakeService) HandleRecordingFinished(ctx context.Context, roomName, location string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recordingRooms[roomName] = location
	return nil
}

func (f *fakeService) Shutdown(ctx context.Context) error { return nil }

func (f *fakeService) recorded() []interviewUsecase.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]interviewUsecase.Event(nil), f.events...)
}

var testValidator = validator.New()
