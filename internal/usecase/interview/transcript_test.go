package interview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
)

func TestTranscriptStore_AgentDeltas(t *testing.T) {
	store := NewTranscriptStore(uuid.New(), 0)

	store.AgentDelta("Can you ")
	store.AgentDelta("describe it?")
	turn, ok := store.AgentDone("")
	require.True(t, ok)
	assert.Equal(t, "Can you describe it?", turn.Text)
	assert.Equal(t, entities.RoleAgent, turn.Role)
	assert.Equal(t, 1, turn.Sequence)

	store.AgentDelta("partial")
	turn, ok = store.AgentDone("The final text wins.")
	require.True(t, ok)
	assert.Equal(t, "The final text wins.", turn.Text)

	_, ok = store.AgentDone("")
	assert.False(t, ok)
}

func TestTranscriptStore_SequenceContinues(t *testing.T) {
	store := NewTranscriptStore(uuid.New(), 7)

	turn, ok := store.Candidate("  hello there  ")
	require.True(t, ok)
	assert.Equal(t, 8, turn.Sequence)
	assert.Equal(t, "hello there", turn.Text)

	_, ok = store.Candidate("   ")
	assert.False(t, ok)
	assert.Len(t, store.Turns(), 1)
}

func TestTranscriptStore_Flush(t *testing.T) {
	store := NewTranscriptStore(uuid.New(), 0)

	_, ok := store.Flush()
	assert.False(t, ok)

	store.AgentDelta("Thanks for your time")
	turn, ok := store.Flush()
	require.True(t, ok)
	assert.Equal(t, "Thanks for your time", turn.Text)
}

func TestFormatTranscript(t *testing.T) {
	id := uuid.New()
	turns := []*entities.TranscriptTurn{
		entities.NewTranscriptTurn(id, 1, entities.RoleAgent, "Why Go?"),
		entities.NewTranscriptTurn(id, 2, entities.RoleCandidate, "Simplicity."),
	}
	assert.Equal(t, "Interviewer: Why Go?\nCandidate: Simplicity.\n", FormatTranscript(turns))
}

func TestWriter_RunsJobsInOrder(t *testing.T) {
	w := NewWriter(4, time.Second, nil)

	var mu sync.Mutex
	var order []int
	for i := 0; i < 20; i++ {
		i := i
		ok := w.Submit("job", func(ctx context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, i)
			return nil
		})
		require.True(t, ok)
	}
	w.Submit("failing", func(ctx context.Context) error { return errors.New("boom") })

	require.NoError(t, w.Close(context.Background()))
	require.Len(t, order, 20)
	for i, v := range order {
		assert.Equal(t, i, v)
	}

	assert.False(t, w.Submit("late", func(ctx context.Context) error { return nil }))
}

func TestWriter_CloseHonorsContext(t *testing.T) {
	w := NewWriter(1, time.Second, nil)
	release := make(chan struct{})
	w.Submit("slow", func(ctx context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, w.Close(ctx), context.DeadlineExceeded)

	close(release)
}
