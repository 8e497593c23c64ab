package livekit

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClient_GenerateTokenCarriesGrant(t *testing.T) {
	c := NewClient("ws://localhost:7880", "devkey", "devsecret-devsecret-devsecret-00", true)

	token, err := c.GenerateToken(IdentityCandidatePrefix+"abc", "interview-abc", "Jane", CandidateTokenOptions(time.Hour))
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)

	assert.Equal(t, "candidate-abc", claims["sub"])
	assert.Equal(t, "devkey", claims["iss"])
	video, ok := claims["video"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "interview-abc", video["room"])
	assert.Equal(t, true, video["roomJoin"])
}

func TestMockClient_AgentIsRoomAdmin(t *testing.T) {
	c := NewClient("", "", "", true)

	token, err := c.GenerateToken(IdentityAgentPrefix+"abc", "interview-abc", "Interviewer", AgentTokenOptions(time.Hour))
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	video := claims["video"].(map[string]interface{})
	assert.Equal(t, true, video["roomAdmin"])
}

func TestMockClient_RoomLifecycle(t *testing.T) {
	c := NewClient("", "", "", true)
	ctx := context.Background()

	room, err := c.CreateRoom(ctx, "interview-1", DefaultRoomOptions(`{"tenant":"t1"}`))
	require.NoError(t, err)
	assert.Equal(t, "interview-1", room.Name)
	assert.Equal(t, int32(3), room.MaxParticipants)
	assert.Equal(t, `{"tenant":"t1"}`, room.Metadata)

	egressID, err := c.StartRecording(ctx, "interview-1", &RecordingTarget{Bucket: "b", Filepath: "x.ogg"})
	require.NoError(t, err)
	assert.Contains(t, egressID, "EG_mock_")
	assert.NoError(t, c.StopRecording(ctx, egressID))
	assert.NoError(t, c.DeleteRoom(ctx, "interview-1"))
}
