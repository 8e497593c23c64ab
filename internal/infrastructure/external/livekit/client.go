package livekit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/livekit/protocol/auth"
	livekit "github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
)

// Participant identities used in interview rooms
const (
	IdentityAgentPrefix     = "agent-"
	IdentityCandidatePrefix = "candidate-"
)

// Client wraps the LiveKit operations an interview needs
type Client interface {
	CreateRoom(ctx context.Context, name string, options *CreateRoomOptions) (*RoomInfo, error)
	DeleteRoom(ctx context.Context, roomName string) error
	GenerateToken(identity, roomName, participantName string, options *TokenOptions) (string, error)
	StartRecording(ctx context.Context, roomName string, target *RecordingTarget) (string, error)
	StopRecording(ctx context.Context, egressID string) error
}

// CreateRoomOptions holds options for creating a room
type CreateRoomOptions struct {
	MaxParticipants  int32
	EmptyTimeout     int32 // seconds before an unjoined room is closed
	DepartureTimeout int32 // seconds after the last participant leaves
	Metadata         string
}

// TokenOptions holds options for generating an access token
type TokenOptions struct {
	ValidFor       time.Duration
	CanPublish     bool
	CanSubscribe   bool
	CanPublishData bool
	RoomAdmin      bool
	Metadata       string
}

// RoomInfo holds room information
type RoomInfo struct {
	Name            string
	SID             string
	CreationTime    time.Time
	MaxParticipants int32
	Metadata        string
}

// RecordingTarget is the S3 compatible bucket an audio recording is written to
type RecordingTarget struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Filepath  string
}

// DefaultRoomOptions returns the options used for one-to-one interview rooms
func DefaultRoomOptions(metadata string) *CreateRoomOptions {
	return &CreateRoomOptions{
		MaxParticipants:  3, // candidate, agent, egress
		EmptyTimeout:     300,
		DepartureTimeout: 30,
		Metadata:         metadata,
	}
}

// CandidateTokenOptions returns publish/subscribe grants for the candidate
func CandidateTokenOptions(ttl time.Duration) *TokenOptions {
	return &TokenOptions{
		ValidFor:       ttl,
		CanPublish:     true,
		CanSubscribe:   true,
		CanPublishData: true,
	}
}

// AgentTokenOptions returns grants for the hosted conversational agent
func AgentTokenOptions(ttl time.Duration) *TokenOptions {
	return &TokenOptions{
		ValidFor:       ttl,
		CanPublish:     true,
		CanSubscribe:   true,
		CanPublishData: true,
		RoomAdmin:      true,
	}
}

// realClient is the real LiveKit client implementation
type realClient struct {
	roomClient   *lksdk.RoomServiceClient
	egressClient *lksdk.EgressClient
	apiKey       string
	apiSecret    string
	url          string
}

// NewClient creates a new LiveKit client
func NewClient(url, apiKey, apiSecret string, useMock bool) Client {
	if useMock {
		return &mockClient{
			apiKey:    apiKey,
			apiSecret: apiSecret,
		}
	}

	return &realClient{
		roomClient:   lksdk.NewRoomServiceClient(url, apiKey, apiSecret),
		egressClient: lksdk.NewEgressClient(url, apiKey, apiSecret),
		apiKey:       apiKey,
		apiSecret:    apiSecret,
		url:          url,
	}
}

// CreateRoom creates a new room in LiveKit
func (c *realClient) CreateRoom(ctx context.Context, name string, options *CreateRoomOptions) (*RoomInfo, error) {
	if options == nil {
		options = DefaultRoomOptions("")
	}

	room, err := c.roomClient.CreateRoom(ctx, &livekit.CreateRoomRequest{
		Name:             name,
		MaxParticipants:  uint32(options.MaxParticipants),
		EmptyTimeout:     uint32(options.EmptyTimeout),
		DepartureTimeout: uint32(options.DepartureTimeout),
		Metadata:         options.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	return &RoomInfo{
		Name:            room.Name,
		SID:             room.Sid,
		CreationTime:    time.Unix(room.CreationTime, 0),
		MaxParticipants: int32(room.MaxParticipants),
		Metadata:        room.Metadata,
	}, nil
}

// DeleteRoom deletes a room from LiveKit
func (c *realClient) DeleteRoom(ctx context.Context, roomName string) error {
	_, err := c.roomClient.DeleteRoom(ctx, &livekit.DeleteRoomRequest{
		Room: roomName,
	})
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}

// GenerateToken generates an access token for joining a room
func (c *realClient) GenerateToken(identity, roomName, participantName string, options *TokenOptions) (string, error) {
	return signToken(c.apiKey, c.apiSecret, identity, roomName, participantName, options)
}

// StartRecording starts an audio-only room composite egress
func (c *realClient) StartRecording(ctx context.Context, roomName string, target *RecordingTarget) (string, error) {
	if target == nil {
		return "", fmt.Errorf("recording target is required")
	}

	info, err := c.egressClient.StartRoomCompositeEgress(ctx, &livekit.RoomCompositeEgressRequest{
		RoomName:  roomName,
		AudioOnly: true,
		FileOutputs: []*livekit.EncodedFileOutput{{
			FileType: livekit.EncodedFileType_OGG,
			Filepath: target.Filepath,
			Output: &livekit.EncodedFileOutput_S3{S3: &livekit.S3Upload{
				AccessKey:      target.AccessKey,
				Secret:         target.SecretKey,
				Bucket:         target.Bucket,
				Endpoint:       target.Endpoint,
				Region:         target.Region,
				ForcePathStyle: true,
			}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to start egress: %w", err)
	}
	return info.EgressId, nil
}

// StopRecording stops an ongoing egress
func (c *realClient) StopRecording(ctx context.Context, egressID string) error {
	if _, err := c.egressClient.StopEgress(ctx, &livekit.StopEgressRequest{EgressId: egressID}); err != nil {
		return fmt.Errorf("failed to stop egress: %w", err)
	}
	return nil
}

func signToken(apiKey, apiSecret, identity, roomName, participantName string, options *TokenOptions) (string, error) {
	if options == nil {
		options = CandidateTokenOptions(2 * time.Hour)
	}

	grant := &auth.VideoGrant{
		RoomJoin:       true,
		Room:           roomName,
		RoomAdmin:      options.RoomAdmin,
		CanPublish:     &options.CanPublish,
		CanSubscribe:   &options.CanSubscribe,
		CanPublishData: &options.CanPublishData,
	}

	at := auth.NewAccessToken(apiKey, apiSecret)
	at.AddGrant(grant).
		SetIdentity(identity).
		SetName(participantName).
		SetMetadata(options.Metadata).
		SetValidFor(options.ValidFor)

	token, err := at.ToJWT()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// mockClient is used when no LiveKit server is available
type mockClient struct {
	apiKey    string
	apiSecret string
}

// CreateRoom (mock) simulates room creation
func (m *mockClient) CreateRoom(ctx context.Context, name string, options *CreateRoomOptions) (*RoomInfo, error) {
	if options == nil {
		options = DefaultRoomOptions("")
	}
	return &RoomInfo{
		Name:            name,
		SID:             "mock-sid-" + uuid.New().String(),
		CreationTime:    time.Now(),
		MaxParticipants: options.MaxParticipants,
		Metadata:        options.Metadata,
	}, nil
}

// DeleteRoom (mock) always succeeds
func (m *mockClient) DeleteRoom(ctx context.Context, roomName string) error {
	return nil
}

// GenerateToken (mock) signs a real token with the configured keys
func (m *mockClient) GenerateToken(identity, roomName, participantName string, options *TokenOptions) (string, error) {
	key, secret := m.apiKey, m.apiSecret
	if key == "" || secret == "" {
		key, secret = "mock-key", "mock-secret-mock-secret-mock-secret"
	}
	return signToken(key, secret, identity, roomName, participantName, options)
}

// StartRecording (mock) returns a fake egress ID
func (m *mockClient) StartRecording(ctx context.Context, roomName string, target *RecordingTarget) (string, error) {
	return "EG_mock_" + uuid.New().String(), nil
}

// StopRecording (mock) always succeeds
func (m *mockClient) StopRecording(ctx context.Context, egressID string) error {
	return nil
}
