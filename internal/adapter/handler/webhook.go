package handler

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"
	"github.com/livekit/protocol/webhook"
	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/johnquangdev/interview-assistant/errors"
	interviewUsecase "github.com/johnquangdev/interview-assistant/internal/usecase/interview"
)

const maxWebhookBody = 1 << 20

// LiveKit webhook event names
const (
	eventRoomFinished = "room_finished"
	eventEgressEnded  = "egress_ended"
)

// WebhookHandler handles LiveKit webhook events
type WebhookHandler struct {
	service       interviewUsecase.Service
	keys          auth.KeyProvider
	allowUnsigned bool
	logger        *zap.Logger
}

// NewWebhookHandler creates a new webhook handler. Unsigned events are only
// accepted when allowUnsigned is set, for local development.
func NewWebhookHandler(service interviewUsecase.Service, livekitAPIKey, livekitSecret string, allowUnsigned bool, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{
		service:       service,
		keys:          auth.NewSimpleKeyProvider(livekitAPIKey, livekitSecret),
		allowUnsigned: allowUnsigned,
		logger:        logger,
	}
}

// HandleLiveKitWebhook handles POST /webhooks/livekit
// @Summary      LiveKit Webhook
// @Description  Receives signed webhook events from LiveKit. room_finished ends the live interview,
// @Description  egress_ended stores the recording location.
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  common.SuccessResponse
// @Failure      401  {object}  common.ErrorResponse
// @Router       /webhooks/livekit [post]
func (h *WebhookHandler) HandleLiveKitWebhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload().WithDetail("reason", err.Error()))
	}

	event, err := h.receive(c.Request(), body)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if ce := h.logger.Check(zap.DebugLevel, "webhook.livekit.received"); ce != nil {
		raw, _ := protojson.Marshal(event)
		ce.Write(zap.String("event", event.GetEvent()), zap.ByteString("payload", raw))
	}

	ctx := c.Request().Context()
	switch event.GetEvent() {
	case eventRoomFinished:
		roomName := event.GetRoom().GetName()
		if roomName == "" {
			break
		}
		if err := h.service.HandleRoomFinished(ctx, roomName); err != nil {
			return HandleError(h.logger, c, err)
		}
		h.logger.Info("webhook.livekit.room_finished", zap.String("room", roomName))

	case eventEgressEnded:
		info := event.GetEgressInfo()
		if info == nil || info.GetStatus() != livekit.EgressStatus_EGRESS_COMPLETE {
			break
		}
		location := recordingLocation(info)
		if location == "" {
			h.logger.Warn("webhook.livekit.egress_without_file", zap.String("egress_id", info.GetEgressId()))
			break
		}
		if err := h.service.HandleRecordingFinished(ctx, info.GetRoomName(), location); err != nil {
			return HandleError(h.logger, c, err)
		}
		h.logger.Info("webhook.livekit.recording_finished",
			zap.String("room", info.GetRoomName()),
			zap.String("egress_id", info.GetEgressId()),
		)

	default:
		h.logger.Debug("webhook.livekit.ignored", zap.String("event", event.GetEvent()))
	}

	return HandleSuccess(h.logger, c, map[string]string{"status": "ok"})
}

// receive validates the signature of the event, falling back to unsigned
// parsing only when allowed
func (h *WebhookHandler) receive(r *http.Request, body []byte) (*livekit.WebhookEvent, error) {
	if r.Header.Get("Authorization") != "" {
		r.Body = io.NopCloser(bytes.NewReader(body))
		event, err := webhook.ReceiveWebhookEvent(r, h.keys)
		if err == nil {
			return event, nil
		}
		if !h.allowUnsigned {
			return nil, errors.ErrUnauthenticated().WithDetail("reason", "invalid webhook signature")
		}
		h.logger.Warn("webhook.livekit.signature_invalid", zap.Error(err))
	} else if !h.allowUnsigned {
		return nil, errors.ErrUnauthenticated()
	}

	event := &livekit.WebhookEvent{}
	if err := (protojson.UnmarshalOptions{DiscardUnknown: true}).Unmarshal(body, event); err != nil {
		return nil, errors.ErrInvalidPayload().WithDetail("reason", err.Error())
	}
	return event, nil
}

func recordingLocation(info *livekit.EgressInfo) string {
	for _, f := range info.GetFileResults() {
		if loc := strings.TrimSpace(f.GetLocation()); loc != "" {
			return loc
		}
	}
	return ""
}
