package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-assistant/errors"
	"github.com/johnquangdev/interview-assistant/internal/adapter/dto/interview"
	"github.com/johnquangdev/interview-assistant/internal/adapter/presenter"
	interviewUsecase "github.com/johnquangdev/interview-assistant/internal/usecase/interview"
	"github.com/johnquangdev/interview-assistant/pkg/logger"
	"github.com/johnquangdev/interview-assistant/pkg/middleware"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	defaultReadLimit = 64 * 1024
)

// Stream bridges a live interview to a WebSocket connection. Inbound
// messages are live events, outbound messages are agent instructions.
type Stream struct {
	service   interviewUsecase.Service
	upgrader  websocket.Upgrader
	readLimit int64
	logger    *zap.Logger
}

// NewStreamHandler creates the live stream handler
func NewStreamHandler(service interviewUsecase.Service, allowedOrigins []string, readLimit int64, logger *zap.Logger) *Stream {
	if logger == nil {
		logger = zap.NewNop()
	}
	if readLimit <= 0 {
		readLimit = defaultReadLimit
	}
	return &Stream{
		service:   service,
		readLimit: readLimit,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// originChecker accepts requests without an Origin header (server-side
// agents) and browser requests from the allowed origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(strings.TrimSpace(a), origin) {
				return true
			}
		}
		return false
	}
}

// streamConn serializes writes to a gorilla connection
type streamConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (s *streamConn) writeJSON(v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(v)
}

func (s *streamConn) writeControl(messageType int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteControl(messageType, data, time.Now().Add(writeWait))
}

// Handle handles GET /interviews/:id/stream
// @Summary      Live event stream
// @Description  Upgrades to a WebSocket. Send live events as JSON messages; receive agent instructions.
// @Description  Requires a stream ticket issued at creation, as ?ticket= or a bearer token.
// @Tags         Interviews
// @Param        id      path   string  true   "Interview ID"
// @Param        ticket  query  string  false  "Stream ticket"
// @Success      101
// @Failure      401  {object}  common.ErrorResponse
// @Failure      409  {object}  common.ErrorResponse  "Interview not live or stream already attached"
// @Router       /interviews/{id}/stream [get]
func (h *Stream) Handle(c echo.Context) error {
	id, err := sessionIDParam(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	ctx := c.Request().Context()
	instructions, done, detach, err := h.service.Attach(ctx, id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	defer detach()

	tenantID := ""
	if claims, ok := middleware.TicketClaims(c); ok {
		tenantID = claims.TenantID
	}
	log := logger.ForSession(h.logger, id.String(), tenantID)

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader already replied with an HTTP error
		log.Warn("stream.upgrade_failed", zap.Error(err))
		return nil
	}
	defer conn.Close()

	sc := &streamConn{conn: conn}
	conn.SetReadLimit(h.readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	log.Info("stream.attached")

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.writePump(sc, instructions, done, stop, log)
	}()

	h.readPump(ctx, id, sc, log)
	close(stop)
	wg.Wait()

	log.Info("stream.detached")
	return nil
}

// readPump dispatches inbound events until the connection closes
func (h *Stream) readPump(ctx context.Context, id uuid.UUID, sc *streamConn, log *zap.Logger) {
	for {
		_, data, err := sc.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("stream.read_failed", zap.Error(err))
			}
			return
		}

		var req interview.EventRequest
		if err := json.Unmarshal(data, &req); err != nil || req.Type == "" {
			appErr := errors.ErrInvalidPayload()
			_ = sc.writeJSON(interview.StreamErrorResponse{Type: "error", Code: int(appErr.Code), Message: appErr.Message})
			continue
		}

		out, err := h.service.Dispatch(ctx, id, interviewUsecase.Event{
			Type:  interviewUsecase.EventType(req.Type),
			Text:  req.Text,
			Delta: req.Delta,
		})
		if err != nil {
			appErr := asAppError(err)
			_ = sc.writeJSON(interview.StreamErrorResponse{Type: "error", Code: int(appErr.Code), Message: appErr.Message})
			if appErr.Code == errors.ErrorCode_INTERVIEW_NOT_LIVE {
				return
			}
			continue
		}

		for _, in := range out {
			if err := sc.writeJSON(presenter.ToInstructionResponse(in)); err != nil {
				log.Warn("stream.write_failed", zap.Error(err))
				return
			}
		}
	}
}

// writePump relays asynchronous instructions and keeps the connection alive
func (h *Stream) writePump(sc *streamConn, instructions <-chan interviewUsecase.Instruction, done <-chan struct{}, stop <-chan struct{}, log *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case in, ok := <-instructions:
			if !ok {
				instructions = nil
				continue
			}
			if err := sc.writeJSON(presenter.ToInstructionResponse(in)); err != nil {
				log.Warn("stream.write_failed", zap.Error(err))
				_ = sc.conn.Close()
				return
			}
		case <-done:
			_ = sc.writeControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "interview ended"))
			// unblocks readPump
			_ = sc.conn.Close()
			return
		case <-ticker.C:
			if err := sc.writeControl(websocket.PingMessage, nil); err != nil {
				_ = sc.conn.Close()
				return
			}
		}
	}
}
