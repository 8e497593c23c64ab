package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/johnquangdev/interview-assistant/errors"
	"github.com/johnquangdev/interview-assistant/internal/adapter/dto/interview"
	interviewUsecase "github.com/johnquangdev/interview-assistant/internal/usecase/interview"
	"github.com/johnquangdev/interview-assistant/pkg/jwt"
)

type streamEnv struct {
	svc       *fakeService
	server    *httptest.Server
	tickets   *jwt.Manager
	sessionID uuid.UUID
}

func newStreamEnv(t *testing.T, svc *fakeService) *streamEnv {
	t.Helper()
	tickets := jwt.NewManager("stream-secret", time.Hour)
	e := echo.New()
	e.Validator = testValidator
	NewRouter(nil, tickets, NewInterviewHandler(svc, nil),
		NewStreamHandler(svc, []string{"http://app.test"}, 0, nil), nil).Setup(e)

	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	return &streamEnv{svc: svc, server: server, tickets: tickets, sessionID: uuid.New()}
}

func (env *streamEnv) url(t *testing.T) string {
	t.Helper()
	ticket, err := env.tickets.GenerateStreamTicket(env.sessionID, "acme", jwt.RoleAgent)
	require.NoError(t, err)
	return "ws" + strings.TrimPrefix(env.server.URL, "http") + "/v1/interviews/" + env.sessionID.String() + "/stream?ticket=" + ticket
}

func TestStream_RelaysEventsAndInstructions(t *testing.T) {
	svc := newFakeService()
	svc.dispatchFn = func(id uuid.UUID, ev interviewUsecase.Event) ([]interviewUsecase.Instruction, error) {
		if ev.Type == interviewUsecase.EventSessionReady {
			return []interviewUsecase.Instruction{{Type: interviewUsecase.InstructionSessionUpdate, Kind: interviewUsecase.KindConfigure, Text: "persona"}}, nil
		}
		return nil, nil
	}
	env := newStreamEnv(t, svc)

	conn, _, err := websocket.DefaultDialer.Dial(env.url(t), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, conn.WriteJSON(interview.EventRequest{Type: "session.ready"}))
	var in interview.InstructionResponse
	require.NoError(t, conn.ReadJSON(&in))
	assert.Equal(t, "session.update", in.Type)
	assert.Equal(t, "persona", in.Instructions)

	svc.instructions <- interviewUsecase.Instruction{Type: interviewUsecase.InstructionResponseCreate, Kind: interviewUsecase.KindRedirect, Text: "back to the question"}
	require.NoError(t, conn.ReadJSON(&in))
	assert.Equal(t, "redirect", in.Kind)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	var streamErr interview.StreamErrorResponse
	require.NoError(t, conn.ReadJSON(&streamErr))
	assert.Equal(t, "error", streamErr.Type)
	assert.Equal(t, int(apperrors.ErrorCode_INVALID_PAYLOAD), streamErr.Code)

	close(svc.done)
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error %v", err)

	select {
	case <-svc.detached:
	case <-time.After(5 * time.Second):
		t.Fatal("stream was not detached")
	}
}

func TestStream_ClosesWhenSessionNotLive(t *testing.T) {
	svc := newFakeService()
	svc.dispatchFn = func(id uuid.UUID, ev interviewUsecase.Event) ([]interviewUsecase.Instruction, error) {
		return nil, apperrors.ErrInterviewNotLive(id.String())
	}
	env := newStreamEnv(t, svc)

	conn, _, err := websocket.DefaultDialer.Dial(env.url(t), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, conn.WriteJSON(interview.EventRequest{Type: "candidate.transcript.done", Text: "hello"}))
	var streamErr interview.StreamErrorResponse
	require.NoError(t, conn.ReadJSON(&streamErr))
	assert.Equal(t, int(apperrors.ErrorCode_INTERVIEW_NOT_LIVE), streamErr.Code)

	select {
	case <-svc.detached:
	case <-time.After(5 * time.Second):
		t.Fatal("stream was not detached")
	}
}

func TestStream_RequiresTicket(t *testing.T) {
	env := newStreamEnv(t, newFakeService())

	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/v1/interviews/" + env.sessionID.String() + "/stream"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStream_AttachConflict(t *testing.T) {
	svc := newFakeService()
	svc.attachErr = apperrors.ErrAlreadyExists("interview stream")
	env := newStreamEnv(t, svc)

	_, resp, err := websocket.DefaultDialer.Dial(env.url(t), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestStream_RejectsForeignOrigin(t *testing.T) {
	env := newStreamEnv(t, newFakeService())

	header := http.Header{}
	header.Set("Origin", "http://evil.test")
	_, resp, err := websocket.DefaultDialer.Dial(env.url(t), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://app.test"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://APP.test")
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://other.test")
	assert.False(t, check(req))

	assert.True(t, originChecker([]string{"*"})(req))
}
