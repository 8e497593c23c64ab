package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/interview-assistant/pkg/jwt"
)

func serve(t *testing.T, tickets *jwt.Manager, sessionID, ticket string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET("/v1/interviews/:id/stream", func(c echo.Context) error {
		claims, ok := TicketClaims(c)
		require.True(t, ok)
		return c.String(http.StatusOK, claims.Role)
	}, RequireStreamTicket(tickets))

	req := httptest.NewRequest(http.MethodGet, "/v1/interviews/"+sessionID+"/stream?ticket="+ticket, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireStreamTicket(t *testing.T) {
	tickets := jwt.NewManager("secret", time.Hour)
	sessionID := uuid.New()
	ticket, err := tickets.GenerateStreamTicket(sessionID, "acme", jwt.RoleAgent)
	require.NoError(t, err)

	rec := serve(t, tickets, sessionID.String(), ticket)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, jwt.RoleAgent, rec.Body.String())

	rec = serve(t, tickets, uuid.NewString(), ticket)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, tickets, sessionID.String(), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
