package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/mijwad7/elevateHub/internal/config"
	"github.com/mijwad7/elevateHub/internal/db"
	httpserver "github.com/mijwad7/elevateHub/internal/http"
	"github.com/mijwad7/elevateHub/internal/service"
)

var initOnce sync.Once

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	initOnce.Do(func() {
		os.Setenv("JWT_SECRET", "test-secret")
		service.InitJWT()
		gin.SetMode(gin.TestMode)
	})

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.MigrateUp(dsn))
	return pool
}

func setupServer(t *testing.T, pool *pgxpool.Pool) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		AppPort:        "0",
		APIRateLimit:   10000,
		APIRateWindow:  time.Minute,
		AuthRateLimit:  10000,
		AuthRateWindow: time.Minute,

		UpvoteReward:           1,
		DownloadReward:         5,
		MentorshipFee:          15,
		MentorshipAcceptReward: 10,
		MentorshipRatingReward: 20,
	}

	engine := gin.New()
	httpserver.RegisterRoutes(engine, pool, cfg, "test")

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv
}

type testUser struct {
	ID    int64
	Name  string
	Token string
}

func registerUser(t *testing.T, srv *httptest.Server) *testUser {
	t.Helper()
	name := "u" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]

	body := postJSON(t, srv, "", "/api/auth/register", map[string]any{
		"username": name,
		"email":    name + "@example.com",
		"password": "hunter2hunter2",
	}, http.StatusCreated)

	user := body["user"].(map[string]any)
	return &testUser{
		ID:    int64(user["id"].(float64)),
		Name:  name,
		Token: body["token"].(string),
	}
}

func postJSON(t *testing.T, srv *httptest.Server, token, path string, payload map[string]any, wantStatus int) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(payload))

	req, err := http.NewRequest(http.MethodPost, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equalf(t, wantStatus, resp.StatusCode, "POST %s: %v", path, body)
	return body
}

func getJSON(t *testing.T, srv *httptest.Server, token, path string) map[string]any {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func dialWS(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, path), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame map[string]any
	require.NoError(t, json.Unmarshal(msg, &frame))
	return frame
}

// expectNoFrame asserts that nothing arrives on the connection for a short
// window. The connection cannot be read from again afterwards.
func expectNoFrame(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	netErr, ok := err.(net.Error)
	require.Truef(t, ok && netErr.Timeout(), "expected read timeout, got %v", err)
}

// expectClose reads until the peer closes the connection and asserts the
// close code.
func expectClose(t *testing.T, conn *websocket.Conn, wantCode int) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		_, _, err := conn.ReadMessage()
		if err == nil {
			continue
		}
		closeErr, ok := err.(*websocket.CloseError)
		require.Truef(t, ok, "expected close error, got %v", err)
		require.Equal(t, wantCode, closeErr.Code)
		return
	}
}

func balanceOf(t *testing.T, srv *httptest.Server, u *testUser) int64 {
	t.Helper()
	body := getJSON(t, srv, u.Token, "/api/credits/balance")
	return int64(body["balance"].(float64))
}

func uniqueTargetID() int64 {
	return time.Now().UnixNano()
}
