package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	auctions "auction-escrow/internal/auctionService"
	"auction-escrow/internal/auth"
	"auction-escrow/internal/clock"
	"auction-escrow/internal/config"
	model "auction-escrow/internal/models"
	"auction-escrow/internal/server"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testSecret = "integration-secret"

// TestEnv is one fully wired application with a controllable clock
type TestEnv struct {
	App   *server.App
	Clock *clock.Manual
	Redis *miniredis.Miniredis
}

// SetupTestApp wires the application against miniredis and an in-memory journal.
func SetupTestApp(t *testing.T) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{
		JWTSecret:      testSecret,
		TokenTTL:       time.Hour,
		RedisURL:       "redis://" + mr.Addr() + "/0",
		EventsChannel:  "auction-events",
		DatabaseDriver: "sqlite",
		DatabaseURL:    ":memory:",
		FaucetEnabled:  true,
	}

	c := clock.NewManual(1_700_000_000_000)
	app, err := server.CreateApp(context.Background(), cfg, auctions.WithClock(c))
	require.NoError(t, err)
	t.Cleanup(app.Close)

	return &TestEnv{App: app, Clock: c, Redis: mr}
}

// Token mints a bearer token for an identity
func Token(t *testing.T, id model.Identity) string {
	t.Helper()
	signed, _, err := auth.NewToken([]byte(testSecret), id, time.Hour)
	require.NoError(t, err)
	return signed
}

// ExecuteRequestAndParse executes an HTTP request as caller and parses the response envelope
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, caller model.Identity, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		var err error
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set("Authorization", "Bearer "+Token(t, caller))
	}
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}

// Data returns the data object of a successful response
func Data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", resp)
	return data
}
