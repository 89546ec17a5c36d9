package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wireroom-server/internal/core"
	"github.com/vovakirdan/wireroom-server/internal/proto"
	"github.com/vovakirdan/wireroom-server/internal/store"
)

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if v != nil {
		require.NoError(t, json.Unmarshal(body, v), "body: %s", body)
	}
	return resp.StatusCode
}

func TestHealthEndpoint(t *testing.T) {
	env := startTestServer(t, nil, "ABC234")
	ctx := testContext(t)

	var health HealthResponse
	require.Equal(t, http.StatusOK, getJSON(t, env.ts.URL+"/health", &health))
	assert.Equal(t, "ok", health.Status)
	assert.Zero(t, health.Rooms)
	assert.Zero(t, health.Players)

	createAndJoin(t, ctx, env)

	require.Equal(t, http.StatusOK, getJSON(t, env.ts.URL+"/health", &health))
	assert.Equal(t, 1, health.Rooms)
	assert.Equal(t, 2, health.Players)
}

func TestStatusEndpoint(t *testing.T) {
	env := startTestServer(t, nil, "ABC234")
	ctx := testContext(t)
	createAndJoin(t, ctx, env)

	_, err := env.missions.SaveMission(context.Background(), store.Mission{Code: "OLD111", Outcome: "timeout", CompletedAt: time.Now()})
	require.NoError(t, err)

	var status proto.Status
	require.Equal(t, http.StatusOK, getJSON(t, env.ts.URL+"/api/status", &status))
	assert.Equal(t, 1, status.Rooms)
	assert.Equal(t, 0, status.ActiveRooms)
	assert.Equal(t, 2, status.Players)
	assert.Equal(t, 2, status.Connections)
	assert.Equal(t, int64(1), status.Missions)
	assert.Equal(t, proto.ProtocolVersion, status.Protocol)
}

func TestStagesEndpointHidesAnswers(t *testing.T) {
	env := startTestServer(t, nil)

	resp, err := http.Get(env.ts.URL + "/api/stages")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(body), "2940")
	assert.NotContains(t, string(body), "amazonia")

	var payload struct {
		Stages []proto.Stage `json:"stages"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Len(t, payload.Stages, 4)
	assert.Equal(t, 1, payload.Stages[0].Index)
	assert.NotEmpty(t, payload.Stages[0].Title)
}

func TestMissionsEndpoint(t *testing.T) {
	env := startTestServer(t, nil)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, code := range []string{"AAA222", "BBB333"} {
		_, err := env.missions.SaveMission(context.Background(), store.Mission{
			Code:        code,
			FinalTime:   300,
			MaxTime:     1800,
			Outcome:     "success",
			Members:     []string{"alice"},
			StartedAt:   base,
			CompletedAt: base.Add(time.Duration(i+1) * time.Minute),
		})
		require.NoError(t, err)
	}

	var payload struct {
		Missions []proto.Mission `json:"missions"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, env.ts.URL+"/api/missions?limit=1", &payload))
	require.Len(t, payload.Missions, 1)
	assert.Equal(t, "BBB333", payload.Missions[0].Code)
	assert.Equal(t, []string{"alice"}, payload.Missions[0].Members)

	var errResp ErrorResponse
	assert.Equal(t, http.StatusBadRequest, getJSON(t, env.ts.URL+"/api/missions?limit=zero", &errResp))
	assert.NotEmpty(t, errResp.Error)
}

func TestMissionsEndpointWithoutArchive(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := zerolog.Nop()
	api := NewAPIHandlers(core.NewHub(core.HubConfig{}, nil, &logger), nil, &logger)

	router := gin.New()
	router.GET("/api/missions", api.Missions)
	router.GET("/api/status", api.Status)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/missions", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
