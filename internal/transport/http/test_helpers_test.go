package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wireroom-server/internal/config"
	"github.com/vovakirdan/wireroom-server/internal/core"
	"github.com/vovakirdan/wireroom-server/internal/proto"
	"github.com/vovakirdan/wireroom-server/internal/store"
	"github.com/vovakirdan/wireroom-server/internal/store/sqlite"
)

// wireOutbound mirrors proto.Outbound with the payload left raw.
type wireOutbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

type testEnv struct {
	ts       *httptest.Server
	hub      *core.Hub
	missions store.Store
}

// createTestStore creates an in-memory SQLite archive with migrations applied.
func createTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", sqlite.Migrate)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func startTestServer(t *testing.T, mutate func(*config.Config), codes ...string) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.RateLimitPerSecond = 0
	if mutate != nil {
		mutate(&cfg)
	}

	logger := zerolog.Nop()
	missions := createTestStore(t)

	var (
		mu sync.Mutex
		i  int
	)
	hub := core.NewHub(core.HubConfig{
		MaxMembers:     cfg.MaxMembers,
		MaxMissionTime: cfg.MaxMissionTime,
		NewCode: func() string {
			mu.Lock()
			defer mu.Unlock()
			i++
			if i <= len(codes) {
				return codes[i-1]
			}
			return fmt.Sprintf("ROOM%02d", i)
		},
	}, missions, &logger)

	server := NewServer(hub, missions, &cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, hub: hub, missions: missions}
}

func (e *testEnv) dial(t *testing.T, ctx context.Context) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(e.ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		require.NoError(t, err)
		raw = b
	}
	require.NoError(t, wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: raw}))
}

func readOutbound(t *testing.T, ctx context.Context, conn *websocket.Conn) wireOutbound {
	t.Helper()

	var out wireOutbound
	require.NoError(t, wsjson.Read(ctx, conn, &out))
	return out
}

// readEvent skips frames until the named event arrives and decodes its data into v.
func readEvent(t *testing.T, ctx context.Context, conn *websocket.Conn, name string, v any) {
	t.Helper()

	for {
		out := readOutbound(t, ctx, conn)
		if out.Type != proto.OutboundTypeEvent || out.Event != name {
			continue
		}
		if v != nil {
			require.NoError(t, json.Unmarshal(out.Data, v))
		}
		return
	}
}

// readError skips frames until an error envelope arrives.
func readError(t *testing.T, ctx context.Context, conn *websocket.Conn) *proto.Error {
	t.Helper()

	for {
		out := readOutbound(t, ctx, conn)
		if out.Type == proto.OutboundTypeError {
			require.NotNil(t, out.Error)
			return out.Error
		}
	}
}
