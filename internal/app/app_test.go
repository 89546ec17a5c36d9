package app

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wireroom-server/internal/config"
)

func TestHubConfigMergesStageOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.RoomCodeLength = 8
	cfg.Stages = []config.StageConfig{
		{Index: 2, Answers: []string{"eight"}},
		{Index: 5, Title: "Bonus", Answers: []string{"42"}},
	}

	hc := HubConfig(&cfg)
	require.Len(t, hc.Stages, 5)
	assert.Equal(t, []string{"eight"}, hc.Stages[1].Answers)
	assert.NotEmpty(t, hc.Stages[1].Title, "blank override keeps the built-in title")
	assert.Equal(t, "Bonus", hc.Stages[4].Title)
	assert.Len(t, hc.NewCode(), 8)
	assert.Equal(t, 30*time.Minute, hc.MaxMissionTime)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	logger := zerolog.Nop()
	cfg := config.Default()
	cfg.MaxMembers = 0

	_, err := New(&cfg, &logger)
	assert.Error(t, err)
}

func TestRunStopsOnCancel(t *testing.T) {
	logger := zerolog.Nop()
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.DatabasePath = ""
	cfg.ShutdownTimeout = time.Second

	application, err := New(&cfg, &logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
