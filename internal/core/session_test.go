package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(clock *fakeClock) *Session {
	return NewSession(NewStageCatalog(DefaultStages()), 30*time.Minute, clock.Now)
}

func TestStartOnlyFromWaiting(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock)
	room := NewRoom("R1", "host", "alice")

	require.True(t, s.start(room))
	assert.Equal(t, PhaseActive, room.phase)
	assert.Equal(t, clock.Now(), room.startTime)
	assert.Equal(t, 1, room.currentStage)

	clock.Advance(time.Minute)
	assert.False(t, s.start(room), "duplicate start is a no-op")
	assert.Equal(t, clock.Now().Add(-time.Minute), room.startTime)
}

func TestSubmitAnswerNormalization(t *testing.T) {
	for _, answer := range []string{" 2940 ", "2940", "2,940", "2.940"} {
		t.Run(answer, func(t *testing.T) {
			s := newTestSession(newFakeClock())
			room := NewRoom("R1", "host", "alice")
			s.start(room)

			res, err := s.submitAnswer(room, 1, answer)
			require.NoError(t, err)
			assert.True(t, res.Correct)
			assert.Equal(t, 2, res.NextStage)
		})
	}
}

func TestSubmitAnswerCaseInsensitive(t *testing.T) {
	s := newTestSession(newFakeClock())
	room := NewRoom("R1", "host", "alice")
	s.start(room)
	room.currentStage = 3

	res, err := s.submitAnswer(room, 3, "  AmAzOnIe\n")
	require.NoError(t, err)
	assert.True(t, res.Correct)
}

func TestWrongAnswerNeverMutates(t *testing.T) {
	s := newTestSession(newFakeClock())
	room := NewRoom("R1", "host", "alice")
	s.start(room)

	for range 5 {
		res, err := s.submitAnswer(room, 1, "1234")
		require.NoError(t, err)
		assert.False(t, res.Correct)
	}
	assert.Equal(t, 1, room.currentStage)
	assert.Empty(t, room.solved)
}

func TestSubmitAnswerRequiresActive(t *testing.T) {
	s := newTestSession(newFakeClock())
	room := NewRoom("R1", "host", "alice")

	_, err := s.submitAnswer(room, 1, "2940")
	assert.ErrorIs(t, err, ErrGameNotActive)
	assert.Empty(t, room.solved)
}

func TestSubmitAnswerUnknownStage(t *testing.T) {
	s := newTestSession(newFakeClock())
	room := NewRoom("R1", "host", "alice")
	s.start(room)

	_, err := s.submitAnswer(room, 9, "2940")
	assert.ErrorIs(t, err, ErrInvalidStage)
}

// Answers for a stage other than the current one are checked against that
// stage's key rather than rejected. This is intentional tolerance for
// double-submits during a stage transition.
func TestStaleStageAnswerIsTolerated(t *testing.T) {
	s := newTestSession(newFakeClock())
	room := NewRoom("R1", "host", "alice")
	s.start(room)

	_, err := s.submitAnswer(room, 1, "2940")
	require.NoError(t, err)
	require.Equal(t, 2, room.currentStage)

	res, err := s.submitAnswer(room, 1, "2940")
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, 2, res.NextStage)
	assert.Len(t, room.solved, 2)
}

func TestCompleteComputesFinalTime(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock)
	room := NewRoom("R1", "host", "alice")
	s.start(room)

	answers := map[int]string{1: "2940", 2: "huit", 3: "amazon", 4: "60%"}
	for stage := 1; stage <= 4; stage++ {
		_, done := s.complete(room)
		require.False(t, done, "cannot finish before stage %d", stage)

		clock.Advance(90*time.Second + 400*time.Millisecond)
		res, err := s.submitAnswer(room, stage, answers[stage])
		require.NoError(t, err)
		require.True(t, res.Correct)
	}

	summary, done := s.complete(room)
	require.True(t, done)
	assert.Equal(t, PhaseFinished, room.phase)
	assert.False(t, room.endTime.Before(room.startTime))
	assert.Equal(t, int64(361), summary.FinalTime) // 4 * 90.4s, truncated
	assert.Equal(t, int64(1800), summary.MaxTime)
	assert.Equal(t, OutcomeSuccess, summary.Outcome)
	assert.Len(t, summary.Solved, 4)

	_, again := s.complete(room)
	assert.False(t, again, "finished is terminal")
}

func TestCompleteTimeoutOutcome(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock)
	room := NewRoom("R1", "host", "alice")
	s.start(room)

	clock.Advance(31 * time.Minute)
	room.currentStage = 5

	summary, done := s.complete(room)
	require.True(t, done)
	assert.Equal(t, OutcomeTimeout, summary.Outcome)
	assert.Equal(t, int64(31*60), summary.FinalTime)
}

func TestNeverStartedRoomCannotFinish(t *testing.T) {
	s := newTestSession(newFakeClock())
	room := NewRoom("R1", "host", "alice")
	room.currentStage = 5

	_, done := s.complete(room)
	assert.False(t, done)
	assert.Equal(t, PhaseWaiting, room.phase)
}
