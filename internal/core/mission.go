package core

import "context"

// MissionRecorder archives finished missions. Implementations may block on I/O;
// the hub calls them after releasing the room lock.
type MissionRecorder interface {
	RecordMission(ctx context.Context, summary Summary) error
}
