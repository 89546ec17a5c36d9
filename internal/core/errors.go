package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeRoomNotFound   = "room_not_found"
	ErrCodeAlreadyStarted = "already_started"
	ErrCodeRoomFull       = "room_full"
	ErrCodeInvalidStage   = "invalid_stage"
	ErrCodeWrongAnswer    = "wrong_answer"
	ErrCodeUnknownTarget  = "unknown_target"
	ErrCodeNotInRoom      = "not_in_room"
	ErrCodeGameNotActive  = "game_not_active"
	ErrCodeBadRequest     = "bad_request"
	ErrCodeInternal       = "internal_error"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrAlreadyStarted = errors.New("game already started")
	ErrRoomFull       = errors.New("room is full")
	ErrInvalidStage   = errors.New("invalid stage")
	ErrUnknownTarget  = errors.New("unknown target")
	ErrNotInRoom      = errors.New("not in room")
	ErrGameNotActive  = errors.New("game is not active")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

// toCoreError maps sentinel errors onto their wire code.
func toCoreError(err error) *CoreError {
	var ce *CoreError
	switch {
	case errors.As(err, &ce):
		return ce
	case errors.Is(err, ErrRoomNotFound):
		return coreError(ErrCodeRoomNotFound, "room not found")
	case errors.Is(err, ErrAlreadyStarted):
		return coreError(ErrCodeAlreadyStarted, "the game has already started")
	case errors.Is(err, ErrRoomFull):
		return coreError(ErrCodeRoomFull, "room is full")
	case errors.Is(err, ErrInvalidStage):
		return coreError(ErrCodeInvalidStage, "no answer key for this stage")
	case errors.Is(err, ErrUnknownTarget):
		return coreError(ErrCodeUnknownTarget, "target is no longer connected")
	case errors.Is(err, ErrNotInRoom):
		return coreError(ErrCodeNotInRoom, "not a member of this room")
	case errors.Is(err, ErrGameNotActive):
		return coreError(ErrCodeGameNotActive, "the game is not running")
	default:
		return coreError(ErrCodeInternal, "internal error")
	}
}
