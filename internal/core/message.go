package core

import "time"

// Message is a chat line or shared clue inside a room.
type Message struct {
	Room      string
	FromID    string
	From      string
	Text      string
	CreatedAt time.Time
}
