package core

import "sync"

const clientEventBuffer = 64

// Client is a live connection as seen by the core layer.
type Client struct {
	ID     string
	Events chan *Event

	mu   sync.RWMutex
	name string
	room string
}

// NewClient constructs a client with initialized channels.
func NewClient(id, name string) *Client {
	return &Client{
		ID:     id,
		name:   name,
		Events: make(chan *Event, clientEventBuffer),
	}
}

// Name returns the last display name the client used.
func (c *Client) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// SetName records a display name. Blank names are ignored.
func (c *Client) SetName(name string) {
	if name == "" {
		return
	}
	c.mu.Lock()
	c.name = name
	c.mu.Unlock()
}

// RoomCode returns the code of the room the client is in, or "".
func (c *Client) RoomCode() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}

func (c *Client) setRoom(code string) {
	c.mu.Lock()
	c.room = code
	c.mu.Unlock()
}

// clearRoom resets the room only if it still points at code.
func (c *Client) clearRoom(code string) {
	c.mu.Lock()
	if c.room == code {
		c.room = ""
	}
	c.mu.Unlock()
}

// deliver enqueues without blocking. Returns false if the event was dropped.
func (c *Client) deliver(ev *Event) bool {
	select {
	case c.Events <- ev:
		return true
	default:
		// Drop if slow consumer.
		return false
	}
}
