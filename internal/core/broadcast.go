package core

import "github.com/rs/zerolog"

// PublishResult reports delivery for one fan-out.
type PublishResult struct {
	Sent    int
	Dropped []string // member ids that were gone or too slow
}

// Fanout delivers events to the members of a room. Delivery is best-effort
// and at-most-once: members are resolved through the registry at send time.
type Fanout struct {
	registry *Registry
	log      *zerolog.Logger
}

// NewFanout builds a fan-out over registry.
func NewFanout(registry *Registry, logger *zerolog.Logger) *Fanout {
	return &Fanout{registry: registry, log: logger}
}

// Broadcast sends ev to every member except exceptID ("" sends to all).
func (f *Fanout) Broadcast(members []Member, ev *Event, exceptID string) PublishResult {
	var res PublishResult
	for _, m := range members {
		if m.ID == exceptID {
			continue
		}
		if f.Send(m.ID, ev) {
			res.Sent++
		} else {
			res.Dropped = append(res.Dropped, m.ID)
		}
	}
	if len(res.Dropped) > 0 {
		f.log.Debug().Str("room", ev.Room).Strs("dropped", res.Dropped).Msg("broadcast partially dropped")
	}
	return res
}

// Send delivers ev to one connection. Returns false if it is gone or its buffer is full.
func (f *Fanout) Send(id string, ev *Event) bool {
	c, ok := f.registry.Get(id)
	if !ok {
		return false
	}
	return c.deliver(ev)
}
