package session

import (
	"encoding/json"
	"sync"

	"github.com/KirkDiggler/sketchroom/internal/broadcast"
)

// testConn records every event it is sent
type testConn struct {
	id string

	mu          sync.Mutex
	open        bool
	closeReason string
	events      []map[string]any
}

func newTestConn(id string) *testConn {
	return &testConn{id: id, open: true}
}

func (c *testConn) ID() string { return c.id }

func (c *testConn) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *testConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return broadcast.ErrConnClosed
	}
	var event map[string]any
	if err := json.Unmarshal(data, &event); err != nil {
		return err
	}
	c.events = append(c.events, event)
	return nil
}

func (c *testConn) Close(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open {
		c.open = false
		c.closeReason = reason
	}
	return nil
}

func (c *testConn) reason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeReason
}

// types returns the event types received, in order
func (c *testConn) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	for i, e := range c.events {
		out[i], _ = e["type"].(string)
	}
	return out
}

// of returns every received event of type t
func (c *testConn) of(t string) []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []map[string]any
	for _, e := range c.events {
		if e["type"] == t {
			out = append(out, e)
		}
	}
	return out
}

func (c *testConn) last(t string) map[string]any {
	events := c.of(t)
	if len(events) == 0 {
		return nil
	}
	return events[len(events)-1]
}

func (c *testConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}
