package websocket

import (
	"errors"
	"sync"
)

// StubChannel is the in-process Channel double used by tests and by the
// service's dry-run paths. It records everything sent and can be flipped to
// fail writes.
type StubChannel struct {
	mu       sync.Mutex
	messages []interface{}
	failing  bool
	closed   bool
}

func NewStubChannel() *StubChannel {
	return &StubChannel{}
}

func (c *StubChannel) Send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errors.New("stub channel: write failed")
	}
	c.messages = append(c.messages, v)
	return nil
}

func (c *StubChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Fail makes every subsequent Send return an error.
func (c *StubChannel) Fail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failing = true
}

func (c *StubChannel) Messages() []interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]interface{}, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *StubChannel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
