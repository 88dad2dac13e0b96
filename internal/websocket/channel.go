package websocket

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const writeWait = 10 * time.Second

// Channel is the outbound half of a streaming session as the registry sees
// it. The registry owns the channel for as long as the connection is
// registered; a failed Send means the peer is gone.
type Channel interface {
	Send(v interface{}) error
	Close() error
}

// FiberChannel adapts a gofiber websocket connection to the Channel contract.
type FiberChannel struct {
	conn *websocket.Conn
}

func NewFiberChannel(conn *websocket.Conn) *FiberChannel {
	return &FiberChannel{conn: conn}
}

func (c *FiberChannel) Send(v interface{}) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

func (c *FiberChannel) Close() error {
	return c.conn.Close()
}
