package websocket

import (
	"time"

	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// Subscribers only ever send control frames.
	maxInboundFrame = 512
	sendBuffer      = 64
)

// Conn is the socket half of a feed subscriber.
type Conn struct {
	ws *websocket.Conn
}

// NewClient wraps conn as a subscriber filtered to establishment.
func NewClient(hub *Hub, conn *websocket.Conn, establishment string) *Client {
	return &Client{
		Hub:           hub,
		Conn:          &Conn{ws: conn},
		Send:          make(chan []byte, sendBuffer),
		Establishment: establishment,
	}
}

func (c *Conn) write(messageType int, payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, payload)
}

func (c *Conn) extendRead(string) error {
	return c.ws.SetReadDeadline(time.Now().Add(pongWait))
}

// ReadPump drains the connection so control frames are processed, and
// unregisters the client when the peer goes away.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.ws.Close()
	}()

	ws := c.Conn.ws
	ws.SetReadLimit(maxInboundFrame)
	_ = c.Conn.extendRead("")
	ws.SetPongHandler(c.Conn.extendRead)

	for {
		_, _, err := ws.ReadMessage()
		if err == nil {
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			logger.Warn("Rating feed read error", map[string]interface{}{
				"establishment": c.Establishment,
				"error":         err.Error(),
			})
		}
		return
	}
}

// WritePump delivers queued events and keeps the peer alive with pings.
// It exits when Send is closed by the hub or a write fails.
func (c *Client) WritePump() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.Conn.ws.Close()
	}()

	for {
		select {
		case <-ping.C:
			if err := c.Conn.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case msg, open := <-c.Send:
			if !open {
				_ = c.Conn.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.Conn.write(websocket.TextMessage, msg); err != nil {
				logger.Warn("Failed to write feed event", map[string]interface{}{
					"establishment": c.Establishment,
					"error":         err.Error(),
				})
				return
			}
		}
	}
}
