package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs runs one answer socket until the peer goes away.
func ServeWs(hub *Hub, c *websocket.Conn, answerer Answerer) {
	client := newClient(hub, c, answerer)
	if !hub.add(client) {
		c.Close()
		return
	}

	go client.writePump()
	client.readPump() // the handler goroutine owns the connection
}
