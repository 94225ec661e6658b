package controllers

import (
	"net/http"
	"sync"
	"time"

	"github.com/nadifalfairuz/digistore/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type orderEvent struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
	At      time.Time   `json:"at"`
}

var (
	feedMu      sync.Mutex
	feedClients = make(map[*websocket.Conn]struct{})
)

// OrderFeed upgrades an admin connection to a websocket that streams
// order and topup events as they happen.
func OrderFeed(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.LogError("Websocket upgrade failed: %v", err)
		return
	}

	feedMu.Lock()
	feedClients[conn] = struct{}{}
	active := len(feedClients)
	feedMu.Unlock()
	utils.LogInfo("Order feed client connected, %d active", active)

	// Drain reads so pings and close frames are processed
	go func() {
		defer removeFeedClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func removeFeedClient(conn *websocket.Conn) {
	feedMu.Lock()
	delete(feedClients, conn)
	feedMu.Unlock()
	conn.Close()
}

// broadcastOrderEvent pushes an event to every connected feed client.
// Slow or dead clients are dropped rather than blocking the sender.
func broadcastOrderEvent(event string, payload gin.H) {
	msg := orderEvent{Event: event, Payload: payload, At: time.Now()}

	feedMu.Lock()
	defer feedMu.Unlock()
	for conn := range feedClients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(msg); err != nil {
			utils.LogDebug("Dropping feed client after write error: %v", err)
			delete(feedClients, conn)
			conn.Close()
		}
	}
}
