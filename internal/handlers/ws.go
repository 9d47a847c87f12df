package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"casino_platform/internal/notify"
	"casino_platform/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

type WSHandler struct {
	hub    *notify.Hub
	logger *logger.Logger
}

func NewWSHandler(hub *notify.Hub, logger *logger.Logger) *WSHandler {
	return &WSHandler{hub: hub, logger: logger}
}

// Stream upgrades the connection and pushes the user's events until
// the client goes away.
func (h *WSHandler) Stream(c *gin.Context) {
	userID := c.Param("user_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("websocket upgrade for user %s failed: %v", userID, err)
		return
	}
	defer conn.Close()

	events, cancel := h.hub.Subscribe(userID)
	defer cancel()

	// Drain client frames so pongs and close frames are processed;
	// first read error means the peer is gone.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.logger.Infof("websocket session opened for user %s", userID)

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			h.logger.Infof("websocket session closed for user %s", userID)
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				h.logger.Warnf("websocket write to user %s failed: %v", userID, err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
