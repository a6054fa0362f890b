package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sejuk-service/aircond-service-api/config"
	"github.com/sejuk-service/aircond-service-api/models"
	"github.com/sejuk-service/aircond-service-api/services"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = 30 * time.Second
)

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the dashboard is served from a separate origin
	},
}

// OrdersFeed handles GET /ws/orders - a WebSocket that delivers the full
// order collection on connect and again after every change. There is no
// diff protocol; clients re-render from each snapshot. An optional
// technician_id query parameter scopes the snapshots to one technician's
// jobs, which is how the technician portal follows its own queue.
func OrdersFeed(c *gin.Context) {
	technicianID := c.Query("technician_id")

	conn, err := feedUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade feed connection: %v", err)
		return
	}

	snapshots, unsubscribe := services.GetOrderFeed().Subscribe()

	go feedReadPump(conn, unsubscribe)
	feedWritePump(conn, snapshots, technicianID)
}

// feedReadPump discards client messages and tears the subscription down
// when the connection drops
func feedReadPump(conn *websocket.Conn, unsubscribe func()) {
	defer func() {
		unsubscribe()
		conn.Close()
	}()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(feedPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(feedPongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Order feed error: %v", err)
			}
			return
		}
	}
}

// feedWritePump sends the initial snapshot, then relays feed snapshots and
// keepalive pings until the connection closes
func feedWritePump(conn *websocket.Conn, snapshots <-chan []models.Order, technicianID string) {
	ticker := time.NewTicker(feedPingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	// Initial snapshot so the client renders without waiting for a change
	db := config.GetDB()
	var orders []models.Order
	if err := db.Order("created_at DESC").Find(&orders).Error; err != nil {
		log.Printf("Order feed: failed to load initial snapshot: %v", err)
	} else {
		conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
		if err := writeSnapshot(conn, orders, technicianID); err != nil {
			return
		}
	}

	for {
		select {
		case snapshot, ok := <-snapshots:
			conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := writeSnapshot(conn, snapshot, technicianID); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// writeSnapshot filters the snapshot for the subscriber and writes it
func writeSnapshot(conn *websocket.Conn, orders []models.Order, technicianID string) error {
	if technicianID != "" {
		filtered := make([]models.Order, 0, len(orders))
		for _, order := range orders {
			if order.AssignedTechnicianID == technicianID {
				filtered = append(filtered, order)
			}
		}
		orders = filtered
	}

	return conn.WriteJSON(gin.H{"orders": orders})
}
