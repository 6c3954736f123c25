package realtime

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/townbook-za/townbook/internal/middleware"
	"github.com/townbook-za/townbook/internal/notify"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Hub bridges per-user Redis pub/sub channels onto websockets. One socket
// per open chat/notification view; closing the socket tears the
// subscription down.
type Hub struct {
	rdb *redis.Client
	log zerolog.Logger

	upgrader websocket.Upgrader
}

func NewHub(rdb *redis.Client, log zerolog.Logger) *Hub {
	return &Hub{
		rdb: rdb,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser origin was already vetted by the CORS layer; the
			// socket itself is authenticated by the JWT middleware.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve upgrades the request and streams the user's events until either
// side goes away.
func (h *Hub) Serve(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("realtime: upgrade failed")
		return
	}

	clientID := uuid.NewString()
	log := h.log.With().Str("client", clientID).Uint("user_id", userID).Logger()

	sub := h.rdb.Subscribe(c.Request.Context(), notify.UserChannel(userID))

	go h.writePump(conn, sub, log)
	h.readPump(conn, sub, log)
}

func (h *Hub) writePump(conn *websocket.Conn, sub *redis.PubSub, log zerolog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	ch := sub.Channel()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Debug().Err(err).Msg("realtime: write failed")
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) readPump(conn *websocket.Conn, sub *redis.PubSub, log zerolog.Logger) {
	defer func() {
		sub.Close()
		conn.Close()
	}()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Clients never send application data; the read loop only notices
	// disconnects and keepalives.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Debug().Err(err).Msg("realtime: client gone")
			return
		}
	}
}
