package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/quipuerp/quipu/pkg/sessionctx"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The gateway terminates origins; the socket itself accepts any.
	CheckOrigin: func(*http.Request) bool { return true },
}

const (
	identifyTimeout = 10 * time.Second
	readLimit       = 4096
)

type identifyMessage struct {
	UserID string `json:"user_id"`
}

// NotificationSocket upgrades the connection and binds it to a user in the
// hub. Identity comes from the session headers when present; otherwise the
// client must send an identify frame within the timeout.
func (s *Server) NotificationSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(readLimit)

	userID, ok := sessionctx.UserIDFromContext(c.Request.Context())
	if !ok {
		userID, ok = awaitIdentify(conn)
		if !ok {
			_ = conn.Close()
			return
		}
	}

	connection := s.hub.Add(userID, conn)
	conn.SetPongHandler(func(string) error {
		connection.Touch()
		return nil
	})

	// Read loop keeps the connection draining. Inbound frames beyond the
	// identify handshake are ignored; pushes flow the other way.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.hub.Remove(connection)
			return
		}
		connection.Touch()
	}
}

func awaitIdentify(conn *websocket.Conn) (snowflake.ID, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(identifyTimeout))
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	_, raw, err := conn.ReadMessage()
	if err != nil {
		return 0, false
	}

	var msg identifyMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return 0, false
	}
	userID, err := snowflake.ParseString(strings.TrimSpace(msg.UserID))
	if err != nil || userID == 0 {
		return 0, false
	}
	return userID, true
}
