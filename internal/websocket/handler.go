package websocket

import (
	"context"
	"strings"
	"time"

	"github.com/consultorio-web/consultorio-backend/config"
	"github.com/consultorio-web/consultorio-backend/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Handler upgrades public change feed requests.
type Handler struct {
	log            *zap.SugaredLogger
	hub            *Hub
	pingInterval   time.Duration
	writeTimeout   time.Duration
	allowedOrigins []string
	isDevelopment  bool
}

func NewHandler(hub *Hub, cfg *config.Config) *Handler {
	hubCfg := DefaultHubConfig()
	return &Handler{
		log:            logger.GetLogger().Named("change_feed_handler"),
		hub:            hub,
		pingInterval:   hubCfg.PingInterval,
		writeTimeout:   hubCfg.WriteTimeout,
		allowedOrigins: cfg.Server.AllowedOrigins,
		isDevelopment:  cfg.IsDevelopment(),
	}
}

func (h *Handler) acceptOptions() *websocket.AcceptOptions {
	opts := &websocket.AcceptOptions{}
	if h.isDevelopment {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = originPatterns(h.allowedOrigins)
	}
	return opts
}

// originPatterns strips schemes since the accept check matches host patterns.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			return []string{"*"}
		}
		if i := strings.Index(o, "://"); i >= 0 {
			o = o[i+3:]
		}
		patterns = append(patterns, o)
	}
	return patterns
}

// ServerMessage is the envelope written to subscribers.
type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, h.acceptOptions())
	if err != nil {
		h.log.Warnw("Failed to accept change feed connection", "error", err)
		return
	}

	connection := h.hub.Register(conn)
	if connection == nil {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer h.hub.Unregister(connection.ID)

	// Subscribers never send; CloseRead keeps control frames flowing and
	// cancels ctx once the peer goes away.
	ctx := conn.CloseRead(c.Request.Context())

	if err := h.write(ctx, conn, ServerMessage{Type: "connected"}); err != nil {
		return
	}

	errCh := make(chan error, 2)
	go func() { errCh <- h.writeLoop(ctx, conn, connection) }()
	go func() { errCh <- h.pingLoop(ctx, conn) }()

	err = <-errCh
	if err != nil && ctx.Err() == nil && websocket.CloseStatus(err) != websocket.StatusNormalClosure {
		h.log.Debugw("Change feed connection ended", "connectionID", connection.ID, "error", err)
	}
}

func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, connection *Connection) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-connection.SendChannel():
			if !ok {
				return nil
			}
			if err := h.write(ctx, conn, ServerMessage{Type: event.Type, Payload: event}); err != nil {
				return err
			}
		}
	}
}

func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) error {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, h.writeTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}

func (h *Handler) write(ctx context.Context, conn *websocket.Conn, msg ServerMessage) error {
	writeCtx, cancel := context.WithTimeout(ctx, h.writeTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, msg)
}
