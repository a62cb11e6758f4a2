package handlers

import (
  "context"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/gorilla/websocket"

  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
  "github.com/medicare-pharmacy/medicare-backend/internal/socket"
)

// WsHandler upgrades the connection and subscribes it to channels. Clients may add or
// drop public channels afterwards with {"action":"subscribe","channel":...}.
func WsHandler(hub *socket.Hub, log *logger.Logger, allowedOrigins []string, channels ...string) gin.HandlerFunc {
  upgrader := websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)}
  wsLog := log.With("handler", "WsHandler")
  return func(c *gin.Context) {
    conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
    if err != nil {
      wsLog.Warn("Failed to upgrade to websocket", "error", err)
      return
    }
    // the request context ends when the handler returns
    ctx, cancel := context.WithCancel(context.Background())
    client := socket.NewClient(conn, hub, cancel, wsLog)
    hub.Subscribe(client, channels)

    go client.WriteLoop(ctx)
    go client.ReadLoop(ctx)
  }
}

func originChecker(allowedOrigins []string) func(r *http.Request) bool {
  allowed := make(map[string]bool, len(allowedOrigins))
  for _, o := range allowedOrigins {
    if o == "*" {
      return func(*http.Request) bool { return true }
    }
    allowed[o] = true
  }
  return func(r *http.Request) bool {
    origin := r.Header.Get("Origin")
    return origin == "" || allowed[origin]
  }
}
