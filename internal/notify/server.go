package notify

import (
	"net/http"
	"strings"

	"cf_bridge/internal/auth"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/sirupsen/logrus"
)

var (
	// Server is the global Socket.IO server instance
	Server *socketio.Server

	log = logrus.WithField("component", "notify")
)

// InitServer initializes the Socket.IO server used for console pushes
func InitServer() error {
	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&polling.Transport{
				CheckOrigin: func(r *http.Request) bool { return true },
			},
			&websocket.Transport{
				CheckOrigin: func(r *http.Request) bool { return true },
			},
		},
	})

	server.OnConnect("/", func(s socketio.Conn) error {
		log.WithField("client", s.ID()).Debug("Client connected")
		s.Emit("connected", map[string]interface{}{"ok": true})
		return nil
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.WithFields(logrus.Fields{"client": s.ID(), "reason": reason}).Debug("Client disconnected")
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		log.WithError(e).Warn("Socket.IO error")
	})

	server.OnEvent("/", "request:events", handleRequestEvents)

	go func() {
		if err := server.Serve(); err != nil {
			log.WithError(err).Error("Socket.IO server stopped")
		}
	}()

	Server = server
	log.Info("Socket.IO server initialized")
	return nil
}

// Close shuts the Socket.IO server down
func Close() {
	if Server != nil {
		Server.Close()
	}
}

// WrapWithAuth guards the Socket.IO handshake with console JWT auth.
// The token arrives as a query parameter or a Bearer header.
func WrapWithAuth(server *socketio.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if _, err := auth.ParseToken(token); err != nil {
			log.WithError(err).WithField("remote", r.RemoteAddr).Warn("Handshake rejected")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		server.ServeHTTP(w, r)
	})
}

func extractToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	authHeader := r.Header.Get("Authorization")
	if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// BroadcastToAll sends an event to every connected client
func BroadcastToAll(event string, data interface{}) {
	if Server != nil {
		Server.BroadcastToNamespace("/", event, data)
	}
}
