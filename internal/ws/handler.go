package ws

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/pactly/go-pact-backend/internal/auth"
	"github.com/pactly/go-pact-backend/internal/domain"
	"github.com/pactly/go-pact-backend/internal/services"
)

// ContractGate is the read access the socket layer needs to admit clients to
// rooms.
type ContractGate interface {
	Get(ctx context.Context, id string) (*domain.Contract, error)
}

// MessageSender persists and broadcasts chat messages. Satisfied by
// services.MessageService.
type MessageSender interface {
	Send(ctx context.Context, senderID, contractID, text string) (*services.NewMessageEvent, error)
}

// Options tunes the websocket endpoint.
type Options struct {
	// AllowedOrigins restricts browser origins for the upgrade handshake.
	// Empty means any origin is accepted.
	AllowedOrigins []string
}

func (o Options) checkOrigin(r *http.Request) bool {
	if len(o.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range o.AllowedOrigins {
		if strings.EqualFold(allowed, origin) || allowed == "*" {
			return true
		}
	}
	return false
}

// Handler upgrades GET /ws requests into hub-managed clients.
//
// Browsers cannot attach an Authorization header to a websocket handshake, so
// the JWT rides in the `token` query parameter instead. The sender identity
// used for every frame afterwards comes from those verified claims, never
// from the frames themselves.
func Handler(hub *Hub, tokens *auth.Manager, contracts ContractGate, messages MessageSender, opts Options) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     opts.checkOrigin,
	}

	return func(c *gin.Context) {
		claims, err := tokens.Parse(c.Query("token"))
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the handshake error response.
			log.Debug().Err(err).Msg("ws upgrade rejected")
			return
		}

		client := newClient(hub, conn, claims.Subject, claims.Name, contracts, messages)
		wsConnections.Inc()
		log.Debug().Str("user_id", claims.Subject).Msg("ws client connected")

		go client.writePump()
		go client.readPump()
	}
}
