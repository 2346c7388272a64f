package signal

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Mesh/internal/config"
	"github.com/dkeye/Mesh/internal/relay"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	Hub *relay.Hub
	Cfg *config.Config
}

func NewController(hub *relay.Hub, cfg *config.Config) *Controller {
	return &Controller{Hub: hub, Cfg: cfg}
}

// HandleSignal upgrades the request and binds the connection to the
// hub. The member identity is established later, by the join message.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "adapters.signal").Str("remote", ws.RemoteAddr().String()).Msg("new WS connection")

	conn := newWSConn(ws, 32)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, conn)
}
