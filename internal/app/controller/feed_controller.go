package controller

import (
	"net/http"

	"github.com/eatsplorer/eatsplorer-backend/internal/middleware"
	ws "github.com/eatsplorer/eatsplorer-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// FeedController streams rating events over a websocket.
type FeedController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewFeedController accepts browser connections only from allowedOrigins.
// Requests without an Origin header (non-browser clients) are allowed.
func NewFeedController(hub *ws.Hub, allowedOrigins []string) *FeedController {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &FeedController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins["*"] || origins[origin]
			},
		},
	}
}

// Ratings upgrades the connection; ?feName= limits events to one establishment
// GET /ws/ratings
func (ctrl *FeedController) Ratings(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response
		log.Warn("Failed to upgrade rating feed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	client := ws.NewClient(ctrl.hub, conn, c.Query("feName"))
	ctrl.hub.Register(client)

	log.Info("Rating feed client connected", map[string]interface{}{
		"establishment": client.Establishment,
	})

	go client.WritePump()
	go client.ReadPump()
}
