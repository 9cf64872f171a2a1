package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/propline/bidboard/internal/util"
	"github.com/propline/bidboard/pkg/config"
	"github.com/propline/bidboard/pkg/hub"
	"github.com/propline/bidboard/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewWebsocketMgr)
}

type WebsocketMgr struct {
	name     string
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

func NewWebsocketMgr(conf *RegisterConfig) Manager {
	allowed := config.GetConfig().AllowedOrigins
	return &WebsocketMgr{
		name: "ws",
		hub:  conf.Hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, o := range allowed {
					if o == "*" || o == origin {
						return true
					}
				}
				return false
			},
		},
	}
}

func (mgr *WebsocketMgr) GetName() string { return mgr.name }

func (mgr *WebsocketMgr) RegisterPublic(_ *gin.RouterGroup) {}
func (mgr *WebsocketMgr) RegisterAdmin(_ *gin.RouterGroup)  {}

func (mgr *WebsocketMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.Subscribe)
}

// Subscribe godoc
// @Summary Open the live event stream
// @Description Upgrade to a websocket that receives the caller's notification events as they happen
// @Tags Websocket
// @Security Bearer
// @Success 101 {string} string "switching protocols"
// @Router /v1/ws [get]
func (mgr *WebsocketMgr) Subscribe(c *gin.Context) {
	token := util.GetToken(c)
	conn, err := mgr.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logutils.Log.Errorf("websocket upgrade for user %d: %v", token.UserID, err)
		return
	}

	mgr.hub.Register(token.UserID, conn)
	defer func() {
		mgr.hub.Unregister(token.UserID, conn)
		conn.Close()
	}()

	// Clients never send application data; the read loop only serves to
	// detect the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
