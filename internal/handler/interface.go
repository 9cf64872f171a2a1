package handler

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/propline/bidboard/internal/service"
	"github.com/propline/bidboard/pkg/hub"
	"github.com/propline/bidboard/pkg/notify"
)

type Manager interface {
	GetName() string
	RegisterPublic(group *gin.RouterGroup)
	RegisterProtected(group *gin.RouterGroup)
	RegisterAdmin(group *gin.RouterGroup)
}

// RegisterConfig carries the shared collaborators into the handler
// managers. Everything is injected once here; handlers hold no ambient
// globals.
type RegisterConfig struct {
	DB       *gorm.DB
	Service  *service.Service
	Hub      *hub.Hub
	Notifier *notify.Dispatcher
}

type ManagerRegisterFunc func(conf *RegisterConfig) Manager

var Registers []ManagerRegisterFunc
