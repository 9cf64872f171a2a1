package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/propline/bidboard/internal/resputil"
	"github.com/propline/bidboard/internal/service"
	"github.com/propline/bidboard/internal/util"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewNotificationMgr)
}

type NotificationMgr struct {
	name string
	svc  *service.Service
}

func NewNotificationMgr(conf *RegisterConfig) Manager {
	return &NotificationMgr{
		name: "notifications",
		svc:  conf.Service,
	}
}

func (mgr *NotificationMgr) GetName() string { return mgr.name }

func (mgr *NotificationMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *NotificationMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.List)
	g.GET("/unread-count", mgr.UnreadCount)
	g.POST("/:id/read", mgr.MarkRead)
	g.POST("/read-all", mgr.MarkAllRead)
}

func (mgr *NotificationMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	NotificationListReq struct {
		UnreadOnly bool `form:"unreadOnly"`
		Limit      int  `form:"limit"`
	}

	NotificationIDReq struct {
		ID uint `uri:"id" binding:"required"`
	}

	UnreadCountResp struct {
		Count int64 `json:"count"`
	}
)

// List godoc
// @Summary List notifications
// @Description Newest first; clients call this after reconnecting to catch up on missed pushes
// @Tags Notification
// @Produce json
// @Security Bearer
// @Param unreadOnly query bool false "only unread"
// @Param limit query int false "max rows, default 50"
// @Success 200 {object} resputil.Response[[]model.Notification] "notifications"
// @Router /v1/notifications [get]
func (mgr *NotificationMgr) List(c *gin.Context) {
	var req NotificationListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	ns, err := mgr.svc.ListNotifications(c, util.GetActor(c), req.UnreadOnly, req.Limit)
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, ns)
}

// UnreadCount godoc
// @Summary Count unread notifications
// @Tags Notification
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[UnreadCountResp] "unread count"
// @Router /v1/notifications/unread-count [get]
func (mgr *NotificationMgr) UnreadCount(c *gin.Context) {
	n, err := mgr.svc.UnreadNotificationCount(c, util.GetActor(c))
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, UnreadCountResp{Count: n})
}

// MarkRead godoc
// @Summary Mark a notification read
// @Tags Notification
// @Produce json
// @Security Bearer
// @Param id path int true "notification id"
// @Success 200 {object} resputil.Response[string] "marked"
// @Failure 404 {object} resputil.Response[any] "not found"
// @Router /v1/notifications/{id}/read [post]
func (mgr *NotificationMgr) MarkRead(c *gin.Context) {
	var req NotificationIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if err := mgr.svc.MarkNotificationRead(c, util.GetActor(c), req.ID); err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, "")
}

// MarkAllRead godoc
// @Summary Mark all notifications read
// @Tags Notification
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[string] "marked"
// @Router /v1/notifications/read-all [post]
func (mgr *NotificationMgr) MarkAllRead(c *gin.Context) {
	if err := mgr.svc.MarkAllNotificationsRead(c, util.GetActor(c)); err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, "")
}
