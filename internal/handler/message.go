package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/propline/bidboard/internal/resputil"
	"github.com/propline/bidboard/internal/service"
	"github.com/propline/bidboard/internal/util"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewMessageMgr)
}

type MessageMgr struct {
	name string
	svc  *service.Service
}

func NewMessageMgr(conf *RegisterConfig) Manager {
	return &MessageMgr{
		name: "messages",
		svc:  conf.Service,
	}
}

func (mgr *MessageMgr) GetName() string { return mgr.name }

func (mgr *MessageMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *MessageMgr) RegisterProtected(g *gin.RouterGroup) {
	g.POST("", mgr.Send)
	g.GET("", mgr.ListConversations)
	g.GET("/:id", mgr.Thread)
}

func (mgr *MessageMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	SendMessageReq struct {
		ReceiverID uint   `json:"receiverId" binding:"required"`
		ProjectID  *uint  `json:"projectId"`
		Body       string `json:"body" binding:"required,max=4096"`
	}

	CounterpartIDReq struct {
		ID uint `uri:"id" binding:"required"`
	}
)

// Send godoc
// @Summary Send a message
// @Description Send a direct message, optionally tied to a project; the receiver is notified
// @Tags Message
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body SendMessageReq true "message"
// @Success 200 {object} resputil.Response[model.Message] "sent message"
// @Failure 404 {object} resputil.Response[any] "receiver or project not found"
// @Router /v1/messages [post]
func (mgr *MessageMgr) Send(c *gin.Context) {
	var req SendMessageReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	msg, err := mgr.svc.SendMessage(c, util.GetActor(c), req.ReceiverID, req.ProjectID, req.Body)
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, msg)
}

// ListConversations godoc
// @Summary List conversations
// @Description The inbox: one row per counterpart with the latest message and unread count, newest first
// @Tags Message
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[[]service.Conversation] "conversations"
// @Router /v1/messages [get]
func (mgr *MessageMgr) ListConversations(c *gin.Context) {
	convs, err := mgr.svc.ListConversations(c, util.GetActor(c))
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, convs)
}

// Thread godoc
// @Summary Read a thread
// @Description Chronological messages with one counterpart; opening the thread marks their messages as read
// @Tags Message
// @Produce json
// @Security Bearer
// @Param id path int true "counterpart user id"
// @Success 200 {object} resputil.Response[[]model.Message] "thread"
// @Failure 404 {object} resputil.Response[any] "user not found"
// @Router /v1/messages/{id} [get]
func (mgr *MessageMgr) Thread(c *gin.Context) {
	var req CounterpartIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	msgs, err := mgr.svc.GetThread(c, util.GetActor(c), req.ID)
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, msgs)
}
