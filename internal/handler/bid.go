package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/propline/bidboard/dao/model"
	"github.com/propline/bidboard/internal/resputil"
	"github.com/propline/bidboard/internal/service"
	"github.com/propline/bidboard/internal/util"
	"github.com/propline/bidboard/pkg/authz"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewBidMgr)
}

type BidMgr struct {
	name string
	svc  *service.Service
}

func NewBidMgr(conf *RegisterConfig) Manager {
	return &BidMgr{
		name: "bids",
		svc:  conf.Service,
	}
}

func (mgr *BidMgr) GetName() string { return mgr.name }

func (mgr *BidMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *BidMgr) RegisterProtected(g *gin.RouterGroup) {
	g.POST("/projects/:id", mgr.Submit)
	g.GET("/projects/:id", mgr.ListForProject)
	g.GET("/my", mgr.ListMine)
	g.GET("/:id", mgr.Get)
	g.PATCH("/:id", mgr.Update)
	g.POST("/:id/withdraw", mgr.Withdraw)
	g.POST("/:id/accept", mgr.Accept)
	g.POST("/:id/reject", mgr.Reject)
}

func (mgr *BidMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	BidReq struct {
		Amount      float64 `json:"amount" binding:"required,gt=0"`
		Description string  `json:"description"`
		Timeline    string  `json:"timeline" binding:"max=128"`
	}

	BidIDReq struct {
		ID uint `uri:"id" binding:"required"`
	}
)

// Submit godoc
// @Summary Submit a bid
// @Description Create a Pending bid on an Open project; the project's manager is notified
// @Tags Bid
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "project id"
// @Param data body BidReq true "bid terms"
// @Success 200 {object} resputil.Response[model.Bid] "created bid"
// @Failure 409 {object} resputil.Response[any] "project not open, or vendor already bid"
// @Router /v1/bids/projects/{id} [post]
func (mgr *BidMgr) Submit(c *gin.Context) {
	var uriReq BidIDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req BidReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	bid, err := mgr.svc.SubmitBid(c, util.GetActor(c), uriReq.ID, service.BidInput{
		Amount:      req.Amount,
		Description: req.Description,
		Timeline:    req.Timeline,
	})
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, bid)
}

// ListForProject godoc
// @Summary List bids on a project
// @Description Manager and admins see all bids; a vendor sees only their own
// @Tags Bid
// @Produce json
// @Security Bearer
// @Param id path int true "project id"
// @Success 200 {object} resputil.Response[[]model.Bid] "bids"
// @Router /v1/bids/projects/{id} [get]
func (mgr *BidMgr) ListForProject(c *gin.Context) {
	var req BidIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	bids, err := mgr.svc.ListProjectBids(c, util.GetActor(c), req.ID)
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, bids)
}

// ListMine godoc
// @Summary List my bids
// @Tags Bid
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[[]model.Bid] "the vendor's bids"
// @Router /v1/bids/my [get]
func (mgr *BidMgr) ListMine(c *gin.Context) {
	bids, err := mgr.svc.ListMyBids(c, util.GetActor(c))
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, bids)
}

// Get godoc
// @Summary Get a bid
// @Tags Bid
// @Produce json
// @Security Bearer
// @Param id path int true "bid id"
// @Success 200 {object} resputil.Response[model.Bid] "bid"
// @Failure 404 {object} resputil.Response[any] "not visible"
// @Router /v1/bids/{id} [get]
func (mgr *BidMgr) Get(c *gin.Context) {
	var req BidIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	bid, err := mgr.svc.GetBid(c, util.GetActor(c), req.ID)
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, bid)
}

// Update godoc
// @Summary Edit a bid
// @Description Vendors may edit their own bid while it is Pending
// @Tags Bid
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "bid id"
// @Param data body BidReq true "bid terms"
// @Success 200 {object} resputil.Response[model.Bid] "updated bid"
// @Failure 409 {object} resputil.Response[any] "bid no longer pending"
// @Router /v1/bids/{id} [patch]
func (mgr *BidMgr) Update(c *gin.Context) {
	var uriReq BidIDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req BidReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	bid, err := mgr.svc.UpdateBid(c, util.GetActor(c), uriReq.ID, service.BidInput{
		Amount:      req.Amount,
		Description: req.Description,
		Timeline:    req.Timeline,
	})
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, bid)
}

// Withdraw godoc
// @Summary Withdraw a bid
// @Description Pending -> Withdrawn, vendor-initiated
// @Tags Bid
// @Produce json
// @Security Bearer
// @Param id path int true "bid id"
// @Success 200 {object} resputil.Response[model.Bid] "withdrawn bid"
// @Failure 409 {object} resputil.Response[any] "bid no longer pending"
// @Router /v1/bids/{id}/withdraw [post]
func (mgr *BidMgr) Withdraw(c *gin.Context) {
	mgr.decide(c, mgr.svc.WithdrawBid)
}

// Accept godoc
// @Summary Accept a bid
// @Description Awards the project: bid -> Accepted, project -> Awarded, sibling Pending bids -> Rejected, all affected vendors notified
// @Tags Bid
// @Produce json
// @Security Bearer
// @Param id path int true "bid id"
// @Success 200 {object} resputil.Response[model.Bid] "accepted bid"
// @Failure 409 {object} resputil.Response[any] "project already decided"
// @Router /v1/bids/{id}/accept [post]
func (mgr *BidMgr) Accept(c *gin.Context) {
	mgr.decide(c, mgr.svc.AcceptBid)
}

// Reject godoc
// @Summary Reject a bid
// @Description Pending -> Rejected, manager-initiated, no effect on siblings
// @Tags Bid
// @Produce json
// @Security Bearer
// @Param id path int true "bid id"
// @Success 200 {object} resputil.Response[model.Bid] "rejected bid"
// @Router /v1/bids/{id}/reject [post]
func (mgr *BidMgr) Reject(c *gin.Context) {
	mgr.decide(c, mgr.svc.RejectBid)
}

func (mgr *BidMgr) decide(c *gin.Context,
	op func(ctx context.Context, actor authz.Actor, bidID uint) (*model.Bid, error)) {
	var req BidIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	bid, err := op(c, util.GetActor(c), req.ID)
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, bid)
}
