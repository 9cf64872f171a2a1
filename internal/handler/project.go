package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/propline/bidboard/dao/model"
	"github.com/propline/bidboard/internal/payload"
	"github.com/propline/bidboard/internal/resputil"
	"github.com/propline/bidboard/internal/service"
	"github.com/propline/bidboard/internal/util"
	"github.com/propline/bidboard/pkg/authz"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewProjectMgr)
}

type ProjectMgr struct {
	name string
	svc  *service.Service
}

func NewProjectMgr(conf *RegisterConfig) Manager {
	return &ProjectMgr{
		name: "projects",
		svc:  conf.Service,
	}
}

func (mgr *ProjectMgr) GetName() string { return mgr.name }

func (mgr *ProjectMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ProjectMgr) RegisterProtected(g *gin.RouterGroup) {
	g.POST("", mgr.Create)
	g.GET("/open", mgr.ListOpen)
	g.GET("/my", mgr.ListMine)
	g.GET("/:id", mgr.Get)
	g.PUT("/:id", mgr.Update)
	g.POST("/:id/publish", mgr.Publish)
	g.POST("/:id/close-bidding", mgr.CloseBidding)
	g.POST("/:id/start", mgr.Start)
	g.POST("/:id/complete", mgr.Complete)
	g.POST("/:id/cancel", mgr.Cancel)
	g.DELETE("/:id", mgr.Delete)
}

func (mgr *ProjectMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.GET("", mgr.AdminList)
}

type (
	ProjectReq struct {
		PropertyID    uint       `json:"propertyId" binding:"required"`
		Title         string     `json:"title" binding:"required,max=128"`
		Description   string     `json:"description"`
		Category      string     `json:"category" binding:"max=64"`
		Budget        *float64   `json:"budget"`
		InternalNotes string     `json:"internalNotes"`
		BidDeadline   *time.Time `json:"bidDeadline"`
	}

	ProjectUpdateReq struct {
		Title         string     `json:"title" binding:"max=128"`
		Description   string     `json:"description"`
		Category      string     `json:"category" binding:"max=64"`
		Budget        *float64   `json:"budget"`
		InternalNotes string     `json:"internalNotes"`
		BidDeadline   *time.Time `json:"bidDeadline"`
	}

	ProjectIDReq struct {
		ID uint `uri:"id" binding:"required"`
	}
)

// Create godoc
// @Summary Create a project
// @Description Post a new project (Draft) under one of the caller's properties
// @Tags Project
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body ProjectReq true "project data"
// @Success 200 {object} resputil.Response[authz.ProjectView] "created project"
// @Failure 400 {object} resputil.Response[any] "request parameter error"
// @Failure 404 {object} resputil.Response[any] "property not visible"
// @Router /v1/projects [post]
func (mgr *ProjectMgr) Create(c *gin.Context) {
	var req ProjectReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	actor := util.GetActor(c)
	p, err := mgr.svc.CreateProject(c, actor, service.ProjectInput{
		PropertyID:    req.PropertyID,
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Budget:        req.Budget,
		InternalNotes: req.InternalNotes,
		BidDeadline:   req.BidDeadline,
	})
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, authz.ViewProject(actor, p))
}

// ListOpen godoc
// @Summary List open projects
// @Description The vendor marketplace view: all projects currently open for bidding, paginated
// @Tags Project
// @Produce json
// @Security Bearer
// @Param page_index query int false "page number, 1-based"
// @Param page_size query int false "rows per page, default 50"
// @Success 200 {object} resputil.Response[payload.ListResp[authz.ProjectView]] "open projects"
// @Router /v1/projects/open [get]
func (mgr *ProjectMgr) ListOpen(c *gin.Context) {
	var page payload.ListReqQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	size := 50
	if page.PageSize != nil && *page.PageSize > 0 {
		size = *page.PageSize
	}
	offset := 0
	if page.PageIndex != nil && *page.PageIndex > 1 {
		offset = (*page.PageIndex - 1) * size
	}

	actor := util.GetActor(c)
	projects, total, err := mgr.svc.ListOpenProjects(c, offset, size)
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	views := lo.Map(projects, func(p model.Project, _ int) authz.ProjectView {
		return authz.ViewProject(actor, &p)
	})
	resputil.Success(c, payload.ListResp[authz.ProjectView]{Rows: views, Count: total})
}

// ListMine godoc
// @Summary List my projects
// @Description Manager: own projects. Vendor: projects bid on. Admin: all.
// @Tags Project
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[[]authz.ProjectView] "projects"
// @Router /v1/projects/my [get]
func (mgr *ProjectMgr) ListMine(c *gin.Context) {
	actor := util.GetActor(c)
	projects, err := mgr.svc.ListMyProjects(c, actor)
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	views := lo.Map(projects, func(p model.Project, _ int) authz.ProjectView {
		return authz.ViewProject(actor, &p)
	})
	resputil.Success(c, views)
}

// Get godoc
// @Summary Get a project
// @Description Role-projected view: budget and internal notes are manager-only
// @Tags Project
// @Produce json
// @Security Bearer
// @Param id path int true "project id"
// @Success 200 {object} resputil.Response[authz.ProjectView] "project"
// @Failure 404 {object} resputil.Response[any] "not visible"
// @Router /v1/projects/{id} [get]
func (mgr *ProjectMgr) Get(c *gin.Context) {
	var req ProjectIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	actor := util.GetActor(c)
	p, err := mgr.svc.GetProject(c, actor, req.ID)
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, authz.ViewProject(actor, p))
}

// Update godoc
// @Summary Update a project
// @Tags Project
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "project id"
// @Param data body ProjectUpdateReq true "project data"
// @Success 200 {object} resputil.Response[authz.ProjectView] "updated project"
// @Router /v1/projects/{id} [put]
func (mgr *ProjectMgr) Update(c *gin.Context) {
	var uriReq ProjectIDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req ProjectUpdateReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	actor := util.GetActor(c)
	p, err := mgr.svc.UpdateProject(c, actor, uriReq.ID, service.ProjectInput{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Budget:        req.Budget,
		InternalNotes: req.InternalNotes,
		BidDeadline:   req.BidDeadline,
	})
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, authz.ViewProject(actor, p))
}

// Publish godoc
// @Summary Publish a project
// @Description Draft -> Open; vendors can now see the project and bid
// @Tags Project
// @Produce json
// @Security Bearer
// @Param id path int true "project id"
// @Success 200 {object} resputil.Response[authz.ProjectView] "published project"
// @Failure 409 {object} resputil.Response[any] "project is not Draft"
// @Router /v1/projects/{id}/publish [post]
func (mgr *ProjectMgr) Publish(c *gin.Context) {
	mgr.transition(c, mgr.svc.PublishProject)
}

// CloseBidding godoc
// @Summary Close bidding
// @Description Open -> InReview; stop taking bids while deciding
// @Tags Project
// @Produce json
// @Security Bearer
// @Param id path int true "project id"
// @Success 200 {object} resputil.Response[authz.ProjectView] "project in review"
// @Failure 409 {object} resputil.Response[any] "project is not Open"
// @Router /v1/projects/{id}/close-bidding [post]
func (mgr *ProjectMgr) CloseBidding(c *gin.Context) {
	mgr.transition(c, mgr.svc.CloseBidding)
}

// Start godoc
// @Summary Start an awarded project
// @Description Awarded -> InProgress
// @Tags Project
// @Produce json
// @Security Bearer
// @Param id path int true "project id"
// @Success 200 {object} resputil.Response[authz.ProjectView] "project in progress"
// @Router /v1/projects/{id}/start [post]
func (mgr *ProjectMgr) Start(c *gin.Context) {
	mgr.transition(c, mgr.svc.StartProject)
}

// Complete godoc
// @Summary Complete a project
// @Description InProgress -> Completed
// @Tags Project
// @Produce json
// @Security Bearer
// @Param id path int true "project id"
// @Success 200 {object} resputil.Response[authz.ProjectView] "completed project"
// @Router /v1/projects/{id}/complete [post]
func (mgr *ProjectMgr) Complete(c *gin.Context) {
	mgr.transition(c, mgr.svc.CompleteProject)
}

// Cancel godoc
// @Summary Cancel a project
// @Description Any non-terminal state -> Cancelled
// @Tags Project
// @Produce json
// @Security Bearer
// @Param id path int true "project id"
// @Success 200 {object} resputil.Response[authz.ProjectView] "cancelled project"
// @Router /v1/projects/{id}/cancel [post]
func (mgr *ProjectMgr) Cancel(c *gin.Context) {
	mgr.transition(c, mgr.svc.CancelProject)
}

// Delete godoc
// @Summary Delete a project
// @Description Hard-remove a Draft or Cancelled project
// @Tags Project
// @Produce json
// @Security Bearer
// @Param id path int true "project id"
// @Success 200 {object} resputil.Response[string] "deleted"
// @Failure 409 {object} resputil.Response[any] "project still active"
// @Router /v1/projects/{id} [delete]
func (mgr *ProjectMgr) Delete(c *gin.Context) {
	var req ProjectIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if err := mgr.svc.DeleteProject(c, util.GetActor(c), req.ID); err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, "")
}

// AdminList godoc
// @Summary List all projects
// @Tags Project
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[[]authz.ProjectView] "all projects"
// @Router /v1/admin/projects [get]
func (mgr *ProjectMgr) AdminList(c *gin.Context) {
	mgr.ListMine(c)
}

func (mgr *ProjectMgr) transition(c *gin.Context,
	op func(ctx context.Context, actor authz.Actor, id uint) (*model.Project, error)) {
	var req ProjectIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	actor := util.GetActor(c)
	p, err := op(c, actor, req.ID)
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, authz.ViewProject(actor, p))
}
