package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/propline/bidboard/internal/resputil"
	"github.com/propline/bidboard/internal/service"
	"github.com/propline/bidboard/internal/util"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewPropertyMgr)
}

type PropertyMgr struct {
	name string
	svc  *service.Service
}

func NewPropertyMgr(conf *RegisterConfig) Manager {
	return &PropertyMgr{
		name: "properties",
		svc:  conf.Service,
	}
}

func (mgr *PropertyMgr) GetName() string { return mgr.name }

func (mgr *PropertyMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *PropertyMgr) RegisterProtected(g *gin.RouterGroup) {
	g.POST("", mgr.Create)
	g.GET("", mgr.List)
	g.GET("/:id", mgr.Get)
	g.PUT("/:id", mgr.Update)
	g.DELETE("/:id", mgr.Delete)
}

func (mgr *PropertyMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	PropertyReq struct {
		Name    string `json:"name" binding:"required,max=128"`
		Address string `json:"address" binding:"max=256"`
		City    string `json:"city" binding:"max=64"`
		State   string `json:"state" binding:"max=32"`
		Zip     string `json:"zip" binding:"max=16"`
	}

	PropertyIDReq struct {
		ID uint `uri:"id" binding:"required"`
	}
)

// Create godoc
// @Summary Create a property
// @Description Register a new property owned by the calling manager
// @Tags Property
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body PropertyReq true "property data"
// @Success 200 {object} resputil.Response[model.Property] "created property"
// @Failure 400 {object} resputil.Response[any] "request parameter error"
// @Failure 403 {object} resputil.Response[any] "caller is not a manager"
// @Router /v1/properties [post]
func (mgr *PropertyMgr) Create(c *gin.Context) {
	var req PropertyReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	p, err := mgr.svc.CreateProperty(c, util.GetActor(c), service.PropertyInput{
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Zip:     req.Zip,
	})
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, p)
}

// List godoc
// @Summary List properties
// @Description List the caller's properties (all properties for admins)
// @Tags Property
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[[]model.Property] "properties"
// @Router /v1/properties [get]
func (mgr *PropertyMgr) List(c *gin.Context) {
	props, err := mgr.svc.ListProperties(c, util.GetActor(c))
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, props)
}

// Get godoc
// @Summary Get a property
// @Tags Property
// @Produce json
// @Security Bearer
// @Param id path int true "property id"
// @Success 200 {object} resputil.Response[model.Property] "property"
// @Failure 404 {object} resputil.Response[any] "not found"
// @Router /v1/properties/{id} [get]
func (mgr *PropertyMgr) Get(c *gin.Context) {
	var req PropertyIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	p, err := mgr.svc.GetProperty(c, util.GetActor(c), req.ID)
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, p)
}

// Update godoc
// @Summary Update a property
// @Tags Property
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "property id"
// @Param data body PropertyReq true "property data"
// @Success 200 {object} resputil.Response[model.Property] "updated property"
// @Failure 403 {object} resputil.Response[any] "not the owner"
// @Router /v1/properties/{id} [put]
func (mgr *PropertyMgr) Update(c *gin.Context) {
	var uriReq PropertyIDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req PropertyReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	p, err := mgr.svc.UpdateProperty(c, util.GetActor(c), uriReq.ID, service.PropertyInput{
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Zip:     req.Zip,
	})
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, p)
}

// Delete godoc
// @Summary Delete a property
// @Description Remove a property with no projects in flight
// @Tags Property
// @Produce json
// @Security Bearer
// @Param id path int true "property id"
// @Success 200 {object} resputil.Response[string] "deleted"
// @Failure 409 {object} resputil.Response[any] "projects in flight"
// @Router /v1/properties/{id} [delete]
func (mgr *PropertyMgr) Delete(c *gin.Context) {
	var req PropertyIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if err := mgr.svc.DeleteProperty(c, util.GetActor(c), req.ID); err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, "")
}
