package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propline/bidboard/internal/resputil"
	"github.com/propline/bidboard/internal/service"
	"github.com/propline/bidboard/internal/util"
	"github.com/propline/bidboard/pkg/config"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewDocumentMgr)
}

type DocumentMgr struct {
	name string
	svc  *service.Service
}

func NewDocumentMgr(conf *RegisterConfig) Manager {
	return &DocumentMgr{
		name: "documents",
		svc:  conf.Service,
	}
}

func (mgr *DocumentMgr) GetName() string { return mgr.name }

func (mgr *DocumentMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *DocumentMgr) RegisterProtected(g *gin.RouterGroup) {
	g.POST("", mgr.Upload)
	g.GET("", mgr.List)
	g.GET("/:id/link", mgr.Link)
	g.DELETE("/:id", mgr.Delete)
}

func (mgr *DocumentMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	DocumentScopeReq struct {
		ProjectID *uint `form:"projectId"`
		BidID     *uint `form:"bidId"`
	}

	DocumentIDReq struct {
		ID uint `uri:"id" binding:"required"`
	}
)

// Upload godoc
// @Summary Upload a document
// @Description Attach a file to a project (manager) or a pending bid (vendor); exactly one of projectId and bidId is required
// @Tags Document
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param projectId formData int false "project id"
// @Param bidId formData int false "bid id"
// @Param file formData file true "file"
// @Success 200 {object} resputil.Response[model.Document] "document metadata"
// @Failure 400 {object} resputil.Response[any] "bad scope or oversized file"
// @Router /v1/documents [post]
func (mgr *DocumentMgr) Upload(c *gin.Context) {
	maxBytes := config.GetConfig().MaxUploadBytes
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

	var scope DocumentScopeReq
	if err := c.ShouldBind(&scope); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		resputil.BadRequestError(c, fmt.Sprintf("file is required: %v", err))
		return
	}
	if fh.Size > maxBytes {
		resputil.BadRequestError(c, fmt.Sprintf("file exceeds the %d byte limit", maxBytes))
		return
	}
	f, err := fh.Open()
	if err != nil {
		resputil.Error(c, "open uploaded file failed", resputil.NotSpecified)
		return
	}
	defer f.Close()

	doc, err := mgr.svc.UploadDocument(c, util.GetActor(c), service.DocumentUpload{
		ProjectID:   scope.ProjectID,
		BidID:       scope.BidID,
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Content:     f,
	})
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, doc)
}

// List godoc
// @Summary List documents
// @Description List documents attached to a project or a bid the caller may read
// @Tags Document
// @Produce json
// @Security Bearer
// @Param projectId query int false "project id"
// @Param bidId query int false "bid id"
// @Success 200 {object} resputil.Response[[]model.Document] "documents"
// @Router /v1/documents [get]
func (mgr *DocumentMgr) List(c *gin.Context) {
	var scope DocumentScopeReq
	if err := c.ShouldBindQuery(&scope); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	docs, err := mgr.svc.ListDocuments(c, util.GetActor(c), scope.ProjectID, scope.BidID)
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, docs)
}

type DocumentLinkResp struct {
	URL string `json:"url"`
}

// Link godoc
// @Summary Get a download link
// @Description Returns a presigned URL valid for one hour; the payload itself never flows through the API
// @Tags Document
// @Produce json
// @Security Bearer
// @Param id path int true "document id"
// @Success 200 {object} resputil.Response[DocumentLinkResp] "presigned link"
// @Failure 404 {object} resputil.Response[any] "not visible"
// @Router /v1/documents/{id}/link [get]
func (mgr *DocumentMgr) Link(c *gin.Context) {
	var req DocumentIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	url, err := mgr.svc.DocumentLink(c, util.GetActor(c), req.ID)
	if err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, DocumentLinkResp{URL: url})
}

// Delete godoc
// @Summary Delete a document
// @Description Uploader-only; removes the payload and the metadata record
// @Tags Document
// @Produce json
// @Security Bearer
// @Param id path int true "document id"
// @Success 200 {object} resputil.Response[string] "deleted"
// @Router /v1/documents/{id} [delete]
func (mgr *DocumentMgr) Delete(c *gin.Context) {
	var req DocumentIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if err := mgr.svc.DeleteDocument(c, util.GetActor(c), req.ID); err != nil {
		resputil.ServiceError(c, err)
		return
	}
	resputil.Success(c, "")
}
