package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/propline/bidboard/dao/model"
	"github.com/propline/bidboard/internal/resputil"
	"github.com/propline/bidboard/internal/util"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewUserMgr)
}

type UserMgr struct {
	name string
	db   *gorm.DB
}

func NewUserMgr(conf *RegisterConfig) Manager {
	return &UserMgr{
		name: "users",
		db:   conf.DB,
	}
}

func (mgr *UserMgr) GetName() string { return mgr.name }

func (mgr *UserMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *UserMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/me", mgr.Me)
	g.PUT("/me", mgr.UpdateMe)
	g.PUT("/me/password", mgr.ChangePassword)
}

func (mgr *UserMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.GET("", mgr.AdminList)
	g.PUT("/:name/status", mgr.AdminUpdateStatus)
	g.PUT("/:name/role", mgr.AdminUpdateRole)
	g.DELETE("/:name", mgr.AdminDelete)
}

type (
	UserProfileResp struct {
		ID         uint                `json:"id"`
		Name       string              `json:"name"`
		Nickname   string              `json:"nickname"`
		Role       model.Role          `json:"role"`
		Status     model.Status        `json:"status"`
		Attributes model.UserAttribute `json:"attributes"`
	}

	UpdateMeReq struct {
		Nickname string  `json:"nickname" binding:"max=64"`
		Email    *string `json:"email" binding:"omitempty,email"`
		Phone    *string `json:"phone"`
		Company  *string `json:"company"`
		Avatar   *string `json:"avatar"`
	}

	ChangePasswordReq struct {
		OldPassword string `json:"oldPassword" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required,min=8"`
	}

	UserNameReq struct {
		Name string `uri:"name" binding:"required"`
	}

	UpdateStatusReq struct {
		Status model.Status `json:"status" binding:"required,oneof=active inactive"`
	}

	UpdateRoleReq struct {
		Role model.Role `json:"role" binding:"required,oneof=admin manager vendor"`
	}
)

func profileOf(u *model.User) UserProfileResp {
	return UserProfileResp{
		ID:         u.ID,
		Name:       u.Name,
		Nickname:   u.Nickname,
		Role:       u.Role,
		Status:     u.Status,
		Attributes: u.Attributes.Data(),
	}
}

// Me godoc
// @Summary Get my profile
// @Tags User
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[UserProfileResp] "profile"
// @Router /v1/users/me [get]
func (mgr *UserMgr) Me(c *gin.Context) {
	token := util.GetToken(c)
	var u model.User
	if err := mgr.db.WithContext(c).First(&u, token.UserID).Error; err != nil {
		resputil.Error(c, "load user failed", resputil.NotSpecified)
		return
	}
	resputil.Success(c, profileOf(&u))
}

// UpdateMe godoc
// @Summary Update my profile
// @Description Update nickname and contact attributes; omitted attribute fields are left unchanged
// @Tags User
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body UpdateMeReq true "profile data"
// @Success 200 {object} resputil.Response[UserProfileResp] "updated profile"
// @Router /v1/users/me [put]
func (mgr *UserMgr) UpdateMe(c *gin.Context) {
	var req UpdateMeReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	token := util.GetToken(c)
	var u model.User
	if err := mgr.db.WithContext(c).First(&u, token.UserID).Error; err != nil {
		resputil.Error(c, "load user failed", resputil.NotSpecified)
		return
	}

	if req.Nickname != "" {
		u.Nickname = req.Nickname
	}
	attrs := u.Attributes.Data()
	if req.Email != nil {
		attrs.Email = req.Email
	}
	if req.Phone != nil {
		attrs.Phone = req.Phone
	}
	if req.Company != nil {
		attrs.Company = req.Company
	}
	if req.Avatar != nil {
		attrs.Avatar = req.Avatar
	}
	u.Attributes = datatypes.NewJSONType(attrs)

	if err := mgr.db.WithContext(c).Save(&u).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("update user failed, detail: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, profileOf(&u))
}

// ChangePassword godoc
// @Summary Change my password
// @Tags User
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body ChangePasswordReq true "old and new password"
// @Success 200 {object} resputil.Response[string] "changed"
// @Failure 401 {object} resputil.Response[any] "old password does not match"
// @Router /v1/users/me/password [put]
func (mgr *UserMgr) ChangePassword(c *gin.Context) {
	var req ChangePasswordReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	token := util.GetToken(c)
	var u model.User
	if err := mgr.db.WithContext(c).First(&u, token.UserID).Error; err != nil {
		resputil.Error(c, "load user failed", resputil.NotSpecified)
		return
	}
	if u.Password == nil ||
		bcrypt.CompareHashAndPassword([]byte(*u.Password), []byte(req.OldPassword)) != nil {
		resputil.HTTPError(c, http.StatusUnauthorized, "Invalid credentials", resputil.InvalidCredentials)
		return
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		resputil.Error(c, "hash password failed", resputil.NotSpecified)
		return
	}
	hash := string(hashed)
	if err := mgr.db.WithContext(c).Model(&u).Update("password", &hash).Error; err != nil {
		resputil.Error(c, "update password failed", resputil.NotSpecified)
		return
	}
	resputil.Success(c, "")
}

// AdminList godoc
// @Summary List all users
// @Tags User
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[[]UserProfileResp] "users"
// @Router /v1/admin/users [get]
func (mgr *UserMgr) AdminList(c *gin.Context) {
	var users []model.User
	if err := mgr.db.WithContext(c).Order("id ASC").Find(&users).Error; err != nil {
		resputil.Error(c, "list users failed", resputil.NotSpecified)
		return
	}
	resp := make([]UserProfileResp, len(users))
	for i := range users {
		resp[i] = profileOf(&users[i])
	}
	resputil.Success(c, resp)
}

// AdminUpdateStatus godoc
// @Summary Activate or deactivate a user
// @Description Inactive users cannot log in or refresh tokens
// @Tags User
// @Accept json
// @Produce json
// @Security Bearer
// @Param name path string true "username"
// @Param data body UpdateStatusReq true "status"
// @Success 200 {object} resputil.Response[string] "updated"
// @Router /v1/admin/users/{name}/status [put]
func (mgr *UserMgr) AdminUpdateStatus(c *gin.Context) {
	var uriReq UserNameReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req UpdateStatusReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	res := mgr.db.WithContext(c).Model(&model.User{}).
		Where("name = ?", uriReq.Name).
		Update("status", req.Status)
	if res.Error != nil {
		resputil.Error(c, "update status failed", resputil.NotSpecified)
		return
	}
	if res.RowsAffected == 0 {
		resputil.HTTPError(c, http.StatusNotFound, "user not found", resputil.ResourceNotFound)
		return
	}
	resputil.Success(c, "")
}

// AdminUpdateRole godoc
// @Summary Change a user's role
// @Description Operator escape hatch; roles are otherwise fixed at registration
// @Tags User
// @Accept json
// @Produce json
// @Security Bearer
// @Param name path string true "username"
// @Param data body UpdateRoleReq true "role"
// @Success 200 {object} resputil.Response[string] "updated"
// @Router /v1/admin/users/{name}/role [put]
func (mgr *UserMgr) AdminUpdateRole(c *gin.Context) {
	var uriReq UserNameReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req UpdateRoleReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	res := mgr.db.WithContext(c).Model(&model.User{}).
		Where("name = ?", uriReq.Name).
		Update("role", req.Role)
	if res.Error != nil {
		resputil.Error(c, "update role failed", resputil.NotSpecified)
		return
	}
	if res.RowsAffected == 0 {
		resputil.HTTPError(c, http.StatusNotFound, "user not found", resputil.ResourceNotFound)
		return
	}
	resputil.Success(c, "")
}

// AdminDelete godoc
// @Summary Delete a user
// @Tags User
// @Produce json
// @Security Bearer
// @Param name path string true "username"
// @Success 200 {object} resputil.Response[string] "deleted"
// @Router /v1/admin/users/{name} [delete]
func (mgr *UserMgr) AdminDelete(c *gin.Context) {
	var req UserNameReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	res := mgr.db.WithContext(c).Where("name = ?", req.Name).Delete(&model.User{})
	if res.Error != nil {
		resputil.Error(c, "delete user failed", resputil.NotSpecified)
		return
	}
	if res.RowsAffected == 0 {
		resputil.HTTPError(c, http.StatusNotFound, "user not found", resputil.ResourceNotFound)
		return
	}
	resputil.Success(c, "")
}
