package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	ldap "github.com/go-ldap/ldap/v3"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/propline/bidboard/dao/model"
	"github.com/propline/bidboard/internal/resputil"
	"github.com/propline/bidboard/internal/util"
	"github.com/propline/bidboard/pkg/config"
	"github.com/propline/bidboard/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewAuthMgr)
}

type AuthMgr struct {
	name     string
	db       *gorm.DB
	tokenMgr *util.TokenManager
}

func NewAuthMgr(conf *RegisterConfig) Manager {
	return &AuthMgr{
		name:     "auth",
		db:       conf.DB,
		tokenMgr: util.GetTokenMgr(),
	}
}

func (mgr *AuthMgr) GetName() string { return mgr.name }

func (mgr *AuthMgr) RegisterPublic(g *gin.RouterGroup) {
	g.POST("/register", mgr.Register)
	g.POST("/login", mgr.Login)
	g.POST("/refresh", mgr.RefreshToken)
}

func (mgr *AuthMgr) RegisterProtected(_ *gin.RouterGroup) {}
func (mgr *AuthMgr) RegisterAdmin(_ *gin.RouterGroup)     {}

const (
	AuthMethodNormal = "normal"
	AuthMethodLDAP   = "ldap"
)

type (
	RegisterReq struct {
		Username string     `json:"username" binding:"required,min=3,max=32"`
		Password string     `json:"password" binding:"required,min=8"`
		Nickname string     `json:"nickname"`
		Email    string     `json:"email" binding:"omitempty,email"`
		Role     model.Role `json:"role" binding:"required,oneof=manager vendor"`
	}

	LoginReq struct {
		Username   string `json:"username" binding:"required"`
		Password   string `json:"password" binding:"required"`
		AuthMethod string `json:"auth" binding:"omitempty,oneof=normal ldap"`
	}

	LoginResp struct {
		AccessToken  string      `json:"accessToken"`
		RefreshToken string      `json:"refreshToken"`
		Context      UserContext `json:"context"`
	}

	UserContext struct {
		UserID   uint       `json:"userId"`
		Username string     `json:"username"`
		Role     model.Role `json:"role"`
	}

	RefreshReq struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
)

// Register godoc
// @Summary Register a new account
// @Description Create a manager or vendor account. Roles are fixed at registration.
// @Tags Auth
// @Accept json
// @Produce json
// @Param data body RegisterReq true "registration data"
// @Success 200 {object} resputil.Response[LoginResp] "registered and logged in"
// @Failure 400 {object} resputil.Response[any] "request parameter error"
// @Failure 409 {object} resputil.Response[any] "username taken"
// @Router /v1/auth/register [post]
func (mgr *AuthMgr) Register(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		resputil.Error(c, "hash password failed", resputil.NotSpecified)
		return
	}
	hash := string(hashed)

	attrs := model.UserAttribute{}
	if req.Email != "" {
		attrs.Email = &req.Email
	}
	user := model.User{
		Name:       req.Username,
		Nickname:   req.Nickname,
		Password:   &hash,
		Role:       req.Role,
		Status:     model.StatusActive,
		Attributes: datatypes.NewJSONType(attrs),
	}
	if err := mgr.db.WithContext(c).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			resputil.HTTPError(c, http.StatusConflict, "username already taken", resputil.InvalidRequest)
			return
		}
		resputil.Error(c, fmt.Sprintf("create user failed, detail: %v", err), resputil.NotSpecified)
		return
	}

	mgr.issueTokens(c, &user)
}

// Login godoc
// @Summary Log in
// @Description Verify credentials and return a JWT token pair.
// @Tags Auth
// @Accept json
// @Produce json
// @Param data body LoginReq true "credentials"
// @Success 200 {object} resputil.Response[LoginResp] "token pair and user context"
// @Failure 400 {object} resputil.Response[any] "request parameter error"
// @Failure 401 {object} resputil.Response[any] "invalid credentials"
// @Router /v1/auth/login [post]
func (mgr *AuthMgr) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	l := logutils.Log.WithFields(logutils.Fields{
		"username": req.Username,
		"auth":     req.AuthMethod,
	})

	u := model.User{}
	err := mgr.db.WithContext(c).Where("name = ?", req.Username).First(&u).Error
	if err != nil {
		l.Error("user lookup: ", err)
		resputil.HTTPError(c, http.StatusUnauthorized, "Invalid credentials", resputil.InvalidCredentials)
		return
	}

	switch req.AuthMethod {
	case AuthMethodLDAP:
		if err := mgr.ldapAuth(req.Username, req.Password); err != nil {
			l.Error("invalid credentials: ", err)
			resputil.HTTPError(c, http.StatusUnauthorized, "Invalid credentials", resputil.InvalidCredentials)
			return
		}
	default:
		if err := mgr.normalAuth(&u, req.Password); err != nil {
			l.Error("invalid credentials: ", err)
			resputil.HTTPError(c, http.StatusUnauthorized, "Invalid credentials", resputil.InvalidCredentials)
			return
		}
	}

	if u.Status != model.StatusActive {
		l.Error("user is not active")
		resputil.HTTPError(c, http.StatusUnauthorized, "User is not active", resputil.InvalidCredentials)
		return
	}

	mgr.issueTokens(c, &u)
}

// RefreshToken godoc
// @Summary Refresh the token pair
// @Description Exchange a valid refresh token for a new token pair.
// @Tags Auth
// @Accept json
// @Produce json
// @Param data body RefreshReq true "refresh token"
// @Success 200 {object} resputil.Response[LoginResp] "new token pair"
// @Failure 401 {object} resputil.Response[any] "invalid refresh token"
// @Router /v1/auth/refresh [post]
func (mgr *AuthMgr) RefreshToken(c *gin.Context) {
	var req RefreshReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	msg, err := mgr.tokenMgr.CheckToken(req.RefreshToken)
	if err != nil {
		resputil.HTTPError(c, http.StatusUnauthorized, err.Error(), resputil.TokenExpired)
		return
	}
	var u model.User
	if err := mgr.db.WithContext(c).First(&u, msg.UserID).Error; err != nil {
		resputil.HTTPError(c, http.StatusUnauthorized, "User not found", resputil.TokenInvalid)
		return
	}
	if u.Status != model.StatusActive {
		resputil.HTTPError(c, http.StatusUnauthorized, "User is not active", resputil.TokenInvalid)
		return
	}
	mgr.issueTokens(c, &u)
}

func (mgr *AuthMgr) normalAuth(u *model.User, password string) error {
	if u.Password == nil {
		return errors.New("account has no local password")
	}
	return bcrypt.CompareHashAndPassword([]byte(*u.Password), []byte(password))
}

// ldapAuth binds against the corporate directory for deployments that
// manage vendor accounts centrally.
func (mgr *AuthMgr) ldapAuth(username, password string) error {
	cfg := config.GetConfig().LDAP
	if !cfg.Enable {
		return errors.New("ldap auth is not enabled")
	}
	conn, err := ldap.DialURL(cfg.Address)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Bind(cfg.UserName, cfg.Password); err != nil {
		return err
	}
	searchReq := ldap.NewSearchRequest(
		cfg.SearchDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 1, 0, false,
		fmt.Sprintf("(uid=%s)", ldap.EscapeFilter(username)),
		[]string{"dn"},
		nil,
	)
	result, err := conn.Search(searchReq)
	if err != nil {
		return err
	}
	if len(result.Entries) != 1 {
		return errors.New("user not found in directory")
	}
	return conn.Bind(result.Entries[0].DN, password)
}

func (mgr *AuthMgr) issueTokens(c *gin.Context, u *model.User) {
	msg := util.JWTMessage{
		UserID:   u.ID,
		Username: u.Name,
		Role:     u.Role,
	}
	access, refresh, err := mgr.tokenMgr.CreateTokens(&msg)
	if err != nil {
		resputil.Error(c, "create tokens failed", resputil.NotSpecified)
		return
	}
	resputil.Success(c, LoginResp{
		AccessToken:  access,
		RefreshToken: refresh,
		Context: UserContext{
			UserID:   u.ID,
			Username: u.Name,
			Role:     u.Role,
		},
	})
}
