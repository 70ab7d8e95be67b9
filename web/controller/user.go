package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storerate/storerate/util/common"
	"github.com/storerate/storerate/util/metrics"
	"github.com/storerate/storerate/web/entity"
	"github.com/storerate/storerate/web/middleware"
	"github.com/storerate/storerate/web/policy"
)

// UserController handles registration, login and the caller's profile.
type UserController struct {
	BaseController
}

func NewUserController(g *gin.RouterGroup, deps *Deps) *UserController {
	a := &UserController{BaseController{deps: deps}}
	a.initRouter(g)
	return a
}

func (a *UserController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/users")

	g.POST("/register", a.limit(), a.register)
	g.POST("/login", a.limit(), a.login)
	g.POST("/refresh", a.require(policy.RefreshToken), a.refresh)
	g.GET("/profile", a.require(policy.ViewProfile), a.profile)
	g.PUT("/profile", a.require(policy.UpdateProfile), a.updateProfile)
	for _, path := range []string{"/password", "/update-password"} {
		g.PUT(path, a.require(policy.ChangePassword), a.changePassword)
		g.POST(path, a.require(policy.ChangePassword), a.changePassword)
	}
	g.GET("", a.require(policy.ListUsers), a.list)
}

func (a *UserController) register(c *gin.Context) {
	req := &entity.RegisterRequest{}
	if !bindJSON(c, req) {
		return
	}
	token, err := a.deps.Users.Register(c.Request.Context(), req)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entity.TokenResponse{Token: token})
}

func (a *UserController) login(c *gin.Context) {
	req := &entity.LoginRequest{}
	if !bindJSON(c, req) {
		return
	}
	token, err := a.deps.Users.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			metrics.FailedLoginAttempts.Inc()
		}
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.TokenResponse{Token: token})
}

func (a *UserController) refresh(c *gin.Context) {
	token, err := a.deps.Users.RefreshToken(middleware.Subject(c), middleware.Token(c))
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.TokenResponse{Token: token})
}

func (a *UserController) profile(c *gin.Context) {
	user, err := a.deps.Users.Profile(c.Request.Context(), middleware.Subject(c))
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.NewUserView(user))
}

func (a *UserController) updateProfile(c *gin.Context) {
	req := &entity.ProfileUpdateRequest{}
	if !bindJSON(c, req) {
		return
	}
	if err := a.deps.Users.UpdateProfile(c.Request.Context(), middleware.Subject(c), req); err != nil {
		jsonError(c, err)
		return
	}
	jsonMsg(c, http.StatusOK, "profile updated")
}

func (a *UserController) changePassword(c *gin.Context) {
	req := &entity.PasswordChangeRequest{}
	if !bindJSON(c, req) {
		return
	}
	if err := a.deps.Users.ChangePassword(c.Request.Context(), middleware.Subject(c), req); err != nil {
		jsonError(c, err)
		return
	}
	jsonMsg(c, http.StatusOK, "password updated")
}

func (a *UserController) list(c *gin.Context) {
	users, err := a.deps.Users.ListUsers(c.Request.Context(), middleware.Subject(c))
	if err != nil {
		jsonError(c, err)
		return
	}
	views := make([]entity.UserView, 0, len(users))
	for i := range users {
		views = append(views, entity.NewUserView(&users[i]))
	}
	c.JSON(http.StatusOK, views)
}
