package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"librarydesk/app"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

type loginForm struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	Next     string `form:"next" json:"next"`
}

// POST /login
func (ac *AuthController) Login(c *gin.Context) {
	var in loginForm
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid form"})
		return
	}
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "username and password are required"})
		return
	}

	u, err := ac.Repo.FindUserByUsername(c.Request.Context(), username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		ac.Log.ErrorContext(c.Request.Context(), "find user", "err", err)
		c.JSON(http.StatusInternalServerError, app.H{"error": "login unavailable"})
		return
	}
	if u == nil || !app.CheckPassword(u.PasswordHash, in.Password) {
		c.JSON(http.StatusUnauthorized, app.H{"error": "invalid username or password"})
		return
	}

	if err := ac.issueSession(c.Request.Context(), c.Writer, u.ID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		ac.Log.ErrorContext(c.Request.Context(), "create session", "err", err)
		c.JSON(http.StatusServiceUnavailable, app.H{"error": "session store unavailable"})
		return
	}
	c.Redirect(http.StatusSeeOther, safeNext(in.Next))
}

// POST /logout：删 Redis，会话 Cookie 置空
func (ac *AuthController) Logout(c *gin.Context) {
	if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
		_ = ac.AppSess.Delete(c.Request.Context(), ck.Value)
	}
	ac.setAppCookie(c.Writer, "", -time.Second) // 删除
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /whoami
func (ac *AuthController) WhoAmI(c *gin.Context) {
	c.JSON(http.StatusOK, app.H{
		"userID":   c.GetString(app.CtxUserID),
		"username": c.GetString(app.CtxUsername),
		"isStaff":  c.GetBool(app.CtxIsStaff),
	})
}

// safeNext only follows local paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, `/\`) {
		return "/"
	}
	return next
}
