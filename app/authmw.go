package app

import (
	"errors"
	"net/http"
	"strings"

	"librarydesk/db"
	"librarydesk/models"
	"librarydesk/session"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const AppSessionCookie = "library_session"

// Context keys set by AuthRequired.
const (
	CtxUserID    = "userID"
	CtxUsername  = "username"
	CtxIsStaff   = "isStaff"
	CtxSessionID = "sessionID"
)

// IsStaff reports whether u may open staff pages, either by flag or by being
// listed in STAFF_USERS.
func IsStaff(u *models.User, staffUsers []string) bool {
	if u.IsStaff {
		return true
	}
	name := strings.ToLower(u.Username)
	for _, s := range staffUsers {
		if name == s {
			return true
		}
	}
	return false
}

func AuthRequired(appSess *session.AppSessionStore, repo *db.Repo, staffUsers []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		as, err := appSess.Get(c.Request.Context(), ck.Value)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, H{"error": "session store unavailable"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}

		// 确认用户仍存在
		u, err := repo.FindUserByID(c.Request.Context(), as.UserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = appSess.Delete(c.Request.Context(), ck.Value)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, H{"error": "user store unavailable"})
			return
		}
		c.Set(CtxSessionID, ck.Value)
		c.Set(CtxUserID, u.ID)
		c.Set(CtxUsername, u.Username)
		c.Set(CtxIsStaff, IsStaff(u, staffUsers))

		c.Next()
	}
}

// StaffOnly must run after AuthRequired.
func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(CtxUserID); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if !c.GetBool(CtxIsStaff) {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
