// controllers/srv.go
package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"librarydesk/app"
	"librarydesk/config"
	"librarydesk/db"
	"librarydesk/library"
	"librarydesk/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Srv struct {
	Repo        *db.Repo
	AppSess     *session.AppSessionStore
	Catalog     *library.Catalog
	Members     *library.Membership
	Circulation *library.Circulation
	Log         *slog.Logger
	WebOrigin   string
	Cfg         config.Config
}

func GetSrv(a *app.App, opts ...library.CirculationOption) *Srv {
	repo := db.NewRepo(a.DB)
	return &Srv{
		Repo:        repo,
		AppSess:     a.AppSessions(),
		Catalog:     library.NewCatalog(repo),
		Members:     library.NewMembership(repo),
		Circulation: library.NewCirculation(repo, repo, repo, opts...),
		Log:         a.Log,
		WebOrigin:   a.Config.WebOrigin,
		Cfg:         a.Config,
	}
}

// --- helpers ---

// 统一设置业务会话 Cookie
func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	secure := strings.HasPrefix(s.WebOrigin, "https://")
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   int(maxAge / time.Second),
	})
}

// 登录成功：创建会话 + 触发登录快照
func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, userID string, ip, ua string) error {
	if err := s.Repo.TouchUserLogin(ctx, userID, ip, ua); err != nil {
		s.Log.WarnContext(ctx, "touch login", "user", userID, "err", err) // 不阻塞
	}
	id := uuid.NewString()
	if err := s.AppSess.Create(ctx, id, userID); err != nil {
		return err
	}
	s.setAppCookie(w, id, s.AppSess.TTL())
	return nil
}

func (s *Srv) flash(c *gin.Context, level, text string) {
	sid := c.GetString(app.CtxSessionID)
	if sid == "" {
		return
	}
	if err := s.AppSess.AddFlash(c.Request.Context(), sid, session.Flash{Level: level, Text: text}); err != nil {
		s.Log.WarnContext(c.Request.Context(), "queue flash", "err", err)
	}
}

// redirect queues a flash message and answers 303 to location.
func (s *Srv) redirect(c *gin.Context, level, text, location string) {
	if text != "" {
		s.flash(c, level, text)
	}
	c.Redirect(http.StatusSeeOther, location)
}

// fail turns a service error into an error flash and a redirect. Errors the
// librarian cannot act on are logged and replaced by a generic message.
func (s *Srv) fail(c *gin.Context, err error, location string) {
	text := library.Message(err)
	if text == "" {
		s.Log.ErrorContext(c.Request.Context(), "request failed",
			"path", c.Request.URL.Path, "requestID", c.GetString("requestID"), "err", err)
		text = "Something went wrong, please try again."
	}
	s.redirect(c, session.FlashError, text, location)
}

// render answers a GET page with its data and the session's pending messages.
func (s *Srv) render(c *gin.Context, data app.H) {
	messages := []session.Flash{}
	if sid := c.GetString(app.CtxSessionID); sid != "" {
		popped, err := s.AppSess.PopFlashes(c.Request.Context(), sid)
		if err != nil {
			s.Log.WarnContext(c.Request.Context(), "pop flashes", "err", err)
		} else if popped != nil {
			messages = popped
		}
	}
	data["messages"] = messages
	c.JSON(http.StatusOK, data)
}

// paramID parses the :id path segment; anything that is not a positive
// integer cannot name a row and is reported as not found.
func paramID(c *gin.Context, entity string) (uint, error) {
	return parseID(c.Param("id"), entity)
}

func parseID(raw, entity string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || n == 0 {
		return 0, &library.NotFoundError{Entity: entity}
	}
	return uint(n), nil
}

// checkbox reads an HTML checkbox value.
func checkbox(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

var errUnreadableForm = &library.InvalidInputError{Problems: []string{"The form could not be read."}}

func bindForm(c *gin.Context, dst any) error {
	if err := c.ShouldBind(dst); err != nil {
		return errors.Join(errUnreadableForm, err)
	}
	return nil
}
