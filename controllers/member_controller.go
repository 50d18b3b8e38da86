package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"librarydesk/app"
	"librarydesk/library"
	"librarydesk/session"

	"github.com/gin-gonic/gin"
)

type MemberController struct{ *Srv }

func NewMemberController(s *Srv) *MemberController { return &MemberController{Srv: s} }

type memberForm struct {
	Name  string `form:"name" json:"name"`
	Email string `form:"email" json:"email"`
	Phone string `form:"phone" json:"phone"`
}

// GET /add_member
func (mc *MemberController) AddMemberForm(c *gin.Context) {
	mc.render(c, app.H{"form": memberForm{}})
}

// POST /add_member
func (mc *MemberController) AddMember(c *gin.Context) {
	var in memberForm
	if err := bindForm(c, &in); err != nil {
		mc.fail(c, err, "/add_member")
		return
	}
	m, err := mc.Members.Add(c.Request.Context(), library.MemberInput(in))
	if err != nil {
		mc.fail(c, err, "/add_member")
		return
	}
	mc.redirect(c, session.FlashSuccess, fmt.Sprintf("Member \"%s\" added.", m.Name), "/view_members")
}

// GET /view_members
func (mc *MemberController) ViewMembers(c *gin.Context) {
	members, err := mc.Members.List(c.Request.Context())
	if err != nil {
		mc.Log.ErrorContext(c.Request.Context(), "list members", "err", err)
		c.JSON(http.StatusInternalServerError, app.H{"error": "could not load members"})
		return
	}
	mc.render(c, app.H{"members": members})
}

// GET /edit_member/:id
func (mc *MemberController) EditMemberForm(c *gin.Context) {
	id, err := paramID(c, "member")
	if err != nil {
		mc.fail(c, err, "/view_members")
		return
	}
	m, err := mc.Members.Get(c.Request.Context(), id)
	if err != nil {
		mc.fail(c, err, "/view_members")
		return
	}
	mc.render(c, app.H{"member": m})
}

// POST /edit_member/:id
func (mc *MemberController) EditMember(c *gin.Context) {
	id, err := paramID(c, "member")
	if err != nil {
		mc.fail(c, err, "/view_members")
		return
	}
	back := fmt.Sprintf("/edit_member/%d", id)
	var in memberForm
	if err := bindForm(c, &in); err != nil {
		mc.fail(c, err, back)
		return
	}
	_, err = mc.Members.Edit(c.Request.Context(), id, library.MemberEdit(in))
	switch {
	case errors.Is(err, library.ErrNotFound):
		mc.fail(c, err, "/view_members")
	case err != nil:
		mc.fail(c, err, back)
	default:
		mc.redirect(c, session.FlashSuccess, "Member updated.", "/view_members")
	}
}

// POST /delete_member/:id
func (mc *MemberController) DeleteMember(c *gin.Context) {
	id, err := paramID(c, "member")
	if err == nil {
		err = mc.Members.Delete(c.Request.Context(), id)
	}
	if err != nil {
		mc.fail(c, err, "/view_members")
		return
	}
	mc.redirect(c, session.FlashSuccess, "Member deleted.", "/view_members")
}
