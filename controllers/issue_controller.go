package controllers

import (
	"fmt"
	"net/http"

	"librarydesk/app"
	"librarydesk/session"

	"github.com/gin-gonic/gin"
)

type IssueController struct{ *Srv }

func NewIssueController(s *Srv) *IssueController { return &IssueController{Srv: s} }

type issueForm struct {
	Member string `form:"member" json:"member"`
	Book   string `form:"book" json:"book"`
}

// GET /issue_book
func (ic *IssueController) IssueForm(c *gin.Context) {
	form, err := ic.Circulation.IssueForm(c.Request.Context())
	if err != nil {
		ic.Log.ErrorContext(c.Request.Context(), "issue form", "err", err)
		c.JSON(http.StatusInternalServerError, app.H{"error": "could not load issue form"})
		return
	}
	ic.render(c, app.H{"members": form.Members, "books": form.Books})
}

// POST /issue_book
func (ic *IssueController) IssueBook(c *gin.Context) {
	var in issueForm
	if err := bindForm(c, &in); err != nil {
		ic.fail(c, err, "/issue_book")
		return
	}
	memberID, err := parseID(in.Member, "member")
	if err != nil {
		ic.fail(c, err, "/issue_book")
		return
	}
	bookID, err := parseID(in.Book, "book")
	if err != nil {
		ic.fail(c, err, "/issue_book")
		return
	}

	rec, err := ic.Circulation.Issue(c.Request.Context(), memberID, bookID)
	if err != nil {
		ic.fail(c, err, "/issue_book")
		return
	}
	ic.redirect(c, session.FlashSuccess,
		fmt.Sprintf("Issued \"%s\" to %s.", rec.Book.Title, rec.Member.Name), "/view_issued")
}

// GET /view_issued
func (ic *IssueController) ViewIssued(c *gin.Context) {
	records, err := ic.Circulation.ListIssued(c.Request.Context())
	if err != nil {
		ic.Log.ErrorContext(c.Request.Context(), "list issued", "err", err)
		c.JSON(http.StatusInternalServerError, app.H{"error": "could not load issued books"})
		return
	}
	ic.render(c, app.H{"issued": records})
}

// POST /return_book/:id
func (ic *IssueController) ReturnBook(c *gin.Context) {
	id, err := paramID(c, "issue record")
	if err != nil {
		ic.fail(c, err, "/view_issued")
		return
	}
	res, err := ic.Circulation.Return(c.Request.Context(), id)
	if err != nil {
		ic.fail(c, err, "/view_issued")
		return
	}
	if res.AlreadyReturned {
		ic.redirect(c, session.FlashInfo, "Book already returned.", "/view_issued")
		return
	}
	ic.redirect(c, session.FlashSuccess, fmt.Sprintf("Book \"%s\" returned.", res.Record.Book.Title), "/view_issued")
}
