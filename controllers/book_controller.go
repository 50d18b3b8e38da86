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

type BookController struct{ *Srv }

func NewBookController(s *Srv) *BookController { return &BookController{Srv: s} }

type bookForm struct {
	Title     string `form:"title" json:"title"`
	Author    string `form:"author" json:"author"`
	ISBN      string `form:"isbn" json:"isbn"`
	Available string `form:"available" json:"available"`
	Quantity  string `form:"quantity" json:"quantity"`
}

// GET /add_book
func (bc *BookController) AddBookForm(c *gin.Context) {
	bc.render(c, app.H{"form": bookForm{}})
}

// POST /add_book
func (bc *BookController) AddBook(c *gin.Context) {
	var in bookForm
	if err := bindForm(c, &in); err != nil {
		bc.fail(c, err, "/add_book")
		return
	}
	b, err := bc.Catalog.Add(c.Request.Context(), library.BookInput{Title: in.Title, Author: in.Author, ISBN: in.ISBN})
	if err != nil {
		bc.fail(c, err, "/add_book")
		return
	}
	bc.redirect(c, session.FlashSuccess, fmt.Sprintf("Book \"%s\" added.", b.Title), "/view_books")
}

// GET /view_books?q=&page=
func (bc *BookController) ViewBooks(c *gin.Context) {
	page, err := bc.Catalog.List(c.Request.Context(), c.Query("q"), c.Query("page"))
	if err != nil {
		bc.Log.ErrorContext(c.Request.Context(), "list books", "err", err)
		c.JSON(http.StatusInternalServerError, app.H{"error": "could not load books"})
		return
	}
	bc.render(c, app.H{"books": page.Books, "q": page.Query, "page": page.Page})
}

// GET /edit_book/:id
func (bc *BookController) EditBookForm(c *gin.Context) {
	id, err := paramID(c, "book")
	if err != nil {
		bc.fail(c, err, "/view_books")
		return
	}
	b, err := bc.Catalog.Get(c.Request.Context(), id)
	if err != nil {
		bc.fail(c, err, "/view_books")
		return
	}
	bc.render(c, app.H{"book": b})
}

// POST /edit_book/:id
func (bc *BookController) EditBook(c *gin.Context) {
	id, err := paramID(c, "book")
	if err != nil {
		bc.fail(c, err, "/view_books")
		return
	}
	back := fmt.Sprintf("/edit_book/%d", id)
	var in bookForm
	if err := bindForm(c, &in); err != nil {
		bc.fail(c, err, back)
		return
	}
	_, err = bc.Catalog.Edit(c.Request.Context(), id, library.BookEdit{
		Title:     in.Title,
		Author:    in.Author,
		ISBN:      in.ISBN,
		Available: checkbox(in.Available),
		Quantity:  in.Quantity,
	})
	switch {
	case errors.Is(err, library.ErrNotFound):
		bc.fail(c, err, "/view_books")
	case err != nil:
		bc.fail(c, err, back)
	default:
		bc.redirect(c, session.FlashSuccess, "Book updated.", "/view_books")
	}
}

// POST /delete_book/:id
func (bc *BookController) DeleteBook(c *gin.Context) {
	id, err := paramID(c, "book")
	if err == nil {
		err = bc.Catalog.Delete(c.Request.Context(), id)
	}
	if err != nil {
		bc.fail(c, err, "/view_books")
		return
	}
	bc.redirect(c, session.FlashSuccess, "Book deleted.", "/view_books")
}
