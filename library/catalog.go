package library

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"librarydesk/models"
	"librarydesk/pagination"
)

// BooksPerPage is the fixed page size of the catalog listing.
const BooksPerPage = 6

// Catalog manages the book records.
type Catalog struct {
	books BookStore
}

func NewCatalog(books BookStore) *Catalog { return &Catalog{books: books} }

type BookInput struct {
	Title  string `label:"Title" validate:"required,max=100"`
	Author string `label:"Author" validate:"required,max=50"`
	ISBN   string `label:"ISBN" validate:"max=20"`
}

// BookEdit overwrites every editable field. Quantity is the raw form value
// and only applies when it parses as an integer.
type BookEdit struct {
	Title     string `label:"Title" validate:"max=100"`
	Author    string `label:"Author" validate:"max=50"`
	ISBN      string `label:"ISBN" validate:"max=20"`
	Available bool
	Quantity  string
}

type BookPage struct {
	Books []models.Book   `json:"books"`
	Query string          `json:"q"`
	Page  pagination.Page `json:"page"`
}

func (c *Catalog) Add(ctx context.Context, in BookInput) (*models.Book, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.ISBN = strings.TrimSpace(in.ISBN)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	b := &models.Book{
		Title:     in.Title,
		Author:    in.Author,
		ISBN:      optional(in.ISBN),
		Quantity:  1,
		Available: true,
	}
	if err := c.books.CreateBook(ctx, b); err != nil {
		return nil, isbnConflict(err, in.ISBN)
	}
	return b, nil
}

// List returns one page of books ordered by title. A non-empty q keeps books
// whose title, author or ISBN contains it, ignoring case.
func (c *Catalog) List(ctx context.Context, q, page string) (*BookPage, error) {
	q = strings.TrimSpace(q)
	total, err := c.books.CountBooks(ctx, q)
	if err != nil {
		return nil, err
	}
	p := pagination.Resolve(page, total, BooksPerPage)
	books, err := c.books.SearchBooks(ctx, q, p.Offset(), p.Limit())
	if err != nil {
		return nil, err
	}
	return &BookPage{Books: books, Query: q, Page: p}, nil
}

func (c *Catalog) Get(ctx context.Context, id uint) (*models.Book, error) {
	return c.books.FindBookByID(ctx, id)
}

func (c *Catalog) ListAvailable(ctx context.Context) ([]models.Book, error) {
	return c.books.ListAvailableBooks(ctx)
}

// Edit applies in to the book. A book that is out on loan stays unavailable
// whatever the submitted flag says.
func (c *Catalog) Edit(ctx context.Context, id uint, in BookEdit) (*models.Book, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.ISBN = strings.TrimSpace(in.ISBN)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	b, err := c.books.UpdateBook(ctx, id, func(b *models.Book, onLoan bool) error {
		b.Title = in.Title
		b.Author = in.Author
		b.ISBN = optional(in.ISBN)
		b.Available = in.Available && !onLoan
		if n, ok := parseQuantity(in.Quantity); ok {
			b.Quantity = n
		}
		return nil
	})
	if err != nil {
		return nil, isbnConflict(err, in.ISBN)
	}
	return b, nil
}

// Delete removes the book together with its issue records.
func (c *Catalog) Delete(ctx context.Context, id uint) error {
	return c.books.DeleteBook(ctx, id)
}

func parseQuantity(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func isbnConflict(err error, isbn string) error {
	if errors.Is(err, ErrDuplicateKey) {
		return &DuplicateKeyError{Field: "ISBN", Value: isbn}
	}
	return err
}
