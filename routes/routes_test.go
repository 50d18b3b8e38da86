package routes_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"librarydesk/app"
	"librarydesk/config"
	"librarydesk/db"
	"librarydesk/library"
	"librarydesk/models"
	"librarydesk/pagination"
	"librarydesk/routes"
	"librarydesk/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

type server struct {
	t       *testing.T
	handler http.Handler
	repo    *db.Repo
	mr      *miniredis.Miniredis
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dbCfg := config.Database{
		Driver:       config.DriverSQLite,
		DSN:          config.SQLiteDSN(filepath.Join(t.TempDir(), "library.db")),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
	conn, err := db.Open(dbCfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := config.Config{
		Port:         "0",
		Database:     dbCfg,
		WebOrigin:    "http://localhost:3000",
		SessionTTL:   time.Hour,
		SeenThrottle: time.Minute,
		StaffUsers:   []string{"carol"},
		LogLevel:     slog.LevelInfo,
	}
	a := app.Build(cfg, conn, rdb, logger)
	routes.RegisterRoutes(a.Router, a, library.WithClock(func() time.Time { return today }))
	return &server{t: t, handler: a.Router, repo: db.NewRepo(conn), mr: mr}
}

func (s *server) createUser(username, password string, staff bool) {
	s.t.Helper()
	hash, err := app.HashPassword(password)
	require.NoError(s.t, err)
	require.NoError(s.t, s.repo.CreateUser(context.Background(), &models.User{Username: username, PasswordHash: hash, IsStaff: staff}))
}

func (s *server) do(method, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	s.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *server) login(username, password string) *http.Cookie {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/login", url.Values{"username": {username}, "password": {password}}, nil)
	require.Equal(s.t, http.StatusSeeOther, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == app.AppSessionCookie {
			return c
		}
	}
	s.t.Fatal("no session cookie")
	return nil
}

// post submits a form and checks it redirected to location.
func (s *server) post(cookie *http.Cookie, path string, form url.Values, location string) {
	s.t.Helper()
	rec := s.do(http.MethodPost, path, form, cookie)
	require.Equal(s.t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(s.t, location, rec.Header().Get("Location"))
}

func (s *server) get(cookie *http.Cookie, path string, out any) {
	s.t.Helper()
	rec := s.do(http.MethodGet, path, nil, cookie)
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), out))
}

type messages struct {
	Messages []session.Flash `json:"messages"`
}

type booksPage struct {
	messages
	Books []models.Book   `json:"books"`
	Q     string          `json:"q"`
	Page  pagination.Page `json:"page"`
}

type membersPage struct {
	messages
	Members []models.Member `json:"members"`
}

type issuedPage struct {
	messages
	Issued []models.IssueRecord `json:"issued"`
}

type dashboardPage struct {
	messages
	Username string          `json:"username"`
	Stats    library.Summary `json:"stats"`
}

func TestHealthz(t *testing.T) {
	s := newServer(t)
	rec := s.do(http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestPagesRequireLogin(t *testing.T) {
	s := newServer(t)
	for _, path := range []string{"/", "/view_books", "/view_members", "/view_issued", "/staff_dashboard"} {
		rec := s.do(http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	rec := s.do(http.MethodPost, "/add_book", url.Values{"title": {"Go"}, "author": {"Pike"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/", nil, &http.Cookie{Name: app.AppSessionCookie, Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin(t *testing.T) {
	s := newServer(t)
	s.createUser("alice", "correct horse", false)

	rec := s.do(http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"wrong"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(http.MethodPost, "/login", url.Values{"username": {"nobody"}, "password": {"x"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"correct horse"}, "next": {"//evil.example"}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cookie := s.login("alice", "correct horse")
	var home dashboardPage
	s.get(cookie, "/", &home)
	assert.Equal(t, "alice", home.Username)

	u, err := s.repo.FindUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 2, u.LoginCount)
	assert.NotNil(t, u.LastSeenAt)

	s.createUser("bob", "  padded pw  ", false)
	rec = s.do(http.MethodPost, "/login", url.Values{"username": {"bob"}, "password": {"padded pw"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	s.login("bob", "  padded pw  ")

	rec = s.do(http.MethodPost, "/logout", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionExpires(t *testing.T) {
	s := newServer(t)
	s.createUser("alice", "pw", false)
	cookie := s.login("alice", "pw")

	s.mr.FastForward(2 * time.Hour)
	rec := s.do(http.MethodGet, "/", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddBookFlow(t *testing.T) {
	s := newServer(t)
	s.createUser("alice", "pw", false)
	cookie := s.login("alice", "pw")

	s.post(cookie, "/add_book", url.Values{"title": {"Go"}, "author": {"Pike"}, "isbn": {"111"}}, "/view_books")

	var page booksPage
	s.get(cookie, "/view_books", &page)
	require.Len(t, page.Books, 1)
	assert.Equal(t, "Go", page.Books[0].Title)
	assert.True(t, page.Books[0].Available)
	assert.Equal(t, []session.Flash{{Level: session.FlashSuccess, Text: `Book "Go" added.`}}, page.Messages)

	// messages are shown once
	s.get(cookie, "/view_books", &page)
	assert.Empty(t, page.Messages)

	s.post(cookie, "/add_book", url.Values{"title": {""}, "author": {""}}, "/add_book")
	var form messages
	s.get(cookie, "/add_book", &form)
	assert.Equal(t, []session.Flash{{Level: session.FlashError, Text: "Title is required. Author is required."}}, form.Messages)

	s.post(cookie, "/add_book", url.Values{"title": {"Dup"}, "author": {"X"}, "isbn": {"111"}}, "/add_book")
	s.get(cookie, "/add_book", &form)
	assert.Equal(t, []session.Flash{{Level: session.FlashError, Text: `ISBN "111" is already in use.`}}, form.Messages)
}

func TestFlashTextsShowNamesVerbatim(t *testing.T) {
	s := newServer(t)
	s.createUser("alice", "pw", false)
	cookie := s.login("alice", "pw")

	title := `Say "Hi" \ Ünïcode`
	s.post(cookie, "/add_book", url.Values{"title": {title}, "author": {"Anon"}}, "/view_books")
	s.post(cookie, "/add_member", url.Values{"name": {`Zoë "Z"`}}, "/view_members")

	var form struct {
		messages
		Members []models.Member `json:"members"`
		Books   []models.Book   `json:"books"`
	}
	s.get(cookie, "/issue_book", &form)
	require.Len(t, form.Members, 1)
	require.Len(t, form.Books, 1)
	assert.Equal(t, []session.Flash{
		{Level: session.FlashSuccess, Text: `Book "Say "Hi" \ Ünïcode" added.`},
		{Level: session.FlashSuccess, Text: `Member "Zoë "Z"" added.`},
	}, form.Messages)

	s.post(cookie, "/issue_book", url.Values{"member": {fmt.Sprint(form.Members[0].ID)}, "book": {fmt.Sprint(form.Books[0].ID)}}, "/view_issued")
	var issued issuedPage
	s.get(cookie, "/view_issued", &issued)
	require.Len(t, issued.Issued, 1)
	assert.Equal(t, []session.Flash{
		{Level: session.FlashSuccess, Text: `Issued "Say "Hi" \ Ünïcode" to Zoë "Z".`},
	}, issued.Messages)
	s.post(cookie, fmt.Sprintf("/return_book/%d", issued.Issued[0].ID), nil, "/view_issued")

	s.get(cookie, "/view_issued", &issued)
	assert.Equal(t, []session.Flash{
		{Level: session.FlashSuccess, Text: `Book "Say "Hi" \ Ünïcode" returned.`},
	}, issued.Messages)
}

func TestViewBooksSearchAndPaging(t *testing.T) {
	s := newServer(t)
	s.createUser("alice", "pw", false)
	cookie := s.login("alice", "pw")

	s.post(cookie, "/add_book", url.Values{"title": {"The Hobbit"}, "author": {"J.R.R. Tolkien"}}, "/view_books")
	for i := 1; i <= 12; i++ {
		s.post(cookie, "/add_book", url.Values{"title": {fmt.Sprintf("Book %02d", i)}, "author": {"Anon"}}, "/view_books")
	}

	var page booksPage
	s.get(cookie, "/view_books?q=tol", &page)
	require.Len(t, page.Books, 1)
	assert.Equal(t, "The Hobbit", page.Books[0].Title)
	assert.Equal(t, "tol", page.Q)

	s.get(cookie, "/view_books?page=3", &page)
	assert.Len(t, page.Books, 1)
	assert.Equal(t, 3, page.Page.Number)
	assert.False(t, page.Page.HasNext)

	s.get(cookie, "/view_books?page=abc", &page)
	assert.Equal(t, 1, page.Page.Number)
	assert.Len(t, page.Books, 6)

	s.get(cookie, "/view_books?page=99", &page)
	assert.Equal(t, 3, page.Page.Number)
}

func TestEditAndDeleteBook(t *testing.T) {
	s := newServer(t)
	s.createUser("alice", "pw", false)
	cookie := s.login("alice", "pw")
	s.post(cookie, "/add_book", url.Values{"title": {"Go"}, "author": {"Pike"}}, "/view_books")

	var page booksPage
	s.get(cookie, "/view_books", &page)
	require.Len(t, page.Books, 1)
	id := page.Books[0].ID

	var edit struct {
		Book models.Book `json:"book"`
	}
	s.get(cookie, fmt.Sprintf("/edit_book/%d", id), &edit)
	assert.Equal(t, "Go", edit.Book.Title)

	s.post(cookie, fmt.Sprintf("/edit_book/%d", id),
		url.Values{"title": {"Go 2"}, "author": {"Pike"}, "available": {"on"}, "quantity": {"3"}}, "/view_books")
	s.get(cookie, "/view_books", &page)
	require.Len(t, page.Books, 1)
	assert.Equal(t, "Go 2", page.Books[0].Title)
	assert.Equal(t, 3, page.Books[0].Quantity)
	assert.True(t, page.Books[0].Available)
	assert.Equal(t, []session.Flash{{Level: session.FlashSuccess, Text: "Book updated."}}, page.Messages)

	s.post(cookie, fmt.Sprintf("/edit_book/%d", id),
		url.Values{"title": {strings.Repeat("x", 101)}, "author": {"Pike"}}, fmt.Sprintf("/edit_book/%d", id))

	rec := s.do(http.MethodGet, "/edit_book/abc", nil, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/view_books", rec.Header().Get("Location"))

	s.post(cookie, "/edit_book/999", url.Values{"title": {"x"}}, "/view_books")

	s.post(cookie, fmt.Sprintf("/delete_book/%d", id), nil, "/view_books")
	s.get(cookie, "/view_books", &page)
	assert.Empty(t, page.Books)
	require.NotEmpty(t, page.Messages)
	assert.Equal(t, session.Flash{Level: session.FlashSuccess, Text: "Book deleted."}, page.Messages[len(page.Messages)-1])

	s.post(cookie, fmt.Sprintf("/delete_book/%d", id), nil, "/view_books")
	s.get(cookie, "/view_books", &page)
	assert.Equal(t, []session.Flash{{Level: session.FlashError, Text: "Book not found."}}, page.Messages)
}

func TestMembersFlow(t *testing.T) {
	s := newServer(t)
	s.createUser("alice", "pw", false)
	cookie := s.login("alice", "pw")

	s.post(cookie, "/add_member", url.Values{"name": {"Bob"}, "email": {"bob@example.com"}}, "/view_members")
	s.post(cookie, "/add_member", url.Values{"name": {"Ann"}, "phone": {"555"}}, "/view_members")
	s.post(cookie, "/add_member", url.Values{"name": {"Bobby"}, "email": {"bob@example.com"}}, "/add_member")

	var page membersPage
	s.get(cookie, "/view_members", &page)
	require.Len(t, page.Members, 2)
	assert.Equal(t, "Ann", page.Members[0].Name)
	assert.Equal(t, []session.Flash{
		{Level: session.FlashSuccess, Text: `Member "Bob" added.`},
		{Level: session.FlashSuccess, Text: `Member "Ann" added.`},
		{Level: session.FlashError, Text: `Email "bob@example.com" is already in use.`},
	}, page.Messages)

	ann := page.Members[0].ID
	var edit struct {
		Member models.Member `json:"member"`
	}
	s.get(cookie, fmt.Sprintf("/edit_member/%d", ann), &edit)
	assert.Equal(t, "555", edit.Member.Phone)

	s.post(cookie, fmt.Sprintf("/edit_member/%d", ann), url.Values{"name": {"Ann B"}, "phone": {"556"}}, "/view_members")
	s.post(cookie, fmt.Sprintf("/edit_member/%d", ann), url.Values{"name": {"Ann B"}, "email": {strings.Repeat("e", 255)}}, fmt.Sprintf("/edit_member/%d", ann))
	s.post(cookie, fmt.Sprintf("/delete_member/%d", ann), nil, "/view_members")

	s.get(cookie, "/view_members", &page)
	require.Len(t, page.Members, 1)
	assert.Equal(t, "Bob", page.Members[0].Name)
}

func TestIssueAndReturnFlow(t *testing.T) {
	s := newServer(t)
	s.createUser("alice", "pw", false)
	cookie := s.login("alice", "pw")

	s.post(cookie, "/add_member", url.Values{"name": {"Ann"}}, "/view_members")
	s.post(cookie, "/add_book", url.Values{"title": {"Go"}, "author": {"Pike"}}, "/view_books")

	var form struct {
		messages
		Members []models.Member `json:"members"`
		Books   []models.Book   `json:"books"`
	}
	s.get(cookie, "/issue_book", &form)
	require.Len(t, form.Members, 1)
	require.Len(t, form.Books, 1)
	member, book := form.Members[0].ID, form.Books[0].ID
	ids := url.Values{"member": {fmt.Sprint(member)}, "book": {fmt.Sprint(book)}}

	s.post(cookie, "/issue_book", ids, "/view_issued")

	var issued issuedPage
	s.get(cookie, "/view_issued", &issued)
	require.Len(t, issued.Issued, 1)
	rec := issued.Issued[0]
	assert.Nil(t, rec.ReturnDate)
	assert.Equal(t, "Go", rec.Book.Title)
	assert.Equal(t, "Ann", rec.Member.Name)
	assert.True(t, rec.IssueDate.Equal(library.Today(today)))
	assert.Contains(t, issued.Messages, session.Flash{Level: session.FlashSuccess, Text: `Issued "Go" to Ann.`})

	var home dashboardPage
	s.get(cookie, "/", &home)
	assert.Equal(t, library.Summary{TotalBooks: 1, AvailableBooks: 0, TotalMembers: 1, Issued: 1}, home.Stats)

	// a second issue of the same book is refused and creates nothing
	s.post(cookie, "/issue_book", ids, "/issue_book")
	s.get(cookie, "/view_issued", &issued)
	assert.Len(t, issued.Issued, 1)
	assert.Equal(t, []session.Flash{{Level: session.FlashError, Text: `Book "Go" is currently not available.`}}, issued.Messages)

	s.post(cookie, "/issue_book", url.Values{"member": {"x"}, "book": {fmt.Sprint(book)}}, "/issue_book")

	s.post(cookie, fmt.Sprintf("/return_book/%d", rec.ID), nil, "/view_issued")
	s.post(cookie, fmt.Sprintf("/return_book/%d", rec.ID), nil, "/view_issued")
	s.get(cookie, "/view_issued", &issued)
	require.Len(t, issued.Issued, 1)
	require.NotNil(t, issued.Issued[0].ReturnDate)
	assert.Equal(t, []session.Flash{
		{Level: session.FlashError, Text: "Member not found."},
		{Level: session.FlashSuccess, Text: `Book "Go" returned.`},
		{Level: session.FlashInfo, Text: "Book already returned."},
	}, issued.Messages)

	var books booksPage
	s.get(cookie, "/view_books", &books)
	require.Len(t, books.Books, 1)
	assert.True(t, books.Books[0].Available)

	s.post(cookie, "/return_book/999", nil, "/view_issued")
}

func TestStaffDashboard(t *testing.T) {
	s := newServer(t)
	s.createUser("alice", "pw", false)
	s.createUser("bob", "pw", true)
	s.createUser("carol", "pw", false)

	rec := s.do(http.MethodGet, "/staff_dashboard", nil, s.login("alice", "pw"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var out struct {
		Stats  library.Summary      `json:"stats"`
		Issued []models.IssueRecord `json:"issued"`
	}
	s.get(s.login("bob", "pw"), "/staff_dashboard", &out)
	assert.Empty(t, out.Issued)

	// listed in STAFF_USERS
	s.get(s.login("carol", "pw"), "/staff_dashboard", &out)
}
