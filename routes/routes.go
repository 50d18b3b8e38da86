package routes

import (
	"net/http"

	"librarydesk/app"
	"librarydesk/controllers"
	"librarydesk/library"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App, opts ...library.CirculationOption) {
	// 控制器与依赖
	s := controllers.GetSrv(a, opts...)
	authCtl := controllers.NewAuthController(s)
	bookCtl := controllers.NewBookController(s)
	memberCtl := controllers.NewMemberController(s)
	issueCtl := controllers.NewIssueController(s)
	dashCtl := controllers.NewDashboardController(s)

	// 复用的中间件
	authMW := app.AuthRequired(s.AppSess, s.Repo, a.Config.StaffUsers)
	staffMW := app.StaffOnly()
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, a.Config.SeenThrottle)

	// ------------------------------
	// 公开
	// ------------------------------
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(http.StatusOK, app.H{"ok": true}) })
	r.POST("/login", authCtl.Login)
	r.POST("/logout", authCtl.Logout)

	// ------------------------------
	// 已登录
	// ------------------------------
	desk := r.Group("", authMW, seenMW)
	{
		desk.GET("/", dashCtl.Home)
		desk.GET("/whoami", authCtl.WhoAmI)

		desk.GET("/add_book", bookCtl.AddBookForm)
		desk.POST("/add_book", bookCtl.AddBook)
		desk.GET("/view_books", bookCtl.ViewBooks)
		desk.GET("/edit_book/:id", bookCtl.EditBookForm)
		desk.POST("/edit_book/:id", bookCtl.EditBook)
		desk.POST("/delete_book/:id", bookCtl.DeleteBook)

		desk.GET("/add_member", memberCtl.AddMemberForm)
		desk.POST("/add_member", memberCtl.AddMember)
		desk.GET("/view_members", memberCtl.ViewMembers)
		desk.GET("/edit_member/:id", memberCtl.EditMemberForm)
		desk.POST("/edit_member/:id", memberCtl.EditMember)
		desk.POST("/delete_member/:id", memberCtl.DeleteMember)

		desk.GET("/issue_book", issueCtl.IssueForm)
		desk.POST("/issue_book", issueCtl.IssueBook)
		desk.GET("/view_issued", issueCtl.ViewIssued)
		desk.POST("/return_book/:id", issueCtl.ReturnBook)
	}

	// ------------------------------
	// 仅员工
	// ------------------------------
	staff := desk.Group("", staffMW)
	{
		staff.GET("/staff_dashboard", dashCtl.StaffDashboard)
	}
}
