package routes

import (
	"net/http"
	"time"

	"uniloans/app"
	"uniloans/controllers"
	"uniloans/realtime"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	s := controllers.GetSrv(a)
	authCtl := controllers.NewAuthController(s)
	itemCtl := controllers.NewItemController(s)
	loanCtl := controllers.NewLoanController(s)
	userCtl := controllers.NewUserController(s)
	cfgCtl := controllers.NewConfigController(s)
	progCtl := controllers.NewProgramController(s)

	authMW := app.AuthRequired(a.Config)
	adminMW := app.AdminOnly()
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)

	r.GET("/health", func(c *app.Ctx) { c.JSON(http.StatusOK, app.H{"ok": true}) })

	// Realtime fan-out for the dashboards.
	r.GET("/ws", func(c *app.Ctx) {
		if err := realtime.ServeWS(a.Hub, c.Writer, c.Request); err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		}
	})

	// ------------------------------
	// Auth
	// ------------------------------
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", authCtl.Login)
		auth.POST("/refresh", authCtl.Refresh)
		auth.POST("/logout", authCtl.Logout)
		auth.GET("/whoami", authMW, seenMW, authCtl.Whoami)
	}

	// ------------------------------
	// Inventory
	// ------------------------------
	items := r.Group("/api/implementos", authMW, seenMW)
	{
		items.GET("", itemCtl.ListItems)
		items.GET("/disponibles", itemCtl.ListAvailable)
		items.GET("/:id", itemCtl.GetItem)
	}
	itemsAdmin := r.Group("/api/implementos", authMW, adminMW)
	{
		itemsAdmin.POST("", itemCtl.CreateItem)
		itemsAdmin.PUT("/:id", itemCtl.UpdateItem)
		itemsAdmin.PUT("/:id/cantidades", itemCtl.SetQuantities)
		itemsAdmin.DELETE("/:id", itemCtl.DeleteItem)
	}

	// ------------------------------
	// Loans
	// ------------------------------
	loans := r.Group("/api/prestamos", authMW, seenMW)
	{
		loans.POST("/solicitudes", loanCtl.RequestLoan)
		loans.GET("/mios", loanCtl.ListMine)
	}
	loansAdmin := r.Group("/api/prestamos", authMW, adminMW)
	{
		loansAdmin.GET("", loanCtl.Search) // ?q=&desde=&hasta=&usuarioId=&implemento=&estado=&page=&size=
		loansAdmin.POST("", loanCtl.CreateDirect)
		loansAdmin.GET("/solicitudes", loanCtl.ListRequests)
		loansAdmin.GET("/activos", loanCtl.ListActive)
		loansAdmin.GET("/pendientes", loanCtl.ListPending)
		loansAdmin.GET("/por-vencer", loanCtl.ListExpiring)
		loansAdmin.GET("/:id", loanCtl.GetLoan)
		loansAdmin.POST("/:id/aprobar", loanCtl.Approve)
		loansAdmin.POST("/:id/rechazar", loanCtl.Reject)
		loansAdmin.POST("/:id/finalizar", loanCtl.Finish)
		loansAdmin.POST("/:id/perdido", loanCtl.MarkLost)
		loansAdmin.POST("/:id/extender", loanCtl.Extend)
	}

	// ------------------------------
	// Users (admin)
	// ------------------------------
	users := r.Group("/api/usuarios", authMW, adminMW)
	{
		users.GET("", userCtl.ListUsers) // ?q=&page=&size=
		users.GET("/:id", userCtl.GetUser)
		users.GET("/:id/estadisticas", userCtl.GetStats)
		users.POST("", userCtl.CreateUser)
		users.PUT("/:id/activo", userCtl.SetActive)
		users.PUT("/:id/admin", userCtl.SetAdmin)
	}

	// ------------------------------
	// Catalog + system config
	// ------------------------------
	programs := r.Group("/api/programas", authMW)
	{
		programs.GET("", progCtl.List)
		programs.POST("", adminMW, progCtl.Create)
	}
	cfg := r.Group("/api/configuracion", authMW, adminMW)
	{
		cfg.GET("", cfgCtl.List)
		cfg.GET("/:clave", cfgCtl.Get)
		cfg.PUT("/:clave", cfgCtl.Set)
	}
}
