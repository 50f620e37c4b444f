// controllers/loan_controller.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"uniloans/app"
	"uniloans/db"
	"uniloans/models"
	"uniloans/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LoanController struct{ *Srv }

func NewLoanController(s *Srv) *LoanController { return &LoanController{Srv: s} }

// pushInventory broadcasts the current numbers of the item a loan
// touched. Best effort, after the mutation event.
func (lc *LoanController) pushInventory(c *gin.Context, itemID string) {
	if itemID == "" {
		return
	}
	if it, err := lc.Repo.FindItemByID(c.Request.Context(), itemID); err == nil {
		lc.Notifier.Broadcast(realtime.EventInventory, it)
	}
}

func (lc *LoanController) pushLoan(event string, l *models.Loan) {
	lc.Notifier.Broadcast(event, l)
	lc.Notifier.BroadcastRoom(realtime.LoanRoom(l.ID), event, l)
}

// POST /api/prestamos/solicitudes: a borrower asks for an item by
// name. No stock moves until an admin approves.
func (lc *LoanController) RequestLoan(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	var in struct {
		ItemName string `json:"itemName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	loan, err := lc.Repo.CreateLoanRequest(c.Request.Context(), uid, in.ItemName)
	if err != nil {
		lc.fail(c, err)
		return
	}
	lc.Notifier.Broadcast(realtime.EventLoanRequested, loan)
	c.JSON(http.StatusCreated, app.H{"prestamo": loan})
}

// GET /api/prestamos/solicitudes: pending requests, newest first.
func (lc *LoanController) ListRequests(c *gin.Context) {
	rows, err := lc.Repo.ListPendingRequests(c.Request.Context())
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"solicitudes": rows})
}

// POST /api/prestamos/:id/aprobar
func (lc *LoanController) Approve(c *gin.Context) {
	ctx := c.Request.Context()
	loan, err := lc.Repo.ApproveLoan(ctx, c.Param("id"), lc.Repo.MaxLoanDuration(ctx))
	if err != nil {
		lc.fail(c, err)
		return
	}
	lc.pushLoan(realtime.EventLoanApproved, loan)
	lc.pushInventory(c, loan.ImplementoID)
	c.JSON(http.StatusOK, app.H{"prestamo": loan})
}

// POST /api/prestamos/:id/rechazar
func (lc *LoanController) Reject(c *gin.Context) {
	var in struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&in)

	loan, err := lc.Repo.RejectLoan(c.Request.Context(), c.Param("id"), in.Reason)
	if err != nil {
		lc.fail(c, err)
		return
	}
	lc.pushLoan(realtime.EventLoanRejected, loan)
	c.JSON(http.StatusOK, app.H{"prestamo": loan})
}

// POST /api/prestamos: admin walk-in loan. The borrower is looked up
// by cedula and created on the fly when unknown.
func (lc *LoanController) CreateDirect(c *gin.Context) {
	var in struct {
		Cedula    string `json:"cedula" binding:"required"`
		FullName  string `json:"fullName"`
		Phone     string `json:"phone"`
		ProgramID string `json:"programId"`
		ItemID    string `json:"itemId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	u, err := lc.Repo.FindUserByCedula(ctx, in.Cedula)
	if errors.Is(err, db.ErrNotFound) {
		if in.FullName == "" {
			c.JSON(http.StatusBadRequest, app.H{"error": "fullName required for a new borrower"})
			return
		}
		u = &models.User{
			ID:        uuid.NewString(),
			FullName:  in.FullName,
			Cedula:    in.Cedula,
			Phone:     in.Phone,
			ProgramID: in.ProgramID,
			Active:    true,
		}
		if err := lc.Repo.CreateUser(ctx, u); err != nil {
			lc.fail(c, err)
			return
		}
	} else if err != nil {
		lc.fail(c, err)
		return
	}

	loan, err := lc.Repo.CreateDirectLoan(ctx, u.ID, in.ItemID, lc.Repo.MaxLoanDuration(ctx))
	if err != nil {
		lc.fail(c, err)
		return
	}
	lc.pushLoan(realtime.EventLoanCreated, loan)
	lc.pushInventory(c, loan.ImplementoID)
	c.JSON(http.StatusCreated, app.H{"prestamo": loan})
}

// POST /api/prestamos/:id/finalizar
func (lc *LoanController) Finish(c *gin.Context) {
	loan, err := lc.Repo.FinishLoan(c.Request.Context(), c.Param("id"))
	if err != nil {
		lc.fail(c, err)
		return
	}
	lc.pushLoan(realtime.EventLoanFinished, loan)
	lc.pushInventory(c, loan.ImplementoID)
	c.JSON(http.StatusOK, app.H{"prestamo": loan})
}

// POST /api/prestamos/:id/perdido: the unit stays out of stock.
func (lc *LoanController) MarkLost(c *gin.Context) {
	loan, err := lc.Repo.MarkLoanLost(c.Request.Context(), c.Param("id"))
	if err != nil {
		lc.fail(c, err)
		return
	}
	lc.pushLoan(realtime.EventLoanUpdated, loan)
	c.JSON(http.StatusOK, app.H{"prestamo": loan})
}

// POST /api/prestamos/:id/extender
func (lc *LoanController) Extend(c *gin.Context) {
	var in struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	loan, err := lc.Repo.ExtendLoan(c.Request.Context(), c.Param("id"), in.Reason)
	if err != nil {
		lc.fail(c, err)
		return
	}
	lc.pushLoan(realtime.EventLoanUpdated, loan)
	c.JSON(http.StatusOK, app.H{"prestamo": loan})
}

// GET /api/prestamos: filtered, paginated search for the dashboard.
func (lc *LoanController) Search(c *gin.Context) {
	f := db.LoanFilters{
		Search:  c.Query("q"),
		From:    c.Query("desde"),
		To:      c.Query("hasta"),
		UserID:  c.Query("usuarioId"),
		Item:    c.Query("implemento"),
		State:   c.Query("estado"),
		OrderBy: c.DefaultQuery("ordenarPor", "fecha_prestamo"),
		Order:   c.DefaultQuery("orden", "DESC"),
	}
	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.PageSize, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := lc.Repo.ListLoans(c.Request.Context(), f)
	if err != nil {
		lc.fail(c, err)
		return
	}
	lc.Notifier.Broadcast(realtime.EventLoanSearch, app.H{
		"filtros":    f,
		"resultados": res.Page.Total,
	})
	c.JSON(http.StatusOK, res)
}

// GET /api/prestamos/activos
func (lc *LoanController) ListActive(c *gin.Context) {
	rows, err := lc.Repo.ListActiveLoans(c.Request.Context())
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"prestamos": rows})
}

// GET /api/prestamos/pendientes: overdue loans awaiting return.
func (lc *LoanController) ListPending(c *gin.Context) {
	rows, err := lc.Repo.ListPendingLoans(c.Request.Context())
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"prestamos": rows})
}

// GET /api/prestamos/por-vencer?minutos=30
func (lc *LoanController) ListExpiring(c *gin.Context) {
	mins, _ := strconv.Atoi(c.DefaultQuery("minutos", "30"))
	if mins <= 0 {
		mins = 30
	}
	rows, err := lc.Repo.ListExpiringLoans(c.Request.Context(), time.Duration(mins)*time.Minute)
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"prestamos": rows})
}

// GET /api/prestamos/mios: the caller's own history.
func (lc *LoanController) ListMine(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	loans, err := lc.Repo.ListLoansByUser(c.Request.Context(), uid)
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"prestamos": loans})
}

// GET /api/prestamos/:id
func (lc *LoanController) GetLoan(c *gin.Context) {
	loan, err := lc.Repo.FindLoanByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"prestamo": loan})
}
