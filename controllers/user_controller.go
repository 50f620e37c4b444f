// controllers/user_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"uniloans/app"
	"uniloans/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserController struct{ *Srv }

func NewUserController(s *Srv) *UserController { return &UserController{Srv: s} }

// GET /api/usuarios?q=&page=&size=
func (uc *UserController) ListUsers(c *gin.Context) {
	q := c.Query("q")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := uc.Repo.ListUsers(c.Request.Context(), q, page, size)
	if err != nil {
		uc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"total": res.Total, "usuarios": res.Users})
}

// GET /api/usuarios/:id
func (uc *UserController) GetUser(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid uuid"})
		return
	}
	u, err := uc.Repo.FindUserByID(c.Request.Context(), id)
	if err != nil {
		uc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"usuario": u})
}

// GET /api/usuarios/:id/estadisticas: aggregated from prestamos on read.
func (uc *UserController) GetStats(c *gin.Context) {
	stats, err := uc.Repo.GetUserStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		uc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"estadisticas": stats})
}

// POST /api/usuarios: register a borrower; email+password only for
// accounts that log into the dashboard.
func (uc *UserController) CreateUser(c *gin.Context) {
	var in struct {
		FullName  string `json:"fullName" binding:"required"`
		Cedula    string `json:"cedula" binding:"required"`
		Phone     string `json:"phone"`
		ProgramID string `json:"programId"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		IsAdmin   bool   `json:"isAdmin"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if in.IsAdmin && (in.Email == "" || in.Password == "") {
		c.JSON(http.StatusBadRequest, app.H{"error": "admin accounts need email and password"})
		return
	}

	u := &models.User{
		ID:        uuid.NewString(),
		FullName:  in.FullName,
		Cedula:    in.Cedula,
		Phone:     in.Phone,
		ProgramID: in.ProgramID,
		Email:     in.Email,
		IsAdmin:   in.IsAdmin,
		Active:    true,
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			uc.fail(c, err)
			return
		}
		u.PasswordHash = string(hash)
	}
	if err := uc.Repo.CreateUser(c.Request.Context(), u); err != nil {
		uc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"usuario": u})
}

// PUT /api/usuarios/:id/admin grants or revokes the dashboard role.
func (uc *UserController) SetAdmin(c *gin.Context) {
	var in struct {
		IsAdmin *bool `json:"isAdmin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	id := c.Param("id")
	if uid, ok := currentUserID(c); ok && uid == id && !*in.IsAdmin {
		c.JSON(http.StatusBadRequest, app.H{"error": "cannot revoke your own admin role"})
		return
	}
	if err := uc.Repo.SetUserAdmin(c.Request.Context(), id, *in.IsAdmin); err != nil {
		uc.fail(c, err)
		return
	}
	if !*in.IsAdmin {
		// sessions minted with the old role die with it
		_ = uc.Tokens.RevokeAllForUser(c.Request.Context(), id)
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// PUT /api/usuarios/:id/activo: deactivation also kills every session.
func (uc *UserController) SetActive(c *gin.Context) {
	var in struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	id := c.Param("id")
	if err := uc.Repo.SetUserActive(c.Request.Context(), id, *in.Active); err != nil {
		uc.fail(c, err)
		return
	}
	if !*in.Active {
		_ = uc.Tokens.RevokeAllForUser(c.Request.Context(), id)
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
