// controllers/program_controller.go
package controllers

import (
	"net/http"

	"uniloans/app"
	"uniloans/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProgramController struct{ *Srv }

func NewProgramController(s *Srv) *ProgramController { return &ProgramController{Srv: s} }

// GET /api/programas
func (pc *ProgramController) List(c *gin.Context) {
	programs, err := pc.Repo.ListPrograms(c.Request.Context())
	if err != nil {
		pc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"programas": programs})
}

// POST /api/programas
func (pc *ProgramController) Create(c *gin.Context) {
	var in struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	p := &models.Program{ID: uuid.NewString(), Name: in.Name, Active: true}
	if err := pc.Repo.CreateProgram(c.Request.Context(), p); err != nil {
		pc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"programa": p})
}
