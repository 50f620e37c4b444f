// controllers/config_controller.go
package controllers

import (
	"net/http"

	"uniloans/app"

	"github.com/gin-gonic/gin"
)

type ConfigController struct{ *Srv }

func NewConfigController(s *Srv) *ConfigController { return &ConfigController{Srv: s} }

// GET /api/configuracion
func (cc *ConfigController) List(c *gin.Context) {
	entries, err := cc.Repo.ListConfig(c.Request.Context())
	if err != nil {
		cc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"configuracion": entries})
}

// GET /api/configuracion/:clave
func (cc *ConfigController) Get(c *gin.Context) {
	v, err := cc.Repo.GetConfigValue(c.Request.Context(), c.Param("clave"))
	if err != nil {
		cc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"clave": c.Param("clave"), "valor": v})
}

// PUT /api/configuracion/:clave
func (cc *ConfigController) Set(c *gin.Context) {
	var in struct {
		Value string `json:"valor" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	entry, err := cc.Repo.SetConfigValue(c.Request.Context(), c.Param("clave"), in.Value)
	if err != nil {
		cc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"configuracion": entry})
}
