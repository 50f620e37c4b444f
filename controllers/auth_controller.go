// controllers/auth_controller.go
package controllers

import (
	"net/http"

	"uniloans/app"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	u, err := ac.Repo.FindUserByEmail(c.Request.Context(), in.Email)
	if err != nil || !u.Active || u.PasswordHash == "" {
		c.JSON(http.StatusUnauthorized, app.H{"error": "invalid credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "invalid credentials"})
		return
	}

	access, err := app.NewAccessToken(ac.Cfg.JWTSecret, u.ID, u.IsAdmin, ac.Cfg.AccessTTL)
	if err != nil {
		ac.fail(c, err)
		return
	}
	refresh := uuid.NewString()
	if err := ac.Tokens.Create(c.Request.Context(), refresh, u.ID, u.IsAdmin); err != nil {
		ac.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, app.H{
		"accessToken":  access,
		"refreshToken": refresh,
		"user": app.H{
			"id":       u.ID,
			"fullName": u.FullName,
			"email":    u.Email,
			"isAdmin":  u.IsAdmin,
		},
	})
}

// POST /api/auth/refresh rotates the refresh token and mints a new
// access token. An unknown or expired token is a 401.
func (ac *AuthController) Refresh(c *gin.Context) {
	var in struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	next := uuid.NewString()
	sess, err := ac.Tokens.Rotate(c.Request.Context(), in.RefreshToken, next)
	if err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "invalid refresh token"})
		return
	}
	access, err := app.NewAccessToken(ac.Cfg.JWTSecret, sess.UserID, sess.IsAdmin, ac.Cfg.AccessTTL)
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"accessToken": access, "refreshToken": next})
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	var in struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = c.ShouldBindJSON(&in)
	if in.RefreshToken != "" {
		_ = ac.Tokens.Delete(c.Request.Context(), in.RefreshToken)
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/auth/whoami
func (ac *AuthController) Whoami(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	u, err := ac.Repo.FindUserByID(c.Request.Context(), uid)
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}
