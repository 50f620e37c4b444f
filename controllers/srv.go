// controllers/srv.go
package controllers

import (
	"errors"
	"net/http"

	"uniloans/app"
	"uniloans/db"
	"uniloans/realtime"
	"uniloans/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Srv bundles what every controller needs.
type Srv struct {
	Repo     *db.Repo
	Notifier realtime.Notifier
	Tokens   *session.TokenStore
	Log      *zap.Logger
	Cfg      app.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:     db.NewRepo(a.DB),
		Notifier: a.Hub,
		Tokens:   a.Tokens(),
		Log:      a.Log.Named("http"),
		Cfg:      a.Config,
	}
}

// fail maps repo sentinel errors to HTTP statuses in one place.
func (s *Srv) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
	case errors.Is(err, db.ErrDuplicateRequest),
		errors.Is(err, db.ErrOutOfStock),
		errors.Is(err, db.ErrInvalidTransition):
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
	case errors.Is(err, db.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
	case errors.Is(err, db.ErrInventoryInconsistency):
		// release beyond total means the ledger was corrupted elsewhere
		s.Log.Error("inventory inconsistency", zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
	}
}

// currentUserID reads the id AuthRequired stored in the context.
func currentUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get("userID")
	if !ok {
		return "", false
	}
	uid, _ := v.(string)
	return uid, uid != ""
}
