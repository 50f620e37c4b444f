// app/bootstrap.go
package app

import (
	"context"
	"errors"

	"uniloans/db"
	"uniloans/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// BootstrapFirstAdmin seeds one admin account from the environment so
// a fresh deployment can log into the dashboard. No-op when the
// variables are unset or the account already exists.
func BootstrapFirstAdmin(ctx context.Context, cfg Config, repo *db.Repo, log *zap.Logger) {
	if cfg.BootstrapAdminCedula == "" || cfg.BootstrapAdminEmail == "" || cfg.BootstrapAdminPassword == "" {
		return
	}
	if _, err := repo.FindUserByCedula(ctx, cfg.BootstrapAdminCedula); err == nil {
		return
	} else if !errors.Is(err, db.ErrNotFound) {
		log.Error("bootstrap admin lookup", zap.Error(err))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.BootstrapAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("bootstrap admin hash", zap.Error(err))
		return
	}
	u := &models.User{
		ID:           uuid.NewString(),
		FullName:     cfg.BootstrapAdminName,
		Cedula:       cfg.BootstrapAdminCedula,
		Email:        cfg.BootstrapAdminEmail,
		PasswordHash: string(hash),
		IsAdmin:      true,
		Active:       true,
	}
	if err := repo.CreateUser(ctx, u); err != nil {
		log.Error("bootstrap admin create", zap.Error(err))
		return
	}
	log.Info("bootstrap admin created", zap.String("cedula", cfg.BootstrapAdminCedula))
}
