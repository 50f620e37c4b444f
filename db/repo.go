package db

import (
	"context"
	"errors"

	"uniloans/models"

	"gorm.io/gorm"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// Users

func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *Repo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, mapFindErr(err)
	}
	return &u, nil
}

func (r *Repo) FindUserByCedula(ctx context.Context, cedula string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("numero_cedula = ?", cedula).First(&u).Error; err != nil {
		return nil, mapFindErr(err)
	}
	return &u, nil
}

func (r *Repo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error; err != nil {
		return nil, mapFindErr(err)
	}
	return &u, nil
}

func (r *Repo) TouchUserSeen(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

func (r *Repo) SetUserActive(ctx context.Context, userID string, active bool) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("activo", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) SetUserAdmin(ctx context.Context, userID string, isAdmin bool) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("es_admin", isAdmin)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Programs

func (r *Repo) CreateProgram(ctx context.Context, p *models.Program) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *Repo) ListPrograms(ctx context.Context) ([]models.Program, error) {
	var ps []models.Program
	err := r.DB.WithContext(ctx).Where("activo = ?", true).Order("nombre").Find(&ps).Error
	return ps, err
}

func mapFindErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
