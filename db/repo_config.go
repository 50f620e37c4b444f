package db

import (
	"context"
	"strconv"
	"time"

	"uniloans/models"
)

// DB-backed system configuration (configuracion_sistema).

func (r *Repo) ListConfig(ctx context.Context) ([]models.ConfigEntry, error) {
	var cs []models.ConfigEntry
	err := r.DB.WithContext(ctx).Order("clave").Find(&cs).Error
	return cs, err
}

func (r *Repo) GetConfigValue(ctx context.Context, key string) (string, error) {
	var c models.ConfigEntry
	if err := r.DB.WithContext(ctx).First(&c, "clave = ?", key).Error; err != nil {
		return "", mapFindErr(err)
	}
	return c.Value, nil
}

func (r *Repo) SetConfigValue(ctx context.Context, key, value string) (*models.ConfigEntry, error) {
	res := r.DB.WithContext(ctx).Model(&models.ConfigEntry{}).
		Where("clave = ?", key).
		Update("valor", value)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	var c models.ConfigEntry
	if err := r.DB.WithContext(ctx).First(&c, "clave = ?", key).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// MaxLoanDuration reads tiempo_maximo_prestamo_horas, defaulting to
// 2 h when the key is missing or unparseable.
func (r *Repo) MaxLoanDuration(ctx context.Context) time.Duration {
	const def = 2 * time.Hour
	v, err := r.GetConfigValue(ctx, models.ConfigKeyMaxLoanHours)
	if err != nil {
		return def
	}
	hours, err := strconv.ParseFloat(v, 64)
	if err != nil || hours <= 0 {
		return def
	}
	return time.Duration(hours * float64(time.Hour))
}
