package models

import "time"

const ConfigTable = "configuracion_sistema"

// Config key for the maximum loan duration in hours, read when a
// request is approved.
const ConfigKeyMaxLoanHours = "tiempo_maximo_prestamo_horas"

// ConfigEntry is one row of the DB-backed system configuration.
type ConfigEntry struct {
	Key       string    `gorm:"column:clave;primaryKey;size:100" json:"key"`
	Value     string    `gorm:"column:valor;size:255;not null" json:"value"`
	UpdatedAt time.Time `gorm:"column:fecha_actualizacion" json:"updatedAt"`
}

func (ConfigEntry) TableName() string { return ConfigTable }
