package models

import "time"

const UserTable = "usuarios"

// User is a borrower or an administrator. Cedula (national ID number)
// identifies end users at the counter; email+password exist for
// accounts that can log into the admin dashboard.
type User struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	FullName  string `gorm:"column:nombre_completo;size:255;not null" json:"fullName"`
	Cedula    string `gorm:"column:numero_cedula;size:30;uniqueIndex;not null" json:"cedula"`
	Phone     string `gorm:"column:numero_telefono;size:30" json:"phone,omitempty"`
	ProgramID string `gorm:"column:programa_id;type:uuid;index" json:"programId,omitempty"`

	Email        string `gorm:"size:255;index" json:"email,omitempty"`
	PasswordHash string `gorm:"column:password_hash;size:100" json:"-"`
	IsAdmin      bool   `gorm:"column:es_admin;not null;default:false" json:"isAdmin"`
	Active       bool   `gorm:"column:activo;not null;default:true" json:"active"`

	// Denormalized display aggregate; the authoritative numbers come
	// from the stats aggregation over prestamos.
	AccumHours float64 `gorm:"column:horas_totales_acumuladas;default:0" json:"accumulatedHours"`

	LastSeenAt *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (User) TableName() string { return UserTable }
