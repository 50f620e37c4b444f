package models

import "time"

const ProgramTable = "programas"

// Program is the academic program a borrower belongs to.
type Program struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:nombre;size:200;uniqueIndex;not null" json:"name"`
	Active    bool      `gorm:"column:activo;not null;default:true" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Program) TableName() string { return ProgramTable }
