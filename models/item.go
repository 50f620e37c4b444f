// models/item.go
package models

import "time"

const ItemTable = "implementos"

// Item (implemento) is a borrowable asset with finite stock.
// Quantities move only through the ledger methods in db; the invariant
// 0 <= cantidad_disponible <= cantidad_total must hold at all times.
type Item struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"column:nombre;size:200;uniqueIndex;not null" json:"name"`
	TotalQty     int       `gorm:"column:cantidad_total;not null;default:0" json:"totalQuantity"`
	AvailableQty int       `gorm:"column:cantidad_disponible;not null;default:0" json:"availableQuantity"`
	ImageURL     string    `gorm:"column:imagen_url;size:500" json:"imageUrl,omitempty"`
	Active       bool      `gorm:"column:activo;not null;default:true" json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Item) TableName() string { return ItemTable }
