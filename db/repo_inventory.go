// db/repo_inventory.go
package db

import (
	"context"
	"errors"

	"uniloans/models"

	"gorm.io/gorm"
)

// Inventory ledger. Reserve and release are single conditional UPDATEs
// so the store serializes concurrent callers on the same row; two
// concurrent reserves of the last unit get exactly one success.

func (r *Repo) CreateItem(ctx context.Context, it *models.Item) error {
	if it.TotalQty < 0 || it.AvailableQty < 0 || it.AvailableQty > it.TotalQty {
		return ErrInvalidQuantity
	}
	return r.DB.WithContext(ctx).Create(it).Error
}

func (r *Repo) FindItemByID(ctx context.Context, id string) (*models.Item, error) {
	var it models.Item
	if err := r.DB.WithContext(ctx).First(&it, "id = ?", id).Error; err != nil {
		return nil, mapFindErr(err)
	}
	return &it, nil
}

func (r *Repo) FindItemByName(ctx context.Context, name string) (*models.Item, error) {
	var it models.Item
	if err := r.DB.WithContext(ctx).
		Where("nombre = ? AND activo = ?", name, true).
		First(&it).Error; err != nil {
		return nil, mapFindErr(err)
	}
	return &it, nil
}

func (r *Repo) ListItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	err := r.DB.WithContext(ctx).Order("nombre").Find(&items).Error
	return items, err
}

// ListAvailableItems returns active items with at least one free unit.
func (r *Repo) ListAvailableItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	err := r.DB.WithContext(ctx).
		Where("activo = ? AND cantidad_disponible > 0", true).
		Order("nombre").
		Find(&items).Error
	return items, err
}

// ReserveItem atomically takes one unit. Returns the item after the
// decrement, ErrOutOfStock when availability is zero, ErrNotFound when
// the id does not reference an active item.
func (r *Repo) ReserveItem(ctx context.Context, itemID string) (*models.Item, error) {
	return r.reserveTx(r.DB.WithContext(ctx), itemID)
}

func (r *Repo) reserveTx(tx *gorm.DB, itemID string) (*models.Item, error) {
	res := tx.Model(&models.Item{}).
		Where("id = ? AND activo = ? AND cantidad_disponible > 0", itemID, true).
		Update("cantidad_disponible", gorm.Expr("cantidad_disponible - 1"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// lost the race or truly empty; look once to tell which
		var it models.Item
		if err := tx.First(&it, "id = ? AND activo = ?", itemID, true).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return nil, ErrOutOfStock
	}
	var it models.Item
	if err := tx.First(&it, "id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

// ReleaseItem atomically returns one unit, clamped to the total. A
// release that would exceed cantidad_total is not applied and reports
// ErrInventoryInconsistency.
func (r *Repo) ReleaseItem(ctx context.Context, itemID string) (*models.Item, error) {
	return r.releaseTx(r.DB.WithContext(ctx), itemID)
}

func (r *Repo) releaseTx(tx *gorm.DB, itemID string) (*models.Item, error) {
	res := tx.Model(&models.Item{}).
		Where("id = ? AND cantidad_disponible < cantidad_total", itemID).
		Update("cantidad_disponible", gorm.Expr("cantidad_disponible + 1"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var it models.Item
		if err := tx.First(&it, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return nil, ErrInventoryInconsistency
	}
	var it models.Item
	if err := tx.First(&it, "id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

// SetQuantities is the administrative override of both counters.
func (r *Repo) SetQuantities(ctx context.Context, itemID string, total, available int) (*models.Item, error) {
	if total < 0 || available < 0 || available > total {
		return nil, ErrInvalidQuantity
	}
	res := r.DB.WithContext(ctx).Model(&models.Item{}).
		Where("id = ?", itemID).
		Updates(map[string]any{
			"cantidad_total":      total,
			"cantidad_disponible": available,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindItemByID(ctx, itemID)
}

// UpdateItem edits name/image/active and optionally resets quantities.
func (r *Repo) UpdateItem(ctx context.Context, it *models.Item) (*models.Item, error) {
	if it.TotalQty < 0 || it.AvailableQty < 0 || it.AvailableQty > it.TotalQty {
		return nil, ErrInvalidQuantity
	}
	res := r.DB.WithContext(ctx).Model(&models.Item{}).
		Where("id = ?", it.ID).
		Updates(map[string]any{
			"nombre":              it.Name,
			"cantidad_total":      it.TotalQty,
			"cantidad_disponible": it.AvailableQty,
			"imagen_url":          it.ImageURL,
			"activo":              it.Active,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindItemByID(ctx, it.ID)
}

// SoftDeleteItem marks the item inactive. Rows stay because historical
// loans reference them.
func (r *Repo) SoftDeleteItem(ctx context.Context, itemID string) (*models.Item, error) {
	res := r.DB.WithContext(ctx).Model(&models.Item{}).
		Where("id = ? AND activo = ?", itemID, true).
		Update("activo", false)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindItemByID(ctx, itemID)
}
