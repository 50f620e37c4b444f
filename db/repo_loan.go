// db/repo_loan.go
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"uniloans/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Loan lifecycle. Every transition is one transaction built around a
// conditional UPDATE on estado, so a racing sweeper or second admin
// gets RowsAffected == 0 instead of a double transition. Stock moves
// happen in the same transaction as the state flip.

func (r *Repo) FindLoanByID(ctx context.Context, id string) (*models.Loan, error) {
	var l models.Loan
	if err := r.DB.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, mapFindErr(err)
	}
	return &l, nil
}

// CreateLoanRequest registers a self-service request. No stock is
// reserved until an admin approves it.
func (r *Repo) CreateLoanRequest(ctx context.Context, userID, itemName string) (*models.Loan, error) {
	var loan *models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, "id = ? AND activo = ?", userID, true).Error; err != nil {
			return mapFindErr(err)
		}

		var it models.Item
		if err := tx.Where("nombre = ? AND activo = ?", itemName, true).First(&it).Error; err != nil {
			return mapFindErr(err)
		}
		if it.AvailableQty <= 0 {
			return ErrOutOfStock
		}

		var n int64
		if err := tx.Model(&models.Loan{}).
			Where("usuario_id = ? AND implemento = ? AND estado = ?", userID, it.Name, models.LoanRequested).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateRequest
		}

		l := &models.Loan{
			ID:           uuid.NewString(),
			UserID:       userID,
			ImplementoID: it.ID,
			Implemento:   it.Name,
			RequestDate:  time.Now().UTC(),
			State:        models.LoanRequested,
		}
		if err := tx.Create(l).Error; err != nil {
			return err
		}
		loan = l
		return nil
	})
	return loan, err
}

// ApproveLoan flips solicitado -> activo, reserving one unit at the
// instant of transition (availability is re-checked, never cached).
// maxDuration comes from the system configuration.
func (r *Repo) ApproveLoan(ctx context.Context, loanID string, maxDuration time.Duration) (*models.Loan, error) {
	var loan *models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l, err := loadLoan(tx, loanID)
		if err != nil {
			return err
		}

		// state first: a loan that already left solicitado is an
		// invalid transition even when its item has no stock left
		now := time.Now().UTC()
		estEnd := now.Add(maxDuration)
		res := tx.Model(&models.Loan{}).
			Where("id = ? AND estado = ?", loanID, models.LoanRequested).
			Updates(map[string]any{
				"estado":            models.LoanActive,
				"hora_inicio":       now,
				"hora_fin_estimada": estEnd,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}

		itemID, err := r.resolveLoanItem(tx, l)
		if err != nil {
			return err
		}
		if _, err := r.reserveTx(tx, itemID); err != nil {
			return err
		}
		loan, err = loadLoan(tx, loanID)
		return err
	})
	return loan, err
}

// RejectLoan flips solicitado -> rechazado. No stock was held, so none
// is released.
func (r *Repo) RejectLoan(ctx context.Context, loanID, reason string) (*models.Loan, error) {
	if reason == "" {
		reason = "Solicitud rechazada por el administrador"
	}
	res := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Where("id = ? AND estado = ?", loanID, models.LoanRequested).
		Updates(map[string]any{
			"estado":         models.LoanRejected,
			"motivo_rechazo": reason,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindLoanByID(ctx, loanID); err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}
	return r.FindLoanByID(ctx, loanID)
}

// CreateDirectLoan registers a walk-in loan: straight to activo with
// the unit reserved in the same transaction.
func (r *Repo) CreateDirectLoan(ctx context.Context, userID, itemID string, maxDuration time.Duration) (*models.Loan, error) {
	var loan *models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, "id = ? AND activo = ?", userID, true).Error; err != nil {
			return mapFindErr(err)
		}

		it, err := r.reserveTx(tx, itemID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		estEnd := now.Add(maxDuration)
		l := &models.Loan{
			ID:           uuid.NewString(),
			UserID:       userID,
			ImplementoID: it.ID,
			Implemento:   it.Name,
			RequestDate:  now,
			StartTime:    &now,
			EstEndTime:   &estEnd,
			State:        models.LoanActive,
		}
		if err := tx.Create(l).Error; err != nil {
			return err
		}
		loan = l
		return nil
	})
	return loan, err
}

// FinishLoan flips activo/pendiente -> devuelto and releases exactly
// one unit. A loan the sweeper already moved to pendiente finishes the
// same way; a loan already devuelto reports ErrInvalidTransition.
func (r *Repo) FinishLoan(ctx context.Context, loanID string) (*models.Loan, error) {
	var loan *models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l, err := loadLoan(tx, loanID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		var hours float64
		if l.StartTime != nil {
			hours = now.Sub(*l.StartTime).Hours()
		}
		res := tx.Model(&models.Loan{}).
			Where("id = ? AND estado IN ?", loanID, []string{models.LoanActive, models.LoanPending}).
			Updates(map[string]any{
				"estado":        models.LoanReturned,
				"hora_fin_real": now,
				"horas_totales": hours,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}

		itemID, err := r.resolveLoanItem(tx, l)
		if err != nil {
			return err
		}
		if _, err := r.releaseTx(tx, itemID); err != nil {
			return err
		}

		// denormalized display aggregate; stats queries stay authoritative
		if err := tx.Model(&models.User{}).
			Where("id = ?", l.UserID).
			Update("horas_totales_acumuladas", gorm.Expr("horas_totales_acumuladas + ?", hours)).Error; err != nil {
			return err
		}

		loan, err = loadLoan(tx, loanID)
		return err
	})
	return loan, err
}

// MarkLoanLost flips activo/pendiente -> perdido. The unit is NOT
// released; lost stock stays off the books until an admin resets the
// quantities.
func (r *Repo) MarkLoanLost(ctx context.Context, loanID string) (*models.Loan, error) {
	res := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Where("id = ? AND estado IN ?", loanID, []string{models.LoanActive, models.LoanPending}).
		Update("estado", models.LoanLost)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindLoanByID(ctx, loanID); err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}
	return r.FindLoanByID(ctx, loanID)
}

// ExtendLoan records an extension on an open loan. Flag and motive
// only; hora_fin_estimada does not move.
func (r *Repo) ExtendLoan(ctx context.Context, loanID, reason string) (*models.Loan, error) {
	res := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Where("id = ? AND estado IN ?", loanID, []string{models.LoanActive, models.LoanPending}).
		Updates(map[string]any{
			"extendido":        true,
			"motivo_extension": reason,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindLoanByID(ctx, loanID); err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}
	return r.FindLoanByID(ctx, loanID)
}

// SweepResult summarizes one overdue sweep.
type SweepResult struct {
	Updated int      `json:"prestamosActualizados"`
	Details []string `json:"detalles"`
}

// SweepOverdue moves every overdue activo loan to pendiente. Purely
// informational: no stock moves. Running it twice back to back is a
// no-op the second time.
func (r *Repo) SweepOverdue(ctx context.Context) (*SweepResult, error) {
	now := time.Now().UTC()

	var due []models.Loan
	if err := r.DB.WithContext(ctx).
		Where("estado = ? AND hora_fin_estimada < ?", models.LoanActive, now).
		Find(&due).Error; err != nil {
		return nil, err
	}

	result := &SweepResult{}
	for _, l := range due {
		res := r.DB.WithContext(ctx).Model(&models.Loan{}).
			Where("id = ? AND estado = ?", l.ID, models.LoanActive).
			Update("estado", models.LoanPending)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			result.Updated++
			result.Details = append(result.Details,
				fmt.Sprintf("prestamo %s (%s) vencido a las %s", l.ID, l.Implemento, l.EstEndTime.Format(time.RFC3339)))
		}
	}
	return result, nil
}

// resolveLoanItem returns the item id a loan's stock movements should
// target. The stored id wins; rows written before the id column
// existed fall back to the name link.
func (r *Repo) resolveLoanItem(tx *gorm.DB, l *models.Loan) (string, error) {
	if l.ImplementoID != "" {
		return l.ImplementoID, nil
	}
	var it models.Item
	if err := tx.Where("nombre = ?", l.Implemento).First(&it).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return it.ID, nil
}

func loadLoan(tx *gorm.DB, id string) (*models.Loan, error) {
	var l models.Loan
	if err := tx.First(&l, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}
