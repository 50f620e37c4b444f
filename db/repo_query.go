// db/repo_query.go
package db

import (
	"context"
	"strings"
	"time"

	"uniloans/models"

	"gorm.io/gorm"
)

// Read-only filtered/paginated views over loans and users. These feed
// the admin dashboard and exports; they never mutate state.

type LoanFilters struct {
	Search   string // matches borrower name, cedula or item name
	From     string // fecha_prestamo >= From (YYYY-MM-DD)
	To       string // fecha_prestamo <= To
	UserID   string
	Item     string
	State    string
	OrderBy  string // one of the whitelisted columns
	Order    string // ASC / DESC
	Page     int
	PageSize int
}

// LoanRow is a loan joined with its borrower for list views.
type LoanRow struct {
	models.Loan
	FullName    string `json:"fullName"`
	Cedula      string `json:"cedula"`
	Phone       string `json:"phone,omitempty"`
	ProgramName string `json:"programName,omitempty"`
}

type Page struct {
	Current    int   `json:"current"`
	PerPage    int   `json:"perPage"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type PagedLoans struct {
	Loans []LoanRow `json:"loans"`
	Page  Page      `json:"pagination"`
}

var loanOrderColumns = map[string]string{
	"fecha_prestamo": "p.fecha_prestamo",
	"hora_inicio":    "p.hora_inicio",
	"implemento":     "p.implemento",
	"estado":         "p.estado",
}

func (r *Repo) ListLoans(ctx context.Context, f LoanFilters) (*PagedLoans, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = 15
	}

	base := r.DB.WithContext(ctx).
		Table(models.LoanTable + " p").
		Joins("LEFT JOIN " + models.UserTable + " u ON u.id = p.usuario_id").
		Joins("LEFT JOIN " + models.ProgramTable + " prog ON prog.id = u.programa_id")

	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		base = base.Where(
			"LOWER(u.nombre_completo) LIKE ? OR LOWER(u.numero_cedula) LIKE ? OR LOWER(p.implemento) LIKE ?",
			like, like, like)
	}
	if f.From != "" {
		base = base.Where("p.fecha_prestamo >= ?", f.From)
	}
	if f.To != "" {
		base = base.Where("p.fecha_prestamo <= ?", f.To)
	}
	if f.UserID != "" {
		base = base.Where("p.usuario_id = ?", f.UserID)
	}
	if f.Item != "" {
		base = base.Where("p.implemento LIKE ?", "%"+f.Item+"%")
	}
	if f.State != "" {
		base = base.Where("p.estado = ?", f.State)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	col, ok := loanOrderColumns[f.OrderBy]
	if !ok {
		col = "p.fecha_prestamo"
	}
	dir := "DESC"
	if strings.EqualFold(f.Order, "ASC") {
		dir = "ASC"
	}

	var rows []LoanRow
	if err := base.
		Select("p.*, u.nombre_completo AS full_name, u.numero_cedula AS cedula, u.numero_telefono AS phone, prog.nombre AS program_name").
		Order(col + " " + dir).
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(f.PageSize) - 1) / int64(f.PageSize))
	return &PagedLoans{
		Loans: rows,
		Page:  Page{Current: f.Page, PerPage: f.PageSize, Total: total, TotalPages: totalPages},
	}, nil
}

func (r *Repo) ListLoansByUser(ctx context.Context, userID string) ([]models.Loan, error) {
	var ls []models.Loan
	err := r.DB.WithContext(ctx).
		Where("usuario_id = ?", userID).
		Order("fecha_prestamo DESC").
		Find(&ls).Error
	return ls, err
}

func (r *Repo) listLoansInState(ctx context.Context, state string) ([]LoanRow, error) {
	var rows []LoanRow
	err := r.DB.WithContext(ctx).
		Table(models.LoanTable+" p").
		Select("p.*, u.nombre_completo AS full_name, u.numero_cedula AS cedula, u.numero_telefono AS phone, prog.nombre AS program_name").
		Joins("INNER JOIN "+models.UserTable+" u ON u.id = p.usuario_id").
		Joins("LEFT JOIN "+models.ProgramTable+" prog ON prog.id = u.programa_id").
		Where("p.estado = ?", state).
		Order("p.fecha_prestamo DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *Repo) ListActiveLoans(ctx context.Context) ([]LoanRow, error) {
	return r.listLoansInState(ctx, models.LoanActive)
}

// ListPendingLoans returns overdue loans still holding stock.
func (r *Repo) ListPendingLoans(ctx context.Context) ([]LoanRow, error) {
	return r.listLoansInState(ctx, models.LoanPending)
}

// ListPendingRequests returns requests waiting for an admin decision,
// newest first.
func (r *Repo) ListPendingRequests(ctx context.Context) ([]LoanRow, error) {
	var rows []LoanRow
	err := r.DB.WithContext(ctx).
		Table(models.LoanTable+" p").
		Select("p.*, u.nombre_completo AS full_name, u.numero_cedula AS cedula, u.numero_telefono AS phone, prog.nombre AS program_name").
		Joins("INNER JOIN "+models.UserTable+" u ON u.id = p.usuario_id").
		Joins("LEFT JOIN "+models.ProgramTable+" prog ON prog.id = u.programa_id").
		Where("p.estado = ?", models.LoanRequested).
		Order("p.fecha_registro DESC").
		Scan(&rows).Error
	return rows, err
}

// ListExpiringLoans returns active loans whose estimated end is within
// the warning window, soonest first.
func (r *Repo) ListExpiringLoans(ctx context.Context, within time.Duration) ([]LoanRow, error) {
	now := time.Now().UTC()
	var rows []LoanRow
	err := r.DB.WithContext(ctx).
		Table(models.LoanTable+" p").
		Select("p.*, u.nombre_completo AS full_name, u.numero_cedula AS cedula, u.numero_telefono AS phone, prog.nombre AS program_name").
		Joins("INNER JOIN "+models.UserTable+" u ON u.id = p.usuario_id").
		Joins("LEFT JOIN "+models.ProgramTable+" prog ON prog.id = u.programa_id").
		Where("p.estado = ? AND p.hora_fin_estimada > ? AND p.hora_fin_estimada <= ?",
			models.LoanActive, now, now.Add(within)).
		Order("p.hora_fin_estimada ASC").
		Scan(&rows).Error
	return rows, err
}

// UserStats is the consolidated per-user aggregation, computed on read.
type UserStats struct {
	TotalLoans     int64   `json:"totalLoans"`
	ActiveLoans    int64   `json:"activeLoans"`
	ReturnedLoans  int64   `json:"returnedLoans"`
	PendingLoans   int64   `json:"pendingLoans"`
	LostLoans      int64   `json:"lostLoans"`
	RequestedLoans int64   `json:"requestedLoans"`
	RejectedLoans  int64   `json:"rejectedLoans"`
	RealHours      float64 `json:"realHours"`
	AccumHours     float64 `json:"accumulatedHours"`
	DistinctItems  int64   `json:"distinctItems"`
}

func (r *Repo) GetUserStats(ctx context.Context, userID string) (*UserStats, error) {
	if _, err := r.FindUserByID(ctx, userID); err != nil {
		return nil, err
	}
	var s UserStats
	err := r.DB.WithContext(ctx).
		Table(models.LoanTable).
		Select(`
			COUNT(id) AS total_loans,
			COUNT(CASE WHEN estado = 'activo' THEN 1 END) AS active_loans,
			COUNT(CASE WHEN estado = 'devuelto' THEN 1 END) AS returned_loans,
			COUNT(CASE WHEN estado = 'pendiente' THEN 1 END) AS pending_loans,
			COUNT(CASE WHEN estado = 'perdido' THEN 1 END) AS lost_loans,
			COUNT(CASE WHEN estado = 'solicitado' THEN 1 END) AS requested_loans,
			COUNT(CASE WHEN estado = 'rechazado' THEN 1 END) AS rejected_loans,
			COALESCE(SUM(CASE WHEN estado = 'devuelto' THEN horas_totales ELSE 0 END), 0) AS real_hours,
			COALESCE(SUM(horas_totales), 0) AS accum_hours,
			COUNT(DISTINCT implemento) AS distinct_items`).
		Where("usuario_id = ?", userID).
		Scan(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Users list for the admin screen.

type ListUsersResult struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
}

func (r *Repo) ListUsers(ctx context.Context, q string, page, size int) (ListUsersResult, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.User{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(nombre_completo) LIKE ? OR LOWER(numero_cedula) LIKE ?", like, like)
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return ListUsersResult{}, err
	}

	var users []models.User
	if err := tx.
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&users).Error; err != nil {
		return ListUsersResult{}, err
	}
	return ListUsersResult{Users: users, Total: total}, nil
}
