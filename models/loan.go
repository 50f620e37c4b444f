// models/loan.go
package models

import "time"

const LoanTable = "prestamos"

// Loan states as stored in the DB. The strings are the historical
// contract of the prestamos table and the dashboard, so they stay
// in Spanish.
const (
	LoanRequested = "solicitado" // awaiting admin decision, no stock held
	LoanActive    = "activo"     // approved, one unit reserved
	LoanPending   = "pendiente"  // overdue, still holding its unit
	LoanReturned  = "devuelto"   // terminal, unit released
	LoanLost      = "perdido"    // terminal, unit stays off the books
	LoanRejected  = "rechazado"  // terminal, never held a unit
)

// Loan (prestamo) is one borrowing transaction. Rows are append-only
// history: they change state but are never deleted.
//
// Implemento keeps the item name for display and report grouping;
// ImplementoID is the authoritative link used for every ledger call.
type Loan struct {
	ID           string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string `gorm:"column:usuario_id;type:uuid;index;not null" json:"userId"`
	ImplementoID string `gorm:"column:implemento_id;type:uuid;index" json:"itemId"`
	Implemento   string `gorm:"column:implemento;size:200;index;not null" json:"itemName"`

	RequestDate time.Time  `gorm:"column:fecha_prestamo;index;not null" json:"requestDate"`
	StartTime   *time.Time `gorm:"column:hora_inicio" json:"startTime,omitempty"`
	EstEndTime  *time.Time `gorm:"column:hora_fin_estimada;index" json:"estimatedEndTime,omitempty"`
	RealEndTime *time.Time `gorm:"column:hora_fin_real" json:"actualEndTime,omitempty"`
	TotalHours  float64    `gorm:"column:horas_totales;default:0" json:"totalHours"`

	State           string `gorm:"column:estado;size:20;index;not null;default:'solicitado'" json:"state"`
	Extended        bool   `gorm:"column:extendido;not null;default:false" json:"extended"`
	ExtensionReason string `gorm:"column:motivo_extension;size:255" json:"extensionReason,omitempty"`
	RejectionReason string `gorm:"column:motivo_rechazo;size:255" json:"rejectionReason,omitempty"`

	CreatedAt time.Time `gorm:"column:fecha_registro" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:fecha_actualizacion" json:"updatedAt"`
}

func (Loan) TableName() string { return LoanTable }

// loanEdges is the legal transition set. Terminal states have no
// outgoing edges.
var loanEdges = map[string][]string{
	LoanRequested: {LoanActive, LoanRejected},
	LoanActive:    {LoanPending, LoanReturned, LoanLost},
	LoanPending:   {LoanReturned, LoanLost},
}

// CanTransition reports whether a loan in state from may move to state to.
func CanTransition(from, to string) bool {
	for _, next := range loanEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether state has no outgoing transitions.
func IsTerminal(state string) bool { return len(loanEdges[state]) == 0 }

// HoldsStock reports whether a loan in the given state owns one
// reserved inventory unit.
func HoldsStock(state string) bool { return state == LoanActive || state == LoanPending }
