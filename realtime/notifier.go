// realtime/notifier.go
package realtime

// Event names pushed to dashboards. The strings are the wire contract
// the frontend already listens on.
const (
	EventLoanRequested   = "nueva_solicitud_prestamo"
	EventLoanApproved    = "solicitud_aprobada"
	EventLoanRejected    = "solicitud_rechazada"
	EventLoanCreated     = "nuevo_prestamo"
	EventLoanFinished    = "prestamo_finalizado"
	EventLoanUpdated     = "prestamo_actualizado"
	EventLoansSwept      = "prestamos_actualizados"
	EventItemCreated     = "implemento_creado"
	EventItemUpdated     = "implemento_actualizado"
	EventItemDeleted     = "implemento_eliminado"
	EventInventory       = "inventario_actualizado"
	EventLoanSearch      = "busqueda_prestamos"
)

// Notifier is the best-effort push channel for domain events. Delivery
// reaches observers connected at emit time only; reconnecting clients
// pull current state over HTTP. Implementations must preserve the
// emission order of events per connection.
type Notifier interface {
	// Broadcast sends the event to every connected client.
	Broadcast(event string, payload any)
	// BroadcastRoom sends the event to clients joined to room.
	BroadcastRoom(room, event string, payload any)
}

// LoanRoom names the per-loan subscription channel.
func LoanRoom(loanID string) string { return "prestamo_" + loanID }

// NopNotifier discards every event. Used in tests and as a safe
// default when no hub is wired.
type NopNotifier struct{}

func (NopNotifier) Broadcast(string, any)             {}
func (NopNotifier) BroadcastRoom(string, string, any) {}
