package entity

import (
	"time"

	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/shopspring/decimal"
)

// Estados de la recepción: pending es el único no terminal.
const (
	ReceptionPending   = "pending"
	ReceptionProcessed = "processed"
	ReceptionCancelled = "cancelled"
)

// Reception representa la recepción de mercancía de un proveedor.
// (InvoiceNumber, SupplierID) es único.
type Reception struct {
	ID            string
	InvoiceNumber string
	SupplierID    string
	UserID        string
	ReceptionDate time.Time
	Total         decimal.Decimal
	Notes         string
	Status        string
	CreatedAt     time.Time
	ProcessedAt   *time.Time
	ProcessedBy   string
	CancelledAt   *time.Time
	CancelledBy   string
	Items         []ReceptionLineItem
}

// ReceptionLineItem línea de recepción.
type ReceptionLineItem struct {
	ID          string
	ReceptionID string
	ProductID   string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// IsPending indica si la recepción aún admite transiciones.
func (r *Reception) IsPending() bool {
	return r.Status == ReceptionPending
}

// MarkProcessed transición pending -> processed.
func (r *Reception) MarkProcessed(now time.Time, userID string) error {
	if !r.IsPending() {
		return domain.ErrNotFoundOrAlreadyProcessed
	}
	at := now
	r.Status = ReceptionProcessed
	r.ProcessedAt = &at
	r.ProcessedBy = userID
	return nil
}

// MarkCancelled transición pending -> cancelled (sin efecto en stock).
func (r *Reception) MarkCancelled(now time.Time, userID string) error {
	if !r.IsPending() {
		return domain.ErrReceptionNotPending
	}
	at := now
	r.Status = ReceptionCancelled
	r.CancelledAt = &at
	r.CancelledBy = userID
	return nil
}
