package entity

import (
	"time"

	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/shopspring/decimal"
)

// Estados de la venta.
const (
	SaleStatusActive   = "active"
	SaleStatusAnnulled = "annulled"
)

// Medios de pago aceptados.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
)

// ValidPaymentMethod verifica el medio de pago.
func ValidPaymentMethod(m string) bool {
	return m == PaymentCash || m == PaymentCard || m == PaymentTransfer
}

// Sale representa una venta con sus líneas. Anular es un cambio de estado, nunca un borrado.
type Sale struct {
	ID            string
	SaleNumber    string
	UserID        string
	Total         decimal.Decimal
	PaymentMethod string
	Status        string
	CreatedAt     time.Time
	AnnulledAt    *time.Time
	AnnulledBy    string
	AnnulReason   string
	Items         []SaleLineItem
}

// SaleLineItem línea de venta. Subtotal = Quantity × UnitPrice redondeado a 2 decimales.
type SaleLineItem struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// LineSubtotal calcula el subtotal de una línea redondeado a la precisión monetaria.
func LineSubtotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(2)
}

// CanAnnul verifica si la venta puede anularse en el instante now dada la ventana permitida.
func (s *Sale) CanAnnul(now time.Time, window time.Duration) error {
	if s.Status != SaleStatusActive {
		return domain.ErrAlreadyAnnulled
	}
	if now.Sub(s.CreatedAt) > window {
		return domain.ErrAnnulmentWindowExpired
	}
	return nil
}

// Annul marca la venta como anulada con auditoría (quién, cuándo, por qué).
func (s *Sale) Annul(now time.Time, userID, reason string, window time.Duration) error {
	if err := s.CanAnnul(now, window); err != nil {
		return err
	}
	at := now
	s.Status = SaleStatusAnnulled
	s.AnnulledAt = &at
	s.AnnulledBy = userID
	s.AnnulReason = reason
	return nil
}
