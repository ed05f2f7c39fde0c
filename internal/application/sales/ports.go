package sales

import (
	"context"
	"time"

	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
)

// SaleTxRunner ejecuta una función dentro de una transacción que incluye repos de inventario y ventas.
type SaleTxRunner interface {
	RunSale(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// ReceiptLine línea de venta enriquecida con los datos del producto para el comprobante.
type ReceiptLine struct {
	entity.SaleLineItem
	Code        string
	ProductName string
}

// ReceiptGenerator puerto de salida para renderizar el comprobante de una venta.
type ReceiptGenerator interface {
	GenerateSaleReceipt(ctx context.Context, sale *entity.Sale, lines []ReceiptLine) ([]byte, error)
}

// Rules reglas de negocio configurables de las ventas.
type Rules struct {
	AnnulmentWindow      time.Duration
	MinAnnulReasonLength int
}

// DefaultRules ventana de 24 horas y motivo de al menos 10 caracteres.
func DefaultRules() Rules {
	return Rules{AnnulmentWindow: 24 * time.Hour, MinAnnulReasonLength: 10}
}

// SaleEventPayload contenido de los eventos sale.created y sale.annulled.
type SaleEventPayload struct {
	SaleID        string          `json:"sale_id"`
	SaleNumber    string          `json:"sale_number"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	Total         string          `json:"total"`
	UserID        string          `json:"user_id"`
	Reason        string          `json:"reason,omitempty"`
	Items         []SaleEventItem `json:"items"`
}

// SaleEventItem cantidad movida por producto.
type SaleEventItem struct {
	ProductID string `json:"product_id"`
	Quantity  string `json:"quantity"`
}

func eventPayload(s *entity.Sale) SaleEventPayload {
	items := make([]SaleEventItem, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, SaleEventItem{ProductID: it.ProductID, Quantity: it.Quantity.String()})
	}
	return SaleEventPayload{
		SaleID:        s.ID,
		SaleNumber:    s.SaleNumber,
		Status:        s.Status,
		PaymentMethod: s.PaymentMethod,
		Total:         s.Total.StringFixed(2),
		UserID:        s.UserID,
		Reason:        s.AnnulReason,
		Items:         items,
	}
}
