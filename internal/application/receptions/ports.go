package receptions

import (
	"context"

	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
)

// ReceptionTxRunner ejecuta una función dentro de una transacción que incluye repos de inventario y recepciones.
type ReceptionTxRunner interface {
	RunReception(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		receptionRepo repository.ReceptionRepository,
	) error) error
}

// ProcessedPayload contenido del evento reception.processed.
type ProcessedPayload struct {
	ReceptionID   string `json:"reception_id"`
	InvoiceNumber string `json:"invoice_number"`
	SupplierID    string `json:"supplier_id"`
	Total         string `json:"total"`
	Lines         int    `json:"lines"`
	ProcessedBy   string `json:"processed_by"`
}
