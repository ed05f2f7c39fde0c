package sales

import (
	"context"
	"fmt"

	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
)

// ReceiptUseCase genera el comprobante PDF de una venta persistida.
type ReceiptUseCase struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	generator   ReceiptGenerator
}

// NewReceiptUseCase construye el caso de uso inyectando todas sus dependencias.
func NewReceiptUseCase(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	generator ReceiptGenerator,
) *ReceiptUseCase {
	return &ReceiptUseCase{saleRepo: saleRepo, productRepo: productRepo, generator: generator}
}

// DownloadReceipt recupera la venta y sus líneas, las enriquece con el nombre del producto
// y genera el PDF. Una venta anulada se imprime marcada como tal.
//
// Retorna:
//   - (pdfBytes, filename, nil) si todo sale bien.
//   - domain.ErrSaleNotFound    si la venta no existe.
func (uc *ReceiptUseCase) DownloadReceipt(ctx context.Context, saleID string) (pdfBytes []byte, filename string, err error) {
	// ── 1. Cargar venta ───────────────────────────────────────────────────────
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: obtener venta: %w", err)
	}
	if sale == nil {
		return nil, "", domain.ErrSaleNotFound
	}

	// ── 2. Enriquecer líneas con nombre de producto ───────────────────────────
	lines := make([]ReceiptLine, 0, len(sale.Items))
	for _, it := range sale.Items {
		rl := ReceiptLine{SaleLineItem: it, ProductName: "Producto " + it.ProductID}
		if p, pErr := uc.productRepo.GetByID(ctx, it.ProductID); pErr == nil && p != nil {
			rl.Code = p.Code
			rl.ProductName = p.Name
		}
		lines = append(lines, rl)
	}

	// ── 3. Generar PDF ────────────────────────────────────────────────────────
	pdfBytes, err = uc.generator.GenerateSaleReceipt(ctx, sale, lines)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("venta_%s.pdf", sale.SaleNumber), nil
}
