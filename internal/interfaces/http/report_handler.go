package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/retail-backoffice/internal/application/reports"
	"github.com/jhoicas/retail-backoffice/pkg/logger"
)

// ReportHandler reportes de ventas y tablero (solo admin).
type ReportHandler struct {
	reports   *reports.ReportsUseCase
	dashboard *reports.DashboardUseCase
	log       *logger.Logger
}

// NewReportHandler construye el handler.
func NewReportHandler(reportsUC *reports.ReportsUseCase, dashboard *reports.DashboardUseCase, log *logger.Logger) *ReportHandler {
	return &ReportHandler{reports: reportsUC, dashboard: dashboard, log: log}
}

// SalesSummary godoc
// @Summary      Resumen de ventas del período
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  false  "YYYY-MM-DD (por defecto inicio de mes)"
// @Param        end_date    query  string  false  "YYYY-MM-DD (por defecto hoy)"
// @Success      200  {object}  dto.SalesSummaryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/sales-summary [get]
func (h *ReportHandler) SalesSummary(c *fiber.Ctx) error {
	out, err := h.reports.SalesSummary(c.UserContext(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ByPaymentMethod godoc
// @Summary      Ventas por medio de pago
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Success      200  {array}  dto.PaymentMethodDTO
// @Router       /api/reports/payment-methods [get]
func (h *ReportHandler) ByPaymentMethod(c *fiber.Ctx) error {
	out, err := h.reports.ByPaymentMethod(c.UserContext(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// TopProducts godoc
// @Summary      Productos más vendidos
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Param        limit       query  int     false  "N (por defecto 10)"
// @Success      200  {array}  dto.TopProductDTO
// @Router       /api/reports/top-products [get]
func (h *ReportHandler) TopProducts(c *fiber.Ctx) error {
	out, err := h.reports.TopProducts(c.UserContext(), c.Query("start_date"), c.Query("end_date"), c.QueryInt("limit", 10))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Dashboard godoc
// @Summary      KPIs del día y del mes
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Router       /api/reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	out, err := h.dashboard.GetSummary(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
