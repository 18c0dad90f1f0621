package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/labstock-api/internal/application/dto"
	appstock "github.com/jhoicas/labstock-api/internal/application/stock"
)

// AlertHandler expone la evaluación de alertas de stock (protegido).
type AlertHandler struct {
	alerts *appstock.AlertUseCase
}

// NewAlertHandler construye el handler.
func NewAlertHandler(alerts *appstock.AlertUseCase) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// Evaluate godoc
// @Summary      Reporte de alertas de stock
// @Description  Deriva stock crítico, lotes por vencer, vencidos y sobrestock
//
//	del estado actual. Cálculo puro: sin cambios de estado, dos
//	llamadas devuelven lo mismo.
//
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  entity.AlertsReport
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/stock/alerts [get]
func (h *AlertHandler) Evaluate(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	report, err := h.alerts.Evaluate(c.Context(), companyID)
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(report)
}
