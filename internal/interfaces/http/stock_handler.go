package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/labstock-api/internal/application/dto"
	appstock "github.com/jhoicas/labstock-api/internal/application/stock"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/allocation"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP del motor de stock (protegido).
type StockHandler struct {
	receive   *appstock.ReceiveLotUseCase
	allocate  *appstock.AllocateUseCase
	adjust    *appstock.AdjustLotUseCase
	lifecycle *appstock.LotLifecycleUseCase
	queries   *appstock.StockQueryUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(
	receive *appstock.ReceiveLotUseCase,
	allocate *appstock.AllocateUseCase,
	adjust *appstock.AdjustLotUseCase,
	lifecycle *appstock.LotLifecycleUseCase,
	queries *appstock.StockQueryUseCase,
) *StockHandler {
	return &StockHandler{receive: receive, allocate: allocate, adjust: adjust, lifecycle: lifecycle, queries: queries}
}

// ReceiveEntry godoc
// @Summary      Registrar recepción de stock (crea lote + movimiento de entrada)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveLotRequest  true  "article_id, initial_quantity, unit_price; fechas y metadatos opcionales"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/entries [post]
func (h *StockHandler) ReceiveEntry(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReceiveLotRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := appstock.ReceiveLotInput{
		CompanyID:       companyID,
		ArticleID:       in.ArticleID,
		InitialQuantity: in.InitialQuantity,
		ExpirationDate:  in.ExpirationDate,
		UnitPrice:       in.UnitPrice,
		LotNumber:       in.LotNumber,
		Supplier:        in.Supplier,
		Comment:         in.Comment,
		Reason:          in.Reason,
		UserID:          userID,
	}
	if in.EntryDate != nil {
		input.EntryDate = *in.EntryDate
	}
	lot, movement, err := h.receive.Receive(c.Context(), input)
	if err != nil {
		return stockError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"lot":      lotToDTO(lot),
		"movement": movementToDTO(movement),
	})
}

// Allocate godoc
// @Summary      Asignar una salida de stock contra lotes (FIFO, FEFO o manual)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AllocateRequest  true  "article_id, policy; quantity para fifo/fefo, selections para manual"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/allocations [post]
func (h *StockHandler) Allocate(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AllocateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	selections := make([]allocation.Selection, 0, len(in.Selections))
	for _, s := range in.Selections {
		selections = append(selections, allocation.Selection{LotID: s.LotID, Quantity: s.Quantity})
	}
	movements, err := h.allocate.Allocate(c.Context(), appstock.AllocateInput{
		CompanyID:  companyID,
		ArticleID:  in.ArticleID,
		Quantity:   in.Quantity,
		Policy:     allocation.Policy(in.Policy),
		Selections: selections,
		Reason:     in.Reason,
		Reference:  in.Reference,
		UserID:     userID,
	})
	if err != nil {
		return stockError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"total":     len(movements),
		"movements": movementsToDTO(movements),
	})
}

// ConsumeRequirements godoc
// @Summary      Consumir los requerimientos agregados de un grupo de exámenes
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConsumeRequirementsRequest  true  "requirements (article_id -> cantidad), policy opcional (default fifo)"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/consume [post]
func (h *StockHandler) ConsumeRequirements(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ConsumeRequirementsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	policy := allocation.Policy(in.Policy)
	if in.Policy == "" {
		policy = allocation.PolicyFIFO // política por defecto del flujo de exámenes
	}
	movements, err := h.allocate.ConsumeRequirements(c.Context(), appstock.ConsumeInput{
		CompanyID:    companyID,
		Requirements: in.Requirements,
		Policy:       policy,
		Reason:       in.Reason,
		Reference:    in.Reference,
		UserID:       userID,
	})
	if err != nil {
		return stockError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"total":     len(movements),
		"movements": movementsToDTO(movements),
	})
}

// AdjustLot godoc
// @Summary      Ajuste administrativo del remanente de un lote (delta con signo)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del lote"
// @Param        body  body  dto.AdjustLotRequest  true  "delta con signo y reason obligatorio"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/lots/{id}/adjust [post]
func (h *StockHandler) AdjustLot(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AdjustLotRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movement, err := h.adjust.Adjust(c.Context(), appstock.AdjustLotInput{
		CompanyID: companyID,
		LotID:     c.Params("id"),
		Delta:     in.Delta,
		Reason:    in.Reason,
		UserID:    userID,
	})
	if err != nil {
		return stockError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"movement": movementToDTO(movement)})
}

// ListLots godoc
// @Summary      Listar lotes de un artículo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del artículo"
// @Param        filter  query  string  false  "available | expired | expiring (vacío = todos)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/articles/{id}/lots [get]
func (h *StockHandler) ListLots(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	articleID := c.Params("id")
	filter := appstock.LotFilter(c.Query("filter"))
	lots, err := h.queries.ListLots(c.Context(), companyID, articleID, filter)
	if err != nil {
		return stockError(c, err)
	}
	out := make([]dto.LotDTO, 0, len(lots))
	for _, l := range lots {
		out = append(out, lotToDTO(l))
	}
	return c.JSON(fiber.Map{"total": len(out), "lots": out})
}

// ListMovements godoc
// @Summary      Listar movimientos de un artículo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del artículo"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/stock/articles/{id}/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	articleID := c.Params("id")
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	page.DefaultPage()
	movements, err := h.queries.ListMovements(c.Context(), companyID, articleID, nil, nil, page.Limit, page.Offset)
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(movements), "movements": movementsToDTO(movements)})
}

// Valuation godoc
// @Summary      Valorización del inventario (por artículo o toda la empresa)
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        article_id  query  string  false  "Vacío = toda la empresa"
// @Success      200  {object}  entity.StockValuation
// @Router       /api/stock/valuation [get]
func (h *StockHandler) Valuation(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	valuation, err := h.queries.Valuation(c.Context(), companyID, c.Query("article_id"))
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(valuation)
}

// SoftDeleteLot godoc
// @Summary      Borrado lógico de un lote vacío y sin actividad reciente
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del lote"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/stock/lots/{id} [delete]
func (h *StockHandler) SoftDeleteLot(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.lifecycle.SoftDelete(c.Context(), companyID, c.Params("id")); err != nil {
		return stockError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HardDeleteLot godoc
// @Summary      Borrado físico de un lote sin movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del lote"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/stock/lots/{id}/hard [delete]
func (h *StockHandler) HardDeleteLot(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.lifecycle.HardDelete(c.Context(), companyID, c.Params("id")); err != nil {
		return stockError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// stockError traduce errores de dominio a códigos HTTP.
func stockError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrLotNotOwned):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrLotQuantityExceeded):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LOT_QUANTITY_EXCEEDED", Message: err.Error()})
	case errors.Is(err, domain.ErrLotNotEmpty):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "LOT_NOT_EMPTY", Message: err.Error()})
	case errors.Is(err, domain.ErrLotHasMovements):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "LOT_HAS_MOVEMENTS", Message: err.Error()})
	case errors.Is(err, domain.ErrRecentActivity):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "RECENT_ACTIVITY", Message: err.Error()})
	case errors.Is(err, domain.ErrTransientStorage):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "TRANSIENT", Message: "reintente la operación"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func lotToDTO(l *entity.Lot) dto.LotDTO {
	return dto.LotDTO{
		ID:                l.ID,
		ArticleID:         l.ArticleID,
		Code:              l.Code,
		InitialQuantity:   l.InitialQuantity,
		RemainingQuantity: l.RemainingQuantity,
		EntryDate:         l.EntryDate,
		ExpirationDate:    l.ExpirationDate,
		UnitPrice:         l.UnitPrice,
		LotNumber:         l.LotNumber,
		Supplier:          l.Supplier,
		Comment:           l.Comment,
	}
}

func movementToDTO(m *entity.Movement) dto.MovementDTO {
	return dto.MovementDTO{
		ID:             m.ID,
		Code:           m.Code,
		StockID:        m.StockID,
		LotID:          m.LotID,
		Type:           m.Type,
		Quantity:       m.Quantity,
		SignedQuantity: m.Signed(),
		UnitPrice:      m.UnitPrice,
		Date:           m.Date,
		Reason:         m.Reason,
		Reference:      m.Reference,
	}
}

func movementsToDTO(movements []*entity.Movement) []dto.MovementDTO {
	out := make([]dto.MovementDTO, 0, len(movements))
	for _, m := range movements {
		out = append(out, movementToDTO(m))
	}
	return out
}
