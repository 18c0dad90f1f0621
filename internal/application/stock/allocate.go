package stock

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/allocation"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

// AllocateUseCase resuelve salidas de stock contra lotes bajo una política
// (FIFO, FEFO o manual) de forma transaccional: bloquea la fila agregada y
// los lotes candidatos (SELECT FOR UPDATE), revalida disponibilidad bajo el
// bloqueo, debita, asienta un movimiento por lote tocado y recalcula el
// agregado. Todo o nada: cualquier fallo revierte la transacción completa.
type AllocateUseCase struct {
	txRunner    TxRunner
	articleRepo repository.ArticleRepository
	codes       CodeGenerator
}

// NewAllocateUseCase construye el caso de uso.
func NewAllocateUseCase(txRunner TxRunner, articleRepo repository.ArticleRepository, codes CodeGenerator) *AllocateUseCase {
	return &AllocateUseCase{txRunner: txRunner, articleRepo: articleRepo, codes: codes}
}

// AllocateInput entrada para una asignación.
// Para FIFO/FEFO: Quantity > 0. Para MANUAL: Selections no vacío, cada una con
// cantidad > 0; Quantity se ignora (la suma la definen las selecciones).
type AllocateInput struct {
	CompanyID  string
	ArticleID  string
	Quantity   decimal.Decimal
	Policy     allocation.Policy
	Selections []allocation.Selection
	Reason     string
	Reference  string // referencia externa (ej. solicitud de examen)
	UserID     string
	Date       time.Time // cero = ahora
}

// Allocate ejecuta la asignación y devuelve los movimientos creados, en el
// orden determinista de la política (o el orden del llamador para manual).
func (uc *AllocateUseCase) Allocate(ctx context.Context, input AllocateInput) ([]*entity.Movement, error) {
	if input.CompanyID == "" || input.ArticleID == "" {
		return nil, domain.ErrInvalidInput
	}
	if _, err := allocation.ParsePolicy(string(input.Policy)); err != nil {
		return nil, err
	}
	if input.Policy == allocation.PolicyManual {
		if len(input.Selections) == 0 {
			return nil, domain.ErrInvalidInput
		}
		for _, sel := range input.Selections {
			if sel.LotID == "" {
				return nil, domain.ErrInvalidInput
			}
			if !sel.Quantity.IsPositive() {
				return nil, domain.ErrInvalidQuantity
			}
		}
	} else if !input.Quantity.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}

	// Validar que el artículo exista y pertenezca a la empresa
	article, err := uc.articleRepo.GetByID(input.ArticleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, domain.ErrNotFound
	}
	if article.CompanyID != input.CompanyID {
		return nil, domain.ErrForbidden
	}

	at := input.Date
	if at.IsZero() {
		at = time.Now()
	}

	var movements []*entity.Movement
	err = uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		stockRepo repository.StockRepository,
		movRepo repository.MovementRepository,
	) error {
		movements, err = uc.allocateInTx(lotRepo, stockRepo, movRepo, input, at)
		return err
	})
	if err != nil {
		return nil, err
	}
	return movements, nil
}

// allocateInTx es el cuerpo de la asignación dentro de una transacción ya
// abierta. Lo comparte Allocate con ConsumeRequirements.
func (uc *AllocateUseCase) allocateInTx(
	lotRepo repository.LotRepository,
	stockRepo repository.StockRepository,
	movRepo repository.MovementRepository,
	input AllocateInput,
	at time.Time,
) ([]*entity.Movement, error) {
	// Bloquear primero la fila agregada: serializa asignaciones concurrentes
	// del mismo artículo antes de tocar lotes.
	stk, err := lockStock(stockRepo, input.CompanyID, input.ArticleID, at)
	if err != nil {
		return nil, err
	}

	var plan []allocation.Consumption
	if input.Policy == allocation.PolicyManual {
		ids := make([]string, 0, len(input.Selections))
		for _, sel := range input.Selections {
			ids = append(ids, sel.LotID)
		}
		lots, err := lotRepo.LockByIDs(input.CompanyID, ids)
		if err != nil {
			return nil, err
		}
		// Cada lote referido debe existir y ser del mismo artículo
		if len(lots) != len(uniqueIDs(ids)) {
			return nil, domain.ErrLotNotOwned
		}
		for _, l := range lots {
			if l.ArticleID != input.ArticleID {
				return nil, domain.ErrLotNotOwned
			}
		}
		plan, err = allocation.PlanManual(lots, input.Selections)
		if err != nil {
			return nil, err
		}
	} else {
		lots, err := lotRepo.LockForArticle(input.CompanyID, input.ArticleID)
		if err != nil {
			return nil, err
		}
		if input.Policy == allocation.PolicyFEFO {
			allocation.SortFEFO(lots)
		} else {
			allocation.SortFIFO(lots)
		}
		plan, err = allocation.Plan(lots, input.Quantity)
		if err != nil {
			return nil, err
		}
	}

	movements := make([]*entity.Movement, 0, len(plan))
	for _, c := range plan {
		c.Lot.RemainingQuantity = c.Lot.RemainingQuantity.Sub(c.Quantity)
		if err := lotRepo.UpdateRemaining(c.Lot.ID, c.Lot.RemainingQuantity); err != nil {
			return nil, err
		}
		lotID := c.Lot.ID
		mov := &entity.Movement{
			ID:        uuid.New().String(),
			CompanyID: input.CompanyID,
			Code:      uc.codes.MovementCode(at),
			StockID:   stk.ID,
			LotID:     &lotID,
			Type:      entity.MovementTypeExit,
			Quantity:  c.Quantity,
			UnitPrice: c.Lot.UnitPrice,
			Date:      at,
			Reason:    input.Reason,
			Reference: input.Reference,
			CreatedAt: at,
			CreatedBy: input.UserID,
		}
		if err := movRepo.Create(mov); err != nil {
			return nil, err
		}
		movements = append(movements, mov)
	}

	// Recalcular el agregado desde los lotes, en la misma transacción
	total, err := lotRepo.SumRemainingByArticle(input.CompanyID, input.ArticleID)
	if err != nil {
		return nil, err
	}
	stk.CurrentQuantity = total
	stk.UpdatedAt = at
	if err := stockRepo.Upsert(stk); err != nil {
		return nil, err
	}
	return movements, nil
}

// ConsumeInput entrada para consumir los requerimientos agregados de un grupo
// de exámenes: cantidades ya sumadas por artículo (mapeo pivote calculado
// aguas arriba).
type ConsumeInput struct {
	CompanyID    string
	Requirements map[string]decimal.Decimal // articleID -> cantidad requerida
	Policy       allocation.Policy
	Reason       string
	Reference    string
	UserID       string
	Date         time.Time
}

// ConsumeRequirements asigna cada artículo requerido bajo la misma política,
// todo dentro de una sola transacción y recorriendo los artículos en orden
// de ID para un orden de bloqueo estable. Si un artículo no alcanza, nada se
// consume.
func (uc *AllocateUseCase) ConsumeRequirements(ctx context.Context, input ConsumeInput) ([]*entity.Movement, error) {
	if input.CompanyID == "" || len(input.Requirements) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if input.Policy == allocation.PolicyManual {
		return nil, domain.ErrInvalidInput
	}
	if _, err := allocation.ParsePolicy(string(input.Policy)); err != nil {
		return nil, err
	}

	articleIDs := make([]string, 0, len(input.Requirements))
	for id, qty := range input.Requirements {
		if !qty.IsPositive() {
			return nil, domain.ErrInvalidQuantity
		}
		articleIDs = append(articleIDs, id)
	}
	sort.Strings(articleIDs)

	for _, id := range articleIDs {
		article, err := uc.articleRepo.GetByID(id)
		if err != nil {
			return nil, err
		}
		if article == nil {
			return nil, domain.ErrNotFound
		}
		if article.CompanyID != input.CompanyID {
			return nil, domain.ErrForbidden
		}
	}

	at := input.Date
	if at.IsZero() {
		at = time.Now()
	}

	var movements []*entity.Movement
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		stockRepo repository.StockRepository,
		movRepo repository.MovementRepository,
	) error {
		for _, id := range articleIDs {
			movs, err := uc.allocateInTx(lotRepo, stockRepo, movRepo, AllocateInput{
				CompanyID: input.CompanyID,
				ArticleID: id,
				Quantity:  input.Requirements[id],
				Policy:    input.Policy,
				Reason:    input.Reason,
				Reference: input.Reference,
				UserID:    input.UserID,
			}, at)
			if err != nil {
				return err
			}
			movements = append(movements, movs...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movements, nil
}

// lockStock bloquea la fila agregada del artículo, creándola vacía si todavía
// no existe (primer movimiento del artículo).
func lockStock(stockRepo repository.StockRepository, companyID, articleID string, at time.Time) (*entity.Stock, error) {
	stk, err := stockRepo.GetForUpdateByArticle(companyID, articleID)
	if err != nil {
		return nil, err
	}
	if stk == nil {
		stk = &entity.Stock{
			ID:                uuid.New().String(),
			CompanyID:         companyID,
			ArticleID:         articleID,
			CurrentQuantity:   decimal.Zero,
			CriticalThreshold: decimal.Zero,
			UpdatedAt:         at,
		}
		if err := stockRepo.Upsert(stk); err != nil {
			return nil, err
		}
	}
	return stk, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
