package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

// AdjustLotUseCase corrige las existencias de un lote por fuera del flujo
// normal de recepción y consumo (conteo físico, merma, rotura). Aplica un
// delta con signo sobre el remanente, asienta un movimiento de ajuste con ese
// delta y recalcula el agregado, todo en una transacción. Un ajuste positivo
// actúa como una entrada y uno negativo como una salida.
type AdjustLotUseCase struct {
	txRunner TxRunner
	codes    CodeGenerator
}

// NewAdjustLotUseCase construye el caso de uso.
func NewAdjustLotUseCase(txRunner TxRunner, codes CodeGenerator) *AdjustLotUseCase {
	return &AdjustLotUseCase{txRunner: txRunner, codes: codes}
}

// AdjustLotInput entrada para un ajuste administrativo. Delta positivo suma
// al remanente, negativo resta. Reason es obligatorio: todo ajuste debe
// quedar explicado en el libro.
type AdjustLotInput struct {
	CompanyID string
	LotID     string
	Delta     decimal.Decimal
	Reason    string
	UserID    string
	Date      time.Time // cero = ahora
}

// Adjust aplica el ajuste y devuelve el movimiento asentado.
func (uc *AdjustLotUseCase) Adjust(ctx context.Context, input AdjustLotInput) (*entity.Movement, error) {
	if input.CompanyID == "" || input.LotID == "" || input.Reason == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Delta.IsZero() {
		return nil, domain.ErrInvalidQuantity
	}

	at := input.Date
	if at.IsZero() {
		at = time.Now()
	}

	var movement *entity.Movement
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		stockRepo repository.StockRepository,
		movRepo repository.MovementRepository,
	) error {
		// Lectura sin bloqueo solo para conocer el artículo y validar pertenencia
		lot, err := lotRepo.GetByID(input.LotID)
		if err != nil {
			return err
		}
		if lot == nil || lot.CompanyID != input.CompanyID || lot.DeletedAt != nil {
			return domain.ErrNotFound
		}

		// Mismo orden de bloqueo que la asignación: primero la fila agregada,
		// después el lote.
		stk, err := lockStock(stockRepo, input.CompanyID, lot.ArticleID, at)
		if err != nil {
			return err
		}
		locked, err := lotRepo.LockByIDs(input.CompanyID, []string{input.LotID})
		if err != nil {
			return err
		}
		if len(locked) != 1 {
			return domain.ErrNotFound
		}
		lot = locked[0]

		newRemaining := lot.RemainingQuantity.Add(input.Delta)
		if newRemaining.IsNegative() {
			return &domain.LotQuantityExceededError{
				LotID:     lot.ID,
				Requested: input.Delta.Neg(),
				Available: lot.RemainingQuantity,
			}
		}
		if newRemaining.GreaterThan(lot.InitialQuantity) {
			return domain.ErrInvalidQuantity
		}
		if err := lotRepo.UpdateRemaining(lot.ID, newRemaining); err != nil {
			return err
		}

		lotID := lot.ID
		movement = &entity.Movement{
			ID:        uuid.New().String(),
			CompanyID: input.CompanyID,
			Code:      uc.codes.MovementCode(at),
			StockID:   stk.ID,
			LotID:     &lotID,
			Type:      entity.MovementTypeAdjust,
			Quantity:  input.Delta, // con signo: el libro reconstruye el saldo
			UnitPrice: lot.UnitPrice,
			Date:      at,
			Reason:    input.Reason,
			CreatedAt: at,
			CreatedBy: input.UserID,
		}
		if err := movRepo.Create(movement); err != nil {
			return err
		}

		total, err := lotRepo.SumRemainingByArticle(input.CompanyID, lot.ArticleID)
		if err != nil {
			return err
		}
		stk.CurrentQuantity = total
		stk.UpdatedAt = at
		return stockRepo.Upsert(stk)
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}
