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

// ReceiveLotUseCase registra la recepción de stock: crea el lote con
// remanente = inicial, asienta el movimiento de entrada y recalcula el
// agregado, todo en una transacción. Sin ramas por política; la idempotencia
// es responsabilidad del llamador (no hay clave natural más allá del código
// generado).
type ReceiveLotUseCase struct {
	txRunner    TxRunner
	articleRepo repository.ArticleRepository
	codes       CodeGenerator
}

// NewReceiveLotUseCase construye el caso de uso.
func NewReceiveLotUseCase(txRunner TxRunner, articleRepo repository.ArticleRepository, codes CodeGenerator) *ReceiveLotUseCase {
	return &ReceiveLotUseCase{txRunner: txRunner, articleRepo: articleRepo, codes: codes}
}

// ReceiveLotInput entrada para la recepción de un lote.
type ReceiveLotInput struct {
	CompanyID       string
	ArticleID       string
	InitialQuantity decimal.Decimal
	EntryDate       time.Time  // cero = ahora
	ExpirationDate  *time.Time // opcional
	UnitPrice       decimal.Decimal
	LotNumber       string
	Supplier        string
	Comment         string
	Reason          string
	UserID          string
}

// Receive crea el lote y devuelve el lote y su movimiento de entrada.
func (uc *ReceiveLotUseCase) Receive(ctx context.Context, input ReceiveLotInput) (*entity.Lot, *entity.Movement, error) {
	if input.CompanyID == "" || input.ArticleID == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	if !input.InitialQuantity.IsPositive() {
		return nil, nil, domain.ErrInvalidQuantity
	}
	if input.UnitPrice.IsNegative() {
		return nil, nil, domain.ErrInvalidInput
	}

	article, err := uc.articleRepo.GetByID(input.ArticleID)
	if err != nil {
		return nil, nil, err
	}
	if article == nil {
		return nil, nil, domain.ErrNotFound
	}
	if article.CompanyID != input.CompanyID {
		return nil, nil, domain.ErrForbidden
	}

	now := time.Now()
	entryDate := input.EntryDate
	if entryDate.IsZero() {
		entryDate = now
	}

	lot := &entity.Lot{
		ID:                uuid.New().String(),
		CompanyID:         input.CompanyID,
		ArticleID:         input.ArticleID,
		Code:              uc.codes.LotCode(entryDate),
		InitialQuantity:   input.InitialQuantity,
		RemainingQuantity: input.InitialQuantity,
		EntryDate:         entryDate,
		ExpirationDate:    input.ExpirationDate,
		UnitPrice:         input.UnitPrice,
		LotNumber:         input.LotNumber,
		Supplier:          input.Supplier,
		Comment:           input.Comment,
		CreatedAt:         now,
	}

	var movement *entity.Movement
	err = uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		stockRepo repository.StockRepository,
		movRepo repository.MovementRepository,
	) error {
		stk, err := lockStock(stockRepo, input.CompanyID, input.ArticleID, now)
		if err != nil {
			return err
		}
		if err := lotRepo.Create(lot); err != nil {
			return err
		}
		lotID := lot.ID
		movement = &entity.Movement{
			ID:        uuid.New().String(),
			CompanyID: input.CompanyID,
			Code:      uc.codes.MovementCode(entryDate),
			StockID:   stk.ID,
			LotID:     &lotID,
			Type:      entity.MovementTypeEntry,
			Quantity:  input.InitialQuantity,
			UnitPrice: input.UnitPrice,
			Date:      entryDate,
			Reason:    input.Reason,
			CreatedAt: now,
			CreatedBy: input.UserID,
		}
		if err := movRepo.Create(movement); err != nil {
			return err
		}
		total, err := lotRepo.SumRemainingByArticle(input.CompanyID, input.ArticleID)
		if err != nil {
			return err
		}
		stk.CurrentQuantity = total
		stk.UpdatedAt = now
		return stockRepo.Upsert(stk)
	})
	if err != nil {
		return nil, nil, err
	}
	return lot, movement, nil
}
