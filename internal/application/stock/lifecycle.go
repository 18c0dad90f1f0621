package stock

import (
	"context"
	"time"

	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

// DefaultDeleteGuardWindow ventana de actividad reciente que bloquea el
// borrado lógico de un lote: protege contra borrar un lote que otra
// transacción acaba de tocar.
const DefaultDeleteGuardWindow = 24 * time.Hour

// LotLifecycleUseCase aplica las guardas de ciclo de vida de lotes.
// Borrado lógico: solo lotes vacíos y sin movimientos dentro de la ventana.
// Borrado físico: solo lotes sin ningún movimiento (el libro nunca debe
// quedar con referencias colgantes).
type LotLifecycleUseCase struct {
	txRunner    TxRunner
	guardWindow time.Duration
}

// NewLotLifecycleUseCase construye el caso de uso. guardWindow <= 0 usa la
// ventana por defecto de 24 horas.
func NewLotLifecycleUseCase(txRunner TxRunner, guardWindow time.Duration) *LotLifecycleUseCase {
	if guardWindow <= 0 {
		guardWindow = DefaultDeleteGuardWindow
	}
	return &LotLifecycleUseCase{txRunner: txRunner, guardWindow: guardWindow}
}

// SoftDelete marca el lote como borrado si está vacío y sin actividad reciente.
func (uc *LotLifecycleUseCase) SoftDelete(ctx context.Context, companyID, lotID string) error {
	if companyID == "" || lotID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		stockRepo repository.StockRepository,
		movRepo repository.MovementRepository,
	) error {
		lot, err := lotRepo.GetByID(lotID)
		if err != nil {
			return err
		}
		if lot == nil || lot.CompanyID != companyID {
			return domain.ErrNotFound
		}
		if lot.DeletedAt != nil {
			return nil // ya borrado
		}
		if lot.RemainingQuantity.IsPositive() {
			return domain.ErrLotNotEmpty
		}
		last, err := movRepo.LastDateForLot(lotID)
		if err != nil {
			return err
		}
		now := time.Now()
		if last != nil && now.Sub(*last) < uc.guardWindow {
			return domain.ErrRecentActivity
		}
		return lotRepo.SoftDelete(lotID, now)
	})
}

// HardDelete elimina físicamente un lote que nunca registró movimientos.
func (uc *LotLifecycleUseCase) HardDelete(ctx context.Context, companyID, lotID string) error {
	if companyID == "" || lotID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		stockRepo repository.StockRepository,
		movRepo repository.MovementRepository,
	) error {
		lot, err := lotRepo.GetByID(lotID)
		if err != nil {
			return err
		}
		if lot == nil || lot.CompanyID != companyID {
			return domain.ErrNotFound
		}
		count, err := movRepo.CountForLot(lotID)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrLotHasMovements
		}
		return lotRepo.HardDelete(lotID)
	})
}
