package stock

import (
	"context"
	"time"

	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de stock:
// chequeo de disponibilidad, débito de lotes, asientos del libro y recálculo
// del agregado viven en la misma transacción o no viven.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		stockRepo repository.StockRepository,
		movRepo repository.MovementRepository,
	) error) error
}

// CodeGenerator produce códigos legibles y únicos para lotes y movimientos.
type CodeGenerator interface {
	LotCode(at time.Time) string
	MovementCode(at time.Time) string
}
