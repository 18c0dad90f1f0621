package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// MovementRepository define el puerto del libro de movimientos. El libro es
// append-only: este núcleo solo crea y consulta, nunca actualiza ni borra.
type MovementRepository interface {
	Create(movement *entity.Movement) error
	ListByArticle(companyID, articleID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error)
	ListByLot(lotID string, limit, offset int) ([]*entity.Movement, error)

	// LastDateForLot devuelve la fecha del movimiento más reciente del lote
	// (nil si no tiene); alimenta la guarda de borrado por actividad reciente.
	LastDateForLot(lotID string) (*time.Time, error)
	// CountForLot cuenta los movimientos que referencian al lote; la guarda
	// de borrado físico exige cero.
	CountForLot(lotID string) (int64, error)

	// ExitTotalsSince suma las salidas por artículo desde la fecha dada;
	// alimenta el promedio de consumo del evaluador de alertas.
	ExitTotalsSince(companyID string, since time.Time) (map[string]decimal.Decimal, error)
}
