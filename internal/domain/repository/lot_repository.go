package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// LotRepository define el puerto de persistencia para lotes.
// LockForArticle y LockByIDs solo tienen sentido dentro de una transacción
// (SELECT ... FOR UPDATE); el TxRunner entrega repos atados a la tx.
type LotRepository interface {
	Create(lot *entity.Lot) error
	GetByID(id string) (*entity.Lot, error)
	ListByArticle(companyID, articleID string) ([]*entity.Lot, error)
	ListByCompany(companyID string) ([]*entity.Lot, error)

	// LockForArticle bloquea y devuelve los lotes candidatos de un artículo
	// (remanente > 0, no borrados), ordenados por ID para un orden de
	// bloqueo estable entre transacciones concurrentes.
	LockForArticle(companyID, articleID string) ([]*entity.Lot, error)
	// LockByIDs bloquea exactamente los lotes indicados (política manual),
	// también en orden de ID.
	LockByIDs(companyID string, ids []string) ([]*entity.Lot, error)

	UpdateRemaining(lotID string, remaining decimal.Decimal) error
	// SumRemainingByArticle suma el remanente de los lotes no borrados del
	// artículo; es la verdad con la que se recalcula el agregado.
	SumRemainingByArticle(companyID, articleID string) (decimal.Decimal, error)

	SoftDelete(lotID string, at time.Time) error
	HardDelete(lotID string) error
}
