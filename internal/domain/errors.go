package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrInvalidQuantity     = errors.New("cantidad inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrLotQuantityExceeded = errors.New("la cantidad solicitada excede las existencias del lote")
	ErrLotNotOwned         = errors.New("el lote no pertenece a la empresa o al artículo")
	ErrLotNotEmpty         = errors.New("el lote aún tiene existencias")
	ErrLotHasMovements     = errors.New("el lote tiene movimientos asociados")
	ErrRecentActivity      = errors.New("el lote registra movimientos recientes")
	ErrTransientStorage    = errors.New("error transitorio de almacenamiento")
)

// InsufficientStockError detalla un rechazo por stock insuficiente:
// cuánto se pidió contra cuánto había disponible entre los lotes elegibles.
// Unwrap permite matchear por tipo con errors.Is(err, ErrInsufficientStock).
type InsufficientStockError struct {
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: solicitado %s, disponible %s",
		e.Requested.String(), e.Available.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// LotQuantityExceededError detalla una selección manual que pide más de lo
// que el lote tiene.
type LotQuantityExceededError struct {
	LotID     string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *LotQuantityExceededError) Error() string {
	return fmt.Sprintf("lote %s: solicitado %s, disponible %s",
		e.LotID, e.Requested.String(), e.Available.String())
}

func (e *LotQuantityExceededError) Unwrap() error { return ErrLotQuantityExceeded }
