package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock. En entradas y salidas la cantidad es siempre
// positiva y el sentido lo da el tipo; en ajustes la cantidad lleva el delta
// con signo (positivo suma, negativo resta).
const (
	MovementTypeEntry  = "entry"  // entrada (recepción de lote)
	MovementTypeExit   = "exit"   // salida (consumo)
	MovementTypeAdjust = "adjust" // ajuste administrativo (conteo, merma, rotura)
)

// Movement es un asiento inmutable del libro de movimientos: todo cambio de
// cantidad queda ligado al registro agregado y, cuando aplica, al lote
// debitado o acreditado. Nunca se modifica ni se borra desde este núcleo.
type Movement struct {
	ID        string
	CompanyID string
	Code      string
	StockID   string
	LotID     *string
	Type      string
	Quantity  decimal.Decimal // positiva en entry/exit; delta con signo en adjust
	UnitPrice decimal.Decimal // snapshot del costo del lote al momento del movimiento
	Date      time.Time
	Reason    string
	Reference string // referencia externa (ej. solicitud de examen)
	CreatedAt time.Time
	CreatedBy string
}

// Signed devuelve la cantidad con signo según el tipo: entradas positivas,
// salidas negativas, ajustes tal cual se asentaron. Sumar Signed sobre el
// libro de un artículo reconstruye su saldo.
func (m *Movement) Signed() decimal.Decimal {
	if m.Type == MovementTypeExit {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
