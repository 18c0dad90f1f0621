package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot representa un lote recibido de un artículo: cantidad propia, costo de
// compra y vencimiento opcional. Invariante: 0 <= RemainingQuantity <= InitialQuantity.
// RemainingQuantity solo decrece, y únicamente vía el motor de asignación.
type Lot struct {
	ID                string
	CompanyID         string
	ArticleID         string
	Code              string
	InitialQuantity   decimal.Decimal
	RemainingQuantity decimal.Decimal
	EntryDate         time.Time
	ExpirationDate    *time.Time
	UnitPrice         decimal.Decimal // costo unitario de compra del lote
	LotNumber         string
	Supplier          string
	Comment           string
	CreatedAt         time.Time
	DeletedAt         *time.Time // borrado lógico
}

// Available indica si el lote puede participar en una asignación:
// tiene existencias y no está borrado.
func (l *Lot) Available() bool {
	return l.DeletedAt == nil && l.RemainingQuantity.IsPositive()
}

// IsExpired indica si el lote está vencido a la fecha dada.
// Un lote sin fecha de vencimiento nunca vence.
func (l *Lot) IsExpired(now time.Time) bool {
	return l.ExpirationDate != nil && l.ExpirationDate.Before(now)
}

// ExpiresWithin indica si el lote vence dentro de los próximos `days` días
// (sin estar vencido todavía).
func (l *Lot) ExpiresWithin(now time.Time, days int) bool {
	if l.ExpirationDate == nil || l.IsExpired(now) {
		return false
	}
	return !l.ExpirationDate.After(now.AddDate(0, 0, days))
}
