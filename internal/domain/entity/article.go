package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Article representa un artículo consumible del laboratorio (reactivo, insumo).
// El precio es el de lista del catálogo; el costo real de compra vive en cada lote.
type Article struct {
	ID          string
	CompanyID   string
	Name        string
	UnitMeasure string
	Price       decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
