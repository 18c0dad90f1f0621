package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock es el registro agregado por (empresa, artículo): cantidad actual
// cacheada y umbral crítico de reposición. Invariante: CurrentQuantity es
// siempre la suma de RemainingQuantity de los lotes no borrados del artículo;
// se recalcula dentro de la misma transacción que muta los lotes.
type Stock struct {
	ID                string
	CompanyID         string
	ArticleID         string
	CurrentQuantity   decimal.Decimal
	CriticalThreshold decimal.Decimal
	UpdatedAt         time.Time
}
