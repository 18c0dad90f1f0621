package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DaysToStockoutUnknown indica que no hay historial de consumo suficiente
// para proyectar un quiebre de stock.
const DaysToStockoutUnknown = -1

// CriticalStockAlert: artículo con existencias por debajo (o en) el umbral crítico.
type CriticalStockAlert struct {
	ArticleID           string          `json:"article_id"`
	ArticleName         string          `json:"article_name"`
	CurrentQuantity     decimal.Decimal `json:"current_quantity"`
	CriticalThreshold   decimal.Decimal `json:"critical_threshold"`
	AvgDailyConsumption decimal.Decimal `json:"avg_daily_consumption"`
	DaysToStockout      int             `json:"days_to_stockout"` // -1 = desconocido (sin historial)
}

// ExpiryAlert: lote vencido o próximo a vencer con existencias.
type ExpiryAlert struct {
	LotID               string          `json:"lot_id"`
	LotCode             string          `json:"lot_code"`
	ArticleID           string          `json:"article_id"`
	ArticleName         string          `json:"article_name"`
	RemainingQuantity   decimal.Decimal `json:"remaining_quantity"`
	ExpirationDate      time.Time       `json:"expiration_date"`
	DaysUntilExpiration int             `json:"days_until_expiration"` // negativo si ya venció
	LostValue           decimal.Decimal `json:"lost_value"`            // remaining * costo del lote (solo vencidos)
}

// OverstockAlert: artículo con existencias muy por encima del umbral crítico.
type OverstockAlert struct {
	ArticleID         string          `json:"article_id"`
	ArticleName       string          `json:"article_name"`
	CurrentQuantity   decimal.Decimal `json:"current_quantity"`
	CriticalThreshold decimal.Decimal `json:"critical_threshold"`
}

// AlertsReport agrupa las alertas derivadas del estado actual de lotes y stock.
// Es una vista calculada: dos evaluaciones sin cambios de estado entre medio
// producen el mismo reporte.
type AlertsReport struct {
	Critical     []CriticalStockAlert `json:"critical"`
	ExpiringSoon []ExpiryAlert        `json:"expiring_soon"`
	Expired      []ExpiryAlert        `json:"expired"`
	Overstock    []OverstockAlert     `json:"overstock"`
	GeneratedAt  time.Time            `json:"generated_at"`
}

// StockValuation resume el valor del inventario de un artículo o de toda la empresa.
type StockValuation struct {
	ArticleID        string          `json:"article_id,omitempty"` // vacío = toda la empresa
	TotalLots        int             `json:"total_lots"`
	TotalQuantity    decimal.Decimal `json:"total_quantity"`
	TotalValue       decimal.Decimal `json:"total_value"`
	AverageUnitPrice decimal.Decimal `json:"average_unit_price"`
	ExpiredLots      int             `json:"expired_lots"`
	ExpiringSoonLots int             `json:"expiring_soon_lots"`
}
