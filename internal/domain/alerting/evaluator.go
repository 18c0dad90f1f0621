// Package alerting deriva alertas (stock crítico, vencimientos, sobrestock)
// del estado actual de lotes y registros agregados. Es cálculo puro de lado
// de lectura: no posee estado ni escribe nada, y dos evaluaciones sobre el
// mismo estado producen el mismo reporte.
package alerting

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// Params parametriza la evaluación de alertas.
type Params struct {
	ExpiryHorizonDays     int             // ventana de "próximo a vencer"
	OverstockFactor       decimal.Decimal // sobrestock: actual > factor * umbral
	ConsumptionWindowDays int             // ventana del promedio de consumo diario
}

// DefaultParams devuelve los valores de negocio por defecto: horizonte de
// vencimiento de 30 días, sobrestock a 3x el umbral, consumo promedio sobre
// los últimos 30 días.
func DefaultParams() Params {
	return Params{
		ExpiryHorizonDays:     30,
		OverstockFactor:       decimal.NewFromInt(3),
		ConsumptionWindowDays: 30,
	}
}

// Evaluate construye el reporte de alertas para una empresa.
// `consumption` trae el total de salidas por artículo dentro de la ventana de
// consumo (puede faltar un artículo: promedio 0, quiebre de stock desconocido).
func Evaluate(
	stocks []*entity.Stock,
	articles map[string]*entity.Article,
	lots []*entity.Lot,
	consumption map[string]decimal.Decimal,
	p Params,
	now time.Time,
) *entity.AlertsReport {
	report := &entity.AlertsReport{
		Critical:     []entity.CriticalStockAlert{},
		ExpiringSoon: []entity.ExpiryAlert{},
		Expired:      []entity.ExpiryAlert{},
		Overstock:    []entity.OverstockAlert{},
		GeneratedAt:  now,
	}

	for _, s := range stocks {
		name := articleName(articles, s.ArticleID)

		// Crítico: 0 < actual <= umbral
		if s.CurrentQuantity.IsPositive() && s.CurrentQuantity.LessThanOrEqual(s.CriticalThreshold) {
			avg, days := stockoutProjection(s.CurrentQuantity, consumption[s.ArticleID], p.ConsumptionWindowDays)
			report.Critical = append(report.Critical, entity.CriticalStockAlert{
				ArticleID:           s.ArticleID,
				ArticleName:         name,
				CurrentQuantity:     s.CurrentQuantity,
				CriticalThreshold:   s.CriticalThreshold,
				AvgDailyConsumption: avg,
				DaysToStockout:      days,
			})
		}

		// Sobrestock: actual > factor * umbral (solo con umbral configurado)
		if s.CriticalThreshold.IsPositive() &&
			s.CurrentQuantity.GreaterThan(s.CriticalThreshold.Mul(p.OverstockFactor)) {
			report.Overstock = append(report.Overstock, entity.OverstockAlert{
				ArticleID:         s.ArticleID,
				ArticleName:       name,
				CurrentQuantity:   s.CurrentQuantity,
				CriticalThreshold: s.CriticalThreshold,
			})
		}
	}

	for _, l := range lots {
		if l.DeletedAt != nil || !l.RemainingQuantity.IsPositive() || l.ExpirationDate == nil {
			continue
		}
		name := articleName(articles, l.ArticleID)
		alert := entity.ExpiryAlert{
			LotID:               l.ID,
			LotCode:             l.Code,
			ArticleID:           l.ArticleID,
			ArticleName:         name,
			RemainingQuantity:   l.RemainingQuantity,
			ExpirationDate:      *l.ExpirationDate,
			DaysUntilExpiration: daysBetween(now, *l.ExpirationDate),
			LostValue:           decimal.Zero,
		}
		switch {
		case l.IsExpired(now):
			alert.LostValue = l.RemainingQuantity.Mul(l.UnitPrice)
			report.Expired = append(report.Expired, alert)
		case l.ExpiresWithin(now, p.ExpiryHorizonDays):
			report.ExpiringSoon = append(report.ExpiringSoon, alert)
		}
	}

	return report
}

// stockoutProjection calcula el consumo promedio diario y los días hasta el
// quiebre de stock. Sin historial de consumo no hay división: el promedio es
// 0 y el quiebre se reporta como desconocido.
func stockoutProjection(current, windowTotal decimal.Decimal, windowDays int) (decimal.Decimal, int) {
	if windowDays <= 0 || !windowTotal.IsPositive() {
		return decimal.Zero, entity.DaysToStockoutUnknown
	}
	avg := windowTotal.Div(decimal.NewFromInt(int64(windowDays)))
	days := current.Div(avg).Ceil()
	return avg, int(days.IntPart())
}

// daysBetween redondea hacia abajo los días completos entre dos fechas
// (negativo si `to` ya pasó).
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func articleName(articles map[string]*entity.Article, id string) string {
	if a, ok := articles[id]; ok {
		return a.Name
	}
	return ""
}
