// Package allocation contiene el algoritmo puro de selección de lotes:
// ordenamiento por política (FIFO/FEFO), plan de consumo voraz y validación
// de selecciones manuales. No toca persistencia; el caso de uso lo ejecuta
// sobre lotes ya bloqueados dentro de una transacción.
package allocation

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// Policy define cómo se eligen los lotes a debitar.
type Policy string

const (
	PolicyFIFO   Policy = "fifo"   // primero el lote más antiguo por fecha de entrada
	PolicyFEFO   Policy = "fefo"   // primero el lote más próximo a vencer
	PolicyManual Policy = "manual" // lotes y cantidades elegidos por el llamador
)

// ParsePolicy valida una política recibida como string.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyFIFO, PolicyFEFO, PolicyManual:
		return Policy(s), nil
	}
	return "", domain.ErrInvalidInput
}

// Selection es un par (lote, cantidad) de la política manual.
type Selection struct {
	LotID    string
	Quantity decimal.Decimal
}

// Consumption indica cuánto debitar de un lote concreto.
type Consumption struct {
	Lot      *entity.Lot
	Quantity decimal.Decimal
}

// SortFIFO ordena in place por fecha de entrada ascendente; empate por ID de
// lote ascendente. Orden estable y determinista.
func SortFIFO(lots []*entity.Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		if !lots[i].EntryDate.Equal(lots[j].EntryDate) {
			return lots[i].EntryDate.Before(lots[j].EntryDate)
		}
		return lots[i].ID < lots[j].ID
	})
}

// SortFEFO ordena in place por fecha de vencimiento ascendente. Los lotes sin
// vencimiento van al final: bajo una política guiada por caducidad son los
// menos urgentes de consumir. Empates por fecha de entrada y luego ID.
func SortFEFO(lots []*entity.Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		ei, ej := lots[i].ExpirationDate, lots[j].ExpirationDate
		switch {
		case ei == nil && ej == nil:
			// ambos sin vencimiento: cae a FIFO
		case ei == nil:
			return false
		case ej == nil:
			return true
		case !ei.Equal(*ej):
			return ei.Before(*ej)
		}
		if !lots[i].EntryDate.Equal(lots[j].EntryDate) {
			return lots[i].EntryDate.Before(lots[j].EntryDate)
		}
		return lots[i].ID < lots[j].ID
	})
}

// Plan calcula el consumo voraz sobre lotes ya ordenados por la política.
// Verifica primero que el total disponible cubre lo solicitado y falla con
// InsufficientStockError antes de proponer mutación alguna. Luego recorre los
// candidatos tomando min(faltante, remanente) de cada uno.
func Plan(lots []*entity.Lot, requested decimal.Decimal) ([]Consumption, error) {
	if !requested.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}

	available := decimal.Zero
	for _, l := range lots {
		if l.Available() {
			available = available.Add(l.RemainingQuantity)
		}
	}
	if available.LessThan(requested) {
		return nil, &domain.InsufficientStockError{Requested: requested, Available: available}
	}

	needed := requested
	plan := make([]Consumption, 0, len(lots))
	for _, l := range lots {
		if needed.IsZero() {
			break
		}
		if !l.Available() {
			continue
		}
		take := decimal.Min(needed, l.RemainingQuantity)
		plan = append(plan, Consumption{Lot: l, Quantity: take})
		needed = needed.Sub(take)
	}
	return plan, nil
}

// PlanManual valida las selecciones del llamador contra los lotes bloqueados
// y devuelve el consumo en el orden recibido (sin reordenar). Cada selección
// debe referir un lote presente y pedir a lo sumo su remanente.
func PlanManual(lots []*entity.Lot, selections []Selection) ([]Consumption, error) {
	if len(selections) == 0 {
		return nil, domain.ErrInvalidInput
	}
	byID := make(map[string]*entity.Lot, len(lots))
	for _, l := range lots {
		byID[l.ID] = l
	}

	plan := make([]Consumption, 0, len(selections))
	// Acumula lo ya tomado por selecciones previas del mismo lote en esta llamada.
	taken := make(map[string]decimal.Decimal, len(selections))
	for _, sel := range selections {
		if !sel.Quantity.IsPositive() {
			return nil, domain.ErrInvalidQuantity
		}
		lot, ok := byID[sel.LotID]
		if !ok {
			return nil, domain.ErrLotNotOwned
		}
		remaining := lot.RemainingQuantity.Sub(taken[lot.ID])
		if sel.Quantity.GreaterThan(remaining) {
			return nil, &domain.LotQuantityExceededError{
				LotID:     lot.ID,
				Requested: sel.Quantity,
				Available: remaining,
			}
		}
		taken[lot.ID] = taken[lot.ID].Add(sel.Quantity)
		plan = append(plan, Consumption{Lot: lot, Quantity: sel.Quantity})
	}
	return plan, nil
}
