package stock

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

// LotFilter filtro de listado de lotes.
type LotFilter string

const (
	LotFilterAll          LotFilter = ""          // todos los no borrados
	LotFilterAvailable    LotFilter = "available" // remanente > 0
	LotFilterExpired      LotFilter = "expired"   // vencidos con remanente
	LotFilterExpiringSoon LotFilter = "expiring"  // vencen dentro del horizonte
)

// StockQueryUseCase consultas de solo lectura sobre lotes, movimientos y
// valorización. Opera con repositorios atados al pool (sin transacción).
type StockQueryUseCase struct {
	lotRepo           repository.LotRepository
	movRepo           repository.MovementRepository
	expiryHorizonDays int
}

// NewStockQueryUseCase construye el caso de uso. horizonDays <= 0 usa 30.
func NewStockQueryUseCase(lotRepo repository.LotRepository, movRepo repository.MovementRepository, horizonDays int) *StockQueryUseCase {
	if horizonDays <= 0 {
		horizonDays = 30
	}
	return &StockQueryUseCase{lotRepo: lotRepo, movRepo: movRepo, expiryHorizonDays: horizonDays}
}

// ListLots lista los lotes de un artículo aplicando el filtro pedido.
// Un filtro no reconocido se rechaza en vez de degradar a "todos".
func (uc *StockQueryUseCase) ListLots(ctx context.Context, companyID, articleID string, filter LotFilter) ([]*entity.Lot, error) {
	if companyID == "" || articleID == "" {
		return nil, domain.ErrInvalidInput
	}
	switch filter {
	case LotFilterAll, LotFilterAvailable, LotFilterExpired, LotFilterExpiringSoon:
	default:
		return nil, domain.ErrInvalidInput
	}
	lots, err := uc.lotRepo.ListByArticle(companyID, articleID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]*entity.Lot, 0, len(lots))
	for _, l := range lots {
		switch filter {
		case LotFilterAvailable:
			if !l.Available() {
				continue
			}
		case LotFilterExpired:
			if !l.IsExpired(now) || !l.RemainingQuantity.IsPositive() {
				continue
			}
		case LotFilterExpiringSoon:
			if !l.ExpiresWithin(now, uc.expiryHorizonDays) || !l.RemainingQuantity.IsPositive() {
				continue
			}
		}
		out = append(out, l)
	}
	return out, nil
}

// Valuation resume el valor del inventario: por artículo si articleID no es
// vacío, o de toda la empresa. Valor = suma de remanente * costo de compra
// por lote; el precio promedio pondera por cantidad.
func (uc *StockQueryUseCase) Valuation(ctx context.Context, companyID, articleID string) (*entity.StockValuation, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	var (
		lots []*entity.Lot
		err  error
	)
	if articleID != "" {
		lots, err = uc.lotRepo.ListByArticle(companyID, articleID)
	} else {
		lots, err = uc.lotRepo.ListByCompany(companyID)
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	v := &entity.StockValuation{
		ArticleID:        articleID,
		TotalQuantity:    decimal.Zero,
		TotalValue:       decimal.Zero,
		AverageUnitPrice: decimal.Zero,
	}
	for _, l := range lots {
		if l.DeletedAt != nil {
			continue
		}
		v.TotalLots++
		v.TotalQuantity = v.TotalQuantity.Add(l.RemainingQuantity)
		v.TotalValue = v.TotalValue.Add(l.RemainingQuantity.Mul(l.UnitPrice))
		if l.RemainingQuantity.IsPositive() {
			if l.IsExpired(now) {
				v.ExpiredLots++
			} else if l.ExpiresWithin(now, uc.expiryHorizonDays) {
				v.ExpiringSoonLots++
			}
		}
	}
	if v.TotalQuantity.IsPositive() {
		v.AverageUnitPrice = v.TotalValue.Div(v.TotalQuantity)
	}
	return v, nil
}

// ListMovements lista los movimientos de un artículo en un rango de fechas.
func (uc *StockQueryUseCase) ListMovements(ctx context.Context, companyID, articleID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	if companyID == "" || articleID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.movRepo.ListByArticle(companyID, articleID, from, to, limit, offset)
}
