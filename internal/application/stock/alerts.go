package stock

import (
	"context"
	"time"

	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/alerting"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

// AlertUseCase evalúa las alertas derivadas (stock crítico, vencimientos,
// sobrestock) para una empresa. Lectura pura: junta el estado actual y el
// consumo reciente y delega el cálculo al dominio. Se invoca bajo demanda;
// la cadencia (polling externo) no es parte de este núcleo.
type AlertUseCase struct {
	stockRepo   repository.StockRepository
	lotRepo     repository.LotRepository
	movRepo     repository.MovementRepository
	articleRepo repository.ArticleRepository
	params      alerting.Params
}

// NewAlertUseCase construye el caso de uso.
func NewAlertUseCase(
	stockRepo repository.StockRepository,
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
	articleRepo repository.ArticleRepository,
	params alerting.Params,
) *AlertUseCase {
	if params.ExpiryHorizonDays <= 0 || params.ConsumptionWindowDays <= 0 || !params.OverstockFactor.IsPositive() {
		params = alerting.DefaultParams()
	}
	return &AlertUseCase{
		stockRepo:   stockRepo,
		lotRepo:     lotRepo,
		movRepo:     movRepo,
		articleRepo: articleRepo,
		params:      params,
	}
}

// Evaluate construye el reporte de alertas de la empresa.
func (uc *AlertUseCase) Evaluate(ctx context.Context, companyID string) (*entity.AlertsReport, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}

	stocks, err := uc.stockRepo.ListByCompany(companyID)
	if err != nil {
		return nil, err
	}
	lots, err := uc.lotRepo.ListByCompany(companyID)
	if err != nil {
		return nil, err
	}
	articleList, err := uc.articleRepo.ListByCompany(companyID)
	if err != nil {
		return nil, err
	}
	articles := make(map[string]*entity.Article, len(articleList))
	for _, a := range articleList {
		articles[a.ID] = a
	}

	now := time.Now()
	since := now.AddDate(0, 0, -uc.params.ConsumptionWindowDays)
	consumption, err := uc.movRepo.ExitTotalsSince(companyID, since)
	if err != nil {
		return nil, err
	}

	return alerting.Evaluate(stocks, articles, lots, consumption, uc.params, now), nil
}
