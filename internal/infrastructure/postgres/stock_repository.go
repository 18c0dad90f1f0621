package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// GetByArticle obtiene el registro agregado de un artículo (nil si no existe).
func (r *StockRepo) GetByArticle(companyID, articleID string) (*entity.Stock, error) {
	query := `
		SELECT id, company_id, article_id, current_quantity, critical_threshold, updated_at
		FROM stocks WHERE company_id = $1 AND article_id = $2`
	return r.get(query, companyID, articleID)
}

// GetForUpdateByArticle obtiene el registro agregado y bloquea la fila
// (SELECT FOR UPDATE). Serializa las asignaciones concurrentes del artículo.
func (r *StockRepo) GetForUpdateByArticle(companyID, articleID string) (*entity.Stock, error) {
	query := `
		SELECT id, company_id, article_id, current_quantity, critical_threshold, updated_at
		FROM stocks WHERE company_id = $1 AND article_id = $2
		FOR UPDATE`
	return r.get(query, companyID, articleID)
}

// Upsert inserta o actualiza el registro agregado (por empresa y artículo).
// Devuelve en stock.ID el id de la fila que quedó en la tabla: si dos
// transacciones concurrentes insertan la primera fila del artículo, la
// perdedora del conflicto hereda el id de la ganadora y los movimientos que
// asiente después referencian una fila que sí existe.
func (r *StockRepo) Upsert(stock *entity.Stock) error {
	query := `
		INSERT INTO stocks (id, company_id, article_id, current_quantity, critical_threshold, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (company_id, article_id)
		DO UPDATE SET current_quantity = EXCLUDED.current_quantity,
			critical_threshold = EXCLUDED.critical_threshold,
			updated_at = EXCLUDED.updated_at
		RETURNING id`
	err := r.q.QueryRow(context.Background(), query,
		stock.ID, stock.CompanyID, stock.ArticleID, stock.CurrentQuantity, stock.CriticalThreshold, stock.UpdatedAt,
	).Scan(&stock.ID)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// ListByCompany lista los registros agregados de la empresa.
func (r *StockRepo) ListByCompany(companyID string) ([]*entity.Stock, error) {
	query := `
		SELECT id, company_id, article_id, current_quantity, critical_threshold, updated_at
		FROM stocks WHERE company_id = $1 ORDER BY article_id`
	rows, err := r.q.Query(context.Background(), query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	defer rows.Close()
	var list []*entity.Stock
	for rows.Next() {
		var s entity.Stock
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.ArticleID, &s.CurrentQuantity, &s.CriticalThreshold, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

func (r *StockRepo) get(query, companyID, articleID string) (*entity.Stock, error) {
	var s entity.Stock
	err := r.q.QueryRow(context.Background(), query, companyID, articleID).Scan(
		&s.ID, &s.CompanyID, &s.ArticleID, &s.CurrentQuantity, &s.CriticalThreshold, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}
