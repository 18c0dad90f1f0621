package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, company_id, code, stock_id, lot_id, type, quantity, unit_price,
		date, reason, reference, created_at, created_by`

// MovementRepo implementación de MovementRepository sobre PostgreSQL (usable con pool o tx).
// El libro es append-only: no hay UPDATE ni DELETE acá.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento de stock.
func (r *MovementRepo) Create(movement *entity.Movement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movements (id, company_id, code, stock_id, lot_id, type, quantity, unit_price,
			date, reason, reference, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	createdBy := (*string)(nil)
	if movement.CreatedBy != "" {
		createdBy = &movement.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.CompanyID, movement.Code, movement.StockID, movement.LotID,
		movement.Type, movement.Quantity, movement.UnitPrice,
		movement.Date, movement.Reason, movement.Reference, movement.CreatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// ListByArticle lista los movimientos de un artículo en un rango de fechas,
// vía su registro agregado.
func (r *MovementRepo) ListByArticle(companyID, articleID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	query := `
		SELECT m.id, m.company_id, m.code, m.stock_id, m.lot_id, m.type, m.quantity, m.unit_price,
			m.date, m.reason, m.reference, m.created_at, m.created_by
		FROM movements m
		JOIN stocks s ON s.id = m.stock_id
		WHERE m.company_id = $1 AND s.article_id = $2`
	args := []any{companyID, articleID}
	pos := 3
	if from != nil {
		query += fmt.Sprintf(" AND m.date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND m.date <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY m.date DESC, m.created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)
	return r.list(query, args...)
}

// ListByLot lista los movimientos que referencian un lote.
func (r *MovementRepo) ListByLot(lotID string, limit, offset int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + `
		FROM movements WHERE lot_id = $1
		ORDER BY date DESC, created_at DESC LIMIT $2 OFFSET $3`
	return r.list(query, lotID, limit, offset)
}

// LastDateForLot devuelve la fecha del movimiento más reciente del lote (nil si no tiene).
func (r *MovementRepo) LastDateForLot(lotID string) (*time.Time, error) {
	query := `SELECT MAX(created_at) FROM movements WHERE lot_id = $1`
	var last *time.Time
	err := r.q.QueryRow(context.Background(), query, lotID).Scan(&last)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last movement date: %w", err)
	}
	return last, nil
}

// CountForLot cuenta los movimientos que referencian al lote.
func (r *MovementRepo) CountForLot(lotID string) (int64, error) {
	query := `SELECT COUNT(*) FROM movements WHERE lot_id = $1`
	var count int64
	if err := r.q.QueryRow(context.Background(), query, lotID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count movements: %w", err)
	}
	return count, nil
}

// ExitTotalsSince suma las salidas por artículo desde la fecha dada.
func (r *MovementRepo) ExitTotalsSince(companyID string, since time.Time) (map[string]decimal.Decimal, error) {
	query := `
		SELECT s.article_id, COALESCE(SUM(m.quantity), 0)
		FROM movements m
		JOIN stocks s ON s.id = m.stock_id
		WHERE m.company_id = $1 AND m.type = $2 AND m.date >= $3
		GROUP BY s.article_id`
	rows, err := r.q.Query(context.Background(), query, companyID, entity.MovementTypeExit, since)
	if err != nil {
		return nil, fmt.Errorf("exit totals: %w", err)
	}
	defer rows.Close()
	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var articleID string
		var total decimal.Decimal
		if err := rows.Scan(&articleID, &total); err != nil {
			return nil, fmt.Errorf("scan exit total: %w", err)
		}
		totals[articleID] = total
	}
	return totals, rows.Err()
}

func (r *MovementRepo) list(query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		var createdBy *string
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.Code, &m.StockID, &m.LotID, &m.Type,
			&m.Quantity, &m.UnitPrice, &m.Date, &m.Reason, &m.Reference, &m.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if createdBy != nil {
			m.CreatedBy = *createdBy
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
