package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, company_id, article_id, code, initial_quantity, remaining_quantity,
		entry_date, expiration_date, unit_price, lot_number, supplier, comment, created_at, deleted_at`

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// Create persiste un lote nuevo.
func (r *LotRepo) Create(lot *entity.Lot) error {
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	query := `
		INSERT INTO lots (id, company_id, article_id, code, initial_quantity, remaining_quantity,
			entry_date, expiration_date, unit_price, lot_number, supplier, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		lot.ID, lot.CompanyID, lot.ArticleID, lot.Code, lot.InitialQuantity, lot.RemainingQuantity,
		lot.EntryDate, lot.ExpirationDate, lot.UnitPrice, lot.LotNumber, lot.Supplier, lot.Comment, lot.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID (incluye borrados lógicos).
func (r *LotRepo) GetByID(id string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1`
	lot, err := scanLot(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return lot, nil
}

// ListByArticle lista los lotes no borrados de un artículo, por fecha de entrada.
func (r *LotRepo) ListByArticle(companyID, articleID string) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + `
		FROM lots WHERE company_id = $1 AND article_id = $2 AND deleted_at IS NULL
		ORDER BY entry_date, id`
	return r.list(query, companyID, articleID)
}

// ListByCompany lista todos los lotes no borrados de la empresa.
func (r *LotRepo) ListByCompany(companyID string) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + `
		FROM lots WHERE company_id = $1 AND deleted_at IS NULL
		ORDER BY article_id, entry_date, id`
	return r.list(query, companyID)
}

// LockForArticle bloquea (SELECT FOR UPDATE) los lotes candidatos del artículo:
// remanente > 0 y no borrados. El ORDER BY id fija un orden de bloqueo estable
// entre transacciones concurrentes y evita deadlocks.
func (r *LotRepo) LockForArticle(companyID, articleID string) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + `
		FROM lots
		WHERE company_id = $1 AND article_id = $2 AND deleted_at IS NULL AND remaining_quantity > 0
		ORDER BY id
		FOR UPDATE`
	return r.list(query, companyID, articleID)
}

// LockByIDs bloquea exactamente los lotes indicados (política manual), en orden de ID.
func (r *LotRepo) LockByIDs(companyID string, ids []string) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + `
		FROM lots
		WHERE company_id = $1 AND id = ANY($2) AND deleted_at IS NULL
		ORDER BY id
		FOR UPDATE`
	return r.list(query, companyID, ids)
}

// UpdateRemaining fija el remanente de un lote. Solo lo invoca el motor de
// asignación con la fila ya bloqueada.
func (r *LotRepo) UpdateRemaining(lotID string, remaining decimal.Decimal) error {
	query := `UPDATE lots SET remaining_quantity = $2 WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query, lotID, remaining)
	if err != nil {
		return fmt.Errorf("update lot remaining: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SumRemainingByArticle suma el remanente de los lotes no borrados del artículo.
func (r *LotRepo) SumRemainingByArticle(companyID, articleID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(remaining_quantity), 0)
		FROM lots WHERE company_id = $1 AND article_id = $2 AND deleted_at IS NULL`
	var total decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, companyID, articleID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum remaining: %w", err)
	}
	return total, nil
}

// SoftDelete marca el lote como borrado lógico.
func (r *LotRepo) SoftDelete(lotID string, at time.Time) error {
	query := `UPDATE lots SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	cmd, err := r.q.Exec(context.Background(), query, lotID, at)
	if err != nil {
		return fmt.Errorf("soft delete lot: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// HardDelete elimina físicamente el lote. La guarda de movimientos la aplica
// el caso de uso antes de llegar acá.
func (r *LotRepo) HardDelete(lotID string) error {
	query := `DELETE FROM lots WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query, lotID)
	if err != nil {
		return fmt.Errorf("hard delete lot: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *LotRepo) list(query string, args ...any) ([]*entity.Lot, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, lot)
	}
	return list, rows.Err()
}

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var l entity.Lot
	err := row.Scan(
		&l.ID, &l.CompanyID, &l.ArticleID, &l.Code, &l.InitialQuantity, &l.RemainingQuantity,
		&l.EntryDate, &l.ExpirationDate, &l.UnitPrice, &l.LotNumber, &l.Supplier, &l.Comment,
		&l.CreatedAt, &l.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
