package repository

import "github.com/jhoicas/labstock-api/internal/domain/entity"

// StockRepository define el puerto del registro agregado por (empresa, artículo).
// GetForUpdateByArticle bloquea la fila (SELECT FOR UPDATE) y se usa dentro de
// la transacción de asignación para serializar consumos del mismo artículo.
// Upsert escribe en stock.ID el id de la fila que quedó persistida: ante un
// conflicto por (empresa, artículo) la entidad adopta el id de la fila existente.
type StockRepository interface {
	GetByArticle(companyID, articleID string) (*entity.Stock, error)
	GetForUpdateByArticle(companyID, articleID string) (*entity.Stock, error)
	Upsert(stock *entity.Stock) error
	ListByCompany(companyID string) ([]*entity.Stock, error)
}
