package repository

import "github.com/jhoicas/labstock-api/internal/domain/entity"

// ArticleRepository define el puerto de lectura del catálogo de artículos.
// El alta/edición de artículos es responsabilidad del módulo de catálogo
// (externo); el motor de stock solo valida existencia y pertenencia.
type ArticleRepository interface {
	GetByID(id string) (*entity.Article, error)
	ListByCompany(companyID string) ([]*entity.Article, error)
}
