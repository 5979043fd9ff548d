package repository

import "github.com/tu-usuario/tienda-backoffice/internal/domain/entity"

// ReturnRepository define el puerto de persistencia de devoluciones y cambios.
type ReturnRepository interface {
	Create(r *entity.ReturnRecord) error
	GetByID(id string) (*entity.ReturnRecord, error)
	// GetForUpdate bloquea el registro para la transición de estado
	// (evita que dos operadores completen la misma devolución).
	GetForUpdate(id string) (*entity.ReturnRecord, error)
	Update(r *entity.ReturnRecord) error
	List(status entity.ReturnStatus, limit, offset int) ([]*entity.ReturnRecord, error)

	CreateLine(l *entity.ReturnLine) error
	GetLines(returnID string) ([]*entity.ReturnLine, error)
}
