package repository

import "github.com/tu-usuario/tienda-backoffice/internal/domain/entity"

// UserRepository define el puerto de operadores del back office.
type UserRepository interface {
	GetByEmail(email string) (*entity.User, error)
	Create(u *entity.User) error
}
