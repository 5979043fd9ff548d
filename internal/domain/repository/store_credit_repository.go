package repository

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
)

// StoreCreditRepository define el puerto del libro de crédito de tienda (append-only).
type StoreCreditRepository interface {
	Create(e *entity.StoreCreditEntry) error
	ListByProfile(profileID string, limit, offset int) ([]*entity.StoreCreditEntry, error)
}

// ProfileRepository define el puerto de perfiles de cliente.
// UpdateCredit solo debe invocarse junto con un StoreCreditEntry, en la misma transacción.
type ProfileRepository interface {
	GetByID(id string) (*entity.CustomerProfile, error)
	GetForUpdate(id string) (*entity.CustomerProfile, error)
	UpdateCredit(id string, credit decimal.Decimal) error
}
