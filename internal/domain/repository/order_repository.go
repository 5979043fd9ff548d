package repository

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia de órdenes y sus líneas.
// UpdateTotal y Delete solo deben invocarse desde la liquidación de órdenes,
// dentro de la transacción que mutó las líneas.
type OrderRepository interface {
	GetByID(id string) (*entity.Order, error)
	GetForUpdate(id string) (*entity.Order, error)
	UpdateTotal(id string, total decimal.Decimal) error
	Delete(id string) error

	ListItems(orderID string) ([]*entity.OrderItem, error)
	GetItem(itemID string) (*entity.OrderItem, error)
	CreateItem(item *entity.OrderItem) error
	UpdateItem(item *entity.OrderItem) error
	DeleteItem(itemID string) error
}
