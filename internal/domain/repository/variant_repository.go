package repository

import "github.com/tu-usuario/tienda-backoffice/internal/domain/entity"

// VariantRepository define el puerto de persistencia para variantes de producto.
// UpdateStock solo debe invocarse dentro de la transacción que agrega el
// movimiento correspondiente (patrón libro-mayor-y-derivado).
type VariantRepository interface {
	GetByID(id string) (*entity.ProductVariant, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(id string) (*entity.ProductVariant, error)
	ListByProduct(productID string) ([]*entity.ProductVariant, error)
	Create(v *entity.ProductVariant) error
	UpdateStock(id string, stock int64) error
}

// ProductRepository define el puerto de persistencia para productos.
// El stock a nivel de producto solo aplica a productos legacy sin variantes.
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
	GetForUpdate(id string) (*entity.Product, error)
	UpdateStock(id string, stock int64) error
}
