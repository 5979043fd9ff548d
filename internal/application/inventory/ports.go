package inventory

import (
	"context"

	"github.com/tu-usuario/tienda-backoffice/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que el append del movimiento y la
// actualización del stock derivado sean una sola unidad atómica.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		variantRepo repository.VariantRepository,
		productRepo repository.ProductRepository,
	) error) error
}
