package repository

import (
	"time"

	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del libro de stock.
// El libro es append-only: no hay Update ni Delete.
type StockMovementRepository interface {
	Create(m *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	// GetSaleByOrderItem devuelve el movimiento de venta de una línea de orden,
	// o nil si no existe. Soporta la deducción exactamente-una-vez por línea.
	GetSaleByOrderItem(orderItemID string) (*entity.StockMovement, error)
	ListByVariant(variantID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	// SumByVariant devuelve la suma firmada de todos los movimientos de la
	// variante (verificación de conservación de stock).
	SumByVariant(variantID string) (int64, error)
}
