package orders

import (
	"context"
	"time"

	"github.com/tu-usuario/tienda-backoffice/internal/application/inventory"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios que necesita la liquidación de órdenes (líneas, movimientos,
// crédito de tienda para cambios).
type TxRunner interface {
	RunOrders(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		movRepo repository.StockMovementRepository,
		variantRepo repository.VariantRepository,
		productRepo repository.ProductRepository,
		creditRepo repository.StoreCreditRepository,
		profileRepo repository.ProfileRepository,
	) error) error
}

// StockLedger puerto hacia el libro de stock: aplicar un movimiento dentro de
// la transacción del caller. Lo implementa inventory.StockLedgerUseCase.
type StockLedger interface {
	ApplyInTx(
		movRepo repository.StockMovementRepository,
		variantRepo repository.VariantRepository,
		productRepo repository.ProductRepository,
		in inventory.MovementInput,
		now time.Time,
	) (*inventory.MovementResult, error)
}

// ExchangeNotification datos para notificar un cambio al colaborador externo.
type ExchangeNotification struct {
	OrderID       string
	OrderItemID   string
	ProfileID     string
	FromVariantID string
	ToVariantID   string
	Quantity      int64
	CreditIssued  string // monto decimal como string, vacío si no hubo crédito
	Reason        string
}

// Notifier despacho asincrónico de notificaciones de cambio (fire-and-forget):
// se invoca después del commit y su resultado no afecta la operación.
type Notifier interface {
	NotifyExchange(n ExchangeNotification)
}
