package returns

import (
	"context"
	"time"

	"github.com/tu-usuario/tienda-backoffice/internal/application/inventory"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios del motor de devoluciones. Restock, crédito e historial deben
// aplicarse como una sola unidad atómica: cualquier fallo deja el registro en
// pending sin efectos parciales.
type TxRunner interface {
	RunReturns(ctx context.Context, fn func(
		returnRepo repository.ReturnRepository,
		movRepo repository.StockMovementRepository,
		variantRepo repository.VariantRepository,
		productRepo repository.ProductRepository,
		creditRepo repository.StoreCreditRepository,
		profileRepo repository.ProfileRepository,
		orderRepo repository.OrderRepository,
	) error) error
}

// StockLedger puerto hacia el libro de stock (misma transacción del caller).
type StockLedger interface {
	ApplyInTx(
		movRepo repository.StockMovementRepository,
		variantRepo repository.VariantRepository,
		productRepo repository.ProductRepository,
		in inventory.MovementInput,
		now time.Time,
	) (*inventory.MovementResult, error)
}

// NotificationLine línea incluida en la notificación externa.
type NotificationLine struct {
	VariantID string `json:"variant_id,omitempty"`
	ProductID string `json:"product_id,omitempty"`
	Quantity  int64  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// ReturnNotification datos para el webhook de devolución completada.
type ReturnNotification struct {
	ControlID      string             `json:"control_id"`
	Kind           string             `json:"kind"`
	OrderID        string             `json:"order_id,omitempty"`
	CustomerName   string             `json:"customer_name"`
	CustomerEmail  string             `json:"customer_email,omitempty"`
	CustomerPhone  string             `json:"customer_phone,omitempty"`
	AmountCredited string             `json:"amount_credited"`
	Reason         string             `json:"reason,omitempty"`
	Lines          []NotificationLine `json:"lines"`
}

// Notifier despacho asincrónico (fire-and-forget) hacia el colaborador
// externo. Se invoca después del commit; su fallo no revierte la devolución.
type Notifier interface {
	NotifyReturn(n ReturnNotification)
}

// CreditNoteGenerator genera la nota de crédito en PDF de una devolución completada.
type CreditNoteGenerator interface {
	Generate(record *entity.ReturnRecord, profile *entity.CustomerProfile, lines []*entity.ReturnLine) ([]byte, error)
}
