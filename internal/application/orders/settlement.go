package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/tienda-backoffice/internal/application/inventory"
	"github.com/tu-usuario/tienda-backoffice/internal/domain"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/repository"
	"github.com/tu-usuario/tienda-backoffice/pkg/logger"
)

// SettlementUseCase mantiene el total de la orden sincronizado con sus líneas
// y encadena los movimientos de stock de ventas y cambios. El total es campo
// derivado: total = max(0, Σ línea − crédito aplicado − descuento por método
// de pago), recalculado tras cada mutación de líneas en la misma transacción.
type SettlementUseCase struct {
	txRunner  TxRunner
	ledger    StockLedger
	orderRepo repository.OrderRepository
	notifier  Notifier
	log       *logger.Logger
}

// NewSettlementUseCase construye el caso de uso.
func NewSettlementUseCase(
	txRunner TxRunner,
	ledger StockLedger,
	orderRepo repository.OrderRepository,
	notifier Notifier,
	log *logger.Logger,
) *SettlementUseCase {
	return &SettlementUseCase{
		txRunner:  txRunner,
		ledger:    ledger,
		orderRepo: orderRepo,
		notifier:  notifier,
		log:       log,
	}
}

// RecalculateTotal recalcula el total de la orden a partir de sus líneas.
// Si la orden quedó sin líneas se borra en lugar de persistirla en cero.
// Devuelve el total nuevo y si la orden fue borrada.
func (uc *SettlementUseCase) RecalculateTotal(ctx context.Context, orderID string) (decimal.Decimal, bool, error) {
	var total decimal.Decimal
	var deleted bool
	err := uc.txRunner.RunOrders(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.StockMovementRepository,
		_ repository.VariantRepository,
		_ repository.ProductRepository,
		_ repository.StoreCreditRepository,
		_ repository.ProfileRepository,
	) error {
		t, d, err := uc.recalcInTx(orderRepo, orderID)
		if err != nil {
			return err
		}
		total, deleted = t, d
		return nil
	})
	if err != nil {
		return decimal.Zero, false, err
	}
	return total, deleted, nil
}

// recalcInTx lee las líneas vigentes, escribe el total derivado y borra la
// orden si quedó vacía. Debe correr con la fila de la orden bloqueada.
func (uc *SettlementUseCase) recalcInTx(orderRepo repository.OrderRepository, orderID string) (decimal.Decimal, bool, error) {
	order, err := orderRepo.GetForUpdate(orderID)
	if err != nil {
		return decimal.Zero, false, err
	}
	if order == nil {
		return decimal.Zero, false, fmt.Errorf("%w: orden %s", domain.ErrNotFound, orderID)
	}

	items, err := orderRepo.ListItems(orderID)
	if err != nil {
		return decimal.Zero, false, err
	}
	if len(items) == 0 {
		if err := orderRepo.Delete(orderID); err != nil {
			return decimal.Zero, false, err
		}
		uc.log.Info().Str("order_id", orderID).Msg("orden sin líneas borrada tras recálculo")
		return decimal.Zero, true, nil
	}

	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}
	total := subtotal.Sub(order.CreditApplied).Sub(order.PaymentDiscount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	if err := orderRepo.UpdateTotal(orderID, total); err != nil {
		return decimal.Zero, false, err
	}
	return total, false, nil
}

// AddItemInput entrada para agregar una línea a una orden.
// UnitPrice nil toma el precio vigente de la variante como snapshot.
type AddItemInput struct {
	OrderID   string
	VariantID string
	Quantity  int64
	UnitPrice *decimal.Decimal
	Metadata  entity.OrderItemMetadata
	ActorID   string
}

// AddItem crea la línea, registra su movimiento de venta (exactamente uno por
// línea) y recalcula el total, todo en una transacción.
func (uc *SettlementUseCase) AddItem(ctx context.Context, in AddItemInput) (*entity.OrderItem, decimal.Decimal, error) {
	if in.OrderID == "" || in.VariantID == "" {
		return nil, decimal.Zero, fmt.Errorf("%w: orden y variante requeridas", domain.ErrInvalidInput)
	}
	if in.Quantity < 1 {
		return nil, decimal.Zero, fmt.Errorf("%w: cantidad debe ser >= 1", domain.ErrInvalidInput)
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return nil, decimal.Zero, fmt.Errorf("%w: precio unitario negativo", domain.ErrInvalidInput)
	}

	now := time.Now()
	var item *entity.OrderItem
	var total decimal.Decimal
	err := uc.txRunner.RunOrders(ctx, func(
		orderRepo repository.OrderRepository,
		movRepo repository.StockMovementRepository,
		variantRepo repository.VariantRepository,
		productRepo repository.ProductRepository,
		_ repository.StoreCreditRepository,
		_ repository.ProfileRepository,
	) error {
		order, err := orderRepo.GetForUpdate(in.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: orden %s", domain.ErrNotFound, in.OrderID)
		}

		variant, err := variantRepo.GetByID(in.VariantID)
		if err != nil {
			return err
		}
		if variant == nil {
			return fmt.Errorf("%w: variante %s", domain.ErrNotFound, in.VariantID)
		}

		unitPrice := decimal.Zero
		if in.UnitPrice != nil {
			unitPrice = *in.UnitPrice
		} else {
			product, err := productRepo.GetByID(variant.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: producto %s", domain.ErrNotFound, variant.ProductID)
			}
			unitPrice = variant.EffectivePrice(product)
		}

		item = &entity.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   in.OrderID,
			VariantID: in.VariantID,
			ProductID: variant.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: unitPrice,
			Metadata:  in.Metadata,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := orderRepo.CreateItem(item); err != nil {
			return err
		}

		// Venta: un único movimiento de salida por línea (clave OrderItemID).
		_, err = uc.ledger.ApplyInTx(movRepo, variantRepo, productRepo, inventory.MovementInput{
			VariantID:   in.VariantID,
			OrderItemID: item.ID,
			Type:        entity.MovementSale,
			Quantity:    -in.Quantity,
			Reason:      fmt.Sprintf("venta orden %s", in.OrderID),
			ActorID:     in.ActorID,
		}, now)
		if err != nil {
			return err
		}

		total, _, err = uc.recalcInTx(orderRepo, in.OrderID)
		return err
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	return item, total, nil
}

// UpdateItemInput campos editables de una línea por el administrador.
// Los punteros nil dejan el campo como está.
type UpdateItemInput struct {
	ItemID    string
	Quantity  *int64
	UnitPrice *decimal.Decimal
	Metadata  *entity.OrderItemMetadata
}

// UpdateItem edita cantidad/precio/metadatos de la línea y recalcula el total.
// No re-dispara movimientos de stock: las correcciones de inventario por
// ediciones manuales se registran con el ajuste rápido.
func (uc *SettlementUseCase) UpdateItem(ctx context.Context, in UpdateItemInput) (decimal.Decimal, error) {
	if in.ItemID == "" {
		return decimal.Zero, fmt.Errorf("%w: línea requerida", domain.ErrInvalidInput)
	}
	if in.Quantity != nil && *in.Quantity < 1 {
		return decimal.Zero, fmt.Errorf("%w: cantidad debe ser >= 1", domain.ErrInvalidInput)
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: precio unitario negativo", domain.ErrInvalidInput)
	}

	var total decimal.Decimal
	err := uc.txRunner.RunOrders(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.StockMovementRepository,
		_ repository.VariantRepository,
		_ repository.ProductRepository,
		_ repository.StoreCreditRepository,
		_ repository.ProfileRepository,
	) error {
		item, err := orderRepo.GetItem(in.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: línea %s", domain.ErrNotFound, in.ItemID)
		}
		if in.Quantity != nil {
			item.Quantity = *in.Quantity
		}
		if in.UnitPrice != nil {
			item.UnitPrice = *in.UnitPrice
		}
		if in.Metadata != nil {
			item.Metadata = *in.Metadata
		}
		item.UpdatedAt = time.Now()
		if err := orderRepo.UpdateItem(item); err != nil {
			return err
		}
		total, _, err = uc.recalcInTx(orderRepo, item.OrderID)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// RemoveItem borra la línea y recalcula; si era la última, la orden se borra.
// Devuelve el total nuevo y si la orden fue borrada.
func (uc *SettlementUseCase) RemoveItem(ctx context.Context, itemID string) (decimal.Decimal, bool, error) {
	if itemID == "" {
		return decimal.Zero, false, fmt.Errorf("%w: línea requerida", domain.ErrInvalidInput)
	}
	var total decimal.Decimal
	var orderDeleted bool
	err := uc.txRunner.RunOrders(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.StockMovementRepository,
		_ repository.VariantRepository,
		_ repository.ProductRepository,
		_ repository.StoreCreditRepository,
		_ repository.ProfileRepository,
	) error {
		item, err := orderRepo.GetItem(itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: línea %s", domain.ErrNotFound, itemID)
		}
		if err := orderRepo.DeleteItem(itemID); err != nil {
			return err
		}
		total, orderDeleted, err = uc.recalcInTx(orderRepo, item.OrderID)
		return err
	})
	if err != nil {
		return decimal.Zero, false, err
	}
	return total, orderDeleted, nil
}
