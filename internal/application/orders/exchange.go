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
)

// ExchangeInput entrada para cambiar una línea de orden por otra variante.
type ExchangeInput struct {
	OrderID      string
	OrderItemID  string
	NewVariantID string
	NewQuantity  int64
	Reason       string
	ActorID      string
}

// ExchangeResult resultado del cambio.
type ExchangeResult struct {
	NewTotal        decimal.Decimal
	CreditGenerated decimal.Decimal // 0 si la nueva línea cuesta igual o más
}

// ExchangeOrderItem cambia una línea por otra variante en una sola transacción:
// (a) entrada de stock de la variante devuelta, (b) salida de la nueva,
// (c) si la nueva línea cuesta menos, la diferencia se acredita como crédito
// de tienda, (d) la línea se muta en sitio con procedencia en metadatos
// (exchanged_from, original_price) para conservar la traza, (e) recálculo del
// total. La línea original nunca se borra.
func (uc *SettlementUseCase) ExchangeOrderItem(ctx context.Context, in ExchangeInput) (*ExchangeResult, error) {
	if in.OrderID == "" || in.OrderItemID == "" || in.NewVariantID == "" {
		return nil, fmt.Errorf("%w: orden, línea y variante nueva requeridas", domain.ErrInvalidInput)
	}
	if in.NewQuantity < 1 {
		return nil, fmt.Errorf("%w: cantidad debe ser >= 1", domain.ErrInvalidInput)
	}

	now := time.Now()
	res := &ExchangeResult{CreditGenerated: decimal.Zero}
	var notif *ExchangeNotification

	err := uc.txRunner.RunOrders(ctx, func(
		orderRepo repository.OrderRepository,
		movRepo repository.StockMovementRepository,
		variantRepo repository.VariantRepository,
		productRepo repository.ProductRepository,
		creditRepo repository.StoreCreditRepository,
		profileRepo repository.ProfileRepository,
	) error {
		order, err := orderRepo.GetForUpdate(in.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: orden %s", domain.ErrNotFound, in.OrderID)
		}
		item, err := orderRepo.GetItem(in.OrderItemID)
		if err != nil {
			return err
		}
		if item == nil || item.OrderID != in.OrderID {
			return fmt.Errorf("%w: línea %s en orden %s", domain.ErrNotFound, in.OrderItemID, in.OrderID)
		}
		if item.VariantID == in.NewVariantID && item.Quantity == in.NewQuantity {
			return fmt.Errorf("%w: el cambio no modifica la línea", domain.ErrInvalidInput)
		}

		newVariant, err := variantRepo.GetByID(in.NewVariantID)
		if err != nil {
			return err
		}
		if newVariant == nil {
			return fmt.Errorf("%w: variante %s", domain.ErrNotFound, in.NewVariantID)
		}
		newProduct, err := productRepo.GetByID(newVariant.ProductID)
		if err != nil {
			return err
		}
		if newProduct == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, newVariant.ProductID)
		}

		oldLineTotal := item.LineTotal()
		oldVariantID := item.VariantID
		oldUnitPrice := item.UnitPrice

		// (a) vuelve la variante original al stock
		returnIn := inventory.MovementInput{
			VariantID: oldVariantID,
			ProductID: item.ProductID,
			Type:      entity.MovementExchange,
			Quantity:  item.Quantity,
			Reason:    fmt.Sprintf("cambio línea %s: entrada SKU original", item.ID),
			ActorID:   in.ActorID,
		}
		if _, err := uc.ledger.ApplyInTx(movRepo, variantRepo, productRepo, returnIn, now); err != nil {
			return err
		}

		// (b) sale la variante nueva
		outIn := inventory.MovementInput{
			VariantID: in.NewVariantID,
			Type:      entity.MovementExchange,
			Quantity:  -in.NewQuantity,
			Reason:    fmt.Sprintf("cambio línea %s: salida SKU nuevo", item.ID),
			ActorID:   in.ActorID,
		}
		if _, err := uc.ledger.ApplyInTx(movRepo, variantRepo, productRepo, outIn, now); err != nil {
			return err
		}

		// (c) diferencia de precio a favor del cliente → crédito de tienda
		newUnitPrice := newVariant.EffectivePrice(newProduct)
		newLineTotal := newUnitPrice.Mul(decimal.NewFromInt(in.NewQuantity))
		priceDifference := oldLineTotal.Sub(newLineTotal)
		if priceDifference.IsPositive() {
			if order.ProfileID == "" {
				uc.log.Warn().
					Str("order_id", order.ID).
					Str("order_item_id", item.ID).
					Str("difference", priceDifference.String()).
					Msg("cambio con diferencia a favor pero la orden no tiene cliente; no se emite crédito")
			} else {
				profile, err := profileRepo.GetForUpdate(order.ProfileID)
				if err != nil {
					return err
				}
				if profile == nil {
					return fmt.Errorf("%w: perfil %s", domain.ErrNotFound, order.ProfileID)
				}
				entry := &entity.StoreCreditEntry{
					ID:        uuid.New().String(),
					ProfileID: profile.ID,
					Amount:    priceDifference,
					Type:      entity.CreditExchange,
					Reason:    fmt.Sprintf("diferencia por cambio en orden %s", order.ID),
					OrderID:   order.ID,
					CreatedBy: in.ActorID,
					CreatedAt: now,
				}
				if err := creditRepo.Create(entry); err != nil {
					return err
				}
				if err := profileRepo.UpdateCredit(profile.ID, profile.StoreCredit.Add(priceDifference)); err != nil {
					return err
				}
				res.CreditGenerated = priceDifference
			}
		}

		// (d) mutar la línea en sitio, guardando procedencia
		if item.Metadata.ExchangedFrom == "" {
			item.Metadata.ExchangedFrom = oldVariantID
			op := oldUnitPrice
			item.Metadata.OriginalPrice = &op
		}
		item.VariantID = in.NewVariantID
		item.ProductID = newVariant.ProductID
		item.Quantity = in.NewQuantity
		item.UnitPrice = newUnitPrice
		item.UpdatedAt = now
		if err := orderRepo.UpdateItem(item); err != nil {
			return err
		}

		// (e) recálculo del total
		total, _, err := uc.recalcInTx(orderRepo, order.ID)
		if err != nil {
			return err
		}
		res.NewTotal = total

		credit := ""
		if res.CreditGenerated.IsPositive() {
			credit = res.CreditGenerated.String()
		}
		notif = &ExchangeNotification{
			OrderID:       order.ID,
			OrderItemID:   item.ID,
			ProfileID:     order.ProfileID,
			FromVariantID: oldVariantID,
			ToVariantID:   in.NewVariantID,
			Quantity:      in.NewQuantity,
			CreditIssued:  credit,
			Reason:        in.Reason,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Notificación después del commit; su fallo no afecta el cambio.
	if notif != nil && uc.notifier != nil {
		uc.notifier.NotifyExchange(*notif)
	}
	return res, nil
}
