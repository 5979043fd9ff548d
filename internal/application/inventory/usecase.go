package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/tienda-backoffice/internal/domain"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/repository"
	"github.com/tu-usuario/tienda-backoffice/pkg/logger"
)

// StockLedgerUseCase registra movimientos de stock de forma transaccional:
// bloqueo de fila sobre la variante (SELECT FOR UPDATE), append del movimiento
// y actualización del stock derivado en la misma transacción.
type StockLedgerUseCase struct {
	txRunner    TxRunner
	variantRepo repository.VariantRepository
	movRepo     repository.StockMovementRepository
	log         *logger.Logger
}

// NewStockLedgerUseCase construye el caso de uso.
func NewStockLedgerUseCase(
	txRunner TxRunner,
	variantRepo repository.VariantRepository,
	movRepo repository.StockMovementRepository,
	log *logger.Logger,
) *StockLedgerUseCase {
	return &StockLedgerUseCase{
		txRunner:    txRunner,
		variantRepo: variantRepo,
		movRepo:     movRepo,
		log:         log,
	}
}

// MovementInput entrada para registrar un movimiento de stock.
// VariantID o ProductID (legacy sin variantes); Quantity firmada según la
// convención: negativa salida, positiva entrada.
type MovementInput struct {
	VariantID   string
	ProductID   string
	OrderItemID string // solo ventas: clave de idempotencia por línea de orden
	Type        entity.MovementType
	Quantity    int64
	Reason      string
	ActorID     string
}

// MovementResult resultado de aplicar un movimiento.
// Clamped indica que el stock habría quedado negativo y se fijó en 0
// (sobreventa detectada; se registra también en el log a nivel warn).
type MovementResult struct {
	Movement *entity.StockMovement
	NewStock int64
	Clamped  bool
}

func (in MovementInput) validate() error {
	if !in.Type.Valid() {
		return fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, in.Type)
	}
	if in.VariantID == "" && in.ProductID == "" {
		return fmt.Errorf("%w: variante o producto requerido", domain.ErrInvalidInput)
	}
	if in.Quantity == 0 {
		return fmt.Errorf("%w: cantidad cero", domain.ErrInvalidInput)
	}
	if in.Type.Inbound() && in.Quantity < 0 {
		return fmt.Errorf("%w: %s requiere cantidad positiva", domain.ErrInvalidInput, in.Type)
	}
	if in.Type.Outbound() && in.Quantity > 0 {
		return fmt.Errorf("%w: %s requiere cantidad negativa", domain.ErrInvalidInput, in.Type)
	}
	return nil
}

// RecordMovement inicia una transacción y aplica el movimiento (ApplyInTx).
func (uc *StockLedgerUseCase) RecordMovement(ctx context.Context, in MovementInput) (*MovementResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var res *MovementResult
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		variantRepo repository.VariantRepository,
		productRepo repository.ProductRepository,
	) error {
		r, err := uc.ApplyInTx(movRepo, variantRepo, productRepo, in, time.Now())
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ApplyInTx aplica un movimiento usando los repositorios proporcionados
// (misma transacción del caller). Lo usan también la liquidación de órdenes y
// el motor de devoluciones para encadenar movimientos dentro de su propia tx.
//
// Ventas con OrderItemID son idempotentes: si la línea ya tiene su movimiento
// de venta, no se registra un segundo y se devuelve el existente sin tocar el
// stock (deducción exactamente-una-vez). La verificación de existencia corre
// después de tomar el bloqueo de fila del destino, de modo que dos reintentos
// concurrentes de la misma línea se serialicen y solo uno inserte.
func (uc *StockLedgerUseCase) ApplyInTx(
	movRepo repository.StockMovementRepository,
	variantRepo repository.VariantRepository,
	productRepo repository.ProductRepository,
	in MovementInput,
	now time.Time,
) (*MovementResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	if in.VariantID != "" {
		return uc.applyToVariant(movRepo, variantRepo, productRepo, in, now)
	}
	return uc.applyToProduct(movRepo, variantRepo, productRepo, in, now)
}

// applyToVariant bloquea la variante, aplica el delta con clamp en 0 y agrega
// el movimiento. El movimiento registra el delta efectivamente aplicado, de
// modo que la invariante stock == Σ movimientos se mantiene incluso con clamp;
// la cantidad solicitada queda visible en la razón y en el warn log, y el
// flag Clamped en el resultado.
func (uc *StockLedgerUseCase) applyToVariant(
	movRepo repository.StockMovementRepository,
	variantRepo repository.VariantRepository,
	productRepo repository.ProductRepository,
	in MovementInput,
	now time.Time,
) (*MovementResult, error) {
	variant, err := variantRepo.GetForUpdate(in.VariantID)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, fmt.Errorf("%w: variante %s", domain.ErrNotFound, in.VariantID)
	}

	// Con la fila bloqueada, reintentos concurrentes de la misma línea ya se
	// serializaron: si el primero insertó su venta, aquí se ve.
	if in.Type == entity.MovementSale && in.OrderItemID != "" {
		existing, err := movRepo.GetSaleByOrderItem(in.OrderItemID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			stock := variant.Stock
			if existing.VariantID != variant.ID {
				stock, err = uc.currentStock(variantRepo, productRepo, existing)
				if err != nil {
					return nil, err
				}
			}
			return &MovementResult{Movement: existing, NewStock: stock}, nil
		}
	}

	newStock, clamped := applyDelta(variant.Stock, in.Quantity)
	applied := newStock - variant.Stock
	reason := in.Reason
	if clamped {
		uc.log.Warn().
			Str("variant_id", variant.ID).
			Int64("stock", variant.Stock).
			Int64("requested", in.Quantity).
			Int64("applied", applied).
			Str("type", string(in.Type)).
			Msg("movimiento dejaría stock negativo; se fija en 0 (posible sobreventa)")
		reason = appendClampNote(reason, in.Quantity, applied)
	}
	if err := variantRepo.UpdateStock(variant.ID, newStock); err != nil {
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:          uuid.New().String(),
		VariantID:   variant.ID,
		ProductID:   variant.ProductID,
		OrderItemID: in.OrderItemID,
		Type:        in.Type,
		Quantity:    applied,
		Reason:      reason,
		CreatedBy:   in.ActorID,
		CreatedAt:   now,
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	return &MovementResult{Movement: mov, NewStock: newStock, Clamped: clamped}, nil
}

// applyToProduct maneja productos legacy sin variantes. Una venta
// auto-provisiona la variante por defecto "Único/Único" (heredando el stock
// legacy) para que toda venta tenga exactamente una variante dueña; los demás
// tipos mutan el stock del producto con la misma regla de clamp.
func (uc *StockLedgerUseCase) applyToProduct(
	movRepo repository.StockMovementRepository,
	variantRepo repository.VariantRepository,
	productRepo repository.ProductRepository,
	in MovementInput,
	now time.Time,
) (*MovementResult, error) {
	product, err := productRepo.GetForUpdate(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
	}

	// El bloqueo del producto serializa los reintentos de venta legacy; la
	// verificación va antes del rechazo por variantes porque el primer intento
	// ya pudo auto-provisionar la variante por defecto.
	if in.Type == entity.MovementSale && in.OrderItemID != "" {
		existing, err := movRepo.GetSaleByOrderItem(in.OrderItemID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			stock, err := uc.currentStock(variantRepo, productRepo, existing)
			if err != nil {
				return nil, err
			}
			return &MovementResult{Movement: existing, NewStock: stock}, nil
		}
	}

	variants, err := variantRepo.ListByProduct(product.ID)
	if err != nil {
		return nil, err
	}
	if len(variants) > 0 {
		return nil, fmt.Errorf("%w: el producto %s tiene variantes; indicar variant_id", domain.ErrInvalidInput, product.ID)
	}

	if in.Type == entity.MovementSale {
		variant := &entity.ProductVariant{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			Size:      entity.DefaultVariantSize,
			Color:     entity.DefaultVariantColor,
			Stock:     product.Stock,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := variantRepo.Create(variant); err != nil {
			return nil, err
		}
		if err := productRepo.UpdateStock(product.ID, 0); err != nil {
			return nil, err
		}
		// El stock heredado entra al libro como corrección para que la suma
		// firmada de movimientos de la variante nueva iguale su stock.
		if product.Stock != 0 {
			seed := &entity.StockMovement{
				ID:        uuid.New().String(),
				VariantID: variant.ID,
				ProductID: product.ID,
				Type:      entity.MovementCorrection,
				Quantity:  product.Stock,
				Reason:    "migración de stock legacy a variante por defecto",
				CreatedBy: in.ActorID,
				CreatedAt: now,
			}
			if err := movRepo.Create(seed); err != nil {
				return nil, err
			}
		}
		withVariant := in
		withVariant.VariantID = variant.ID
		return uc.applyToVariant(movRepo, variantRepo, productRepo, withVariant, now)
	}

	newStock, clamped := applyDelta(product.Stock, in.Quantity)
	applied := newStock - product.Stock
	reason := in.Reason
	if clamped {
		uc.log.Warn().
			Str("product_id", product.ID).
			Int64("stock", product.Stock).
			Int64("requested", in.Quantity).
			Int64("applied", applied).
			Str("type", string(in.Type)).
			Msg("movimiento dejaría stock negativo; se fija en 0 (posible sobreventa)")
		reason = appendClampNote(reason, in.Quantity, applied)
	}
	if err := productRepo.UpdateStock(product.ID, newStock); err != nil {
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:        uuid.New().String(),
		ProductID: product.ID,
		Type:      in.Type,
		Quantity:  applied,
		Reason:    reason,
		CreatedBy: in.ActorID,
		CreatedAt: now,
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	return &MovementResult{Movement: mov, NewStock: newStock, Clamped: clamped}, nil
}

// appendClampNote anota en la razón del movimiento la cantidad solicitada
// original cuando el delta se recortó por el piso en 0.
func appendClampNote(reason string, requested, applied int64) string {
	note := fmt.Sprintf("solicitado %d, aplicado %d por piso en 0", requested, applied)
	if reason == "" {
		return note
	}
	return reason + "; " + note
}

// applyDelta aplica el delta firmado con piso en 0.
func applyDelta(stock, delta int64) (newStock int64, clamped bool) {
	newStock = stock + delta
	if newStock < 0 {
		return 0, true
	}
	return newStock, false
}

// currentStock lee el stock vigente del destino de un movimiento existente
// (variante o producto legacy) sin bloquear la fila.
func (uc *StockLedgerUseCase) currentStock(
	variantRepo repository.VariantRepository,
	productRepo repository.ProductRepository,
	mov *entity.StockMovement,
) (int64, error) {
	if mov.VariantID != "" {
		v, err := variantRepo.GetByID(mov.VariantID)
		if err != nil {
			return 0, err
		}
		if v == nil {
			return 0, fmt.Errorf("%w: variante %s", domain.ErrNotFound, mov.VariantID)
		}
		return v.Stock, nil
	}
	p, err := productRepo.GetByID(mov.ProductID)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, fmt.Errorf("%w: producto %s", domain.ErrNotFound, mov.ProductID)
	}
	return p.Stock, nil
}

// AdjustMode modos del ajuste rápido de stock.
type AdjustMode string

const (
	AdjustAdd    AdjustMode = "add"
	AdjustRemove AdjustMode = "remove"
	AdjustSet    AdjustMode = "set"
)

// QuickAdjustStock traduce el modo a un movimiento firmado y lo aplica.
// "set" calcula el delta contra el stock bloqueado y lo registra como
// corrección; si el delta es 0 no se agrega movimiento.
func (uc *StockLedgerUseCase) QuickAdjustStock(ctx context.Context, variantID string, mode AdjustMode, amount int64, reason, actorID string) (int64, error) {
	if variantID == "" {
		return 0, fmt.Errorf("%w: variante requerida", domain.ErrInvalidInput)
	}
	switch mode {
	case AdjustAdd, AdjustRemove:
		if amount <= 0 {
			return 0, fmt.Errorf("%w: cantidad debe ser positiva", domain.ErrInvalidInput)
		}
	case AdjustSet:
		if amount < 0 {
			return 0, fmt.Errorf("%w: stock objetivo no puede ser negativo", domain.ErrInvalidInput)
		}
	default:
		return 0, fmt.Errorf("%w: modo %q", domain.ErrInvalidInput, mode)
	}

	var newStock int64
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		variantRepo repository.VariantRepository,
		productRepo repository.ProductRepository,
	) error {
		variant, err := variantRepo.GetForUpdate(variantID)
		if err != nil {
			return err
		}
		if variant == nil {
			return fmt.Errorf("%w: variante %s", domain.ErrNotFound, variantID)
		}

		in := MovementInput{VariantID: variantID, Reason: reason, ActorID: actorID}
		switch mode {
		case AdjustAdd:
			in.Type = entity.MovementAdjustmentIn
			in.Quantity = amount
		case AdjustRemove:
			in.Type = entity.MovementAdjustmentOut
			in.Quantity = -amount
		case AdjustSet:
			delta := amount - variant.Stock
			if delta == 0 {
				newStock = variant.Stock
				return nil
			}
			in.Type = entity.MovementCorrection
			in.Quantity = delta
		}

		res, err := uc.ApplyInTx(movRepo, variantRepo, productRepo, in, time.Now())
		if err != nil {
			return err
		}
		newStock = res.NewStock
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newStock, nil
}

// ListMovements lista los movimientos de una variante en un rango de fechas.
func (uc *StockLedgerUseCase) ListMovements(ctx context.Context, variantID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	if variantID == "" {
		return nil, fmt.Errorf("%w: variante requerida", domain.ErrInvalidInput)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.movRepo.ListByVariant(variantID, from, to, limit, offset)
}

// VerifyStock verifica la invariante de conservación: el stock de la variante
// debe ser igual a la suma firmada de sus movimientos. Un desajuste se reporta
// como inconsistencia interna.
func (uc *StockLedgerUseCase) VerifyStock(ctx context.Context, variantID string) (stock, ledgerSum int64, err error) {
	variant, err := uc.variantRepo.GetByID(variantID)
	if err != nil {
		return 0, 0, err
	}
	if variant == nil {
		return 0, 0, fmt.Errorf("%w: variante %s", domain.ErrNotFound, variantID)
	}
	sum, err := uc.movRepo.SumByVariant(variantID)
	if err != nil {
		return 0, 0, err
	}
	if variant.Stock != sum {
		uc.log.Error().
			Str("variant_id", variantID).
			Int64("stock", variant.Stock).
			Int64("ledger_sum", sum).
			Msg("stock derivado no coincide con la suma del libro")
		return variant.Stock, sum, fmt.Errorf("%w: stock=%d suma=%d (variante %s)", domain.ErrInternal, variant.Stock, sum, variantID)
	}
	return variant.Stock, sum, nil
}
