package returns

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/tienda-backoffice/internal/application/inventory"
	"github.com/tu-usuario/tienda-backoffice/internal/domain"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/repository"
	"github.com/tu-usuario/tienda-backoffice/pkg/logger"
)

// ReturnsUseCase compensa ventas completadas: repone stock vía el libro de
// movimientos, emite crédito de tienda y registra el historial, todo como una
// unidad atómica. La notificación externa se despacha después del commit.
type ReturnsUseCase struct {
	txRunner    TxRunner
	ledger      StockLedger
	returnRepo  repository.ReturnRepository
	profileRepo repository.ProfileRepository
	notifier    Notifier
	pdf         CreditNoteGenerator
	log         *logger.Logger
}

// NewReturnsUseCase construye el caso de uso.
func NewReturnsUseCase(
	txRunner TxRunner,
	ledger StockLedger,
	returnRepo repository.ReturnRepository,
	profileRepo repository.ProfileRepository,
	notifier Notifier,
	pdf CreditNoteGenerator,
	log *logger.Logger,
) *ReturnsUseCase {
	return &ReturnsUseCase{
		txRunner:    txRunner,
		ledger:      ledger,
		returnRepo:  returnRepo,
		profileRepo: profileRepo,
		notifier:    notifier,
		pdf:         pdf,
		log:         log,
	}
}

// newControlID genera el identificador legible que correlaciona la devolución
// con la orden y los mensajes externos, ej. "DEV-3F2A9C41".
func newControlID() string {
	return "DEV-" + strings.ToUpper(uuid.New().String()[:8])
}

// ReturnLineInput línea de una devolución a crear.
type ReturnLineInput struct {
	VariantID   string
	ProductID   string
	OrderItemID string
	Quantity    int64
	UnitPrice   decimal.Decimal
}

// CreateInput entrada para crear un registro de devolución en pending.
type CreateInput struct {
	ProfileID string
	OrderID   string
	Reason    string
	Lines     []ReturnLineInput
	ActorID   string
}

// CreateReturnRecord crea el registro en estado pending, sin efectos sobre
// stock ni crédito (esos ocurren al completar).
func (uc *ReturnsUseCase) CreateReturnRecord(ctx context.Context, in CreateInput) (*entity.ReturnRecord, error) {
	if in.ProfileID == "" {
		return nil, fmt.Errorf("%w: perfil requerido", domain.ErrInvalidInput)
	}
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: al menos una línea", domain.ErrInvalidInput)
	}
	for _, l := range in.Lines {
		if l.VariantID == "" && l.ProductID == "" {
			return nil, fmt.Errorf("%w: línea sin variante ni producto", domain.ErrInvalidInput)
		}
		if l.Quantity < 1 {
			return nil, fmt.Errorf("%w: cantidad debe ser >= 1", domain.ErrInvalidInput)
		}
		if l.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: precio unitario negativo", domain.ErrInvalidInput)
		}
	}

	profile, err := uc.profileRepo.GetByID(in.ProfileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: perfil %s", domain.ErrNotFound, in.ProfileID)
	}

	now := time.Now()
	record := &entity.ReturnRecord{
		ID:             uuid.New().String(),
		ControlID:      newControlID(),
		Kind:           entity.ReturnKindReturn,
		OrderID:        in.OrderID,
		ProfileID:      in.ProfileID,
		Status:         entity.ReturnPending,
		Reason:         in.Reason,
		AmountCredited: decimal.Zero,
		CreatedBy:      in.ActorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = uc.txRunner.RunReturns(ctx, func(
		returnRepo repository.ReturnRepository,
		_ repository.StockMovementRepository,
		_ repository.VariantRepository,
		_ repository.ProductRepository,
		_ repository.StoreCreditRepository,
		_ repository.ProfileRepository,
		_ repository.OrderRepository,
	) error {
		if err := returnRepo.Create(record); err != nil {
			return err
		}
		for _, l := range in.Lines {
			line := &entity.ReturnLine{
				ID:          uuid.New().String(),
				ReturnID:    record.ID,
				VariantID:   l.VariantID,
				ProductID:   l.ProductID,
				OrderItemID: l.OrderItemID,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
			}
			if err := returnRepo.CreateLine(line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// CompleteReturnRecord transiciona pending → completed con sus efectos:
// por cada línea una entrada de stock tipo return referenciando el control id,
// luego una sola entrada de crédito por el total, el saldo denormalizado del
// perfil y el amount_credited del registro. Re-completar un registro ya
// completado es un no-op guardado que devuelve Conflict sin tocar stock ni
// crédito. Cualquier fallo intermedio revierte todo y deja el registro pending.
func (uc *ReturnsUseCase) CompleteReturnRecord(ctx context.Context, returnID, adminNotes, actorID string) (*entity.ReturnRecord, error) {
	if returnID == "" {
		return nil, fmt.Errorf("%w: devolución requerida", domain.ErrInvalidInput)
	}

	var record *entity.ReturnRecord
	var notif *ReturnNotification

	err := uc.txRunner.RunReturns(ctx, func(
		returnRepo repository.ReturnRepository,
		movRepo repository.StockMovementRepository,
		variantRepo repository.VariantRepository,
		productRepo repository.ProductRepository,
		creditRepo repository.StoreCreditRepository,
		profileRepo repository.ProfileRepository,
		orderRepo repository.OrderRepository,
	) error {
		r, err := returnRepo.GetForUpdate(returnID)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("%w: devolución %s", domain.ErrNotFound, returnID)
		}
		if r.Status != entity.ReturnPending {
			return fmt.Errorf("%w: devolución %s ya está %s", domain.ErrConflict, r.ControlID, r.Status)
		}

		lines, err := returnRepo.GetLines(returnID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return fmt.Errorf("%w: devolución %s sin líneas", domain.ErrInternal, r.ControlID)
		}

		now := time.Now()
		totalToCredit := decimal.Zero
		notifLines := make([]NotificationLine, 0, len(lines))
		for _, l := range lines {
			_, err := uc.ledger.ApplyInTx(movRepo, variantRepo, productRepo, inventory.MovementInput{
				VariantID: l.VariantID,
				ProductID: l.ProductID,
				Type:      entity.MovementReturn,
				Quantity:  l.Quantity,
				Reason:    fmt.Sprintf("devolución %s", r.ControlID),
				ActorID:   actorID,
			}, now)
			if err != nil {
				return err
			}
			totalToCredit = totalToCredit.Add(l.LineCredit())
			notifLines = append(notifLines, NotificationLine{
				VariantID: l.VariantID,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice.String(),
			})

			if l.OrderItemID != "" {
				if err := markItemReturned(orderRepo, l.OrderItemID, r.Reason, now); err != nil {
					return err
				}
			}
		}

		profile, err := profileRepo.GetForUpdate(r.ProfileID)
		if err != nil {
			return err
		}
		if profile == nil {
			return fmt.Errorf("%w: perfil %s", domain.ErrNotFound, r.ProfileID)
		}
		entry := &entity.StoreCreditEntry{
			ID:        uuid.New().String(),
			ProfileID: profile.ID,
			Amount:    totalToCredit,
			Type:      entity.CreditReturn,
			Reason:    fmt.Sprintf("devolución %s", r.ControlID),
			OrderID:   r.OrderID,
			CreatedBy: actorID,
			CreatedAt: now,
		}
		if err := creditRepo.Create(entry); err != nil {
			return err
		}
		if err := profileRepo.UpdateCredit(profile.ID, profile.StoreCredit.Add(totalToCredit)); err != nil {
			return err
		}

		r.Status = entity.ReturnCompleted
		r.AmountCredited = totalToCredit
		r.AdminNotes = adminNotes
		r.UpdatedAt = now
		if err := returnRepo.Update(r); err != nil {
			return err
		}

		record = r
		notif = &ReturnNotification{
			ControlID:      r.ControlID,
			Kind:           string(r.Kind),
			OrderID:        r.OrderID,
			CustomerName:   profile.Name,
			CustomerEmail:  profile.Email,
			CustomerPhone:  profile.Phone,
			AmountCredited: totalToCredit.String(),
			Reason:         r.Reason,
			Lines:          notifLines,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Fire-and-forget: después del commit, sin afectar el resultado.
	if notif != nil && uc.notifier != nil {
		uc.notifier.NotifyReturn(*notif)
	}
	return record, nil
}

// RejectReturnRecord transiciona pending → rejected, sin efectos.
func (uc *ReturnsUseCase) RejectReturnRecord(ctx context.Context, returnID, adminNotes string) (*entity.ReturnRecord, error) {
	if returnID == "" {
		return nil, fmt.Errorf("%w: devolución requerida", domain.ErrInvalidInput)
	}
	var record *entity.ReturnRecord
	err := uc.txRunner.RunReturns(ctx, func(
		returnRepo repository.ReturnRepository,
		_ repository.StockMovementRepository,
		_ repository.VariantRepository,
		_ repository.ProductRepository,
		_ repository.StoreCreditRepository,
		_ repository.ProfileRepository,
		_ repository.OrderRepository,
	) error {
		r, err := returnRepo.GetForUpdate(returnID)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("%w: devolución %s", domain.ErrNotFound, returnID)
		}
		if r.Status != entity.ReturnPending {
			return fmt.Errorf("%w: devolución %s ya está %s", domain.ErrConflict, r.ControlID, r.Status)
		}
		r.Status = entity.ReturnRejected
		r.AdminNotes = adminNotes
		r.UpdatedAt = time.Now()
		if err := returnRepo.Update(r); err != nil {
			return err
		}
		record = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// markItemReturned marca is_returned en los metadatos de la línea original sin
// alterar su cantidad ni precio, para que el historial de la orden quede exacto.
func markItemReturned(orderRepo repository.OrderRepository, orderItemID, reason string, now time.Time) error {
	item, err := orderRepo.GetItem(orderItemID)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("%w: línea de orden %s", domain.ErrNotFound, orderItemID)
	}
	item.Metadata.IsReturned = true
	item.Metadata.ReturnReason = reason
	item.UpdatedAt = now
	return orderRepo.UpdateItem(item)
}

// ProcessInput entrada para la devolución directa de una sola línea.
type ProcessInput struct {
	ProfileID      string
	VariantID      string
	ProductID      string
	Quantity       int64
	AmountToCredit decimal.Decimal
	Reason         string
	OrderID        string
	OrderItemID    string
	ActorID        string
}

// ProcessReturn devolución directa en un paso: repone stock, acredita el monto
// indicado y deja un registro completed como historial, en una transacción.
// Devuelve el saldo de crédito nuevo del perfil.
func (uc *ReturnsUseCase) ProcessReturn(ctx context.Context, in ProcessInput) (decimal.Decimal, error) {
	if in.ProfileID == "" {
		return decimal.Zero, fmt.Errorf("%w: perfil requerido", domain.ErrInvalidInput)
	}
	if in.VariantID == "" && in.ProductID == "" {
		return decimal.Zero, fmt.Errorf("%w: variante o producto requerido", domain.ErrInvalidInput)
	}
	if in.Quantity < 1 {
		return decimal.Zero, fmt.Errorf("%w: cantidad debe ser >= 1", domain.ErrInvalidInput)
	}
	if in.AmountToCredit.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: monto a acreditar negativo", domain.ErrInvalidInput)
	}

	now := time.Now()
	controlID := newControlID()
	var newBalance decimal.Decimal
	var notif *ReturnNotification

	err := uc.txRunner.RunReturns(ctx, func(
		returnRepo repository.ReturnRepository,
		movRepo repository.StockMovementRepository,
		variantRepo repository.VariantRepository,
		productRepo repository.ProductRepository,
		creditRepo repository.StoreCreditRepository,
		profileRepo repository.ProfileRepository,
		orderRepo repository.OrderRepository,
	) error {
		profile, err := profileRepo.GetForUpdate(in.ProfileID)
		if err != nil {
			return err
		}
		if profile == nil {
			return fmt.Errorf("%w: perfil %s", domain.ErrNotFound, in.ProfileID)
		}

		if _, err := uc.ledger.ApplyInTx(movRepo, variantRepo, productRepo, inventory.MovementInput{
			VariantID: in.VariantID,
			ProductID: in.ProductID,
			Type:      entity.MovementReturn,
			Quantity:  in.Quantity,
			Reason:    fmt.Sprintf("devolución %s", controlID),
			ActorID:   in.ActorID,
		}, now); err != nil {
			return err
		}

		entry := &entity.StoreCreditEntry{
			ID:        uuid.New().String(),
			ProfileID: profile.ID,
			Amount:    in.AmountToCredit,
			Type:      entity.CreditReturn,
			Reason:    fmt.Sprintf("devolución %s", controlID),
			OrderID:   in.OrderID,
			CreatedBy: in.ActorID,
			CreatedAt: now,
		}
		if err := creditRepo.Create(entry); err != nil {
			return err
		}
		newBalance = profile.StoreCredit.Add(in.AmountToCredit)
		if err := profileRepo.UpdateCredit(profile.ID, newBalance); err != nil {
			return err
		}

		// Quantity >= 1 ya validado a la entrada.
		unitPrice := in.AmountToCredit.Div(decimal.NewFromInt(in.Quantity))
		record := &entity.ReturnRecord{
			ID:             uuid.New().String(),
			ControlID:      controlID,
			Kind:           entity.ReturnKindReturn,
			OrderID:        in.OrderID,
			ProfileID:      in.ProfileID,
			Status:         entity.ReturnCompleted,
			Reason:         in.Reason,
			AmountCredited: in.AmountToCredit,
			CreatedBy:      in.ActorID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := returnRepo.Create(record); err != nil {
			return err
		}
		line := &entity.ReturnLine{
			ID:          uuid.New().String(),
			ReturnID:    record.ID,
			VariantID:   in.VariantID,
			ProductID:   in.ProductID,
			OrderItemID: in.OrderItemID,
			Quantity:    in.Quantity,
			UnitPrice:   unitPrice,
		}
		if err := returnRepo.CreateLine(line); err != nil {
			return err
		}

		if in.OrderItemID != "" {
			if err := markItemReturned(orderRepo, in.OrderItemID, in.Reason, now); err != nil {
				return err
			}
		}

		notif = &ReturnNotification{
			ControlID:      controlID,
			Kind:           string(entity.ReturnKindReturn),
			OrderID:        in.OrderID,
			CustomerName:   profile.Name,
			CustomerEmail:  profile.Email,
			CustomerPhone:  profile.Phone,
			AmountCredited: in.AmountToCredit.String(),
			Reason:         in.Reason,
			Lines: []NotificationLine{{
				VariantID: in.VariantID,
				ProductID: in.ProductID,
				Quantity:  in.Quantity,
				UnitPrice: unitPrice.String(),
			}},
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	if notif != nil && uc.notifier != nil {
		uc.notifier.NotifyReturn(*notif)
	}
	return newBalance, nil
}

// GetReturnRecord obtiene un registro con sus líneas.
func (uc *ReturnsUseCase) GetReturnRecord(ctx context.Context, returnID string) (*entity.ReturnRecord, []*entity.ReturnLine, error) {
	record, err := uc.returnRepo.GetByID(returnID)
	if err != nil {
		return nil, nil, err
	}
	if record == nil {
		return nil, nil, fmt.Errorf("%w: devolución %s", domain.ErrNotFound, returnID)
	}
	lines, err := uc.returnRepo.GetLines(returnID)
	if err != nil {
		return nil, nil, err
	}
	return record, lines, nil
}

// ListReturnRecords lista registros, opcionalmente filtrados por estado.
func (uc *ReturnsUseCase) ListReturnRecords(ctx context.Context, status entity.ReturnStatus, limit, offset int) ([]*entity.ReturnRecord, error) {
	if status != "" {
		switch status {
		case entity.ReturnPending, entity.ReturnCompleted, entity.ReturnRejected:
		default:
			return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
		}
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return uc.returnRepo.List(status, limit, offset)
}

// CreditNotePDF genera la nota de crédito de una devolución completada.
func (uc *ReturnsUseCase) CreditNotePDF(ctx context.Context, returnID string) ([]byte, error) {
	record, lines, err := uc.GetReturnRecord(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if record.Status != entity.ReturnCompleted {
		return nil, fmt.Errorf("%w: la devolución %s no está completada", domain.ErrConflict, record.ControlID)
	}
	profile, err := uc.profileRepo.GetByID(record.ProfileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: perfil %s", domain.ErrNotFound, record.ProfileID)
	}
	return uc.pdf.Generate(record, profile, lines)
}
