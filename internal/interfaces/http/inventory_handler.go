package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/tienda-backoffice/internal/application/dto"
	"github.com/tu-usuario/tienda-backoffice/internal/application/inventory"
	"github.com/tu-usuario/tienda-backoffice/internal/domain"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
)

// InventoryHandler maneja las peticiones HTTP del libro de stock (protegido).
type InventoryHandler struct {
	uc *inventory.StockLedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.StockLedgerUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:          m.ID,
		VariantID:   m.VariantID,
		ProductID:   m.ProductID,
		OrderItemID: m.OrderItemID,
		Type:        string(m.Type),
		Quantity:    m.Quantity,
		Reason:      m.Reason,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "variant_id (o product_id legacy), type, quantity firmada, reason"
// @Success      201   {object}  dto.ApplyMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	result, err := h.uc.RecordMovement(c.Context(), inventory.MovementInput{
		VariantID:   in.VariantID,
		ProductID:   in.ProductID,
		OrderItemID: in.OrderItemID,
		Type:        entity.MovementType(in.Type),
		Quantity:    in.Quantity,
		Reason:      in.Reason,
		ActorID:     GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ApplyMovementResponse{
		Movement: toMovementResponse(result.Movement),
		NewStock: result.NewStock,
		Clamped:  result.Clamped,
	})
}

// QuickAdjust godoc
// @Summary      Ajuste rápido de stock (add/remove/set)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.QuickAdjustRequest  true  "variant_id, mode, amount"
// @Success      200   {object}  dto.QuickAdjustResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjust [post]
func (h *InventoryHandler) QuickAdjust(c *fiber.Ctx) error {
	var in dto.QuickAdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	newStock, err := h.uc.QuickAdjustStock(c.Context(), in.VariantID, inventory.AdjustMode(in.Mode), in.Amount, in.Reason, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.QuickAdjustResponse{VariantID: in.VariantID, NewStock: newStock})
}

// ListMovements godoc
// @Summary      Historial de movimientos de una variante
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        variant_id  path   string  true   "ID de la variante"
// @Param        from        query  string  false  "Fecha inicial (RFC3339)"
// @Param        to          query  string  false  "Fecha final (RFC3339)"
// @Param        limit       query  int     false  "Máximo de filas (default 50, cap 200)"
// @Param        offset      query  int     false  "Desplazamiento"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/variants/{variant_id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	variantID := c.Params("variant_id")
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
	}
	list, err := h.uc.ListMovements(c.Context(), variantID, from, to, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementResponse(m))
	}
	return c.JSON(out)
}

// VerifyStock godoc
// @Summary      Conciliación stock vs suma del libro
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        variant_id  path  string  true  "ID de la variante"
// @Success      200  {object}  dto.VerifyStockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/variants/{variant_id}/verify [get]
func (h *InventoryHandler) VerifyStock(c *fiber.Ctx) error {
	variantID := c.Params("variant_id")
	stock, ledgerSum, err := h.uc.VerifyStock(c.Context(), variantID)
	if err != nil {
		// El desajuste ya quedó en el log; se reporta con Match=false, no como 500.
		if !errors.Is(err, domain.ErrInternal) {
			return respondError(c, err)
		}
	}
	return c.JSON(dto.VerifyStockResponse{
		VariantID: variantID,
		Stock:     stock,
		LedgerSum: ledgerSum,
		Match:     stock == ledgerSum,
	})
}

// parseTimeQuery parsea un query param RFC3339 opcional.
func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
