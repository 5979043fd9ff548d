package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/tienda-backoffice/internal/application/dto"
	"github.com/tu-usuario/tienda-backoffice/internal/application/orders"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
)

// OrderHandler maneja las peticiones HTTP de liquidación de órdenes (protegido).
type OrderHandler struct {
	uc *orders.SettlementUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.SettlementUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func toMetadata(in dto.OrderItemMetadataDTO) entity.OrderItemMetadata {
	return entity.OrderItemMetadata{
		Designs:         in.Designs,
		Personalization: in.Personalization,
		IsReturned:      in.IsReturned,
		ReturnReason:    in.ReturnReason,
		ExchangedFrom:   in.ExchangedFrom,
		OriginalPrice:   in.OriginalPrice,
	}
}

func toMetadataDTO(in entity.OrderItemMetadata) dto.OrderItemMetadataDTO {
	return dto.OrderItemMetadataDTO{
		Designs:         in.Designs,
		Personalization: in.Personalization,
		IsReturned:      in.IsReturned,
		ReturnReason:    in.ReturnReason,
		ExchangedFrom:   in.ExchangedFrom,
		OriginalPrice:   in.OriginalPrice,
	}
}

// AddItem godoc
// @Summary      Agregar línea a una orden
// @Description  Crea la línea, descuenta stock (venta, exactamente una vez por línea)
//
//	y recalcula el total, todo en una transacción.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.AddOrderItemRequest  true  "variant_id, quantity, unit_price opcional"
// @Success      201   {object}  dto.OrderItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items [post]
func (h *OrderHandler) AddItem(c *fiber.Ctx) error {
	var in dto.AddOrderItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	item, _, err := h.uc.AddItem(c.Context(), orders.AddItemInput{
		OrderID:   c.Params("id"),
		VariantID: in.VariantID,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		Metadata:  toMetadata(in.Metadata),
		ActorID:   GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OrderItemResponse{
		ID:        item.ID,
		OrderID:   item.OrderID,
		VariantID: item.VariantID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		LineTotal: item.LineTotal(),
		Metadata:  toMetadataDTO(item.Metadata),
		CreatedAt: item.CreatedAt,
	})
}

// UpdateItem godoc
// @Summary      Editar una línea de orden
// @Description  Edita cantidad/precio/metadatos y recalcula el total. No re-dispara
//
//	movimientos de stock.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string  true  "ID de la orden"
// @Param        itemId  path  string  true  "ID de la línea"
// @Param        body    body  dto.UpdateOrderItemRequest  true  "campos a editar"
// @Success      200     {object}  dto.OrderTotalResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items/{itemId} [put]
func (h *OrderHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.UpdateOrderItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	var metadata *entity.OrderItemMetadata
	if in.Metadata != nil {
		m := toMetadata(*in.Metadata)
		metadata = &m
	}
	total, err := h.uc.UpdateItem(c.Context(), orders.UpdateItemInput{
		ItemID:    c.Params("itemId"),
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		Metadata:  metadata,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OrderTotalResponse{OrderID: c.Params("id"), Total: total})
}

// RemoveItem godoc
// @Summary      Quitar una línea de orden
// @Description  Borra la línea y recalcula; si la orden queda vacía se elimina.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID de la orden"
// @Param        itemId  path  string  true  "ID de la línea"
// @Success      200     {object}  dto.OrderTotalResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items/{itemId} [delete]
func (h *OrderHandler) RemoveItem(c *fiber.Ctx) error {
	total, deleted, err := h.uc.RemoveItem(c.Context(), c.Params("itemId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OrderTotalResponse{OrderID: c.Params("id"), Total: total, Deleted: deleted})
}

// Recalculate godoc
// @Summary      Recalcular el total de una orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderTotalResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/recalculate [post]
func (h *OrderHandler) Recalculate(c *fiber.Ctx) error {
	total, deleted, err := h.uc.RecalculateTotal(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OrderTotalResponse{OrderID: c.Params("id"), Total: total, Deleted: deleted})
}

// ExchangeItem godoc
// @Summary      Cambiar una línea por otra variante
// @Description  Repone el SKU devuelto, descuenta el nuevo y acredita la diferencia
//
//	de precio como crédito de tienda si la nueva línea cuesta menos.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string  true  "ID de la orden"
// @Param        itemId  path  string  true  "ID de la línea"
// @Param        body    body  dto.ExchangeItemRequest  true  "new_variant_id, new_quantity"
// @Success      200     {object}  dto.ExchangeItemResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items/{itemId}/exchange [post]
func (h *OrderHandler) ExchangeItem(c *fiber.Ctx) error {
	var in dto.ExchangeItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	result, err := h.uc.ExchangeOrderItem(c.Context(), orders.ExchangeInput{
		OrderID:      c.Params("id"),
		OrderItemID:  c.Params("itemId"),
		NewVariantID: in.NewVariantID,
		NewQuantity:  in.NewQuantity,
		Reason:       in.Reason,
		ActorID:      GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ExchangeItemResponse{
		OrderID:         c.Params("id"),
		NewTotal:        result.NewTotal,
		CreditGenerated: result.CreditGenerated,
	})
}
