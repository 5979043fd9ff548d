package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemMetadataDTO metadatos de la línea expuestos por la API.
type OrderItemMetadataDTO struct {
	Designs         []string         `json:"designs,omitempty"`
	Personalization string           `json:"personalization,omitempty"`
	IsReturned      bool             `json:"is_returned,omitempty"`
	ReturnReason    string           `json:"return_reason,omitempty"`
	ExchangedFrom   string           `json:"exchanged_from,omitempty"`
	OriginalPrice   *decimal.Decimal `json:"original_price,omitempty"`
}

// AddOrderItemRequest body para POST /api/orders/:id/items.
// UnitPrice omitido toma el precio vigente de la variante como snapshot.
type AddOrderItemRequest struct {
	VariantID string               `json:"variant_id" validate:"required"`
	Quantity  int64                `json:"quantity" validate:"required,min=1"`
	UnitPrice *decimal.Decimal     `json:"unit_price,omitempty"`
	Metadata  OrderItemMetadataDTO `json:"metadata,omitempty"`
}

// UpdateOrderItemRequest body para PUT /api/orders/:id/items/:itemId.
// Campos omitidos quedan como están.
type UpdateOrderItemRequest struct {
	Quantity  *int64                `json:"quantity,omitempty" validate:"omitempty,min=1"`
	UnitPrice *decimal.Decimal      `json:"unit_price,omitempty"`
	Metadata  *OrderItemMetadataDTO `json:"metadata,omitempty"`
}

// OrderItemResponse salida de una línea de orden.
type OrderItemResponse struct {
	ID        string               `json:"id"`
	OrderID   string               `json:"order_id"`
	VariantID string               `json:"variant_id"`
	ProductID string               `json:"product_id,omitempty"`
	Quantity  int64                `json:"quantity"`
	UnitPrice decimal.Decimal      `json:"unit_price"`
	LineTotal decimal.Decimal      `json:"line_total"`
	Metadata  OrderItemMetadataDTO `json:"metadata"`
	CreatedAt time.Time            `json:"created_at"`
}

// OrderTotalResponse total recalculado de la orden.
// Deleted indica que la orden quedó sin líneas y fue eliminada.
type OrderTotalResponse struct {
	OrderID string          `json:"order_id"`
	Total   decimal.Decimal `json:"total"`
	Deleted bool            `json:"deleted,omitempty"`
}

// ExchangeItemRequest body para POST /api/orders/:id/items/:itemId/exchange.
type ExchangeItemRequest struct {
	NewVariantID string `json:"new_variant_id" validate:"required"`
	NewQuantity  int64  `json:"new_quantity" validate:"required,min=1"`
	Reason       string `json:"reason,omitempty"`
}

// ExchangeItemResponse resultado del cambio de línea.
type ExchangeItemResponse struct {
	OrderID         string          `json:"order_id"`
	NewTotal        decimal.Decimal `json:"new_total"`
	CreditGenerated decimal.Decimal `json:"credit_generated"`
}
