package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estados de una orden.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderShipped    OrderStatus = "shipped"
	OrderCancelled  OrderStatus = "cancelled"
	OrderQuote      OrderStatus = "quote"
	OrderEvaluating OrderStatus = "evaluating"
)

// Order representa una compra. Total es derivado:
// total = max(0, Σ item.unit_price×quantity − credit_applied − payment_discount_amount)
// y se recalcula tras cada mutación de líneas.
type Order struct {
	ID              string
	ProfileID       string // vacío para órdenes de invitado/presupuesto
	Status          OrderStatus
	Total           decimal.Decimal
	CreditApplied   decimal.Decimal
	PaymentDiscount decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItemMetadata metadatos de personalización y trazabilidad de una línea.
// Los cambios y devoluciones marcan aquí su procedencia sin alterar la línea.
type OrderItemMetadata struct {
	Designs         []string         `json:"designs,omitempty"`
	Personalization string           `json:"personalization,omitempty"`
	IsReturned      bool             `json:"is_returned,omitempty"`
	ReturnReason    string           `json:"return_reason,omitempty"`
	ExchangedFrom   string           `json:"exchanged_from,omitempty"` // variante original antes del cambio
	OriginalPrice   *decimal.Decimal `json:"original_price,omitempty"` // precio unitario antes del cambio
}

// OrderItem línea de una orden. UnitPrice es un snapshot al momento de la
// venta, independiente de cambios posteriores del catálogo.
type OrderItem struct {
	ID        string
	OrderID   string
	VariantID string
	ProductID string
	Quantity  int64 // >= 1
	UnitPrice decimal.Decimal
	Metadata  OrderItemMetadata
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LineTotal devuelve unit_price × quantity.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}
