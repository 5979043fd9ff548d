package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReturnLineRequest línea de una devolución a crear.
type ReturnLineRequest struct {
	VariantID   string          `json:"variant_id,omitempty"`
	ProductID   string          `json:"product_id,omitempty"`
	OrderItemID string          `json:"order_item_id,omitempty"`
	Quantity    int64           `json:"quantity" validate:"required,min=1"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateReturnRequest body para POST /api/returns.
type CreateReturnRequest struct {
	ProfileID string              `json:"profile_id" validate:"required"`
	OrderID   string              `json:"order_id,omitempty"`
	Reason    string              `json:"reason,omitempty"`
	Lines     []ReturnLineRequest `json:"lines" validate:"required,min=1"`
}

// ResolveReturnRequest body para completar o rechazar una devolución.
type ResolveReturnRequest struct {
	AdminNotes string `json:"admin_notes,omitempty"`
}

// ProcessReturnRequest body para POST /api/returns/process (devolución directa).
type ProcessReturnRequest struct {
	ProfileID      string          `json:"profile_id" validate:"required"`
	VariantID      string          `json:"variant_id,omitempty"`
	ProductID      string          `json:"product_id,omitempty"`
	Quantity       int64           `json:"quantity" validate:"required,min=1"`
	AmountToCredit decimal.Decimal `json:"amount_to_credit"`
	Reason         string          `json:"reason,omitempty"`
	OrderID        string          `json:"order_id,omitempty"`
	OrderItemID    string          `json:"order_item_id,omitempty"`
}

// ProcessReturnResponse saldo de crédito resultante del perfil.
type ProcessReturnResponse struct {
	ProfileID  string          `json:"profile_id"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

// ReturnLineResponse línea de una devolución.
type ReturnLineResponse struct {
	ID          string          `json:"id"`
	VariantID   string          `json:"variant_id,omitempty"`
	ProductID   string          `json:"product_id,omitempty"`
	OrderItemID string          `json:"order_item_id,omitempty"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// ReturnResponse salida de un registro de devolución.
type ReturnResponse struct {
	ID             string               `json:"id"`
	ControlID      string               `json:"control_id"`
	Kind           string               `json:"kind"`
	OrderID        string               `json:"order_id,omitempty"`
	ProfileID      string               `json:"profile_id"`
	Status         string               `json:"status"`
	Reason         string               `json:"reason,omitempty"`
	AmountCredited decimal.Decimal      `json:"amount_credited"`
	AdminNotes     string               `json:"admin_notes,omitempty"`
	Lines          []ReturnLineResponse `json:"lines,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}
