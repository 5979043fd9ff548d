package dto

import "time"

// RegisterMovementRequest body para POST /api/inventory/movements.
// Quantity firmada según la convención del libro: negativa salida, positiva entrada.
type RegisterMovementRequest struct {
	VariantID   string `json:"variant_id,omitempty"`
	ProductID   string `json:"product_id,omitempty"`
	OrderItemID string `json:"order_item_id,omitempty"`
	Type        string `json:"type" validate:"required,oneof=purchase sale return exchange correction adjustment_in adjustment_out"`
	Quantity    int64  `json:"quantity" validate:"required"`
	Reason      string `json:"reason,omitempty"`
}

// MovementResponse salida de un movimiento aplicado.
type MovementResponse struct {
	ID          string    `json:"id"`
	VariantID   string    `json:"variant_id,omitempty"`
	ProductID   string    `json:"product_id,omitempty"`
	OrderItemID string    `json:"order_item_id,omitempty"`
	Type        string    `json:"type"`
	Quantity    int64     `json:"quantity"`
	Reason      string    `json:"reason,omitempty"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ApplyMovementResponse movimiento aplicado + stock resultante.
type ApplyMovementResponse struct {
	Movement MovementResponse `json:"movement"`
	NewStock int64            `json:"new_stock"`
	Clamped  bool             `json:"clamped"`
}

// QuickAdjustRequest body para POST /api/inventory/adjust.
type QuickAdjustRequest struct {
	VariantID string `json:"variant_id" validate:"required"`
	Mode      string `json:"mode" validate:"required,oneof=add remove set"`
	Amount    int64  `json:"amount" validate:"min=0"`
	Reason    string `json:"reason,omitempty"`
}

// QuickAdjustResponse stock resultante del ajuste.
type QuickAdjustResponse struct {
	VariantID string `json:"variant_id"`
	NewStock  int64  `json:"new_stock"`
}

// VerifyStockResponse resultado de la conciliación stock vs libro.
type VerifyStockResponse struct {
	VariantID string `json:"variant_id"`
	Stock     int64  `json:"stock"`
	LedgerSum int64  `json:"ledger_sum"`
	Match     bool   `json:"match"`
}
