package entity

import "time"

// MovementType tipos de movimiento de stock (enum cerrado).
type MovementType string

const (
	MovementPurchase      MovementType = "purchase"       // compra a proveedor (entrada)
	MovementSale          MovementType = "sale"           // venta de una orden (salida)
	MovementReturn        MovementType = "return"         // devolución de cliente (entrada)
	MovementExchange      MovementType = "exchange"       // cambio: entrada del SKU devuelto o salida del nuevo
	MovementCorrection    MovementType = "correction"     // corrección manual (set), signo según diferencia
	MovementAdjustmentIn  MovementType = "adjustment_in"  // ajuste rápido entrada
	MovementAdjustmentOut MovementType = "adjustment_out" // ajuste rápido salida
)

// Valid reporta si el tipo pertenece al enum.
func (t MovementType) Valid() bool {
	switch t {
	case MovementPurchase, MovementSale, MovementReturn, MovementExchange,
		MovementCorrection, MovementAdjustmentIn, MovementAdjustmentOut:
		return true
	}
	return false
}

// Inbound reporta si el tipo es de entrada por convención (cantidad positiva).
// correction y exchange admiten ambos signos.
func (t MovementType) Inbound() bool {
	switch t {
	case MovementPurchase, MovementReturn, MovementAdjustmentIn:
		return true
	}
	return false
}

// Outbound reporta si el tipo es de salida por convención (cantidad negativa).
func (t MovementType) Outbound() bool {
	switch t {
	case MovementSale, MovementAdjustmentOut:
		return true
	}
	return false
}

// StockMovement entrada inmutable del libro de stock. Solo se agrega, nunca se
// edita ni borra: las correcciones son movimientos nuevos. La suma firmada de
// los movimientos de una variante es igual a su stock actual.
//
// VariantID vacío solo para productos legacy sin variantes (se usa ProductID).
// OrderItemID enlaza las ventas con su línea de orden; hay a lo sumo un
// movimiento de venta por línea (deducción exactamente-una-vez).
type StockMovement struct {
	ID          string
	VariantID   string
	ProductID   string
	OrderItemID string // solo ventas/cambios; vacío en ajustes manuales
	Type        MovementType
	Quantity    int64 // firmada: negativa salida, positiva entrada
	Reason      string
	CreatedBy   string
	CreatedAt   time.Time
}
