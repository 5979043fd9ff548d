package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Atributos de la variante por defecto que se auto-provisiona para productos
// legacy sin variantes cuando llega su primera venta.
const (
	DefaultVariantSize  = "Único"
	DefaultVariantColor = "Único"
)

// Product representa un producto del catálogo.
// Stock solo aplica a productos legacy sin variantes; cuando existen variantes,
// el stock vive en cada ProductVariant y este campo queda en 0.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal // precio de venta base
	Stock     int64           // legacy: solo si el producto no tiene variantes
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductVariant representa un SKU vendible (combinación talla/color).
// Stock es derivado: nunca se escribe directamente fuera de la aplicación
// de un StockMovement; la suma firmada de movimientos de la variante
// siempre es igual a Stock.
type ProductVariant struct {
	ID            string
	ProductID     string
	Size          string
	Color         string
	Stock         int64
	PriceOverride *decimal.Decimal // nil = usa el precio del producto
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EffectivePrice devuelve el precio de venta de la variante (override o precio del producto).
func (v *ProductVariant) EffectivePrice(p *Product) decimal.Decimal {
	if v.PriceOverride != nil {
		return *v.PriceOverride
	}
	return p.Price
}
