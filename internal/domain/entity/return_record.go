package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReturnStatus estados del registro de devolución.
// pending → completed y pending → rejected son terminales; solo la transición
// a completed tiene efectos (restock + crédito).
type ReturnStatus string

const (
	ReturnPending   ReturnStatus = "pending"
	ReturnCompleted ReturnStatus = "completed"
	ReturnRejected  ReturnStatus = "rejected"
)

// ReturnKind distingue devoluciones de cambios en el historial.
type ReturnKind string

const (
	ReturnKindReturn   ReturnKind = "return"
	ReturnKindExchange ReturnKind = "exchange"
)

// ReturnRecord registro de devolución o cambio. ControlID es el identificador
// legible que correlaciona orden, devolución y mensajes externos.
type ReturnRecord struct {
	ID             string
	ControlID      string
	Kind           ReturnKind
	OrderID        string // vacío si la devolución no referencia una orden
	ProfileID      string
	Status         ReturnStatus
	Reason         string
	AmountCredited decimal.Decimal // 0 mientras está pending
	AdminNotes     string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ReturnLine línea de una devolución: qué variante vuelve, cuánta cantidad y
// a qué precio unitario se acredita.
type ReturnLine struct {
	ID          string
	ReturnID    string
	VariantID   string
	ProductID   string
	OrderItemID string // opcional: marca is_returned en la línea de la orden
	Quantity    int64
	UnitPrice   decimal.Decimal
}

// LineCredit devuelve unit_price × quantity.
func (l *ReturnLine) LineCredit() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}
