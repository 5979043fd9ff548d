package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditType origen de una entrada de crédito de tienda.
type CreditType string

const (
	CreditReturn   CreditType = "return"
	CreditExchange CreditType = "exchange"
	CreditManual   CreditType = "manual"
)

// Valid reporta si el tipo pertenece al enum.
func (t CreditType) Valid() bool {
	switch t {
	case CreditReturn, CreditExchange, CreditManual:
		return true
	}
	return false
}

// StoreCreditEntry entrada append-only del libro de crédito de tienda.
// El saldo denormalizado del perfil se muta solo junto con una entrada,
// nunca de forma independiente.
type StoreCreditEntry struct {
	ID        string
	ProfileID string
	Amount    decimal.Decimal // firmada: positiva otorga, negativa consume
	Type      CreditType
	Reason    string
	OrderID   string // opcional: orden que originó el crédito
	CreatedBy string
	CreatedAt time.Time
}

// CustomerProfile perfil de cliente con su saldo de crédito denormalizado.
type CustomerProfile struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	StoreCredit decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
