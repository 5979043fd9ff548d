package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency monedas soportadas por las cuentas financieras.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyVES Currency = "VES"
)

// Valid reporta si la moneda pertenece al enum.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyUSD, CurrencyVES:
		return true
	}
	return false
}

// TransactionType tipo de transacción financiera.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Valid reporta si el tipo pertenece al enum.
func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// FinanceAccount cuenta financiera con saldo corriente en su moneda.
// Balance se muta solo junto con una FinanceTransaction; una cuenta con
// transacciones no se borra, solo se desactiva.
type FinanceAccount struct {
	ID        string
	Name      string
	Currency  Currency
	Balance   decimal.Decimal
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FinanceCategory categoría de ingreso/gasto.
type FinanceCategory struct {
	ID        string
	Name      string
	Active    bool
	CreatedAt time.Time
}

// FinanceTransaction evento de caja contra una cuenta. ExchangeRate y
// AmountUSD se fijan al momento del registro y nunca se recalculan aunque la
// tasa global cambie después (inmutabilidad histórica).
type FinanceTransaction struct {
	ID           string
	AccountID    string
	CategoryID   string
	OrderID      string // opcional
	Type         TransactionType
	Amount       decimal.Decimal // en la moneda de la cuenta
	ExchangeRate decimal.Decimal // tasa VES/USD vigente al registrar; 1 para USD
	AmountUSD    decimal.Decimal // amount / rate si la moneda no es USD
	Description  string
	CreatedBy    string
	CreatedAt    time.Time
}

// SignedAmount devuelve el monto con signo según el tipo (income +, expense −).
func (t *FinanceTransaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// StoreSettings registro global de configuración de la tienda.
// ExchangeRate es la tasa VES por USD vigente; la actualiza un proceso externo.
type StoreSettings struct {
	ExchangeRate decimal.Decimal
	UpdatedAt    time.Time
}
