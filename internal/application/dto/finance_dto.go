package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateAccountRequest body para POST /api/finance/accounts.
type CreateAccountRequest struct {
	Name           string          `json:"name" validate:"required,min=1,max=200"`
	Currency       string          `json:"currency" validate:"required,oneof=USD VES"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// UpdateAccountRequest body para PUT /api/finance/accounts/:id.
type UpdateAccountRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Active *bool   `json:"active,omitempty"`
}

// AccountResponse salida de una cuenta financiera.
type AccountResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

// CategoryRequest body para crear/editar una categoría.
type CategoryRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=200"`
	Active *bool  `json:"active,omitempty"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// PostTransactionRequest body para POST /api/finance/transactions.
// ExchangeRate omitida toma la tasa global vigente.
type PostTransactionRequest struct {
	AccountID    string           `json:"account_id" validate:"required"`
	CategoryID   string           `json:"category_id,omitempty"`
	OrderID      string           `json:"order_id,omitempty"`
	Type         string           `json:"type" validate:"required,oneof=income expense"`
	Amount       decimal.Decimal  `json:"amount" validate:"required"`
	ExchangeRate *decimal.Decimal `json:"exchange_rate,omitempty"`
	Description  string           `json:"description,omitempty"`
}

// TransactionResponse salida de una transacción del libro.
type TransactionResponse struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"account_id"`
	CategoryID   string          `json:"category_id,omitempty"`
	OrderID      string          `json:"order_id,omitempty"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	AmountUSD    decimal.Decimal `json:"amount_usd"`
	Description  string          `json:"description,omitempty"`
	CreatedBy    string          `json:"created_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
