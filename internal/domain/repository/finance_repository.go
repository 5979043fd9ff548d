package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
)

// FinanceAccountRepository define el puerto de cuentas financieras.
// UpdateBalance solo debe invocarse junto con una FinanceTransaction, en la misma transacción.
type FinanceAccountRepository interface {
	Create(a *entity.FinanceAccount) error
	GetByID(id string) (*entity.FinanceAccount, error)
	GetForUpdate(id string) (*entity.FinanceAccount, error)
	Update(a *entity.FinanceAccount) error
	UpdateBalance(id string, balance decimal.Decimal) error
	Delete(id string) error
	List(includeInactive bool) ([]*entity.FinanceAccount, error)
}

// FinanceCategoryRepository define el puerto de categorías de ingreso/gasto.
type FinanceCategoryRepository interface {
	Create(c *entity.FinanceCategory) error
	GetByID(id string) (*entity.FinanceCategory, error)
	Update(c *entity.FinanceCategory) error
	Delete(id string) error
	List() ([]*entity.FinanceCategory, error)
}

// FinanceTransactionRepository define el puerto del libro de transacciones (append-only).
type FinanceTransactionRepository interface {
	Create(t *entity.FinanceTransaction) error
	GetByID(id string) (*entity.FinanceTransaction, error)
	ListByDay(day time.Time) ([]*entity.FinanceTransaction, error)
	CountByAccount(accountID string) (int64, error)
	CountByCategory(categoryID string) (int64, error)
}

// SettingsRepository acceso a la configuración global de la tienda.
// GetExchangeRate devuelve la tasa VES/USD vigente; (cero, nil) si no hay tasa configurada.
type SettingsRepository interface {
	GetExchangeRate() (decimal.Decimal, error)
}
