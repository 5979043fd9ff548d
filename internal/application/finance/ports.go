package finance

import (
	"context"

	"github.com/tu-usuario/tienda-backoffice/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios del libro financiero: la transacción y la mutación del saldo
// de la cuenta se persisten juntas o no se persisten.
type TxRunner interface {
	RunFinance(ctx context.Context, fn func(
		accountRepo repository.FinanceAccountRepository,
		trxRepo repository.FinanceTransactionRepository,
	) error) error
}
