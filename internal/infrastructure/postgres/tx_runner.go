package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/tienda-backoffice/internal/application/finance"
	"github.com/tu-usuario/tienda-backoffice/internal/application/inventory"
	"github.com/tu-usuario/tienda-backoffice/internal/application/orders"
	"github.com/tu-usuario/tienda-backoffice/internal/application/returns"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)
var _ orders.TxRunner = (*TxRunner)(nil)
var _ returns.TxRunner = (*TxRunner)(nil)
var _ finance.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// Un solo runner sirve a todos los casos de uso: cada Run* construye los
// repos que su caso de uso necesita, atados a la misma tx.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción con los repos del libro de stock y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	variantRepo repository.VariantRepository,
	productRepo repository.ProductRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewStockMovementRepository(tx), NewVariantRepository(tx), NewProductRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunOrders inicia una transacción con los repos de la liquidación de órdenes.
func (r *TxRunner) RunOrders(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	movRepo repository.StockMovementRepository,
	variantRepo repository.VariantRepository,
	productRepo repository.ProductRepository,
	creditRepo repository.StoreCreditRepository,
	profileRepo repository.ProfileRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = fn(
		NewOrderRepository(tx),
		NewStockMovementRepository(tx),
		NewVariantRepository(tx),
		NewProductRepository(tx),
		NewStoreCreditRepository(tx),
		NewProfileRepository(tx),
	)
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunReturns inicia una transacción con los repos del motor de devoluciones.
func (r *TxRunner) RunReturns(ctx context.Context, fn func(
	returnRepo repository.ReturnRepository,
	movRepo repository.StockMovementRepository,
	variantRepo repository.VariantRepository,
	productRepo repository.ProductRepository,
	creditRepo repository.StoreCreditRepository,
	profileRepo repository.ProfileRepository,
	orderRepo repository.OrderRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = fn(
		NewReturnRepository(tx),
		NewStockMovementRepository(tx),
		NewVariantRepository(tx),
		NewProductRepository(tx),
		NewStoreCreditRepository(tx),
		NewProfileRepository(tx),
		NewOrderRepository(tx),
	)
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunFinance inicia una transacción con los repos del libro financiero.
func (r *TxRunner) RunFinance(ctx context.Context, fn func(
	accountRepo repository.FinanceAccountRepository,
	trxRepo repository.FinanceTransactionRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewFinanceAccountRepository(tx), NewFinanceTransactionRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
