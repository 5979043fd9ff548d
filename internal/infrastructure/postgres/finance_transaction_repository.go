package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/repository"
)

var _ repository.FinanceTransactionRepository = (*FinanceTransactionRepo)(nil)

// FinanceTransactionRepo implementación del libro de transacciones sobre
// PostgreSQL (usable con pool o tx). Append-only: no hay Update ni Delete.
type FinanceTransactionRepo struct {
	q Querier
}

// NewFinanceTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFinanceTransactionRepository(q Querier) *FinanceTransactionRepo {
	return &FinanceTransactionRepo{q: q}
}

const trxColumns = `id, account_id, category_id, order_id, type, amount, exchange_rate, amount_usd, description, created_by, created_at`

func scanTrx(row pgx.Row) (*entity.FinanceTransaction, error) {
	var t entity.FinanceTransaction
	var categoryID, orderID, description, createdBy *string
	err := row.Scan(&t.ID, &t.AccountID, &categoryID, &orderID, &t.Type, &t.Amount,
		&t.ExchangeRate, &t.AmountUSD, &description, &createdBy, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	t.CategoryID = deref(categoryID)
	t.OrderID = deref(orderID)
	t.Description = deref(description)
	t.CreatedBy = deref(createdBy)
	return &t, nil
}

// Create persiste una transacción del libro.
func (r *FinanceTransactionRepo) Create(t *entity.FinanceTransaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	query := `
		INSERT INTO finance_transactions (id, account_id, category_id, order_id, type, amount, exchange_rate, amount_usd, description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		t.ID, t.AccountID, nullable(t.CategoryID), nullable(t.OrderID), t.Type,
		t.Amount, t.ExchangeRate, t.AmountUSD, nullable(t.Description), nullable(t.CreatedBy), t.CreatedAt,
	)
	if err != nil {
		return wrapDBErr("create finance transaction", err)
	}
	return nil
}

// GetByID obtiene una transacción por ID. Devuelve nil si no existe.
func (r *FinanceTransactionRepo) GetByID(id string) (*entity.FinanceTransaction, error) {
	query := `SELECT ` + trxColumns + ` FROM finance_transactions WHERE id = $1`
	t, err := scanTrx(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, wrapDBErr("get finance transaction", err)
	}
	return t, nil
}

// ListByDay lista las transacciones de un día calendario (00:00 a 24:00, hora del servidor).
func (r *FinanceTransactionRepo) ListByDay(day time.Time) ([]*entity.FinanceTransaction, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)
	query := `
		SELECT ` + trxColumns + ` FROM finance_transactions
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, start, end)
	if err != nil {
		return nil, wrapDBErr("list transactions by day", err)
	}
	defer rows.Close()
	var list []*entity.FinanceTransaction
	for rows.Next() {
		var t entity.FinanceTransaction
		var categoryID, orderID, description, createdBy *string
		if err := rows.Scan(&t.ID, &t.AccountID, &categoryID, &orderID, &t.Type, &t.Amount,
			&t.ExchangeRate, &t.AmountUSD, &description, &createdBy, &t.CreatedAt); err != nil {
			return nil, wrapDBErr("scan finance transaction", err)
		}
		t.CategoryID = deref(categoryID)
		t.OrderID = deref(orderID)
		t.Description = deref(description)
		t.CreatedBy = deref(createdBy)
		list = append(list, &t)
	}
	return list, rows.Err()
}

// CountByAccount cuenta las transacciones de una cuenta (guardia de borrado).
func (r *FinanceTransactionRepo) CountByAccount(accountID string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM finance_transactions WHERE account_id = $1`
	if err := r.q.QueryRow(context.Background(), query, accountID).Scan(&count); err != nil {
		return 0, wrapDBErr("count transactions by account", err)
	}
	return count, nil
}

// CountByCategory cuenta las transacciones de una categoría (guardia de borrado).
func (r *FinanceTransactionRepo) CountByCategory(categoryID string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM finance_transactions WHERE category_id = $1`
	if err := r.q.QueryRow(context.Background(), query, categoryID).Scan(&count); err != nil {
		return 0, wrapDBErr("count transactions by category", err)
	}
	return count, nil
}
