package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/tienda-backoffice/internal/domain"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/repository"
)

var _ repository.FinanceAccountRepository = (*FinanceAccountRepo)(nil)

// FinanceAccountRepo implementación de FinanceAccountRepository sobre PostgreSQL (usable con pool o tx).
type FinanceAccountRepo struct {
	q Querier
}

// NewFinanceAccountRepository construye el adaptador de cuentas. Pasar pool o tx (Querier).
func NewFinanceAccountRepository(q Querier) *FinanceAccountRepo {
	return &FinanceAccountRepo{q: q}
}

const accountColumns = `id, name, currency, balance, active, created_at, updated_at`

func scanAccount(row pgx.Row) (*entity.FinanceAccount, error) {
	var a entity.FinanceAccount
	err := row.Scan(&a.ID, &a.Name, &a.Currency, &a.Balance, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// Create persiste una cuenta nueva.
func (r *FinanceAccountRepo) Create(a *entity.FinanceAccount) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	query := `
		INSERT INTO finance_accounts (id, name, currency, balance, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		a.ID, a.Name, a.Currency, a.Balance, a.Active, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return wrapDBErr("create finance account", err)
	}
	return nil
}

// GetByID obtiene una cuenta por ID. Devuelve nil si no existe.
func (r *FinanceAccountRepo) GetByID(id string) (*entity.FinanceAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM finance_accounts WHERE id = $1`
	a, err := scanAccount(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, wrapDBErr("get finance account", err)
	}
	return a, nil
}

// GetForUpdate obtiene la cuenta y bloquea la fila (SELECT FOR UPDATE).
// Serializa las mutaciones de saldo contra transacciones concurrentes.
func (r *FinanceAccountRepo) GetForUpdate(id string) (*entity.FinanceAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM finance_accounts WHERE id = $1 FOR UPDATE`
	a, err := scanAccount(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, wrapDBErr("get finance account for update", err)
	}
	return a, nil
}

// Update actualiza nombre y estado activo de la cuenta.
func (r *FinanceAccountRepo) Update(a *entity.FinanceAccount) error {
	query := `UPDATE finance_accounts SET name = $2, active = $3, updated_at = $4 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, a.ID, a.Name, a.Active, a.UpdatedAt)
	if err != nil {
		return wrapDBErr("update finance account", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateBalance fija el saldo corriente de la cuenta.
func (r *FinanceAccountRepo) UpdateBalance(id string, balance decimal.Decimal) error {
	query := `UPDATE finance_accounts SET balance = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, balance)
	if err != nil {
		return wrapDBErr("update account balance", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra la cuenta (el use case ya verificó que no tenga transacciones).
func (r *FinanceAccountRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM finance_accounts WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr("delete finance account", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista cuentas, con o sin las inactivas.
func (r *FinanceAccountRepo) List(includeInactive bool) ([]*entity.FinanceAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM finance_accounts`
	if !includeInactive {
		query += ` WHERE active`
	}
	query += ` ORDER BY name`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, wrapDBErr("list finance accounts", err)
	}
	defer rows.Close()
	var list []*entity.FinanceAccount
	for rows.Next() {
		var a entity.FinanceAccount
		if err := rows.Scan(&a.ID, &a.Name, &a.Currency, &a.Balance, &a.Active, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, wrapDBErr("scan finance account", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
