package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/tienda-backoffice/internal/domain"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/repository"
)

var _ repository.FinanceCategoryRepository = (*FinanceCategoryRepo)(nil)

// FinanceCategoryRepo implementación de FinanceCategoryRepository sobre PostgreSQL (usable con pool o tx).
type FinanceCategoryRepo struct {
	q Querier
}

// NewFinanceCategoryRepository construye el adaptador de categorías. Pasar pool o tx (Querier).
func NewFinanceCategoryRepository(q Querier) *FinanceCategoryRepo {
	return &FinanceCategoryRepo{q: q}
}

// Create persiste una categoría nueva.
func (r *FinanceCategoryRepo) Create(c *entity.FinanceCategory) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	query := `INSERT INTO finance_categories (id, name, active, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(context.Background(), query, c.ID, c.Name, c.Active, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return wrapDBErr("create finance category", err)
	}
	return nil
}

// GetByID obtiene una categoría por ID. Devuelve nil si no existe.
func (r *FinanceCategoryRepo) GetByID(id string) (*entity.FinanceCategory, error) {
	query := `SELECT id, name, active, created_at FROM finance_categories WHERE id = $1`
	var c entity.FinanceCategory
	err := r.q.QueryRow(context.Background(), query, id).Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapDBErr("get finance category", err)
	}
	return &c, nil
}

// Update actualiza nombre y estado de la categoría.
func (r *FinanceCategoryRepo) Update(c *entity.FinanceCategory) error {
	query := `UPDATE finance_categories SET name = $2, active = $3 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, c.ID, c.Name, c.Active)
	if err != nil {
		return wrapDBErr("update finance category", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra la categoría (el use case ya verificó que no tenga transacciones).
func (r *FinanceCategoryRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM finance_categories WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr("delete finance category", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista todas las categorías.
func (r *FinanceCategoryRepo) List() ([]*entity.FinanceCategory, error) {
	query := `SELECT id, name, active, created_at FROM finance_categories ORDER BY name`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, wrapDBErr("list finance categories", err)
	}
	defer rows.Close()
	var list []*entity.FinanceCategory
	for rows.Next() {
		var c entity.FinanceCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt); err != nil {
			return nil, wrapDBErr("scan finance category", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
