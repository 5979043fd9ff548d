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

var _ repository.VariantRepository = (*VariantRepo)(nil)

// VariantRepo implementación de VariantRepository sobre PostgreSQL (usable con pool o tx).
type VariantRepo struct {
	q Querier
}

// NewVariantRepository construye el adaptador de variantes. Pasar pool o tx (Querier).
func NewVariantRepository(q Querier) *VariantRepo {
	return &VariantRepo{q: q}
}

const variantColumns = `id, product_id, size, color, stock, price_override, created_at, updated_at`

func scanVariant(row pgx.Row) (*entity.ProductVariant, error) {
	var v entity.ProductVariant
	err := row.Scan(&v.ID, &v.ProductID, &v.Size, &v.Color, &v.Stock, &v.PriceOverride, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// GetByID obtiene una variante por ID. Devuelve nil si no existe.
func (r *VariantRepo) GetByID(id string) (*entity.ProductVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE id = $1`
	v, err := scanVariant(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, wrapDBErr("get variant", err)
	}
	return v, nil
}

// GetForUpdate obtiene la variante y bloquea la fila (SELECT FOR UPDATE).
func (r *VariantRepo) GetForUpdate(id string) (*entity.ProductVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE id = $1 FOR UPDATE`
	v, err := scanVariant(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, wrapDBErr("get variant for update", err)
	}
	return v, nil
}

// ListByProduct lista las variantes de un producto.
func (r *VariantRepo) ListByProduct(productID string) ([]*entity.ProductVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE product_id = $1 ORDER BY size, color`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, wrapDBErr("list variants", err)
	}
	defer rows.Close()
	var list []*entity.ProductVariant
	for rows.Next() {
		var v entity.ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Size, &v.Color, &v.Stock, &v.PriceOverride, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, wrapDBErr("scan variant", err)
		}
		list = append(list, &v)
	}
	return list, rows.Err()
}

// Create persiste una variante nueva.
func (r *VariantRepo) Create(v *entity.ProductVariant) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	query := `
		INSERT INTO product_variants (id, product_id, size, color, stock, price_override, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		v.ID, v.ProductID, v.Size, v.Color, v.Stock, v.PriceOverride, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return wrapDBErr("create variant", err)
	}
	return nil
}

// UpdateStock fija el stock derivado de la variante.
func (r *VariantRepo) UpdateStock(id string, stock int64) error {
	query := `UPDATE product_variants SET stock = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, stock)
	if err != nil {
		return wrapDBErr("update variant stock", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
