package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del libro de stock sobre PostgreSQL
// (usable con pool o tx). Solo inserta y consulta: el libro es append-only.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, variant_id, product_id, order_item_id, type, quantity, reason, created_by, created_at`

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var variantID, productID, orderItemID, reason, createdBy *string
	err := row.Scan(&m.ID, &variantID, &productID, &orderItemID, &m.Type, &m.Quantity, &reason, &createdBy, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	m.VariantID = deref(variantID)
	m.ProductID = deref(productID)
	m.OrderItemID = deref(orderItemID)
	m.Reason = deref(reason)
	m.CreatedBy = deref(createdBy)
	return &m, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create persiste un movimiento del libro de stock.
func (r *StockMovementRepo) Create(m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, variant_id, product_id, order_item_id, type, quantity, reason, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, nullable(m.VariantID), nullable(m.ProductID), nullable(m.OrderItemID),
		m.Type, m.Quantity, nullable(m.Reason), nullable(m.CreatedBy), m.CreatedAt,
	)
	if err != nil {
		return wrapDBErr("create stock movement", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID. Devuelve nil si no existe.
func (r *StockMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, wrapDBErr("get stock movement", err)
	}
	return m, nil
}

// GetSaleByOrderItem devuelve el movimiento de venta de una línea de orden,
// o nil si no existe (clave de la deducción exactamente-una-vez).
func (r *StockMovementRepo) GetSaleByOrderItem(orderItemID string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE order_item_id = $1 AND type = 'sale'`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, orderItemID))
	if err != nil {
		return nil, wrapDBErr("get sale by order item", err)
	}
	return m, nil
}

// ListByVariant lista movimientos de una variante en un rango de fechas.
func (r *StockMovementRepo) ListByVariant(variantID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE variant_id = $1`
	args := []any{variantID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, wrapDBErr("list movements by variant", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var variantID, productID, orderItemID, reason, createdBy *string
		if err := rows.Scan(&m.ID, &variantID, &productID, &orderItemID, &m.Type, &m.Quantity, &reason, &createdBy, &m.CreatedAt); err != nil {
			return nil, wrapDBErr("scan stock movement", err)
		}
		m.VariantID = deref(variantID)
		m.ProductID = deref(productID)
		m.OrderItemID = deref(orderItemID)
		m.Reason = deref(reason)
		m.CreatedBy = deref(createdBy)
		list = append(list, &m)
	}
	return list, rows.Err()
}

// SumByVariant devuelve la suma firmada de todos los movimientos de la variante.
func (r *StockMovementRepo) SumByVariant(variantID string) (int64, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM stock_movements WHERE variant_id = $1`
	var sum int64
	if err := r.q.QueryRow(context.Background(), query, variantID).Scan(&sum); err != nil {
		return 0, wrapDBErr("sum movements by variant", err)
	}
	return sum, nil
}
