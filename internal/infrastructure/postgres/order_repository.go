package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/tienda-backoffice/internal/domain"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con pool o tx).
// Los metadatos de línea se guardan como JSONB.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de órdenes. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, profile_id, status, total, credit_applied, payment_discount, created_at, updated_at`

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	var profileID *string
	err := row.Scan(&o.ID, &profileID, &o.Status, &o.Total, &o.CreditApplied, &o.PaymentDiscount, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	o.ProfileID = deref(profileID)
	return &o, nil
}

// GetByID obtiene una orden por ID. Devuelve nil si no existe.
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, wrapDBErr("get order", err)
	}
	return o, nil
}

// GetForUpdate obtiene la orden y bloquea la fila (SELECT FOR UPDATE).
func (r *OrderRepo) GetForUpdate(id string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	o, err := scanOrder(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, wrapDBErr("get order for update", err)
	}
	return o, nil
}

// UpdateTotal fija el total derivado de la orden.
func (r *OrderRepo) UpdateTotal(id string, total decimal.Decimal) error {
	query := `UPDATE orders SET total = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, total)
	if err != nil {
		return wrapDBErr("update order total", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra la orden (solo cuando quedó sin líneas).
func (r *OrderRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr("delete order", err)
	}
	return nil
}

const itemColumns = `id, order_id, variant_id, product_id, quantity, unit_price, metadata, created_at, updated_at`

func scanItem(row pgx.Row) (*entity.OrderItem, error) {
	var i entity.OrderItem
	var variantID, productID *string
	var metadata []byte
	err := row.Scan(&i.ID, &i.OrderID, &variantID, &productID, &i.Quantity, &i.UnitPrice, &metadata, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	i.VariantID = deref(variantID)
	i.ProductID = deref(productID)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &i.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal item metadata: %w", err)
		}
	}
	return &i, nil
}

// ListItems lista las líneas de una orden.
func (r *OrderRepo) ListItems(orderID string) ([]*entity.OrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, wrapDBErr("list order items", err)
	}
	defer rows.Close()
	var list []*entity.OrderItem
	for rows.Next() {
		var i entity.OrderItem
		var variantID, productID *string
		var metadata []byte
		if err := rows.Scan(&i.ID, &i.OrderID, &variantID, &productID, &i.Quantity, &i.UnitPrice, &metadata, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, wrapDBErr("scan order item", err)
		}
		i.VariantID = deref(variantID)
		i.ProductID = deref(productID)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &i.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal item metadata: %w", err)
			}
		}
		list = append(list, &i)
	}
	return list, rows.Err()
}

// GetItem obtiene una línea por ID. Devuelve nil si no existe.
func (r *OrderRepo) GetItem(itemID string) (*entity.OrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE id = $1`
	i, err := scanItem(r.q.QueryRow(context.Background(), query, itemID))
	if err != nil {
		return nil, wrapDBErr("get order item", err)
	}
	return i, nil
}

// CreateItem persiste una línea nueva.
func (r *OrderRepo) CreateItem(item *entity.OrderItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	metadata, err := json.Marshal(item.Metadata)
	if err != nil {
		return fmt.Errorf("marshal item metadata: %w", err)
	}
	query := `
		INSERT INTO order_items (id, order_id, variant_id, product_id, quantity, unit_price, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.q.Exec(context.Background(), query,
		item.ID, item.OrderID, nullable(item.VariantID), nullable(item.ProductID),
		item.Quantity, item.UnitPrice, metadata, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return wrapDBErr("create order item", err)
	}
	return nil
}

// UpdateItem actualiza cantidad, precio y metadatos de una línea.
func (r *OrderRepo) UpdateItem(item *entity.OrderItem) error {
	metadata, err := json.Marshal(item.Metadata)
	if err != nil {
		return fmt.Errorf("marshal item metadata: %w", err)
	}
	query := `
		UPDATE order_items
		SET variant_id = $2, quantity = $3, unit_price = $4, metadata = $5, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		item.ID, nullable(item.VariantID), item.Quantity, item.UnitPrice, metadata,
	)
	if err != nil {
		return wrapDBErr("update order item", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteItem borra una línea.
func (r *OrderRepo) DeleteItem(itemID string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM order_items WHERE id = $1`, itemID)
	if err != nil {
		return wrapDBErr("delete order item", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
