package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/tienda-backoffice/internal/domain"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/repository"
)

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

// ReturnRepo implementación de ReturnRepository sobre PostgreSQL (usable con pool o tx).
type ReturnRepo struct {
	q Querier
}

// NewReturnRepository construye el adaptador de devoluciones. Pasar pool o tx (Querier).
func NewReturnRepository(q Querier) *ReturnRepo {
	return &ReturnRepo{q: q}
}

const returnColumns = `id, control_id, kind, order_id, profile_id, status, reason, amount_credited, admin_notes, created_by, created_at, updated_at`

func scanReturn(row pgx.Row) (*entity.ReturnRecord, error) {
	var rec entity.ReturnRecord
	var orderID, reason, adminNotes, createdBy *string
	err := row.Scan(&rec.ID, &rec.ControlID, &rec.Kind, &orderID, &rec.ProfileID, &rec.Status,
		&reason, &rec.AmountCredited, &adminNotes, &createdBy, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	rec.OrderID = deref(orderID)
	rec.Reason = deref(reason)
	rec.AdminNotes = deref(adminNotes)
	rec.CreatedBy = deref(createdBy)
	return &rec, nil
}

// Create persiste un registro de devolución.
func (r *ReturnRepo) Create(rec *entity.ReturnRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	query := `
		INSERT INTO returns (id, control_id, kind, order_id, profile_id, status, reason, amount_credited, admin_notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		rec.ID, rec.ControlID, rec.Kind, nullable(rec.OrderID), rec.ProfileID, rec.Status,
		nullable(rec.Reason), rec.AmountCredited, nullable(rec.AdminNotes), nullable(rec.CreatedBy),
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return wrapDBErr("create return", err)
	}
	return nil
}

// GetByID obtiene un registro por ID. Devuelve nil si no existe.
func (r *ReturnRepo) GetByID(id string) (*entity.ReturnRecord, error) {
	query := `SELECT ` + returnColumns + ` FROM returns WHERE id = $1`
	rec, err := scanReturn(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, wrapDBErr("get return", err)
	}
	return rec, nil
}

// GetForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE).
func (r *ReturnRepo) GetForUpdate(id string) (*entity.ReturnRecord, error) {
	query := `SELECT ` + returnColumns + ` FROM returns WHERE id = $1 FOR UPDATE`
	rec, err := scanReturn(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, wrapDBErr("get return for update", err)
	}
	return rec, nil
}

// Update actualiza estado, monto acreditado y notas del registro.
func (r *ReturnRepo) Update(rec *entity.ReturnRecord) error {
	query := `
		UPDATE returns
		SET status = $2, amount_credited = $3, admin_notes = $4, updated_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		rec.ID, rec.Status, rec.AmountCredited, nullable(rec.AdminNotes), rec.UpdatedAt,
	)
	if err != nil {
		return wrapDBErr("update return", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista registros, opcionalmente filtrados por estado.
func (r *ReturnRepo) List(status entity.ReturnStatus, limit, offset int) ([]*entity.ReturnRecord, error) {
	query := `SELECT ` + returnColumns + ` FROM returns`
	args := []any{}
	pos := 1
	if status != "" {
		query += fmt.Sprintf(" WHERE status = $%d", pos)
		args = append(args, status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, wrapDBErr("list returns", err)
	}
	defer rows.Close()
	var list []*entity.ReturnRecord
	for rows.Next() {
		var rec entity.ReturnRecord
		var orderID, reason, adminNotes, createdBy *string
		if err := rows.Scan(&rec.ID, &rec.ControlID, &rec.Kind, &orderID, &rec.ProfileID, &rec.Status,
			&reason, &rec.AmountCredited, &adminNotes, &createdBy, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, wrapDBErr("scan return", err)
		}
		rec.OrderID = deref(orderID)
		rec.Reason = deref(reason)
		rec.AdminNotes = deref(adminNotes)
		rec.CreatedBy = deref(createdBy)
		list = append(list, &rec)
	}
	return list, rows.Err()
}

// CreateLine persiste una línea de devolución.
func (r *ReturnRepo) CreateLine(l *entity.ReturnLine) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	query := `
		INSERT INTO return_lines (id, return_id, variant_id, product_id, order_item_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		l.ID, l.ReturnID, nullable(l.VariantID), nullable(l.ProductID), nullable(l.OrderItemID),
		l.Quantity, l.UnitPrice,
	)
	if err != nil {
		return wrapDBErr("create return line", err)
	}
	return nil
}

// GetLines lista las líneas de una devolución.
func (r *ReturnRepo) GetLines(returnID string) ([]*entity.ReturnLine, error) {
	query := `
		SELECT id, return_id, variant_id, product_id, order_item_id, quantity, unit_price
		FROM return_lines WHERE return_id = $1`
	rows, err := r.q.Query(context.Background(), query, returnID)
	if err != nil {
		return nil, wrapDBErr("get return lines", err)
	}
	defer rows.Close()
	var list []*entity.ReturnLine
	for rows.Next() {
		var l entity.ReturnLine
		var variantID, productID, orderItemID *string
		if err := rows.Scan(&l.ID, &l.ReturnID, &variantID, &productID, &orderItemID, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, wrapDBErr("scan return line", err)
		}
		l.VariantID = deref(variantID)
		l.ProductID = deref(productID)
		l.OrderItemID = deref(orderItemID)
		list = append(list, &l)
	}
	return list, rows.Err()
}
