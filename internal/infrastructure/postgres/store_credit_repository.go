package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/repository"
)

var _ repository.StoreCreditRepository = (*StoreCreditRepo)(nil)

// StoreCreditRepo implementación del libro de crédito de tienda sobre
// PostgreSQL (usable con pool o tx). Append-only.
type StoreCreditRepo struct {
	q Querier
}

// NewStoreCreditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStoreCreditRepository(q Querier) *StoreCreditRepo {
	return &StoreCreditRepo{q: q}
}

// Create persiste una entrada de crédito.
func (r *StoreCreditRepo) Create(e *entity.StoreCreditEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO store_credit_entries (id, profile_id, amount, type, reason, order_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		e.ID, e.ProfileID, e.Amount, e.Type, nullable(e.Reason), nullable(e.OrderID),
		nullable(e.CreatedBy), e.CreatedAt,
	)
	if err != nil {
		return wrapDBErr("create store credit entry", err)
	}
	return nil
}

// ListByProfile lista las entradas de crédito de un perfil, más recientes primero.
func (r *StoreCreditRepo) ListByProfile(profileID string, limit, offset int) ([]*entity.StoreCreditEntry, error) {
	query := `
		SELECT id, profile_id, amount, type, reason, order_id, created_by, created_at
		FROM store_credit_entries WHERE profile_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, profileID, limit, offset)
	if err != nil {
		return nil, wrapDBErr("list store credit entries", err)
	}
	defer rows.Close()
	var list []*entity.StoreCreditEntry
	for rows.Next() {
		var e entity.StoreCreditEntry
		var reason, orderID, createdBy *string
		if err := rows.Scan(&e.ID, &e.ProfileID, &e.Amount, &e.Type, &reason, &orderID, &createdBy, &e.CreatedAt); err != nil {
			return nil, wrapDBErr("scan store credit entry", err)
		}
		e.Reason = deref(reason)
		e.OrderID = deref(orderID)
		e.CreatedBy = deref(createdBy)
		list = append(list, &e)
	}
	return list, rows.Err()
}
