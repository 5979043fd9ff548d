package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/tienda-backoffice/internal/domain"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/repository"
)

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

// ProfileRepo implementación de ProfileRepository sobre PostgreSQL (usable con pool o tx).
type ProfileRepo struct {
	q Querier
}

// NewProfileRepository construye el adaptador de perfiles. Pasar pool o tx (Querier).
func NewProfileRepository(q Querier) *ProfileRepo {
	return &ProfileRepo{q: q}
}

const profileColumns = `id, name, email, phone, store_credit, created_at, updated_at`

func scanProfile(row pgx.Row) (*entity.CustomerProfile, error) {
	var p entity.CustomerProfile
	var email, phone *string
	err := row.Scan(&p.ID, &p.Name, &email, &phone, &p.StoreCredit, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.Email = deref(email)
	p.Phone = deref(phone)
	return &p, nil
}

// GetByID obtiene un perfil por ID. Devuelve nil si no existe.
func (r *ProfileRepo) GetByID(id string) (*entity.CustomerProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM customer_profiles WHERE id = $1`
	p, err := scanProfile(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, wrapDBErr("get profile", err)
	}
	return p, nil
}

// GetForUpdate obtiene el perfil y bloquea la fila (SELECT FOR UPDATE).
// Serializa las mutaciones de saldo de crédito.
func (r *ProfileRepo) GetForUpdate(id string) (*entity.CustomerProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM customer_profiles WHERE id = $1 FOR UPDATE`
	p, err := scanProfile(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, wrapDBErr("get profile for update", err)
	}
	return p, nil
}

// UpdateCredit fija el saldo denormalizado de crédito del perfil.
func (r *ProfileRepo) UpdateCredit(id string, credit decimal.Decimal) error {
	query := `UPDATE customer_profiles SET store_credit = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, credit)
	if err != nil {
		return wrapDBErr("update profile credit", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
