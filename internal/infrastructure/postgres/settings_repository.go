package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/repository"
)

var _ repository.SettingsRepository = (*SettingsRepo)(nil)

// SettingsRepo lee la configuración global de la tienda (fila única).
type SettingsRepo struct {
	q Querier
}

// NewSettingsRepository construye el adaptador de configuración. Pasar pool o tx (Querier).
func NewSettingsRepository(q Querier) *SettingsRepo {
	return &SettingsRepo{q: q}
}

// GetExchangeRate devuelve la tasa VES/USD vigente.
// (cero, nil) si no hay fila o la tasa no fue configurada.
func (r *SettingsRepo) GetExchangeRate() (decimal.Decimal, error) {
	query := `SELECT exchange_rate FROM store_settings ORDER BY updated_at DESC LIMIT 1`
	var rate decimal.Decimal
	err := r.q.QueryRow(context.Background(), query).Scan(&rate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, wrapDBErr("get exchange rate", err)
	}
	return rate, nil
}
