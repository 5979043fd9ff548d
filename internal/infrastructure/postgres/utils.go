package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tu-usuario/tienda-backoffice/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// wrapDBErr traduce fallos de conexión/timeout a ErrUnavailable para que el
// handler responda 503 en lugar de 500. Los demás errores se envuelven tal cual.
func wrapDBErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %v", domain.ErrUnavailable, op, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// clase 08 = connection exception, 57 = operator intervention (shutdown)
		if strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57") {
			return fmt.Errorf("%w: %s: %v", domain.ErrUnavailable, op, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
