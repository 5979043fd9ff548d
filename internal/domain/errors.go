package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// La capa HTTP los traduce a códigos de estado; la infraestructura envuelve
// los errores del store con %w sobre estos sentinelas.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrUnavailable  = errors.New("almacén de datos no disponible")
	ErrInternal     = errors.New("inconsistencia interna")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
)
