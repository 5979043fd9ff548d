package entity

import "time"

// Roles de operadores del back office.
const (
	RoleAdmin    = "admin"
	RoleOperador = "operador"
)

// User operador del back office (login con email y contraseña).
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string // admin | operador
	CreatedAt    time.Time
}
