package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

// Estados del usuario.
const (
	UserActive   = "active"
	UserInactive = "inactive"
)

// ValidRole verifica que el rol sea conocido.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleBodeguero || role == RoleVendedor
}

// User representa un usuario del back-office.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, bodeguero, vendedor
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
