package entity

import "time"

// Supplier proveedor de mercancía. TaxID es único.
type Supplier struct {
	ID          string
	Name        string
	TaxID       string
	ContactName string
	Phone       string
	Email       string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
