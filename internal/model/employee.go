package model

import "time"

// Employee is the managed record for one staff member. Email is globally
// unique across all employees; the comparison is case-insensitive.
type Employee struct {
	ID         int64     `json:"id" db:"id"`
	FirstName  string    `json:"first_name" db:"first_name"`
	LastName   string    `json:"last_name" db:"last_name"`
	Email      string    `json:"email" db:"email"`
	Position   string    `json:"position" db:"position"`
	Department string    `json:"department" db:"department"`
	Salary     float64   `json:"salary" db:"salary"`
	HireDate   string    `json:"hire_date" db:"hire_date"` // YYYY-MM-DD
	Phone      *string   `json:"phone,omitempty" db:"phone"`
	Address    *string   `json:"address,omitempty" db:"address"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// EmployeeInput is the client-supplied payload for create and update. Both
// operations use full-record replace semantics, so the same shape serves both.
type EmployeeInput struct {
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	Position   string  `json:"position"`
	Department string  `json:"department"`
	// Pointer so a missing salary is distinguishable from an explicit zero.
	Salary   *float64 `json:"salary"`
	HireDate string   `json:"hire_date"`
	Phone      *string `json:"phone,omitempty"`
	Address    *string `json:"address,omitempty"`
}
