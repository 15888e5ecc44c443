package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rosterhq/rosterd/internal/model"
)

// employeeRow maps 1:1 to the employees table. It carries the normalized
// email column, which is a storage concern the domain model doesn't expose.
type employeeRow struct {
	ID         int64     `db:"id"`
	FirstName  string    `db:"first_name"`
	LastName   string    `db:"last_name"`
	Email      string    `db:"email"`
	EmailNorm  string    `db:"email_norm"`
	Position   string    `db:"position"`
	Department string    `db:"department"`
	Salary     float64   `db:"salary"`
	HireDate   string    `db:"hire_date"`
	Phone      *string   `db:"phone"`
	Address    *string   `db:"address"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func employeeRowFromModel(e *model.Employee) employeeRow {
	return employeeRow{
		ID:         e.ID,
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		Email:      e.Email,
		EmailNorm:  NormalizeEmail(e.Email),
		Position:   e.Position,
		Department: e.Department,
		Salary:     e.Salary,
		HireDate:   e.HireDate,
		Phone:      e.Phone,
		Address:    e.Address,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func (r employeeRow) toModel() model.Employee {
	return model.Employee{
		ID:         r.ID,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Position:   r.Position,
		Department: r.Department,
		Salary:     r.Salary,
		HireDate:   r.HireDate,
		Phone:      r.Phone,
		Address:    r.Address,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// CreateEmployee inserts a new employee record. The ID, CreatedAt, and
// UpdatedAt fields on e are populated after a successful insert. A violation
// of the email uniqueness constraint is returned as ErrDuplicateEmail.
func (s *Store) CreateEmployee(ctx context.Context, e *model.Employee) error {
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	row := employeeRowFromModel(e)

	if s.driver == "postgres" {
		const q = `INSERT INTO employees
			(first_name, last_name, email, email_norm, position, department,
			 salary, hire_date, phone, address, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id`
		err := s.db.QueryRowxContext(ctx, q,
			row.FirstName, row.LastName, row.Email, row.EmailNorm, row.Position,
			row.Department, row.Salary, row.HireDate, row.Phone, row.Address,
			row.CreatedAt, row.UpdatedAt).Scan(&e.ID)
		if err != nil {
			if isDuplicateKey(err) {
				return ErrDuplicateEmail
			}
			return fmt.Errorf("insert employee: %w", err)
		}
		return nil
	}

	const q = `INSERT INTO employees
		(first_name, last_name, email, email_norm, position, department,
		 salary, hire_date, phone, address, created_at, updated_at)
		VALUES
		(:first_name, :last_name, :email, :email_norm, :position, :department,
		 :salary, :hire_date, :phone, :address, :created_at, :updated_at)`

	result, err := s.db.NamedExecContext(ctx, q, row)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert employee: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get employee id: %w", err)
	}
	e.ID = id
	return nil
}

// GetEmployee returns an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id int64) (*model.Employee, error) {
	var row employeeRow
	q := s.db.Rebind("SELECT * FROM employees WHERE id = ?")
	if err := s.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	e := row.toModel()
	return &e, nil
}

// FindEmployeeByEmail returns the employee holding the given email, compared
// case-insensitively. Returns ErrNotFound when the email is unused.
func (s *Store) FindEmployeeByEmail(ctx context.Context, email string) (*model.Employee, error) {
	var row employeeRow
	q := s.db.Rebind("SELECT * FROM employees WHERE email_norm = ?")
	if err := s.db.GetContext(ctx, &row, q, NormalizeEmail(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find employee by email: %w", err)
	}
	e := row.toModel()
	return &e, nil
}

// ListEmployees returns all employee records ordered by creation time, most
// recent first. Ties are broken by id so insertion order wins within a
// timestamp granule.
func (s *Store) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	var rows []employeeRow
	const q = "SELECT * FROM employees ORDER BY created_at DESC, id DESC"
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	employees := make([]model.Employee, len(rows))
	for i, r := range rows {
		employees[i] = r.toModel()
	}
	return employees, nil
}

// CountEmployees returns the number of employee records.
func (s *Store) CountEmployees(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM employees"); err != nil {
		return 0, fmt.Errorf("count employees: %w", err)
	}
	return count, nil
}

// UpdateEmployee overwrites all mutable fields of an existing employee and
// refreshes UpdatedAt. CreatedAt is never touched. Returns ErrNotFound when
// the id does not exist and ErrDuplicateEmail when the new email collides
// with another record.
func (s *Store) UpdateEmployee(ctx context.Context, e *model.Employee) error {
	e.UpdatedAt = time.Now().UTC()
	row := employeeRowFromModel(e)

	const q = `UPDATE employees SET
		first_name = :first_name, last_name = :last_name, email = :email,
		email_norm = :email_norm, position = :position, department = :department,
		salary = :salary, hire_date = :hire_date, phone = :phone,
		address = :address, updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, row)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("update employee: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update employee rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEmployee permanently removes an employee record by ID.
func (s *Store) DeleteEmployee(ctx context.Context, id int64) error {
	q := s.db.Rebind("DELETE FROM employees WHERE id = ?")
	result, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete employee rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
