package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rosterhq/rosterd/internal/model"
	"github.com/rosterhq/rosterd/internal/store"
	"github.com/rosterhq/rosterd/internal/validate"
)

// EmployeeHandler exposes the CRUD surface over the employee collection.
// All routes require an authenticated principal.
type EmployeeHandler struct {
	store *store.Store
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(st *store.Store) *EmployeeHandler {
	return &EmployeeHandler{store: st}
}

// List returns all employee records, most recently created first.
// GET /api/employees
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees")
		return
	}
	if employees == nil {
		employees = []model.Employee{}
	}
	writeJSON(w, http.StatusOK, employees)
}

// Get returns a single employee by ID.
// GET /api/employees/{id}
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}

	employee, err := h.store.GetEmployee(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Employee not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get employee")
		return
	}

	writeJSON(w, http.StatusOK, employee)
}

// Create validates a candidate record and inserts it. The email pre-check
// exists for a precise error message; the storage-level uniqueness constraint
// is the authority, so a concurrent insert that wins the race still comes
// back as 409 rather than 500.
// POST /api/employees
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.EmployeeInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if violations := validate.Employee(&in); len(violations) > 0 {
		writeValidationError(w, violations)
		return
	}

	if _, err := h.store.FindEmployeeByEmail(r.Context(), in.Email); err == nil {
		writeError(w, http.StatusConflict, "An employee with this email already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Failed to check email")
		return
	}

	employee := employeeFromInput(&in)
	if err := h.store.CreateEmployee(r.Context(), employee); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "An employee with this email already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create employee")
		return
	}

	writeJSON(w, http.StatusCreated, employee)
}

// Update replaces all mutable fields of an existing employee. Full-record
// semantics: every required field must be resupplied.
// PUT /api/employees/{id}
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}

	existing, err := h.store.GetEmployee(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Employee not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get employee")
		return
	}

	var in model.EmployeeInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if violations := validate.Employee(&in); len(violations) > 0 {
		writeValidationError(w, violations)
		return
	}

	// Any OTHER record holding the same normalized email is a conflict.
	if other, err := h.store.FindEmployeeByEmail(r.Context(), in.Email); err == nil {
		if other.ID != id {
			writeError(w, http.StatusConflict, "An employee with this email already exists")
			return
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Failed to check email")
		return
	}

	employee := employeeFromInput(&in)
	employee.ID = id
	employee.CreatedAt = existing.CreatedAt

	if err := h.store.UpdateEmployee(r.Context(), employee); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateEmail):
			writeError(w, http.StatusConflict, "An employee with this email already exists")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "Employee not found")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to update employee")
		}
		return
	}

	writeJSON(w, http.StatusOK, employee)
}

// Delete permanently removes an employee record.
// DELETE /api/employees/{id}
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteEmployee(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Employee not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete employee")
		return
	}

	writeJSON(w, http.StatusOK, model.AckResponse{
		Success: true,
		Message: "Employee deleted",
	})
}

// employeeID parses the {id} URL parameter, writing a 400 response itself
// when the value is not an integer.
func employeeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee ID: "+idStr)
		return 0, false
	}
	return id, true
}

func employeeFromInput(in *model.EmployeeInput) *model.Employee {
	var phone, address *string
	if in.Phone != nil && *in.Phone != "" {
		phone = in.Phone
	}
	if in.Address != nil && *in.Address != "" {
		address = in.Address
	}
	return &model.Employee{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		Position:   in.Position,
		Department: in.Department,
		Salary:     *in.Salary,
		HireDate:   in.HireDate,
		Phone:      phone,
		Address:    address,
	}
}
