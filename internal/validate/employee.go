// Package validate implements the shared field-validation pass applied to
// employee create and update payloads. Every violated constraint is collected
// and reported together rather than short-circuiting on the first failure.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rosterhq/rosterd/internal/model"
)

const (
	maxNameLen       = 50
	maxPositionLen   = 100
	maxDepartmentLen = 100
	maxAddressLen    = 200
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// Deliberately lenient: any mix of digits, spaces, dashes, parens, and
	// plus signs passes, as long as at least one digit is present.
	phonePattern = regexp.MustCompile(`^[0-9+\-()\s]+$`)
	hasDigit     = regexp.MustCompile(`[0-9]`)
)

// Employee checks an employee payload against all field constraints and
// returns the full list of violations. An empty slice means the payload is
// valid.
func Employee(in *model.EmployeeInput) []model.Violation {
	var violations []model.Violation

	add := func(field, reason string) {
		violations = append(violations, model.Violation{Field: field, Reason: reason})
	}

	checkRequired := func(field, value string, maxLen int) {
		if strings.TrimSpace(value) == "" {
			add(field, field+" is required")
			return
		}
		if utf8.RuneCountInString(value) > maxLen {
			add(field, fmt.Sprintf("%s must be at most %d characters", field, maxLen))
		}
	}

	checkRequired("first_name", in.FirstName, maxNameLen)
	checkRequired("last_name", in.LastName, maxNameLen)
	checkRequired("position", in.Position, maxPositionLen)
	checkRequired("department", in.Department, maxDepartmentLen)

	switch {
	case strings.TrimSpace(in.Email) == "":
		add("email", "email is required")
	case !emailPattern.MatchString(strings.TrimSpace(in.Email)):
		add("email", "email must be a valid email address")
	}

	switch {
	case in.Salary == nil:
		add("salary", "salary is required")
	case *in.Salary < 0:
		add("salary", "salary must be a non-negative number")
	}

	if strings.TrimSpace(in.HireDate) == "" {
		add("hire_date", "hire_date is required")
	} else if _, err := time.Parse("2006-01-02", strings.TrimSpace(in.HireDate)); err != nil {
		add("hire_date", "hire_date must be a valid date in YYYY-MM-DD format")
	}

	if in.Phone != nil && *in.Phone != "" {
		if !phonePattern.MatchString(*in.Phone) || !hasDigit.MatchString(*in.Phone) {
			add("phone", "phone must contain only digits, spaces, dashes, parentheses, and plus signs")
		}
	}

	if in.Address != nil && utf8.RuneCountInString(*in.Address) > maxAddressLen {
		add("address", fmt.Sprintf("address must be at most %d characters", maxAddressLen))
	}

	return violations
}
