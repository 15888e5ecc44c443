package store

import "fmt"

// migrate creates the admins and employees tables if they do not exist. The
// statements are idempotent so the same migration set runs safely on every
// startup, and on every supported driver. For postgres and mysql deployments
// the schema may equally be provisioned externally; these statements are
// written to coexist with that.
func (s *Store) migrate() error {
	for _, m := range migrationsFor(s.driver) {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

func migrationsFor(driver string) []string {
	switch driver {
	case "postgres":
		return []string{
			`CREATE TABLE IF NOT EXISTS admins (
				id BIGSERIAL PRIMARY KEY,
				username TEXT UNIQUE NOT NULL,
				password_hash TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE TABLE IF NOT EXISTS employees (
				id BIGSERIAL PRIMARY KEY,
				first_name TEXT NOT NULL,
				last_name TEXT NOT NULL,
				email TEXT NOT NULL,
				email_norm TEXT UNIQUE NOT NULL,
				position TEXT NOT NULL,
				department TEXT NOT NULL,
				salary DOUBLE PRECISION NOT NULL,
				hire_date TEXT NOT NULL,
				phone TEXT,
				address TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_employees_created_at ON employees(created_at)`,
		}
	case "mysql":
		return []string{
			`CREATE TABLE IF NOT EXISTS admins (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				username VARCHAR(50) UNIQUE NOT NULL,
				password_hash VARCHAR(100) NOT NULL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS employees (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				first_name VARCHAR(50) NOT NULL,
				last_name VARCHAR(50) NOT NULL,
				email VARCHAR(255) NOT NULL,
				email_norm VARCHAR(255) UNIQUE NOT NULL,
				position VARCHAR(100) NOT NULL,
				department VARCHAR(100) NOT NULL,
				salary DOUBLE NOT NULL,
				hire_date VARCHAR(10) NOT NULL,
				phone VARCHAR(50),
				address VARCHAR(200),
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				INDEX idx_employees_created_at (created_at)
			)`,
		}
	default: // sqlite
		return []string{
			`CREATE TABLE IF NOT EXISTS admins (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT UNIQUE NOT NULL,
				password_hash TEXT NOT NULL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS employees (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				first_name TEXT NOT NULL,
				last_name TEXT NOT NULL,
				email TEXT NOT NULL,
				email_norm TEXT UNIQUE NOT NULL,
				position TEXT NOT NULL,
				department TEXT NOT NULL,
				salary REAL NOT NULL,
				hire_date TEXT NOT NULL,
				phone TEXT,
				address TEXT,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_employees_created_at ON employees(created_at)`,
		}
	}
}
