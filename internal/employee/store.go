package employee

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(ctx context.Context, q string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, q string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, q string, args ...any) *sql.Row
}

type Store struct{ db DBTX }

func NewStore(db DBTX) *Store { return &Store{db: db} }

const employeeColumns = `id, employee_id, full_name, email, department, created_at, updated_at`

// List: all employees ordered by business key.
func (s *Store) List(ctx context.Context) ([]Employee, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT `+employeeColumns+`
	FROM employees
	ORDER BY employee_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make([]Employee, 0, 16)
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.FullName, &e.Email, &e.Department, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) GetByID(ctx context.Context, id uint64) (*Employee, error) {
	var e Employee
	err := s.db.QueryRowContext(ctx, `
	SELECT `+employeeColumns+`
	FROM employees
	WHERE id = ?`, id,
	).Scan(&e.ID, &e.EmployeeID, &e.FullName, &e.Email, &e.Department, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Insert persists the already-normalized record and returns it with the
// assigned id and DB-side timestamps.
func (s *Store) Insert(ctx context.Context, in CreateEmployeeRequest) (*Employee, error) {
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO employees (employee_id, full_name, email, department)
	VALUES (?, ?, ?, ?)`,
		in.EmployeeID, in.FullName, in.Email, in.Department)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, uint64(id))
}

// Delete removes the employee; attendance rows go with it via the FK cascade.
func (s *Store) Delete(ctx context.Context, id uint64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) ExistsByEmployeeID(ctx context.Context, employeeID string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM employees WHERE employee_id = ? LIMIT 1`, employeeID)
}

func (s *Store) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM employees WHERE email = ? LIMIT 1`, email)
}

func (s *Store) exists(ctx context.Context, q string, arg any) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, q, arg).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
