package attendance

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
)

type DBTX interface {
	ExecContext(ctx context.Context, q string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, q string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, q string, args ...any) *sql.Row
}

type Store struct{ db DBTX }

func NewStore(db DBTX) *Store { return &Store{db: db} }

const joinedColumns = `
	a.id, a.employee_pk, e.employee_id, e.full_name,
	DATE_FORMAT(a.attended_on, '%Y-%m-%d') AS attended_on, a.status, a.created_at`

// GetEmployeeRef resolves the employee the payload points at.
func (s *Store) GetEmployeeRef(ctx context.Context, pk uint64) (*employeeRef, error) {
	var e employeeRef
	err := s.db.QueryRowContext(ctx, `
	SELECT id, employee_id, full_name
	FROM employees
	WHERE id = ?`, pk,
	).Scan(&e.PK, &e.EmployeeID, &e.FullName)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// FindJoinedByID returns one record in the denormalized read shape.
func (s *Store) FindJoinedByID(ctx context.Context, id uint64) (*attendanceRow, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT `+joinedColumns+`
	FROM attendances a
	JOIN employees e ON e.id = a.employee_pk
	WHERE a.id = ?`, id)

	var r attendanceRow
	if err := row.Scan(&r.ID, &r.EmployeePK, &r.EmployeeID, &r.EmployeeName, &r.AttendedOn, &r.Status, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// ExistsForEmployeeOnDate reports whether another record already occupies
// (employee, date). excludeID skips the record being updated; 0 excludes
// nothing.
func (s *Store) ExistsForEmployeeOnDate(ctx context.Context, employeePK uint64, date string, excludeID uint64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
	SELECT 1 FROM attendances
	WHERE employee_pk = ? AND attended_on = ? AND id <> ?
	LIMIT 1`, employeePK, date, excludeID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Insert(ctx context.Context, employeePK uint64, date, status string) (uint64, error) {
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO attendances (employee_pk, attended_on, status)
	VALUES (?, ?, ?)`, employeePK, date, status)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update overwrites the full effective state. RowsAffected is deliberately
// not checked: MySQL reports 0 for a no-op update of an existing row, and
// existence was already verified in the same transaction.
func (s *Store) Update(ctx context.Context, id, employeePK uint64, date, status string) error {
	_, err := s.db.ExecContext(ctx, `
	UPDATE attendances
	SET employee_pk = ?, attended_on = ?, status = ?
	WHERE id = ?`, employeePK, date, status, id)
	return err
}

// List: dynamic WHERE over the optional filters, newest date first, business
// key breaking ties.
func (s *Store) List(ctx context.Context, q ListQuery) ([]attendanceRow, error) {
	var (
		buf    bytes.Buffer
		args   []any
		wheres []string
	)

	buf.WriteString(`
	SELECT ` + joinedColumns + `
	FROM attendances a
	JOIN employees e ON e.id = a.employee_pk
	`)
	if q.EmployeePK != nil {
		wheres = append(wheres, "a.employee_pk = ?")
		args = append(args, *q.EmployeePK)
	}
	if q.From != nil && *q.From != "" {
		wheres = append(wheres, "a.attended_on >= ?")
		args = append(args, *q.From)
	}
	if q.To != nil && *q.To != "" {
		wheres = append(wheres, "a.attended_on <= ?")
		args = append(args, *q.To)
	}
	if len(wheres) > 0 {
		buf.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}
	buf.WriteString(" ORDER BY a.attended_on DESC, e.employee_id ASC")

	rows, err := s.db.QueryContext(ctx, buf.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]attendanceRow, 0, 32)
	for rows.Next() {
		var r attendanceRow
		if err := rows.Scan(&r.ID, &r.EmployeePK, &r.EmployeeID, &r.EmployeeName, &r.AttendedOn, &r.Status, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
