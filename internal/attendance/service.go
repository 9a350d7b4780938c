package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	mysql "github.com/go-sql-driver/mysql"

	platformdb "hr-backend/internal/platform/db"
)

// ===== Error model (same shape as employee) =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument, CodeConflict:
			// Conflicts are 400, not 409: the frontend keys its error toast
			// off a 400 with an {error} body.
			return 400
		case CodeNotFound:
			return 404
		default:
			return 500
		}
	}
	return 500
}

const (
	msgIDRequired         = "id is required for update"
	msgRecordNotFound     = "Attendance record not found"
	msgFieldRequired      = "This field is required."
	msgDateWrongFormat    = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	msgNotAValidChoiceFmt = `"%s" is not a valid choice.`
	msgInvalidPKFmt       = `Invalid pk "%d" - object does not exist.`
	msgAlreadyMarkedFmt   = "Attendance for %s on %s is already marked."
)

// ===== Service =====

type storeAPI interface {
	GetEmployeeRef(ctx context.Context, pk uint64) (*employeeRef, error)
	FindJoinedByID(ctx context.Context, id uint64) (*attendanceRow, error)
	ExistsForEmployeeOnDate(ctx context.Context, employeePK uint64, date string, excludeID uint64) (bool, error)
	Insert(ctx context.Context, employeePK uint64, date, status string) (uint64, error)
	Update(ctx context.Context, id, employeePK uint64, date, status string) error
	List(ctx context.Context, q ListQuery) ([]attendanceRow, error)
}

// Service runs every write as check-then-write inside one transaction.
// The UNIQUE key on (employee_pk, attended_on) stays the final arbiter: a
// concurrent writer that slips past the pre-check loses on 1062, which is
// translated back into the same conflict message.
type Service struct {
	tx func(ctx context.Context, fn func(store storeAPI) error) error
	ro func(ctx context.Context, fn func(store storeAPI) error) error
}

func NewService(db *sql.DB) *Service {
	return &Service{
		tx: func(ctx context.Context, fn func(storeAPI) error) error {
			return platformdb.RunInTx(ctx, db, nil, func(ctx context.Context, tx platformdb.DBTX) error {
				return fn(NewStore(tx))
			})
		},
		ro: func(ctx context.Context, fn func(storeAPI) error) error {
			return platformdb.ReadOnly(ctx, db, func(ctx context.Context, tx platformdb.DBTX) error {
				return fn(NewStore(tx))
			})
		},
	}
}

// GET /attendance/
func (s *Service) List(ctx context.Context, q ListQuery) ([]AttendanceResponse, error) {
	var errs []fieldError
	if q.From != nil && *q.From != "" {
		if _, err := parseDate(*q.From); err != nil {
			errs = append(errs, fieldError{"date_from", msgDateWrongFormat})
		}
	}
	if q.To != nil && *q.To != "" {
		if _, err := parseDate(*q.To); err != nil {
			errs = append(errs, fieldError{"date_to", msgDateWrongFormat})
		}
	}
	if len(errs) > 0 {
		return nil, ErrInvalid(joinFieldErrors(errs))
	}

	var rows []attendanceRow
	err := s.ro(ctx, func(store storeAPI) error {
		var err error
		rows, err = store.List(ctx, q)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]AttendanceResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDTO())
	}
	return out, nil
}

// POST /attendance/ — mark attendance for an employee on a date.
func (s *Service) Create(ctx context.Context, in CreateAttendanceRequest) (AttendanceResponse, error) {
	var errs []fieldError
	if in.EmployeeRef == nil {
		errs = append(errs, fieldError{"employee_ref", msgFieldRequired})
	}
	date := ""
	if in.Date == nil || *in.Date == "" {
		errs = append(errs, fieldError{"date", msgFieldRequired})
	} else if d, err := parseDate(*in.Date); err != nil {
		errs = append(errs, fieldError{"date", msgDateWrongFormat})
	} else {
		date = d
	}
	status := StatusPresent
	if in.Status != nil && *in.Status != "" {
		st, ok := validStatus(*in.Status)
		if !ok {
			errs = append(errs, fieldError{"status", fmt.Sprintf(msgNotAValidChoiceFmt, *in.Status)})
		} else {
			status = st
		}
	}
	if len(errs) > 0 {
		return AttendanceResponse{}, ErrInvalid(joinFieldErrors(errs))
	}

	var out AttendanceResponse
	err := s.tx(ctx, func(store storeAPI) error {
		emp, err := resolveEmployee(ctx, store, *in.EmployeeRef)
		if err != nil {
			return err
		}
		if err := checkNotMarked(ctx, store, emp, date, 0); err != nil {
			return err
		}

		id, err := store.Insert(ctx, emp.PK, date, status)
		if err != nil {
			if isDuplicateKey(err) {
				// Race loser: a concurrent create got the unique key first.
				return alreadyMarked(emp, date)
			}
			return err
		}
		row, err := store.FindJoinedByID(ctx, id)
		if err != nil {
			return ErrInternal("inserted but not found")
		}
		out = row.toDTO()
		return nil
	})
	if err != nil {
		return AttendanceResponse{}, err
	}
	return out, nil
}

// PUT /attendance/ — partial update; omitted fields keep stored values.
func (s *Service) Update(ctx context.Context, in UpdateAttendanceRequest) (AttendanceResponse, error) {
	if in.ID == nil || *in.ID == 0 {
		return AttendanceResponse{}, ErrInvalid(msgIDRequired)
	}

	// Format checks first: they need no storage state.
	var errs []fieldError
	newDate := ""
	if in.Date != nil && *in.Date != "" {
		d, err := parseDate(*in.Date)
		if err != nil {
			errs = append(errs, fieldError{"date", msgDateWrongFormat})
		} else {
			newDate = d
		}
	}
	newStatus := ""
	if in.Status != nil && *in.Status != "" {
		st, ok := validStatus(*in.Status)
		if !ok {
			errs = append(errs, fieldError{"status", fmt.Sprintf(msgNotAValidChoiceFmt, *in.Status)})
		} else {
			newStatus = st
		}
	}
	if len(errs) > 0 {
		return AttendanceResponse{}, ErrInvalid(joinFieldErrors(errs))
	}

	var out AttendanceResponse
	err := s.tx(ctx, func(store storeAPI) error {
		cur, err := store.FindJoinedByID(ctx, *in.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound(msgRecordNotFound)
			}
			return err
		}

		// Effective (employee, date, status) after the partial payload.
		empPK := cur.EmployeePK
		if in.EmployeeRef != nil {
			empPK = *in.EmployeeRef
		}
		date := cur.AttendedOn
		if newDate != "" {
			date = newDate
		}
		status := cur.Status
		if newStatus != "" {
			status = newStatus
		}

		emp, err := resolveEmployee(ctx, store, empPK)
		if err != nil {
			return err
		}
		// The record itself is excluded: colliding only with itself is fine.
		if err := checkNotMarked(ctx, store, emp, date, cur.ID); err != nil {
			return err
		}

		if err := store.Update(ctx, cur.ID, emp.PK, date, status); err != nil {
			if isDuplicateKey(err) {
				return alreadyMarked(emp, date)
			}
			return err
		}
		row, err := store.FindJoinedByID(ctx, cur.ID)
		if err != nil {
			return ErrInternal("updated but not found")
		}
		out = row.toDTO()
		return nil
	})
	if err != nil {
		return AttendanceResponse{}, err
	}
	return out, nil
}

// ===== shared validation =====

func resolveEmployee(ctx context.Context, store storeAPI, pk uint64) (*employeeRef, error) {
	emp, err := store.GetEmployeeRef(ctx, pk)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalid("employee_ref: " + fmt.Sprintf(msgInvalidPKFmt, pk))
		}
		return nil, err
	}
	return emp, nil
}

func checkNotMarked(ctx context.Context, store storeAPI, emp *employeeRef, date string, excludeID uint64) error {
	taken, err := store.ExistsForEmployeeOnDate(ctx, emp.PK, date, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return alreadyMarked(emp, date)
	}
	return nil
}

func alreadyMarked(emp *employeeRef, date string) *APIError {
	return ErrConflict(fmt.Sprintf(msgAlreadyMarkedFmt, emp.FullName, date))
}

// ===== helpers =====

type fieldError struct {
	Field   string
	Message string
}

func joinFieldErrors(errs []fieldError) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, " | ")
}

func parseDate(s string) (string, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

func validStatus(s string) (string, bool) {
	switch s {
	case StatusPresent, StatusAbsent:
		return s, true
	}
	return "", false
}

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return false
}
