package employee

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	validator "github.com/go-playground/validator/v10"
	mysql "github.com/go-sql-driver/mysql"
)

// ===== Error model (same shape as attendance) =====
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

// Per-field messages joined into the single error string the client expects:
// "employee_id: ... | email: ...".
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

const (
	msgBlank        = "This field may not be blank."
	msgUnique       = "This field must be unique."
	msgInvalidEmail = "Enter a valid email address."
	msgBlankEmpID   = "Employee ID cannot be blank."
	msgNotFound     = "Employee not found."
)

var validate = validator.New()

// ===== Service =====

type storeAPI interface {
	List(ctx context.Context) ([]Employee, error)
	GetByID(ctx context.Context, id uint64) (*Employee, error)
	Insert(ctx context.Context, in CreateEmployeeRequest) (*Employee, error)
	Delete(ctx context.Context, id uint64) error
	ExistsByEmployeeID(ctx context.Context, employeeID string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type Service struct {
	store storeAPI
}

func NewService(db *sql.DB) *Service { return &Service{store: NewStore(db)} }

// GET /employees/
func (s *Service) List(ctx context.Context) ([]EmployeeResponse, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]EmployeeResponse, 0, len(rows))
	for _, e := range rows {
		out = append(out, e.toDTO())
	}
	return out, nil
}

// POST /employees/
//
// Normalization: employee_id trimmed, email trimmed and lowercased. Every
// field problem is collected before returning, then the uniqueness pre-check
// runs so duplicates get a precise message. The unique keys remain the real
// arbiter; a race loser's 1062 is mapped to the same message.
func (s *Service) Create(ctx context.Context, in CreateEmployeeRequest) (EmployeeResponse, error) {
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	var errs []fieldError
	if in.EmployeeID == "" {
		errs = append(errs, fieldError{"employee_id", msgBlankEmpID})
	}
	if strings.TrimSpace(in.FullName) == "" {
		errs = append(errs, fieldError{"full_name", msgBlank})
	}
	if in.Email == "" {
		errs = append(errs, fieldError{"email", msgBlank})
	} else if err := validate.Var(in.Email, "email"); err != nil {
		errs = append(errs, fieldError{"email", msgInvalidEmail})
	}
	if strings.TrimSpace(in.Department) == "" {
		errs = append(errs, fieldError{"department", msgBlank})
	}
	if len(errs) > 0 {
		return EmployeeResponse{}, ErrInvalid(joinFieldErrors(errs))
	}

	if taken, err := s.store.ExistsByEmployeeID(ctx, in.EmployeeID); err != nil {
		return EmployeeResponse{}, err
	} else if taken {
		errs = append(errs, fieldError{"employee_id", msgUnique})
	}
	if taken, err := s.store.ExistsByEmail(ctx, in.Email); err != nil {
		return EmployeeResponse{}, err
	} else if taken {
		errs = append(errs, fieldError{"email", msgUnique})
	}
	if len(errs) > 0 {
		return EmployeeResponse{}, ErrConflict(joinFieldErrors(errs))
	}

	e, err := s.store.Insert(ctx, in)
	if err != nil {
		if fe, ok := duplicateKeyFieldError(err); ok {
			return EmployeeResponse{}, ErrConflict(joinFieldErrors([]fieldError{fe}))
		}
		return EmployeeResponse{}, err
	}
	return e.toDTO(), nil
}

// GET /employees/:id/
func (s *Service) Get(ctx context.Context, id uint64) (EmployeeResponse, error) {
	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return EmployeeResponse{}, ErrNotFound(msgNotFound)
		}
		return EmployeeResponse{}, err
	}
	return e.toDTO(), nil
}

// DELETE /employees/:id/ — attendance rows cascade at the store level.
func (s *Service) Delete(ctx context.Context, id uint64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound(msgNotFound)
		}
		return err
	}
	return nil
}

// duplicateKeyFieldError maps a MySQL 1062 to the field whose unique key was
// hit, based on the key name in the driver message.
func duplicateKeyFieldError(err error) (fieldError, bool) {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != 1062 {
		return fieldError{}, false
	}
	if strings.Contains(me.Message, "uq_employees_email") {
		return fieldError{"email", msgUnique}, true
	}
	return fieldError{"employee_id", msgUnique}, true
}
