package attendance

import "time"

const (
	DateLayout = "2006-01-02"

	StatusPresent = "Present"
	StatusAbsent  = "Absent"
)

// ===== Requests =====

// Pointer fields so "absent" and "empty" can be told apart; required-field
// errors are collected by the service, not by gin binding.
type CreateAttendanceRequest struct {
	EmployeeRef *uint64 `json:"employee_ref"`
	Date        *string `json:"date"` // YYYY-MM-DD
	Status      *string `json:"status"`
}

// Update is partial: omitted fields keep their stored values. employee_ref
// may reassign the record to another employee.
type UpdateAttendanceRequest struct {
	ID          *uint64 `json:"id"`
	EmployeeRef *uint64 `json:"employee_ref,omitempty"`
	Date        *string `json:"date,omitempty"`
	Status      *string `json:"status,omitempty"`
}

type ListQuery struct {
	EmployeePK *uint64
	From       *string // YYYY-MM-DD, inclusive
	To         *string // YYYY-MM-DD, inclusive
}

// ===== Responses =====

// Employee display fields are denormalized into each record so the client
// needs no second lookup.
type AttendanceResponse struct {
	ID           uint64    `json:"id"`
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	EmployeePK   uint64    `json:"employee_pk"`
	Date         string    `json:"date"` // YYYY-MM-DD
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}
