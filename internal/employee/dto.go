package employee

import "time"

// ===== Requests =====

// Fields are bound without gin "required" tags: validation collects every
// field problem into one message instead of failing on the first.
type CreateEmployeeRequest struct {
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// ===== Responses =====

// updated_at exists in storage but is not part of the wire contract.
type EmployeeResponse struct {
	ID         uint64    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"created_at"`
}
