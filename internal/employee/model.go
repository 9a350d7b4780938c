package employee

import "time"

// Employee is the storage-side model (scan target).
type Employee struct {
	ID         uint64
	EmployeeID string
	FullName   string
	Email      string
	Department string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (e Employee) toDTO() EmployeeResponse {
	return EmployeeResponse{
		ID:         e.ID,
		EmployeeID: e.EmployeeID,
		FullName:   e.FullName,
		Email:      e.Email,
		Department: e.Department,
		CreatedAt:  e.CreatedAt.UTC(),
	}
}
