package attendance

import "time"

// attendanceRow is the scan target for the attendances ⋈ employees read shape.
type attendanceRow struct {
	ID           uint64
	EmployeePK   uint64
	EmployeeID   string // business key, e.g. EMP001
	EmployeeName string
	AttendedOn   string // DATE → "YYYY-MM-DD"
	Status       string
	CreatedAt    time.Time
}

// employeeRef is the slice of the employee row the register needs.
type employeeRef struct {
	PK         uint64
	EmployeeID string
	FullName   string
}

func (r attendanceRow) toDTO() AttendanceResponse {
	return AttendanceResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		EmployeePK:   r.EmployeePK,
		Date:         r.AttendedOn,
		Status:       r.Status,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}
