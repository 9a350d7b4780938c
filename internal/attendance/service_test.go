package attendance

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	mysql "github.com/go-sql-driver/mysql"
)

// --- mock store ---

type mockStore struct {
	getEmployeeRefFn func(ctx context.Context, pk uint64) (*employeeRef, error)
	findJoinedByIDFn func(ctx context.Context, id uint64) (*attendanceRow, error)
	existsFn         func(ctx context.Context, employeePK uint64, date string, excludeID uint64) (bool, error)
	insertFn         func(ctx context.Context, employeePK uint64, date, status string) (uint64, error)
	updateFn         func(ctx context.Context, id, employeePK uint64, date, status string) error
	listFn           func(ctx context.Context, q ListQuery) ([]attendanceRow, error)
}

func (m *mockStore) GetEmployeeRef(ctx context.Context, pk uint64) (*employeeRef, error) {
	if m.getEmployeeRefFn != nil {
		return m.getEmployeeRefFn(ctx, pk)
	}
	return &employeeRef{PK: pk, EmployeeID: "EMP001", FullName: "Alice Smith"}, nil
}
func (m *mockStore) FindJoinedByID(ctx context.Context, id uint64) (*attendanceRow, error) {
	if m.findJoinedByIDFn != nil {
		return m.findJoinedByIDFn(ctx, id)
	}
	return &attendanceRow{ID: id, EmployeePK: 1, EmployeeID: "EMP001", EmployeeName: "Alice Smith",
		AttendedOn: "2024-01-10", Status: StatusPresent, CreatedAt: time.Now()}, nil
}
func (m *mockStore) ExistsForEmployeeOnDate(ctx context.Context, employeePK uint64, date string, excludeID uint64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, employeePK, date, excludeID)
	}
	return false, nil
}
func (m *mockStore) Insert(ctx context.Context, employeePK uint64, date, status string) (uint64, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, employeePK, date, status)
	}
	return 5, nil
}
func (m *mockStore) Update(ctx context.Context, id, employeePK uint64, date, status string) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, employeePK, date, status)
	}
	return nil
}
func (m *mockStore) List(ctx context.Context, q ListQuery) ([]attendanceRow, error) {
	if m.listFn != nil {
		return m.listFn(ctx, q)
	}
	return nil, nil
}

// newTestService bypasses the real transaction plumbing: fn runs directly
// against the mock.
func newTestService(m *mockStore) *Service {
	pass := func(ctx context.Context, fn func(storeAPI) error) error { return fn(m) }
	return &Service{tx: pass, ro: pass}
}

func u64(v uint64) *uint64 { return &v }
func str(v string) *string { return &v }

func asAPIError(t *testing.T, err error) *APIError {
	t.Helper()
	var api *APIError
	if !errors.As(err, &api) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	return api
}

// --- create ---

func TestService_Create_DefaultsToPresent(t *testing.T) {
	var gotStatus string
	m := &mockStore{
		insertFn: func(ctx context.Context, employeePK uint64, date, status string) (uint64, error) {
			gotStatus = status
			return 5, nil
		},
	}
	svc := newTestService(m)

	resp, err := svc.Create(context.Background(), CreateAttendanceRequest{
		EmployeeRef: u64(1),
		Date:        str("2024-01-10"),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if gotStatus != StatusPresent {
		t.Errorf("status defaulted to %q, want Present", gotStatus)
	}
	if resp.ID != 5 || resp.EmployeeID != "EMP001" || resp.EmployeeName != "Alice Smith" || resp.EmployeePK != 1 {
		t.Errorf("denormalized fields missing: %+v", resp)
	}
}

func TestService_Create_MissingFields(t *testing.T) {
	svc := newTestService(&mockStore{})

	_, err := svc.Create(context.Background(), CreateAttendanceRequest{})
	api := asAPIError(t, err)
	if api.Code != CodeInvalidArgument {
		t.Fatalf("expected INVALID_ARGUMENT, got %s", api.Code)
	}
	want := "employee_ref: This field is required. | date: This field is required."
	if api.Message != want {
		t.Errorf("message mismatch:\n got: %s\nwant: %s", api.Message, want)
	}
}

func TestService_Create_BadDateAndStatus(t *testing.T) {
	svc := newTestService(&mockStore{})

	_, err := svc.Create(context.Background(), CreateAttendanceRequest{
		EmployeeRef: u64(1),
		Date:        str("10-01-2024"),
		Status:      str("Late"),
	})
	api := asAPIError(t, err)
	want := `date: Date has wrong format. Use one of these formats instead: YYYY-MM-DD. | status: "Late" is not a valid choice.`
	if api.Message != want {
		t.Errorf("message mismatch:\n got: %s\nwant: %s", api.Message, want)
	}
}

func TestService_Create_UnknownEmployee(t *testing.T) {
	m := &mockStore{
		getEmployeeRefFn: func(ctx context.Context, pk uint64) (*employeeRef, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := newTestService(m)

	_, err := svc.Create(context.Background(), CreateAttendanceRequest{
		EmployeeRef: u64(7),
		Date:        str("2024-01-10"),
	})
	api := asAPIError(t, err)
	if api.Code != CodeInvalidArgument {
		t.Fatalf("expected INVALID_ARGUMENT, got %s", api.Code)
	}
	want := `employee_ref: Invalid pk "7" - object does not exist.`
	if api.Message != want {
		t.Errorf("message mismatch:\n got: %s\nwant: %s", api.Message, want)
	}
}

func TestService_Create_Conflict(t *testing.T) {
	inserted := false
	m := &mockStore{
		existsFn: func(ctx context.Context, employeePK uint64, date string, excludeID uint64) (bool, error) {
			if excludeID != 0 {
				t.Errorf("create must exclude nothing, got excludeID=%d", excludeID)
			}
			return true, nil
		},
		insertFn: func(ctx context.Context, employeePK uint64, date, status string) (uint64, error) {
			inserted = true
			return 0, nil
		},
	}
	svc := newTestService(m)

	_, err := svc.Create(context.Background(), CreateAttendanceRequest{
		EmployeeRef: u64(1),
		Date:        str("2024-01-10"),
		Status:      str(StatusPresent),
	})
	api := asAPIError(t, err)
	if api.Code != CodeConflict {
		t.Fatalf("expected CONFLICT, got %s", api.Code)
	}
	if api.Message != "Attendance for Alice Smith on 2024-01-10 is already marked." {
		t.Errorf("unexpected message: %s", api.Message)
	}
	if inserted {
		t.Error("insert must not run after a failed conflict check")
	}
}

// Two concurrent creates for the same (employee, date): the loser's 1062 from
// the unique key must surface as the same conflict message.
func TestService_Create_RaceLoser(t *testing.T) {
	m := &mockStore{
		insertFn: func(ctx context.Context, employeePK uint64, date, status string) (uint64, error) {
			return 0, &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-2024-01-10' for key 'uq_attendances_employee_date'"}
		},
	}
	svc := newTestService(m)

	_, err := svc.Create(context.Background(), CreateAttendanceRequest{
		EmployeeRef: u64(1),
		Date:        str("2024-01-10"),
	})
	api := asAPIError(t, err)
	if api.Code != CodeConflict {
		t.Fatalf("expected CONFLICT, got %s", api.Code)
	}
	if api.Message != "Attendance for Alice Smith on 2024-01-10 is already marked." {
		t.Errorf("unexpected message: %s", api.Message)
	}
}

// --- update ---

func TestService_Update_RequiresID(t *testing.T) {
	svc := newTestService(&mockStore{})

	_, err := svc.Update(context.Background(), UpdateAttendanceRequest{Status: str(StatusAbsent)})
	api := asAPIError(t, err)
	if api.Code != CodeInvalidArgument || api.Message != "id is required for update" {
		t.Errorf("unexpected error: %v", api)
	}
}

func TestService_Update_NotFound(t *testing.T) {
	m := &mockStore{
		findJoinedByIDFn: func(ctx context.Context, id uint64) (*attendanceRow, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := newTestService(m)

	_, err := svc.Update(context.Background(), UpdateAttendanceRequest{ID: u64(99), Status: str(StatusAbsent)})
	api := asAPIError(t, err)
	if api.Code != CodeNotFound || api.Message != "Attendance record not found" {
		t.Errorf("unexpected error: %v", api)
	}
}

// Changing only the status must always succeed: the record's own (employee,
// date) pair is excluded from the conflict check.
func TestService_Update_SelfStatusChange(t *testing.T) {
	cur := &attendanceRow{ID: 5, EmployeePK: 1, EmployeeID: "EMP001", EmployeeName: "Alice Smith",
		AttendedOn: "2024-01-10", Status: StatusPresent, CreatedAt: time.Now()}

	var gotUpdate struct {
		id, empPK    uint64
		date, status string
	}
	calls := 0
	m := &mockStore{
		findJoinedByIDFn: func(ctx context.Context, id uint64) (*attendanceRow, error) {
			calls++
			if calls == 1 {
				return cur, nil
			}
			updated := *cur
			updated.Status = StatusAbsent
			return &updated, nil
		},
		existsFn: func(ctx context.Context, employeePK uint64, date string, excludeID uint64) (bool, error) {
			if excludeID != 5 {
				t.Errorf("conflict check must exclude the record itself, got excludeID=%d", excludeID)
			}
			if employeePK != 1 || date != "2024-01-10" {
				t.Errorf("effective pair = (%d, %s), want (1, 2024-01-10)", employeePK, date)
			}
			return false, nil
		},
		updateFn: func(ctx context.Context, id, employeePK uint64, date, status string) error {
			gotUpdate.id, gotUpdate.empPK, gotUpdate.date, gotUpdate.status = id, employeePK, date, status
			return nil
		},
	}
	svc := newTestService(m)

	resp, err := svc.Update(context.Background(), UpdateAttendanceRequest{ID: u64(5), Status: str(StatusAbsent)})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if gotUpdate.id != 5 || gotUpdate.empPK != 1 || gotUpdate.date != "2024-01-10" || gotUpdate.status != StatusAbsent {
		t.Errorf("partial update wrote %+v", gotUpdate)
	}
	if resp.Status != StatusAbsent || resp.Date != "2024-01-10" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestService_Update_ReassignsEmployee(t *testing.T) {
	var gotEmpPK uint64
	m := &mockStore{
		getEmployeeRefFn: func(ctx context.Context, pk uint64) (*employeeRef, error) {
			return &employeeRef{PK: pk, EmployeeID: "EMP002", FullName: "Bob Jones"}, nil
		},
		updateFn: func(ctx context.Context, id, employeePK uint64, date, status string) error {
			gotEmpPK = employeePK
			return nil
		},
	}
	svc := newTestService(m)

	_, err := svc.Update(context.Background(), UpdateAttendanceRequest{ID: u64(5), EmployeeRef: u64(2)})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if gotEmpPK != 2 {
		t.Errorf("record written for employee %d, want 2", gotEmpPK)
	}
}

func TestService_Update_ConflictOnDateMove(t *testing.T) {
	m := &mockStore{
		existsFn: func(ctx context.Context, employeePK uint64, date string, excludeID uint64) (bool, error) {
			return date == "2024-01-11", nil
		},
	}
	svc := newTestService(m)

	_, err := svc.Update(context.Background(), UpdateAttendanceRequest{ID: u64(5), Date: str("2024-01-11")})
	api := asAPIError(t, err)
	if api.Code != CodeConflict {
		t.Fatalf("expected CONFLICT, got %s", api.Code)
	}
	if api.Message != "Attendance for Alice Smith on 2024-01-11 is already marked." {
		t.Errorf("unexpected message: %s", api.Message)
	}
}

// --- list ---

func TestService_List_ValidatesDates(t *testing.T) {
	listed := false
	m := &mockStore{
		listFn: func(ctx context.Context, q ListQuery) ([]attendanceRow, error) {
			listed = true
			return nil, nil
		},
	}
	svc := newTestService(m)

	_, err := svc.List(context.Background(), ListQuery{From: str("2024-13-99")})
	api := asAPIError(t, err)
	if api.Code != CodeInvalidArgument {
		t.Fatalf("expected INVALID_ARGUMENT, got %s", api.Code)
	}
	want := "date_from: Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	if api.Message != want {
		t.Errorf("message mismatch:\n got: %s\nwant: %s", api.Message, want)
	}
	if listed {
		t.Error("store must not be queried with an invalid filter")
	}
}

func TestService_List_PassesFilters(t *testing.T) {
	var got ListQuery
	m := &mockStore{
		listFn: func(ctx context.Context, q ListQuery) ([]attendanceRow, error) {
			got = q
			return []attendanceRow{
				{ID: 2, EmployeePK: 3, EmployeeID: "EMP003", EmployeeName: "Carol White", AttendedOn: "2024-01-20", Status: StatusAbsent},
				{ID: 1, EmployeePK: 3, EmployeeID: "EMP003", EmployeeName: "Carol White", AttendedOn: "2024-01-05", Status: StatusPresent},
			}, nil
		},
	}
	svc := newTestService(m)

	out, err := svc.List(context.Background(), ListQuery{
		EmployeePK: u64(3),
		From:       str("2024-01-01"),
		To:         str("2024-01-31"),
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if got.EmployeePK == nil || *got.EmployeePK != 3 || got.From == nil || *got.From != "2024-01-01" {
		t.Errorf("filters not forwarded: %+v", got)
	}
	if len(out) != 2 || out[0].Date != "2024-01-20" || out[0].EmployeePK != 3 {
		t.Errorf("unexpected result: %+v", out)
	}
}
