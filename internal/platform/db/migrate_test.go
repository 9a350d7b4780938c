package db

import (
	"strings"
	"testing"
)

// The uniqueness invariants live in the schema, not only in application code.
// These checks keep a migration edit from silently dropping them.
func TestMigrations_DeclareConstraints(t *testing.T) {
	read := func(name string) string {
		t.Helper()
		b, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return string(b)
	}

	employees := read("000001_create_employees.up.sql")
	for _, key := range []string{"uq_employees_employee_id", "uq_employees_email"} {
		if !strings.Contains(employees, key) {
			t.Errorf("employees migration missing unique key %s", key)
		}
	}

	attendances := read("000002_create_attendances.up.sql")
	if !strings.Contains(attendances, "uq_attendances_employee_date") {
		t.Error("attendances migration missing the (employee_pk, attended_on) unique key")
	}
	if !strings.Contains(attendances, "ON DELETE CASCADE") {
		t.Error("attendances migration missing the FK cascade")
	}
}

func TestMigrations_PairedUpDown(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatal(err)
	}
	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	if ups == 0 || ups != downs {
		t.Errorf("unbalanced migrations: %d up, %d down", ups, downs)
	}
}
