package database

import (
	"strings"
	"testing"
)

func TestDSN(t *testing.T) {
	got := dsn("app", "secret", "db.local", "3306", "pp")
	if !strings.HasPrefix(got, "app:secret@tcp(db.local:3306)/pp?") {
		t.Fatalf("dsn = %q", got)
	}
	for _, param := range []string{"parseTime=true", "loc=UTC", "charset=utf8mb4", "clientFoundRows=true"} {
		if !strings.Contains(got, param) {
			t.Fatalf("dsn %q is missing %s", got, param)
		}
	}
}

func TestDSNWithoutPassword(t *testing.T) {
	got := dsn("app", "", "localhost", "3306", "pp")
	if !strings.HasPrefix(got, "app@tcp(") {
		t.Fatalf("dsn = %q, want bare user auth", got)
	}
}

// UPDATEs that rewrite a row with its current values still count as
// matched rows; without this flag the driver reports changed rows and
// a no-op stop or stack write would be misread as a missing row.
func TestDSNReportsMatchedRows(t *testing.T) {
	if !strings.Contains(dsn("u", "", "h", "3306", "d"), "clientFoundRows=true") {
		t.Fatal("dsn does not request matched-rows semantics")
	}
}
