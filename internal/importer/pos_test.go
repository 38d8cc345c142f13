package importer

import (
	"strings"
	"testing"
)

func TestParsePOSCSV(t *testing.T) {
	input := strings.Join([]string{
		"Weekly Labor Report,,,,,,",
		"Name,Code,Dept,Rate,Days,Pay,Work Hours",
		"Alice Smith,101,FOH,12.00,5,480.00,40.25",
		"Bob Jones,102,BOH,14.00,5,560.00,\"45.5h\"",
		"Carol,103,FOH,11.00,3,264.00,n/a",
		",Role,,,,,",
		"Server,Role,,,,,999",
	}, "\n")

	rows, skipped, err := ParsePOSCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d: %+v", len(rows), rows)
	}
	if rows[0].Name != "Alice Smith" || rows[0].Hours != 40.25 {
		t.Errorf("Bad first row: %+v", rows[0])
	}
	// Non-numeric characters are stripped before parsing.
	if rows[1].Hours != 45.5 {
		t.Errorf("Expected cleaned hours 45.5, got %v", rows[1].Hours)
	}
	// "n/a" cleans to nothing parseable and the row is dropped.
	if len(skipped) != 1 || !strings.Contains(skipped[0], "work hours") {
		t.Errorf("Expected one skipped row for Carol, got %v", skipped)
	}
}

func TestParsePOSCSV_NoRoleCutoffProcessesAllRows(t *testing.T) {
	input := strings.Join([]string{
		"Weekly Labor Report,,",
		"Name,Dept,Work Hours",
		"Alice,FOH,40",
		"Bob,BOH,38",
	}, "\n")

	rows, _, err := ParsePOSCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("Expected all rows without cutoff, got %d", len(rows))
	}
}

func TestParsePOSCSV_MissingColumns(t *testing.T) {
	input := "title,,\nFoo,Bar,Baz\n1,2,3\n"
	if _, _, err := ParsePOSCSV(strings.NewReader(input)); err == nil {
		t.Fatal("Expected error for missing Name/Work Hours columns")
	}
}

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"H-R Host", "h r host"},
		{"  S-COMMON   Server ", "s common server"},
		{"Alice Smith", "alice smith"},
		{"O'Brien, Pat", "o brien pat"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeName(c.in); got != c.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
