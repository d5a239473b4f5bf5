package loader

import (
	"strings"
	"testing"
)

func TestNormalizeRenamesAndDrops(t *testing.T) {
	rows := Normalize([]RawRow{{
		"gvkey":  "1001",
		"fyear":  "2023",
		"tic":    "ACME",
		"revt":   "500.5",
		"bogus":  "dropme",
		"cusip8": "unmapped",
	}})

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row["company_id"] != "1001" || row["year"] != "2023" || row["ticker"] != "ACME" {
		t.Fatalf("key fields not renamed: %v", row)
	}
	if row["total_revenue"] != "500.5" {
		t.Fatalf("revt not renamed to total_revenue: %v", row)
	}
	if _, ok := row["bogus"]; ok {
		t.Fatalf("unmapped field survived normalization")
	}
}

func TestConvertMissingValuesBecomeNull(t *testing.T) {
	records, res := Convert([]RawRow{{
		"company_id": "1001",
		"year":       "2023",
		"ticker":     "ACME",
		// total_revenue intentionally absent, cash empty
		"cash": "",
	}})

	if res.Failed != 0 {
		t.Fatalf("valid row failed: %v", res.Errors)
	}
	rec := records[0]
	if v, ok := rec.Values["total_revenue"]; !ok || v != nil {
		t.Fatalf("missing numeric should upsert as explicit NULL, got %v", v)
	}
	if v, ok := rec.Values["cash"]; !ok || v != nil {
		t.Fatalf("empty numeric should upsert as explicit NULL, got %v", v)
	}
	if rec.Values["ticker"] != "ACME" {
		t.Fatalf("text value dropped: %v", rec.Values["ticker"])
	}
}

func TestConvertMalformedRowFailsIndependently(t *testing.T) {
	records, res := Convert([]RawRow{
		{"company_id": "1001", "year": "2023", "total_revenue": "not-a-number"},
		{"company_id": "1002", "year": "2023", "total_revenue": "750"},
		{"company_id": "1003", "year": "20x3"},
	})

	if res.Failed != 2 {
		t.Fatalf("expected 2 failed rows, got %d (%v)", res.Failed, res.Errors)
	}
	if len(records) != 1 || records[0].CompanyID != "1002" {
		t.Fatalf("the valid row must survive, got %v", records)
	}
	if !strings.Contains(res.Errors[0], "total_revenue") {
		t.Fatalf("error should name the offending column: %v", res.Errors[0])
	}
}

func TestDedupeKeepLast(t *testing.T) {
	records := []Record{
		{CompanyID: "1001", Year: 2023, Values: map[string]any{"total_revenue": 100.0}},
		{CompanyID: "1001", Year: 2022, Values: map[string]any{"total_revenue": 90.0}},
		{CompanyID: "1001", Year: 2023, Values: map[string]any{"total_revenue": 110.0}},
		{CompanyID: "1002", Year: 2023, Values: map[string]any{"total_revenue": 50.0}},
	}

	out := Dedupe(records)
	if len(out) != 3 {
		t.Fatalf("expected 3 surviving records, got %d", len(out))
	}

	// year-ascending order with ties broken by original order, keep-last
	var survivor *Record
	for i := range out {
		if out[i].CompanyID == "1001" && out[i].Year == 2023 {
			if survivor != nil {
				t.Fatalf("duplicate (1001, 2023) survived dedupe")
			}
			survivor = &out[i]
		}
	}
	if survivor == nil {
		t.Fatalf("(1001, 2023) missing after dedupe")
	}
	if survivor.Values["total_revenue"] != 110.0 {
		t.Fatalf("keep-last violated: got %v", survivor.Values["total_revenue"])
	}

	if out[0].Year != 2022 {
		t.Fatalf("records must be sorted year-ascending, got %d first", out[0].Year)
	}
}

func TestUpsertStatementShape(t *testing.T) {
	stmt := upsertStatement()

	if !strings.HasPrefix(stmt, "INSERT INTO company_data (company_id, year, ") {
		t.Fatalf("unexpected upsert prefix: %s", stmt[:60])
	}
	if !strings.Contains(stmt, "ON DUPLICATE KEY UPDATE") {
		t.Fatalf("upsert must be insert-or-update")
	}
	if strings.Contains(stmt, "company_id = VALUES(company_id)") ||
		strings.Contains(stmt, "year = VALUES(year)") {
		t.Fatalf("key columns must never be overwritten")
	}
	if !strings.Contains(stmt, "total_revenue = VALUES(total_revenue)") {
		t.Fatalf("non-key columns must be overwritten on duplicate")
	}
}

func TestUpsertArgsOrderMatchesColumns(t *testing.T) {
	rec := Record{
		CompanyID: "1001",
		Year:      2023,
		Values:    map[string]any{"ticker": "ACME"},
	}
	args := upsertArgs(rec)
	if args[0] != "1001" || args[1] != 2023 {
		t.Fatalf("key args must lead: %v", args[:2])
	}
	if args[2] != "ACME" {
		t.Fatalf("ticker should be the third canonical column, got %v", args[2])
	}
	for _, a := range args[3:] {
		if a != nil {
			t.Fatalf("unset columns must bind NULL, got %v", a)
		}
	}
}

func TestParseCSV(t *testing.T) {
	input := "gvkey,fyear,tic,revt\n1001,2023,ACME,500.5\n1002,2023,GLOBX,\n"
	rows, err := parseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["gvkey"] != "1001" || rows[1]["revt"] != "" {
		t.Fatalf("unexpected parse result: %v", rows)
	}
}
