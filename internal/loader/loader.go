// Package loader ingests a tabular extract of company financials into
// the MySQL store and refreshes the derived metric columns afterwards.
package loader

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finsage/finsage/internal/metadata"
)

// RawRow is one extract row keyed by source column code (or canonical
// name after renaming).
type RawRow map[string]string

// Record is a validated canonical row ready for upsert.
type Record struct {
	CompanyID string
	Year      int
	// Values holds every non-key canonical column; nil means NULL.
	Values map[string]any
}

// Result reports the outcome of a batch load. Row failures are
// independent: a malformed row is counted and reported without
// aborting the batch.
type Result struct {
	Inserted int
	Failed   int
	Errors   []string
}

// Normalize renames source column codes to canonical names and drops
// any field without a mapping.
func Normalize(rows []RawRow) []RawRow {
	out := make([]RawRow, 0, len(rows))
	for _, row := range rows {
		canon := make(RawRow, len(row))
		for code, val := range row {
			if name, ok := metadata.ColumnMapping[code]; ok {
				canon[name] = val
			}
		}
		out = append(out, canon)
	}
	return out
}

// Convert validates each normalized row into a Record. Rows with a
// missing key or a malformed numeric value fail individually and are
// reported in the result.
func Convert(rows []RawRow) ([]Record, *Result) {
	res := &Result{}
	records := make([]Record, 0, len(rows))

	for i, row := range rows {
		rec, err := convertRow(row)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", i, err))
			continue
		}
		records = append(records, rec)
	}
	return records, res
}

func convertRow(row RawRow) (Record, error) {
	id := strings.TrimSpace(row["company_id"])
	if id == "" {
		return Record{}, fmt.Errorf("missing company_id")
	}
	yearStr := strings.TrimSpace(row["year"])
	if yearStr == "" {
		return Record{}, fmt.Errorf("missing year")
	}
	yearDec, err := decimal.NewFromString(yearStr)
	if err != nil {
		return Record{}, fmt.Errorf("malformed year %q", yearStr)
	}
	if !yearDec.IsInteger() {
		return Record{}, fmt.Errorf("non-integer year %q", yearStr)
	}
	year := int(yearDec.IntPart())

	rec := Record{CompanyID: id, Year: year, Values: make(map[string]any)}
	for _, col := range metadata.CanonicalColumns() {
		if metadata.IsKeyColumn(col) {
			continue
		}
		raw, ok := row[col]
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			// missing values upsert as explicit NULL
			rec.Values[col] = nil
			continue
		}
		if metadata.TextColumns[col] {
			rec.Values[col] = raw
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return Record{}, fmt.Errorf("malformed numeric value %q for %s", raw, col)
		}
		rec.Values[col] = d.InexactFloat64()
	}
	return rec, nil
}

// Dedupe keeps one record per (company_id, year). Records are stably
// sorted by year ascending first, so within a key the record latest in
// year-ascending, original-order-tiebroken order wins.
func Dedupe(records []Record) []Record {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Year < sorted[j].Year
	})

	type key struct {
		id   string
		year int
	}
	last := make(map[key]int, len(sorted))
	for i, rec := range sorted {
		last[key{rec.CompanyID, rec.Year}] = i
	}

	out := make([]Record, 0, len(last))
	for i, rec := range sorted {
		if last[key{rec.CompanyID, rec.Year}] == i {
			out = append(out, rec)
		}
	}
	return out
}

// Load runs the full batch: normalize, validate, dedupe, upsert every
// surviving row, then recompute derived metrics. Upserts and the
// recompute pass share one transaction so concurrent readers never see
// fresh base fields alongside stale ratios.
func Load(ctx context.Context, pool *sql.DB, rows []RawRow) (*Result, error) {
	records, res := Convert(Normalize(rows))
	records = Dedupe(records)

	tx, err := pool.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin load transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertStatement())
	if err != nil {
		return res, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, upsertArgs(rec)...); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("upsert %s/%d: %v", rec.CompanyID, rec.Year, err))
			continue
		}
		res.Inserted++
	}

	if _, err := tx.ExecContext(ctx, "CALL calculate_financial_metrics()"); err != nil {
		return res, fmt.Errorf("recompute derived metrics: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("commit load transaction: %w", err)
	}

	log.Printf("loader: %d rows upserted, %d rows failed", res.Inserted, res.Failed)
	return res, nil
}

// upsertStatement inserts a full canonical row and overwrites every
// non-key column on duplicate (company_id, year).
func upsertStatement() string {
	cols := metadata.CanonicalColumns()
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	var updates []string
	for _, col := range cols {
		if metadata.IsKeyColumn(col) {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = VALUES(%s)", col, col))
	}

	return fmt.Sprintf("INSERT INTO company_data (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s",
		strings.Join(cols, ", "), placeholders, strings.Join(updates, ", "))
}

func upsertArgs(rec Record) []any {
	cols := metadata.CanonicalColumns()
	args := make([]any, 0, len(cols))
	for _, col := range cols {
		switch col {
		case "company_id":
			args = append(args, rec.CompanyID)
		case "year":
			args = append(args, rec.Year)
		default:
			args = append(args, rec.Values[col])
		}
	}
	return args
}
