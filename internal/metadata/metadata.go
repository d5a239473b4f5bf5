// Package metadata holds the fixed catalog mapping raw extract column
// codes to canonical column names in the company_data table, plus the
// list of derived metric columns filled in after every load.
package metadata

// ColumnMapping maps abbreviated extract column codes to canonical
// company_data column names. Extract fields absent from this map are
// dropped during a load.
var ColumnMapping = map[string]string{
	"gvkey": "company_id",
	"tic":   "ticker",
	"conm":  "company_name",
	"gind":  "industry_code",
	"loc":   "country",
	"fyear": "year",

	"act":     "current_assets",
	"at":      "total_assets",
	"ch":      "cash",
	"dlc":     "current_debt",
	"dltt":    "long_term_debt",
	"icapt":   "invested_capital",
	"lt":      "total_liabilities",
	"cogs":    "cost_of_goods_sold",
	"ebit":    "ebit",
	"ebitda":  "ebitda",
	"epsfx":   "eps",
	"ni":      "net_income",
	"revt":    "total_revenue",
	"txt":     "income_taxes",
	"xint":    "interest_expense",
	"capx":    "capital_expenditures",
	"fincf":   "net_cash_flow_financing",
	"ivncf":   "net_cash_flow_investing",
	"oancf":   "net_cash_flow_operating",
	"csho":    "common_shares_outstanding",
	"teq":     "total_equity",
	"dvpsx_f": "dividends_per_share",
	"mkvalt":  "market_value",
	"prcc_f":  "price",
	"gp":      "gross_profit",
}

// KeyColumns form the primary key of company_data. Upserts never
// overwrite them.
var KeyColumns = []string{"company_id", "year"}

// TextColumns are stored as VARCHAR; every other canonical column is
// numeric.
var TextColumns = map[string]bool{
	"company_id":    true,
	"ticker":        true,
	"company_name":  true,
	"country":       true,
	"industry_code": true,
}

// DerivedColumns are computed by the calculate_financial_metrics
// procedure from base columns, never supplied by the extract.
var DerivedColumns = []string{
	"revenue_growth",
	"eps_growth",
	"dividend_growth",
	"net_profit_margin",
	"operating_margin",
	"gross_margin",
	"return_on_assets",
	"return_on_equity",
	"return_on_invested_capital",
	"free_cash_flow",
	"free_cash_flow_margin",
	"debt_to_equity",
	"debt_to_assets",
	"price_to_earnings_ratio",
	"price_to_book_ratio",
	"price_to_share_ratio",
	"ev_to_ebitda_ratio",
}

// CanonicalColumns returns the canonical base column names in a stable
// order: key columns first, then the remaining mapped columns in
// extract order.
func CanonicalColumns() []string {
	cols := make([]string, 0, len(ColumnMapping))
	cols = append(cols, KeyColumns...)
	seen := map[string]bool{"company_id": true, "year": true}
	// deterministic order for DDL and INSERT statements
	for _, code := range orderedCodes {
		name := ColumnMapping[code]
		if seen[name] {
			continue
		}
		seen[name] = true
		cols = append(cols, name)
	}
	return cols
}

// orderedCodes fixes iteration order over ColumnMapping.
var orderedCodes = []string{
	"gvkey", "tic", "conm", "gind", "loc", "fyear",
	"act", "at", "ch", "dlc", "dltt", "icapt", "lt", "cogs",
	"ebit", "ebitda", "epsfx", "ni", "revt", "txt", "xint", "capx",
	"fincf", "ivncf", "oancf", "csho", "teq", "dvpsx_f", "mkvalt",
	"prcc_f", "gp",
}

// IsKeyColumn reports whether name is part of the primary key.
func IsKeyColumn(name string) bool {
	for _, k := range KeyColumns {
		if k == name {
			return true
		}
	}
	return false
}
