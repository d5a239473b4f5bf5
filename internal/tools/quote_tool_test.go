package tools

import (
	"strings"
	"testing"

	finance "github.com/piquette/finance-go"
)

func TestFormatEquity(t *testing.T) {
	q := &finance.Equity{
		Quote: finance.Quote{
			ShortName:                  "Apple Inc.",
			RegularMarketPrice:         189.55,
			RegularMarketChangePercent: 1.25,
			RegularMarketDayLow:        187.10,
			RegularMarketDayHigh:       190.20,
			RegularMarketVolume:        51230000,
			CurrencyID:                 "USD",
		},
		MarketCap: 2950000000000,
	}

	got := formatEquity("AAPL", q)
	for _, want := range []string{
		"Apple Inc. (AAPL)",
		"price 189.55 USD",
		"change 1.25%",
		"day range 187.10-190.20",
		"volume 51230000",
		"market cap 2950000000000",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("formatted quote missing %q: %s", want, got)
		}
	}
}
