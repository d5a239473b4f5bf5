package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/equity"

	"github.com/finsage/finsage/internal/models"
)

// NewQuoteTool fetches a live market quote. The financial store only
// covers fiscal years up to the last extract, so current-price
// questions go through here instead.
func NewQuoteTool() tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_live_quote",
			Desc: "Get the current market quote for a stock ticker symbol: latest price, day range, " +
				"volume and market cap. Use this for questions about current or intraday prices, " +
				"which the financial database does not contain.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"symbol": {
					Type:     schema.String,
					Desc:     "The stock ticker symbol, e.g. AAPL",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input models.QuoteInput) (*models.QuoteOutput, error) {
			symbol := strings.ToUpper(strings.TrimSpace(input.Symbol))
			if symbol == "" {
				return &models.QuoteOutput{Result: "Error: symbol parameter is required"}, nil
			}

			q, err := equity.Get(symbol)
			if err != nil {
				return &models.QuoteOutput{Result: fmt.Sprintf("Error: failed to fetch quote for %s: %v", symbol, err)}, nil
			}
			if q == nil {
				return &models.QuoteOutput{Result: fmt.Sprintf("No quote data found for %s", symbol)}, nil
			}

			return &models.QuoteOutput{Result: formatEquity(symbol, q)}, nil
		},
	)
}

func formatEquity(symbol string, q *finance.Equity) string {
	return fmt.Sprintf(
		"%s (%s): price %.2f %s, change %.2f%%, day range %.2f-%.2f, volume %d, market cap %d",
		q.ShortName, symbol,
		q.RegularMarketPrice, q.CurrencyID,
		q.RegularMarketChangePercent,
		q.RegularMarketDayLow, q.RegularMarketDayHigh,
		q.RegularMarketVolume, q.MarketCap,
	)
}
