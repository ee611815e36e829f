package sources

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/iulianpascalau/snapshot-agent/services/agent/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

// TickerKind is the source kind of the price ticker metrics
const TickerKind = "ticker"

// SymbolPlaceholder is replaced in the price URL with the ticker symbol
const SymbolPlaceholder = "{symbol}"

var log = logger.GetOrCreate("sources")

// ArgsTickerSource holds the arguments needed to create a ticker price source
type ArgsTickerSource struct {
	Symbol    string
	PriceURL  string
	PricePath string
	Poller    Poller
}

type tickerSource struct {
	id         common.SourceID
	metricName string
	url        string
	pricePath  string
	poller     Poller
}

// NewTickerSource creates a source reading the current price of the symbol from a JSON price endpoint
func NewTickerSource(args ArgsTickerSource) (*tickerSource, error) {
	if len(args.Symbol) == 0 {
		return nil, errEmptySymbol
	}
	if len(args.PriceURL) == 0 {
		return nil, errEmptyPriceURL
	}
	if len(args.PricePath) == 0 {
		return nil, errEmptyPricePath
	}
	if check.IfNil(args.Poller) {
		return nil, errNilPoller
	}

	return &tickerSource{
		id:         common.SourceID{Kind: TickerKind, Param: args.Symbol},
		metricName: args.Symbol + " Price",
		url:        strings.ReplaceAll(args.PriceURL, SymbolPlaceholder, url.PathEscape(args.Symbol)),
		pricePath:  args.PricePath,
		poller:     args.Poller,
	}, nil
}

// ID returns the source identity
func (ts *tickerSource) ID() common.SourceID {
	return ts.id
}

// Read fetches the current price. A missing or zero price means the provider is rate limiting or
// does not know the symbol, so the reading is unavailable
func (ts *tickerSource) Read(ctx context.Context) (common.Metric, error) {
	result, err := ts.poller.Poll(ctx, ts.url, ts.pricePath)
	if err != nil {
		return common.Metric{}, fmt.Errorf("%w: %s: %v", common.ErrSourceUnavailable, ts.id.Param, err)
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(result.String()), 64)
	if err != nil {
		return common.Metric{}, fmt.Errorf("%w: %s: invalid price %q", common.ErrSourceUnavailable, ts.id.Param, result.String())
	}
	if price == 0 {
		return common.Metric{}, fmt.Errorf("%w: %s: may be rate limited or unavailable", common.ErrSourceUnavailable, ts.id.Param)
	}

	log.Debug("ticker price", "symbol", ts.id.Param, "price", price)

	return checkFinite(ts.metricName, price)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (ts *tickerSource) IsInterfaceNil() bool {
	return ts == nil
}
