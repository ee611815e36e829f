package sources

import "errors"

var errNilPoller = errors.New("nil poller")

var errEmptySymbol = errors.New("empty symbol")

var errEmptyPriceURL = errors.New("empty price URL")

var errEmptyPricePath = errors.New("empty price path")

var errNoNetworkCounters = errors.New("no network counters available")
