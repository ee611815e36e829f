package reconciler

import "errors"

var errNilDevice = errors.New("nil device")

var errNilFetcher = errors.New("nil symbols fetcher")

var errNilSourceFactory = errors.New("nil source factory")

var errEmptyKind = errors.New("empty source kind")

var errNilPoller = errors.New("nil poller")

var errEmptyEndpoint = errors.New("empty symbols endpoint")

var errSymbolsNotArray = errors.New("symbols field is not an array")

var errInvalidSymbol = errors.New("invalid symbol")
