package marketdata

import "time"

// PricePoint is one raw daily observation from the provider. Close is nil
// when the provider reported the day without a usable price; the series
// loader decides how to fill such gaps.
type PricePoint struct {
	Date  time.Time
	Close *float64
}

// chartResponse is the provider's chart API envelope.
type chartResponse struct {
	Chart chartData `json:"chart"`
}

type chartData struct {
	Result []chartResult `json:"result"`
	Error  *apiError     `json:"error"`
}

type chartResult struct {
	Timestamp  []int64    `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type indicators struct {
	Quote    []quote    `json:"quote"`
	AdjClose []adjClose `json:"adjclose"`
}

type quote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type adjClose struct {
	AdjClose []*float64 `json:"adjclose"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// screenerResponse is the predefined-screener envelope backing the
// most-active listing.
type screenerResponse struct {
	Finance screenerFinance `json:"finance"`
}

type screenerFinance struct {
	Result []screenerResult `json:"result"`
	Error  *apiError        `json:"error"`
}

type screenerResult struct {
	Quotes []screenerQuote `json:"quotes"`
}

type screenerQuote struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortName"`
	LongName  string `json:"longName"`
}
