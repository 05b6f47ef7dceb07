package dto

import "time"

// Quote is a point-in-time price for a symbol as returned by an upstream
// market-data source.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	ChangePct float64   `json:"change_percent"`
	Timestamp time.Time `json:"timestamp"`
}

// Market describes a tradable instrument shown to clients.
type Market struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Exchange string `json:"exchange"`
}

// YahooChartResponse mirrors the chart endpoint payload, reduced to the
// fields the quote lookup needs.
type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
				Symbol             string  `json:"symbol"`
			} `json:"meta"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// CasablancaQuoteResponse is the reduced payload from the Casablanca
// exchange price endpoint used for .CS symbols.
type CasablancaQuoteResponse struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_percent"`
}
