package domain

// NoData is reported as the amount of markets whose feed carries no turnover.
const NoData = "No Data"

// FundQuote is one fund valuation snapshot. Values are kept as received.
type FundQuote struct {
	Code                  string `json:"code"`
	Name                  string `json:"name"`
	NetWorth              string `json:"net_worth"`
	NetWorthDate          string `json:"net_worth_date"`
	EstimatedWorth        string `json:"estimated_worth"`
	EstimatedWorthPercent string `json:"estimated_worth_percent"`
	EstimatedWorthTime    string `json:"estimated_worth_time"`
}

// SecurityQuote is one equity or futures quote decoded from the batch feed.
type SecurityQuote struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Open          string `json:"open"`
	PreviousClose string `json:"previous_close"`
	Price         string `json:"price"`
	High          string `json:"high"`
	Low           string `json:"low"`
	Volume        string `json:"volume"`
	Amount        string `json:"amount"`
	Time          string `json:"time"`
}

// PercentChange is not part of the feed, it is derived from price and previous close.
func (q SecurityQuote) PercentChange() string {
	return PercentChange(q.Price, q.PreviousClose)
}

// SymbolSuggestion is a directory entry used by code search.
type SymbolSuggestion struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Custom bool   `json:"custom,omitempty"`
}

// Label renders the suggestion the way search matches it: "<code> | <name>".
func (s SymbolSuggestion) Label() string {
	return s.Code + " | " + s.Name
}
