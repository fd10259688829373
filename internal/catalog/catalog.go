// Package catalog is the table of supported TSX listings shown by the CLI and
// the HTTP API. The analytics engine never reads it.
package catalog

import (
	"sort"
	"strings"
)

// Benchmark is the S&P/TSX Composite index.
const Benchmark = "^GSPTSE"

const unknownSector = "Unknown"

type Ticker struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Sector   string `json:"sector"`
	Exchange string `json:"exchange"`
}

var tsx = map[string]Ticker{}

func init() {
	for _, t := range []Ticker{
		{"SHOP.TO", "Shopify Inc", "Technology", "TSX"},
		{"RY.TO", "Royal Bank of Canada", "Financial Services", "TSX"},
		{"TD.TO", "Toronto-Dominion Bank", "Financial Services", "TSX"},
		{"CNR.TO", "Canadian National Railway", "Industrials", "TSX"},
		{"CP.TO", "Canadian Pacific Railway", "Industrials", "TSX"},
		{"BMO.TO", "Bank of Montreal", "Financial Services", "TSX"},
		{"BNS.TO", "Bank of Nova Scotia", "Financial Services", "TSX"},
		{"ABX.TO", "Barrick Gold Corporation", "Materials", "TSX"},
		{"SU.TO", "Suncor Energy Inc", "Energy", "TSX"},
		{"ENB.TO", "Enbridge Inc", "Energy", "TSX"},
		{"TRP.TO", "TC Energy Corporation", "Energy", "TSX"},
		{"MFC.TO", "Manulife Financial Corporation", "Financial Services", "TSX"},
		{"GWO.TO", "Great-West Lifeco Inc", "Financial Services", "TSX"},
		{"SLF.TO", "Sun Life Financial Inc", "Financial Services", "TSX"},
		{"ATD.TO", "Alimentation Couche-Tard Inc", "Consumer Discretionary", "TSX"},
		{"WCN.TO", "Waste Connections Inc", "Industrials", "TSX"},
		{"CTC.TO", "Canadian Tire Corporation", "Consumer Discretionary", "TSX"},
		{"L.TO", "Loblaw Companies Limited", "Consumer Staples", "TSX"},
		{"MRU.TO", "Metro Inc", "Consumer Staples", "TSX"},
		{"TFII.TO", "TFI International Inc", "Industrials", "TSX"},
		{Benchmark, "S&P/TSX Composite Index", "Index", "TSX"},
	} {
		tsx[t.Symbol] = t
	}
}

// Normalize upper-cases and trims a user supplied symbol.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Lookup returns the listing for symbol and whether it is supported.
// Unsupported symbols still get a usable entry with an unknown sector.
func Lookup(symbol string) (Ticker, bool) {
	symbol = Normalize(symbol)
	if t, ok := tsx[symbol]; ok {
		return t, true
	}
	return Ticker{Symbol: symbol, Name: symbol, Sector: unknownSector}, false
}

// Sector is a shortcut for Lookup(symbol).Sector.
func Sector(symbol string) string {
	t, _ := Lookup(symbol)
	return t.Sector
}

// All returns the supported listings sorted by symbol, benchmark excluded.
func All() []Ticker {
	out := make([]Ticker, 0, len(tsx))
	for _, t := range tsx {
		if t.Symbol == Benchmark {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
