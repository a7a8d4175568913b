package sina

import (
	"regexp"
	"strings"
)

// MarketKind classifies a feed code into one of the field layouts.
type MarketKind int

const (
	MarketUnknown MarketKind = iota
	// MarketAShare covers sh, sz and bj listed equities.
	MarketAShare
	// MarketGlobal is the gb_ feed, HK and US equities share one layout.
	MarketGlobal
	// MarketUS is the usr_ feed, laid out like gb_.
	MarketUS
	// MarketIndexFuture covers CFFEX stock index and treasury futures under nf_.
	MarketIndexFuture
	// MarketCommodityFuture covers every other nf_ contract.
	MarketCommodityFuture
	// MarketIntlFuture is the hf_ feed.
	MarketIntlFuture
)

func (k MarketKind) String() string {
	switch k {
	case MarketAShare:
		return "a-share"
	case MarketGlobal:
		return "global"
	case MarketUS:
		return "us"
	case MarketIndexFuture:
		return "index-future"
	case MarketCommodityFuture:
		return "commodity-future"
	case MarketIntlFuture:
		return "intl-future"
	default:
		return "unknown"
	}
}

var (
	aSharePrefix    = regexp.MustCompile(`^(sh|sz|bj)`)
	indexFutureRoot = regexp.MustCompile(`nf_(IC|IF|IH|IM|TF|TS|T\d+|TL)`)
)

// Classify maps a code such as "sh600000" or "nf_IF2312" to its layout.
func Classify(code string) MarketKind {
	switch {
	case aSharePrefix.MatchString(code):
		return MarketAShare
	case strings.HasPrefix(code, "gb_"):
		return MarketGlobal
	case strings.HasPrefix(code, "usr_"):
		return MarketUS
	case strings.HasPrefix(code, "nf_"):
		if indexFutureRoot.MatchString(code) {
			return MarketIndexFuture
		}
		return MarketCommodityFuture
	case strings.HasPrefix(code, "hf_"):
		return MarketIntlFuture
	default:
		return MarketUnknown
	}
}
