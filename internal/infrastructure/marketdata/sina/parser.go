package sina

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jmanzanog/leek-tracker/internal/domain"
	"github.com/jmanzanog/leek-tracker/internal/infrastructure/marketdata"
)

const (
	recordSeparator = ";\n"
	recordPrefix    = "var hq_str_"
)

// layout decodes one record of a market kind. minFields is one past the
// highest fixed index decode reads.
type layout struct {
	minFields int
	decode    func(code string, v []string) domain.SecurityQuote
}

var layouts = map[MarketKind]layout{
	MarketAShare:          {minFields: 32, decode: decodeAShare},
	MarketGlobal:          {minFields: 27, decode: decodeGlobal},
	MarketUS:              {minFields: 27, decode: decodeGlobal},
	MarketIndexFuture:     {minFields: 50, decode: decodeIndexFuture},
	MarketCommodityFuture: {minFields: 15, decode: decodeCommodityFuture},
	MarketIntlFuture:      {minFields: 15, decode: decodeIntlFuture},
}

func decodeAShare(code string, v []string) domain.SecurityQuote {
	return domain.SecurityQuote{
		Code:          code,
		Name:          v[0],
		Open:          v[1],
		PreviousClose: v[2],
		Price:         v[3],
		High:          v[4],
		Low:           v[5],
		Volume:        v[8],
		Amount:        v[9],
		Time:          v[30] + " " + v[31],
	}
}

func decodeGlobal(code string, v []string) domain.SecurityQuote {
	return domain.SecurityQuote{
		Code:          code,
		Name:          v[0],
		Open:          v[5],
		PreviousClose: v[26],
		Price:         v[1],
		High:          v[6],
		Low:           v[7],
		Volume:        v[10],
		Amount:        domain.NoData,
		Time:          v[3],
	}
}

func decodeIndexFuture(code string, v []string) domain.SecurityQuote {
	return domain.SecurityQuote{
		Code:          code,
		Name:          dropLastRune(v[49]),
		Open:          v[0],
		PreviousClose: v[13],
		Price:         v[3],
		High:          v[1],
		Low:           v[2],
		Volume:        v[4],
		Amount:        domain.NoData,
		Time:          v[len(v)-2] + " " + v[len(v)-1],
	}
}

func decodeCommodityFuture(code string, v []string) domain.SecurityQuote {
	return domain.SecurityQuote{
		Code:          code,
		Name:          v[0],
		Open:          v[2],
		PreviousClose: v[10],
		Price:         v[8],
		High:          v[3],
		Low:           v[4],
		Volume:        v[14],
		Amount:        domain.NoData,
		Time:          v[len(v)-2],
	}
}

func decodeIntlFuture(code string, v []string) domain.SecurityQuote {
	return domain.SecurityQuote{
		Code:          code,
		Name:          v[13],
		Open:          v[8],
		PreviousClose: v[7],
		Price:         v[0],
		High:          v[4],
		Low:           v[5],
		Volume:        dropLastRune(v[14]),
		Amount:        domain.NoData,
		Time:          v[6],
	}
}

func dropLastRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}

// ParseFeed decodes a multi-record payload. Records that are empty,
// malformed or of an unknown market are skipped and reported in dropped,
// each error wrapping marketdata.ErrParse.
func ParseFeed(payload string) (quotes []domain.SecurityQuote, dropped []error) {
	quotes = make([]domain.SecurityQuote, 0)

	for _, record := range strings.Split(payload, recordSeparator) {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}

		quote, err := ParseRecord(record)
		if err != nil {
			dropped = append(dropped, err)
			continue
		}
		quotes = append(quotes, quote)
	}

	return quotes, dropped
}

// ParseRecord decodes a single `var hq_str_<code>="<fields>"` record.
func ParseRecord(record string) (domain.SecurityQuote, error) {
	lhs, data, ok := strings.Cut(strings.TrimSuffix(strings.TrimSpace(record), ";"), "=")
	if !ok || data == "" {
		return domain.SecurityQuote{}, fmt.Errorf("%w: record without data: %q", marketdata.ErrParse, truncate(record))
	}

	code := strings.TrimPrefix(strings.TrimSpace(lhs), recordPrefix)
	data = strings.TrimSuffix(strings.TrimPrefix(data, `"`), `"`)
	values := strings.Split(data, ",")
	if len(values) < 2 {
		return domain.SecurityQuote{}, fmt.Errorf("%w: %s has %d fields", marketdata.ErrParse, code, len(values))
	}

	kind := Classify(code)
	l, ok := layouts[kind]
	if !ok {
		return domain.SecurityQuote{}, fmt.Errorf("%w: unsupported code prefix %q", marketdata.ErrParse, code)
	}
	if len(values) < l.minFields {
		return domain.SecurityQuote{}, fmt.Errorf("%w: %s record of %s has %d fields, want at least %d",
			marketdata.ErrParse, kind, code, len(values), l.minFields)
	}

	return l.decode(code, values), nil
}

func truncate(s string) string {
	const limit = 64
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
