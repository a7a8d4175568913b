package domain

import (
	"errors"
	"fmt"
)

var ErrUnknownListKind = errors.New("unknown list kind")

// ListKind names one of the tracked code lists.
type ListKind string

const (
	ListKindFund  ListKind = "fund"
	ListKindStock ListKind = "stock"
)

func ParseListKind(s string) (ListKind, error) {
	switch ListKind(s) {
	case ListKindFund, ListKindStock:
		return ListKind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownListKind, s)
	}
}

// NoCodeConfigured is the code carried by the synthetic row of an empty list.
const NoCodeConfigured = "0"

// Row is one display line of a projected code list.
type Row struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Percent     string   `json:"percent"`
	Kind        ListKind `json:"kind"`
	Placeholder bool     `json:"placeholder"`
}

// EmptyListRow stands in for a list without any code.
func EmptyListRow(kind ListKind) Row {
	return Row{
		Code:        NoCodeConfigured,
		Name:        fmt.Sprintf("No %s code configured", kind),
		Percent:     "0",
		Kind:        kind,
		Placeholder: true,
	}
}

// MissingQuoteRow stands in for a code that has no quote yet.
func MissingQuoteRow(kind ListKind, code string) Row {
	return Row{
		Code:        code,
		Name:        "-",
		Price:       "-",
		Percent:     "0",
		Kind:        kind,
		Placeholder: true,
	}
}
