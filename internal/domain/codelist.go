package domain

import (
	"errors"
	"strings"
)

var (
	ErrCodeNotFound  = errors.New("code not found")
	ErrDuplicateCode = errors.New("code already tracked")
	ErrInvalidCode   = errors.New("invalid code")
)

// CodeList is the ordered list of tracked codes. Mutators return a new list
// and never touch the receiver.
type CodeList []string

// NormalizeCode trims user input; an empty result is not a code.
func NormalizeCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" || strings.ContainsAny(code, ", \t\n") {
		return "", ErrInvalidCode
	}
	return code, nil
}

func (l CodeList) IndexOf(code string) int {
	for i, c := range l {
		if c == code {
			return i
		}
	}
	return -1
}

func (l CodeList) Contains(code string) bool {
	return l.IndexOf(code) >= 0
}

func (l CodeList) clone() CodeList {
	out := make(CodeList, len(l))
	copy(out, l)
	return out
}

// Add appends code at the end.
func (l CodeList) Add(code string) (CodeList, error) {
	code, err := NormalizeCode(code)
	if err != nil {
		return l, err
	}
	if l.Contains(code) {
		return l, ErrDuplicateCode
	}
	return append(l.clone(), code), nil
}

func (l CodeList) Remove(code string) (CodeList, error) {
	i := l.IndexOf(code)
	if i < 0 {
		return l, ErrCodeNotFound
	}
	out := make(CodeList, 0, len(l)-1)
	out = append(out, l[:i]...)
	return append(out, l[i+1:]...), nil
}

// MoveUp swaps code with its predecessor; the first code stays in place.
func (l CodeList) MoveUp(code string) (CodeList, error) {
	i := l.IndexOf(code)
	if i < 0 {
		return l, ErrCodeNotFound
	}
	out := l.clone()
	if i > 0 {
		out[i-1], out[i] = out[i], out[i-1]
	}
	return out, nil
}

// MoveDown swaps code with its successor; the last code stays in place.
func (l CodeList) MoveDown(code string) (CodeList, error) {
	i := l.IndexOf(code)
	if i < 0 {
		return l, ErrCodeNotFound
	}
	out := l.clone()
	if i < len(out)-1 {
		out[i], out[i+1] = out[i+1], out[i]
	}
	return out, nil
}

// ParseCodeList splits a comma separated list, skipping blanks and repeats.
func ParseCodeList(s string) CodeList {
	out := CodeList{}
	for _, part := range strings.Split(s, ",") {
		code, err := NormalizeCode(part)
		if err != nil || out.Contains(code) {
			continue
		}
		out = append(out, code)
	}
	return out
}
