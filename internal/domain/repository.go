package domain

import "context"

// CodeListRepository persists the ordered code lists.
// Load returns an empty list for a kind that was never saved.
// Save replaces the whole list for kind in one step.
type CodeListRepository interface {
	Load(ctx context.Context, kind ListKind) (CodeList, error)
	Save(ctx context.Context, kind ListKind, codes CodeList) error
}
