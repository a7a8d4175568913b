package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmanzanog/leek-tracker/internal/domain"
)

// codeBook owns the last known code list of one kind and applies edits to it
// through the repository.
type codeBook struct {
	kind     domain.ListKind
	repo     domain.CodeListRepository
	notifier Notifier

	mu    sync.RWMutex
	codes domain.CodeList
}

func newCodeBook(ctx context.Context, kind domain.ListKind, repo domain.CodeListRepository, notifier Notifier) (*codeBook, error) {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	codes, err := repo.Load(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s codes: %w", kind, err)
	}
	return &codeBook{
		kind:     kind,
		repo:     repo,
		notifier: notifier,
		codes:    codes,
	}, nil
}

// Codes returns a copy of the last known list.
func (b *codeBook) Codes() domain.CodeList {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(domain.CodeList, len(b.codes))
	copy(out, b.codes)
	return out
}

// refresh re-reads the persisted list, falling back to the last known one.
func (b *codeBook) refresh(ctx context.Context) (domain.CodeList, error) {
	codes, err := b.repo.Load(ctx, b.kind)
	if err != nil {
		return b.Codes(), fmt.Errorf("failed to load %s codes: %w", b.kind, err)
	}

	b.mu.Lock()
	b.codes = codes
	b.mu.Unlock()
	return codes, nil
}

func (b *codeBook) update(ctx context.Context, edit func(domain.CodeList) (domain.CodeList, error)) error {
	b.mu.Lock()
	next, err := edit(b.codes)
	if err != nil {
		b.mu.Unlock()
		return err
	}
	if err := b.repo.Save(ctx, b.kind, next); err != nil {
		b.mu.Unlock()
		return fmt.Errorf("failed to save %s codes: %w", b.kind, err)
	}
	b.codes = next
	b.mu.Unlock()

	b.notifier.DataChanged(b.kind)
	return nil
}

// AddCode appends code to the end of the list.
func (b *codeBook) AddCode(ctx context.Context, code string) error {
	return b.update(ctx, func(codes domain.CodeList) (domain.CodeList, error) {
		return codes.Add(code)
	})
}

func (b *codeBook) DeleteCode(ctx context.Context, code string) error {
	return b.update(ctx, func(codes domain.CodeList) (domain.CodeList, error) {
		return codes.Remove(code)
	})
}

// project maps codes onto rows in list order. Codes without a cached quote
// get a placeholder; an empty list yields the single "not configured" row.
func project[Q any](kind domain.ListKind, codes domain.CodeList, quotes map[string]Q, toRow func(Q) domain.Row) []domain.Row {
	if len(codes) == 0 {
		return []domain.Row{domain.EmptyListRow(kind)}
	}

	rows := make([]domain.Row, 0, len(codes))
	for _, code := range codes {
		quote, ok := quotes[code]
		if !ok {
			rows = append(rows, domain.MissingQuoteRow(kind, code))
			continue
		}
		rows = append(rows, toRow(quote))
	}
	return rows
}
