package memory

import (
	"context"
	"sync"

	"github.com/jmanzanog/leek-tracker/internal/domain"
)

// CodeListRepository keeps code lists in process memory.
type CodeListRepository struct {
	mu    sync.RWMutex
	lists map[domain.ListKind]domain.CodeList
}

func NewCodeListRepository() *CodeListRepository {
	return &CodeListRepository{
		lists: make(map[domain.ListKind]domain.CodeList),
	}
}

func (r *CodeListRepository) Load(ctx context.Context, kind domain.ListKind) (domain.CodeList, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := r.lists[kind]
	out := make(domain.CodeList, len(codes))
	copy(out, codes)
	return out, nil
}

func (r *CodeListRepository) Save(ctx context.Context, kind domain.ListKind, codes domain.CodeList) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make(domain.CodeList, len(codes))
	copy(stored, codes)
	r.lists[kind] = stored
	return nil
}
