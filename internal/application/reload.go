package application

import (
	"errors"
	"sync"

	"github.com/jmanzanog/leek-tracker/internal/domain"
)

// ErrReloadInProgress is returned by Reload when another reload of the same
// service is still fetching.
var ErrReloadInProgress = errors.New("reload already in progress")

// Notifier is told whenever the rows of a list may have changed.
type Notifier interface {
	DataChanged(kind domain.ListKind)
}

type noopNotifier struct{}

func (noopNotifier) DataChanged(domain.ListKind) {}

type reloadState int

const (
	stateIdle reloadState = iota
	stateFetching
)

// reloadGuard admits at most one reload per service. With coalesce set, any
// number of requests arriving during a fetch collapse into one follow-up run.
type reloadGuard struct {
	mu       sync.Mutex
	state    reloadState
	pending  bool
	coalesce bool
}

// begin reports whether the caller owns the next reload.
func (g *reloadGuard) begin() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == stateFetching {
		if g.coalesce {
			g.pending = true
		}
		return false
	}
	g.state = stateFetching
	return true
}

// end reports whether the owner has to run once more.
func (g *reloadGuard) end() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending {
		g.pending = false
		return true
	}
	g.state = stateIdle
	return false
}

func (g *reloadGuard) setCoalesce(coalesce bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.coalesce = coalesce
}

func (g *reloadGuard) fetching() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == stateFetching
}
